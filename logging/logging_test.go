package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDiscardsByDefault(t *testing.T) {
	assert.Equal(t, zerolog.Disabled, Logger().GetLevel())
}

func TestSetRoutesEvents(t *testing.T) {
	prev := *Logger()
	t.Cleanup(func() { Set(prev) })

	var buf bytes.Buffer
	Set(zerolog.New(&buf).Level(zerolog.DebugLevel))
	Logger().Trace().Msg("hidden")
	Logger().Debug().Str("program", "t.js").Msg("engine: run")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"program":"t.js"`)
}
