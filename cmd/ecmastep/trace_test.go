package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/cas"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/inspect"
	"github.com/timewinder-dev/ecmastep/interp"
)

func TestTraceRecordsEveryBoundary(t *testing.T) {
	e := ecmastep.New(nil)
	p, err := e.Compile("t.js", "var a = 1;\nvar b = a + 1;\nb;")
	require.NoError(t, err)

	store := cas.NewMemoryCAS()
	var lines []int
	end, res, err := trace(e.Debug(p, nil, nil), store, func(_ int, h cas.Hash, snap *inspect.Snapshot) error {
		assert.True(t, store.Has(h))
		lines = append(lines, snap.Location.Line)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, lines)
	assert.Equal(t, 3, res.steps)
	assert.Equal(t, 3, res.unique)
	assert.Equal(t, debug.Finished, end.State())
}

func TestTraceFindsRevisitedStates(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxSteps = 3000
	e := ecmastep.New(cfg)
	p, err := e.Compile("flip.js", "var x = 0;\nwhile (true) {\n  x = 1 - x;\n}")
	require.NoError(t, err)

	store := cas.NewLRUCache(cas.NewMemoryCAS(), 16)
	end, res, err := trace(e.Debug(p, nil, nil), store, func(int, cas.Hash, *inspect.Snapshot) error { return nil })
	require.NoError(t, err)
	assert.Greater(t, res.steps, 4)
	assert.Equal(t, 4, res.unique)

	assert.Equal(t, debug.Failed, end.State())
	_, err = end.Result()
	assert.True(t, errors.Is(err, interp.ErrStepLimit))
}

func TestTraceStopsOnVisitError(t *testing.T) {
	e := ecmastep.New(nil)
	p, err := e.Compile("t.js", "1;\n2;")
	require.NoError(t, err)
	boom := errors.New("boom")
	end, res, err := trace(e.Debug(p, nil, nil), cas.NewMemoryCAS(), func(int, cas.Hash, *inspect.Snapshot) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, res.steps)
	assert.Equal(t, debug.Paused, end.State())
}
