package test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/value"
)

type testCase struct {
	name     string
	code     string
	expected value.Value
}

// runResult runs code in a fresh engine and returns the global result.
func runResult(t *testing.T, code string) value.Value {
	t.Helper()
	e := ecmastep.New(nil)
	_, err := e.Eval("test.js", code)
	require.NoError(t, err, "execution failed")
	result, err := e.Eval("result.js", "result")
	require.NoError(t, err, "variable 'result' not found")
	return result
}

func runCases(t *testing.T, tests []testCase) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, runResult(t, tt.code))
		})
	}
}
