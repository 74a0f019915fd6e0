package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/debug"
)

const program = `var a = 1;
function twice(x) {
  return x * 2;
}
var b = twice(a);
print(b);
`

func newTestModel(t *testing.T) debugModel {
	m, err := newDebugModel("prog.js", program, config.Default())
	require.NoError(t, err)
	return m
}

func enter(t *testing.T, m debugModel, input string) (debugModel, tea.Cmd) {
	m.textInput.SetValue(input)
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	dm, ok := model.(debugModel)
	require.True(t, ok, "unexpected model type %T", model)
	return dm, cmd
}

func TestDebugModelStartsPaused(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, debug.Paused, m.session.State())
	assert.Equal(t, 1, m.session.Location().Line)
}

func TestStepAndBack(t *testing.T) {
	m := newTestModel(t)
	m, _ = enter(t, m, "next")
	assert.Equal(t, 5, m.session.Location().Line)
	m, _ = enter(t, m, "step")
	assert.Equal(t, 3, m.session.Location().Line)
	assert.Equal(t, 1, m.session.Depth())

	m, _ = enter(t, m, "back")
	assert.Equal(t, 5, m.session.Location().Line)
	assert.Equal(t, 0, m.session.Depth())
}

func TestEmptyInputRepeatsLastCommand(t *testing.T) {
	m := newTestModel(t)
	m, _ = enter(t, m, "next")
	m, _ = enter(t, m, "")
	assert.Equal(t, 6, m.session.Location().Line)
}

func TestPrintEvaluatesInPausedScope(t *testing.T) {
	m := newTestModel(t)
	m, _ = enter(t, m, "next")
	m, _ = enter(t, m, "print a + 41")
	last := m.log[len(m.log)-1]
	assert.Equal(t, entryResult, last.kind)
	assert.Equal(t, "42", last.text)

	m, _ = enter(t, m, "print a = 100")
	m, _ = enter(t, m, "print a")
	assert.Equal(t, "1", m.log[len(m.log)-1].text)
}

func TestFinishCollectsOutput(t *testing.T) {
	m := newTestModel(t)
	m, _ = enter(t, m, "finish")
	assert.Equal(t, debug.Finished, m.session.State())
	var outputs []string
	for _, e := range m.log {
		if e.kind == entryOutput {
			outputs = append(outputs, e.text)
		}
	}
	assert.Equal(t, []string{"2"}, outputs)

	m, _ = enter(t, m, "step")
	assert.Equal(t, entryError, m.log[len(m.log)-1].kind)
}

func TestBreakpointCommands(t *testing.T) {
	m := newTestModel(t)
	m, _ = enter(t, m, "break 6")
	assert.Equal(t, []int{6}, m.session.Breakpoints())
	m, _ = enter(t, m, "continue")
	assert.Equal(t, debug.Paused, m.session.State())
	assert.Equal(t, 6, m.session.Location().Line)

	m, _ = enter(t, m, "delete 6")
	assert.Empty(t, m.session.Breakpoints())
}

func TestQuitCommand(t *testing.T) {
	m := newTestModel(t)
	m, cmd := enter(t, m, "quit")
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t)
	m, cmd := enter(t, m, "frobnicate")
	assert.Nil(t, cmd)
	assert.Equal(t, entryError, m.log[len(m.log)-1].kind)
}
