package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/config"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/inspect"
)

var debugCmd = &cobra.Command{
	Use:   "debug [FILE]",
	Short: "Step through a script interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := scriptPath(args)
		if err != nil {
			return err
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		m, err := newDebugModel(path, string(src), cfg)
		if err != nil {
			return describeError(err)
		}
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(successColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	currentStyle  = lipgloss.NewStyle().Foreground(highlightColor).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(accentColor).Bold(true).Padding(0, 1)
	helpKeyStyle  = lipgloss.NewStyle().Foreground(highlightColor)
	helpDescStyle = lipgloss.NewStyle().Foreground(mutedColor)
	borderStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type entryKind uint8

const (
	entryInfo entryKind = iota
	entryResult
	entryOutput
	entryError
)

type logEntry struct {
	kind entryKind
	text string
}

type debugModel struct {
	engine  *ecmastep.Engine
	path    string
	lines   []string
	session debug.Session
	// past holds earlier sessions, newest last, for stepping back.
	past    []debug.Session
	history int
	output  *bytes.Buffer

	textInput   textinput.Model
	log         []logEntry
	lastCommand string
	width       int
	height      int
	quitting    bool
	initialized bool
}

type keyMap struct {
	Continue key.Binding
	Over     key.Binding
	Into     key.Binding
	Out      key.Binding
	Back     key.Binding
	Enter    key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Continue: key.NewBinding(key.WithKeys("f5"), key.WithHelp("f5", "continue")),
	Over:     key.NewBinding(key.WithKeys("f10"), key.WithHelp("f10", "over")),
	Into:     key.NewBinding(key.WithKeys("f11"), key.WithHelp("f11", "into")),
	Out:      key.NewBinding(key.WithKeys("f12"), key.WithHelp("f12", "out")),
	Back:     key.NewBinding(key.WithKeys("f9"), key.WithHelp("f9", "back")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run command")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
}

func newDebugModel(path, src string, c *config.Config) (debugModel, error) {
	out := &bytes.Buffer{}
	e := ecmastep.New(c, ecmastep.WithOutput(out))
	p, err := e.Compile(path, src)
	if err != nil {
		return debugModel{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "step, next, out, continue, break N, print EXPR..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "(debug) "

	m := debugModel{
		engine:    e,
		path:      path,
		lines:     strings.Split(src, "\n"),
		session:   e.Debug(p, nil, nil),
		history:   c.Debugger.History,
		output:    out,
		textInput: ti,
	}
	m = m.collectOutput()
	return m.reportEnd(), nil
}

func (m debugModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Continue):
			return m.run("continue")
		case key.Matches(msg, keys.Over):
			return m.run("next")
		case key.Matches(msg, keys.Into):
			return m.run("step")
		case key.Matches(msg, keys.Out):
			return m.run("out")
		case key.Matches(msg, keys.Back):
			return m.run("back")
		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				input = m.lastCommand
			}
			m.textInput.SetValue("")
			if input == "" {
				return m, nil
			}
			return m.run(input)
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// run executes one console command.
func (m debugModel) run(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	name, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(input, fields[0]))
	m.lastCommand = input

	move := func(f func(debug.Session) debug.Session) (tea.Model, tea.Cmd) {
		if !m.session.Active() {
			m.log = append(m.log, logEntry{entryError, "the program has " + m.session.State().String()})
			return m, nil
		}
		m.past = append(m.past, m.session)
		if m.history > 0 && len(m.past) > m.history {
			m.past = m.past[len(m.past)-m.history:]
		}
		m.session = f(m.session)
		m = m.collectOutput()
		return m.reportEnd(), nil
	}

	switch name {
	case "s", "step", "i", "into":
		return move(debug.Session.StepInto)
	case "n", "next", "over":
		return move(debug.Session.StepOver)
	case "o", "out":
		return move(debug.Session.StepOut)
	case "c", "continue":
		return move(debug.Session.Continue)
	case "f", "finish":
		return move(debug.Session.Finish)
	case "u", "back":
		if len(m.past) == 0 {
			m.log = append(m.log, logEntry{entryError, "no earlier state"})
			return m, nil
		}
		m.session = m.past[len(m.past)-1]
		m.past = m.past[:len(m.past)-1]
		m.log = append(m.log, logEntry{entryInfo, "back at " + m.session.Location().String()})
	case "b", "break":
		line, err := strconv.Atoi(rest)
		if err != nil {
			m.log = append(m.log, logEntry{entryInfo, fmt.Sprintf("breakpoints: %v", m.session.Breakpoints())})
			return m, nil
		}
		m.session = m.session.WithBreakpoint(line)
		m.log = append(m.log, logEntry{entryInfo, fmt.Sprintf("breakpoint at line %d", line)})
	case "d", "delete":
		line, err := strconv.Atoi(rest)
		if err != nil {
			m.log = append(m.log, logEntry{entryError, "usage: delete LINE"})
			return m, nil
		}
		m.session = m.session.WithoutBreakpoint(line)
	case "p", "print":
		m.log = append(m.log, m.evaluate(rest))
	case "q", "quit":
		m.quitting = true
		return m, tea.Quit
	default:
		m.log = append(m.log, logEntry{entryError, "unknown command: " + name})
	}
	return m, nil
}

// evaluate runs src in the paused context. The session does not see any of
// its effects.
func (m debugModel) evaluate(src string) logEntry {
	if src == "" {
		return logEntry{entryError, "usage: print EXPR"}
	}
	p, err := m.engine.Compile("<eval>", src)
	if err != nil {
		return logEntry{entryError, err.Error()}
	}
	mark := m.output.Len()
	v, err := m.session.Evaluate(p.Body)
	m.output.Truncate(mark)
	if err != nil {
		return logEntry{entryError, err.Error()}
	}
	return logEntry{entryResult, inspect.Format(m.session.Context().Store(), v)}
}

func (m debugModel) collectOutput() debugModel {
	if m.output.Len() == 0 {
		return m
	}
	for _, line := range strings.Split(strings.TrimRight(m.output.String(), "\n"), "\n") {
		m.log = append(m.log, logEntry{entryOutput, line})
	}
	m.output.Reset()
	return m
}

func (m debugModel) reportEnd() debugModel {
	switch m.session.State() {
	case debug.Finished:
		v, _ := m.session.Result()
		m.log = append(m.log, logEntry{entryResult, "finished: " + inspect.Format(m.session.Context().Store(), v)})
	case debug.Failed:
		_, err := m.session.Result()
		m.log = append(m.log, logEntry{entryError, err.Error()})
	}
	return m
}

func (m debugModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	header := headerStyle.Render("ecmastep debug")
	status := mutedStyle.Render(fmt.Sprintf("%s  %s  depth %d  steps %d",
		m.path, m.session.State(), m.session.Depth(), m.session.Steps()))
	b.WriteString(header + " " + status + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 80), 0))) + "\n")

	source := m.renderSource(max(m.height/2-2, 5))
	side := lipgloss.JoinVertical(lipgloss.Left, m.renderStack(), m.renderScope())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, borderStyle.Render(source), " ", side) + "\n")

	reserved := m.height/2 + 6
	logLines := max(m.height-reserved, 3)
	start := max(len(m.log)-logLines, 0)
	for _, e := range m.log[start:] {
		switch e.kind {
		case entryResult:
			b.WriteString("  " + resultStyle.Render("→ "+e.text) + "\n")
		case entryError:
			b.WriteString("  " + errorStyle.Render("✗ "+e.text) + "\n")
		case entryOutput:
			b.WriteString("  " + e.text + "\n")
		default:
			b.WriteString("  " + mutedStyle.Render(e.text) + "\n")
		}
	}

	b.WriteString("\n" + m.textInput.View() + "\n\n")
	footer := helpKeyStyle.Render("f5") + helpDescStyle.Render(" continue  ") +
		helpKeyStyle.Render("f9") + helpDescStyle.Render(" back  ") +
		helpKeyStyle.Render("f10") + helpDescStyle.Render(" over  ") +
		helpKeyStyle.Render("f11") + helpDescStyle.Render(" into  ") +
		helpKeyStyle.Render("f12") + helpDescStyle.Render(" out  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)
	return b.String()
}

// renderSource shows size lines of the script centred on the current line.
func (m debugModel) renderSource(size int) string {
	at := m.session.Location()
	current := 0
	if at.File == m.path && m.session.Active() {
		current = at.Line
	}
	breaks := map[int]bool{}
	for _, l := range m.session.Breakpoints() {
		breaks[l] = true
	}
	first := max(current-size/2, 1)
	last := min(first+size-1, len(m.lines))

	var lines []string
	for n := first; n <= last; n++ {
		gutter := "  "
		if breaks[n] {
			gutter = errorStyle.Render("●") + " "
		}
		text := fmt.Sprintf("%4d  %s", n, m.lines[n-1])
		if n == current {
			lines = append(lines, gutter+currentStyle.Render("→"+text))
			continue
		}
		lines = append(lines, gutter+" "+mutedStyle.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m debugModel) renderStack() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Call stack")
	lines := []string{title}
	for _, f := range inspect.CallStack(m.session.Context()) {
		lines = append(lines, fmt.Sprintf("  %s  %s", f.Name, mutedStyle.Render(f.Call.String())))
	}
	lines = append(lines, "  <global>")
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func (m debugModel) renderScope() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Scope")
	lines := []string{title}
	nameStyle := lipgloss.NewStyle().Foreground(highlightColor)
	for i, env := range inspect.Environments(m.session.Context()) {
		if i > 0 {
			lines = append(lines, mutedStyle.Render("  "+env.Kind))
		}
		for _, b := range env.Bindings {
			lines = append(lines, fmt.Sprintf("  %s = %s", nameStyle.Render(b.Name), b.Value))
		}
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}
