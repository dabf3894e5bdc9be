// Package form provides the Bubble Tea entry form used to add decks and log games.
package form

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	optionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

const requiredMark = "*"

// Field describes one input. Fields with Options cycle through them with
// up/down; Multiline fields accept newlines.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Value       string
	Required    bool
	Options     []string
	Multiline   bool
}

// Values maps field keys to their trimmed input.
type Values map[string]string

// SubmitFunc receives the form values. A non-nil error is shown under the
// form and keeps it open.
type SubmitFunc func(Values) error

type input struct {
	field  Field
	line   textinput.Model
	area   textarea.Model
	option int
}

func (in *input) value() string {
	if in.field.Multiline {
		return in.area.Value()
	}
	return in.line.Value()
}

func (in *input) focus() tea.Cmd {
	if in.field.Multiline {
		return in.area.Focus()
	}
	return in.line.Focus()
}

func (in *input) blur() {
	if in.field.Multiline {
		in.area.Blur()
		return
	}
	in.line.Blur()
}

// Model implements the Bubble Tea form.
type Model struct {
	title   string
	inputs  []*input
	index   int
	submit  SubmitFunc
	errMsg  string
	done    bool
	aborted bool
	values  Values

	labelWidth int
	width      int
}

// New constructs a form.
func New(title string, fields []Field, submit SubmitFunc) *Model {
	m := &Model{title: title, submit: submit}
	for _, f := range fields {
		in := &input{field: f, option: -1}
		if f.Multiline {
			in.area = textarea.New()
			in.area.Placeholder = f.Placeholder
			in.area.ShowLineNumbers = false
			in.area.SetHeight(4)
			in.area.SetValue(f.Value)
		} else {
			in.line = textinput.New()
			in.line.Prompt = ""
			in.line.Placeholder = f.Placeholder
			in.line.CharLimit = 0
			in.line.Cursor.SetMode(cursor.CursorBlink)
			in.line.SetValue(f.Value)
		}
		for i, opt := range f.Options {
			if strings.EqualFold(opt, f.Value) {
				in.option = i
			}
		}
		m.inputs = append(m.inputs, in)
		if w := runewidth.StringWidth(labelText(f)); w > m.labelWidth {
			m.labelWidth = w
		}
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.setIndex(0))
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			if msg.Type == tea.KeyDown && m.cycleOption(1) {
				return m, nil
			}
			if msg.Type == tea.KeyDown && m.current().field.Multiline {
				break
			}
			return m, m.setIndex(m.index + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			if msg.Type == tea.KeyUp && m.cycleOption(-1) {
				return m, nil
			}
			if msg.Type == tea.KeyUp && m.current().field.Multiline {
				break
			}
			return m, m.setIndex(m.index - 1)
		case tea.KeyCtrlS:
			return m.trySubmit()
		case tea.KeyEnter:
			if m.current().field.Multiline {
				break
			}
			if m.index < len(m.inputs)-1 {
				return m, m.setIndex(m.index + 1)
			}
			return m.trySubmit()
		}
		return m, m.updateCurrent(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done || m.aborted {
		return ""
	}
	lines := []string{titleStyle.Render(m.title), ""}
	for i, in := range m.inputs {
		label := padLabel(labelText(in.field), m.labelWidth)
		style := labelStyle
		if i == m.index {
			style = focusStyle
		}
		if in.field.Multiline {
			lines = append(lines, style.Render(label))
			lines = append(lines, in.area.View())
		} else {
			lines = append(lines, style.Render(label)+" "+in.line.View())
		}
		if len(in.field.Options) > 0 && i == m.index {
			hint := "up/down: " + strings.Join(in.field.Options, " | ")
			if m.width > 0 {
				hint = runewidth.Truncate(hint, m.width-m.labelWidth-1, "...")
			}
			lines = append(lines, strings.Repeat(" ", m.labelWidth+1)+optionStyle.Render(hint))
		}
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", footerStyle.Render("tab/shift+tab: move  enter: next/save  ctrl+s: save  esc: cancel"))
	return strings.Join(lines, "\n")
}

// Submitted reports whether the form was saved.
func (m *Model) Submitted() bool {
	return m.done
}

// Values returns the saved values, or nil if the form was cancelled.
func (m *Model) Values() Values {
	return m.values
}

func (m *Model) current() *input {
	return m.inputs[m.index]
}

func (m *Model) collect() Values {
	values := make(Values, len(m.inputs))
	for _, in := range m.inputs {
		values[in.field.Key] = strings.TrimSpace(in.value())
	}
	return values
}

func (m *Model) trySubmit() (tea.Model, tea.Cmd) {
	values := m.collect()
	var missing []string
	for _, in := range m.inputs {
		if in.field.Required && values[in.field.Key] == "" {
			missing = append(missing, strings.ToLower(in.field.Label))
		}
	}
	if len(missing) > 0 {
		m.errMsg = fmt.Sprintf("please fill in: %s", strings.Join(missing, ", "))
		return m, nil
	}
	if m.submit != nil {
		if err := m.submit(values); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
	}
	m.errMsg = ""
	m.values = values
	m.done = true
	return m, tea.Quit
}

// cycleOption moves the focused field to its next or previous option. It
// reports false when the field has no options.
func (m *Model) cycleOption(delta int) bool {
	in := m.current()
	count := len(in.field.Options)
	if count == 0 {
		return false
	}
	next := in.option + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	in.option = next
	in.line.SetValue(in.field.Options[next])
	in.line.CursorEnd()
	return true
}

func (m *Model) updateCurrent(msg tea.Msg) tea.Cmd {
	in := m.current()
	var cmd tea.Cmd
	if in.field.Multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.line, cmd = in.line.Update(msg)
	}
	return cmd
}

func (m *Model) setIndex(idx int) tea.Cmd {
	count := len(m.inputs)
	if count == 0 {
		return nil
	}
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.index = idx
	var cmd tea.Cmd
	for i, in := range m.inputs {
		if i == m.index {
			cmd = in.focus()
		} else {
			in.blur()
		}
	}
	return cmd
}

func (m *Model) updateLayout() {
	if m.width <= 0 {
		return
	}
	inputWidth := m.width - m.labelWidth - 2
	if inputWidth < 10 {
		inputWidth = 10
	}
	for _, in := range m.inputs {
		if in.field.Multiline {
			in.area.SetWidth(m.width - 2)
		} else {
			in.line.Width = inputWidth
		}
	}
}

func labelText(f Field) string {
	if f.Required {
		return f.Label + requiredMark + ":"
	}
	return f.Label + ":"
}

// padLabel right-pads by display width so wide labels still line up.
func padLabel(label string, width int) string {
	if w := runewidth.StringWidth(label); w < width {
		return label + strings.Repeat(" ", width-w)
	}
	return label
}

// Run shows the form until it is saved or cancelled. ok is false on cancel.
func Run(title string, fields []Field, submit SubmitFunc) (Values, bool, error) {
	m := New(title, fields, submit)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return nil, false, err
	}
	return m.Values(), m.Submitted(), nil
}
