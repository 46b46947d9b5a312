package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmWord must be typed in full to confirm a destructive operation.
const confirmWord = "yes"

type confirmModel struct {
	input     textinput.Model
	message   string
	submitted bool
	cancelled bool
}

func newConfirmModel(message string) confirmModel {
	input := textinput.New()
	input.Placeholder = "yes/no"
	input.CharLimit = 8
	input.Width = 10
	input.Focus()

	return confirmModel{input: input, message: message}
}

func (m confirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true

			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m confirmModel) View() string {
	warning := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorError)).
		Padding(0, 1).
		Width(72).
		Render(m.message)

	hint := lipgloss.NewStyle().Foreground(lipgloss.Color(colorMuted)).Italic(true).
		Render(fmt.Sprintf("Type %q to proceed • Esc: cancel", confirmWord))

	return fmt.Sprintf("%s\n\n%s\n%s\n", warning, m.input.View(), hint)
}

func (m confirmModel) confirmed() bool {
	return m.submitted && !m.cancelled && strings.EqualFold(strings.TrimSpace(m.input.Value()), confirmWord)
}
