// Package prompt implements the interactive terminal menus of the CLI.
package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the operator leaves a prompt without answering.
var ErrCancelled = errors.New("prompt cancelled")

const (
	colorAccent = "#FF6D5A"
	colorMuted  = "#888888"
	colorOK     = "#6BCB77"
	colorError  = "#FF6B6B"
)

type option struct {
	index int
	label string
}

func (o option) Title() string       { return o.label }
func (o option) Description() string { return "" }
func (o option) FilterValue() string { return o.label }

// selectModel is a single-choice menu.
type selectModel struct {
	list      list.Model
	chosen    int
	cancelled bool
}

func newSelectModel(title string, options []string) selectModel {
	items := make([]list.Item, len(options))
	for i, label := range options {
		items[i] = option{index: i, label: label}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	menu := list.New(items, delegate, 60, min(len(options)+6, 20))
	menu.Title = title
	menu.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorAccent))
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(len(options) > 8)

	return selectModel{list: menu, chosen: -1}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height, len(m.list.Items())+6))

		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.Type {
		case tea.KeyEnter:
			if item, ok := m.list.SelectedItem().(option); ok {
				m.chosen = item.index
			}

			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true

			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m selectModel) View() string {
	return m.list.View() + "\n"
}

func (m selectModel) result() (int, error) {
	if m.cancelled || m.chosen < 0 {
		return -1, ErrCancelled
	}

	return m.chosen, nil
}

func unexpectedModel(model tea.Model) error {
	return fmt.Errorf("unexpected prompt model %T", model)
}
