package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/julien-sobczak/the-noteexporter/internal/core"
)

/*
 * All Bubble Tea code is kept in this file.
 * Models are based on https://github.com/charmbracelet/bubbletea/tree/master/examples
 */

var (
	listWidth             = 40
	listHeight            = 14
	listTitleStyle        = lipgloss.NewStyle().MarginLeft(2)
	listItemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	listSelectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	listDetailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	promptStyle   = lipgloss.NewStyle().Bold(true)
	noteStyle     = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("241"))
	helpStyle     = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// Maximum number of notes listed before asking for confirmation
const maxListedNotes = 10

/*
 * Preset Selection
 */

// ChoosePreset returns the name of the selected preset or an empty string when aborted.
func ChoosePreset(presets []core.Preset) string {
	res, err := tea.NewProgram(NewPresetModel(presets)).Run()
	if err != nil {
		log.Fatal(err)
	}
	return res.(PresetModel).choice
}

func NewPresetModel(presets []core.Preset) PresetModel {
	items := []list.Item{}
	for _, preset := range presets {
		items = append(items, PresetItem{
			name:   preset.Name,
			format: preset.Format,
		})
	}

	l := list.New(items, presetDelegate{}, listWidth, listHeight)
	l.Title = "Which preset?"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(false)
	l.Styles.Title = listTitleStyle
	l.Styles.HelpStyle = helpStyle

	return PresetModel{list: l}
}

type PresetItem struct {
	name   string
	format string
}

func (i PresetItem) FilterValue() string { return i.name }

type presetDelegate struct{}

func (d presetDelegate) Height() int                             { return 1 }
func (d presetDelegate) Spacing() int                            { return 0 }
func (d presetDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d presetDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(PresetItem)
	if !ok {
		return
	}

	label := i.name + " " + listDetailStyle.Render("("+i.format+")")
	if index == m.Index() {
		fmt.Fprint(w, listSelectedItemStyle.Render("> "+label))
		return
	}
	fmt.Fprint(w, listItemStyle.Render(label))
}

type PresetModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m PresetModel) Init() tea.Cmd {
	return nil
}

func (m PresetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch keypress := msg.String(); keypress {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if i, ok := m.list.SelectedItem().(PresetItem); ok {
				m.choice = i.name
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m PresetModel) View() string {
	if m.choice != "" {
		return quitTextStyle.Render(fmt.Sprintf("Using preset %s", m.choice))
	}
	if m.quitting {
		return quitTextStyle.Render("Aborted")
	}
	return "\n" + m.list.View()
}

/*
 * Confirmation
 */

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

var confirmKeys = confirmKeyMap{
	Yes: key.NewBinding(
		key.WithKeys("y", "Y", "enter"),
		key.WithHelp("y/enter", "confirm"),
	),
	No: key.NewBinding(
		key.WithKeys("n", "N", "esc", "ctrl+c", "q"),
		key.WithHelp("n/esc", "abort"),
	),
}

// Confirm asks the user to confirm the export of the notes.
func Confirm(question string, notes []string) bool {
	res, err := tea.NewProgram(NewConfirmModel(question, notes)).Run()
	if err != nil {
		log.Fatal(err)
	}
	return res.(ConfirmModel).confirmed
}

func NewConfirmModel(question string, notes []string) ConfirmModel {
	return ConfirmModel{question: question, notes: notes}
}

type ConfirmModel struct {
	question  string
	notes     []string
	confirmed bool
	done      bool
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, confirmKeys.Yes):
			m.confirmed, m.done = true, true
			return m, tea.Quit
		case key.Matches(msg, confirmKeys.No):
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.done {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	for i, note := range m.notes {
		if i == maxListedNotes {
			sb.WriteString(noteStyle.Render(fmt.Sprintf("... and %d more", len(m.notes)-maxListedNotes)) + "\n")
			break
		}
		sb.WriteString(noteStyle.Render(note) + "\n")
	}
	sb.WriteString("\n" + promptStyle.Render(m.question) + "\n")
	sb.WriteString(helpStyle.Render(confirmKeys.Yes.Help().Key + " " + confirmKeys.Yes.Help().Desc + " • " + confirmKeys.No.Help().Key + " " + confirmKeys.No.Help().Desc))
	return sb.String()
}
