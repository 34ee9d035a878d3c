// Package settings is the interactive terminal screen for choosing which
// dashboard widgets a profile shows.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CreativeUnicorns/widgetprefs"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	hiddenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78")).MarginTop(1)
	checkedMark   = "[x]"
	uncheckedMark = "[ ]"
)

// VisibilityMsg carries the map returned by a Manager operation.
type VisibilityMsg struct {
	Visibility widgetprefs.VisibilityMap
	Status     string
}

// Model lists every registry widget with a checkbox.
type Model struct {
	ctx      context.Context
	manager  *widgetprefs.Manager
	profile  string
	widgets  []widgetprefs.Widget
	vis      widgetprefs.VisibilityMap
	cursor   int
	keys     KeyMap
	help     help.Model
	status   string
	quitting bool
}

// New loads the profile's visibility and returns a ready Model.
func New(ctx context.Context, mgr *widgetprefs.Manager, profile string) Model {
	return Model{
		ctx:     ctx,
		manager: mgr,
		profile: profile,
		widgets: mgr.Registry().All(),
		vis:     mgr.Load(ctx, profile),
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case VisibilityMsg:
		m.vis = msg.Visibility
		m.status = msg.Status
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.widgets)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if len(m.widgets) == 0 {
			return m, nil
		}
		return m, m.toggleCmd(m.widgets[m.cursor])
	case key.Matches(msg, m.keys.Reset):
		return m, m.resetCmd()
	}
	return m, nil
}

func (m Model) toggleCmd(w widgetprefs.Widget) tea.Cmd {
	ctx, mgr, profile := m.ctx, m.manager, m.profile
	return func() tea.Msg {
		v := mgr.Toggle(ctx, profile, w.ID)
		state := "hidden"
		if mgr.Registry().IsVisible(v, w.ID) {
			state = "shown"
		}
		return VisibilityMsg{Visibility: v, Status: fmt.Sprintf("%s %s", displayName(w), state)}
	}
}

func (m Model) resetCmd() tea.Cmd {
	ctx, mgr, profile := m.ctx, m.manager, m.profile
	return func() tea.Msg {
		return VisibilityMsg{Visibility: mgr.Reset(ctx, profile), Status: "Restored default widgets"}
	}
}

// Cursor returns the highlighted row.
func (m Model) Cursor() int {
	return m.cursor
}

// Visibility returns the map currently displayed.
func (m Model) Visibility() widgetprefs.VisibilityMap {
	return m.vis.Clone()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Dashboard widgets · %s", m.profileName())))
	b.WriteString("\n")

	reg := m.manager.Registry()
	for i, w := range m.widgets {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		mark := uncheckedMark
		name := displayName(w)
		if reg.IsVisible(m.vis, w.ID) {
			mark = checkedMark
		} else {
			name = hiddenStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, mark, name, idStyle.Render("("+w.ID+")"))
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) profileName() string {
	if m.profile == "" {
		return widgetprefs.DefaultProfile
	}
	return m.profile
}

func displayName(w widgetprefs.Widget) string {
	if w.Title != "" {
		return w.Title
	}
	return w.ID
}

// Run starts the settings program on the terminal and blocks until the user quits.
func Run(ctx context.Context, mgr *widgetprefs.Manager, profile string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(New(ctx, mgr, profile), opts...).Run()
	return err
}
