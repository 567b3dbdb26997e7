package audit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cryoneth/job-bot-telegram/internal/model"
	"github.com/cryoneth/job-bot-telegram/internal/store"
)

// Lines per entry in the list view (headline + subtitle + blank separator).
const entryHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	entryTitleStyle = lipgloss.NewStyle().
			Bold(true)

	entrySubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	alertedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	suppressedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)
)

type auditModel struct {
	userID   string
	rows     []store.DecisionRow
	vp       viewport.Model
	cursor   int
	width    int
	height   int
	ready    bool
	view     viewState
	detail   store.DecisionRow
	wantQuit bool
}

func (m auditModel) Init() tea.Cmd {
	return nil
}

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m auditModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "enter":
		if len(m.rows) > 0 {
			m.view = viewDetail
			m.detail = m.rows[m.cursor]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m auditModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	}
	return m, nil
}

func (m *auditModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.rows)-1, 0))
	m.vp.SetContent(renderRows(m.rows, m.cursor))
	m.ensureCursorVisible()
}

func (m *auditModel) ensureCursorVisible() {
	cursorTop := m.cursor * entryHeight
	cursorBottom := cursorTop + entryHeight - 1

	if cursorTop < m.vp.YOffset {
		m.vp.SetYOffset(cursorTop)
	} else if cursorBottom >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(cursorBottom - m.vp.Height + 1)
	}
}

func (m *auditModel) recalcLayout() {
	// Header (1) + border top/bottom (2) + status bar (1).
	w := max(m.width-2, 20)
	h := max(m.height-4, 5)

	if !m.ready {
		m.vp = viewport.New(w, h)
		m.ready = true
	} else {
		m.vp.Width = w
		m.vp.Height = h
	}
	m.vp.SetContent(renderRows(m.rows, m.cursor))
}

func (m auditModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.view == viewDetail {
		return m.viewDetail()
	}

	header := headerStyle.Render(fmt.Sprintf(" Decisions for %s (%d)", m.userID, len(m.rows)))
	pane := borderStyle.Width(m.vp.Width).Render(m.vp.View())
	statusBar := statusBarStyle.Width(m.width).Render(
		" ↑/↓ cursor  Enter detail  Esc back to picker  q quit")

	return header + "\n" + pane + "\n" + statusBar
}

func (m auditModel) viewDetail() string {
	r := m.detail
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("User", r.UserID)
	addField("Source", r.Key.SourceID)
	addField("Item", r.Key.ItemID)
	addField("Decision", decisionLabel(r.Decision))
	addField("Decided", r.DecidedAt.Local().Format("2006-01-02 15:04:05 MST"))

	title := detailTitleStyle.Render("Decision Details")
	content := borderStyle.Width(max(m.width-2, 20)).Render(b.String())
	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  q quit")

	return title + "\n" + content + "\n" + statusBar
}

func renderRows(rows []store.DecisionRow, cursor int) string {
	if len(rows) == 0 {
		return "  (no decisions recorded)"
	}

	var b strings.Builder
	for i, r := range rows {
		titleSt := entryTitleStyle
		subtitleSt := entrySubtitleStyle
		prefix := "  "
		if i == cursor {
			titleSt = selectedTitleStyle
			subtitleSt = selectedSubtitleStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(r.Key.String()))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(
			decisionLabel(r.Decision) + " · " + r.DecidedAt.Local().Format("2006-01-02 15:04")))
		b.WriteByte('\n')

		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func decisionLabel(d model.Decision) string {
	switch d {
	case model.DecisionAlerted:
		return alertedStyle.Render("alerted")
	case model.DecisionSuppressed:
		return suppressedStyle.Render("suppressed")
	default:
		return string(d)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunDecisionTUI shows the recorded decisions for one user.
// Returns wantQuit=true if the user pressed q, false on esc (back to the
// picker).
func RunDecisionTUI(userID string, rows []store.DecisionRow) (bool, error) {
	m := auditModel{
		userID: userID,
		rows:   rows,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(auditModel)
	return final.wantQuit, nil
}
