package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	rowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3A3A5C"))
	committedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7BC87B"))
	footerStyle    = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
)

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateGeneratorPick:
		content = a.renderGeneratorPick()
	default:
		content = a.renderWorkbench(width)
	}
	sections := []string{
		headerStyle.Render("◎ LOUPE"),
		content,
		a.renderStatusLine(),
	}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, footerStyle.Render(a.renderFooter()))
	return strings.Join(sections, "\n")
}

func (a *App) renderWorkbench(width int) string {
	rightWidth := max(36, width/2)
	leftWidth := width - rightWidth - 4
	if leftWidth < 30 {
		leftWidth = width - 4
		rightWidth = 0
	}
	leftBox := panelStyle.Width(max(24, leftWidth)).Render(a.datasetMenu.View())
	if rightWidth <= 0 {
		return leftBox
	}
	rightBox := panelStyle.Width(max(24, rightWidth)).Render(a.renderResultsPanel(rightWidth - 4))
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
}

func (a *App) renderResultsPanel(width int) string {
	applied := a.session.AppliedGenerator()
	title := "Generated"
	if applied != "" {
		title = fmt.Sprintf("Generated · %s", applied)
	}
	lines := []string{panelTitleStyle.Render(title)}
	if len(a.rows) == 0 {
		note := "No generated examples yet. Press g to run a generator."
		if a.session.Running() {
			note = "Working..."
		}
		lines = append(lines, dimStyle.Render(note))
		return lipgloss.NewStyle().Width(max(24, width)).Render(strings.Join(lines, "\n"))
	}
	lastGroup := -1
	for idx, row := range a.rows {
		if row.Group != lastGroup {
			lastGroup = row.Group
			parent := row.Example.ParentID()
			if parent == "" {
				parent = fmt.Sprintf("group %d", row.Group+1)
			}
			lines = append(lines, dimStyle.Render(fmt.Sprintf("from %s", parent)))
		}
		marker := "·"
		style := rowStyle
		if row.Committed {
			marker = "✓"
			style = committedStyle
		}
		line := fmt.Sprintf(" %s %s  %s", marker, row.Example.ID, summarizeExample(row.Example))
		if a.focus == focusResults && idx == a.rowSelection {
			style = selectedStyle
		}
		lines = append(lines, style.Render(line))
	}
	return lipgloss.NewStyle().Width(max(24, width)).Render(strings.Join(lines, "\n"))
}

func (a *App) renderGeneratorPick() string {
	view := a.generatorMenu.View()
	if strings.TrimSpace(view) == "" {
		view = "No compatible generators available"
	}
	hint := dimStyle.MarginTop(1).Render("Enter → run generator    Esc → cancel")
	return lipgloss.JoinVertical(lipgloss.Left, view, hint)
}

// renderStatusLine surfaces the session's derived status, with the transient
// message layered on top when present.
func (a *App) renderStatusLine() string {
	status := a.session.StatusText()
	if a.statusMsg != "" {
		if status != "" {
			status = fmt.Sprintf("%s — %s", status, a.statusMsg)
		} else {
			status = a.statusMsg
		}
	}
	if status == "" {
		return ""
	}
	return dimStyle.Render(status)
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := panelTitleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderFooter() string {
	switch a.state {
	case stateGeneratorPick:
		return "enter run · esc back"
	default:
		if a.focus == focusResults {
			return "enter commit · a commit all · x remove · c clear · tab dataset · q quit"
		}
		return "enter focus example · g generate · tab results · q quit"
	}
}
