// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for Loupe.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kingrea/loupe/internal/config"
	"github.com/kingrea/loupe/internal/example"
	"github.com/kingrea/loupe/internal/logbook"
	"github.com/kingrea/loupe/internal/selection"
	"github.com/kingrea/loupe/internal/session"
)

// appState represents which "screen" we're on
type appState int

const (
	stateWorkbench     appState = iota // Dataset + generated rows side by side
	stateGeneratorPick                 // Generator picker before launching a run
)

// UserTag attributes selection writes made from the keyboard. It is distinct
// from the session's own tag, so user-driven focus changes invalidate
// retrieved results while commit-driven ones do not.
const UserTag selection.Owner = "workbench-user"

type paneFocus int

const (
	focusDataset paneFocus = iota
	focusResults
)

// settlementMsg carries a finished generation call back into Update.
type settlementMsg struct {
	settlement session.Settlement
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	config     *config.Config
	store      *example.Store
	session    *session.Session
	selections *selection.Pair
	logbook    *logbook.Logbook

	state appState
	focus paneFocus

	// UI components
	datasetMenu   list.Model // Dataset example picker
	generatorMenu list.Model // Compatible generator picker
	rows          []session.Row
	rowSelection  int
	statusMsg     string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// exampleItem implements list.Item for dataset entries.
type exampleItem struct {
	id      string
	summary string
}

func (i exampleItem) Title() string       { return i.id }
func (i exampleItem) Description() string { return i.summary }
func (i exampleItem) FilterValue() string { return i.id }

// generatorItem implements list.Item for picker entries.
type generatorItem struct {
	name string
	desc string
}

func (i generatorItem) Title() string       { return i.name }
func (i generatorItem) Description() string { return i.desc }
func (i generatorItem) FilterValue() string { return i.name }

// NewApp wires the workbench around an already-assembled session.
func NewApp(cfg *config.Config, store *example.Store, sess *session.Session, selections *selection.Pair, lb *logbook.Logbook) *App {
	datasetMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	datasetMenu.Title = fmt.Sprintf("Dataset · %s", store.DatasetName())
	datasetMenu.SetShowStatusBar(false)
	datasetMenu.SetFilteringEnabled(false)
	generatorMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	generatorMenu.Title = "Select Generator"
	generatorMenu.SetShowStatusBar(false)
	generatorMenu.SetFilteringEnabled(false)

	app := &App{
		config:        cfg,
		store:         store,
		session:       sess,
		selections:    selections,
		logbook:       lb,
		state:         stateWorkbench,
		focus:         focusDataset,
		datasetMenu:   datasetMenu,
		generatorMenu: generatorMenu,
	}
	app.refreshDatasetMenu()
	app.refreshGeneratorMenu()
	return app
}

func (a *App) refreshDatasetMenu() {
	examples := a.store.Examples()
	items := make([]list.Item, len(examples))
	for i, ex := range examples {
		items[i] = exampleItem{id: ex.ID, summary: summarizeExample(ex)}
	}
	a.datasetMenu.SetItems(items)
	a.datasetMenu.Title = fmt.Sprintf("Dataset · %s (%d)", a.store.DatasetName(), len(items))
}

func (a *App) refreshGeneratorMenu() {
	names := a.session.CompatibleGenerators()
	items := make([]list.Item, 0, len(names))
	for _, name := range names {
		desc := ""
		if spec, err := a.session.ConfigSpec(name); err == nil && len(spec) > 0 {
			desc = fmt.Sprintf("%d config field(s)", len(spec))
		}
		items = append(items, generatorItem{name: name, desc: desc})
	}
	a.generatorMenu.SetItems(items)
	if a.config != nil {
		if idx := a.generatorIndex(a.config.Project.DefaultGenerator); idx >= 0 {
			a.generatorMenu.Select(idx)
		}
	}
}

func (a *App) generatorIndex(name string) int {
	target := strings.TrimSpace(name)
	if target == "" {
		return -1
	}
	for idx, item := range a.generatorMenu.Items() {
		if gi, ok := item.(generatorItem); ok && gi.name == target {
			return idx
		}
	}
	return -1
}

func (a *App) refreshRows() {
	a.rows = a.session.FlattenedRows()
	if len(a.rows) == 0 {
		a.rowSelection = 0
		if a.focus == focusResults {
			a.focus = focusDataset
		}
	} else if a.rowSelection >= len(a.rows) {
		a.rowSelection = len(a.rows) - 1
	}
}

func summarizeExample(ex example.InputExample) string {
	var parts []string
	for _, key := range example.SortedDataKeys(ex) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, ex.Data[key]))
	}
	summary := strings.Join(parts, " · ")
	if len(summary) > 80 {
		summary = summary[:77] + "..."
	}
	return summary
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// runGenerator starts a session call and hands it to bubbletea as a command.
// The closure runs off the update loop; only its settlement message mutates
// session state.
func (a *App) runGenerator(name string) tea.Cmd {
	call, ok := a.session.Start(name, nil)
	if !ok {
		a.statusMsg = "A generation run is already in progress"
		return nil
	}
	a.refreshRows()
	return func() tea.Msg {
		return settlementMsg{settlement: call(context.Background())}
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.datasetMenu.SetSize(max(0, msg.Width/2-6), max(0, msg.Height-14))
		a.generatorMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, nil

	case settlementMsg:
		a.session.Settle(msg.settlement)
		if msg.settlement.Err != nil {
			a.statusMsg = fmt.Sprintf("Generation failed: %v", msg.settlement.Err)
		} else {
			a.statusMsg = ""
		}
		a.refreshRows()
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateWorkbench {
				return a, tea.Quit
			}
		case "esc":
			if a.state == stateGeneratorPick {
				a.state = stateWorkbench
				a.statusMsg = ""
				return a, nil
			}
		case "tab":
			if a.state == stateWorkbench {
				if a.focus == focusDataset && len(a.rows) > 0 {
					a.focus = focusResults
				} else {
					a.focus = focusDataset
				}
			}
		case "left", "h":
			if a.state == stateWorkbench {
				a.focus = focusDataset
			}
		case "right", "l":
			if a.state == stateWorkbench && len(a.rows) > 0 {
				a.focus = focusResults
			}
		case "up", "k":
			if a.state == stateWorkbench && a.focus == focusResults {
				if a.rowSelection > 0 {
					a.rowSelection--
				}
				return a, nil
			}
		case "down", "j":
			if a.state == stateWorkbench && a.focus == focusResults {
				if a.rowSelection < len(a.rows)-1 {
					a.rowSelection++
				}
				return a, nil
			}
		case "g":
			if a.state == stateWorkbench {
				return a.beginGeneratorPick()
			}
		case "c":
			if a.state == stateWorkbench {
				a.session.Clear()
				a.statusMsg = ""
				a.refreshRows()
				return a, nil
			}
		case "a":
			if a.state == stateWorkbench {
				return a.commitAll()
			}
		case "x":
			if a.state == stateWorkbench && a.focus == focusResults {
				return a.removeSelectedRow()
			}
		case "enter":
			switch a.state {
			case stateGeneratorPick:
				return a.confirmGeneratorPick()
			case stateWorkbench:
				if a.focus == focusResults {
					return a.commitSelectedRow()
				}
				return a.focusSelectedExample()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateWorkbench:
		if a.focus == focusDataset {
			var menuCmd tea.Cmd
			a.datasetMenu, menuCmd = a.datasetMenu.Update(msg)
			if menuCmd != nil {
				cmds = append(cmds, menuCmd)
			}
		}
	case stateGeneratorPick:
		var menuCmd tea.Cmd
		a.generatorMenu, menuCmd = a.generatorMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	}

	return a, tea.Batch(cmds...)
}

// focusSelectedExample makes the highlighted dataset example the primary
// selection. The write carries the user tag, so the session drops any
// retrieved results for the previous focus.
func (a *App) focusSelectedExample() (tea.Model, tea.Cmd) {
	item, ok := a.datasetMenu.SelectedItem().(exampleItem)
	if !ok {
		return a, nil
	}
	if err := a.selections.Primary().SelectAndFocus([]string{item.id}, UserTag); err != nil {
		a.statusMsg = fmt.Sprintf("Selection failed: %v", err)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Focused %s", item.id)
	a.refreshRows()
	return a, nil
}

func (a *App) beginGeneratorPick() (tea.Model, tea.Cmd) {
	if !a.session.CanRun() {
		a.statusMsg = "Select an example before running a generator"
		return a, nil
	}
	if len(a.generatorMenu.Items()) == 0 {
		a.statusMsg = "No compatible generators available"
		return a, nil
	}
	a.state = stateGeneratorPick
	if a.width > 0 && a.height > 0 {
		a.generatorMenu.SetSize(max(0, a.width-6), max(0, a.height-10))
	}
	a.statusMsg = "Select a generator to run"
	return a, nil
}

func (a *App) confirmGeneratorPick() (tea.Model, tea.Cmd) {
	item, ok := a.generatorMenu.SelectedItem().(generatorItem)
	if !ok {
		a.statusMsg = "Generator selection unavailable"
		return a, nil
	}
	a.state = stateWorkbench
	if a.config != nil && a.config.Project.DefaultGenerator != item.name {
		if err := a.config.SetDefaultGenerator(item.name); err != nil {
			a.logWarn("Could not persist default generator: %v", err)
		}
	}
	return a, a.runGenerator(item.name)
}

func (a *App) commitSelectedRow() (tea.Model, tea.Cmd) {
	if a.rowSelection >= len(a.rows) {
		return a, nil
	}
	row := a.rows[a.rowSelection]
	if row.Committed {
		a.statusMsg = fmt.Sprintf("%s is already in the dataset", row.Example.ID)
		return a, nil
	}
	if err := row.Commit(); err != nil {
		a.statusMsg = fmt.Sprintf("Commit failed: %v", err)
		a.logError("Commit failed: %v", err)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Committed %s", row.Example.ID)
	a.refreshDatasetMenu()
	a.refreshRows()
	return a, nil
}

func (a *App) commitAll() (tea.Model, tea.Cmd) {
	if len(a.rows) == 0 {
		return a, nil
	}
	if err := a.session.CommitAll(); err != nil {
		a.statusMsg = fmt.Sprintf("Commit failed: %v", err)
		a.logError("Commit all failed: %v", err)
		return a, nil
	}
	a.statusMsg = "Committed all generated examples"
	a.refreshDatasetMenu()
	a.refreshRows()
	return a, nil
}

func (a *App) removeSelectedRow() (tea.Model, tea.Cmd) {
	if a.rowSelection >= len(a.rows) {
		return a, nil
	}
	row := a.rows[a.rowSelection]
	if a.session.Remove(row.Group, row.Index) {
		a.statusMsg = fmt.Sprintf("Removed %s", row.Example.ID)
	}
	a.refreshRows()
	return a, nil
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook != nil {
		a.logbook.Warn(format, args...)
	}
}

func (a *App) logError(format string, args ...any) {
	if a.logbook != nil {
		a.logbook.Error(format, args...)
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
