// Package tui shows one report full screen and redraws it whenever the task
// data or the Timewarrior state changes.
package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskview/internal/export"
	"github.com/sadopc/taskview/internal/render"
)

// App is the root Bubble Tea model.
type App struct {
	load      Loader
	interval  time.Duration
	exportDir string
	now       func() time.Time

	width  int
	height int

	snap        Snapshot
	loaded      bool
	loadErr     error
	refreshedAt time.Time

	showHelp      bool
	exportPicking bool
	exportCursor  int

	viewport viewport.Model
	help     help.Model
	status   string
	isError  bool
}

// NewApp builds the view. interval is how often the report is reloaded
// without a change notification; exportDir receives exported files.
func NewApp(load Loader, interval time.Duration, exportDir string) App {
	h := help.New()
	h.ShowAll = false

	return App{
		load:      load,
		interval:  interval,
		exportDir: exportDir,
		now:       time.Now,
		viewport:  viewport.New(0, 0),
		help:      h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), a.tickCmd())
}

func (a App) tickCmd() tea.Cmd {
	if a.interval <= 0 {
		return nil
	}
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) loadCmd() tea.Cmd {
	load, now := a.load, a.now
	return func() tea.Msg {
		snap, err := load()
		return loadedMsg{snap: snap, err: err, at: now()}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.resize()
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}
		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			a.resize()
			return a, nil
		case key.Matches(msg, keys.Refresh):
			a.status = "Refreshing..."
			a.isError = false
			return a, a.loadCmd()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		}

	case loadedMsg:
		a.loaded = true
		a.loadErr = msg.err
		a.refreshedAt = msg.at
		if msg.err == nil {
			a.snap = msg.snap
			a.status = ""
		}
		a.viewport.SetContent(a.content())
		return a, nil

	case changedMsg:
		return a, a.loadCmd()

	case tickMsg:
		return a, tea.Batch(a.loadCmd(), a.tickCmd())

	case statusMsg:
		a.status = msg.text
		a.isError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.isError = false
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) resize() {
	header := lipgloss.Height(a.renderHeader())
	footer := lipgloss.Height(a.renderFooter())
	a.viewport.Width = a.width
	a.viewport.Height = max(a.height-header-footer, 1)
}

func (a App) content() string {
	if a.loadErr != nil {
		return errorStyle.Render("error: " + a.loadErr.Error())
	}
	return render.Table(a.snap.Table, a.snap.Tracked)
}

func (a App) View() string {
	if a.width == 0 || !a.loaded {
		return "Loading..."
	}

	body := a.viewport.View()
	if a.exportPicking {
		body = a.renderExportPicker()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), body, a.renderFooter())
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskview")
	name := titleStyle.Render(a.snap.Report)

	right := ""
	if !a.refreshedAt.IsZero() {
		right = mutedStyle.Render("updated " + a.refreshedAt.Format("15:04:05"))
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(name)-lipgloss.Width(right)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", name, spacer, right))
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	switch {
	case a.status != "" && a.isError:
		right = errorStyle.Render(" " + a.status)
	case a.status != "":
		right = mutedStyle.Render(" " + a.status)
	case len(a.snap.Tracked) > 0:
		right = successStyle.Render(fmt.Sprintf(" ● %d tracked", len(a.snap.Tracked)))
	}

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(max(a.width-4, 20)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the table on screen, so the file matches what the user saw.
func (a App) doExport(format int) tea.Cmd {
	snap, dir, date := a.snap, a.exportDir, a.now().Format("2006-01-02")
	return func() tea.Msg {
		base := fmt.Sprintf("taskview-%s-%s", snap.Report, date)
		if format == 0 {
			path := filepath.Join(dir, base+".csv")
			if err := export.ToCSV(snap.Table, snap.Tracked, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
			return exportDoneMsg{path: path}
		}
		path := filepath.Join(dir, base+".json")
		if err := export.ToJSON(snap.Table, snap.Tracked, snap.Report, path); err != nil {
			return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
