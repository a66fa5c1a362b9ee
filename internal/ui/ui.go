package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/muse/internal/cache"
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PromptView ViewState = iota
	GenerateView
	ResultView
	LibraryView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	manager *tasks.Manager
	cache   *cache.TrackCache
	width   int
	height  int

	input       textinput.Model
	spin        spinner.Model
	progressBar progress.Model
	library     list.Model

	snapshot    tasks.Snapshot
	snaps       <-chan tasks.Snapshot
	unsubscribe func()

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, manager *tasks.Manager, tc *cache.TrackCache) *Model {
	input := textinput.New()
	input.Placeholder = "an upbeat synthwave song about city lights"
	input.CharLimit = 400
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		ctx:         ctx,
		view:        PromptView,
		manager:     manager,
		cache:       tc,
		input:       input,
		spin:        spin,
		progressBar: progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init starts the prompt input cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		m.progressBar.Width = msg.Width - 8
		if m.library.Width() == 0 {
			m.library.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PromptView:
			return m.handlePromptKeys(msg)
		case GenerateView:
			return m.handleGenerateKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case LibraryView:
			return m.handleLibraryKeys(msg)
		}

	case submitResultMsg:
		// A rejected submission also surfaces through the errored snapshot;
		// keep the raw error around for rendering
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case snapshotMsg:
		m.snapshot = tasks.Snapshot(msg)
		switch m.snapshot.State {
		case tasks.Completed, tasks.Errored:
			m.stopWatching()
			m.view = ResultView
			return m, nil
		case tasks.Idle:
			// Cancelled; back to the prompt
			m.stopWatching()
			m.view = PromptView
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, m.waitForSnapshot()

	case libraryLoadedMsg:
		items := make([]list.Item, len(msg.entries))
		for i, entry := range msg.entries {
			items[i] = cachedTrackItem{entry: entry}
		}
		m.library = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.library.Title = "Library"
		m.library.SetSize(m.width-4, m.height-8)
		m.view = LibraryView
		return m, nil

	case spinner.TickMsg:
		if m.view != GenerateView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m.updateComponents(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PromptView:
		return m.renderPrompt()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	case LibraryView:
		return m.renderLibrary()
	default:
		return ""
	}
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		m.err = nil
		m.startWatching()
		m.view = GenerateView
		return m, tea.Batch(m.submit(prompt), m.waitForSnapshot(), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleGenerateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		// The idle snapshot routes the view back to the prompt
		return m, m.cancelGeneration()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PromptView
		m.err = nil
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.library):
		return m, m.loadLibrary()
	}
	return m, nil
}

func (m *Model) handleLibraryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ResultView
		return m, nil
	}

	var cmd tea.Cmd
	m.library, cmd = m.library.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PromptView:
		m.input, cmd = m.input.Update(msg)
	case LibraryView:
		m.library, cmd = m.library.Update(msg)
	}
	return m, cmd
}

func (m *Model) startWatching() {
	m.stopWatching()
	m.snaps, m.unsubscribe = m.manager.Subscribe()
}

func (m *Model) stopWatching() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Model) submit(prompt string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.manager.Submit(m.ctx, prompt, services.GenerateOptions{})
		return submitResultMsg{err: err}
	}
}

func (m *Model) cancelGeneration() tea.Cmd {
	return func() tea.Msg {
		m.manager.Cancel(m.ctx)
		return nil
	}
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		if m.snaps == nil {
			return nil
		}
		return snapshotMsg(<-m.snaps)
	}
}

func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		return libraryLoadedMsg{entries: m.cache.List()}
	}
}

func (m *Model) renderPrompt() string {
	title := styles.title.Render("What should we make?")

	var errLine string
	if m.err != nil {
		errLine = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, errLine, m.input.View(), helpView)
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Generating")

	status := fmt.Sprintf("%s %s", m.spin.View(), m.snapshot.State)
	if m.snapshot.Attempt > 0 {
		status = fmt.Sprintf("%s (poll %d)", status, m.snapshot.Attempt)
	}

	bar := m.progressBar.ViewAs(float64(m.snapshot.Progress) / 100)

	var tracks strings.Builder
	for _, t := range m.snapshot.Tracks {
		name := t.Title
		if name == "" {
			name = t.ID
		}
		tracks.WriteString(fmt.Sprintf("  %s - %s\n", name, renderStatus(t.Status)))
	}

	helpKeys := []key.Binding{m.keys.cancel, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s\n%s", title, status, bar, tracks.String(), helpView)
}

func (m *Model) renderResult() string {
	helpKeys := []key.Binding{m.keys.restart, m.keys.library, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	if m.snapshot.State == tasks.Errored {
		message := m.snapshot.Err
		if message == "" && m.err != nil {
			message = m.err.Error()
		}
		body := styles.err.Render(fmt.Sprintf("Generation failed: %s", message))
		return fmt.Sprintf("%s\n\n%s", body, helpView)
	}

	title := styles.ok.Render("✓ Generation Complete!")

	var body strings.Builder
	for _, t := range m.snapshot.CompletedTracks() {
		body.WriteString(fmt.Sprintf("\n  %s\n  %s\n", t.Title, styles.help.Render(t.AudioURL)))
	}
	if failed := len(m.snapshot.Tracks) - len(m.snapshot.CompletedTracks()); failed > 0 {
		body.WriteString(fmt.Sprintf("\n%s\n", styles.warn.Render(fmt.Sprintf("%d track(s) failed to generate", failed))))
	}

	return fmt.Sprintf("%s\n%s\n%s", title, body.String(), helpView)
}

func (m *Model) renderLibrary() string {
	backKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	helpKeys := []key.Binding{backKey, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.library.View(), helpView)
}

func renderStatus(s models.TrackStatus) string {
	switch s {
	case models.StatusComplete:
		return styles.ok.Render(string(s))
	case models.StatusError:
		return styles.err.Render(string(s))
	default:
		return styles.warn.Render(string(s))
	}
}
