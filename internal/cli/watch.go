package cli

import (
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/Center-for-AI-Innovation/ingestctl/internal/metrics"
	"github.com/Center-for-AI-Innovation/ingestctl/internal/track"
)

const refreshInterval = 250 * time.Millisecond

// Theme holds the color scheme for the watch display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// refreshMsg triggers re-reading the ledger
type refreshMsg time.Time

// closedMsg signals that the auto-closer retired the session
type closedMsg struct{}

// watchModel is the bubbletea model for the live ingestion view.
type watchModel struct {
	session  *track.Session
	progress progress.Model
	theme    Theme
	jobs     []track.Job
	stats    metrics.Snapshot
	closed   bool
	quitting bool
}

// newWatchModel creates a new watch model.
func newWatchModel(sess *track.Session) watchModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return watchModel{
		session:  sess,
		progress: prog,
		theme:    defaultTheme,
		jobs:     sess.Jobs(),
	}
}

// Init starts the refresh loop and the session-close watcher.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		refreshCmd(),
		watchClosed(m.session),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case refreshMsg:
		// The poller owns all state; the view only reads snapshots.
		if jobs := m.session.Jobs(); len(jobs) > 0 {
			m.jobs = jobs
		}
		m.stats = m.session.Stats()
		if m.closed {
			return m, nil
		}
		return m, refreshCmd()

	case closedMsg:
		m.closed = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the watch display.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m watchModel) renderContent() string {
	if len(m.jobs) == 0 {
		return "Waiting for submissions...\n"
	}

	var out string
	for _, j := range m.jobs {
		out += m.renderJob(j)
	}

	terminal := lo.CountBy(m.jobs, func(j track.Job) bool { return j.Status.Terminal() })
	pct := float64(terminal) / float64(len(m.jobs))
	out += fmt.Sprintf("\n%s %d/%d items\n", m.progress.ViewAs(pct), terminal, len(m.jobs))

	footer := fmt.Sprintf("polled %d times", m.stats.Ticks)
	if m.stats.SkippedTicks > 0 {
		footer += fmt.Sprintf(", %d skipped", m.stats.SkippedTicks)
	}
	out += m.theme.hintStyle().Render(footer+"  ·  press q to continue in background") + "\n"
	return out
}

// renderJob formats one ledger entry.
func (m watchModel) renderJob(j track.Job) string {
	glyph := statusGlyphs[j.Status]
	label := j.Key
	if j.Root() {
		if n := m.session.ChildCount(j.BaseURL); n > 0 {
			label = fmt.Sprintf("%s (%d pages)", j.Key, n)
		}
	}

	switch j.Status {
	case track.StatusComplete:
		return m.theme.completedStyle().Render(glyph) + " " + label + "\n"
	case track.StatusError:
		line := m.theme.errorStyle().Render(glyph) + " " + label
		if j.ErrorDetail != "" {
			line += m.theme.hintStyle().Render("  " + j.ErrorDetail)
		}
		return line + "\n"
	default:
		return m.theme.statusStyle().Render(fmt.Sprintf("%s [%s]", glyph, j.Status)) + " " + label + "\n"
	}
}

// statusGlyphs maps each status to its display marker.
var statusGlyphs = map[track.Status]string{
	track.StatusUploading: "↑",
	track.StatusIngesting: "…",
	track.StatusComplete:  "✓",
	track.StatusError:     "✗",
}

// watchClosed waits for the auto-closer to retire the session.
func watchClosed(sess *track.Session) tea.Cmd {
	return func() tea.Msg {
		<-sess.Done()
		return closedMsg{}
	}
}

// refreshCmd schedules the next view refresh.
func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// runWatch runs the interactive status view until every job is terminal
// and the session auto-closes, or the user detaches.
func runWatch(sess *track.Session) error {
	model := newWatchModel(sess)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("status UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok {
		if m.quitting {
			fmt.Println("Ingestion continues on the backend. Run 'ingestctl status' to check on it.")
			return nil
		}
		failed := lo.Filter(m.jobs, func(j track.Job, _ int) bool { return j.Status == track.StatusError })
		for _, j := range failed {
			fmt.Printf("✗ %s: %s\n", j.Key, j.ErrorDetail)
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d item(s) failed to ingest", len(failed))
		}
	}
	return nil
}
