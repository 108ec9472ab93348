// Package ui is the daemon's status display: a terminal model showing
// engine health, the latest analysis pass, the current annotations,
// and a live event feed. It is a developer surface; the end-user
// annotation overlay is rendered by an external process.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"proofd/internal/annotate"
	"proofd/internal/coord"
	"proofd/internal/engine"
	"proofd/internal/otel"
)

// feedRefresh is how often the event feed re-reads the ring buffer.
const feedRefresh = 500 * time.Millisecond

// tickMsg drives the periodic feed refresh.
type tickMsg time.Time

// Model is the root status model. Pipeline updates arrive as
// coord.PassPublished and coord.StatusChanged via program.Send.
type Model struct {
	coord     *coord.Coordinator
	ring      *otel.RingBuffer
	feedLines int

	spin spinner.Model
	feed viewport.Model

	status      engine.Status
	lastPass    *coord.PassPublished
	annotations []annotate.Annotation
	paused      bool
	width       int
	height      int
}

// New creates the status model. ring may be nil to hide the feed.
func New(c *coord.Coordinator, ring *otel.RingBuffer, feedLines int) Model {
	if feedLines <= 0 {
		feedLines = 10
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		coord:     c,
		ring:      ring,
		feedLines: feedLines,
		spin:      sp,
		feed:      viewport.New(80, feedLines),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(feedRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			m.paused = !m.paused
			if m.coord != nil {
				m.coord.SetSuppressed(m.paused)
			}
			return m, nil
		case "r":
			if m.coord != nil {
				m.coord.RequestAnalysis()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feed.Width = msg.Width
		return m, nil

	case coord.StatusChanged:
		m.status = msg.Status
		return m, nil

	case coord.PassPublished:
		pass := msg
		m.lastPass = &pass
		m.annotations = msg.Annotations
		return m, nil

	case tickMsg:
		m.refreshFeed()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

// refreshFeed re-renders the ring buffer tail into the viewport.
func (m *Model) refreshFeed() {
	if m.ring == nil {
		return
	}
	events := m.ring.Last(m.feedLines)
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, FeedLine.Render(formatEvent(e)))
	}
	m.feed.SetContent(strings.Join(lines, "\n"))
	m.feed.GotoBottom()
}

// formatEvent renders one event as a feed row. Events carry counts and
// categories only, so rows are safe to display.
func formatEvent(e otel.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-16s", e.Time.Format("15:04:05"), e.Kind)
	if e.Gen > 0 {
		fmt.Fprintf(&b, " gen=%d", e.Gen)
	}
	if e.Count > 0 {
		fmt.Fprintf(&b, " n=%d", e.Count)
	}
	if e.State != "" {
		fmt.Fprintf(&b, " state=%s", e.State)
	}
	if e.Strategy > 0 {
		fmt.Fprintf(&b, " strategy=%d", e.Strategy)
	}
	if e.DurMs > 0 {
		fmt.Fprintf(&b, " (%.1fms)", e.DurMs)
	}
	return b.String()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("proofd"))
	b.WriteString("\n")

	b.WriteString(SectionHeader.Render("Engine"))
	b.WriteString("\n  ")
	b.WriteString(m.engineLine())
	b.WriteString("\n")

	b.WriteString(SectionHeader.Render("Last pass"))
	b.WriteString("\n  ")
	b.WriteString(m.passLine())
	b.WriteString("\n")

	if len(m.annotations) > 0 {
		b.WriteString(SectionHeader.Render(fmt.Sprintf("Annotations (%d)", len(m.annotations))))
		b.WriteString("\n")
		for _, a := range m.annotations {
			badge := SpellingBadge
			if a.Color == annotate.ColorGrammar {
				badge = GrammarBadge
			}
			fmt.Fprintf(&b, "  %s %s\n",
				badge.Render(fmt.Sprintf("[%d] %s", a.FindingIndex, a.Color)),
				MutedText.Render(fmt.Sprintf("(%.0f,%.0f) %.0fx%.0f", a.Rect.X, a.Rect.Y, a.Rect.W, a.Rect.H)))
		}
	}

	if m.ring != nil {
		b.WriteString(SectionHeader.Render("Events"))
		b.WriteString("\n")
		b.WriteString(m.feed.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) engineLine() string {
	st := m.status
	switch st.State {
	case engine.StateReady:
		return StateReady.Render("ready")
	case engine.StateDegraded:
		return StateDegraded.Render(st.String())
	case engine.StateFailed:
		return StateFailed.Render("failed")
	default:
		return m.spin.View() + " initializing"
	}
}

func (m Model) passLine() string {
	if m.lastPass == nil {
		return MutedText.Render("none yet")
	}
	p := m.lastPass
	line := fmt.Sprintf("gen %d: %d spelling, %d grammar in %.1fms",
		p.Gen, p.Spelling, p.Grammar, float64(p.Dur)/float64(time.Millisecond))
	if p.Dropped > 0 {
		line += fmt.Sprintf(" (%d unplaced)", p.Dropped)
	}
	return line
}

func (m Model) statusBar() string {
	pause := "pause"
	if m.paused {
		pause = "resume (paused)"
	}
	return StatusBar.Render(
		StatusBarKey.Render("r") + " re-analyze  " +
			StatusBarKey.Render("p") + " " + pause + "  " +
			StatusBarKey.Render("q") + " quit")
}
