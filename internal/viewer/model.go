// Package viewer is the terminal dashboard for the reading log. It polls the
// store on a fixed interval with its own connection and shows the latest
// reading above a table of recent history.
package viewer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/domain"
	"github.com/gonikkk/smart-FloodBarrier-monitoring/internal/ports"
)

// Options control polling.
type Options struct {
	Limit           int
	RefreshInterval time.Duration
	QueryTimeout    time.Duration
}

func (o *Options) applyDefaults() {
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = 5 * time.Second
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 3 * time.Second
	}
}

type rowsMsg struct {
	rows []domain.Row
	err  error
	at   time.Time
}

type tickMsg time.Time

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	labelStyle   = lipgloss.NewStyle().Faint(true)
	valueStyle   = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	// The controller reports risk levels in Korean; anything else renders plain.
	levelStyles = map[string]lipgloss.Style{
		"주의": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		"위험": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
)

// Model implements tea.Model.
type Model struct {
	reader ports.RowReader
	opts   Options
	keys   KeyMap
	table  table.Model

	rows      []domain.Row
	connected bool
	lastErr   error
	updatedAt time.Time
}

func New(reader ports.RowReader, opts Options) Model {
	opts.applyDefaults()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 7},
			{Title: "Time", Width: 19},
			{Title: "Rain (mm)", Width: 9},
			{Title: "Level", Width: 10},
			{Title: "Servo", Width: 5},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithWidth(60),
	)

	return Model{
		reader: reader,
		opts:   opts,
		keys:   DefaultKeyMap,
		table:  t,
	}
}

// Run drives the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, reader ports.RowReader, opts Options) error {
	p := tea.NewProgram(New(reader, opts), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m Model) fetch() tea.Cmd {
	reader, limit, timeout := m.reader, m.opts.Limit, m.opts.QueryTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		rows, err := reader.Recent(ctx, limit)
		return rowsMsg{rows: rows, err: err, at: time.Now()}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		}

	case tea.WindowSizeMsg:
		// title, summary box, status and help take 9 lines
		m.table.SetHeight(max(msg.Height-9, 3))
		m.table.SetWidth(msg.Width)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case rowsMsg:
		m.updatedAt = msg.at
		if msg.err != nil {
			// keep showing the last good rows
			m.connected = false
			m.lastErr = msg.err
			return m, nil
		}
		m.connected = true
		m.lastErr = nil
		m.rows = msg.rows
		m.table.SetRows(tableRows(msg.rows))
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func tableRows(rows []domain.Row) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			strconv.FormatInt(r.ID, 10),
			formatTime(r.RecordedAt),
			strconv.Itoa(r.RainMM),
			r.Level,
			domain.ServoLabel(r.ServoOn),
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

// Latest is the most recent reading, if any.
func (m Model) Latest() (domain.Row, bool) {
	if len(m.rows) == 0 {
		return domain.Row{}, false
	}
	return m.rows[0], true
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Flood barrier monitor"))
	b.WriteString("\n")
	b.WriteString(m.summaryView())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.keys.helpLine()))
	return b.String()
}

func (m Model) summaryView() string {
	latest, ok := m.Latest()
	if !ok {
		return summaryStyle.Render(labelStyle.Render("no readings yet"))
	}

	level := valueStyle.Render(latest.Level)
	if style, ok := levelStyles[latest.Level]; ok {
		level = style.Render(latest.Level)
	}
	parts := []string{
		labelStyle.Render("Rain ") + valueStyle.Render(fmt.Sprintf("%d mm", latest.RainMM)),
		labelStyle.Render("Level ") + level,
		labelStyle.Render("Servo ") + valueStyle.Render(domain.ServoLabel(latest.ServoOn)),
		labelStyle.Render("at ") + formatTime(latest.RecordedAt),
	}
	return summaryStyle.Render(strings.Join(parts, "   "))
}

func (m Model) statusView() string {
	switch {
	case m.updatedAt.IsZero():
		return labelStyle.Render("connecting...")
	case m.connected:
		return okStyle.Render("DB connected") +
			labelStyle.Render(fmt.Sprintf("  %d rows  updated %s", len(m.rows), m.updatedAt.Format(time.TimeOnly)))
	default:
		return failStyle.Render("DB disconnected: "+m.lastErr.Error()) +
			labelStyle.Render("  retrying every "+m.opts.RefreshInterval.String())
	}
}
