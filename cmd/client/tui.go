package main

import (
	"context"
	"fmt"
	"strings"

	"PairPulse/internal/chart"
	"PairPulse/internal/domain/models"
	"PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	"PairPulse/pkg/canvas"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#aaaaaa"))
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00E8A2"))
)

// yAxisWidth fits "%11.6f │".
const yAxisWidth = 14

// frameSink keeps only the newest frame so a slow redraw never blocks a tick.
type frameSink struct {
	ch chan models.ChartFrame
}

func newFrameSink() *frameSink {
	return &frameSink{ch: make(chan models.ChartFrame, 1)}
}

func (s *frameSink) OnFrame(f models.ChartFrame) {
	for {
		select {
		case s.ch <- f:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

type (
	frameMsg models.ChartFrame
	scanMsg  struct {
		info *models.TokenInfo
		err  error
	}
)

type model struct {
	identifier string
	session    *usecase.Session
	sink       *frameSink
	renderer   *chart.Renderer
	term       *canvas.Terminal

	frame  models.ChartFrame
	token  *models.TokenInfo
	err    error
	width  int
	height int
}

func newModel(identifier string, session *usecase.Session, sink *frameSink, p chart.Palette) model {
	return model{
		identifier: identifier,
		session:    session,
		sink:       sink,
		renderer:   chart.NewRenderer(p),
		term:       canvas.NewTerminal(1, 1),
		frame:      session.Frame(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.scan(), waitForFrame(m.sink.ch))
}

func (m model) scan() tea.Cmd {
	return func() tea.Msg {
		info, err := m.session.StartScan(context.Background(), m.identifier)
		return scanMsg{info: info, err: err}
	}
}

func waitForFrame(ch <-chan models.ChartFrame) tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-ch)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.session.Stop()
			return m, tea.Quit
		case "1", "2", "3", "4", "5":
			tf := repository.Presets()[key[0]-'1']
			if err := m.session.SetTimeframe(tf); err != nil {
				m.err = err
			}
		case "r":
			return m, m.scan()
		}

	case scanMsg:
		m.err = msg.err
		if msg.info != nil {
			m.token = msg.info
		}

	case frameMsg:
		m.frame = models.ChartFrame(msg)
		return m, waitForFrame(m.sink.ch)
	}

	return m, nil
}

func (m model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderChart())
	b.WriteByte('\n')
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m model) renderHeader() string {
	if m.err != nil {
		return errStyle.Render(fmt.Sprintf("%s: %v", m.identifier, m.err))
	}
	t := m.token
	if t == nil {
		return headerStyle.Render(fmt.Sprintf("resolving %s…", m.identifier))
	}
	price := t.PriceUSD
	if st := m.session.State(); st.LastPrice > 0 {
		price = st.LastPrice
	}
	return headerStyle.Render(fmt.Sprintf(
		"%s (%s)  $%.8g  liq $%s  mcap $%s  vol24h $%s  %d samples",
		t.Name, t.Symbol, price,
		compact(t.LiquidityUSD), compact(t.MarketCap), compact(t.Volume24h),
		m.frame.Samples,
	))
}

func (m model) renderChart() string {
	rows := m.height - 3
	if rows < 3 {
		rows = 3
	}
	cols := m.width - yAxisWidth
	if cols < 2 {
		cols = 2
	}

	candles := m.frame.Candles
	if maxCandles := cols / 2; len(candles) > maxCandles {
		candles = candles[len(candles)-maxCandles:]
	}

	m.term.Resize(cols, rows)
	m.renderer.Render(m.term, candles)

	tr, err := chart.NewTransform(candles, float64(rows))
	lines := strings.Split(m.term.String(), "\n")
	var b strings.Builder
	for row, line := range lines {
		label := strings.Repeat(" ", yAxisWidth-2) + " │"
		if err == nil && row%4 == 0 {
			label = fmt.Sprintf("%11.6f │", tr.Price(float64(row)))
		}
		b.WriteString(axisStyle.Render(label))
		b.WriteString(line)
		if row < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	if len(candles) == 0 {
		b.WriteString("\n" + footerStyle.Render(fmt.Sprintf("waiting for %d samples…", usecase.MinSamples)))
	}
	return b.String()
}

func (m model) renderFooter() string {
	var parts []string
	for i, tf := range repository.Presets() {
		label := fmt.Sprintf("[%d] %s", i+1, repository.FormatTimeframe(tf))
		if tf == m.frame.Timeframe {
			parts = append(parts, activeStyle.Render(label))
			continue
		}
		parts = append(parts, footerStyle.Render(label))
	}
	parts = append(parts, footerStyle.Render("[r] rescan  [q] quit"))
	return strings.Join(parts, "  ")
}

func compact(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
