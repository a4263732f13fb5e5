// stocklens-dash is the terminal dashboard: symbol search, price chart,
// auto-refresh, and the chat assistant, backed by the StockLens server
// with synthetic fallback data when the server is unreachable.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"stocklens/internal/chat"
	"stocklens/internal/config"
	"stocklens/internal/dashboard"
	"stocklens/internal/domain"
	"stocklens/internal/health"
	"stocklens/internal/marketdata"
	"stocklens/internal/synth"
	"stocklens/internal/util"
	"stocklens/pkg/stocklens"
)

// Styles.
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	liveBadge     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10")).Padding(0, 1)
	demoBadge     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1)
	symbolStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	gainStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	chartStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	periodOnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6")).Padding(0, 1)
	periodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1)
	userMsgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	botMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	loadingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

const defaultSymbol = "AAPL"

// Input focus.
const (
	modeBrowse = iota
	modeSearch
	modeChat
)

// Main panel content.
const (
	viewChart = iota
	viewAnalysis
	viewPredictions
)

// Messages.
type pageStateMsg dashboard.PageState
type availabilityMsg bool
type countdownMsg time.Time

type chatReplyMsg struct {
	text string
	live bool
}

type chatEntry struct {
	role string // "you" or "sentio"
	text string
}

type model struct {
	loader    *dashboard.Loader
	auto      *dashboard.AutoRefresh
	monitor   *health.Monitor
	assistant *chat.Assistant
	gen       *synth.Generator
	log       *slog.Logger

	state     dashboard.PageState
	available bool

	mode        int
	searchInput textinput.Model
	chatInput   textinput.Model
	chatLog     []chatEntry
	chatBusy    bool

	view        int
	predictions []synth.PredictionPoint
	predStats   synth.ModelStats
	maPoints    []synth.MAPoint

	width, height int
}

func newModel(loader *dashboard.Loader, auto *dashboard.AutoRefresh, monitor *health.Monitor, assistant *chat.Assistant, gen *synth.Generator, logger *slog.Logger) model {
	search := textinput.New()
	search.Placeholder = "symbol (e.g. TSLA)"
	search.CharLimit = 12
	search.Width = 20

	chatIn := textinput.New()
	chatIn.Placeholder = "ask Sentio about a stock..."
	chatIn.CharLimit = 280
	chatIn.Width = 48

	return model{
		loader:      loader,
		auto:        auto,
		monitor:     monitor,
		assistant:   assistant,
		gen:         gen,
		log:         logger,
		searchInput: search,
		chatInput:   chatIn,
		chatLog: []chatEntry{
			{role: "sentio", text: "Hi! I'm Sentio, your AI trading assistant. Ask me about stock sentiment, predictions, or analysis!"},
		},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		probeCmd(m.monitor),
		func() tea.Msg {
			m.assistant.Probe(context.Background())
			return nil
		},
		countdownCmd(),
	)
}

// probeCmd runs the market-data health check off the UI goroutine.
func probeCmd(monitor *health.Monitor) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stocklens.HealthTimeout)
		defer cancel()
		return availabilityMsg(monitor.Check(ctx))
	}
}

func countdownCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownMsg(t)
	})
}

func askCmd(assistant *chat.Assistant, message string) tea.Cmd {
	return func() tea.Msg {
		reply, live := assistant.Send(context.Background(), message)
		return chatReplyMsg{text: reply, live: live}
	}
}

var periodKeys = map[string]domain.Period{
	"1": domain.Period1D,
	"2": domain.Period5D,
	"3": domain.Period1Mo,
	"4": domain.Period3Mo,
	"5": domain.Period1Y,
	"6": domain.Period5Y,
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case pageStateMsg:
		next := dashboard.PageState(msg)
		if next.Symbol != m.state.Symbol {
			m.view = viewChart
		}
		m.state = next
		return m, nil

	case availabilityMsg:
		m.available = bool(msg)
		return m, nil

	case countdownMsg:
		return m, countdownCmd()

	case chatReplyMsg:
		m.chatBusy = false
		m.chatLog = append(m.chatLog, chatEntry{role: "sentio", text: msg.text})
		if !msg.live {
			m.available = m.monitor.Available()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		switch msg.String() {
		case "enter":
			query := m.searchInput.Value()
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.mode = modeBrowse
			// Blank input is silently ignored.
			m.loader.Load(context.Background(), query, m.state.Period)
			return m, probeCmd(m.monitor)
		case "esc":
			m.searchInput.Blur()
			m.mode = modeBrowse
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd

	case modeChat:
		switch msg.String() {
		case "enter":
			question := strings.TrimSpace(m.chatInput.Value())
			if question == "" || m.chatBusy {
				return m, nil
			}
			m.chatInput.SetValue("")
			m.chatBusy = true
			m.chatLog = append(m.chatLog, chatEntry{role: "you", text: question})
			return m, askCmd(m.assistant, question)
		case "esc":
			m.chatInput.Blur()
			m.mode = modeBrowse
			return m, nil
		}
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}

	// Browse mode.
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.auto.Stop()
		return m, tea.Quit

	case "/":
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case "c":
		m.mode = modeChat
		m.chatInput.Focus()
		return m, textinput.Blink

	case "r":
		m.loader.Refresh(context.Background())
		return m, probeCmd(m.monitor)

	case "a":
		m.auto.Set(nextInterval(m.auto.Interval()))
		return m, nil

	case "p":
		if m.view == viewPredictions {
			m.view = viewChart
			return m, nil
		}
		if m.state.Symbol != "" {
			m.predictions, m.predStats = m.gen.Predictions(m.anchorPrice(), 7)
			m.view = viewPredictions
		}
		return m, nil

	case "m":
		if m.view == viewAnalysis {
			m.view = viewChart
			return m, nil
		}
		if m.state.Symbol != "" {
			m.maPoints = m.gen.MovingAverages(m.anchorPrice(), 30)
			m.view = viewAnalysis
		}
		return m, nil

	default:
		if p, ok := periodKeys[key]; ok && m.state.Symbol != "" {
			m.loader.Load(context.Background(), m.state.Symbol, p)
		}
		return m, nil
	}
}

// nextInterval cycles off -> 10s -> 30s -> 60s -> off.
func nextInterval(current int) int {
	for i, v := range dashboard.RefreshIntervals {
		if v == current {
			return dashboard.RefreshIntervals[(i+1)%len(dashboard.RefreshIntervals)]
		}
	}
	return 0
}

func (m model) View() string {
	var b strings.Builder

	badge := demoBadge.Render("DEMO MODE")
	if m.available {
		badge = liveBadge.Render("LIVE DATA")
	}
	market := "market closed"
	if util.IsMarketOpen(time.Now()) {
		market = "market open"
	}
	b.WriteString(titleStyle.Render("StockLens") + "  " + badge + "  " + dimStyle.Render(market) + "\n\n")

	if m.mode == modeSearch {
		b.WriteString("Search: " + m.searchInput.View() + "\n\n")
	}

	b.WriteString(m.renderQuote())
	switch m.view {
	case viewPredictions:
		b.WriteString(m.renderPredictions())
	case viewAnalysis:
		b.WriteString(m.renderAnalysis())
	default:
		b.WriteString(m.renderChart())
	}
	b.WriteString(m.renderPeriods())
	b.WriteString(m.renderChat())
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m model) renderQuote() string {
	s := m.state
	if s.Symbol == "" {
		return dimStyle.Render("press / and enter a symbol to get started") + "\n\n"
	}

	var b strings.Builder
	header := symbolStyle.Render(s.Symbol)
	if s.Quote.Name != "" && s.Quote.Name != s.Symbol {
		header += dimStyle.Render("  " + s.Quote.Name)
	}
	if s.Loading {
		header += loadingStyle.Render("  loading...")
	}
	b.WriteString(header + "\n")

	if s.Quote.Price > 0 {
		change := gainStyle
		if s.Quote.ChangePercent < 0 {
			change = lossStyle
		}
		b.WriteString(fmt.Sprintf("%s  %s\n",
			dashboard.FormatCurrency(s.Quote.Price),
			change.Render(dashboard.FormatPercent(s.Quote.ChangePercent))))

		var extras []string
		if s.Quote.Volume > 0 {
			extras = append(extras, "vol "+dashboard.FormatLargeNumber(float64(s.Quote.Volume)))
		}
		if s.Quote.FiftyTwoWeekHigh > 0 {
			extras = append(extras, fmt.Sprintf("52w %s - %s",
				dashboard.FormatCurrency(s.Quote.FiftyTwoWeekLow),
				dashboard.FormatCurrency(s.Quote.FiftyTwoWeekHigh)))
		}
		if len(extras) > 0 {
			b.WriteString(dimStyle.Render(strings.Join(extras, "  ")) + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// renderChart draws the series as a sparkline plus a range line.
func (m model) renderChart() string {
	series := m.state.Series
	if len(series) == 0 {
		return ""
	}

	width := m.width - 4
	if width < 20 {
		width = 60
	}
	if width > 100 {
		width = 100
	}

	line := sparkline(series, width)
	low, high := seriesRange(series)
	rangeLine := dimStyle.Render(fmt.Sprintf("%s  low %s  high %s",
		strings.ToLower(string(m.state.Period)),
		dashboard.FormatCurrency(low),
		dashboard.FormatCurrency(high)))

	return chartStyle.Render(line) + "\n" + rangeLine + "\n\n"
}

var sparks = []rune("▁▂▃▄▅▆▇█")

func sparkline(series domain.HistorySeries, width int) string {
	points := make([]float64, len(series))
	for i, p := range series {
		points[i] = p.Price
	}
	if len(points) > width {
		// Downsample by picking evenly spaced points.
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = points[i*(len(points)-1)/(width-1)]
		}
		points = sampled
	}

	low, high := points[0], points[0]
	for _, v := range points {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	span := high - low
	var b strings.Builder
	for _, v := range points {
		idx := 0
		if span > 0 {
			idx = int((v - low) / span * float64(len(sparks)-1))
		}
		b.WriteRune(sparks[idx])
	}
	return b.String()
}

func seriesRange(series domain.HistorySeries) (low, high float64) {
	low, high = series[0].Price, series[0].Price
	for _, p := range series {
		if p.Price < low {
			low = p.Price
		}
		if p.Price > high {
			high = p.Price
		}
	}
	return low, high
}

// anchorPrice seeds the demo model views: the displayed quote when one is
// loaded, otherwise the symbol's deterministic base price.
func (m model) anchorPrice() float64 {
	if m.state.Quote.Price > 0 {
		return m.state.Quote.Price
	}
	return synth.BasePrice(m.state.Symbol)
}

func (m model) renderPredictions() string {
	if len(m.predictions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("7-day projection  accuracy %.1f%%  RMSE %.2f  MAE %.2f",
		m.predStats.Accuracy, m.predStats.RMSE, m.predStats.MAE)) + "\n")
	for _, p := range m.predictions {
		style := gainStyle
		if p.Predicted < p.Actual {
			style = lossStyle
		}
		b.WriteString(fmt.Sprintf("day %d  actual %s  predicted %s\n",
			p.Day,
			dashboard.FormatCurrency(p.Actual),
			style.Render(dashboard.FormatCurrency(p.Predicted))))
	}
	return b.String() + "\n"
}

func (m model) renderAnalysis() string {
	if len(m.maPoints) == 0 {
		return ""
	}
	// The full window does not fit a terminal; show the most recent rows.
	rows := m.maPoints
	if len(rows) > 10 {
		rows = rows[len(rows)-10:]
	}
	var b strings.Builder
	b.WriteString(dimStyle.Render("date         price      ma50       ma200") + "\n")
	for _, p := range rows {
		b.WriteString(fmt.Sprintf("%s  %-9s  %-9s  %s\n",
			p.Date.Format("2006-01-02"),
			dashboard.FormatCurrency(p.Price),
			dashboard.FormatCurrency(p.MA50),
			dashboard.FormatCurrency(p.MA200)))
	}
	return b.String() + "\n"
}

func (m model) renderPeriods() string {
	var b strings.Builder
	for i, p := range domain.Periods {
		label := fmt.Sprintf("%d:%s", i+1, p)
		if p == m.state.Period {
			b.WriteString(periodOnStyle.Render(label))
		} else {
			b.WriteString(periodStyle.Render(label))
		}
	}
	return b.String() + "\n\n"
}

func (m model) renderChat() string {
	if m.mode != modeChat {
		return ""
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("── Sentio ──────────────────────") + "\n")

	start := 0
	if len(m.chatLog) > 6 {
		start = len(m.chatLog) - 6
	}
	for _, e := range m.chatLog[start:] {
		style := botMsgStyle
		prefix := "sentio: "
		if e.role == "you" {
			style = userMsgStyle
			prefix = "you: "
		}
		b.WriteString(style.Render(prefix+e.text) + "\n")
	}
	if m.chatBusy {
		b.WriteString(loadingStyle.Render("sentio is typing...") + "\n")
	}
	b.WriteString("> " + m.chatInput.View() + "\n\n")
	return b.String()
}

func (m model) renderFooter() string {
	auto := "off"
	if iv := m.auto.Interval(); iv > 0 {
		auto = fmt.Sprintf("%ds (next in %ds)", iv, int(m.auto.Remaining().Round(time.Second).Seconds()))
	}
	return dimStyle.Render(fmt.Sprintf(
		"auto-refresh %s   /: search  1-6: period  r: refresh  a: auto  p: predict  m: averages  c: chat  q: quit", auto))
}

func main() {
	_ = godotenv.Load()

	cfgPath := "config/stocklens.yaml"
	if p := os.Getenv("STOCKLENS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFileName := fmt.Sprintf("/tmp/stocklens-dash-%s.log", time.Now().Format("2006-01-02"))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()
	logger := util.NewLoggerTo(logFile, cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	client := stocklens.NewClient(cfg.Backend.BaseURL)
	gen := synth.NewGenerator()
	svc := marketdata.NewService(client, gen, logger)
	monitor := health.NewMonitor(client, logger)
	chatMonitor := health.NewMonitor(client, logger)
	assistant := chat.NewAssistant(client, chatMonitor, logger)

	loader := dashboard.NewLoader(svc, logger)
	auto := dashboard.NewAutoRefresh(func() {
		loader.Refresh(context.Background())
	})
	defer auto.Stop()

	m := newModel(loader, auto, monitor, assistant, gen, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Forward loader updates into the message loop.
	loader.OnUpdate(func(s dashboard.PageState) {
		p.Send(pageStateMsg(s))
	})
	loader.Load(context.Background(), defaultSymbol, domain.Period1Mo)

	if _, err := p.Run(); err != nil {
		log.Fatalf("running dashboard: %v", err)
	}
}
