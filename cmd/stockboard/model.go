package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"stockboard/internal/dashboard"
	"stockboard/internal/sparkline"
	"stockboard/internal/util"
	"stockboard/pkg/stockboard"
)

// Styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4"))
	busyHeaderStyle = headerStyle.Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	footerStyle     = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("8"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const (
	headerHeight = 1
	footerHeight = 1

	detailChartHeight = 8
	detailMaxWidth    = 80
)

// backend is the part of the quote client the model calls directly.
type backend interface {
	FetchDetail(ctx context.Context, symbol string) (*stockboard.QuoteDetail, error)
	Notify(ctx context.Context, symbol string) error
}

// chartSource draws sparklines.
type chartSource interface {
	Render(ctx context.Context, symbol string) (sparkline.Result, error)
	RenderSize(ctx context.Context, symbol string, width, height int) (sparkline.Result, error)
}

// refresher starts manual refreshes.
type refresher interface {
	Manual(ctx context.Context) bool
}

// Messages.
type quotesLoadedMsg struct {
	seq    uint64
	quotes []stockboard.Quote
	err    error
}

type countdownMsg struct{ remaining int }

type manualDoneMsg struct{ err error }

type manualFailedMsg struct{ err error }

type sparklineMsg struct {
	gen uint64
	res sparkline.Result
	err error
}

type detailLoadedMsg struct {
	symbol string
	detail *stockboard.QuoteDetail
	err    error
}

type detailChartMsg struct {
	symbol string
	res    sparkline.Result
	err    error
}

type notifyDoneMsg struct {
	symbol string
	err    error
}

type options struct {
	ctx         context.Context
	board       *dashboard.Board
	backend     backend
	charts      chartSource
	refresh     refresher
	cal         *util.TradingCalendar
	logger      *slog.Logger
	currency    string
	chartWidth  int
	chartHeight int
	concurrency int
	period      int
	now         func() time.Time
}

// Model.
type model struct {
	ctx      context.Context
	board    *dashboard.Board
	backend  backend
	charts   chartSource
	refresh  refresher
	cal      *util.TradingCalendar
	logger   *slog.Logger
	currency string
	now      func() time.Time

	chartWidth  int
	chartHeight int
	sem         chan struct{} // bounds concurrent sparkline fetches

	quotes    []stockboard.Quote
	lastSeq   uint64
	remaining int

	viewport      viewport.Model
	ready         bool
	width, height int
	selected      string

	// Detail view; empty detailSymbol means the grid is shown.
	detailSymbol string
	detail       *stockboard.QuoteDetail
	detailChart  string
	detailErr    error

	notice string
}

func newModel(o options) model {
	if o.now == nil {
		o.now = time.Now
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return model{
		ctx:         o.ctx,
		board:       o.board,
		backend:     o.backend,
		charts:      o.charts,
		refresh:     o.refresh,
		cal:         o.cal,
		logger:      o.logger,
		currency:    o.currency,
		now:         o.now,
		chartWidth:  o.chartWidth,
		chartHeight: o.chartHeight,
		sem:         make(chan struct{}, o.concurrency),
		remaining:   o.period,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.refresh.Manual(m.ctx) {
				m.board.BeginRefresh()
				m.notice = ""
			}
			return m, nil
		case "d":
			next := dashboard.Decoration(dashboard.ChartDecoration{})
			if m.board.Decoration().WantsChart() {
				next = dashboard.BandDecoration{Currency: m.currency}
			}
			m.board.SetDecoration(next)
			m.logger.Info("decoration changed", "decoration", next.Name())
			return m, m.renderQuotes(true)
		}

		if m.detailSymbol != "" {
			switch msg.String() {
			case "esc", "backspace":
				m.closeDetail()
				return m, nil
			case "n":
				m.notice = "sending notification…"
				return m, m.notifyCmd(m.detailSymbol)
			}
		} else {
			switch msg.String() {
			case "up", "down", "left", "right":
				m.moveSelection(msg.String())
				m.setContent()
				return m, nil
			case "enter":
				if i := m.selectedIndex(); i >= 0 {
					return m, m.openCard(m.board.Cards()[i])
				}
				return m, nil
			}
		}

	case tea.MouseMsg:
		if m.ready && m.detailSymbol == "" &&
			msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			y := msg.Y - headerHeight + m.viewport.YOffset
			cards := m.board.Cards()
			if i := m.grid().IndexAt(msg.X, y, len(cards)); i >= 0 {
				m.selected = cards[i].Symbol
				return m, m.openCard(cards[i])
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - headerHeight - footerHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.setContent()
		return m, nil

	case quotesLoadedMsg:
		if msg.seq <= m.lastSeq {
			m.logger.Debug("dropping stale quotes", "seq", msg.seq, "latest", m.lastSeq)
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("fetching quotes", "error", msg.err)
			return m, nil
		}
		m.lastSeq = msg.seq
		m.quotes = msg.quotes
		return m, m.renderQuotes(false)

	case countdownMsg:
		m.remaining = msg.remaining
		return m, nil

	case manualDoneMsg:
		m.board.EndRefresh()
		if msg.err != nil {
			m.notice = "refresh failed"
		}
		return m, nil

	case manualFailedMsg:
		m.board.EndRefresh()
		m.logger.Error("manual refresh failed", "error", msg.err)
		m.notice = "refresh failed"
		return m, nil

	case sparklineMsg:
		sym := msg.res.Symbol
		var err error
		switch {
		case msg.err != nil:
			m.logger.Warn("sparkline failed", "symbol", sym, "error", msg.err)
			err = m.board.SkipChart(sym, msg.gen)
		case !msg.res.Drawn:
			err = m.board.SkipChart(sym, msg.gen)
		default:
			err = m.board.ApplyChart(sym, msg.gen, msg.res.View, msg.res.Up)
		}
		if err != nil {
			m.logger.Debug("sparkline dropped", "symbol", sym, "reason", err)
			return m, nil
		}
		m.setContent()
		return m, nil

	case detailLoadedMsg:
		if msg.symbol != m.detailSymbol {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("fetching detail", "symbol", msg.symbol, "error", msg.err)
		}
		m.detail, m.detailErr = msg.detail, msg.err
		m.setContent()
		return m, nil

	case detailChartMsg:
		if msg.symbol != m.detailSymbol {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Warn("detail chart failed", "symbol", msg.symbol, "error", msg.err)
			return m, nil
		}
		if msg.res.Drawn {
			m.detailChart = msg.res.View
			m.setContent()
		}
		return m, nil

	case notifyDoneMsg:
		if msg.err != nil {
			m.logger.Error("notify failed", "symbol", msg.symbol, "error", msg.err)
			m.notice = "notification failed"
		} else {
			m.logger.Info("notification sent", "symbol", msg.symbol)
			m.notice = "notification sent for " + msg.symbol
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// renderQuotes rebuilds the board from the last quotes and schedules the
// sparklines the decoration asks for. keepBusy preserves a refresh button
// that is still waiting on the backend.
func (m *model) renderQuotes(keepBusy bool) tea.Cmd {
	busy := m.board.Button().Busy
	gen := m.board.Render(m.quotes, m.now())
	if keepBusy && busy {
		m.board.BeginRefresh()
	}
	m.ensureSelection()
	m.setContent()

	if !m.board.Decoration().WantsChart() {
		return nil
	}
	var cmds []tea.Cmd
	for _, sym := range m.board.PendingCharts() {
		cmds = append(cmds, m.sparklineCmd(gen, sym))
	}
	return tea.Batch(cmds...)
}

func (m *model) sparklineCmd(gen uint64, symbol string) tea.Cmd {
	ctx, charts, sem := m.ctx, m.charts, m.sem
	return func() tea.Msg {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return sparklineMsg{gen: gen, res: sparkline.Result{Symbol: symbol}, err: ctx.Err()}
		}
		defer func() { <-sem }()
		res, err := charts.Render(ctx, symbol)
		res.Symbol = symbol
		return sparklineMsg{gen: gen, res: res, err: err}
	}
}

// openCard follows a card's navigation target.
func (m *model) openCard(c dashboard.Card) tea.Cmd {
	symbol, ok := dashboard.DetailSymbol(c.Href)
	if !ok {
		m.logger.Warn("card has no detail target", "symbol", c.Symbol, "href", c.Href)
		return nil
	}
	return m.openDetail(symbol)
}

func (m *model) openDetail(symbol string) tea.Cmd {
	m.detailSymbol = symbol
	m.detail, m.detailChart, m.detailErr = nil, "", nil
	m.notice = ""
	m.setContent()
	if m.ready {
		m.viewport.GotoTop()
	}

	ctx, be, charts := m.ctx, m.backend, m.charts
	width := m.detailWidth() - 4
	return tea.Batch(
		func() tea.Msg {
			d, err := be.FetchDetail(ctx, symbol)
			return detailLoadedMsg{symbol: symbol, detail: d, err: err}
		},
		func() tea.Msg {
			res, err := charts.RenderSize(ctx, symbol, width, detailChartHeight)
			return detailChartMsg{symbol: symbol, res: res, err: err}
		},
	)
}

func (m *model) closeDetail() {
	m.detailSymbol = ""
	m.detail, m.detailChart, m.detailErr = nil, "", nil
	m.notice = ""
	m.setContent()
	if i := m.selectedIndex(); i >= 0 {
		m.ensureVisible(i)
	}
}

func (m *model) notifyCmd(symbol string) tea.Cmd {
	ctx, be := m.ctx, m.backend
	return func() tea.Msg {
		return notifyDoneMsg{symbol: symbol, err: be.Notify(ctx, symbol)}
	}
}

func (m *model) detailWidth() int {
	w := m.width
	if w > detailMaxWidth || w <= 0 {
		w = detailMaxWidth
	}
	return w
}

func (m *model) layout() dashboard.CardLayout {
	return dashboard.CardLayout{
		Width:       m.chartWidth + 4,
		ChartHeight: m.chartHeight,
		Chart:       m.board.Decoration().WantsChart(),
	}
}

func (m *model) grid() dashboard.Grid {
	return dashboard.Grid{Layout: m.layout(), Width: m.width}
}

func (m *model) selectedIndex() int {
	for i, c := range m.board.Cards() {
		if c.Symbol == m.selected {
			return i
		}
	}
	return -1
}

// ensureSelection keeps the selection on a card that still exists.
func (m *model) ensureSelection() {
	if m.selectedIndex() >= 0 {
		return
	}
	m.selected = ""
	if cards := m.board.Cards(); len(cards) > 0 {
		m.selected = cards[0].Symbol
	}
}

func (m *model) moveSelection(key string) {
	cards := m.board.Cards()
	if len(cards) == 0 {
		return
	}
	cur := m.selectedIndex()
	if cur < 0 {
		cur = 0
	} else {
		cols := m.grid().Columns()
		switch key {
		case "up":
			if cur-cols >= 0 {
				cur -= cols
			}
		case "down":
			if cur+cols < len(cards) {
				cur += cols
			}
		case "left":
			if cur > 0 {
				cur--
			}
		case "right":
			if cur < len(cards)-1 {
				cur++
			}
		}
	}
	m.selected = cards[cur].Symbol
	m.ensureVisible(cur)
}

// ensureVisible scrolls the viewport so the row holding card i is on screen.
func (m *model) ensureVisible(i int) {
	if !m.ready {
		return
	}
	top := m.grid().RowTop(i)
	h := m.layout().Height()
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if top+h > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top + h - m.viewport.Height)
	}
}

func (m *model) setContent() {
	if m.ready {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m model) renderContent() string {
	if m.detailSymbol == "" {
		return dashboard.RenderGrid(m.board.Cards(), m.grid(), m.selected)
	}
	switch {
	case m.detailErr != nil:
		return errorStyle.Render(fmt.Sprintf("  %s: %v", m.detailSymbol, m.detailErr))
	case m.detail == nil:
		return dimStyle.Render(fmt.Sprintf("  Loading %s…", m.detailSymbol))
	default:
		return dashboard.RenderDetail(m.currency, m.detail, m.detailChart, m.detailWidth())
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}
	now := m.now()

	market := "market closed"
	if m.cal != nil && m.cal.IsMarketOpen(now) {
		market = "market open"
	}
	button := m.board.Button()
	headerText := fmt.Sprintf(" %s    %s    [%s] ",
		dashboard.StatusLine(m.board.Summary(), m.remaining, m.board.UpdatedAt(), now),
		market,
		button.Label(),
	)
	style := headerStyle
	if button.Busy {
		style = busyHeaderStyle
	}
	headerBar := style.Render(padOrTrunc(headerText, m.width))

	footerLeft := " q quit  r refresh  d layout  arrows select  enter/click detail  pgup/dn scroll"
	if m.detailSymbol != "" {
		footerLeft = " q quit  r refresh  esc back  n notify"
	}
	footerRight := m.notice
	if footerRight == "" {
		footerRight = fmt.Sprintf("%.0f%%", m.viewport.ScrollPercent()*100)
	}
	footerRight += " "
	gap := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerBar := footerStyle.Render(padOrTrunc(footerLeft+strings.Repeat(" ", gap)+footerRight, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	return s + strings.Repeat(" ", width-n)
}
