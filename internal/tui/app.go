// Package tui provides the interactive Bubble Tea dashboard for dataneko.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dataneko/internal/cli"
	"github.com/theirongolddev/dataneko/internal/daemon"
	"github.com/theirongolddev/dataneko/internal/economy"
	"github.com/theirongolddev/dataneko/internal/model"
	"github.com/theirongolddev/dataneko/internal/pipeline"
	"github.com/theirongolddev/dataneko/internal/tui/components"
	"github.com/theirongolddev/dataneko/internal/tui/theme"
)

// Dashboard holds everything one render needs, loaded in a single pass.
type Dashboard struct {
	State       model.EconomyState
	Today       []model.HourlyUsage
	Month       []model.DailyUsage
	MonthWifiGB float64
	MonthWWANGB float64
	Prediction  model.UsagePrediction
	LoadTime    time.Duration
}

// DataLoadedMsg is sent when a dashboard load finishes.
type DataLoadedMsg struct {
	Data Dashboard
	Err  error
}

// ActionDoneMsg is sent when a key-triggered economy action finishes.
type ActionDoneMsg struct {
	Text string
	Err  error
}

type refreshMsg time.Time

// Options configures the dashboard.
type Options struct {
	Predictor       pipeline.PredictorConfig
	RefreshInterval time.Duration
	ToyPoints       int64
	GiftPoints      int64
}

// App is the root Bubble Tea model.
type App struct {
	backend *daemon.App
	opts    Options
	clock   func() time.Time

	data        Dashboard
	loaded      bool
	loading     bool
	lastRefresh time.Time
	message     string
	messageErr  bool

	width    int
	height   int
	showHelp bool
	spinner  spinner.Model
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	chartHeight      = 6
	gaugeLabelWidth  = 10
)

var keyHints = []components.KeyHint{
	{Key: "f", Label: "eed"},
	{Key: "t", Label: "oy"},
	{Key: "g", Label: "ift"},
	{Key: "p", Label: "et"},
	{Key: "r", Label: "efresh"},
	{Key: "?", Label: "help"},
	{Key: "q", Label: "uit"},
}

// NewApp creates the dashboard over an already wired backend.
func NewApp(backend *daemon.App, opts Options) App {
	if opts.RefreshInterval < 10*time.Second {
		opts.RefreshInterval = time.Minute
	}
	if opts.ToyPoints <= 0 {
		opts.ToyPoints = 100
	}
	if opts.GiftPoints <= 0 {
		opts.GiftPoints = economy.GiftPrices()[0]
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		backend: backend,
		opts:    opts,
		clock:   time.Now,
		loading: true,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.refreshCmd(),
		a.spinner.Tick,
		scheduleRefresh(a.opts.RefreshInterval),
	)
}

func scheduleRefresh(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// refreshCmd records a usage tick and then reloads the dashboard.
func (a App) refreshCmd() tea.Cmd {
	backend, opts, now := a.backend, a.opts, a.clock()
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := backend.Tick(ctx, now); err != nil {
			return DataLoadedMsg{Err: err}
		}
		data, err := loadDashboard(ctx, backend, opts.Predictor, now)
		return DataLoadedMsg{Data: data, Err: err}
	}
}

func (a App) loadCmd() tea.Cmd {
	backend, opts, now := a.backend, a.opts, a.clock()
	return func() tea.Msg {
		data, err := loadDashboard(context.Background(), backend, opts.Predictor, now)
		return DataLoadedMsg{Data: data, Err: err}
	}
}

func loadDashboard(ctx context.Context, backend *daemon.App, pred pipeline.PredictorConfig, now time.Time) (Dashboard, error) {
	start := time.Now()
	if err := backend.Economy.Reload(ctx); err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{State: backend.Economy.State()}
	var err error
	if d.Today, err = backend.Usage.Hourly(ctx, now); err != nil {
		return d, err
	}
	if d.Month, err = backend.Usage.Monthly(ctx, now); err != nil {
		return d, err
	}
	if d.MonthWifiGB, d.MonthWWANGB, err = backend.Usage.CurrentMonthTotal(ctx, now); err != nil {
		return d, err
	}
	if d.Prediction, err = backend.Usage.Predict(ctx, now, pred); err != nil {
		return d, err
	}
	d.LoadTime = time.Since(start)
	return d, nil
}

// actionCmd runs one economy operation off the UI goroutine.
func (a App) actionCmd(fn func(ctx context.Context, m *economy.Manager) (string, error)) tea.Cmd {
	m := a.backend.Economy
	return func() tea.Msg {
		text, err := fn(context.Background(), m)
		return ActionDoneMsg{Text: text, Err: err}
	}
}

func (a App) keyAction(key string) tea.Cmd {
	switch key {
	case "f":
		return a.actionCmd(func(ctx context.Context, m *economy.Manager) (string, error) {
			hours, err := m.Feed(ctx, 0)
			return fmt.Sprintf("Fed: stamina full for %s", cli.FormatHours(hours)), err
		})
	case "t":
		points := a.opts.ToyPoints
		return a.actionCmd(func(ctx context.Context, m *economy.Manager) (string, error) {
			err := m.GiveToy(ctx, points)
			return fmt.Sprintf("Toy: %s", cli.FormatSignedPoints(-points)), err
		})
	case "g":
		points := a.opts.GiftPoints
		return a.actionCmd(func(ctx context.Context, m *economy.Manager) (string, error) {
			levels, err := m.Gift(ctx, points)
			return levelMessage("Gift accepted", levels), err
		})
	case "p":
		return a.actionCmd(func(ctx context.Context, m *economy.Manager) (string, error) {
			levels, err := m.Pet(ctx)
			return levelMessage("Purr", levels), err
		})
	}
	return nil
}

func levelMessage(prefix string, levels int) string {
	if levels > 0 {
		return fmt.Sprintf("%s, affection level +%d!", prefix, levels)
	}
	return prefix
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" || key == "q" {
			return a, tea.Quit
		}
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		if !a.loaded {
			return a, nil
		}
		if key == "r" && !a.loading {
			a.loading = true
			return a, a.refreshCmd()
		}
		if cmd := a.keyAction(key); cmd != nil {
			return a, cmd
		}
		return a, nil

	case DataLoadedMsg:
		a.loading = false
		if msg.Err != nil {
			a.setMessage(msg.Err.Error(), true)
			return a, nil
		}
		a.data = msg.Data
		a.loaded = true
		a.lastRefresh = a.clock()
		return a, nil

	case ActionDoneMsg:
		if msg.Err != nil {
			a.setMessage(describeError(msg.Err), true)
			return a, nil
		}
		a.setMessage(msg.Text, false)
		return a, a.loadCmd()

	case refreshMsg:
		cmds := []tea.Cmd{scheduleRefresh(a.opts.RefreshInterval)}
		if !a.loading {
			a.loading = true
			cmds = append(cmds, a.refreshCmd())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) setMessage(text string, isErr bool) {
	a.message = text
	a.messageErr = isErr
}

func describeError(err error) string {
	var ipe *economy.InsufficientPointsError
	if errors.As(err, &ipe) {
		return fmt.Sprintf("Not enough points: have %s, need %s",
			cli.FormatPoints(ipe.Balance), cli.FormatPoints(ipe.Requested))
	}
	return err.Error()
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  dataneko needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	body := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("◈ dataneko") + "\n\n" +
		a.spinner.View() + lipgloss.NewStyle().Foreground(t.TextMuted).Render(" Reading usage")
	if a.message != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(t.Bad).Render(a.message)
	}
	return lipgloss.Place(a.width, max(a.height, 8), lipgloss.Center, lipgloss.Center, card.Render(body))
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	rows := []struct{ key, text string }{
		{"f", "Feed (free tier, 24h of stamina)"},
		{"t", fmt.Sprintf("Give a toy (%s, relieves stress)", cli.FormatPoints(a.opts.ToyPoints))},
		{"g", fmt.Sprintf("Give a gift (%s)", cli.FormatPoints(a.opts.GiftPoints))},
		{"p", "Pet the cat"},
		{"r", "Record usage now and reload"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(keyStyle.Render(fmt.Sprintf("  %-3s", r.key)))
		b.WriteString(textStyle.Render(r.text))
		b.WriteString("\n")
	}
	return "\n" + components.ContentCard("Keys", b.String(), min(a.contentWidth(), 60))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.contentWidth()
	d := a.data
	st := d.State
	limit := a.opts.Predictor.PlanLimitGB

	title := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(" ◈ dataneko") +
		lipgloss.NewStyle().Foreground(t.TextMuted).Render(fmt.Sprintf("  %d GB plan", limit))

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Points", Value: cli.FormatPoints(st.CurrentPoints), Color: t.Points,
			Detail: fmt.Sprintf("affection Lv %d", st.AffectionLevel)},
		{Label: "Mobile this month", Value: cli.FormatGB(d.MonthWWANGB), Color: t.WWAN,
			Detail: fmt.Sprintf("of %d GB", limit)},
		{Label: "WiFi this month", Value: cli.FormatGB(d.MonthWifiGB), Color: t.Wifi},
		{Label: "Predicted mobile", Value: cli.FormatGB(d.MonthWWANGB + d.Prediction.PredictedWWANGB),
			Detail: predictionDetail(d.Prediction)},
	}, w)

	half := components.LayoutRow(w, 2)
	gw := max(10, components.CardInnerWidth(half[0])-gaugeLabelWidth-8)
	used := 0.0
	if limit > 0 {
		used = d.MonthWWANGB / float64(limit)
	}
	gauges := strings.Join([]string{
		components.Gauge("Plan", used, "", gaugeLabelWidth, gw, false),
		components.Gauge("Stamina", st.Stamina/100, "", gaugeLabelWidth, gw, true),
		components.Gauge("Stress", float64(st.Stress)/economy.MaxStress, "", gaugeLabelWidth, gw, false),
		components.Gauge("Affection", expFraction(st), "", gaugeLabelWidth, gw, true),
	}, "\n")
	petCard := components.ContentCard(
		fmt.Sprintf("Cat  ·  food for %s", cli.FormatHours(st.StaminaTimeRemainingHours)),
		gauges, half[0])

	wifi := make([]float64, len(d.Today))
	wwan := make([]float64, len(d.Today))
	for i, h := range d.Today {
		wifi[i] = model.ToGB(h.WifiBytes)
		wwan[i] = model.ToGB(h.WWANBytes)
	}
	todayCard := components.ContentCard("Today by hour", components.StackedColumns(wifi, wwan, chartHeight), half[1])

	daily := make([]float64, len(d.Month))
	for i, day := range d.Month {
		daily[i] = model.ToGB(day.WWANBytes)
	}
	monthBody := components.Sparkline(daily, t.WWAN)
	if d.Prediction.IsUnusualPattern {
		monthBody += "\n" + lipgloss.NewStyle().Foreground(t.Warn).Render("Mobile use is trending well above normal")
	}
	if len(d.Prediction.PeakHours) > 0 {
		monthBody += "\n" + lipgloss.NewStyle().Foreground(t.TextMuted).Render("Peak hours: "+formatHours(d.Prediction.PeakHours))
	}
	monthCard := components.ContentCard("Mobile data by day", monthBody, w)

	var b strings.Builder
	b.WriteString(title + "\n")
	b.WriteString(metrics + "\n")
	b.WriteString(components.CardRow([]string{petCard, todayCard}) + "\n")
	b.WriteString(monthCard + "\n")
	if a.message != "" {
		color := t.Good
		if a.messageErr {
			color = t.Bad
		}
		b.WriteString(" " + lipgloss.NewStyle().Foreground(color).Render(a.message) + "\n")
	}
	b.WriteString(components.RenderStatusBar(w, keyHints, cli.FormatAgo(a.lastRefresh)))
	return b.String()
}

func predictionDetail(p model.UsagePrediction) string {
	if p.IsDefault {
		return "estimate (little history)"
	}
	return fmt.Sprintf("%s confidence, %dd left", cli.FormatPercent(p.Confidence), p.RemainingDays)
}

func expFraction(st model.EconomyState) float64 {
	if st.AffectionExpToNextLevel <= 0 {
		return 0
	}
	return float64(st.AffectionExperience) / float64(st.AffectionExpToNextLevel)
}

func formatHours(hours []int) string {
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = fmt.Sprintf("%02d:00", h)
	}
	return strings.Join(parts, ", ")
}
