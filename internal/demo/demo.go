// Package demo drives the capture pipeline with synthetic producers and
// renders it with the widget package. It exists so the widgets can be
// exercised end to end from a terminal.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/dispatch"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/view"
	"github.com/logdeck/logdeck/widget"
)

// Options configure the demo application.
type Options struct {
	Engine *capture.Engine
	// Rate is the mean number of events per second across all producers.
	// Zero uses a default suited to watching the UI by eye.
	Rate int
}

const defaultRate = 20

var producerTargets = []string{
	"app::api",
	"app::db",
	"app::net",
	"worker::ingest",
	"worker::flush",
}

// Run boots the demo TUI until ctx is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Engine == nil {
		return fmt.Errorf("demo requires an engine")
	}
	rate := opts.Rate
	if rate <= 0 {
		rate = defaultRate
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, target := range producerTargets {
		go produce(ctx, opts.Engine.Logger(target), rate/len(producerTargets)+1)
	}

	m := newModel(opts.Engine)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}

var messages = []struct {
	lv  level.Level
	msg string
}{
	{level.Trace, "cache probe key=%d"},
	{level.Debug, "request parsed in %dus"},
	{level.Debug, "connection reused id=%d"},
	{level.Info, "request served in %dms"},
	{level.Info, "batch committed rows=%d"},
	{level.Warn, "retrying after timeout attempt=%d"},
	{level.Error, "upstream unavailable code=%d"},
}

// produce emits weighted random events until ctx is cancelled. Verbose
// levels fire far more often than errors.
func produce(ctx context.Context, lg *capture.Logger, perSecond int) {
	if perSecond < 1 {
		perSecond = 1
	}
	mean := time.Second / time.Duration(perSecond)
	timer := time.NewTimer(mean)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		// Square the draw to skew toward the verbose end of the table.
		i := len(messages) - 1 - int(float64(len(messages))*rand.Float64()*rand.Float64())
		if i < 0 {
			i = 0
		} else if i >= len(messages) {
			i = len(messages) - 1
		}
		lg.Logf(messages[i].lv, messages[i].msg, rand.Intn(1000))
		timer.Reset(mean/2 + time.Duration(rand.Int63n(int64(mean))))
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	engine  *capture.Engine
	state   *view.State
	logs    *widget.LogView
	panel   *widget.TargetPanel
	keys    widget.KeyMap
	overlay *dispatch.Dispatcher[tea.KeyMsg]

	width  int
	height int
	help   bool
}

func newModel(e *capture.Engine) *model {
	return &model{
		engine:  e,
		state:   view.New(e),
		logs:    widget.NewLogView(),
		panel:   widget.NewTargetPanel(),
		keys:    widget.DefaultKeyMap(),
		overlay: dispatch.New[tea.KeyMsg](),
	}
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		// An open overlay claims the next key press.
		if m.overlay.Dispatch(msg) {
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.help = true
			m.overlay.AddListener(func(tea.KeyMsg) bool {
				m.help = false
				return true
			})
			return m, nil
		}
		if ev, ok := m.keys.Event(msg); ok {
			m.state.Transition(ev)
		}
		return m, nil
	}
	return m, nil
}

const panelWidth = 28

const helpText = `  up/down     select target
  left/right  show less / more of the selected target
  - / +       capture less / more of the selected target
  f           focus the selected target
  h           hide the target panel
  space       hide targets that capture nothing
  pgup/pgdn   scroll the log window
  esc         return to tail follow
  ?           this help
  q           quit`

var (
	statusStyle = lipgloss.NewStyle().Faint(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func (m *model) View() string {
	if m.width < 1 || m.height < 3 {
		return ""
	}
	body := m.height - 2

	if m.help {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("logdeck demo"),
			lipgloss.NewStyle().Width(m.width).Height(body).Render(helpText),
			statusStyle.Render(widget.Truncate("press any key to close", m.width)),
		)
	}

	logWidth := m.width
	panel := ""
	if !m.state.TargetsHidden() && m.width > panelWidth*2 {
		m.panel.SetSize(panelWidth, body)
		panel = m.panel.Render(m.state)
		logWidth = m.width - panelWidth - 1
	}
	m.logs.SetSize(logWidth, body)
	logs := m.logs.Render(m.state)

	var row string
	if panel != "" {
		row = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(panelWidth).Height(body).Render(panel),
			" ",
			lipgloss.NewStyle().Width(logWidth).Height(body).Render(logs),
		)
	} else {
		row = lipgloss.NewStyle().Width(logWidth).Height(body).Render(logs)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("logdeck demo"),
		row,
		statusStyle.Render(m.statusLine()),
	)
}

func (m *model) statusLine() string {
	mode := "follow"
	if m.state.Paged() {
		mode = "paged"
	}
	focus := ""
	if m.state.Focused() {
		if target, ok := m.state.SelectedTarget(); ok {
			focus = "  focus:" + target
		}
	}
	return widget.Truncate(fmt.Sprintf(
		"%s%s  events:%d lost:%d  q quit  h targets  f focus  pgup/pgdn scroll",
		mode, focus, m.engine.TotalEvents(), m.engine.Lost(),
	), m.width)
}
