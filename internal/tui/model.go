// Package tui is the terminal dashboard: one panel per stream, each polled
// on its own schedule, with change highlights that fade after a window.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tablero/internal/dashboard"
	"tablero/internal/domain"
	"tablero/internal/feed"
	"tablero/internal/highlight"
	"tablero/internal/live"
)

// Stream is one locally polled panel.
type Stream struct {
	Panel    *dashboard.Panel
	Source   feed.Source
	Interval time.Duration
}

// Options configures a Model.
type Options struct {
	Window  time.Duration // highlight lifetime (default 2s)
	Timeout time.Duration // per-poll timeout (default 5s)
	Logger  *slog.Logger
	Now     func() time.Time
}

// Messages.
type pollMsg struct{ stream string }

type snapshotMsg struct {
	stream string
	snap   domain.Snapshot
}

type expireMsg struct {
	stream string
	gen    uint64
}

type remoteMsg struct{ update live.Update }

type remoteClosedMsg struct{}

// Model is the bubbletea model. It either polls sources itself or mirrors
// a remote board over its websocket stream.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	// Local mode.
	streams []Stream
	index   map[string]int
	window  time.Duration
	timeout time.Duration

	// Remote mode.
	remote      string
	updates     <-chan live.Update
	remoteOrder []string
	remoteViews map[string]dashboard.View

	focus      int
	panelLines []int

	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
	width    int
	height   int

	log *slog.Logger
	now func() time.Time
}

// New returns a model that polls each stream's source. Cancelling ctx, or
// quitting, cancels in-flight polls.
func New(ctx context.Context, streams []Stream, opts Options) Model {
	m := newModel(ctx, opts)
	m.streams = streams
	m.index = make(map[string]int, len(streams))
	for i, s := range streams {
		m.index[s.Panel.Name] = i
	}
	return m
}

// NewRemote returns a model that renders the panels of the board served at
// url. Highlights and their expiry are computed by the server.
func NewRemote(ctx context.Context, client *live.Client, url string, opts Options) Model {
	m := newModel(ctx, opts)
	m.remote = url
	m.remoteViews = make(map[string]dashboard.View)

	ch := make(chan live.Update, 64)
	m.updates = ch
	go func() {
		defer close(ch)
		err := client.Sync(m.ctx, func(u live.Update) {
			select {
			case ch <- u:
			case <-m.ctx.Done():
			}
		})
		if err != nil {
			m.log.Error("remote stream ended", "url", url, "error", err)
		}
	}()
	return m
}

func newModel(ctx context.Context, opts Options) Model {
	if opts.Window <= 0 {
		opts.Window = highlight.DefaultWindow
	}
	if opts.Timeout <= 0 {
		opts.Timeout = feed.DefaultPollerConfig().Timeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:     ctx,
		cancel:  cancel,
		window:  opts.Window,
		timeout: opts.Timeout,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    defaultKeyMap(),
		log:     opts.Logger,
		now:     opts.Now,
	}
}

// Init starts every stream's first poll immediately.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.updates != nil {
		cmds = append(cmds, m.waitRemote())
	}
	for _, s := range m.streams {
		name := s.Panel.Name
		cmds = append(cmds, func() tea.Msg { return pollMsg{stream: name} })
	}
	return tea.Batch(cmds...)
}

// pollCmd runs one poll off the update loop.
func (m Model) pollCmd(s Stream) tea.Cmd {
	ctx, timeout, name := m.ctx, m.timeout, s.Panel.Name
	return func() tea.Msg {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return snapshotMsg{stream: name, snap: s.Source.Poll(pctx)}
	}
}

func (m Model) waitRemote() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return remoteClosedMsg{}
		}
		return remoteMsg{update: u}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.moveFocus(1)
			return m, nil
		case key.Matches(msg, m.keys.Prev):
			m.moveFocus(-1)
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, 1)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		}
		m.resize()
		m.refresh()
		return m, nil

	case pollMsg:
		i, ok := m.index[msg.stream]
		if !ok || m.ctx.Err() != nil {
			return m, nil
		}
		s := m.streams[i]
		s.Panel.SetRefreshing(true)
		m.refresh()
		return m, m.pollCmd(s)

	case snapshotMsg:
		// Torn down mid-poll: nobody is watching this stream any more.
		if m.ctx.Err() != nil {
			return m, nil
		}
		i, ok := m.index[msg.stream]
		if !ok {
			return m, nil
		}
		s := m.streams[i]
		s.Panel.SetRefreshing(false)
		styles, gen := s.Panel.Apply(msg.snap)
		if msg.snap.Failed() {
			m.log.Warn("poll returned failure", "stream", msg.stream, "message", msg.snap.Message)
		}
		m.refresh()

		cmds := []tea.Cmd{tea.Tick(s.Interval, func(time.Time) tea.Msg {
			return pollMsg{stream: msg.stream}
		})}
		if styles.Cells() > 0 {
			name := msg.stream
			cmds = append(cmds, tea.Tick(m.window, func(time.Time) tea.Msg {
				return expireMsg{stream: name, gen: gen}
			}))
		}
		return m, tea.Batch(cmds...)

	case expireMsg:
		// A newer snapshot bumps the generation, so a stale expiry is a no-op.
		if i, ok := m.index[msg.stream]; ok && m.streams[i].Panel.Expire(msg.gen) {
			m.refresh()
		}
		return m, nil

	case remoteMsg:
		u := msg.update
		if _, ok := m.remoteViews[u.Stream]; !ok {
			m.remoteOrder = append(m.remoteOrder, u.Stream)
		}
		m.remoteViews[u.Stream] = u.View
		m.refresh()
		return m, m.waitRemote()

	case remoteClosedMsg:
		m.log.Info("remote stream closed", "url", m.remote)
		return m, tea.Quit

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		if m.anyRefreshing() {
			m.refresh()
		}
		return m, cmd
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// Views returns the panels as currently displayed, in order.
func (m Model) Views() []dashboard.View {
	if m.remoteViews != nil {
		out := make([]dashboard.View, 0, len(m.remoteOrder))
		for _, name := range m.remoteOrder {
			out = append(out, m.remoteViews[name])
		}
		return out
	}
	out := make([]dashboard.View, len(m.streams))
	for i, s := range m.streams {
		out[i] = s.Panel.View()
	}
	return out
}

func (m Model) anyRefreshing() bool {
	for _, v := range m.Views() {
		if v.Refreshing {
			return true
		}
	}
	return false
}

func (m *Model) moveFocus(delta int) {
	n := len(m.Views())
	if n == 0 {
		return
	}
	m.focus = ((m.focus+delta)%n + n) % n
	m.refresh()
	if m.ready && m.focus < len(m.panelLines) {
		m.viewport.SetYOffset(m.panelLines[m.focus])
	}
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	footerH := lipgloss.Height(m.footer())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-1-footerH, 1)
}

// refresh re-renders the viewport content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

func (m *Model) renderContent() string {
	views := m.Views()
	now := m.now()
	m.panelLines = make([]int, 0, len(views))

	var b strings.Builder
	line := 0
	for i, v := range views {
		if i > 0 {
			b.WriteString("\n\n")
			line += 2
		}
		m.panelLines = append(m.panelLines, line)
		p := renderPanel(v, i == m.focus, m.spinner.View(), now)
		b.WriteString(p)
		line += strings.Count(p, "\n") + 1
	}
	return b.String()
}

func (m Model) header() string {
	var loaded, failed int
	views := m.Views()
	for _, v := range views {
		switch v.State {
		case dashboard.StateLoaded:
			loaded++
		case dashboard.StateFailed:
			failed++
		}
	}
	text := fmt.Sprintf(" Tablero  %s    streams: %d  ok: %d  err: %d ",
		m.now().Format("15:04:05"), len(views), loaded, failed)
	if m.remote != "" {
		return remoteBarStyle.Render(padOrTrunc(text+"   remote: "+m.remote+" ", m.width))
	}
	return headerBarStyle.Render(padOrTrunc(text, m.width))
}

func (m Model) footer() string {
	pct := fmt.Sprintf("%.0f%% ", m.viewport.ScrollPercent()*100)
	if m.help.ShowAll {
		return footerBarStyle.Width(m.width).Render(m.help.View(m.keys)) + "\n" +
			footerBarStyle.Render(padOrTrunc(strings.Repeat(" ", max(m.width-len(pct), 0))+pct, m.width))
	}
	left := " " + m.help.View(m.keys)
	gap := max(m.width-lipgloss.Width(left)-len(pct), 0)
	return footerBarStyle.Render(padOrTrunc(left+strings.Repeat(" ", gap)+pct, m.width))
}

func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	return m.header() + "\n" + m.viewport.View() + "\n" + m.footer()
}
