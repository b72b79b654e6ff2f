package ui

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"melody/internal/controller"
	"melody/internal/media"
)

const (
	folderPaneWidth = 30
	footerLines     = 4 // now playing, seek bar, controls, help
	seekBarX        = 1
	volumeStep      = 10
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#1DB954", Dark: "#1ED760"}
	faint  = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"}
	border = lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#444444"}

	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	cursorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"})
	dimStyle        = lipgloss.NewStyle().Foreground(faint)
	paneStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
	activePaneStyle = paneStyle.BorderForeground(accent)
)

type pane int

const (
	folderPane pane = iota
	trackPane
)

// Messages pumped into the program.
type (
	catalogMsg struct {
		folder string
		tracks []string
		err    error
	}
	mediaMsg       struct{ ev media.Event }
	mediaClosedMsg struct{}
)

// Options configures the TUI.
type Options struct {
	Folders       []media.Folder
	InitialFolder string
	// PlayIndex starts playback of this track once InitialFolder has loaded; -1 for none.
	PlayIndex     int
	VolumeDisplay int
}

// Model is the bubbletea model for the player. It translates key and mouse
// input into controller events and renders the controller's surface.
type Model struct {
	ctx     context.Context
	ctrl    *controller.Controller
	catalog controller.Catalog
	events  <-chan media.Event
	surface *surface

	folders      []media.Folder
	folderCursor int
	focus        pane
	loading      string

	initialFolder string
	pendingPlay   int

	tracks list.Model
	seek   progress.Model
	help   help.Model
	keys   keyMap

	width  int
	height int
}

// trackItem is one row of the visible track list.
type trackItem struct {
	title   string
	current bool
}

func (t trackItem) FilterValue() string { return t.title }
func (t trackItem) Title() string {
	if t.current {
		return "▶ " + t.title
	}
	return "  " + t.title
}
func (t trackItem) Description() string { return "" }

// NewView returns the presentation surface to hand to controller.New.
func NewView(opts Options) controller.View {
	return newSurface(opts.VolumeDisplay)
}

// New creates the TUI model. view must be the value returned by NewView and
// passed to the controller.
func New(ctx context.Context, ctrl *controller.Controller, catalog controller.Catalog, view controller.View, events <-chan media.Event, opts Options) *Model {
	s, ok := view.(*surface)
	if !ok {
		s = newSurface(opts.VolumeDisplay)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 40, 10)
	l.Title = "Tracks"
	l.Styles.Title = lipgloss.NewStyle().
		Background(accent).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1A1A1A"}).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	m := &Model{
		ctx:           ctx,
		ctrl:          ctrl,
		catalog:       catalog,
		events:        events,
		surface:       s,
		folders:       opts.Folders,
		initialFolder: opts.InitialFolder,
		pendingPlay:   opts.PlayIndex,
		tracks:        l,
		seek:          bar,
		help:          help.New(),
		keys:          defaultKeyMap(),
		width:         80,
		height:        24,
	}
	for i, f := range m.folders {
		if f.Path == opts.InitialFolder {
			m.folderCursor = i
		}
	}
	m.layout()
	return m
}

// Init loads the initial folder and starts listening to the media handle.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.initialFolder != "" {
		m.loading = m.initialFolder
		cmds = append(cmds, m.loadFolder(m.initialFolder))
	}
	if m.events != nil {
		cmds = append(cmds, waitForMedia(m.events))
	}
	return tea.Batch(cmds...)
}

// loadFolder fetches a catalog off the event loop. Loads are not cancelled
// or coalesced: whichever resolves last replaces the playlist.
func (m *Model) loadFolder(folder string) tea.Cmd {
	ctx, cat := m.ctx, m.catalog
	return func() tea.Msg {
		tracks, err := cat.Load(ctx, folder)
		return catalogMsg{folder: folder, tracks: tracks, err: err}
	}
}

func waitForMedia(ch <-chan media.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return mediaClosedMsg{}
		}
		return mediaMsg{ev: ev}
	}
}

func (m *Model) dispatch(e controller.Event) {
	// Dispatch logs its own errors; the UI just keeps its last state.
	_ = m.ctrl.Dispatch(e)
	m.syncList()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case catalogMsg:
		if m.loading == msg.folder {
			m.loading = ""
		}
		m.dispatch(controller.Event{
			Name:   controller.FolderLoaded,
			Folder: msg.folder,
			Tracks: msg.tracks,
			Err:    msg.err,
		})
		if m.pendingPlay >= 0 && msg.folder == m.initialFolder {
			idx := m.pendingPlay
			m.pendingPlay = -1
			m.tracks.Select(idx)
			m.dispatch(controller.Event{
				Name:       controller.TrackClick,
				Index:      idx,
				Generation: m.surface.generation,
			})
		}
		return m, nil

	case mediaMsg:
		m.dispatch(controller.FromMedia(msg.ev))
		return m, waitForMedia(m.events)

	case mediaClosedMsg:
		log.Printf("ui: media player exited")
		m.events = nil
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if frac, ok := m.seekFraction(msg.X, msg.Y); ok {
				m.dispatch(controller.Event{Name: controller.SeekBar, Fraction: frac})
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		// Space never reaches the list, so it cannot page or scroll it.
		m.dispatch(controller.Event{Name: controller.KeySpace})
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.dispatch(controller.Event{Name: controller.NextTrack})
		return m, nil

	case key.Matches(msg, m.keys.Previous):
		m.dispatch(controller.Event{Name: controller.PreviousTrack})
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		m.dispatch(controller.Event{Name: controller.MuteClick})
		return m, nil

	case key.Matches(msg, m.keys.VolUp), key.Matches(msg, m.keys.VolDown):
		step := volumeStep
		if key.Matches(msg, m.keys.VolDown) {
			step = -volumeStep
		}
		m.surface.slider = clampInt(m.surface.slider+step, 0, 100)
		m.dispatch(controller.Event{Name: controller.VolumeInput, Percent: m.surface.slider})
		return m, nil

	case key.Matches(msg, m.keys.Seek):
		n := int(msg.String()[0] - '0')
		m.dispatch(controller.Event{Name: controller.SeekBar, Fraction: float64(n) / 10})
		return m, nil

	case key.Matches(msg, m.keys.SwitchPane):
		if m.focus == folderPane {
			m.focus = trackPane
		} else {
			m.focus = folderPane
		}
		return m, nil
	}

	if m.focus == folderPane {
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.folderCursor > 0 {
				m.folderCursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.folderCursor < len(m.folders)-1 {
				m.folderCursor++
			}
		case key.Matches(msg, m.keys.Select):
			if len(m.folders) == 0 {
				return m, nil
			}
			folder := m.folders[m.folderCursor].Path
			m.loading = folder
			m.focus = trackPane
			return m, m.loadFolder(folder)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Select) {
		if len(m.surface.tracks) == 0 {
			return m, nil
		}
		m.dispatch(controller.Event{
			Name:       controller.TrackClick,
			Index:      m.tracks.Index(),
			Generation: m.surface.generation,
		})
		return m, nil
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

// syncList rebuilds the list items after the controller replaced the
// playlist or moved the highlight.
func (m *Model) syncList() {
	if !m.surface.listDirty {
		return
	}
	m.surface.listDirty = false

	items := make([]list.Item, len(m.surface.tracks))
	for i, t := range m.surface.tracks {
		items[i] = trackItem{title: media.DisplayTitle(t), current: i == m.surface.highlight}
	}
	sel := m.tracks.Index()
	m.tracks.SetItems(items)
	switch {
	case m.surface.highlight >= 0:
		m.tracks.Select(m.surface.highlight)
	case sel < len(items):
		m.tracks.Select(sel)
	default:
		m.tracks.Select(0)
	}
}

func (m *Model) bodyHeight() int {
	return maxInt(m.height-footerLines-1, 3)
}

func (m *Model) seekWidth() int {
	return maxInt(m.width-len(" 00:00 / 00:00")-seekBarX-1, 10)
}

func (m *Model) layout() {
	// panes have a 1-cell border on each side
	m.tracks.SetSize(maxInt(m.width-folderPaneWidth-4, 10), m.bodyHeight()-2)
	m.seek.Width = m.seekWidth()
	m.help.Width = m.width
}

// seekFraction maps a click to a position on the seek bar.
func (m *Model) seekFraction(x, y int) (float64, bool) {
	seekRow := m.height - footerLines + 1
	if y != seekRow {
		return 0, false
	}
	w := m.seekWidth()
	if x < seekBarX || x >= seekBarX+w {
		return 0, false
	}
	return float64(x-seekBarX) / float64(w), true
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render("melody") + dimStyle.Render(" · "+m.headerStatus())

	folderStyle, trackStyle := paneStyle, paneStyle
	if m.focus == folderPane {
		folderStyle = activePaneStyle
	} else {
		trackStyle = activePaneStyle
	}
	inner := m.bodyHeight() - 2
	left := folderStyle.Width(folderPaneWidth).Height(inner).MaxHeight(inner + 2).
		Render(m.folderView(inner))
	right := trackStyle.Width(maxInt(m.width-folderPaneWidth-4, 10)).Height(inner).MaxHeight(inner + 2).
		Render(m.trackView())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.nowPlayingLine(),
		m.seekLine(),
		m.controlsLine(),
		m.help.View(m.keys),
	)
}

func (m *Model) headerStatus() string {
	if m.loading != "" {
		return "loading " + m.loading + "…"
	}
	if f := m.ctrl.Folder(); f != "" {
		return fmt.Sprintf("%s · %s", f, m.ctrl.State())
	}
	return m.ctrl.State().String()
}

func (m *Model) trackView() string {
	if len(m.surface.tracks) == 0 {
		return dimStyle.Render("No tracks")
	}
	return m.tracks.View()
}

// folderView renders the categories grouped by kind, scrolled to keep the
// cursor visible within height lines.
func (m *Model) folderView(height int) string {
	var lines []string
	cursorLine := 0
	lastKind := ""
	for i, f := range m.folders {
		kind, _ := media.ParseFolderKind(f.Kind)
		if k := kind.String(); k != lastKind {
			lines = append(lines, headingStyle.Render(kindHeading(kind)))
			lastKind = k
		}
		marker := "  "
		if f.Path == m.ctrl.Folder() {
			marker = "♪ "
		}
		name := truncate(f.Name, folderPaneWidth-4)
		if i == m.folderCursor {
			cursorLine = len(lines)
			lines = append(lines, cursorStyle.Render("> "+marker+name))
		} else {
			lines = append(lines, "  "+marker+name)
		}
	}

	start := 0
	if cursorLine >= height {
		start = cursorLine - height + 1
	}
	end := minInt(start+height, len(lines))
	return strings.Join(lines[start:end], "\n")
}

func kindHeading(k media.FolderKind) string {
	switch k {
	case media.Artist:
		return "Artists"
	case media.Album:
		return "Albums"
	default:
		return "Library"
	}
}

func (m *Model) nowPlayingLine() string {
	title := m.surface.nowPlaying
	if title == "" {
		title = "Nothing loaded"
	}
	return " ♪ " + truncate(title, maxInt(m.width-4, 1))
}

func (m *Model) seekLine() string {
	return strings.Repeat(" ", seekBarX) + m.seek.ViewAs(m.surface.seek/100) + " " + m.surface.time
}

func (m *Model) controlsLine() string {
	play := "▶"
	if m.surface.icon == controller.IconPause {
		play = "⏸"
	}
	speaker := "🔊"
	if m.surface.muted {
		speaker = "🔇"
	}
	return fmt.Sprintf(" ⏮  %s  ⏭    %s %3d", play, speaker, m.surface.slider)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func clampInt(v, lo, hi int) int {
	return maxInt(lo, minInt(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, m *Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
