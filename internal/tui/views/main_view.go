package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/querybench/internal/history"
	"github.com/artpar/querybench/internal/panel"
	"github.com/artpar/querybench/internal/tui"
	"github.com/artpar/querybench/internal/tui/components"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// notificationTTL is how long a status bar notification stays visible.
const notificationTTL = 2 * time.Second

// chromeLines is the height taken by the endpoint bar, help bar and
// status bar.
const chromeLines = 3

// clearNotificationMsg clears the notification it was scheduled for.
type clearNotificationMsg struct {
	id int
}

// MainView is the host page: one endpoint panel per route, shown one at a
// time, with a history overlay and a help overlay.
type MainView struct {
	ctx    context.Context
	width  int
	height int

	endpoints []*components.EndpointPanel
	list      *tui.ComponentList
	history   *components.HistoryView

	keys   tui.KeyMap
	help   help.Model
	styles tui.Styles

	showHelp    bool
	showHistory bool

	notification string
	notifyError  bool
	notifyID     int

	writeClipboard func(string) error
}

// NewMainView creates the host page for panels. Calls are issued through
// sender; ctx bounds every round trip.
func NewMainView(ctx context.Context, sender components.Sender, panels []*panel.Panel) *MainView {
	v := &MainView{
		ctx:            ctx,
		list:           tui.NewComponentList(),
		history:        components.NewHistoryView(nil),
		keys:           tui.DefaultKeyMap(),
		help:           help.New(),
		styles:         tui.DefaultStyles(),
		writeClipboard: clipboard.WriteAll,
	}
	for i, p := range panels {
		ep := components.NewEndpointPanel(ctx, i, p, sender)
		v.endpoints = append(v.endpoints, ep)
		v.list.Add(ep)
	}
	v.list.FocusFirst()
	return v
}

// SetHistoryStore enables the history overlay.
func (v *MainView) SetHistoryStore(store history.Store) {
	v.history = components.NewHistoryView(store)
	v.updateSizes()
}

// SetClipboard replaces the clipboard writer.
func (v *MainView) SetClipboard(write func(string) error) {
	v.writeClipboard = write
}

// Init initializes the view.
func (v *MainView) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.updateSizes()
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKeyMsg(msg)

	case components.ResponseMsg:
		if msg.PanelIndex < 0 || msg.PanelIndex >= len(v.endpoints) {
			return v, nil
		}
		_, cmd := v.endpoints[msg.PanelIndex].Update(msg)
		if v.showHistory {
			v.history.Refresh(v.ctx)
		}
		return v, cmd

	case spinner.TickMsg:
		cmds := make([]tea.Cmd, 0, len(v.endpoints))
		for _, ep := range v.endpoints {
			_, cmd := ep.Update(msg)
			cmds = append(cmds, cmd)
		}
		return v, tea.Batch(cmds...)

	case components.CopyMsg:
		return v, v.handleCopy(msg)

	case components.FeedbackMsg:
		return v, v.notify(msg.Message, msg.IsError)

	case clearNotificationMsg:
		if msg.id == v.notifyID {
			v.notification = ""
		}
		return v, nil
	}

	if ep := v.focused(); ep != nil {
		_, cmd := ep.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *MainView) handleCopy(msg components.CopyMsg) tea.Cmd {
	if err := v.writeClipboard(msg.Content); err != nil {
		return v.notify("Copy failed: "+err.Error(), true)
	}
	size := len(msg.Content)
	if size > 1024 {
		return v.notify(fmt.Sprintf("Copied %s (%.1fKB)", msg.Label, float64(size)/1024), false)
	}
	return v.notify(fmt.Sprintf("Copied %s (%dB)", msg.Label, size), false)
}

// notify shows message in the status bar and schedules its removal.
func (v *MainView) notify(message string, isError bool) tea.Cmd {
	v.notifyID++
	v.notification = message
	v.notifyError = isError
	id := v.notifyID
	return tea.Tick(notificationTTL, func(time.Time) tea.Msg {
		return clearNotificationMsg{id: id}
	})
}

func (v *MainView) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if v.showHelp {
		if key.Matches(msg, v.keys.Help) || key.Matches(msg, v.keys.Cancel) {
			v.showHelp = false
		}
		return nil
	}

	ep := v.focused()
	if ep != nil && ep.Capturing() {
		_, cmd := ep.Update(msg)
		return cmd
	}

	if v.showHistory {
		switch {
		case key.Matches(msg, v.keys.Quit):
			return tea.Quit
		case key.Matches(msg, v.keys.History), key.Matches(msg, v.keys.Cancel):
			v.closeHistory()
			return nil
		}
		_, cmd := v.history.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return tea.Quit
	case key.Matches(msg, v.keys.Help):
		v.showHelp = true
		return nil
	case key.Matches(msg, v.keys.History):
		return v.openHistory()
	case key.Matches(msg, v.keys.NextPanel):
		v.list.FocusNext()
		return nil
	case key.Matches(msg, v.keys.PrevPanel):
		v.list.FocusPrev()
		return nil
	}

	if ep == nil {
		return nil
	}
	_, cmd := ep.Update(msg)
	return cmd
}

func (v *MainView) openHistory() tea.Cmd {
	v.showHistory = true
	v.history.Focus()
	if err := v.history.Refresh(v.ctx); err != nil {
		return v.notify("History unavailable: "+err.Error(), true)
	}
	return nil
}

func (v *MainView) closeHistory() {
	v.showHistory = false
	v.history.Blur()
}

func (v *MainView) focused() *components.EndpointPanel {
	i := v.list.FocusIndex()
	if i < 0 || i >= len(v.endpoints) {
		return nil
	}
	return v.endpoints[i]
}

func (v *MainView) updateSizes() {
	if v.width == 0 || v.height == 0 {
		return
	}
	bodyHeight := max(v.height-chromeLines, 1)
	for _, ep := range v.endpoints {
		ep.SetSize(v.width, bodyHeight)
	}
	v.history.SetSize(v.width, bodyHeight)
	v.help.Width = v.width
}

// View renders the view.
func (v *MainView) View() string {
	if v.width == 0 || v.height == 0 {
		return ""
	}
	if v.showHelp {
		return v.renderHelp()
	}

	var body string
	switch {
	case v.showHistory:
		body = v.history.View()
	case v.focused() != nil:
		body = v.focused().View()
	default:
		body = v.styles.Muted.Render("No routes configured.")
	}
	body = lipgloss.NewStyle().
		Width(v.width).
		Height(max(v.height-chromeLines, 1)).
		MaxHeight(max(v.height-chromeLines, 1)).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		v.renderEndpointBar(),
		body,
		v.renderHelpBar(),
		v.renderStatusBar(),
	)
}

// renderEndpointBar lists every panel, coloured by its last response.
func (v *MainView) renderEndpointBar() string {
	focusIndex := v.list.FocusIndex()
	tabs := make([]string, 0, len(v.endpoints))
	for i, ep := range v.endpoints {
		style := lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(tui.ToneColor(ep.Panel().Visual().Tone))
		if ep.Panel().LastResponse().Empty() {
			style = style.Foreground(tui.ColorText)
		}
		if i == focusIndex {
			style = style.Bold(true).Underline(true).Background(lipgloss.Color("237"))
		}
		tabs = append(tabs, style.Render(ep.Title()))
	}
	return lipgloss.NewStyle().MaxWidth(v.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (v *MainView) renderHelpBar() string {
	barStyle := lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	var bindings []key.Binding
	switch {
	case v.focused() != nil && v.focused().Capturing():
		bindings = []key.Binding{v.keys.Confirm, v.keys.Cancel}
	case v.showHistory:
		bindings = []key.Binding{v.keys.Up, v.keys.Down, v.keys.History, v.keys.Quit}
	default:
		bindings = v.keys.ShortHelp()
	}
	return barStyle.Render(v.help.ShortHelpView(bindings))
}

func (v *MainView) renderStatusBar() string {
	var items []string

	modeStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if ep := v.focused(); ep != nil && ep.Capturing() {
		items = append(items, modeStyle.
			Background(lipgloss.Color("214")).
			Foreground(lipgloss.Color("0")).
			Render("INSERT"))
	} else {
		items = append(items, modeStyle.
			Background(lipgloss.Color("34")).
			Foreground(lipgloss.Color("255")).
			Render("NORMAL"))
	}

	if ep := v.focused(); ep != nil {
		position := fmt.Sprintf("%d/%d", v.list.FocusIndex()+1, len(v.endpoints))
		items = append(items, lipgloss.NewStyle().Foreground(tui.ColorText).Padding(0, 1).Render(position))
		items = append(items, v.styles.Muted.Render(ep.Panel().BaseURL()))
	}

	if v.notification != "" {
		notifyStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(tui.ColorSuccess)
		if v.notifyError {
			notifyStyle = notifyStyle.Foreground(tui.ColorError)
		}
		items = append(items, notifyStyle.Render(v.notification))
	}

	helpHint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Padding(0, 1).
		Render("? help  q quit")

	left := strings.Join(items, " ")
	spacer := strings.Repeat(" ", max(v.width-lipgloss.Width(left)-lipgloss.Width(helpHint), 0))

	return lipgloss.NewStyle().
		Width(v.width).
		Background(lipgloss.Color("236")).
		Render(left + spacer + helpHint)
}

func (v *MainView) renderHelp() string {
	full := v.help
	full.Width = 0
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(tui.ColorFocus).
		Padding(1, 2).
		Render(v.styles.Title.Render("querybench") + "\n\n" +
			full.FullHelpView(v.keys.FullHelp()) + "\n\n" +
			v.styles.Muted.Render("Press ? or Esc to close"))

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(box)
}

// Title returns the view title.
func (v *MainView) Title() string {
	return "querybench"
}

// Focused always reports true; the main view owns the screen.
func (v *MainView) Focused() bool { return true }
func (v *MainView) Focus()        {}
func (v *MainView) Blur()         {}

// SetSize sets the view dimensions.
func (v *MainView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.updateSizes()
}

func (v *MainView) Width() int  { return v.width }
func (v *MainView) Height() int { return v.height }

// Endpoints returns the endpoint panels in page order.
func (v *MainView) Endpoints() []*components.EndpointPanel {
	return v.endpoints
}

// FocusedIndex returns the index of the visible panel.
func (v *MainView) FocusedIndex() int {
	return v.list.FocusIndex()
}

// ShowingHelp reports whether the help overlay is open.
func (v *MainView) ShowingHelp() bool {
	return v.showHelp
}

// ShowingHistory reports whether the history overlay is open.
func (v *MainView) ShowingHistory() bool {
	return v.showHistory
}

// Notification returns the status bar notification.
func (v *MainView) Notification() string {
	return v.notification
}
