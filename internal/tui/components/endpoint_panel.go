package components

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/querybench/internal/exporter"
	"github.com/artpar/querybench/internal/filter"
	"github.com/artpar/querybench/internal/panel"
	"github.com/artpar/querybench/internal/tui"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Section is the part of an endpoint panel that receives navigation keys.
type Section int

const (
	SectionPayload Section = iota
	SectionResponse
)

// EndpointPanel renders one panel.Panel: method tabs, preset buttons, the
// resource id, the payload editor and the last response coloured by its
// visual state.
type EndpointPanel struct {
	*tui.BaseComponent

	ctx    context.Context
	index  int
	panel  *panel.Panel
	sender Sender

	keys   tui.KeyMap
	styles tui.Styles

	payload  *JSONEditor
	response *JSONEditor
	section  Section
	shown    any

	idInput   textinput.Model
	editingID bool

	filterInput textinput.Model
	filtering   bool
	query       *filter.Query
	filterErr   string

	spinner spinner.Model
}

// NewEndpointPanel wraps p. index identifies the panel in ResponseMsg.
// ctx bounds every round trip the panel starts.
func NewEndpointPanel(ctx context.Context, index int, p *panel.Panel, sender Sender) *EndpointPanel {
	idInput := textinput.New()
	idInput.Prompt = "id: "
	idInput.CharLimit = 256

	filterInput := textinput.New()
	filterInput.Prompt = "jq "
	filterInput.Placeholder = ".order"
	filterInput.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	e := &EndpointPanel{
		BaseComponent: tui.NewBaseComponent(p.DisplayTitle()),
		ctx:           ctx,
		index:         index,
		panel:         p,
		sender:        sender,
		keys:          tui.DefaultKeyMap(),
		styles:        tui.DefaultStyles(),
		payload:       NewJSONEditor("Payload", p.Payload(), p.SetPayload),
		response:      NewJSONViewer("Response", nil),
		section:       SectionPayload,
		idInput:       idInput,
		filterInput:   filterInput,
		spinner:       sp,
	}
	if !p.ActiveMethod().HasBody() {
		e.section = SectionResponse
	}
	e.syncResponse()
	return e
}

// Panel returns the wrapped controller.
func (e *EndpointPanel) Panel() *panel.Panel { return e.panel }

// Index returns the panel's position on the page.
func (e *EndpointPanel) Index() int { return e.index }

// Section returns the section receiving navigation keys.
func (e *EndpointPanel) Section() Section { return e.section }

// PayloadEditor returns the payload tree.
func (e *EndpointPanel) PayloadEditor() *JSONEditor { return e.payload }

// ResponseViewer returns the read-only response tree.
func (e *EndpointPanel) ResponseViewer() *JSONEditor { return e.response }

// Filter returns the active jq expression, or "".
func (e *EndpointPanel) Filter() string {
	if e.query == nil {
		return ""
	}
	return e.query.String()
}

// Capturing reports whether a text field is consuming keystrokes. Hosts
// must not interpret global keys while it is.
func (e *EndpointPanel) Capturing() bool {
	return e.editingID || e.filtering || e.payload.Editing()
}

// Title returns the panel heading.
func (e *EndpointPanel) Title() string {
	return e.panel.DisplayTitle()
}

// Focus focuses the panel and its active section.
func (e *EndpointPanel) Focus() {
	e.BaseComponent.Focus()
	e.focusSection()
}

// Blur removes focus from the panel and both trees.
func (e *EndpointPanel) Blur() {
	e.BaseComponent.Blur()
	e.payload.Blur()
	e.response.Blur()
}

// SetSize sets the outer dimensions and resizes the trees.
func (e *EndpointPanel) SetSize(width, height int) {
	e.BaseComponent.SetSize(width, height)
	e.layout()
}

// Init initializes the component.
func (e *EndpointPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages. ResponseMsg and spinner ticks are handled
// regardless of focus.
func (e *EndpointPanel) Update(msg tea.Msg) (tui.Component, tea.Cmd) {
	switch msg := msg.(type) {
	case ResponseMsg:
		if msg.PanelIndex != e.index {
			return e, nil
		}
		return e, e.complete(msg)

	case spinner.TickMsg:
		if e.panel.InFlight() == 0 {
			return e, nil
		}
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd

	case tea.WindowSizeMsg:
		e.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if !e.Focused() {
			return e, nil
		}
		return e, e.handleKey(msg)
	}
	return e, nil
}

func (e *EndpointPanel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case e.editingID:
		return e.handleIDKey(msg)
	case e.filtering:
		return e.handleFilterKey(msg)
	case e.payload.Editing():
		_, cmd := e.payload.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, e.keys.Send):
		return e.Send()
	case key.Matches(msg, e.keys.PrevMethod):
		e.cycleMethod(-1)
	case key.Matches(msg, e.keys.NextMethod):
		e.cycleMethod(1)
	case key.Matches(msg, e.keys.Preset):
		return e.selectPreset(int(msg.String()[0] - '1'))
	case key.Matches(msg, e.keys.EditID):
		return e.beginEditID()
	case key.Matches(msg, e.keys.Reset):
		e.Reset()
		return feedbackCmd("Panel reset", false)
	case key.Matches(msg, e.keys.CopyBody):
		return e.copyBody()
	case key.Matches(msg, e.keys.CopyCurl):
		return e.copyCurl()
	case key.Matches(msg, e.keys.Filter):
		return e.beginFilter()
	case key.Matches(msg, e.keys.Section):
		e.toggleSection()
	default:
		_, cmd := e.activeTree().Update(msg)
		return cmd
	}
	return nil
}

// Send issues a call and returns the command that performs it. The
// round trip runs off the update loop and reports back as a ResponseMsg.
func (e *EndpointPanel) Send() tea.Cmd {
	wasIdle := e.panel.InFlight() == 0
	call, err := e.sender.Begin(e.panel)
	if err != nil {
		return feedbackCmd("Send failed: "+err.Error(), true)
	}
	e.syncResponse()

	ctx, sender, index := e.ctx, e.sender, e.index
	run := func() tea.Msg {
		return ResponseMsg{
			PanelIndex: index,
			Call:       call,
			Outcome:    sender.Execute(ctx, call),
		}
	}
	if wasIdle {
		return tea.Batch(run, e.spinner.Tick)
	}
	return run
}

// Reset clears the response and restores the initial payload.
func (e *EndpointPanel) Reset() {
	e.panel.Reset()
	e.payload.SetValue(e.panel.Payload())
	e.syncResponse()
}

func (e *EndpointPanel) complete(msg ResponseMsg) tea.Cmd {
	if !e.panel.Complete(msg.Call, msg.Outcome) {
		return nil
	}
	e.syncResponse()
	if f := msg.Outcome.Failure(); f != nil {
		return feedbackCmd(f.Error(), true)
	}
	return nil
}

// syncResponse pushes the last response, filtered when a query is set,
// into the viewer.
func (e *EndpointPanel) syncResponse() {
	body := e.panel.LastResponse().Body
	e.filterErr = ""
	e.shown = body
	if e.query != nil && body != nil {
		filtered, err := e.query.Run(e.ctx, body)
		if err != nil {
			e.filterErr = err.Error()
		} else {
			e.shown = filtered
		}
	}
	e.response.SetValue(e.shown)
}

func (e *EndpointPanel) cycleMethod(delta int) {
	methods := e.panel.Route().AllowedMethods
	current := e.panel.ActiveMethod()
	idx := 0
	for i, m := range methods {
		if m == current {
			idx = i
			break
		}
	}
	next := methods[(idx+delta+len(methods))%len(methods)]
	e.panel.SelectMethod(next)
	if !next.HasBody() {
		e.section = SectionResponse
	}
	e.focusSection()
	e.layout()
}

func (e *EndpointPanel) selectPreset(i int) tea.Cmd {
	if err := e.panel.SelectPreset(i); err != nil {
		if errors.Is(err, panel.ErrNoPresets) {
			return nil
		}
		return feedbackCmd(err.Error(), true)
	}
	e.payload.SetValue(e.panel.Payload())
	return feedbackCmd("Loaded "+e.panel.Route().PresetLabel(i), false)
}

func (e *EndpointPanel) beginEditID() tea.Cmd {
	if !e.panel.Route().RequiresResourceID {
		return nil
	}
	e.editingID = true
	e.idInput.SetValue(e.panel.ResourceID())
	e.idInput.CursorEnd()
	return e.idInput.Focus()
}

func (e *EndpointPanel) handleIDKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, e.keys.Confirm):
		e.panel.SetResourceID(e.idInput.Value())
		e.SetTitle(e.panel.DisplayTitle())
		e.editingID = false
		e.idInput.Blur()
		return nil
	case key.Matches(msg, e.keys.Cancel):
		e.editingID = false
		e.idInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	e.idInput, cmd = e.idInput.Update(msg)
	return cmd
}

func (e *EndpointPanel) beginFilter() tea.Cmd {
	e.filtering = true
	e.filterInput.SetValue(e.Filter())
	e.filterInput.CursorEnd()
	e.layout()
	return e.filterInput.Focus()
}

func (e *EndpointPanel) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, e.keys.Confirm):
		e.closeFilter()
		return e.SetFilter(e.filterInput.Value())
	case key.Matches(msg, e.keys.Cancel):
		e.closeFilter()
		return nil
	}
	var cmd tea.Cmd
	e.filterInput, cmd = e.filterInput.Update(msg)
	return cmd
}

func (e *EndpointPanel) closeFilter() {
	e.filtering = false
	e.filterInput.Blur()
	e.layout()
}

// SetFilter applies a jq expression to the displayed response. An empty
// expression shows the raw body again.
func (e *EndpointPanel) SetFilter(expr string) tea.Cmd {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		e.query = nil
		e.syncResponse()
		return nil
	}
	q, err := filter.Compile(expr)
	if err != nil {
		return feedbackCmd(err.Error(), true)
	}
	e.query = q
	e.syncResponse()
	return nil
}

func (e *EndpointPanel) copyBody() tea.Cmd {
	if e.shown == nil {
		return feedbackCmd("No response to copy", true)
	}
	b, err := json.MarshalIndent(e.shown, "", "  ")
	if err != nil {
		return feedbackCmd("Copy failed: "+err.Error(), true)
	}
	return func() tea.Msg {
		return CopyMsg{Content: string(b), Label: "response"}
	}
}

func (e *EndpointPanel) copyCurl() tea.Cmd {
	req, err := e.panel.Request()
	if err != nil {
		return feedbackCmd("Copy failed: "+err.Error(), true)
	}
	content := exporter.Curl(req)
	return func() tea.Msg {
		return CopyMsg{Content: content, Label: "curl command"}
	}
}

func (e *EndpointPanel) payloadVisible() bool {
	return e.panel.ActiveMethod().HasBody()
}

func (e *EndpointPanel) toggleSection() {
	if e.section == SectionResponse && e.payloadVisible() {
		e.section = SectionPayload
	} else {
		e.section = SectionResponse
	}
	e.focusSection()
}

func (e *EndpointPanel) focusSection() {
	if !e.Focused() {
		return
	}
	if e.section == SectionPayload && e.payloadVisible() {
		e.payload.Focus()
		e.response.Blur()
		return
	}
	e.payload.Blur()
	e.response.Focus()
}

func (e *EndpointPanel) activeTree() *JSONEditor {
	if e.section == SectionPayload && e.payloadVisible() {
		return e.payload
	}
	return e.response
}

func (e *EndpointPanel) headerLines() int {
	n := 2
	route := e.panel.Route()
	if route.HasPresets() {
		n++
	}
	if route.RequiresResourceID {
		n++
	}
	if e.filtering {
		n++
	}
	return n
}

// layout splits the height between the payload and response boxes. Each
// box has a two-line border; the response box also has a status line.
func (e *EndpointPanel) layout() {
	if e.Width() <= 0 || e.Height() <= 0 {
		return
	}
	innerW := e.Width() - 2
	remaining := e.Height() - e.headerLines()

	if e.payloadVisible() {
		payloadH := remaining/2 - 2
		responseH := remaining - remaining/2 - 3
		e.payload.SetSize(innerW, max(payloadH, 1))
		e.response.SetSize(innerW, max(responseH, 1))
		return
	}
	e.response.SetSize(innerW, max(remaining-3, 1))
}

// View renders the panel.
func (e *EndpointPanel) View() string {
	route := e.panel.Route()
	lines := []string{e.renderHeader(), e.renderTabs()}
	if route.HasPresets() {
		lines = append(lines, e.renderPresets())
	}
	if route.RequiresResourceID {
		lines = append(lines, e.renderResourceID())
	}
	if e.payloadVisible() {
		lines = append(lines, e.renderPayload())
	}
	lines = append(lines, e.renderResponse())
	if e.filtering {
		lines = append(lines, e.filterInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (e *EndpointPanel) renderHeader() string {
	title := e.styles.Title.Render(e.panel.DisplayTitle())
	url := e.styles.Muted.Render(e.panel.TargetURL())
	return title + "  " + url
}

func (e *EndpointPanel) renderTabs() string {
	active := e.panel.ActiveMethod()
	tabs := make([]string, 0, len(e.panel.Route().AllowedMethods))
	for _, m := range e.panel.Route().AllowedMethods {
		if m == active {
			tabs = append(tabs, e.styles.TabActive.Render(m.String()))
		} else {
			tabs = append(tabs, e.styles.Tab.Render(m.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (e *EndpointPanel) renderPresets() string {
	route := e.panel.Route()
	buttons := make([]string, 0, len(route.DefaultPayloads))
	for i := range route.DefaultPayloads {
		if i >= 9 {
			break
		}
		label := fmt.Sprintf("%d %s", i+1, route.PresetLabel(i))
		buttons = append(buttons, e.styles.Button.Render(label))
	}
	return strings.Join(buttons, " ")
}

func (e *EndpointPanel) renderResourceID() string {
	if e.editingID {
		return e.idInput.View()
	}
	return e.styles.Muted.Render("id: ") + e.panel.ResourceID()
}

func (e *EndpointPanel) renderPayload() string {
	style := e.styles.Unfocused
	if e.Focused() && e.section == SectionPayload {
		style = e.styles.Focused
	}
	if e.Width() > 0 {
		style = style.Width(e.Width() - 2)
	}
	body := e.payload.View()
	return style.Render(body)
}

func (e *EndpointPanel) renderResponse() string {
	last := e.panel.LastResponse()
	visual := e.panel.Visual()
	tone := tui.ToneText(visual.Tone)

	status := []string{e.styles.Title.Render("Response")}
	if last.Status != nil {
		code := *last.Status
		status = append(status, tone.Bold(true).Render(strings.TrimSpace(fmt.Sprintf("%d %s", code, http.StatusText(code)))))
	}
	if last.Duration > 0 {
		status = append(status, e.styles.Muted.Render(last.Duration.Round(time.Millisecond).String()))
	}
	if n := e.panel.InFlight(); n > 0 {
		status = append(status, e.spinner.View()+e.styles.Muted.Render(fmt.Sprintf("sending (%d)", n)))
	}
	if e.query != nil {
		status = append(status, e.styles.Muted.Render("jq "+e.query.String()))
	}

	var body string
	switch {
	case last.Failure != nil:
		body = tone.Render(last.Failure.Error())
	case last.Body == nil && e.panel.InFlight() > 0:
		body = e.styles.Muted.Render("waiting for response...")
	case last.Empty():
		body = e.styles.Muted.Render("No response yet. Press s to send.")
	default:
		body = e.response.View()
	}
	if e.filterErr != "" {
		body += "\n" + e.styles.Error.Render(e.filterErr)
	}

	style := tui.ToneBorder(visual, e.Focused() && e.section == SectionResponse)
	if e.Width() > 0 {
		style = style.Width(e.Width() - 2)
	}
	return style.Render(strings.Join(status, "  ") + "\n" + body)
}
