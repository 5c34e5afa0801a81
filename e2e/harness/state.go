package harness

import (
	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/tui/components"
)

// State represents a snapshot of the TUI for verification.
type State struct {
	Focused        int
	Mode           string // "NORMAL" or "INSERT"
	ShowingHelp    bool
	ShowingHistory bool
	Notification   string
	Panels         []PanelState
}

// PanelState captures one endpoint panel.
type PanelState struct {
	Title      string
	Method     string
	URL        string
	ResourceID string
	Section    string // "payload" or "response"
	Payload    any
	InFlight   int

	HasResponse bool
	StatusCode  int // zero when no status was received
	Tone        core.Tone
	Failure     string
	Filter      string
}

// Current returns the focused panel's state.
func (s *State) Current() PanelState {
	if s.Focused < 0 || s.Focused >= len(s.Panels) {
		return PanelState{}
	}
	return s.Panels[s.Focused]
}

// CaptureState captures the current state of the TUI session.
func (s *TUISession) CaptureState() *State {
	state := &State{
		Focused:        s.model.FocusedIndex(),
		Mode:           "NORMAL",
		ShowingHelp:    s.model.ShowingHelp(),
		ShowingHistory: s.model.ShowingHistory(),
		Notification:   s.model.Notification(),
	}
	for _, ep := range s.model.Endpoints() {
		if ep.Capturing() && ep.Focused() {
			state.Mode = "INSERT"
		}
		state.Panels = append(state.Panels, capturePanel(ep))
	}
	return state
}

func capturePanel(ep *components.EndpointPanel) PanelState {
	p := ep.Panel()
	last := p.LastResponse()

	ps := PanelState{
		Title:       ep.Title(),
		Method:      p.ActiveMethod().String(),
		URL:         p.TargetURL(),
		ResourceID:  p.ResourceID(),
		Section:     "response",
		Payload:     p.Payload(),
		InFlight:    p.InFlight(),
		HasResponse: !last.Empty(),
		Tone:        p.Visual().Tone,
		Filter:      ep.Filter(),
	}
	if ep.Section() == components.SectionPayload {
		ps.Section = "payload"
	}
	if last.Status != nil {
		ps.StatusCode = *last.Status
	}
	if last.Failure != nil {
		ps.Failure = last.Failure.Error()
	}
	return ps
}
