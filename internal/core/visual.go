package core

// Tone names the colour class derived from a response.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
	// ToneFailed marks a round trip that produced no usable response.
	ToneFailed Tone = "failed"
)

// VisualState is the border and text styling for a panel's response area.
type VisualState struct {
	Tone        Tone
	BorderClass string
	TextClass   string
}

func newVisualState(t Tone) VisualState {
	return VisualState{
		Tone:        t,
		BorderClass: "border border-" + string(t),
		TextClass:   "text-" + string(t),
	}
}

// Classify maps a status code to its visual state. A nil status is the
// state before any response and renders as an error.
func Classify(status *int) VisualState {
	if status == nil {
		return newVisualState(ToneError)
	}
	code := *status
	switch {
	case code >= 200 && code < 300:
		return newVisualState(ToneSuccess)
	case code == 404:
		return newVisualState(ToneWarning)
	case code >= 400 && code < 500:
		return newVisualState(ToneError)
	case code >= 500:
		return newVisualState(ToneError)
	default:
		return newVisualState(ToneError)
	}
}

// ClassifyOutcome returns the failed state for failed round trips and the
// status mapping otherwise.
func ClassifyOutcome(o Outcome) VisualState {
	if !o.OK {
		return newVisualState(ToneFailed)
	}
	status := o.Status
	return Classify(&status)
}
