package core

import (
	"fmt"
	"time"
)

// ErrorKind classifies why a round trip produced no usable response.
type ErrorKind string

const (
	ErrorKindNetwork ErrorKind = "network"
	ErrorKindParse   ErrorKind = "parse"
)

// Outcome is the result of one round trip. HTTP error statuses are OK
// outcomes; only transport and body-parsing failures are not.
type Outcome struct {
	OK       bool
	Status   int // zero when the request never got a response
	Body     any
	Kind     ErrorKind
	Detail   string
	Duration time.Duration
}

// Succeeded builds an OK outcome.
func Succeeded(status int, body any, d time.Duration) Outcome {
	return Outcome{OK: true, Status: status, Body: body, Duration: d}
}

// Failed builds a failed outcome. status may be zero.
func Failed(kind ErrorKind, status int, err error, d time.Duration) Outcome {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return Outcome{Status: status, Kind: kind, Detail: detail, Duration: d}
}

// Failure describes a failed round trip as displayed to the user.
type Failure struct {
	Kind   ErrorKind
	Detail string
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s error: %s", f.Kind, f.Detail)
}

// Failure returns the failure of a failed outcome, or nil.
func (o Outcome) Failure() *Failure {
	if o.OK {
		return nil
	}
	return &Failure{Kind: o.Kind, Detail: o.Detail}
}

// HasStatus reports whether a status line was received.
func (o Outcome) HasStatus() bool {
	return o.Status != 0
}
