package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/querybench/internal/core"
)

// Call is one issued request, tagged with its sequence number.
type Call struct {
	Seq     uint64
	Method  core.Method
	URL     string
	Request *core.Request
	Issued  time.Time
}

// Begin snapshots the panel into a new call. The displayed body is cleared
// while the call is in flight; the previous status stays until it resolves.
func (p *Panel) Begin() (*Call, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	method := p.activeMethod
	url := p.targetURL()

	req, err := buildRequest(method, url, p.payload)
	if err != nil {
		return nil, err
	}

	p.issued++
	p.inFlight++
	p.last.Body = nil

	return &Call{
		Seq:     p.issued,
		Method:  method,
		URL:     url,
		Request: req,
		Issued:  time.Now(),
	}, nil
}

// Request builds the request the next send would issue, without issuing
// it. Exporters use it to show the call before it is made.
func (p *Panel) Request() (*core.Request, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return buildRequest(p.activeMethod, p.targetURL(), p.payload)
}

func buildRequest(method core.Method, url string, payload any) (*core.Request, error) {
	req, err := core.NewRequest(method, url)
	if err != nil {
		return nil, err
	}
	if method.HasBody() {
		body, err := core.NewJSONBody(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		req.SetBody(body)
		req.SetHeader("Content-Type", "application/json")
	}
	return req, nil
}

// Execute performs the round trip for call and parses the body as JSON.
// It does not touch panel state; pass the result to Complete.
func Execute(ctx context.Context, r Requester, call *Call) core.Outcome {
	resp, err := r.Send(ctx, call.Request)
	elapsed := time.Since(call.Issued)
	if err != nil {
		return core.Failed(core.ErrorKindNetwork, 0, err, elapsed)
	}

	if total := resp.Timing().Total; total > 0 {
		elapsed = total
	}

	body, err := core.DecodeJSON(resp.Body())
	if err != nil {
		if ct := resp.Headers().Get("Content-Type"); ct != "" {
			err = fmt.Errorf("%s: %w", ct, err)
		}
		return core.Failed(core.ErrorKindParse, resp.Status().Code(),
			fmt.Errorf("response is not JSON: %w", err), elapsed)
	}
	return core.Succeeded(resp.Status().Code(), body, elapsed)
}

// Complete applies outcome if call is the most recent call to resolve;
// completions older than one already applied, or issued before a Reset,
// are discarded. It reports whether the outcome was applied.
func (p *Panel) Complete(call *Call, outcome core.Outcome) bool {
	p.mu.Lock()
	if p.inFlight > 0 {
		p.inFlight--
	}
	if call.Seq <= p.applied {
		p.mu.Unlock()
		if p.observer != nil {
			p.observer.OnDiscarded(p, call, outcome)
		}
		return false
	}
	p.applied = call.Seq

	ex := Exchange{
		Body:     outcome.Body,
		Failure:  outcome.Failure(),
		Duration: outcome.Duration,
		Method:   call.Method,
		URL:      call.URL,
	}
	if outcome.HasStatus() {
		status := outcome.Status
		ex.Status = &status
	}
	p.last = ex
	p.visual = core.ClassifyOutcome(outcome)
	p.mu.Unlock()

	if p.observer != nil {
		p.observer.OnApplied(p, call, outcome)
	}
	return true
}

// Send issues a call, waits for it and applies the result. It returns an
// error only when the request could not be built; round-trip failures are
// reported in the outcome.
func (p *Panel) Send(ctx context.Context, r Requester) (core.Outcome, error) {
	if r == nil {
		return core.Outcome{}, errors.New("no requester configured")
	}
	call, err := p.Begin()
	if err != nil {
		return core.Outcome{}, err
	}
	outcome := Execute(ctx, r, call)
	p.Complete(call, outcome)
	return outcome, nil
}
