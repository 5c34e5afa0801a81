// Package panel drives one endpoint's test lifecycle: method selection,
// payload editing, presets, sending, and the derived visual state of the
// last response.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/jsontree"
)

var (
	ErrNoPresets        = errors.New("route has no presets")
	ErrPresetOutOfRange = errors.New("preset index out of range")
)

// DefaultResourceID is the resource id a fresh panel targets.
const DefaultResourceID = "1"

// Requester performs one HTTP round trip.
type Requester interface {
	Send(ctx context.Context, req *core.Request) (*core.Response, error)
}

// Observer is notified when a completed call is applied or discarded.
type Observer interface {
	OnApplied(p *Panel, call *Call, outcome core.Outcome)
	OnDiscarded(p *Panel, call *Call, outcome core.Outcome)
}

// Exchange is the most recent response shown by a panel.
type Exchange struct {
	Status   *int // nil until a status line has been received
	Body     any
	Failure  *core.Failure
	Duration time.Duration
	Method   core.Method
	URL      string
}

// Empty reports whether nothing has been received yet.
func (e Exchange) Empty() bool {
	return e.Status == nil && e.Body == nil && e.Failure == nil
}

// Panel is the state and interaction controller of one endpoint.
// All methods are safe for concurrent use.
type Panel struct {
	mu sync.Mutex

	route    core.RouteConfig
	baseURL  string
	observer Observer

	activeMethod core.Method
	resourceID   string
	payload      any
	last         Exchange
	visual       core.VisualState

	issued   uint64 // highest sequence number handed out
	applied  uint64 // highest sequence number applied or invalidated
	inFlight int
}

// Option configures a Panel.
type Option func(*Panel)

// WithObserver registers an observer for completions.
func WithObserver(o Observer) Option {
	return func(p *Panel) {
		p.observer = o
	}
}

// New creates a panel for route. baseURL is prefixed verbatim to the route.
func New(route core.RouteConfig, baseURL string, opts ...Option) (*Panel, error) {
	if err := route.Validate(); err != nil {
		return nil, err
	}
	p := &Panel{
		route:        route,
		baseURL:      strings.TrimRight(baseURL, "/"),
		activeMethod: route.AllowedMethods[0],
		resourceID:   DefaultResourceID,
		payload:      initialPayload(route),
		visual:       core.Classify(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func initialPayload(route core.RouteConfig) any {
	if len(route.DefaultPayloads) > 0 {
		return jsontree.Clone(route.DefaultPayloads[0])
	}
	return map[string]any{}
}

// Route returns the panel's configuration.
func (p *Panel) Route() core.RouteConfig {
	return p.route
}

// BaseURL returns the API base the panel targets.
func (p *Panel) BaseURL() string {
	return p.baseURL
}

// ActiveMethod returns the selected method tab.
func (p *Panel) ActiveMethod() core.Method {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeMethod
}

// SelectMethod switches tabs. Methods the route does not allow are ignored.
// Neither the payload nor the last response is touched.
func (p *Panel) SelectMethod(m core.Method) bool {
	if !p.route.Allows(m) {
		return false
	}
	p.mu.Lock()
	p.activeMethod = m
	p.mu.Unlock()
	return true
}

// ResourceID returns the raw resource id text.
func (p *Panel) ResourceID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resourceID
}

// SetResourceID stores the raw text from the id field. It is not
// validated; whatever the user typed ends up in the URL.
func (p *Panel) SetResourceID(raw string) {
	p.mu.Lock()
	p.resourceID = raw
	p.mu.Unlock()
}

// Payload returns a copy of the current payload.
func (p *Panel) Payload() any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return jsontree.Clone(p.payload)
}

// SetPayload replaces the payload with an edited value.
func (p *Panel) SetPayload(v any) {
	p.mu.Lock()
	p.payload = jsontree.Clone(v)
	p.mu.Unlock()
}

// SelectPreset replaces the payload with default payload i.
// Slot meanings (base resource, valid, declined, malformed) are labels only.
func (p *Panel) SelectPreset(i int) error {
	if !p.route.HasPresets() {
		return ErrNoPresets
	}
	if i < 0 || i >= len(p.route.DefaultPayloads) {
		return fmt.Errorf("%w: %d", ErrPresetOutOfRange, i)
	}
	p.mu.Lock()
	p.payload = jsontree.Clone(p.route.DefaultPayloads[i])
	p.mu.Unlock()
	return nil
}

// LastResponse returns the last applied exchange.
func (p *Panel) LastResponse() Exchange {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.last
	last.Body = jsontree.Clone(last.Body)
	return last
}

// Visual returns the derived visual state.
func (p *Panel) Visual() core.VisualState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visual
}

// InFlight returns the number of calls issued but not yet completed.
func (p *Panel) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// TargetURL is the URL the next send will use.
func (p *Panel) TargetURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targetURL()
}

func (p *Panel) targetURL() string {
	url := p.baseURL + p.route.RouteName
	if p.route.RequiresResourceID {
		url += p.resourceID
	}
	return url
}

// DisplayTitle is the heading: the route title, plus the resource id on
// parameterized routes.
func (p *Panel) DisplayTitle() string {
	if !p.route.RequiresResourceID {
		return p.route.Title()
	}
	return p.route.Title() + p.ResourceID()
}

// Reset clears the last response and restores the initial payload.
// Method and resource id are kept. Calls still in flight are discarded
// when they complete.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = Exchange{}
	p.visual = core.Classify(nil)
	p.payload = initialPayload(p.route)
	p.applied = p.issued
}
