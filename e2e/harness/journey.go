package harness

import (
	"strings"
	"testing"

	"github.com/artpar/querybench/internal/core"
)

// Journey represents a user journey test.
type Journey struct {
	t           *testing.T
	name        string
	harness     *E2EHarness
	session     *TUISession
	steps       []*Step
	currentStep int
}

// Step represents a single step in a journey.
type Step struct {
	name       string
	actions    []func(*TUISession)
	assertions []func(*testing.T, *TUISession, *State)
	waitFor    func(*State) bool
}

// NewJourney creates a new journey test.
func NewJourney(t *testing.T, name string) *Journey {
	return &Journey{
		t:       t,
		name:    name,
		harness: New(t, Config{}),
		steps:   make([]*Step, 0),
	}
}

// Step adds a new step to the journey.
func (j *Journey) Step(name string) *StepBuilder {
	step := &Step{name: name}
	j.steps = append(j.steps, step)
	return &StepBuilder{journey: j, step: step}
}

// Run executes the journey.
func (j *Journey) Run() {
	j.t.Helper()
	j.t.Run(j.name, func(t *testing.T) {
		j.session = j.harness.TUI().Start(t)

		for i, step := range j.steps {
			j.currentStep = i
			t.Logf("Step %d: %s", i+1, step.name)

			for _, action := range step.actions {
				action(j.session)
			}

			if step.waitFor != nil {
				if err := j.session.WaitFor(step.waitFor); err != nil {
					t.Fatalf("Step %d (%s): %v\n%s", i+1, step.name, err, j.session.Output())
				}
			} else {
				j.session.Drain()
			}

			state := j.session.CaptureState()
			for _, assertion := range step.assertions {
				assertion(t, j.session, state)
			}
		}
	})
}

// StepBuilder provides a fluent API for building steps.
type StepBuilder struct {
	journey *Journey
	step    *Step
}

func (b *StepBuilder) expect(fn func(*testing.T, *TUISession, *State)) *StepBuilder {
	b.step.assertions = append(b.step.assertions, fn)
	return b
}

// SendKey adds a key press action.
func (b *StepBuilder) SendKey(key string) *StepBuilder {
	b.step.actions = append(b.step.actions, func(s *TUISession) {
		s.SendKey(key)
	})
	return b
}

// SendKeys adds multiple key press actions.
func (b *StepBuilder) SendKeys(keys ...string) *StepBuilder {
	b.step.actions = append(b.step.actions, func(s *TUISession) {
		s.SendKeys(keys...)
	})
	return b
}

// Type adds a typing action.
func (b *StepBuilder) Type(text string) *StepBuilder {
	b.step.actions = append(b.step.actions, func(s *TUISession) {
		s.Type(text)
	})
	return b
}

// WaitFor adds a condition to wait for before assertions.
func (b *StepBuilder) WaitFor(condition func(*State) bool) *StepBuilder {
	b.step.waitFor = condition
	return b
}

// WaitForResponse waits until the focused panel has applied a response.
func (b *StepBuilder) WaitForResponse() *StepBuilder {
	return b.WaitFor(func(s *State) bool {
		c := s.Current()
		return c.InFlight == 0 && c.HasResponse
	})
}

// ExpectMode asserts the current mode.
func (b *StepBuilder) ExpectMode(mode string) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		if s.Mode != mode {
			t.Errorf("Expected mode %q, got %q", mode, s.Mode)
		}
	})
}

// ExpectFocus asserts the title of the visible panel.
func (b *StepBuilder) ExpectFocus(title string) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		if got := s.Current().Title; got != title {
			t.Errorf("Expected focus on %q, got %q", title, got)
		}
	})
}

// ExpectMethod asserts the focused panel's method.
func (b *StepBuilder) ExpectMethod(method string) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		if got := s.Current().Method; got != method {
			t.Errorf("Expected method %q, got %q", method, got)
		}
	})
}

// ExpectURL asserts the focused panel's target URL relative to the shop.
func (b *StepBuilder) ExpectURL(path string) *StepBuilder {
	return b.expect(func(t *testing.T, sess *TUISession, s *State) {
		t.Helper()
		want := sess.runner.harness.ServerURL() + path
		if got := s.Current().URL; got != want {
			t.Errorf("Expected URL %q, got %q", want, got)
		}
	})
}

// ExpectStatusCode asserts the focused panel's last status.
func (b *StepBuilder) ExpectStatusCode(code int) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		if got := s.Current().StatusCode; got != code {
			t.Errorf("Expected status code %d, got %d", code, got)
		}
	})
}

// ExpectTone asserts the focused panel's tone.
func (b *StepBuilder) ExpectTone(tone core.Tone) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		if got := s.Current().Tone; got != tone {
			t.Errorf("Expected tone %q, got %q", tone, got)
		}
	})
}

// ExpectOutput asserts the screen contains text.
func (b *StepBuilder) ExpectOutput(text string) *StepBuilder {
	return b.expect(func(t *testing.T, sess *TUISession, _ *State) {
		t.Helper()
		if out := sess.Output(); !strings.Contains(out, text) {
			t.Errorf("Expected output to contain %q:\n%s", text, out)
		}
	})
}

// ExpectHistoryCount asserts the number of history entries.
func (b *StepBuilder) ExpectHistoryCount(count int) *StepBuilder {
	return b.expect(func(t *testing.T, sess *TUISession, _ *State) {
		t.Helper()
		if got := len(sess.HistoryEntries()); got != count {
			t.Errorf("Expected history count %d, got %d", count, got)
		}
	})
}

// ExpectState adds a custom state assertion.
func (b *StepBuilder) ExpectState(assertion func(*testing.T, *State)) *StepBuilder {
	return b.expect(func(t *testing.T, _ *TUISession, s *State) {
		t.Helper()
		assertion(t, s)
	})
}

// Step starts a new step (returns to journey to continue chaining).
func (b *StepBuilder) Step(name string) *StepBuilder {
	return b.journey.Step(name)
}

// Run executes the journey (terminal operation).
func (b *StepBuilder) Run() {
	b.journey.Run()
}
