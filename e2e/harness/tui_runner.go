package harness

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/artpar/querybench/internal/app"
	"github.com/artpar/querybench/internal/history"
	"github.com/artpar/querybench/internal/history/sqlite"
	"github.com/artpar/querybench/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// TUIRunner provides TUI testing capabilities.
type TUIRunner struct {
	harness *E2EHarness
}

// TUISession drives a MainView the way a bubbletea program would: commands
// run on their own goroutines and their messages are fed back through
// Update on the test goroutine.
type TUISession struct {
	runner       *TUIRunner
	model        *views.MainView
	t            *testing.T
	historyStore history.Store
	clipboard    []string

	msgs chan tea.Msg
	done chan struct{}
	quit bool
}

// Start starts a new TUI session against the harness shop.
func (r *TUIRunner) Start(t *testing.T) *TUISession {
	return r.StartWithSize(t, 120, 40)
}

// StartWithSize starts a TUI session with custom dimensions.
func (r *TUIRunner) StartWithSize(t *testing.T, width, height int) *TUISession {
	t.Helper()

	store, err := sqlite.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to create in-memory history store: %v", err)
	}

	application := app.New(
		app.WithConfig(app.Config{BaseURL: r.harness.ServerURL()}),
		app.WithHistory(store),
	)
	panels, err := application.Panels()
	if err != nil {
		t.Fatalf("Failed to build panels: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &TUISession{
		runner:       r,
		t:            t,
		historyStore: store,
		msgs:         make(chan tea.Msg, 64),
		done:         make(chan struct{}),
	}
	s.model = views.NewMainView(ctx, application, panels)
	s.model.SetHistoryStore(store)
	s.model.SetClipboard(func(content string) error {
		s.clipboard = append(s.clipboard, content)
		return nil
	})
	s.handle(tea.WindowSizeMsg{Width: width, Height: height})

	t.Cleanup(func() {
		close(s.done)
		cancel()
		application.Close()
	})
	return s
}

// handle feeds msg to the model and schedules the resulting command.
func (s *TUISession) handle(msg tea.Msg) {
	switch msg := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, cmd := range msg {
			s.dispatch(cmd)
		}
		return
	case tea.QuitMsg:
		s.quit = true
		return
	}
	updated, cmd := s.model.Update(msg)
	s.model = updated.(*views.MainView)
	s.dispatch(cmd)
}

// dispatch runs cmd in the background.
func (s *TUISession) dispatch(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if msg == nil {
			return
		}
		select {
		case s.msgs <- msg:
		case <-s.done:
		}
	}()
}

// Drain processes every message that is already waiting.
func (s *TUISession) Drain() *TUISession {
	for {
		select {
		case msg := <-s.msgs:
			s.handle(msg)
		default:
			return s
		}
	}
}

// SendKey sends a key press.
func (s *TUISession) SendKey(key string) *TUISession {
	s.handle(parseKeyMsg(key))
	return s
}

// SendKeys sends multiple key presses.
func (s *TUISession) SendKeys(keys ...string) *TUISession {
	for _, key := range keys {
		s.SendKey(key)
	}
	return s
}

// Type sends a sequence of rune keys.
func (s *TUISession) Type(text string) *TUISession {
	for _, r := range text {
		s.handle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return s
}

// WaitFor processes messages until condition holds or the harness timeout
// passes.
func (s *TUISession) WaitFor(condition func(*State) bool) error {
	timeout := s.runner.harness.timeout
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		s.Drain()
		if condition(s.CaptureState()) {
			return nil
		}
		select {
		case msg := <-s.msgs:
			s.handle(msg)
		case <-deadline.C:
			return &TimeoutError{text: "condition", timeout: timeout}
		}
	}
}

// WaitForOutput waits for specific text in the rendered screen.
func (s *TUISession) WaitForOutput(text string) error {
	err := s.WaitFor(func(*State) bool {
		return strings.Contains(s.Output(), text)
	})
	if err != nil {
		return &TimeoutError{text: text, timeout: s.runner.harness.timeout}
	}
	return nil
}

// WaitIdle waits until no panel has a call in flight.
func (s *TUISession) WaitIdle() error {
	return s.WaitFor(func(st *State) bool {
		for _, p := range st.Panels {
			if p.InFlight > 0 {
				return false
			}
		}
		return true
	})
}

// Output returns the current screen without ANSI styling.
func (s *TUISession) Output() string {
	return ansi.Strip(s.model.View())
}

// Quit reports whether the view asked the program to quit, waiting up to
// the harness timeout for the quit message.
func (s *TUISession) Quit() bool {
	_ = s.WaitFor(func(*State) bool { return s.quit })
	return s.quit
}

// Model returns the underlying MainView for direct assertions.
func (s *TUISession) Model() *views.MainView {
	return s.model
}

// Clipboard returns everything copied so far.
func (s *TUISession) Clipboard() []string {
	return s.clipboard
}

// HistoryEntries returns history entries from the store.
func (s *TUISession) HistoryEntries() []history.Entry {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, _ := s.historyStore.List(ctx, history.QueryOptions{Limit: 100})
	return entries
}

// TimeoutError represents a timeout waiting for output.
type TimeoutError struct {
	text    string
	timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return "timeout after " + e.timeout.String() + " waiting for: " + e.text
}

// parseKeyMsg converts key string to tea.KeyMsg.
func parseKeyMsg(key string) tea.KeyMsg {
	switch strings.ToLower(key) {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc", "escape":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
}
