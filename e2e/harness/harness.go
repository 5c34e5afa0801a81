// Package harness provides E2E testing utilities for querybench.
package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/querybench/internal/testserver"
)

// E2EHarness is the main test orchestrator. It owns a fake shop API that
// both the CLI and the TUI are pointed at.
type E2EHarness struct {
	t       *testing.T
	shop    *testserver.Server
	tmpDir  string
	timeout time.Duration
}

// Config configures the harness.
type Config struct {
	Timeout time.Duration // Default: 5 seconds
}

// New creates a new E2E harness.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	h := &E2EHarness{
		t:       t,
		shop:    testserver.New(testserver.NewShop().Handler()),
		tmpDir:  t.TempDir(),
		timeout: cfg.Timeout,
	}
	t.Cleanup(h.shop.Close)
	return h
}

// ServerURL returns the shop URL.
func (h *E2EHarness) ServerURL() string {
	return h.shop.URL
}

// Shop returns the recording shop server.
func (h *E2EHarness) Shop() *testserver.Server {
	return h.shop
}

// TmpDir returns the temporary directory path.
func (h *E2EHarness) TmpDir() string {
	return h.tmpDir
}

// WriteFile writes content to name inside the temporary directory and
// returns its path.
func (h *E2EHarness) WriteFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.tmpDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}

// TUI returns a TUI runner for this harness.
func (h *E2EHarness) TUI() *TUIRunner {
	return &TUIRunner{harness: h}
}
