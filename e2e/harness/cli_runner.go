package harness

import (
	"bytes"
	"context"
	"time"

	"github.com/artpar/querybench/internal/cli"
)

// CLIResult holds CLI execution results.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// CLIRunner executes CLI commands.
type CLIRunner struct {
	harness *E2EHarness
}

// Run executes a CLI command with the given arguments.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.harness.timeout)
	defer cancel()

	start := time.Now()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := cli.NewRootCommand("test")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	result := &CLIResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		result.ExitCode = 1
	}

	return result, err
}

// Send runs the send command for route against the harness shop.
func (r *CLIRunner) Send(route string, opts ...string) (*CLIResult, error) {
	args := []string{"send", route, "--base-url", r.harness.ServerURL()}
	args = append(args, opts...)
	return r.Run(args...)
}

// SendJSON runs the send command expecting JSON output.
func (r *CLIRunner) SendJSON(route string, opts ...string) (*CLIResult, error) {
	return r.Send(route, append(opts, "--json")...)
}
