package harness

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/artpar/popcorn/internal/cli"
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

// Run executes a CLI command pointed at the harness config, data directory
// and API key.
func (r *CLIRunner) Run(args ...string) (*CLIResult, error) {
	return r.RunRaw(r.withGlobals(args)...)
}

func (r *CLIRunner) withGlobals(args []string) []string {
	return append([]string{
		"--config", r.harness.ConfigPath(),
		"--data-dir", r.harness.DataDir(),
		"--api-key", r.harness.APIKey(),
	}, args...)
}

// RunRaw executes a CLI command with exactly the given arguments.
func (r *CLIRunner) RunRaw(args ...string) (*CLIResult, error) {
	return r.runContext(context.Background(), args...)
}

// Interrupt runs a CLI command like Run and cancels it after the given
// delay, the way Ctrl-C does.
func (r *CLIRunner) Interrupt(after time.Duration, args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(after, cancel)

	return r.runContext(ctx, r.withGlobals(args)...)
}

func (r *CLIRunner) runContext(parent context.Context, args ...string) (*CLIResult, error) {
	ctx, cancel := context.WithTimeout(parent, r.harness.timeout)
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

// Search is a convenience method for the search command.
func (r *CLIRunner) Search(query string, opts ...string) (*CLIResult, error) {
	args := append([]string{"search", query}, opts...)
	return r.Run(args...)
}

// SearchJSON searches expecting JSON output.
func (r *CLIRunner) SearchJSON(query string) (*CLIResult, error) {
	return r.Run("search", "--json", query)
}

// Add adds a movie to the watched list.
func (r *CLIRunner) Add(id string, rating int) (*CLIResult, error) {
	return r.Run("watched", "add", id, "--rating", strconv.Itoa(rating))
}

// Watched runs a watched subcommand.
func (r *CLIRunner) Watched(args ...string) (*CLIResult, error) {
	return r.Run(append([]string{"watched"}, args...)...)
}
