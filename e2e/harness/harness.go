// Package harness provides E2E testing utilities for popcorn.
package harness

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/popcorn/e2e/testserver"
	"github.com/artpar/popcorn/internal/movie"
)

// DefaultAPIKey is the key the fake OMDb accepts unless Config says otherwise.
const DefaultAPIKey = "e2e-key"

// E2EHarness is the main test orchestrator.
type E2EHarness struct {
	t       *testing.T
	server  *testserver.Server
	tmpDir  string
	timeout time.Duration
	apiKey  string
}

// Config configures the harness.
type Config struct {
	Movies  []movie.Details
	Handler func(http.HandlerFunc) http.HandlerFunc // Optional wrapper around the catalog
	APIKey  string
	Store   string        // Default: sqlite
	Timeout time.Duration // Default: 5 seconds
}

// New creates a new E2E harness.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.Store == "" {
		cfg.Store = "sqlite"
	}

	h := &E2EHarness{
		t:       t,
		timeout: cfg.Timeout,
		apiKey:  cfg.APIKey,
	}

	// Create temporary directory for test data
	tmpDir, err := os.MkdirTemp("", "popcorn-e2e-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	h.tmpDir = tmpDir

	handler := testserver.Catalog{APIKey: cfg.APIKey, Movies: cfg.Movies}.Handler()
	if cfg.Handler != nil {
		handler = cfg.Handler(handler)
	}
	h.server = testserver.New(handler)

	config := fmt.Sprintf("omdb:\n  base_url: %s/\n  timeout: 2s\n  retries: 2\nstorage:\n  driver: %s\n",
		h.server.URL, cfg.Store)
	if err := os.WriteFile(h.ConfigPath(), []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("OMDB_API_KEY", "")
	t.Cleanup(h.cleanup)
	return h
}

func (h *E2EHarness) cleanup() {
	h.server.Close()
	os.RemoveAll(h.tmpDir)
}

// Server returns the fake OMDb server.
func (h *E2EHarness) Server() *testserver.Server {
	return h.server
}

// ServerURL returns the test server URL.
func (h *E2EHarness) ServerURL() string {
	return h.server.URL
}

// TmpDir returns the temporary directory path.
func (h *E2EHarness) TmpDir() string {
	return h.tmpDir
}

// ConfigPath returns the config file the CLI is pointed at.
func (h *E2EHarness) ConfigPath() string {
	return filepath.Join(h.tmpDir, "config.yaml")
}

// DataDir returns the data directory the CLI is pointed at.
func (h *E2EHarness) DataDir() string {
	return filepath.Join(h.tmpDir, "data")
}

// APIKey returns the key the fake OMDb accepts.
func (h *E2EHarness) APIKey() string {
	return h.apiKey
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
