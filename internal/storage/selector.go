// Package storage implements the persistence core: a file-backed JSON record
// store with transparent fallback to an in-memory store.
//
// TWO BACKENDS, ONE-WAY SWITCH:
// The Selector is a tiny state machine with states {durable, volatile} and a
// single transition durable → volatile. The transition fires when:
//   - startup detects a managed execution environment (serverless platforms
//     give you a read-only or ephemeral filesystem), or
//   - a write probe against the storage root fails, or
//   - any read/write against the durable backend fails at runtime.
//
// There is no reverse transition within a process lifetime. Once the durable
// backend has failed once, trusting it again mid-process would risk serving a
// mix of stale file state and fresher in-memory state.
//
// SOFT DEGRADATION POLICY:
// Storage unavailability is never fatal — not at startup, not per request.
// The failed operation is served from the in-memory snapshot and the switch
// is logged at Warn. This is a deliberate availability-over-durability trade:
// the product keeps working on a broken disk, at the cost of losing new
// writes on restart.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"log/slog"
)

// managedEnvMarkers are environment variables whose presence indicates a
// serverless/managed platform where local file storage is ephemeral or
// read-only. Their presence forces volatile mode outright — no probe.
var managedEnvMarkers = []string{
	"VERCEL",
	"NETLIFY",
	"AWS_LAMBDA_FUNCTION_NAME",
}

// Selector decides which backend store operations target. It is constructed
// once at process start and injected into every Store — never package-global
// state.
type Selector struct {
	root   string
	logger *slog.Logger

	mu       sync.Mutex
	volatile bool
}

// NewSelector evaluates the startup decision policy for the given storage
// root and ensures the named resource files exist when durable mode is
// selected. It never returns an error: every failure path degrades to
// volatile mode with a logged warning.
//
// Policy, in order:
//  1. Managed-environment markers (or APP_ENV=production) → volatile.
//  2. Write probe: create and remove a throwaway directory under root.
//     Failure → volatile.
//  3. Ensure root and each resource file exist (files created as "[]"),
//     and check write permission explicitly. Failure → volatile.
func NewSelector(root string, files []string, logger *slog.Logger) *Selector {
	s := &Selector{
		root:   root,
		logger: logger,
	}

	if marker, ok := detectManagedEnv(); ok {
		s.volatile = true
		logger.Warn("managed environment detected, using in-memory storage",
			slog.String("marker", marker),
		)
		return s
	}

	if err := s.probeWrite(); err != nil {
		s.volatile = true
		logger.Warn("storage root write probe failed, using in-memory storage",
			slog.String("root", root),
			slog.String("error", err.Error()),
		)
		return s
	}

	if err := s.ensureFiles(files); err != nil {
		s.volatile = true
		logger.Warn("storage initialization failed, using in-memory storage",
			slog.String("root", root),
			slog.String("error", err.Error()),
		)
		return s
	}

	logger.Info("durable storage ready", slog.String("root", root))
	return s
}

// Root returns the storage root directory.
func (s *Selector) Root() string {
	return s.root
}

// VolatileMode reports whether operations currently target the in-memory
// backend. Re-evaluated lazily: a durable failure anywhere flips this to
// true for the remainder of the process.
func (s *Selector) VolatileMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volatile
}

// Degrade transitions to volatile mode in response to a durable backend
// failure. Safe to call repeatedly; only the first call logs.
func (s *Selector) Degrade(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.volatile {
		return
	}
	s.volatile = true
	s.logger.Warn("durable storage failed, switching to in-memory storage",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

// detectManagedEnv returns the first managed-environment marker found.
// APP_ENV=production counts as a marker: production deployments of this app
// run on platforms without a writable data directory.
func detectManagedEnv() (string, bool) {
	for _, key := range managedEnvMarkers {
		if os.Getenv(key) != "" {
			return key, true
		}
	}
	if os.Getenv("APP_ENV") == "production" {
		return "APP_ENV=production", true
	}
	return "", false
}

// probeWrite checks write capability by creating and removing a throwaway
// directory under the intended storage root.
func (s *Selector) probeWrite() error {
	probe := filepath.Join(s.root, ".write-probe")
	if err := os.MkdirAll(probe, 0o755); err != nil {
		return fmt.Errorf("creating probe directory: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("removing probe directory: %w", err)
	}
	return nil
}

// ensureFiles creates the storage root and each resource file (as an empty
// JSON array) if absent, then verifies write permission on each.
func (s *Selector) ensureFiles(files []string) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("creating storage root: %w", err)
	}

	for _, name := range files {
		path := filepath.Join(s.root, name)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
				return fmt.Errorf("creating %s: %w", name, err)
			}
		} else if err != nil {
			return fmt.Errorf("checking %s: %w", name, err)
		}

		// Explicit write-permission check. Stat alone doesn't catch a file
		// owned by another user or a read-only mount.
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("write permission check for %s: %w", name, err)
		}
		f.Close()
	}

	return nil
}
