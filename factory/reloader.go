/*
reloader.go - Periodic reload of program-year documents

PURPOSE:
  Watches the program-year directory and reloads it when a document is
  added, removed or modified, so a newly published program year is picked
  up without a restart.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Fingerprints the directory (names, sizes, modification times)
  - Skips the reload when the fingerprint is unchanged
  - Rebuilds the program years from the embedded defaults plus the
    directory and swaps them in, so a removed document is unloaded
  - A document that fails validation leaves the loaded program years as
    they were; the error is logged and retried on the next tick

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Enabled: Whether the reloader is active (default: true)

USAGE:
  reloader := NewReloader(factory, registry, dir, logger)
  reloader.OnReload = cache.Flush
  reloader.Start()
  // ... later
  reloader.Stop()

SEE ALSO:
  - programyear.go: Load, Registry.Replace
  - cache/redis.go: Flush, used as OnReload
*/
package factory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reloader reloads a program-year directory into a registry.
type Reloader struct {
	Factory       *ProgramYearFactory
	Registry      *Registry
	Dir           string
	CheckInterval time.Duration
	Enabled       bool

	// OnReload runs after a successful reload.
	OnReload func(ctx context.Context) error

	logger      *zap.Logger
	runMu       sync.Mutex
	fingerprint string
	lastRun     time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewReloader(f *ProgramYearFactory, reg *Registry, dir string, logger *zap.Logger) *Reloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reloader{
		Factory:       f,
		Registry:      reg,
		Dir:           dir,
		CheckInterval: time.Minute,
		Enabled:       true,
		logger:        logger,
	}
}

// Start begins the periodic check.
func (r *Reloader) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.Enabled || r.Dir == "" || r.CheckInterval <= 0 {
		r.logger.Info("program year reloader disabled")
		return
	}

	if r.ticker != nil {
		return
	}
	r.ticker = time.NewTicker(r.CheckInterval)
	r.stop = make(chan struct{})
	r.wg.Add(1)

	go r.run(r.ticker.C, r.stop)

	r.logger.Info("program year reloader started",
		zap.String("dir", r.Dir),
		zap.Duration("interval", r.CheckInterval))
}

// Stop stops the periodic check and waits for a running reload.
func (r *Reloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker != nil {
		r.ticker.Stop()
		close(r.stop)
		r.wg.Wait()
		r.ticker = nil
		r.logger.Info("program year reloader stopped")
	}
}

func (r *Reloader) run(tick <-chan time.Time, stop <-chan struct{}) {
	defer r.wg.Done()

	for {
		select {
		case <-tick:
			if _, err := r.RunNow(context.Background()); err != nil {
				r.logger.Error("program year reload failed", zap.String("dir", r.Dir), zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}

// RunNow checks the directory once. It reports whether a reload happened.
func (r *Reloader) RunNow(ctx context.Context) (bool, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	fp, err := dirFingerprint(r.Dir)
	if err != nil {
		return false, err
	}
	r.lastRun = time.Now()
	if fp == r.fingerprint {
		return false, nil
	}

	fresh, err := r.Factory.Load(r.Dir)
	if err != nil {
		return false, err
	}
	r.Registry.Replace(fresh)
	r.fingerprint = fp
	r.logger.Info("program years reloaded", zap.Strings("program_years", r.Registry.Names()))

	if r.OnReload != nil {
		if err := r.OnReload(ctx); err != nil {
			return true, fmt.Errorf("post-reload hook: %w", err)
		}
	}
	return true, nil
}

// NextRunTime returns when the next check is due.
func (r *Reloader) NextRunTime() time.Time {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	return r.lastRun.Add(r.CheckInterval)
}

func dirFingerprint(dir string) (string, error) {
	files, err := programYearFiles(dir)
	if err != nil {
		return "", err
	}
	sort.Strings(files)
	var b strings.Builder
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s:%d:%d;", path, info.Size(), info.ModTime().UnixNano())
	}
	return b.String(), nil
}
