// Package browser implements the dom interfaces against a live Chrome tab
// driven over CDP. Page events reach Go through an exposed binding fed by an
// injected forwarder script; element mutations go back out as CDP commands.
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/internal/config"
)

// Manager owns the headless browser process. Sessions (tabs) are derived
// from its allocator context and tracked for graceful shutdown.
type Manager struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc

	// wg tracks open sessions so Shutdown can wait for them.
	wg sync.WaitGroup
}

// NewManager launches the browser process and verifies it responds.
func NewManager(ctx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Manager, error) {
	m := &Manager{
		logger: logger.Named("browser_manager"),
		cfg:    cfg,
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	m.allocatorCtx = allocCtx
	m.allocatorCancel = cancel

	// Confirm the process starts before handing the manager out.
	probeCtx, cancelProbe := context.WithTimeout(allocCtx, 30*time.Second)
	probeCtx, cancelProbeTab := chromedp.NewContext(probeCtx)
	defer cancelProbeTab()
	defer cancelProbe()

	if err := chromedp.Run(probeCtx, chromedp.Navigate("about:blank")); err != nil {
		m.allocatorCancel()
		return nil, fmt.Errorf("browser failed to start or respond: %w", err)
	}

	m.logger.Info("browser launched", zap.Bool("headless", cfg.Headless))
	return m, nil
}

// allocatorOptions assembles the launch flags for the browser process.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", cfg.IgnoreTLSErrors),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-gpu", cfg.Headless),
	)

	// Custom arguments from configuration, "--name=value" or "--name".
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		name := strings.TrimPrefix(parts[0], "--")
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(name, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}

	// Containerized Linux needs the sandbox relaxed.
	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return opts
}

// NewSession opens a fresh, isolated tab with the event bridge installed.
// The caller must Close it.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := newSession(m.allocatorCtx, m.logger, m.cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}
	m.wg.Add(1)
	s.onClose = m.wg.Done
	return s, nil
}

// Shutdown waits for open sessions to close, then terminates the browser
// process. The context bounds the wait.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.logger.Info("browser shutdown requested")

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown deadline exceeded, terminating browser", zap.Error(ctx.Err()))
	}

	if m.allocatorCancel != nil {
		m.allocatorCancel()
		<-m.allocatorCtx.Done()
	}
	return nil
}
