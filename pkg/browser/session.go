package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/internal/config"
	"github.com/dragmate/dragmate/pkg/browser/shim"
)

// bindingName is the page-global function the forwarder script calls to hand
// events to Go.
const bindingName = "__dragmateEmit"

// Session is one isolated browser tab with the event bridge installed. All
// CDP traffic for the tab runs on the session context; DOM events are
// delivered to listener handlers one at a time, in page order.
type Session struct {
	id     string
	logger *zap.Logger
	cfg    config.BrowserConfig

	ctx    context.Context
	cancel context.CancelFunc
	bridge *bridge

	onClose func()
	closed  bool
	mu      sync.Mutex
}

// newSession creates the tab, exposes the emit binding and injects the
// forwarder. The binding must exist before the forwarder script can run, so
// the order here is load-bearing.
func newSession(allocCtx context.Context, logger *zap.Logger, cfg config.BrowserConfig) (*Session, error) {
	id := uuid.New().String()
	s := &Session{
		id:     id,
		logger: logger.With(zap.String("session_id", id[:8])),
		cfg:    cfg,
	}
	s.ctx, s.cancel = chromedp.NewContext(allocCtx)
	s.bridge = newBridge(s.logger)

	forwarder, err := shim.Forwarder(bindingName)
	if err != nil {
		s.cancel()
		return nil, err
	}

	if err := chromedp.Run(s.ctx, chromedp.Expose(bindingName, s.bridge.handleBinding)); err != nil {
		s.cancel()
		return nil, fmt.Errorf("expose event binding: %w", err)
	}
	if err := s.injectPersistently(forwarder); err != nil {
		s.cancel()
		return nil, fmt.Errorf("inject forwarder: %w", err)
	}

	s.bridge.start(s.ctx)
	s.logger.Info("browser session initialized")
	return s, nil
}

// injectPersistently runs the script on every new document in this tab.
func (s *Session) injectPersistently(script string) error {
	return chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Context returns the underlying chromedp session context.
func (s *Session) Context() context.Context { return s.ctx }

// Document returns the dom.Document view of the tab's current page.
func (s *Session) Document() *Document { return &Document{s: s} }

// Navigate loads a URL and waits for the page to be ready plus the
// configured settle time.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Debug("navigating", zap.String("url", url))

	navCtx := s.ctx
	if s.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
		defer cancel()
	}
	return chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(s.cfg.PostLoadWait),
	)
}

// run executes CDP actions on the session context. The caller context only
// gates entry; CDP actions must run on the tab's own context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.ctx, actions...)
}

// Close stops event delivery and tears the tab down.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.bridge.stop()
	s.cancel()

	waitCtx, cancelWait := context.WithTimeout(ctx, 10*time.Second)
	defer cancelWait()
	select {
	case <-s.ctx.Done():
		s.logger.Debug("session closed")
	case <-waitCtx.Done():
		s.logger.Warn("deadline exceeded waiting for session to close", zap.Error(waitCtx.Err()))
	}

	if s.onClose != nil {
		s.onClose()
	}
	return nil
}
