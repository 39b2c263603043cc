// Package simulate drives the discrete input modality against a live
// session: clicks, confirm keys and the cancel key. The attach command's
// demo mode uses it to exercise a page's pairing interactions without a
// human at the keyboard.
package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/browser"
)

// Simulator issues input against one browser session.
type Simulator struct {
	session *browser.Session
	logger  *zap.Logger

	// Pause between issued inputs, so page-side handlers settle the way
	// they would under real interaction pacing.
	Delay time.Duration
}

// New returns a Simulator for the session.
func New(session *browser.Session, logger *zap.Logger) *Simulator {
	return &Simulator{
		session: session,
		logger:  logger.Named("simulate"),
		Delay:   150 * time.Millisecond,
	}
}

// Click clicks the first element matching selector.
func (s *Simulator) Click(ctx context.Context, selector string) error {
	s.logger.Debug("click", zap.String("selector", selector))
	if err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("simulate click %q: %w", selector, err)
	}
	return s.pause(ctx)
}

// ConfirmKey focuses the element and presses Enter.
func (s *Simulator) ConfirmKey(ctx context.Context, selector string) error {
	s.logger.Debug("confirm key", zap.String("selector", selector))
	if err := s.run(ctx,
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.KeyEvent(kb.Enter),
	); err != nil {
		return fmt.Errorf("simulate confirm on %q: %w", selector, err)
	}
	return s.pause(ctx)
}

// CancelKey presses Escape. The keydown bubbles from whatever is focused up
// to the interaction scope, where the cancel handler listens.
func (s *Simulator) CancelKey(ctx context.Context) error {
	s.logger.Debug("cancel key")
	if err := s.run(ctx, chromedp.KeyEvent(kb.Escape)); err != nil {
		return fmt.Errorf("simulate cancel key: %w", err)
	}
	return s.pause(ctx)
}

func (s *Simulator) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(s.session.Context(), actions...)
}

func (s *Simulator) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
