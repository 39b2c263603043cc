package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/internal/observability"
	"github.com/dragmate/dragmate/pkg/browser"
	"github.com/dragmate/dragmate/pkg/dom"
	"github.com/dragmate/dragmate/pkg/interaction"
	"github.com/dragmate/dragmate/pkg/simulate"
)

var (
	attachDraggable string
	attachTarget    string
	attachScope     string
	attachDuration  time.Duration
	attachDemo      bool
)

var attachCmd = &cobra.Command{
	Use:   "attach [url]",
	Short: "Attach pairing interactions to a live page and report matches.",
	Long: `Attach loads the URL in a managed browser tab, wires drag-and-drop
pairing onto the configured draggable and target sets, and logs every
resolved pair until the duration elapses or the process is interrupted.

With --demo the discrete modality is driven automatically: the first
draggable and the first target are clicked so a pair resolves without a
human at the page.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttach(cmd.Context(), args[0])
	},
}

func init() {
	attachCmd.Flags().StringVar(&attachDraggable, "draggable", "", "selector for the draggable set (default from config)")
	attachCmd.Flags().StringVar(&attachTarget, "target", "", "selector for the target set (default from config)")
	attachCmd.Flags().StringVar(&attachScope, "scope", "", "selector for the interaction scope (default from config)")
	attachCmd.Flags().DurationVar(&attachDuration, "duration", 0, "stop after this long (0 runs until interrupted)")
	attachCmd.Flags().BoolVar(&attachDemo, "demo", false, "drive one click-selected pair automatically")
	rootCmd.AddCommand(attachCmd)
}

func runAttach(parent context.Context, url string) error {
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager, err := browser.NewManager(ctx, logger, cfg.Browser)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("browser shutdown", zap.Error(err))
		}
	}()

	session, err := manager.NewSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(context.Background()); err != nil {
			logger.Warn("session close", zap.Error(err))
		}
	}()

	if err := session.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate %q: %w", url, err)
	}

	opts := interaction.Options{
		DraggableSelector: firstNonEmpty(attachDraggable, cfg.Interaction.DraggableSelector),
		TargetSelector:    firstNonEmpty(attachTarget, cfg.Interaction.TargetSelector),
		ScopeSelector:     firstNonEmpty(attachScope, cfg.Interaction.ScopeSelector),
		Logger:            logger,
	}

	// The callback closes over the controller so matched pairs can be
	// retired as they resolve. Events are delivered on the session's dispatch
	// goroutine, which can fire before New returns; ctrlReady orders the
	// controller assignment ahead of the first use.
	var ctrl *interaction.Controller
	ctrlReady := make(chan struct{})
	opts.OnMatch = func(draggable, target dom.Element) {
		<-ctrlReady
		if ctrl == nil {
			return
		}
		logger.Info("pair matched",
			zap.String("draggable", draggable.ID()),
			zap.String("target", target.ID()))
		if err := ctrl.DisableMatching(context.Background(), draggable, target); err != nil {
			logger.Warn("disable matched pair", zap.Error(err))
		}
	}

	ctrl, err = interaction.New(ctx, session.Document(), opts)
	close(ctrlReady)
	if err != nil {
		return err
	}
	defer func() {
		if err := ctrl.Cleanup(context.Background()); err != nil {
			logger.Warn("interaction cleanup", zap.Error(err))
		}
	}()

	logger.Info("interactions attached",
		zap.String("url", url),
		zap.Int("draggables", len(ctrl.Draggables())),
		zap.Int("targets", len(ctrl.Targets())))

	if attachDemo {
		if err := runDemo(ctx, session, ctrl, logger); err != nil {
			return err
		}
	}

	wait := ctx.Done()
	if attachDuration > 0 {
		timer := time.NewTimer(attachDuration)
		defer timer.Stop()
		select {
		case <-timer.C:
			logger.Info("duration elapsed")
			return nil
		case <-wait:
		}
	} else {
		<-wait
	}
	logger.Info("interrupted")
	return nil
}

// runDemo clicks the first draggable and the first target, resolving one
// pair through the discrete modality.
func runDemo(ctx context.Context, session *browser.Session, ctrl *interaction.Controller, logger *zap.Logger) error {
	draggables, targets := ctrl.Draggables(), ctrl.Targets()
	if len(draggables) == 0 || len(targets) == 0 {
		logger.Warn("demo skipped: selectors matched no elements")
		return nil
	}

	sim := simulate.New(session, logger)
	if err := sim.Click(ctx, pageSelector(draggables[0])); err != nil {
		return err
	}
	if err := sim.Click(ctx, pageSelector(targets[0])); err != nil {
		return err
	}
	return nil
}

// pageSelector recovers the stable page-side selector behind a dom.Element.
func pageSelector(el dom.Element) string {
	if s, ok := el.(interface{ Selector() string }); ok {
		return s.Selector()
	}
	return el.ID()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
