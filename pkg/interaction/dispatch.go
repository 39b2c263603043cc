package interaction

import (
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/dom"
)

// dispatch is the single chokepoint through which both modalities hand a
// resolved pair to the caller. It performs no matching logic and does not
// react to anything the callback does; side effects such as disabling the
// pair belong to the callback.
func (c *Controller) dispatch(draggable, target dom.Element) {
	c.logger.Debug("pair resolved",
		zap.String("draggable", draggable.ID()),
		zap.String("target", target.ID()))
	c.onMatch(draggable, target)
}
