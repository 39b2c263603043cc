package interaction

import (
	"context"

	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Native drag-gesture modality. One draggable is in flight at a time; the
// host never starts a second gesture before dragend of the first, and dragend
// is delivered even when the gesture is cancelled without a drop.

func (c *Controller) handleDragStart(ctx context.Context, d dom.Element) {
	if c.closed {
		return
	}
	c.active = d
	c.mutate(d.AddClass(ctx, ClassMoving))
	// has-moved records that the element was ever picked up; dragend leaves
	// it in place.
	c.mutate(d.AddClass(ctx, ClassMoved))
	c.mutate(d.SetAttribute(ctx, attrGrabbed, "true"))
	for _, t := range c.targets {
		c.mutate(t.AddClass(ctx, ClassAvailableTarget))
	}
	c.logger.Debug("drag started", zap.String("draggable", d.ID()))
}

func (c *Controller) handleDragEnd(ctx context.Context, d dom.Element) {
	if c.closed {
		return
	}
	c.active = nil
	c.mutate(d.RemoveClass(ctx, ClassMoving))
	c.mutate(d.SetAttribute(ctx, attrGrabbed, "false"))
	for _, t := range c.targets {
		c.mutate(t.RemoveClass(ctx, ClassAvailableTarget))
	}
	c.logger.Debug("drag ended", zap.String("draggable", d.ID()))
}

func (c *Controller) handleDragEnter(ctx context.Context, t dom.Element) {
	if c.closed {
		return
	}
	c.mutate(t.AddClass(ctx, ClassHovered))
}

func (c *Controller) handleDragLeave(ctx context.Context, t dom.Element) {
	if c.closed {
		return
	}
	c.mutate(t.RemoveClass(ctx, ClassHovered))
}

// handleDragOver re-asserts the hover marker on every firing. The listener's
// PreventDefault option already suppressed the platform default page-side.
func (c *Controller) handleDragOver(ctx context.Context, t dom.Element) {
	if c.closed {
		return
	}
	c.mutate(t.AddClass(ctx, ClassHovered))
}

// handleDrop resolves the pair for the in-flight gesture. Drag state is not
// cleared here; the dragend that follows every gesture does that.
func (c *Controller) handleDrop(ctx context.Context, t dom.Element) {
	if c.closed {
		return
	}
	c.mutate(t.RemoveClass(ctx, ClassHovered))
	if c.active == nil {
		// Foreign gesture, or the host delivered a drop after dragend.
		c.logger.Debug("drop with no active drag ignored", zap.String("target", t.ID()))
		return
	}
	c.dispatch(c.active, t)
}
