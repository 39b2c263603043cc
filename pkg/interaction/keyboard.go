package interaction

import (
	"context"

	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Discrete modality: the accessible alternative to native dragging. Clicking
// or confirm-keying an element toggles its selected marker; one selected
// draggable plus one selected target resolves a pair.

// keyConfirm* are the KeyboardEvent key values that activate an element.
var keysConfirm = []string{"Enter", " "}

// keyCancel clears the draggable selection; it is scoped to the whole
// interaction area, not to individual elements.
const keyCancel = "Escape"

// activationAttachments builds the click and confirm-key attachments shared
// by both element sets. Confirm keys carry PreventDefault so Space does not
// scroll and Enter does not re-trigger default activation; the Keys filter
// keeps other keystrokes (Tab in particular) untouched.
func (c *Controller) activationAttachments(el dom.Element, isDraggable bool) []attachment {
	handler := func(hctx context.Context, _ dom.Event) { c.handleActivate(hctx, el, isDraggable) }
	return []attachment{
		{dom.EventClick, dom.ListenerOptions{}, handler},
		{dom.EventKeyDown, dom.ListenerOptions{PreventDefault: true, Keys: keysConfirm}, handler},
	}
}

// handleActivate toggles the selected marker on el within its own set, then
// dispatches if both sets now hold a selection. Selection survives the
// dispatch untouched; clearing it afterwards is the callback's call.
func (c *Controller) handleActivate(ctx context.Context, el dom.Element, isDraggable bool) {
	if c.closed {
		return
	}

	selected := &c.selectedTarget
	if isDraggable {
		selected = &c.selectedDraggable
	}

	switch {
	case *selected == el:
		c.mutate(el.RemoveClass(ctx, ClassSelected))
		*selected = nil
	default:
		// Selecting clears the previous holder in the same set only; the
		// other set's selection is never touched.
		if *selected != nil {
			c.mutate((*selected).RemoveClass(ctx, ClassSelected))
		}
		c.mutate(el.AddClass(ctx, ClassSelected))
		*selected = el
	}

	if c.selectedDraggable != nil && c.selectedTarget != nil {
		c.dispatch(c.selectedDraggable, c.selectedTarget)
	}
}

// handleCancelKey deselects the selected draggable and returns keyboard focus
// to it. With nothing selected it is a no-op.
func (c *Controller) handleCancelKey(ctx context.Context, _ dom.Event) {
	if c.closed || c.selectedDraggable == nil {
		return
	}
	d := c.selectedDraggable
	c.selectedDraggable = nil
	c.mutate(d.RemoveClass(ctx, ClassSelected))
	c.mutate(d.Focus(ctx))
	c.logger.Debug("selection cancelled", zap.String("draggable", d.ID()))
}
