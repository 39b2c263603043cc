// Package interaction implements drag-and-drop pairing for a bounded group of
// page elements: a set of draggables, a set of targets, and a caller-supplied
// match callback invoked whenever a draggable/target pair is resolved.
//
// Two input modalities resolve pairs. The native drag gesture
// (dragstart/dragover/drop/dragend) and the discrete click/keyboard path
// (toggle selection on one draggable and one target). Both funnel into the
// same dispatch chokepoint; neither modality's state leaks into the other.
//
// The controller owns all mutable interaction state for its group. Multiple
// independent groups on one page get one controller each.
package interaction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Class names the controller toggles on elements. An embedding page's
// styling keys on these; the controller itself attaches no styling.
const (
	ClassMoving          = "is-moving"
	ClassMoved           = "has-moved"
	ClassAvailableTarget = "is-available-target"
	ClassHovered         = "is-hovered"
	ClassSelected        = "is-selected"
)

const (
	attrDraggable  = "draggable"
	attrTabIndex   = "tabindex"
	attrGrabbed    = "aria-grabbed"
	attrDropEffect = "aria-dropeffect"
	attrRole       = "role"
)

// DefaultScopeSelector bounds element queries when Options.ScopeSelector is
// left empty.
const DefaultScopeSelector = "body"

// MatchFunc is the caller-supplied match evaluation. It is called
// synchronously with exactly one draggable and one target per resolved pair,
// and owns every consequence: marking success, playing feedback, disabling
// the pair, clearing selection. The controller never inspects its effects,
// and does not intercept panics it raises.
type MatchFunc func(draggable, target dom.Element)

// Options configure a Controller.
type Options struct {
	// DraggableSelector selects the pick-up side of the pairing.
	DraggableSelector string
	// TargetSelector selects the drop side.
	TargetSelector string
	// ScopeSelector selects the single root element bounding both queries.
	// Defaults to DefaultScopeSelector.
	ScopeSelector string
	// OnMatch receives every resolved pair. Required.
	OnMatch MatchFunc
	// Logger defaults to a nop logger.
	Logger *zap.Logger
}

// Controller wires pairing interactions onto one group of elements. Its
// handlers assume events arrive in input order on a single goroutine; the
// browser layer guarantees that ordering.
type Controller struct {
	doc     dom.Document
	scope   dom.Element
	onMatch MatchFunc
	logger  *zap.Logger

	// Element sets are fixed at construction. DisableMatching narrows
	// interactivity but never shrinks the sets themselves.
	draggables []dom.Element
	targets    []dom.Element

	bindings *bindingSet

	// active is non-nil only between dragstart and dragend of one gesture.
	active dom.Element

	// At most one element per set carries the selected marker; these track
	// the holder so toggling can clear the sibling.
	selectedDraggable dom.Element
	selectedTarget    dom.Element

	closed bool
}

// New queries the scope and both element sets and attaches all interaction
// handlers (Init runs as part of construction). Selectors matching nothing
// degrade to an inert group, not an error.
func New(ctx context.Context, doc dom.Document, opts Options) (*Controller, error) {
	if doc == nil {
		return nil, errors.New("interaction: document is required")
	}
	if opts.OnMatch == nil {
		return nil, errors.New("interaction: OnMatch callback is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	scopeSelector := opts.ScopeSelector
	if scopeSelector == "" {
		scopeSelector = DefaultScopeSelector
	}

	scope, err := doc.Query(ctx, scopeSelector)
	if err != nil {
		return nil, fmt.Errorf("interaction: query scope %q: %w", scopeSelector, err)
	}

	c := &Controller{
		doc:      doc,
		scope:    scope,
		onMatch:  opts.OnMatch,
		logger:   logger.With(zap.String("component", "interaction")),
		bindings: newBindingSet(),
	}

	if scope != nil {
		if c.draggables, err = doc.QueryAll(ctx, scope, opts.DraggableSelector); err != nil {
			return nil, fmt.Errorf("interaction: query draggables %q: %w", opts.DraggableSelector, err)
		}
		if c.targets, err = doc.QueryAll(ctx, scope, opts.TargetSelector); err != nil {
			return nil, fmt.Errorf("interaction: query targets %q: %w", opts.TargetSelector, err)
		}
	}

	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Init makes every draggable and target focusable, marks draggables as
// drag-capable, applies the assistive attributes, and attaches the handlers
// of both modalities. New calls it automatically; calling it again after
// Cleanup re-activates the group over the same element sets.
func (c *Controller) Init(ctx context.Context) error {
	c.closed = false

	if c.scope != nil {
		if err := c.scope.SetAttribute(ctx, attrRole, "application"); err != nil {
			return fmt.Errorf("interaction: mark scope: %w", err)
		}
		handle, err := c.scope.AddListener(ctx, dom.EventKeyDown,
			dom.ListenerOptions{Keys: []string{keyCancel}}, c.handleCancelKey)
		if err != nil {
			return fmt.Errorf("interaction: attach cancel key: %w", err)
		}
		c.bindings.add(c.scope.ID(), handle)
	}

	for _, d := range c.draggables {
		if err := c.initDraggable(ctx, d); err != nil {
			return fmt.Errorf("interaction: init draggable %s: %w", d.ID(), err)
		}
	}
	for _, t := range c.targets {
		if err := c.initTarget(ctx, t); err != nil {
			return fmt.Errorf("interaction: init target %s: %w", t.ID(), err)
		}
	}

	c.logger.Debug("interaction group initialized",
		zap.Int("draggables", len(c.draggables)),
		zap.Int("targets", len(c.targets)))
	return nil
}

func (c *Controller) initDraggable(ctx context.Context, d dom.Element) error {
	for name, value := range map[string]string{
		attrDraggable: "true",
		attrTabIndex:  "0",
		attrGrabbed:   "false",
	} {
		if err := d.SetAttribute(ctx, name, value); err != nil {
			return err
		}
	}

	attachments := []attachment{
		{dom.EventDragStart, dom.ListenerOptions{}, func(hctx context.Context, _ dom.Event) { c.handleDragStart(hctx, d) }},
		{dom.EventDragEnd, dom.ListenerOptions{}, func(hctx context.Context, _ dom.Event) { c.handleDragEnd(hctx, d) }},
	}
	attachments = append(attachments, c.activationAttachments(d, true)...)
	return c.attach(ctx, d, attachments)
}

func (c *Controller) initTarget(ctx context.Context, t dom.Element) error {
	for name, value := range map[string]string{
		attrTabIndex:   "0",
		attrDropEffect: "move",
	} {
		if err := t.SetAttribute(ctx, name, value); err != nil {
			return err
		}
	}

	attachments := []attachment{
		{dom.EventDragEnter, dom.ListenerOptions{}, func(hctx context.Context, _ dom.Event) { c.handleDragEnter(hctx, t) }},
		// dragleave and drop must not bubble into ancestors that also react.
		{dom.EventDragLeave, dom.ListenerOptions{StopPropagation: true}, func(hctx context.Context, _ dom.Event) { c.handleDragLeave(hctx, t) }},
		// dragover fires continuously while hovering; the default action must
		// be suppressed on every firing or the platform refuses the drop.
		{dom.EventDragOver, dom.ListenerOptions{PreventDefault: true}, func(hctx context.Context, _ dom.Event) { c.handleDragOver(hctx, t) }},
		{dom.EventDrop, dom.ListenerOptions{StopPropagation: true}, func(hctx context.Context, _ dom.Event) { c.handleDrop(hctx, t) }},
	}
	attachments = append(attachments, c.activationAttachments(t, false)...)
	return c.attach(ctx, t, attachments)
}

type attachment struct {
	event   dom.EventType
	opts    dom.ListenerOptions
	handler dom.Handler
}

func (c *Controller) attach(ctx context.Context, el dom.Element, attachments []attachment) error {
	for _, a := range attachments {
		handle, err := el.AddListener(ctx, a.event, a.opts, a.handler)
		if err != nil {
			return err
		}
		c.bindings.add(el.ID(), handle)
	}
	return nil
}

// Cleanup detaches every handler and strips the attributes Init applied,
// returning the elements to a neutral, non-interactive condition.
//
// Known limitation: attribute values that existed before Init are not
// restored; Cleanup removes the attributes outright.
func (c *Controller) Cleanup(ctx context.Context) error {
	c.closed = true
	c.active = nil
	c.selectedDraggable = nil
	c.selectedTarget = nil

	errs := []error{c.bindings.removeAll(ctx)}
	for _, d := range c.draggables {
		errs = append(errs,
			d.RemoveAttribute(ctx, attrDraggable),
			d.RemoveAttribute(ctx, attrGrabbed),
			d.RemoveAttribute(ctx, attrTabIndex))
	}
	for _, t := range c.targets {
		errs = append(errs,
			t.RemoveAttribute(ctx, attrDropEffect),
			t.RemoveAttribute(ctx, attrTabIndex))
	}
	if c.scope != nil {
		errs = append(errs, c.scope.RemoveAttribute(ctx, attrRole))
	}
	return errors.Join(errs...)
}

// DisableMatching permanently removes interactivity from exactly one
// draggable/target pair, leaving the rest of both sets untouched. Typically
// called from the match callback once a pair is confirmed correct. Missing
// arguments make it a silent no-op.
func (c *Controller) DisableMatching(ctx context.Context, draggable, target dom.Element) error {
	if draggable == nil || target == nil {
		return nil
	}
	c.logger.Debug("disabling matched pair",
		zap.String("draggable", draggable.ID()),
		zap.String("target", target.ID()))
	return errors.Join(
		c.bindings.removeElement(ctx, draggable.ID()),
		c.bindings.removeElement(ctx, target.ID()),
		draggable.RemoveAttribute(ctx, attrDraggable),
		draggable.RemoveAttribute(ctx, attrGrabbed),
		draggable.RemoveAttribute(ctx, attrTabIndex),
		target.RemoveAttribute(ctx, attrDropEffect),
		target.RemoveAttribute(ctx, attrTabIndex),
	)
}

// Draggables returns the draggable set in document order.
func (c *Controller) Draggables() []dom.Element {
	return append([]dom.Element(nil), c.draggables...)
}

// Targets returns the target set in document order.
func (c *Controller) Targets() []dom.Element {
	return append([]dom.Element(nil), c.targets...)
}

// mutate runs a DOM mutation from inside an event handler. Mutation failures
// are logged and otherwise ignored so a flaky element cannot wedge the state
// machine mid-gesture.
func (c *Controller) mutate(err error) {
	if err != nil {
		c.logger.Warn("element mutation failed", zap.Error(err))
	}
}
