package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Element is a page element addressed by the stable data attribute the
// forwarder assigned when the element was adopted. The attribute survives
// reparenting and class churn, unlike a positional selector.
type Element struct {
	s  *Session
	id string
}

var _ dom.Element = (*Element)(nil)

// ID returns the element's dragmate identifier.
func (e *Element) ID() string { return e.id }

// Selector returns a CSS selector that resolves to this element, usable with
// any selector-based tooling (input simulation in particular).
func (e *Element) Selector() string {
	return fmt.Sprintf(`[data-dragmate-id=%q]`, e.id)
}

func (e *Element) SetAttribute(ctx context.Context, name, value string) error {
	return e.s.run(ctx, chromedp.SetAttributeValue(e.Selector(), name, value, chromedp.ByQuery))
}

func (e *Element) RemoveAttribute(ctx context.Context, name string) error {
	return e.s.run(ctx, chromedp.RemoveAttribute(e.Selector(), name, chromedp.ByQuery))
}

func (e *Element) AddClass(ctx context.Context, name string) error {
	return e.classOp(ctx, "addClass", name)
}

func (e *Element) RemoveClass(ctx context.Context, name string) error {
	return e.classOp(ctx, "removeClass", name)
}

// classOp goes through the forwarder runtime rather than a selector round
// trip; classList has no CDP command of its own.
func (e *Element) classOp(ctx context.Context, op, class string) error {
	var ok bool
	expr := fmt.Sprintf(`window.__dragmate.%s(%q, %q)`, op, e.id, class)
	if err := e.s.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("%s %q on %s: %w", op, class, e.id, err)
	}
	if !ok {
		return fmt.Errorf("%s %q: element %s no longer in document", op, class, e.id)
	}
	return nil
}

func (e *Element) Focus(ctx context.Context) error {
	return e.s.run(ctx, chromedp.Focus(e.Selector(), chromedp.ByQuery))
}

// AddListener installs a page-side listener that forwards deliveries of t to
// Go. The options execute in the page on every delivery.
func (e *Element) AddListener(ctx context.Context, t dom.EventType, opts dom.ListenerOptions, h dom.Handler) (dom.ListenerHandle, error) {
	listenerID := uuid.NewString()
	expr, err := listenExpression(listenerID, e.id, t, opts)
	if err != nil {
		return nil, err
	}

	// Register before evaluating: the listener could fire between the
	// evaluation completing page-side and the registration landing.
	e.s.bridge.register(listenerID, h)

	var ok bool
	if err := e.s.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		e.s.bridge.unregister(listenerID)
		return nil, fmt.Errorf("attach %s listener on %s: %w", t, e.id, err)
	}
	if !ok {
		e.s.bridge.unregister(listenerID)
		return nil, fmt.Errorf("attach %s listener: element %s no longer in document", t, e.id)
	}
	return &listenerHandle{s: e.s, id: listenerID}, nil
}

// listenExpression builds the __dragmate.listen call for one attachment.
func listenExpression(listenerID, elementID string, t dom.EventType, opts dom.ListenerOptions) (string, error) {
	optsJSON, err := json.MarshalToString(struct {
		PreventDefault  bool     `json:"preventDefault"`
		StopPropagation bool     `json:"stopPropagation"`
		Keys            []string `json:"keys,omitempty"`
	}{opts.PreventDefault, opts.StopPropagation, opts.Keys})
	if err != nil {
		return "", fmt.Errorf("encode listener options: %w", err)
	}
	return fmt.Sprintf(`window.__dragmate.listen(%q, %q, %q, %s)`,
		listenerID, elementID, string(t), optsJSON), nil
}

// listenerHandle detaches one page-side listener.
type listenerHandle struct {
	s  *Session
	id string
}

func (h *listenerHandle) Remove(ctx context.Context) error {
	h.s.bridge.unregister(h.id)
	var ok bool
	expr := fmt.Sprintf(`window.__dragmate.unlisten(%q)`, h.id)
	if err := h.s.run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("detach listener %s: %w", h.id, err)
	}
	return nil
}
