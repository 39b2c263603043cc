// Package domtest provides an in-memory dom.Document implementation with
// synchronous event dispatch, used by the interaction tests.
package domtest

import (
	"context"
	"fmt"
	"slices"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Document is a fake document. Elements are registered against the literal
// selector strings they should match; there is no CSS engine behind it.
type Document struct {
	elements []*Element
}

// NewDocument returns an empty fake document.
func NewDocument() *Document {
	return &Document{}
}

// NewElement creates an element matching the given selectors and registers it
// with the document. Registration order is document order.
func (d *Document) NewElement(id string, selectors ...string) *Element {
	el := &Element{
		id:         id,
		selectors:  selectors,
		Attrs:      map[string]string{},
		classes:    map[string]bool{},
		listeners:  map[dom.EventType][]*listener{},
		Prevented:  map[dom.EventType]int{},
		Propagated: map[dom.EventType]int{},
	}
	d.elements = append(d.elements, el)
	return el
}

func (d *Document) Query(_ context.Context, selector string) (dom.Element, error) {
	for _, el := range d.elements {
		if el.matches(selector) {
			return el, nil
		}
	}
	return nil, nil
}

func (d *Document) QueryAll(_ context.Context, scope dom.Element, selector string) ([]dom.Element, error) {
	out := []dom.Element{}
	for _, el := range d.elements {
		if !el.matches(selector) {
			continue
		}
		if scope != nil && el.Scope != scope {
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

type listener struct {
	opts    dom.ListenerOptions
	handler dom.Handler
	removed bool
}

type handle struct {
	l *listener
}

func (h *handle) Remove(context.Context) error {
	h.l.removed = true
	return nil
}

// Element is a fake element. Attrs is exported for direct assertions.
type Element struct {
	id        string
	selectors []string

	// Scope, when set, makes the element a descendant of that element for
	// scoped QueryAll calls.
	Scope dom.Element

	Attrs      map[string]string
	classes    map[string]bool
	FocusCount int

	// Prevented counts deliveries on which a firing listener carried
	// PreventDefault; Propagated counts StopPropagation the same way.
	Prevented  map[dom.EventType]int
	Propagated map[dom.EventType]int

	listeners map[dom.EventType][]*listener
}

func (e *Element) matches(selector string) bool {
	return slices.Contains(e.selectors, selector)
}

func (e *Element) ID() string { return e.id }

func (e *Element) SetAttribute(_ context.Context, name, value string) error {
	e.Attrs[name] = value
	return nil
}

func (e *Element) RemoveAttribute(_ context.Context, name string) error {
	delete(e.Attrs, name)
	return nil
}

func (e *Element) AddClass(_ context.Context, name string) error {
	e.classes[name] = true
	return nil
}

func (e *Element) RemoveClass(_ context.Context, name string) error {
	delete(e.classes, name)
	return nil
}

func (e *Element) Focus(context.Context) error {
	e.FocusCount++
	return nil
}

func (e *Element) AddListener(_ context.Context, t dom.EventType, opts dom.ListenerOptions, h dom.Handler) (dom.ListenerHandle, error) {
	l := &listener{opts: opts, handler: h}
	e.listeners[t] = append(e.listeners[t], l)
	return &handle{l: l}, nil
}

// HasClass reports whether the class is currently set.
func (e *Element) HasClass(name string) bool { return e.classes[name] }

// ListenerCount returns the number of attached (non-removed) listeners for t.
func (e *Element) ListenerCount(t dom.EventType) int {
	n := 0
	for _, l := range e.listeners[t] {
		if !l.removed {
			n++
		}
	}
	return n
}

// TotalListeners returns the number of attached listeners across all types.
func (e *Element) TotalListeners() int {
	n := 0
	for t := range e.listeners {
		n += e.ListenerCount(t)
	}
	return n
}

// Dispatch delivers an event of type t to the element's listeners,
// synchronously and in attach order, mirroring page-side delivery: the Keys
// filter gates keydown listeners and the PreventDefault/StopPropagation
// counters record what the page would have done.
func (e *Element) Dispatch(ctx context.Context, t dom.EventType) {
	e.DispatchKey(ctx, t, "")
}

// DispatchKey is Dispatch with a KeyboardEvent key value.
func (e *Element) DispatchKey(ctx context.Context, t dom.EventType, key string) {
	ev := dom.Event{Type: t, Target: e.id, Key: key}
	for _, l := range e.listeners[t] {
		if l.removed {
			continue
		}
		if len(l.opts.Keys) > 0 && !slices.Contains(l.opts.Keys, key) {
			continue
		}
		if l.opts.PreventDefault {
			e.Prevented[t]++
		}
		if l.opts.StopPropagation {
			e.Propagated[t]++
		}
		l.handler(ctx, ev)
	}
}

// String aids failure messages.
func (e *Element) String() string {
	return fmt.Sprintf("domtest.Element(%s)", e.id)
}
