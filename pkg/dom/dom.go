// Package dom defines the contract between the interaction layer and the
// document it manipulates. The interaction state machines operate purely on
// these interfaces; pkg/browser implements them against a live Chrome tab
// over CDP, and pkg/dom/domtest provides an in-memory fake for tests.
package dom

import "context"

// EventType identifies a DOM event consumed by the interaction layer.
type EventType string

const (
	EventDragStart EventType = "dragstart"
	EventDragEnd   EventType = "dragend"
	EventDragEnter EventType = "dragenter"
	EventDragLeave EventType = "dragleave"
	EventDragOver  EventType = "dragover"
	EventDrop      EventType = "drop"
	EventClick     EventType = "click"
	EventKeyDown   EventType = "keydown"
)

// Event is one delivered DOM event. Events for a given document are delivered
// strictly in the order the underlying input system produced them.
type Event struct {
	// Type is the event type the listener was registered for.
	Type EventType
	// Target is the ID of the element the listener is attached to.
	Target string
	// Key is the KeyboardEvent key value; empty for non-keyboard events.
	Key string
}

// Handler receives a delivered event. The context is the delivery context of
// the owning document (the session context for a live page); handlers use it
// for any element mutations they perform.
type Handler func(ctx context.Context, ev Event)

// ListenerOptions configure page-side behavior that cannot round-trip to Go
// synchronously. They are applied on every delivery of the event, not just
// the first.
type ListenerOptions struct {
	// PreventDefault suppresses the platform default action each time the
	// event fires (required on dragover for a drop to be permitted at all).
	PreventDefault bool
	// StopPropagation stops the event from reaching ancestor elements.
	StopPropagation bool
	// Keys restricts a keydown listener to the named KeyboardEvent key
	// values. PreventDefault then applies only to those keys, so filtered
	// listeners do not swallow unrelated keystrokes such as Tab.
	Keys []string
}

// ListenerHandle detaches a previously attached listener.
type ListenerHandle interface {
	Remove(ctx context.Context) error
}

// Element is a single document element. Implementations must keep the ID
// stable for the lifetime of the element.
type Element interface {
	ID() string

	SetAttribute(ctx context.Context, name, value string) error
	RemoveAttribute(ctx context.Context, name string) error

	AddClass(ctx context.Context, name string) error
	RemoveClass(ctx context.Context, name string) error

	// Focus moves keyboard focus to the element.
	Focus(ctx context.Context) error

	// AddListener registers h for events of type t on this element and
	// returns a handle that detaches it again.
	AddListener(ctx context.Context, t EventType, opts ListenerOptions, h Handler) (ListenerHandle, error)
}

// Document resolves selectors to elements.
type Document interface {
	// Query returns the first element matching selector, or nil if the
	// selector matches nothing. A zero-match selector is not an error.
	Query(ctx context.Context, selector string) (Element, error)

	// QueryAll returns all elements matching selector, in document order,
	// restricted to descendants of scope when scope is non-nil. A selector
	// matching nothing yields an empty slice.
	QueryAll(ctx context.Context, scope Element, selector string) ([]Element, error)
}
