package interaction

import (
	"context"
	"errors"

	"github.com/dragmate/dragmate/pkg/dom"
)

// bindingSet records every listener handle the controller attaches, keyed by
// element ID, so interactivity can be torn down for one element
// (DisableMatching) or for the whole group (Cleanup).
type bindingSet struct {
	handles map[string][]dom.ListenerHandle
}

func newBindingSet() *bindingSet {
	return &bindingSet{handles: map[string][]dom.ListenerHandle{}}
}

func (b *bindingSet) add(elementID string, h dom.ListenerHandle) {
	b.handles[elementID] = append(b.handles[elementID], h)
}

// removeElement detaches all handles recorded for one element. Unknown IDs
// are a no-op.
func (b *bindingSet) removeElement(ctx context.Context, elementID string) error {
	var errs []error
	for _, h := range b.handles[elementID] {
		errs = append(errs, h.Remove(ctx))
	}
	delete(b.handles, elementID)
	return errors.Join(errs...)
}

// removeAll detaches every recorded handle.
func (b *bindingSet) removeAll(ctx context.Context) error {
	var errs []error
	for id := range b.handles {
		errs = append(errs, b.removeElement(ctx, id))
	}
	return errors.Join(errs...)
}
