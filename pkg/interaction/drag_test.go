package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragmate/dragmate/pkg/dom"
)

func TestDragGesture(t *testing.T) {
	ctx := context.Background()

	t.Run("dragstart marks the gesture", func(t *testing.T) {
		f := newFixture(t, 2, 2)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)

		assert.True(t, f.draggables[0].HasClass(ClassMoving))
		assert.True(t, f.draggables[0].HasClass(ClassMoved))
		assert.Equal(t, "true", f.draggables[0].Attrs["aria-grabbed"])
		for _, tgt := range f.targets {
			assert.True(t, tgt.HasClass(ClassAvailableTarget), tgt)
		}
	})

	t.Run("cancelled gesture round-trips marker state", func(t *testing.T) {
		f := newFixture(t, 1, 2)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)

		assert.False(t, f.draggables[0].HasClass(ClassMoving))
		assert.Equal(t, "false", f.draggables[0].Attrs["aria-grabbed"])
		for _, tgt := range f.targets {
			assert.False(t, tgt.HasClass(ClassAvailableTarget), tgt)
		}
		assert.Empty(t, f.rec.pairs)
	})

	t.Run("gesture with a drop round-trips the same way", func(t *testing.T) {
		f := newFixture(t, 1, 2)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[1].Dispatch(ctx, dom.EventDragEnter)
		f.targets[1].Dispatch(ctx, dom.EventDragOver)
		f.targets[1].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)

		assert.False(t, f.draggables[0].HasClass(ClassMoving))
		assert.False(t, f.targets[1].HasClass(ClassHovered))
		for _, tgt := range f.targets {
			assert.False(t, tgt.HasClass(ClassAvailableTarget), tgt)
		}
		// has-moved persists past the gesture.
		assert.True(t, f.draggables[0].HasClass(ClassMoved))
		assert.Equal(t, [][2]string{{"d1", "t2"}}, f.rec.pairs)
	})

	t.Run("hover markers track enter, over and leave", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		tgt := f.targets[0]
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)

		tgt.Dispatch(ctx, dom.EventDragEnter)
		assert.True(t, tgt.HasClass(ClassHovered))
		tgt.Dispatch(ctx, dom.EventDragLeave)
		assert.False(t, tgt.HasClass(ClassHovered))
		// dragover alone re-asserts the hover.
		tgt.Dispatch(ctx, dom.EventDragOver)
		assert.True(t, tgt.HasClass(ClassHovered))
	})

	t.Run("dragover suppresses the default on every firing", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		tgt := f.targets[0]
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)

		for range 5 {
			tgt.Dispatch(ctx, dom.EventDragOver)
		}
		assert.Equal(t, 5, tgt.Prevented[dom.EventDragOver])
	})

	t.Run("drop and dragleave stop propagation", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		tgt := f.targets[0]
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)

		tgt.Dispatch(ctx, dom.EventDragLeave)
		tgt.Dispatch(ctx, dom.EventDrop)
		assert.Equal(t, 1, tgt.Propagated[dom.EventDragLeave])
		assert.Equal(t, 1, tgt.Propagated[dom.EventDrop])
	})

	t.Run("drop without a prior dragenter still dispatches once", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[0].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)

		require.Equal(t, [][2]string{{"d1", "t1"}}, f.rec.pairs)
	})

	t.Run("drop with no active drag is ignored", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		f.targets[0].Dispatch(ctx, dom.EventDrop)
		assert.Empty(t, f.rec.pairs)
	})

	t.Run("drop does not clear drag state before dragend", func(t *testing.T) {
		f := newFixture(t, 1, 2)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[0].Dispatch(ctx, dom.EventDrop)

		// The platform has not delivered dragend yet; a second drop on
		// another target within the same gesture still resolves.
		f.targets[1].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)

		assert.Equal(t, [][2]string{{"d1", "t1"}, {"d1", "t2"}}, f.rec.pairs)
	})

	t.Run("consecutive gestures on different draggables", func(t *testing.T) {
		f := newFixture(t, 2, 2)
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[0].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)

		f.draggables[1].Dispatch(ctx, dom.EventDragStart)
		f.targets[1].Dispatch(ctx, dom.EventDrop)
		f.draggables[1].Dispatch(ctx, dom.EventDragEnd)

		assert.Equal(t, [][2]string{{"d1", "t1"}, {"d2", "t2"}}, f.rec.pairs)
	})
}
