package interaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dragmate/dragmate/pkg/dom"
	"github.com/dragmate/dragmate/pkg/dom/domtest"
)

const (
	selScope     = ".exercise"
	selDraggable = "li.option"
	selTarget    = "li.slot"
)

// matchRecorder captures every pair the dispatcher resolves.
type matchRecorder struct {
	pairs [][2]string
}

func (r *matchRecorder) fn() MatchFunc {
	return func(d, t dom.Element) {
		r.pairs = append(r.pairs, [2]string{d.ID(), t.ID()})
	}
}

type fixture struct {
	doc        *domtest.Document
	scope      *domtest.Element
	draggables []*domtest.Element
	targets    []*domtest.Element
	rec        *matchRecorder
	ctrl       *Controller
}

// newFixture builds a scope with n draggables and m targets and an attached
// controller.
func newFixture(t *testing.T, n, m int) *fixture {
	t.Helper()

	f := &fixture{doc: domtest.NewDocument(), rec: &matchRecorder{}}
	f.scope = f.doc.NewElement("scope", selScope)
	for i := 1; i <= n; i++ {
		el := f.doc.NewElement(fmt.Sprintf("d%d", i), selDraggable)
		el.Scope = f.scope
		f.draggables = append(f.draggables, el)
	}
	for i := 1; i <= m; i++ {
		el := f.doc.NewElement(fmt.Sprintf("t%d", i), selTarget)
		el.Scope = f.scope
		f.targets = append(f.targets, el)
	}

	ctrl, err := New(context.Background(), f.doc, Options{
		DraggableSelector: selDraggable,
		TargetSelector:    selTarget,
		ScopeSelector:     selScope,
		OnMatch:           f.rec.fn(),
	})
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

func TestNew(t *testing.T) {
	t.Run("requires a match callback", func(t *testing.T) {
		_, err := New(context.Background(), domtest.NewDocument(), Options{})
		require.Error(t, err)
	})

	t.Run("requires a document", func(t *testing.T) {
		_, err := New(context.Background(), nil, Options{OnMatch: func(dom.Element, dom.Element) {}})
		require.Error(t, err)
	})

	t.Run("missing scope degrades to an inert group", func(t *testing.T) {
		doc := domtest.NewDocument()
		stray := doc.NewElement("stray", selDraggable)

		ctrl, err := New(context.Background(), doc, Options{
			DraggableSelector: selDraggable,
			TargetSelector:    selTarget,
			ScopeSelector:     selScope,
			OnMatch:           func(dom.Element, dom.Element) { t.Fatal("unexpected match") },
		})
		require.NoError(t, err)
		assert.Empty(t, ctrl.Draggables())
		assert.Empty(t, ctrl.Targets())
		assert.Zero(t, stray.TotalListeners())
	})

	t.Run("selectors matching nothing yield empty sets", func(t *testing.T) {
		doc := domtest.NewDocument()
		doc.NewElement("scope", selScope)

		ctrl, err := New(context.Background(), doc, Options{
			DraggableSelector: selDraggable,
			TargetSelector:    selTarget,
			ScopeSelector:     selScope,
			OnMatch:           func(dom.Element, dom.Element) { t.Fatal("unexpected match") },
		})
		require.NoError(t, err)
		assert.Empty(t, ctrl.Draggables())
		assert.Empty(t, ctrl.Targets())
	})
}

func TestInit(t *testing.T) {
	f := newFixture(t, 2, 2)

	t.Run("scope carries the application role", func(t *testing.T) {
		assert.Equal(t, "application", f.scope.Attrs["role"])
	})

	t.Run("draggables are drag-capable and focusable", func(t *testing.T) {
		for _, d := range f.draggables {
			assert.Equal(t, "true", d.Attrs["draggable"], d)
			assert.Equal(t, "0", d.Attrs["tabindex"], d)
			assert.Equal(t, "false", d.Attrs["aria-grabbed"], d)
		}
	})

	t.Run("targets are focusable drop targets", func(t *testing.T) {
		for _, tgt := range f.targets {
			assert.Equal(t, "0", tgt.Attrs["tabindex"], tgt)
			assert.Equal(t, "move", tgt.Attrs["aria-dropeffect"], tgt)
		}
	})

	t.Run("both modalities are attached", func(t *testing.T) {
		for _, d := range f.draggables {
			assert.Equal(t, 1, d.ListenerCount(dom.EventDragStart), d)
			assert.Equal(t, 1, d.ListenerCount(dom.EventDragEnd), d)
			assert.Equal(t, 1, d.ListenerCount(dom.EventClick), d)
			assert.Equal(t, 1, d.ListenerCount(dom.EventKeyDown), d)
		}
		for _, tgt := range f.targets {
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventDragEnter), tgt)
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventDragLeave), tgt)
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventDragOver), tgt)
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventDrop), tgt)
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventClick), tgt)
			assert.Equal(t, 1, tgt.ListenerCount(dom.EventKeyDown), tgt)
		}
		assert.Equal(t, 1, f.scope.ListenerCount(dom.EventKeyDown))
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("strips attributes and detaches everything", func(t *testing.T) {
		f := newFixture(t, 2, 2)
		require.NoError(t, f.ctrl.Cleanup(ctx))

		assert.NotContains(t, f.scope.Attrs, "role")
		for _, d := range f.draggables {
			assert.NotContains(t, d.Attrs, "draggable", d)
			assert.NotContains(t, d.Attrs, "tabindex", d)
			assert.NotContains(t, d.Attrs, "aria-grabbed", d)
			assert.Zero(t, d.TotalListeners(), d)
		}
		for _, tgt := range f.targets {
			assert.NotContains(t, tgt.Attrs, "tabindex", tgt)
			assert.NotContains(t, tgt.Attrs, "aria-dropeffect", tgt)
			assert.Zero(t, tgt.TotalListeners(), tgt)
		}
		assert.Zero(t, f.scope.TotalListeners())
	})

	t.Run("events after cleanup mutate nothing and match nothing", func(t *testing.T) {
		f := newFixture(t, 2, 2)
		require.NoError(t, f.ctrl.Cleanup(ctx))

		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[0].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventClick)
		f.targets[0].Dispatch(ctx, dom.EventClick)
		f.scope.DispatchKey(ctx, dom.EventKeyDown, "Escape")

		assert.Empty(t, f.rec.pairs)
		assert.False(t, f.draggables[0].HasClass(ClassMoving))
		assert.False(t, f.draggables[0].HasClass(ClassSelected))
		assert.False(t, f.targets[0].HasClass(ClassAvailableTarget))
		assert.False(t, f.targets[0].HasClass(ClassSelected))
	})

	t.Run("init after cleanup reactivates the same sets", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		require.NoError(t, f.ctrl.Cleanup(ctx))
		require.NoError(t, f.ctrl.Init(ctx))

		f.draggables[0].Dispatch(ctx, dom.EventClick)
		f.targets[0].Dispatch(ctx, dom.EventClick)
		assert.Equal(t, [][2]string{{"d1", "t1"}}, f.rec.pairs)
	})
}

func TestDisableMatching(t *testing.T) {
	ctx := context.Background()

	t.Run("nil arguments are a silent no-op", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		require.NoError(t, f.ctrl.DisableMatching(ctx, nil, f.targets[0]))
		require.NoError(t, f.ctrl.DisableMatching(ctx, f.draggables[0], nil))
		assert.Equal(t, "true", f.draggables[0].Attrs["draggable"])
		assert.NotZero(t, f.draggables[0].TotalListeners())
	})

	t.Run("narrows exactly the named pair", func(t *testing.T) {
		f := newFixture(t, 3, 3)
		require.NoError(t, f.ctrl.DisableMatching(ctx, f.draggables[1], f.targets[1]))

		// The disabled pair is stripped and deaf.
		assert.NotContains(t, f.draggables[1].Attrs, "draggable")
		assert.NotContains(t, f.draggables[1].Attrs, "aria-grabbed")
		assert.NotContains(t, f.draggables[1].Attrs, "tabindex")
		assert.NotContains(t, f.targets[1].Attrs, "aria-dropeffect")
		assert.NotContains(t, f.targets[1].Attrs, "tabindex")
		assert.Zero(t, f.draggables[1].TotalListeners())
		assert.Zero(t, f.targets[1].TotalListeners())

		// Starting a drag on the disabled draggable attaches to nothing.
		f.draggables[1].Dispatch(ctx, dom.EventDragStart)
		f.targets[1].Dispatch(ctx, dom.EventDrop)
		assert.Empty(t, f.rec.pairs)

		// The rest of the group keeps working.
		f.draggables[0].Dispatch(ctx, dom.EventDragStart)
		f.targets[0].Dispatch(ctx, dom.EventDrop)
		f.draggables[0].Dispatch(ctx, dom.EventDragEnd)
		assert.Equal(t, [][2]string{{"d1", "t1"}}, f.rec.pairs)

		assert.Equal(t, "true", f.draggables[2].Attrs["draggable"])
		assert.Equal(t, "move", f.targets[2].Attrs["aria-dropeffect"])
	})

	t.Run("callback can disable the pair it was called with", func(t *testing.T) {
		doc := domtest.NewDocument()
		scope := doc.NewElement("scope", selScope)
		d := doc.NewElement("d1", selDraggable)
		d.Scope = scope
		tgt := doc.NewElement("t1", selTarget)
		tgt.Scope = scope

		var ctrl *Controller
		calls := 0
		ctrl, err := New(context.Background(), doc, Options{
			DraggableSelector: selDraggable,
			TargetSelector:    selTarget,
			ScopeSelector:     selScope,
			OnMatch: func(draggable, target dom.Element) {
				calls++
				require.NoError(t, ctrl.DisableMatching(ctx, draggable, target))
			},
		})
		require.NoError(t, err)

		d.Dispatch(ctx, dom.EventDragStart)
		tgt.Dispatch(ctx, dom.EventDrop)
		d.Dispatch(ctx, dom.EventDragEnd)
		require.Equal(t, 1, calls)

		// The pair is dead to both modalities now.
		d.Dispatch(ctx, dom.EventDragStart)
		tgt.Dispatch(ctx, dom.EventDrop)
		d.Dispatch(ctx, dom.EventClick)
		tgt.Dispatch(ctx, dom.EventClick)
		assert.Equal(t, 1, calls)
	})
}
