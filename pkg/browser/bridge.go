package browser

import (
	"context"
	"fmt"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/dragmate/dragmate/pkg/dom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// wireEvent is the payload the forwarder script emits per delivered event.
type wireEvent struct {
	Listener string `json:"listener"`
	Element  string `json:"element"`
	Type     string `json:"type"`
	Key      string `json:"key"`
}

// bridge routes forwarder payloads to registered Go handlers. Delivery runs
// on a single goroutine so handlers observe events in exactly the order the
// page produced them; the interaction layer's correctness depends on that.
type bridge struct {
	logger *zap.Logger

	mu       sync.Mutex
	handlers map[string]dom.Handler

	queue chan wireEvent
	done  chan struct{}
	stop1 sync.Once
	wg    sync.WaitGroup
}

func newBridge(logger *zap.Logger) *bridge {
	return &bridge{
		logger:   logger.Named("bridge"),
		handlers: map[string]dom.Handler{},
		queue:    make(chan wireEvent, 256),
		done:     make(chan struct{}),
	}
}

// start launches the dispatch goroutine. ctx is handed to every handler as
// the delivery context.
func (b *bridge) start(ctx context.Context) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case ev := <-b.queue:
				b.deliver(ctx, ev)
			case <-b.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// stop halts delivery and waits for the dispatch goroutine to exit. Payloads
// arriving afterwards are dropped.
func (b *bridge) stop() {
	b.stop1.Do(func() { close(b.done) })
	b.wg.Wait()
}

// register binds a listener ID to its handler.
func (b *bridge) register(listenerID string, h dom.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[listenerID] = h
}

// unregister drops the binding; in-flight events for it are discarded at
// delivery time.
func (b *bridge) unregister(listenerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, listenerID)
}

// handleBinding is the exposed function the page calls. It runs on
// chromedp's event goroutine, so it only decodes and enqueues.
func (b *bridge) handleBinding(payload string) (string, error) {
	var ev wireEvent
	if err := json.UnmarshalFromString(payload, &ev); err != nil {
		b.logger.Warn("malformed forwarder payload", zap.Error(err))
		return "", fmt.Errorf("decode forwarder payload: %w", err)
	}
	select {
	case b.queue <- ev:
	case <-b.done:
	}
	return "", nil
}

func (b *bridge) deliver(ctx context.Context, ev wireEvent) {
	b.mu.Lock()
	h := b.handlers[ev.Listener]
	b.mu.Unlock()
	if h == nil {
		b.logger.Debug("event for unknown listener dropped",
			zap.String("listener", ev.Listener),
			zap.String("type", ev.Type))
		return
	}
	h(ctx, dom.Event{
		Type:   dom.EventType(ev.Type),
		Target: ev.Element,
		Key:    ev.Key,
	})
}
