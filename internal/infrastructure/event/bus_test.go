package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Debt", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

type panickingHandler struct{}

func (panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic("nil branch") }
func (panickingHandler) EventTypes() []string                           { return []string{"DebtSettled"} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("DebtCreated")
	bus.Subscribe(handler)

	event := newTestEvent("DebtCreated")
	require.NoError(t, bus.Publish(context.Background(), event))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, event.EventID(), handled[0].EventID())
}

func TestInMemoryEventBus_Publish_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	created := newTestHandler("DebtCreated")
	settled := newTestHandler("DebtSettled")
	all := newTestHandler()
	bus.Subscribe(created)
	bus.Subscribe(settled)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("DebtCreated"),
		newTestEvent("DebtSettled"),
		newTestEvent("DebtSettled"),
		newTestEvent("DebtDeleted"),
	))

	assert.Len(t, created.getHandled(), 1)
	assert.Len(t, settled.getHandled(), 2)
	assert.Len(t, all.getHandled(), 4)
}

func TestInMemoryEventBus_Publish_ExplicitTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("DebtCreated")
	bus.Subscribe(handler, "DebtDeleted")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("DebtCreated"), newTestEvent("DebtDeleted")))
	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, "DebtDeleted", handled[0].EventType())
}

func TestInMemoryEventBus_Publish_HandlerErrorsAreReturned(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := newTestHandler("DebtCreated")
	failing.err = errors.New("cash book unavailable")
	healthy := newTestHandler("DebtCreated")
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("DebtCreated"))
	require.Error(t, err)
	assert.ErrorIs(t, err, failing.err)
	// remaining handlers still run
	assert.Len(t, healthy.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_PanicBecomesError(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(panickingHandler{})

	err := bus.Publish(context.Background(), newTestEvent("DebtSettled"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panicked")
}

func TestInMemoryEventBus_Publish_NoHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("DebtAmended")))
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("DebtCreated")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("DebtCreated")))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	assert.False(t, bus.Running())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.Running())
}
