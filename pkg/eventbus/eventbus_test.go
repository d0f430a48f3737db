package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct{ id int }

func (testEvent) Name() string { return "test.event" }

func TestBus_PublishDeliversToAllListeners(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
			calls.Add(1)
			assert.Equal(t, 7, e.(testEvent).id)
			return nil
		})
	}
	bus.Subscribe("other.event", func(ctx context.Context, e Event) error {
		t.Error("чужое событие не должно доставляться")
		return nil
	})

	bus.Publish(context.Background(), testEvent{id: 7})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_ListenerErrorAndPanicDoNotStopOthers(t *testing.T) {
	bus := New(zap.NewNop())
	var ok atomic.Bool

	bus.Subscribe("test.event", func(ctx context.Context, e Event) error { return errors.New("boom") })
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error { panic("bad listener") })
	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		ok.Store(true)
		return nil
	})

	bus.Publish(context.Background(), testEvent{})
	bus.Wait()

	assert.True(t, ok.Load())
}

func TestBus_HandlerTimeout(t *testing.T) {
	bus := New(zap.NewNop()).WithTimeout(20 * time.Millisecond)
	done := make(chan error, 1)

	bus.Subscribe("test.event", func(ctx context.Context, e Event) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})

	bus.Publish(context.Background(), testEvent{})
	bus.Wait()

	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
}
