package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func assertSilent[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event: %v", v)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishWithoutSubscribersIsDropped(t *testing.T) {
	bus := New()
	assert.Equal(t, 0, bus.Publish("POST_CREATED", "lost"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := bus.Subscribe(ctx, "POST_CREATED")

	// Событие, опубликованное до подписки, не доставляется
	assertSilent(t, ch)
}

func TestBus_FanOut(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := bus.Subscribe(ctx, "POST_CREATED")
	second := bus.Subscribe(ctx, "POST_CREATED")
	other := bus.Subscribe(ctx, "USER_CREATED")

	assert.Equal(t, 2, bus.Publish("POST_CREATED", "p1"))

	assert.Equal(t, "p1", receive(t, first))
	assert.Equal(t, "p1", receive(t, second))
	assertSilent(t, other)
}

func TestBus_PreservesOrderWithinTopic(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx, "COMMENT_CREATED")
	// Публикуем до чтения: очередь подписчика не ограничена
	for i := 0; i < 100; i++ {
		bus.Publish("COMMENT_CREATED", i)
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, i, receive(t, ch))
	}
}

func TestBus_CancelReleasesSubscriber(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := bus.Subscribe(ctx, "POST_LIKED")
	require.Equal(t, 1, bus.NumSubscribers("POST_LIKED"))

	cancel()

	assert.Eventually(t, func() bool {
		return bus.NumSubscribers("POST_LIKED") == 0
	}, waitFor, 5*time.Millisecond)

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("channel was not closed after cancel")
	}
	assert.Equal(t, 0, bus.Publish("POST_LIKED", "nobody"))
}

func TestBus_CancelWithPendingQueue(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())

	ch := bus.Subscribe(ctx, "POST_UPDATED")
	bus.Publish("POST_UPDATED", 1)
	bus.Publish("POST_UPDATED", 2)
	cancel()

	// Канал должен закрыться, даже если очередь не разобрана
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, waitFor, 5*time.Millisecond)
}

func TestStream_Typed(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Stream[string](ctx, bus, "USER_DELETED")
	bus.Publish("USER_DELETED", 42)
	bus.Publish("USER_DELETED", "user-1")

	assert.Equal(t, "user-1", receive(t, ch))
}

func TestFilter_DropsNonMatching(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan int)
	out := Filter(ctx, in, func(v int) bool { return v%2 == 0 })

	go func() {
		for i := 1; i <= 6; i++ {
			in <- i
		}
		close(in)
	}()

	var got []int
	for v := range out {
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 4, 6}, got)
}

func TestFilter_CancelStopsAndReleasesUpstream(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())

	out := Filter(ctx, Stream[string](ctx, bus, "COMMENT_CREATED"), func(s string) bool {
		return s == "keep"
	})
	bus.Publish("COMMENT_CREATED", "skip")
	bus.Publish("COMMENT_CREATED", "keep")
	assert.Equal(t, "keep", receive(t, out))

	cancel()

	assert.Eventually(t, func() bool {
		return bus.NumSubscribers("COMMENT_CREATED") == 0
	}, waitFor, 5*time.Millisecond)

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(waitFor):
		t.Fatal("filtered stream was not closed after cancel")
	}
}
