package effects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptasker/gutenberg/internal/action"
)

func TestActionQueue_FIFO(t *testing.T) {
	q := newActionQueue()

	require.True(t, q.Enqueue(action.FocusBlock{BlockID: "a"}))
	require.True(t, q.Enqueue(action.FocusBlock{BlockID: "b"}))
	require.True(t, q.Enqueue(action.FocusBlock{BlockID: "c"}))
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		a, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, a.(action.FocusBlock).BlockID)
	}
	assert.Equal(t, 0, q.Len())
}

func TestActionQueue_TryDequeueEmpty(t *testing.T) {
	q := newActionQueue()

	a, ok := q.TryDequeue()
	assert.False(t, ok)
	assert.Nil(t, a)
}

func TestActionQueue_SignalCoalesces(t *testing.T) {
	q := newActionQueue()

	q.Enqueue(action.Autosave{})
	q.Enqueue(action.SavePost{})

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("expected a single coalesced wakeup")
	default:
	}
}

func TestActionQueue_EnqueueAfterClose(t *testing.T) {
	q := newActionQueue()
	q.Close()

	assert.False(t, q.Enqueue(action.Autosave{}))
	assert.Equal(t, 0, q.Len())
}

func TestActionQueue_Closed(t *testing.T) {
	q := newActionQueue()

	assert.False(t, q.Closed())
	q.Close()
	assert.True(t, q.Closed())

	// Closing twice is harmless.
	q.Close()
	assert.True(t, q.Closed())
}

func TestActionQueue_DrainAfterClose(t *testing.T) {
	q := newActionQueue()
	q.Enqueue(action.FocusBlock{BlockID: "a"})
	q.Close()

	a, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "a", a.(action.FocusBlock).BlockID)
}

func TestActionQueue_CloseWakesWaiter(t *testing.T) {
	q := newActionQueue()

	woke := make(chan struct{})
	go func() {
		<-q.Wait()
		close(woke)
	}()

	q.Close()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter not released on close")
	}
}

func TestIdleTracker_ImmediatelyIdle(t *testing.T) {
	var tr idleTracker

	select {
	case <-tr.Idle():
	case <-time.After(time.Second):
		t.Fatal("fresh tracker should report idle")
	}
}

func TestIdleTracker_WaitsForPending(t *testing.T) {
	var tr idleTracker
	tr.Add()
	tr.Add()

	ch := tr.Idle()
	select {
	case <-ch:
		t.Fatal("tracker idle while work pending")
	default:
	}

	tr.Done()
	select {
	case <-ch:
		t.Fatal("tracker idle while work pending")
	default:
	}

	tr.Done()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("tracker never went idle")
	}
}

func TestIdleTracker_ReleasesAllWaiters(t *testing.T) {
	var tr idleTracker
	tr.Add()

	first := tr.Idle()
	second := tr.Idle()
	tr.Done()

	for _, ch := range []<-chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("waiter not released")
		}
	}
}
