package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
)

func TestSubscribeAndBroadcast(t *testing.T) {
	h := New()
	_, ch := h.Subscribe()

	h.Broadcast(store.Record{ID: "1", OriginalText: "hello"})

	rec := <-ch
	assert.Equal(t, "1", rec.ID)
	assert.Equal(t, "hello", rec.OriginalText)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	h := New()
	_, ch1 := h.Subscribe()
	_, ch2 := h.Subscribe()

	h.Broadcast(store.Record{ID: "1"})

	assert.Equal(t, "1", (<-ch1).ID)
	assert.Equal(t, "1", (<-ch2).ID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := New()
	id, ch := h.Subscribe()
	require.Equal(t, 1, h.Len())

	h.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Len())

	// Idempotent.
	h.Unsubscribe(id)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := New()
	h.buffer = 1
	_, slow := h.Subscribe()
	h.buffer = 4
	_, healthy := h.Subscribe()

	h.Broadcast(store.Record{ID: "1"})
	h.Broadcast(store.Record{ID: "2"}) // overflows the slow subscriber

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, "1", (<-healthy).ID)
	assert.Equal(t, "2", (<-healthy).ID)

	// The slow subscriber got the first record and then a closed channel.
	assert.Equal(t, "1", (<-slow).ID)
	_, open := <-slow
	assert.False(t, open)
}
