package cursor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
)

type fakeSeenRepo struct {
	claimed map[string]bool
	err     error
	calls   int
}

func (f *fakeSeenRepo) FirstSeen(ctx context.Context, id string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if f.claimed[id] {
		return false, nil
	}
	if f.claimed == nil {
		f.claimed = make(map[string]bool)
	}
	f.claimed[id] = true
	return true, nil
}

func nowTS(offset time.Duration) float64 {
	return float64(time.Now().Add(offset).UnixNano()) / float64(time.Second)
}

func TestShouldProcessNewMessage(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())

	assert.True(t, c.ShouldProcess(context.Background(), "1000.1", nowTS(0)))
}

func TestShouldProcessRejectsSeenID(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())
	ts := nowTS(0)

	assert.True(t, c.ShouldProcess(context.Background(), "1000.1", ts))
	assert.False(t, c.ShouldProcess(context.Background(), "1000.1", ts), "same id must not be processed twice")
}

func TestShouldProcessRejectsAtOrBelowHighWater(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())

	assert.False(t, c.ShouldProcess(context.Background(), "old", nowTS(-10*time.Minute)), "older than the lookback window")

	hwm := c.HighWater()
	assert.False(t, c.ShouldProcess(context.Background(), "edge", hwm), "equal to the mark is not new")
}

func TestAdvanceIsMonotonic(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())
	initial := c.HighWater()

	c.Advance(initial + 100)
	assert.Equal(t, initial+100, c.HighWater())

	c.Advance(initial + 50)
	assert.Equal(t, initial+100, c.HighWater(), "Advance must never lower the mark")
}

func TestAdvanceClosesTimestampWindow(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())
	ts := nowTS(0)

	assert.True(t, c.ShouldProcess(context.Background(), "a", ts))
	c.Advance(ts)

	assert.False(t, c.ShouldProcess(context.Background(), "b", ts), "id at the advanced mark is consumed ground")
	assert.True(t, c.ShouldProcess(context.Background(), "c", ts+0.001))
}

func TestSeenSetIsBounded(t *testing.T) {
	c := New(5*time.Minute, 0, nil, logger.NopLogger())
	c.capacity = 3
	base := c.HighWater()

	for i := 1; i <= 4; i++ {
		assert.True(t, c.ShouldProcess(context.Background(), fmt.Sprintf("m%d", i), base+float64(i)))
	}

	// m1 was evicted; only the timestamp check stands between it and
	// reprocessing, and the mark has not advanced.
	assert.True(t, c.ShouldProcess(context.Background(), "m1", base+1))
	assert.False(t, c.ShouldProcess(context.Background(), "m4", base+4), "recent ids stay in the set")
	assert.Equal(t, 3, c.order.Len())
}

func TestSharedRepoRejectsAlreadyClaimed(t *testing.T) {
	repo := &fakeSeenRepo{claimed: map[string]bool{"1000.1": true}}
	c := New(5*time.Minute, 0, repo, logger.NopLogger())

	assert.False(t, c.ShouldProcess(context.Background(), "1000.1", nowTS(0)))
}

func TestSharedRepoFailureFallsBackOpen(t *testing.T) {
	repo := &fakeSeenRepo{err: errors.New("connection refused")}
	c := New(5*time.Minute, 0, repo, logger.NopLogger())
	ts := nowTS(0)

	assert.True(t, c.ShouldProcess(context.Background(), "1000.1", ts), "backend failure must not stall the relay")
	assert.False(t, c.ShouldProcess(context.Background(), "1000.1", ts), "local set still dedups")
	assert.Equal(t, 1, repo.calls)
}
