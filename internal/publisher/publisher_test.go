package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claytonbrgsdev/slack-translator-app/internal/hub"
	"github.com/claytonbrgsdev/slack-translator-app/internal/logger"
	"github.com/claytonbrgsdev/slack-translator-app/internal/store"
	apperrors "github.com/claytonbrgsdev/slack-translator-app/pkg/errors"
)

func newTestPublisher(t *testing.T) (*Publisher, *store.MemoryStore, <-chan store.Record) {
	t.Helper()
	st := store.NewMemoryStore(10)
	h := hub.New()
	_, ch := h.Subscribe()
	return New(st, h, logger.NopLogger()), st, ch
}

func TestPublishStoresAndBroadcasts(t *testing.T) {
	p, st, ch := newTestPublisher(t)

	err := p.Publish(context.Background(), store.Record{
		ID:             "1",
		OriginalText:   "hello",
		TranslatedText: "olá",
		Timestamp:      100,
	}, OriginChannel)
	require.NoError(t, err)

	records, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "olá", records[0].TranslatedText)

	got := <-ch
	assert.Equal(t, "1", got.ID)
}

func TestPublishRejectsEmptyRecord(t *testing.T) {
	p, st, _ := newTestPublisher(t)

	err := p.Publish(context.Background(), store.Record{ID: "1", OriginalText: "  "}, OriginLocal)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	n, _ := st.Count(context.Background())
	assert.Equal(t, 0, n)
}

func TestPublishClampsBackwardsTimestamps(t *testing.T) {
	p, st, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, store.Record{ID: "1", OriginalText: "a", Timestamp: 200}, OriginChannel))
	require.NoError(t, p.Publish(ctx, store.Record{ID: "2", OriginalText: "b", Timestamp: 150}, OriginChannel))

	records, _ := st.List(ctx)
	require.Len(t, records, 2)
	assert.Equal(t, int64(200), records[0].Timestamp)
	assert.Equal(t, int64(200), records[1].Timestamp, "display time never runs backwards")
}

func TestPublishDefaultsTimestamp(t *testing.T) {
	p, st, _ := newTestPublisher(t)

	require.NoError(t, p.Publish(context.Background(), store.Record{ID: "1", OriginalText: "a"}, OriginLocal))

	records, _ := st.List(context.Background())
	require.Len(t, records, 1)
	assert.NotZero(t, records[0].Timestamp)
}
