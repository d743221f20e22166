package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Record{ID: "1", OriginalText: "hello"}))
	require.NoError(t, s.Append(ctx, Record{ID: "2", OriginalText: "world"}))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "2", records[1].ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStoreEvictsOldest(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Append(ctx, Record{ID: fmt.Sprintf("%d", i)}))
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "3", records[0].ID)
	assert.Equal(t, "5", records[2].ID)
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	s := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Record{ID: "1", OriginalText: "hello"}))

	records, _ := s.List(ctx)
	records[0].OriginalText = "mutated"

	fresh, _ := s.List(ctx)
	assert.Equal(t, "hello", fresh[0].OriginalText)
}

func TestMemoryStoreDefaultRetention(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, s.Append(ctx, Record{ID: fmt.Sprintf("%d", i)}))
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
