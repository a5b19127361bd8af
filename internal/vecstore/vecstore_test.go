package vecstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

func passage(id string, seq int, text string) models.Passage {
	return models.Passage{ID: id, DocumentID: "doc", Seq: seq, Text: text, Page: 1}
}

func TestQueryOrdersByDescendingSimilarity(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)

	require.NoError(t, ix.Insert(ctx, passage("far", 0, "far"), []float32{0, 1}))
	require.NoError(t, ix.Insert(ctx, passage("mid", 1, "mid"), []float32{1, 1}))
	require.NoError(t, ix.Insert(ctx, passage("near", 2, "near"), []float32{1, 0}))

	results, err := ix.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near", results[0].Passage.ID)
	assert.Equal(t, "mid", results[1].Passage.ID)
	assert.Equal(t, "far", results[2].Passage.ID)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestQueryBreaksTiesByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)

	require.NoError(t, ix.Insert(ctx, passage("second", 1, "b"), []float32{1, 1}))
	require.NoError(t, ix.Insert(ctx, passage("first", 0, "a"), []float32{1, 1}))

	results, err := ix.Query(ctx, []float32{1, 1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Passage.ID)
	assert.Equal(t, "second", results[1].Passage.ID)
}

func TestRoundTripTopResult(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)

	vectors := [][]float32{{1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 0.7}}
	for i, v := range vectors {
		require.NoError(t, ix.Insert(ctx, passage(string(rune('a'+i)), i, "text"), v))
	}

	results, err := ix.Query(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].Passage.ID)
}

func TestQueryEmptyIndexReturnsEmpty(t *testing.T) {
	ix, err := New("doc")
	require.NoError(t, err)

	results, err := ix.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryClampsKToCount(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)
	require.NoError(t, ix.Insert(ctx, passage("only", 0, "only"), []float32{1, 2}))

	results, err := ix.Query(ctx, []float32{1, 2}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)

	require.NoError(t, ix.Insert(ctx, passage("a", 0, "a"), []float32{1, 0, 0}))

	err = ix.Insert(ctx, passage("b", 1, "b"), []float32{1, 0})
	assert.ErrorIs(t, err, ragerr.ErrDimensionMismatch)

	_, err = ix.Query(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, ragerr.ErrDimensionMismatch)

	err = ix.Insert(ctx, passage("c", 2, "c"), nil)
	assert.ErrorIs(t, err, ragerr.ErrDimensionMismatch)
}

func TestInsertBatch(t *testing.T) {
	ctx := context.Background()
	ix, err := New("doc")
	require.NoError(t, err)

	passages := []models.Passage{passage("a", 0, "a"), passage("b", 1, "b")}
	vectors := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, ix.InsertBatch(ctx, passages, vectors))
	assert.Equal(t, 2, ix.Count())
	assert.Equal(t, 2, ix.Dimensions())

	err = ix.InsertBatch(ctx, passages[:1], vectors)
	assert.ErrorIs(t, err, ragerr.ErrDimensionMismatch)
}
