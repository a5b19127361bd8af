package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
	"ragchat/internal/vecstore"
)

type fakeEmbedder struct {
	vector []float32
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	return f.vector, nil
}

func TestRetrieveEmptyIndexSkipsEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	r := New(embedder)

	results, err := r.Retrieve(context.Background(), nil, "question", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.calls)

	empty, err := vecstore.New("doc")
	require.NoError(t, err)
	results, err = r.Retrieve(context.Background(), empty, "question", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, embedder.calls)
}

func TestRetrieveReturnsTopK(t *testing.T) {
	ctx := context.Background()
	ix, err := vecstore.New("doc")
	require.NoError(t, err)

	vectors := map[string][]float32{
		"a": {1, 0},
		"b": {0.9, 0.1},
		"c": {0, 1},
	}
	seq := 0
	for id, v := range map[string][]float32{"a": vectors["a"], "b": vectors["b"], "c": vectors["c"]} {
		require.NoError(t, ix.Insert(ctx, models.Passage{ID: id, DocumentID: "doc", Seq: seq, Text: id}, v))
		seq++
	}

	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	r := New(embedder)

	results, err := r.Retrieve(ctx, ix, "question", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].Passage.ID)
	assert.Equal(t, "b", results[1].Passage.ID)
	assert.Equal(t, 1, embedder.calls)
}

func TestRetrieveFewerThanKWhenIndexIsSmall(t *testing.T) {
	ctx := context.Background()
	ix, err := vecstore.New("doc")
	require.NoError(t, err)
	require.NoError(t, ix.Insert(ctx, models.Passage{ID: "only", Text: "only"}, []float32{1, 1}))

	r := New(&fakeEmbedder{vector: []float32{1, 1}})
	results, err := r.Retrieve(ctx, ix, "question", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
