package retriever

import (
	"context"

	"ragchat/internal/models"
	"ragchat/internal/vecstore"
)

// Embedder is the slice of the provider interface retrieval needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Retriever struct {
	embedder Embedder
}

func New(embedder Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve embeds the question and returns the top-k most similar passages.
// A nil or empty index yields an empty result without touching the embedder,
// so a session with no document never pays for an embedding call.
func (r *Retriever) Retrieve(ctx context.Context, index *vecstore.Index, question string, k int) ([]models.RetrievedPassage, error) {
	if index == nil || index.Count() == 0 {
		return nil, nil
	}
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return index.Query(ctx, vector, k)
}
