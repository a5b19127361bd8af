package vecstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"

	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

// Index is a per-document, in-memory vector index over passages, backed by a
// chromem-go collection. One index belongs to exactly one session and is
// discarded wholesale when a new document is uploaded.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	docID      string
	dim        int
	passages   map[string]models.Passage
}

// externalOnly guards against chromem ever being asked to embed on its own;
// every vector in this index comes from the session's provider.
func externalOnly(_ context.Context, _ string) ([]float32, error) {
	return nil, errors.New("index only accepts precomputed embeddings")
}

func New(docID string) (*Index, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection("doc-"+docID, nil, externalOnly)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	return &Index{
		db:         db,
		collection: collection,
		docID:      docID,
		passages:   make(map[string]models.Passage),
	}, nil
}

func (ix *Index) DocumentID() string { return ix.docID }
func (ix *Index) Count() int         { return len(ix.passages) }
func (ix *Index) Dimensions() int    { return ix.dim }

// Insert stores one passage/vector pair. The first insert establishes the
// index's dimensionality; every later vector must match it.
func (ix *Index) Insert(ctx context.Context, passage models.Passage, vector []float32) error {
	if err := ix.checkDim(vector); err != nil {
		return err
	}
	doc := chromem.Document{
		ID:        passage.ID,
		Content:   passage.Text,
		Metadata:  passageMetadata(passage),
		Embedding: vector,
	}
	if err := ix.collection.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	ix.dim = len(vector)
	ix.passages[passage.ID] = passage
	return nil
}

// InsertBatch stores many pairs at once, parallelizing the collection write
// the way a bulk document build wants.
func (ix *Index) InsertBatch(ctx context.Context, passages []models.Passage, vectors [][]float32) error {
	if len(passages) != len(vectors) {
		return fmt.Errorf("%w: %d passages, %d vectors", ragerr.ErrDimensionMismatch, len(passages), len(vectors))
	}
	if len(passages) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(passages))
	for i, p := range passages {
		if err := ix.checkDim(vectors[i]); err != nil {
			return err
		}
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   p.Text,
			Metadata:  passageMetadata(p),
			Embedding: vectors[i],
		}
	}
	if err := ix.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	ix.dim = len(vectors[0])
	for _, p := range passages {
		ix.passages[p.ID] = p
	}
	return nil
}

// Query returns up to k passages ordered by descending similarity, ties
// broken by insertion sequence. An empty index yields an empty result.
func (ix *Index) Query(ctx context.Context, vector []float32, k int) ([]models.RetrievedPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ragerr.ErrInvalidConfig, k)
	}
	if len(ix.passages) == 0 {
		return nil, nil
	}
	if ix.dim != 0 && len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ragerr.ErrDimensionMismatch, len(vector), ix.dim)
	}
	if k > len(ix.passages) {
		k = len(ix.passages)
	}

	results, err := ix.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	retrieved := make([]models.RetrievedPassage, 0, len(results))
	for _, res := range results {
		passage, ok := ix.passages[res.ID]
		if !ok {
			continue
		}
		retrieved = append(retrieved, models.RetrievedPassage{
			Passage: passage,
			Score:   res.Similarity,
		})
	}
	sort.SliceStable(retrieved, func(i, j int) bool {
		if retrieved[i].Score != retrieved[j].Score {
			return retrieved[i].Score > retrieved[j].Score
		}
		return retrieved[i].Passage.Seq < retrieved[j].Passage.Seq
	})
	return retrieved, nil
}

func (ix *Index) checkDim(vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", ragerr.ErrDimensionMismatch)
	}
	if ix.dim != 0 && len(vector) != ix.dim {
		return fmt.Errorf("%w: vector has %d dimensions, index has %d", ragerr.ErrDimensionMismatch, len(vector), ix.dim)
	}
	return nil
}

func passageMetadata(p models.Passage) map[string]string {
	return map[string]string{
		"page": strconv.Itoa(p.Page),
		"seq":  strconv.Itoa(p.Seq),
	}
}
