package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/models"
	"ragchat/internal/promptbuild"
	"ragchat/internal/provider"
	"ragchat/internal/ragerr"
	"ragchat/internal/retriever"
	"ragchat/internal/vecstore"
)

// embedBatchSize bounds how many passages go into one embedding request.
const embedBatchSize = 64

// Controller orchestrates the retrieval pipeline per session: document
// loading, retrieval-augmented and simple chat, and session lifecycle.
type Controller struct {
	provider  provider.Provider
	retriever *retriever.Retriever
	assembler *promptbuild.Assembler
	rag       config.RAGConfig

	sessions *expirable.LRU[string, *Session]
}

func NewController(p provider.Provider, cfg *config.Config) *Controller {
	return &Controller{
		provider:  p,
		retriever: retriever.New(p),
		assembler: promptbuild.New(cfg.RAG.HistoryWindow, cfg.RAG.PromptBudget),
		rag:       cfg.RAG,
		sessions: expirable.NewLRU[string, *Session](
			cfg.Session.MaxSessions,
			func(id string, _ *Session) {
				log.Debug().Str("session", id).Msg("session evicted")
			},
			cfg.Session.TTL(),
		),
	}
}

// Create registers a new idle session under an opaque identifier.
func (c *Controller) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		state:     StateIdle,
	}
	c.sessions.Add(s.ID, s)
	log.Info().Str("session", s.ID).Msg("session created")
	return s
}

func (c *Controller) Get(id string) (*Session, error) {
	s, ok := c.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ragerr.ErrSessionNotFound, id)
	}
	return s, nil
}

func (c *Controller) Delete(id string) {
	c.sessions.Remove(id)
}

// LoadDocument chunks and embeds doc, builds a fresh index aside, then swaps
// it in atomically. A query never observes a partially built index, and once
// the swap lands no passage from the previous document can be returned.
// History is reset with the new document.
func (c *Controller) LoadDocument(ctx context.Context, s *Session, doc models.Document) (int, error) {
	s.mu.Lock()
	if s.state == StateQuerying {
		s.mu.Unlock()
		return 0, ragerr.ErrBusy
	}
	s.mu.Unlock()

	passages, err := chunker.SplitDocument(doc, c.rag.ChunkSize, c.rag.ChunkOverlap)
	if err != nil {
		return 0, err
	}
	if len(passages) == 0 {
		return 0, fmt.Errorf("%w: document %s produced no passages", ragerr.ErrInvalidConfig, doc.Name)
	}

	index, err := vecstore.New(doc.ID)
	if err != nil {
		return 0, err
	}
	for start := 0; start < len(passages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]
		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}
		vectors, err := c.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, err
		}
		if err := index.InsertBatch(ctx, batch, vectors); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateQuerying {
		return 0, ragerr.ErrBusy
	}
	s.index = index
	s.documentName = doc.Name
	s.history = nil
	s.state = StateDocumentLoaded
	log.Info().
		Str("session", s.ID).
		Str("document", doc.Name).
		Int("passages", index.Count()).
		Msg("document indexed")
	return index.Count(), nil
}

// Ask runs one retrieval+completion cycle. With a document loaded the
// question goes through the retriever; otherwise it is plain chat over
// history. The returned Answer streams fragments; consuming it to EOF
// commits the exchange to history, and closing it early tears down the
// provider stream and releases the session.
func (c *Controller) Ask(ctx context.Context, s *Session, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", ragerr.ErrInvalidConfig)
	}

	s.mu.Lock()
	if s.state == StateQuerying {
		s.mu.Unlock()
		return nil, ragerr.ErrBusy
	}
	s.state = StateQuerying
	index := s.index
	history := make([]models.ChatMessage, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		s.state = s.restingState()
		s.mu.Unlock()
	}

	passages, err := c.retriever.Retrieve(ctx, index, question, c.rag.TopK)
	if err != nil {
		release()
		return nil, err
	}

	msgs := c.assembler.Assemble(question, passages, history)
	stream, err := c.provider.Stream(ctx, provider.ChatRequest{Messages: msgs})
	if err != nil {
		release()
		return nil, err
	}

	log.Debug().
		Str("session", s.ID).
		Int("retrieved", len(passages)).
		Int("history", len(history)).
		Msg("completion started")

	return &Answer{
		stream:   stream,
		session:  s,
		question: question,
		passages: passages,
		release:  release,
	}, nil
}

// Answer is the streamed result of one Ask. It is consumed by exactly one
// reader and is not restartable.
type Answer struct {
	stream   provider.CompletionStream
	session  *Session
	question string
	passages []models.RetrievedPassage

	full        strings.Builder
	releaseOnce sync.Once
	release     func()
}

// Recv returns the next answer fragment, io.EOF once the stream completes.
// On EOF the full exchange is appended to the session history and the
// session returns to its resting state.
func (a *Answer) Recv() (string, error) {
	frag, err := a.stream.Recv()
	if err == nil {
		a.full.WriteString(frag)
		return frag, nil
	}
	if err == io.EOF {
		now := time.Now()
		a.session.append(
			models.ChatMessage{Role: models.RoleUser, Text: a.question, Timestamp: now},
			models.ChatMessage{Role: models.RoleAssistant, Text: a.full.String(), Timestamp: now},
		)
	}
	a.releaseOnce.Do(a.release)
	return "", err
}

// Close releases the session and the underlying network stream. Stopping
// early discards the partial answer: history only records completed
// exchanges.
func (a *Answer) Close() error {
	a.releaseOnce.Do(a.release)
	return a.stream.Close()
}

// Full returns the answer accumulated so far.
func (a *Answer) Full() string {
	return a.full.String()
}

// Passages reports which passages grounded this answer, in retriever order.
func (a *Answer) Passages() []models.RetrievedPassage {
	return a.passages
}
