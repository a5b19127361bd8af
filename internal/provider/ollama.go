package provider

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"ragchat/internal/config"
	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

func init() {
	Register("ollama", newOllama)
}

// ollamaProvider runs against a local Ollama server. No API key involved;
// network failures map straight to provider-unavailable.
type ollamaProvider struct {
	llm         *ollama.LLM
	embedder    *embeddings.EmbedderImpl
	temperature float32
}

func newOllama(cfg config.ProviderConfig) (Provider, error) {
	var opts []ollama.Option
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
	}

	llm, err := ollama.New(append(opts, ollama.WithModel(cfg.Model))...)
	if err != nil {
		return nil, fmt.Errorf("init ollama: %w", err)
	}
	embedLLM, err := ollama.New(append(opts, ollama.WithModel(cfg.EmbeddingModel))...)
	if err != nil {
		return nil, fmt.Errorf("init ollama embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return &ollamaProvider{llm: llm, embedder: embedder, temperature: cfg.Temperature}, nil
}

func (p *ollamaProvider) Name() string {
	return "ollama"
}

func (p *ollamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ragerr.ErrProviderUnavailable, err)
	}
	return vec, nil
}

func (p *ollamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ragerr.ErrProviderUnavailable, err)
	}
	return vecs, nil
}

func (p *ollamaProvider) Stream(ctx context.Context, req ChatRequest) (CompletionStream, error) {
	msgs := make([]llms.MessageContent, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = llms.MessageContent{
			Role:  langchainRole(m.Role),
			Parts: []llms.ContentPart{llms.TextContent{Text: m.Content}},
		}
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &pushStream{
		fragments: make(chan string),
		done:      make(chan struct{}),
		cancel:    cancel,
	}

	go func() {
		defer close(s.done)
		_, err := p.llm.GenerateContent(ctx, msgs,
			llms.WithTemperature(float64(temperature)),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				select {
				case s.fragments <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil && ctx.Err() == nil {
			s.err = fmt.Errorf("%w: %v", ragerr.ErrProviderUnavailable, err)
		}
	}()
	return s, nil
}

// pushStream adapts langchaingo's callback-style streaming to the pull-based
// CompletionStream contract. Close cancels the generation context, which
// tears down the underlying HTTP stream.
type pushStream struct {
	fragments chan string
	done      chan struct{}
	cancel    context.CancelFunc
	err       error
	closeOnce sync.Once
}

func (s *pushStream) Recv() (string, error) {
	select {
	case frag := <-s.fragments:
		return frag, nil
	case <-s.done:
		// Drain fragments raced in before done closed.
		select {
		case frag := <-s.fragments:
			return frag, nil
		default:
		}
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
}

func (s *pushStream) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

func langchainRole(r models.Role) llms.ChatMessageType {
	switch r {
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
