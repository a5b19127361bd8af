package provider

import (
	"context"
	"fmt"
	"strings"

	"ragchat/internal/config"
	"ragchat/internal/models"
)

// Message is one chat turn as sent to a provider.
type Message struct {
	Role    models.Role
	Content string
}

// ChatRequest carries an assembled prompt to a provider's completion API.
type ChatRequest struct {
	Messages    []Message
	Temperature float32
}

// CompletionStream is a finite, non-restartable sequence of answer
// fragments. Recv blocks until the next fragment arrives and returns io.EOF
// once the stream is exhausted. Close releases the underlying network stream
// and must be safe to call after Recv has returned an error.
type CompletionStream interface {
	Recv() (string, error)
	Close() error
}

// Provider is the capability interface over one hosted or local model API:
// embeddings plus streamed chat completion.
type Provider interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Stream(ctx context.Context, req ChatRequest) (CompletionStream, error)
}

type Factory func(cfg config.ProviderConfig) (Provider, error)

var registry = map[string]Factory{}

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

// New builds the provider selected by cfg.Name.
func New(cfg config.ProviderConfig) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Name))
	if key == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Name)
	}
	return factory(cfg)
}
