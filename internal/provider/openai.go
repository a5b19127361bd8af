package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/internal/config"
	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	embedTimeout = 30 * time.Second
)

func init() {
	Register("openai", func(cfg config.ProviderConfig) (Provider, error) {
		return newOpenAICompatible("openai", "", cfg)
	})
	Register("groq", func(cfg config.ProviderConfig) (Provider, error) {
		return newOpenAICompatible("groq", groqBaseURL, cfg)
	})
}

// openAICompatible serves every provider speaking the OpenAI wire protocol;
// Groq is the same client pointed at a different base URL.
type openAICompatible struct {
	name        string
	client      *openai.Client
	chatModel   string
	embedModel  string
	temperature float32
	apiKey      string
}

func newOpenAICompatible(name, defaultBaseURL string, cfg config.ProviderConfig) (Provider, error) {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	} else if defaultBaseURL != "" {
		clientCfg.BaseURL = defaultBaseURL
	}
	return &openAICompatible{
		name:        name,
		client:      openai.NewClientWithConfig(clientCfg),
		chatModel:   cfg.Model,
		embedModel:  cfg.EmbeddingModel,
		temperature: cfg.Temperature,
		apiKey:      cfg.APIKey,
	}, nil
}

func (p *openAICompatible) Name() string {
	return p.name
}

func (p *openAICompatible) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (p *openAICompatible) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured for %s", ragerr.ErrAuthInvalid, p.name)
	}
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(p.embedModel),
	})
	if err != nil {
		return nil, mapAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ragerr.ErrProviderUnavailable, len(resp.Data), len(texts))
	}
	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

func (p *openAICompatible) Stream(ctx context.Context, req ChatRequest) (CompletionStream, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured for %s", ragerr.ErrAuthInvalid, p.name)
	}
	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		}
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.temperature
	}
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Messages:    msgs,
		Temperature: temperature,
	})
	if err != nil {
		return nil, mapAPIError(err)
	}
	return &openAIStream{inner: stream}, nil
}

type openAIStream struct {
	inner *openai.ChatCompletionStream
}

func (s *openAIStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", mapAPIError(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *openAIStream) Close() error {
	return s.inner.Close()
}

func openAIRole(r models.Role) string {
	switch r {
	case models.RoleSystem:
		return openai.ChatMessageRoleSystem
	case models.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// mapAPIError folds provider transport errors into the service taxonomy:
// auth failures are fatal, throttling is retryable after a delay, anything
// else transient maps to provider-unavailable.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	if status, ok := httpStatus(err); ok {
		switch status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ragerr.ErrAuthInvalid, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ragerr.ErrRateLimited, err)
		}
	}
	return fmt.Errorf("%w: %v", ragerr.ErrProviderUnavailable, err)
}

func httpStatus(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
