package provider

import (
	"context"
	"time"
)

// WithRetry wraps p so that embedding calls and stream establishment are
// retried with bounded exponential backoff on transient failures. Streams
// are never retried once the first fragment can flow; only opening the
// stream is covered.
func WithRetry(p Provider, maxAttempts int, baseDelay time.Duration) Provider {
	if maxAttempts <= 1 {
		return p
	}
	return &retrying{inner: p, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

type retrying struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
}

func (r *retrying) Name() string {
	return r.inner.Name()
}

func (r *retrying) Embed(ctx context.Context, text string) ([]float32, error) {
	return withRetry(ctx, r.maxAttempts, r.baseDelay, func(ctx context.Context) ([]float32, error) {
		return r.inner.Embed(ctx, text)
	})
}

func (r *retrying) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return withRetry(ctx, r.maxAttempts, r.baseDelay, func(ctx context.Context) ([][]float32, error) {
		return r.inner.EmbedBatch(ctx, texts)
	})
}

func (r *retrying) Stream(ctx context.Context, req ChatRequest) (CompletionStream, error) {
	return withRetry(ctx, r.maxAttempts, r.baseDelay, func(ctx context.Context) (CompletionStream, error) {
		return r.inner.Stream(ctx, req)
	})
}
