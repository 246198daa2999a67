package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Config holds OpenAI provider settings.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string
	// BaseURL is the OpenAI-compatible endpoint.
	BaseURL string
	// Model is the embedding model name.
	Model string
	// Timeout bounds each request. Must be positive.
	Timeout time.Duration
	// HTTPClient overrides the transport. Nil uses the default.
	HTTPClient *http.Client
}

// OpenAIProvider calls an OpenAI-compatible embeddings endpoint.
//
// Each request carries its own deadline derived from Config.Timeout.
// The provider performs no retries; a timeout surfaces as ErrTimeout
// and the caller decides whether to try again.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	timeout time.Duration
	dim     int
	logger  *zap.Logger
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a provider from config.
func NewOpenAIProvider(cfg Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries stay with the caller.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIProvider{
		client:  openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		dim:     modelDimension(cfg.Model),
		logger:  logger.Named("embeddings"),
	}, nil
}

// EmbedQuery embeds a single query string.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of documents in one request.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: blank document", ErrEmptyInput)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: p.model,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Warn("embedding request timed out",
				zap.Duration("timeout", p.timeout),
				zap.Int("batch_size", len(texts)))
			return nil, fmt.Errorf("%w after %s: %v", ErrTimeout, p.timeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}

	p.logger.Debug("embedded documents",
		zap.Int("batch_size", len(texts)),
		zap.Duration("elapsed", time.Since(start)))
	return vectors, nil
}

// Dimension reports the vector width for the configured model.
func (p *OpenAIProvider) Dimension() int {
	return p.dim
}

// modelDimension maps known model names to their output width.
func modelDimension(model string) int {
	switch {
	case strings.Contains(model, "3-large"):
		return 3072
	default:
		// text-embedding-3-small and ada-002 both emit 1536.
		return 1536
	}
}

func toFloat32(input []float64) []float32 {
	result := make([]float32, len(input))
	for i, v := range input {
		result[i] = float32(v)
	}
	return result
}
