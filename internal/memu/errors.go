package memu

import (
	"errors"
	"fmt"

	"github.com/Charpup/openclaw-memu-skill/internal/config"
	"github.com/Charpup/openclaw-memu-skill/internal/embeddings"
	"github.com/Charpup/openclaw-memu-skill/internal/vectorstore"
)

// Service error taxonomy. Entry points map these onto protocol error
// codes; everything a caller can observe wraps exactly one of them.
var (
	// ErrConfigInvalid indicates the configuration snapshot failed
	// validation. Terminal: no IO was attempted and retrying without a
	// config change cannot succeed.
	ErrConfigInvalid = errors.New("config invalid")
	// ErrBackendUnavailable indicates the store or the embedding API
	// could not serve the request. Distinct from an empty result.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrValidation indicates the caller supplied unusable input.
	ErrValidation = errors.New("validation failed")
	// ErrUpstreamTimeout indicates the embedding API missed its
	// deadline. The caller owns whether to retry.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)

// ErrorCode returns the protocol code for an error from this package.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrConfigInvalid):
		return "CONFIG_INVALID"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrUpstreamTimeout):
		return "UPSTREAM_TIMEOUT"
	case errors.Is(err, ErrBackendUnavailable):
		return "BACKEND_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// classify translates lower-layer errors into the service taxonomy.
// Errors already carrying a taxonomy sentinel pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrConfigInvalid),
		errors.Is(err, ErrBackendUnavailable),
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrUpstreamTimeout):
		return err
	case errors.Is(err, config.ErrMissingConfig):
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	case errors.Is(err, embeddings.ErrTimeout):
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	case errors.Is(err, embeddings.ErrEmptyInput):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, embeddings.ErrEmbeddingFailed):
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	case errors.Is(err, vectorstore.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	case errors.Is(err, vectorstore.ErrEmptyContent),
		errors.Is(err, vectorstore.ErrInvalidRecord):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, vectorstore.ErrInvalidConfig):
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	default:
		return err
	}
}
