package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"charm.land/fantasy"
	"github.com/openai/openai-go/v2"
)

var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidChunking   = errors.New("invalid chunking parameters")

	ErrNoDirectory   = errors.New("document directory not readable")
	ErrCorruptPDF    = errors.New("unreadable PDF")
	ErrEmptyQuestion = errors.New("question is empty")

	ErrServiceUnreachable = errors.New("service unreachable")
	ErrInvalidCredential  = errors.New("invalid or missing credential")
	ErrRateLimited        = errors.New("rate limited")
	ErrMalformedResponse  = errors.New("malformed response")

	ErrEmptyIndex    = errors.New("no chunks indexed; is the document directory empty?")
	ErrIndexNotBuilt = errors.New("index not built")
	ErrIndexSealed   = errors.New("index already built")
)

type Stage string

const (
	StageConfig   Stage = "config"
	StageLoad     Stage = "load"
	StageChunk    Stage = "chunk"
	StageIndex    Stage = "index"
	StageRetrieve Stage = "retrieve"
	StageAnswer   Stage = "answer"
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
	ExitInput   = 3
	ExitService = 4

	// ExitInterrupted follows the shell convention for SIGINT.
	ExitInterrupted = 130
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrMissingCredential),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrInvalidChunking):
		return ExitConfig
	case errors.Is(err, ErrNoDirectory),
		errors.Is(err, ErrCorruptPDF),
		errors.Is(err, ErrEmptyQuestion),
		errors.Is(err, ErrEmptyIndex):
		return ExitInput
	case errors.Is(err, ErrServiceUnreachable),
		errors.Is(err, ErrInvalidCredential),
		errors.Is(err, ErrRateLimited),
		errors.Is(err, ErrMalformedResponse):
		return ExitService
	default:
		return ExitFailure
	}
}

// classifyServiceError wraps a raw client error with the matching service
// sentinel. Errors that already carry one are returned unchanged.
func classifyServiceError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		ErrServiceUnreachable, ErrInvalidCredential, ErrRateLimited, ErrMalformedResponse,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return wrapStatus(apiErr.StatusCode, err)
	}

	var provErr *fantasy.ProviderError
	if errors.As(err, &provErr) && provErr.StatusCode != 0 {
		return wrapStatus(provErr.StatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	}

	return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
}

func wrapStatus(status int, err error) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	case status >= 500, status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
}

// IsTransient reports whether a classified service error is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrServiceUnreachable) || errors.Is(err, ErrRateLimited)
}
