package extract

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// Kind classifies a pipeline failure. The retry orchestrator switches on
// kind; nothing downstream ever sniffs provider error messages again.
type Kind int

const (
	// KindFatal is an unclassified error that aborts the current batch.
	KindFatal Kind = iota
	// KindRateLimited is a provider throttle (429, RESOURCE_EXHAUSTED, 503).
	KindRateLimited
	// KindTransient is a retryable provider-side failure (5xx).
	KindTransient
	// KindMalformed marks an unparseable response; callers absorb it as
	// "no data from this call" rather than propagating.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindMalformed:
		return "malformed"
	default:
		return "fatal"
	}
}

// PipelineError carries a classification alongside the underlying error.
type PipelineError struct {
	Kind Kind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Classify inspects an error for rate-limit and transient signatures.
// Typed provider errors are checked first; message sniffing remains as a
// last resort because the provider surfaces failures in several shapes
// (status field, nested error object, plain string).
func Classify(err error) Kind {
	if err == nil {
		return KindFatal
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	if code, status, ok := providerStatus(err); ok {
		switch {
		case code == 429 || code == 503 || status == "RESOURCE_EXHAUSTED":
			return KindRateLimited
		case code >= 500:
			return KindTransient
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "503") ||
		strings.Contains(strings.ToLower(msg), "quota") {
		return KindRateLimited
	}

	return KindFatal
}

// providerStatus extracts an HTTP code and status string from the known
// provider error types, in both value and pointer shapes.
func providerStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code, "", true
	}
	return 0, "", false
}
