// Package errors implements the closed error taxonomy for the generation
// pipeline, with classification of raw provider failures.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the classification of a pipeline failure. Every error surfaced
// by the generation pipeline carries exactly one Kind.
type Kind int

const (
	// KindSafetyRejection indicates the provider withheld the output for
	// policy reasons. The error detail carries the flagged categories.
	KindSafetyRejection Kind = iota

	// KindRateLimited indicates provider-side throttling (429 or a
	// resource-exhaustion marker). Not retried automatically.
	KindRateLimited

	// KindBillingRequired indicates the image-generation capability needs
	// a billed provider account.
	KindBillingRequired

	// KindInvalidInput indicates malformed caller data: an unparseable
	// reference image, a transform request with no references, or a
	// structured response that is not valid JSON.
	KindInvalidInput

	// KindNoOutputData indicates a success response that contained no
	// generated media or text.
	KindNoOutputData

	// KindStoreUnavailable indicates the local asset store cannot be
	// opened. Terminal for the session.
	KindStoreUnavailable

	// KindUnknown is the fallback for anything else, carrying the
	// provider's message when one could be parsed.
	KindUnknown
)

var kindNames = map[Kind]string{
	KindSafetyRejection:  "safety_rejection",
	KindRateLimited:      "rate_limited",
	KindBillingRequired:  "billing_required",
	KindInvalidInput:     "invalid_input",
	KindNoOutputData:     "no_output_data",
	KindStoreUnavailable: "store_unavailable",
	KindUnknown:          "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// SafetyFlag is one flagged category from a safety-withheld response.
type SafetyFlag struct {
	Category string
	Severity string
}

// PipelineError is a classified pipeline failure.
type PipelineError struct {
	Kind        Kind
	Message     string
	SafetyFlags []SafetyFlag
	cause       error
}

func (e *PipelineError) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.cause
}

// New creates a classified error with no underlying cause.
func New(kind Kind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *PipelineError {
	return &PipelineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a classification to an underlying error.
func Wrap(kind Kind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the classification from an error chain.
// Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}
