package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Classification rules, checked in order. The mapping is total: every raw
// failure lands on exactly one Kind, and the same input always lands on
// the same Kind.

var statusCodeRe = regexp.MustCompile(`\b([4-5]\d{2})\b`)

var rateLimitMarkers = []string{
	"resource_exhausted",
	"resource has been exhausted",
	"quota exceeded",
	"rate limit",
	"too many requests",
}

var billingMarkers = []string{
	"only accessible to billed users",
	"billed users",
	"billing account",
	"enable billing",
}

// providerEnvelope is the HTTP-shaped error body the provider returns.
type providerEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Classify maps a raw failure to exactly one PipelineError. Errors that
// already carry a classification pass through unchanged.
func Classify(err error) *PipelineError {
	if err == nil {
		return nil
	}

	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}

	raw := err.Error()
	if env, ok := parseEnvelope(raw); ok {
		return classifyEnvelope(env.Error.Code, env.Error.Message, env.Error.Status, err)
	}
	if code, ok := extractStatusCode(raw); ok {
		return classifyEnvelope(code, raw, "", err)
	}
	return classifyByContent(raw, err)
}

// ClassifyStatus classifies a failure whose numeric status code is already
// known, e.g. from a decoded provider error value.
func ClassifyStatus(code int, message string, cause error) *PipelineError {
	return classifyEnvelope(code, message, "", cause)
}

// ClassifyFinish maps a generation finish reason to a classification.
// A safety-flagged finish becomes KindSafetyRejection carrying the flagged
// categories; any other non-stop reason becomes KindNoOutputData.
func ClassifyFinish(reason string, flags []SafetyFlag) *PipelineError {
	switch strings.ToUpper(reason) {
	case "SAFETY", "IMAGE_SAFETY", "PROHIBITED_CONTENT", "BLOCKLIST":
		return &PipelineError{
			Kind:        KindSafetyRejection,
			Message:     "output withheld: " + reason,
			SafetyFlags: flags,
		}
	default:
		return Newf(KindNoOutputData, "generation stopped without output (finish reason %q)", reason)
	}
}

func classifyEnvelope(code int, message, status string, cause error) *PipelineError {
	lower := strings.ToLower(message)
	switch {
	case code == http.StatusTooManyRequests || strings.EqualFold(status, "RESOURCE_EXHAUSTED"):
		return Wrap(KindRateLimited, message, cause)
	case matchesAny(lower, rateLimitMarkers):
		return Wrap(KindRateLimited, message, cause)
	case matchesAny(lower, billingMarkers):
		return Wrap(KindBillingRequired, message, cause)
	default:
		return Wrap(KindUnknown, message, cause)
	}
}

func classifyByContent(raw string, cause error) *PipelineError {
	lower := strings.ToLower(raw)
	switch {
	case matchesAny(lower, rateLimitMarkers):
		return Wrap(KindRateLimited, raw, cause)
	case matchesAny(lower, billingMarkers):
		return Wrap(KindBillingRequired, raw, cause)
	default:
		return Wrap(KindUnknown, raw, cause)
	}
}

func matchesAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// parseEnvelope attempts to decode a provider error body embedded in the
// error text. Provider errors often stringify as the raw JSON envelope.
func parseEnvelope(raw string) (providerEnvelope, bool) {
	start := strings.Index(raw, "{")
	if start < 0 {
		return providerEnvelope{}, false
	}
	var env providerEnvelope
	if err := json.Unmarshal([]byte(raw[start:]), &env); err != nil {
		return providerEnvelope{}, false
	}
	if env.Error.Code == 0 && env.Error.Message == "" && env.Error.Status == "" {
		return providerEnvelope{}, false
	}
	return env, true
}

func extractStatusCode(raw string) (int, bool) {
	m := statusCodeRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return code, true
}
