package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Transport failure kinds. Match them with errors.Is against a *TransportError.
var (
	ErrAuth          = errors.New("invalid API key, check the Gemini API key configuration")
	ErrRateLimit     = errors.New("rate limit exceeded, try again later")
	ErrProvider      = errors.New("gemini API error")
	ErrEmptyResponse = errors.New("no content returned from the API")
)

// TransportError is returned by an LLMProvider when the call to the model did
// not produce text. Raw keeps the provider's body verbatim for diagnostics and
// Err, when set, is the underlying client error.
type TransportError struct {
	Kind   error
	Status int
	Raw    string
	Err    error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	b.WriteString(". Raw response: ")
	b.WriteString(e.Raw)
	return b.String()
}

func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// ConfigurationError reports a provider that cannot be built from its settings.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("ai config: %s %s", e.Field, e.Reason)
}

// kindForStatus maps an HTTP status (and, for 400s, the body) to a failure kind.
func kindForStatus(status int, body string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusBadRequest && strings.Contains(body, "API_KEY_INVALID"):
		return ErrAuth
	case status == http.StatusTooManyRequests:
		return ErrRateLimit
	default:
		return ErrProvider
	}
}
