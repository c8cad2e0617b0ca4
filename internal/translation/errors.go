package translation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"google.golang.org/api/googleapi"
)

var (
	ErrInvalidLanguageCode           = errors.New("invalid language code")
	ErrEmptyInput                    = errors.New("empty input")
	ErrLanguageDetectionFailed       = errors.New("language detection failed")
	ErrTranslationNotRecognized      = errors.New("translation not recognized")
	ErrTranslationServiceUnavailable = errors.New("translation service unavailable")
	ErrTranslationServiceTimeout     = errors.New("translation service timeout")
	ErrStorageFailure                = errors.New("storage failure")
	ErrInternal                      = errors.New("internal error")
)

var clientMessages = map[error]string{
	ErrEmptyInput:                    "Empty input provided. Please try again.",
	ErrLanguageDetectionFailed:       "Unable to detect the input language. Please provide more text or try again.",
	ErrTranslationNotRecognized:      "The text could not be translated. Please check the input and try again.",
	ErrTranslationServiceUnavailable: "Translation service is unavailable. Please try again later.",
	ErrTranslationServiceTimeout:     "Translation service timed out. Please try again later.",
	ErrStorageFailure:                "Failed to save translation. Please try again later.",
	ErrInternal:                      "An unexpected error occurred. Please try again later.",
}

// Error is returned by Manager.Translate. Kind is one of the sentinel errors above and
// Message is safe to show to API clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func newError(kind error, cause error) *Error {
	return &Error{Kind: kind, Message: clientMessages[kind], Err: cause}
}

func invalidLanguageCode(code string) *Error {
	return &Error{
		Kind:    ErrInvalidLanguageCode,
		Message: fmt.Sprintf("Invalid language code: %s. Please check the list of supported languages.", code),
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ClientMessage returns the client-facing message for err, falling back to the generic
// internal error message.
func ClientMessage(err error) string {
	var translationErr *Error
	if errors.As(err, &translationErr) && translationErr.Message != "" {
		return translationErr.Message
	}
	for kind, message := range clientMessages {
		if errors.Is(err, kind) {
			return message
		}
	}
	return clientMessages[ErrInternal]
}

// FailureKind is the closed set of provider failure classes.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureUnavailable
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnavailable:
		return "unavailable"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ProviderError wraps a failed provider call with its failure class.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx response from an HTTP translation endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translation endpoint status %d: %s", e.StatusCode, e.Body)
}

// ClassifyFailure maps a provider error onto a FailureKind. Errors already wrapped in a
// ProviderError keep their kind.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code)
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(statusErr.StatusCode)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EHOSTUNREACH) {
		return FailureUnavailable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureUnavailable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return FailureUnavailable
	}
	return FailureUnknown
}

func classifyStatus(code int) FailureKind {
	switch {
	case code == http.StatusGatewayTimeout || code == http.StatusRequestTimeout:
		return FailureTimeout
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return FailureUnavailable
	default:
		return FailureUnknown
	}
}

func wrapProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return err
	}
	return &ProviderError{Provider: provider, Kind: ClassifyFailure(err), Err: err}
}
