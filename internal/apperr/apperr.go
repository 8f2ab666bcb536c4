package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error the way spec.md §7 enumerates them, so a
// handler can map it to an HTTP status or a pub/sub reporter outcome
// without string-matching the message.
type Kind string

const (
	KindParserError              Kind = "parser_error"
	KindInvalidRequest           Kind = "invalid_request"
	KindNoTenant                 Kind = "no_tenant"
	KindBackendUnavailable       Kind = "backend_unavailable"
	KindTimeout                  Kind = "timeout"
	KindNotFound                 Kind = "not_found"
	KindEmptyDocument            Kind = "empty_document"
	KindExpiredSession           Kind = "expired_session"
	KindCookieInvalidSignature   Kind = "cookie_invalid_signature"
	KindSecurityError            Kind = "security_error"
	KindDeltaWithoutOperator     Kind = "delta_without_operator"
	KindOperatorWithoutGraphName Kind = "operator_without_graph_name"
	KindInvalidGraphFormat       Kind = "invalid_graph_format"
	KindCommit                   Kind = "commit"
	KindUnexpected               Kind = "unexpected"
	KindUnhandled                Kind = "unhandled"
)

// Error wraps an underlying cause with a Kind, following this service's
// fmt.Errorf("...: %w", err) wrapping convention rather than a
// third-party errors package.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an *Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an *Error of the given kind, wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// KindOf extracts the Kind from err, or KindUnhandled if err does not
// carry one.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnhandled
}

// HTTPStatus maps a Kind to the status code spec.md §7 assigns it.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindParserError, KindInvalidRequest, KindDeltaWithoutOperator,
		KindOperatorWithoutGraphName, KindInvalidGraphFormat:
		return http.StatusBadRequest
	case KindNoTenant, KindNotFound, KindEmptyDocument:
		return http.StatusNotFound
	case KindBackendUnavailable:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCommit, KindUnexpected, KindUnhandled:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Droppable reports whether err represents a pub/sub connection failure
// that should trigger a reconnect rather than being logged and skipped
// (spec.md §4.6 step 6: timeout, refused, cluster, I/O).
func Droppable(err error) bool {
	return KindOf(err) == KindBackendUnavailable || KindOf(err) == KindTimeout
}
