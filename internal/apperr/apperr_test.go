package apperr

import (
	"errors"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	wrapped := fmtWrap(New(KindNotFound, "missing"))
	if KindOf(wrapped) != KindNotFound {
		t.Errorf("KindOf() = %v, want %v", KindOf(wrapped), KindNotFound)
	}

	if KindOf(errors.New("plain")) != KindUnhandled {
		t.Error("KindOf() on a plain error should fall back to KindUnhandled")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindParserError, http.StatusBadRequest},
		{KindInvalidGraphFormat, http.StatusBadRequest},
		{KindNoTenant, http.StatusNotFound},
		{KindBackendUnavailable, http.StatusBadGateway},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindCommit, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := HTTPStatus(tc.kind); got != tc.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestDroppable(t *testing.T) {
	if !Droppable(New(KindTimeout, "read timed out")) {
		t.Error("Timeout should be droppable")
	}
	if Droppable(New(KindCommit, "tx failed")) {
		t.Error("Commit should not be droppable")
	}
}

func fmtWrap(err *Error) error {
	return Wrap(err.Kind, "context", err)
}
