package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorMessageFallbacks(t *testing.T) {
	if got := New(http.StatusBadRequest, "", errors.New("bad id")).Error(); got != "bad id" {
		t.Fatalf("with cause: got=%q", got)
	}
	if got := BadRequest("invalid_entry_id", nil).Error(); got != "invalid_entry_id" {
		t.Fatalf("code only: got=%q", got)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error (418)" {
		t.Fatalf("status only: got=%q", got)
	}
	var nilErr *Error
	if got := nilErr.Error(); got != "" {
		t.Fatalf("nil: got=%q", got)
	}
}

func TestUnauthorizedUnwraps(t *testing.T) {
	cause := errors.New("token expired")
	err := Unauthorized(cause)
	if err.Status != http.StatusUnauthorized || err.Code != "unauthorized" {
		t.Fatalf("unauthorized: got=%+v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is should reach the cause")
	}
}
