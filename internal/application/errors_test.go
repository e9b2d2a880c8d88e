package application

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Error("empty validation error reports errors")
	}

	vErr.add("title", "title is required")
	if !vErr.HasErrors() {
		t.Error("recorded field error not reported")
	}
	if got := vErr.FieldErrors["title"]; got != "title is required" {
		t.Errorf("FieldErrors[title] = %q", got)
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{ErrAlreadyExists, "already_exists"},
		{ErrInvalidCredentials, "invalid_credentials"},
		{fmt.Errorf("wrapped: %w", ErrUnauthorized), "unauthorized"},
		{&ValidationError{FieldErrors: map[string]string{"title": "required"}}, "validation"},
		{errors.New("boom"), "unexpected"},
	}

	for _, tc := range cases {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
