package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Unauthenticated("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusUnprocessableEntity},
		{InvalidRange("x"), http.StatusUnprocessableEntity},
		{Conflict("x"), http.StatusConflict},
		{Unavailable("x", errors.New("io")), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", Conflict("x")), http.StatusConflict},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v)=%d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestInvalidRangeMatchesSentinel(t *testing.T) {
	err := InvalidRange("range exceeds 14 days")
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("errors.Is(%v, ErrInvalidRange)=false", err)
	}
	if PublicMessage(err) != "range exceeds 14 days" {
		t.Fatalf("PublicMessage=%q", PublicMessage(err))
	}
}

func TestPublicMessageHidesInternals(t *testing.T) {
	if got := PublicMessage(Internal("db exploded", errors.New("secret dsn"))); got != "Internal Server Error" {
		t.Fatalf("PublicMessage(internal)=%q", got)
	}
}
