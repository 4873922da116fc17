package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"webpanel/internal/engine"
	"webpanel/internal/panel"
	"webpanel/internal/uiloop"
	"webpanel/pkg/types"
)

type teapotError struct{}

func (teapotError) Error() string   { return "teapot" }
func (teapotError) StatusCode() int { return http.StatusTeapot }

func TestStatusForMapsRegistryErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{panel.ErrInstanceNotFound("x"), http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", engine.ErrUnavailable), http.StatusServiceUnavailable},
		{panel.ErrClosed, http.StatusServiceUnavailable},
		{uiloop.ErrStopped, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{teapotError{}, http.StatusTeapot},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err); got != c.want {
			t.Fatalf("statusFor(%v)=%d want %d", c.err, got, c.want)
		}
	}
}

func TestServiceErrorsBecomeJSON(t *testing.T) {
	svc := newMockService()
	svc.err = fmt.Errorf("create: %w", engine.ErrUnavailable)
	w := doJSON(t, NewMux(svc), http.MethodPost, "/instances", types.OpenRequest{ID: "docs"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if e := decodeError(t, w); e.Code != http.StatusServiceUnavailable || e.Error == "" {
		t.Fatalf("unexpected error body: %+v", e)
	}
}
