package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garnizeh/gigmarket/internal/market"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{market.ErrUnauthenticated, http.StatusUnauthorized},
		{market.ErrNotFound, http.StatusNotFound},
		{market.ErrForbidden, http.StatusForbidden},
		{market.ErrSelfApplicationForbidden, http.StatusForbidden},
		{market.ErrInvalidInput, http.StatusBadRequest},
		{market.ErrInvalidCategory, http.StatusBadRequest},
		{market.ErrInvalidBudget, http.StatusBadRequest},
		{market.ErrInvalidRate, http.StatusBadRequest},
		{market.ErrJobNotOpen, http.StatusConflict},
		{market.ErrDuplicateApplication, http.StatusConflict},
		{market.ErrAlreadyDecided, http.StatusConflict},
		{market.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorStoreUnavailable(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/jobs", nil)
	writeError(w, r, &market.Error{Kind: market.KindStoreUnavailable, Message: "list jobs", Cause: errors.New("disk gone")})

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != retryAfterSeconds {
		t.Fatalf("expected Retry-After header, got %q", w.Header().Get("Retry-After"))
	}
	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != string(market.KindStoreUnavailable) || body.Message == "list jobs: disk gone" {
		t.Fatalf("store cause must not leak, got %+v", body)
	}
}
