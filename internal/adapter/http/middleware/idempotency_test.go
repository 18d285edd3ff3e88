package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase/mocks"
)

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	cached := []byte(`{"success":true}`)
	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-1", gomock.Any(), gomock.Any()).
		Return(true, cached, nil)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	mw := NewIdempotencyMiddleware(store, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-1")
	rec := httptest.NewRecorder()

	mw.Wrap(next).ServeHTTP(rec, req)

	if called {
		t.Error("handler should not run for a replayed request")
	}
	if rec.Header().Get("X-Idempotency-Replay") != "true" {
		t.Error("expected replay header")
	}
	if rec.Body.String() != string(cached) {
		t.Errorf("body = %q, want cached response", rec.Body.String())
	}
}

func TestIdempotencyStoresSuccessfulResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-2", gomock.Any(), time.Hour).
		Return(false, nil, nil)
	store.EXPECT().
		Update(gomock.Any(), "key-2", []byte(`{"ok":true}`), time.Hour).
		Return(nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	})

	mw := NewIdempotencyMiddleware(store, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-2")
	rec := httptest.NewRecorder()

	mw.Wrap(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
}

func TestIdempotencySkipsFailedResponses(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)

	store.EXPECT().
		CheckAndSet(gomock.Any(), "key-3", gomock.Any(), gomock.Any()).
		Return(false, nil, nil)
	// No Update expected for a 4xx response.

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	mw := NewIdempotencyMiddleware(store, time.Hour)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader("{}"))
	req.Header.Set(IdempotencyKeyHeader, "key-3")
	rec := httptest.NewRecorder()

	mw.Wrap(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIdempotencyIgnoresReadsAndMissingKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockIdempotencyStore(ctrl)
	// No store calls expected at all.

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	wrapped := NewIdempotencyMiddleware(store, time.Hour).Wrap(next)

	get := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/balance", nil)
	get.Header.Set(IdempotencyKeyHeader, "key-4")
	wrapped.ServeHTTP(httptest.NewRecorder(), get)

	post := httptest.NewRequest(http.MethodPost, "/api/v1/entries", strings.NewReader("{}"))
	wrapped.ServeHTTP(httptest.NewRecorder(), post)

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/entries", "/api/v1/entries"},
		{"/api/v1/entries/", "/api/v1/entries/"},
		{"/api/v1/entries/01HZXK", "/api/v1/entries/:id"},
		{"/api/v1/entries/batch", "/api/v1/entries/batch"},
		{"/api/v1/entries/recurrence/rule-7", "/api/v1/entries/recurrence/:id"},
		{"/api/v1/ledger/balance", "/api/v1/ledger/balance"},
		{"/health", "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
