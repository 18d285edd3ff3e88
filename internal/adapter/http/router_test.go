package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/adapter/http/handler"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/domain"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase"
	"github.com/cascaoconcurseiro/diariofinanceiro/internal/usecase/mocks"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	entries := mocks.NewMockEntryStore()
	snapshots := mocks.NewMockSnapshotStore()

	engine := usecase.NewLedgerEngine(entries, snapshots, mocks.NewMockIDGenerator(), zerolog.Nop(), usecase.Config{
		Today: func() domain.Date { return domain.NewDate(2025, time.June, 1) },
	})

	router := NewRouter(RouterConfig{
		EntryHandler:  handler.NewEntryHandler(engine, nil),
		LedgerHandler: handler.NewLedgerHandler(engine, nil),
		HealthHandler: handler.NewHealthHandler(nil, nil),
		Logger:        zerolog.Nop(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func TestRouterLiveness(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRouterCreateAndBalance(t *testing.T) {
	srv := newTestServer(t)

	body := `{"date":"2025-06-10","amount":"150.00","kind":"credit"}`
	resp, err := http.Post(srv.URL+"/api/v1/entries", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /entries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		Success bool `json:"success"`
		Entry   struct {
			ID     string `json:"id"`
			Amount string `json:"amount"`
		} `json:"entry"`
		DaysProcessed int `json:"days_processed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !created.Success {
		t.Error("expected success")
	}
	if created.Entry.ID == "" {
		t.Error("expected generated entry id")
	}
	if created.DaysProcessed == 0 {
		t.Error("expected forward propagation")
	}

	balResp, err := http.Get(srv.URL + "/api/v1/ledger/balance?date=2025-07-01")
	if err != nil {
		t.Fatalf("GET /ledger/balance: %v", err)
	}
	defer balResp.Body.Close()

	if balResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", balResp.StatusCode, http.StatusOK)
	}

	var bal struct {
		Date    string `json:"date"`
		Balance string `json:"balance"`
	}
	if err := json.NewDecoder(balResp.Body).Decode(&bal); err != nil {
		t.Fatalf("decode balance: %v", err)
	}

	if bal.Balance != "150" {
		t.Errorf("balance = %q, want %q", bal.Balance, "150")
	}
}

func TestRouterRejectsMalformedEntry(t *testing.T) {
	srv := newTestServer(t)

	body := `{"date":"2025-06-10","amount":"-5.00","kind":"credit"}`
	resp, err := http.Post(srv.URL+"/api/v1/entries", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /entries: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestRouterIntegrityOnHealthyLedger(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/ledger/integrity", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /ledger/integrity: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var report struct {
		IsValid bool `json:"is_valid"`
		Score   int  `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}

	if !report.IsValid || report.Score != 100 {
		t.Errorf("report = %+v, want valid with score 100", report)
	}
}

func TestRouterUnknownEntryReturns404(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/entries/nope", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /entries/nope: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
