package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/cashflow"
)

// mockBuilder returns a canned table and records the range it was asked for.
type mockBuilder struct {
	table *cashflow.Table
	err   error

	owner string
	from  civil.Date
	to    civil.Date
}

func (m *mockBuilder) Table(ctx context.Context, owner string, from, to civil.Date) (*cashflow.Table, error) {
	m.owner = owner
	m.from = from
	m.to = to
	if m.err != nil {
		return nil, m.err
	}
	return m.table, nil
}

func serveTable(builder *mockBuilder, target string) *httptest.ResponseRecorder {
	h := NewCashflowHandler(builder, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cashflow", h.GetTable)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Owner-ID", "u1")
	rec := httptest.NewRecorder()
	middleware.Auth(mux).ServeHTTP(rec, req)
	return rec
}

func TestGetTable(t *testing.T) {
	builder := &mockBuilder{
		table: &cashflow.Table{
			Months: []string{"2024-01", "2024-02"},
			Rows: []cashflow.Row{{
				CardName: "BBVA Oro",
				Totals: map[string]decimal.Decimal{
					"2024-01": decimal.RequireFromString("500"),
					"2024-02": decimal.Zero,
				},
			}},
			Totals: map[string]decimal.Decimal{
				"2024-01": decimal.RequireFromString("500"),
				"2024-02": decimal.Zero,
			},
		},
	}

	rec := serveTable(builder, "/api/cashflow?from=2024-01&to=2024-02")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if builder.owner != "u1" {
		t.Errorf("owner = %q, want the header identity", builder.owner)
	}
	if builder.from != (civil.Date{Year: 2024, Month: time.January, Day: 1}) {
		t.Errorf("from = %s", builder.from)
	}

	var body struct {
		OK     bool     `json:"ok"`
		Months []string `json:"months"`
		Rows   []struct {
			CardName string             `json:"card_name"`
			Totals   map[string]float64 `json:"totals"`
		} `json:"rows"`
		Totals map[string]float64 `json:"totals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if !body.OK {
		t.Error("ok = false")
	}
	if len(body.Months) != 2 || body.Months[0] != "2024-01" {
		t.Errorf("months = %v", body.Months)
	}
	if len(body.Rows) != 1 || body.Rows[0].Totals["2024-01"] != 500 {
		t.Errorf("rows = %+v", body.Rows)
	}
	if body.Totals["2024-02"] != 0 {
		t.Errorf("totals = %v", body.Totals)
	}
}

func TestGetTable_DefaultRange(t *testing.T) {
	builder := &mockBuilder{table: &cashflow.Table{Months: []string{}, Totals: map[string]decimal.Decimal{}}}

	rec := serveTable(builder, "/api/cashflow")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	// Five-month window centered on the current month.
	if got := builder.to.Month - builder.from.Month + time.Month(12*(builder.to.Year-builder.from.Year)); got != 4 {
		t.Errorf("default range spans %d months of offset, want 4 (from %s to %s)", got, builder.from, builder.to)
	}
}

func TestGetTable_BadRange(t *testing.T) {
	targets := []string{
		"/api/cashflow?from=garbage&to=2024-02",
		"/api/cashflow?from=2024-01",
		"/api/cashflow?from=2024-01&to=20XX-02",
	}
	for _, target := range targets {
		rec := serveTable(&mockBuilder{}, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestGetTable_UpstreamFailure(t *testing.T) {
	builder := &mockBuilder{err: &cashflow.UpstreamError{Op: "list expenses", Err: errors.New("boom")}}

	rec := serveTable(builder, "/api/cashflow?from=2024-01&to=2024-02")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if body.OK || body.Error == "" {
		t.Errorf("body = %+v, want ok=false with an opaque error", body)
	}
	if body.Error == "boom" {
		t.Error("upstream detail leaked to the client")
	}
}

func TestGetTable_MissingOwner(t *testing.T) {
	h := NewCashflowHandler(&mockBuilder{}, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("/api/cashflow", h.GetTable)

	req := httptest.NewRequest(http.MethodGet, "/api/cashflow?from=2024-01&to=2024-02", nil)
	rec := httptest.NewRecorder()
	middleware.Auth(mux).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
