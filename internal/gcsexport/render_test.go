package gcsexport

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finclaro/cashflow/internal/cashflow"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time literal: %v", err)
	}
	return ts
}

func sampleTable() *cashflow.Table {
	return &cashflow.Table{
		Months: []string{"2024-01", "2024-02"},
		Rows: []cashflow.Row{
			{
				CardName: "BBVA Oro",
				Totals: map[string]decimal.Decimal{
					"2024-01": decimal.RequireFromString("500"),
					"2024-02": decimal.RequireFromString("33.34"),
				},
			},
			{
				CardName: "Nu",
				Totals: map[string]decimal.Decimal{
					"2024-01": decimal.Zero,
					"2024-02": decimal.RequireFromString("120"),
				},
			},
		},
		Totals: map[string]decimal.Decimal{
			"2024-01": decimal.RequireFromString("500"),
			"2024-02": decimal.RequireFromString("153.34"),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"json", FormatJSON, false},
		{"", FormatCSV, false},
		{"xlsx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = (%q, %v), want (%q, wantErr %v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	data, err := Render(sampleTable(), FormatCSV)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"card_name,2024-01,2024-02",
		"BBVA Oro,500.00,33.34",
		"Nu,0.00,120.00",
		"TOTAL,500.00,153.34",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), data)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := Render(sampleTable(), FormatJSON)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var out struct {
		Months []string `json:"months"`
		Rows   []struct {
			CardName string             `json:"card_name"`
			Totals   map[string]float64 `json:"totals"`
		} `json:"rows"`
		Totals map[string]float64 `json:"totals"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(out.Months) != 2 || out.Months[0] != "2024-01" {
		t.Errorf("months = %v", out.Months)
	}
	if len(out.Rows) != 2 || out.Rows[0].CardName != "BBVA Oro" {
		t.Fatalf("rows = %+v", out.Rows)
	}
	if out.Rows[0].Totals["2024-02"] != 33.34 {
		t.Errorf("BBVA Oro 2024-02 = %v, want 33.34", out.Rows[0].Totals["2024-02"])
	}
	if out.Totals["2024-01"] != 500 {
		t.Errorf("totals 2024-01 = %v, want 500", out.Totals["2024-01"])
	}
}

func TestObjectName(t *testing.T) {
	name := ObjectName("u1", "2024-01-01", "2024-03-01", FormatCSV, mustTime(t, "2024-06-17T10:00:00Z"))
	if !strings.HasPrefix(name, "reports/2024/06/17/u1_2024-01-01_2024-03-01_") {
		t.Errorf("ObjectName = %q, unexpected prefix", name)
	}
	if !strings.HasSuffix(name, ".csv") {
		t.Errorf("ObjectName = %q, want .csv suffix", name)
	}
}
