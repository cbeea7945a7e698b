package config

import (
	"errors"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "test-project")
	t.Setenv("BQ_DATASET", "finclaro_test")
	t.Setenv("BQ_TABLE", "")
	t.Setenv("PORT", "")
	t.Setenv("MSI_FALLBACK", "")
	t.Setenv("ENABLE_NO_RULE_FALLBACK", "")
	t.Setenv("ENABLE_LEGACY_CHAT_FALLBACK", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BigQuery.ProjectID != "test-project" {
		t.Errorf("ProjectID = %q", cfg.BigQuery.ProjectID)
	}
	if cfg.BigQuery.ExpensesTable != "expenses" {
		t.Errorf("ExpensesTable = %q, want default", cfg.BigQuery.ExpensesTable)
	}
	if cfg.BigQuery.CardRulesTable != "card_rules" {
		t.Errorf("CardRulesTable = %q, want default", cfg.BigQuery.CardRulesTable)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.MSIFallback != "single_bucket" {
		t.Errorf("MSIFallback = %q, want default single_bucket", cfg.MSIFallback)
	}
	if !cfg.EnableNoRuleFallback {
		t.Error("EnableNoRuleFallback should default to true")
	}
	if cfg.EnableLegacyChatFallback {
		t.Error("EnableLegacyChatFallback should default to false")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		project string
		dataset string
		wantKey string
	}{
		{"no project", "", "finclaro", "BQ_PROJECT_ID"},
		{"no dataset", "test-project", "", "BQ_DATASET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BQ_PROJECT_ID", tt.project)
			t.Setenv("BQ_DATASET", tt.dataset)

			_, err := Load()
			var missing *MissingError
			if !errors.As(err, &missing) {
				t.Fatalf("error = %v, want MissingError", err)
			}
			if missing.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", missing.Key, tt.wantKey)
			}
		})
	}
}

func TestLoad_BoolParsing(t *testing.T) {
	t.Setenv("BQ_PROJECT_ID", "p")
	t.Setenv("BQ_DATASET", "d")

	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"TRUE", true},
		{"false", false},
		{"0", false},
		{"anything-else", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("ENABLE_LEGACY_CHAT_FALLBACK", tt.value)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.EnableLegacyChatFallback != tt.want {
				t.Errorf("EnableLegacyChatFallback = %v for %q, want %v", cfg.EnableLegacyChatFallback, tt.value, tt.want)
			}
		})
	}
}
