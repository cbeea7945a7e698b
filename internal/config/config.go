// Package config loads the service configuration from the environment into
// an explicit struct. Nothing else in the repository reads env vars: the
// engine and repositories take configuration as values so they stay pure
// and testable.
package config

import (
	"fmt"
	"os"
	"strings"
)

// MissingError reports a required configuration key that is absent. It is
// a fatal precondition: callers log it and exit rather than retry.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

// BigQuery names the warehouse the expense and rule data lives in.
type BigQuery struct {
	ProjectID          string
	Dataset            string
	ExpensesTable      string
	CardRulesTable     string
	IdentityLinksTable string
}

// Config is the full service configuration.
type Config struct {
	Port      string
	BigQuery  BigQuery
	GCSBucket string

	// MSIFallback: "single_bucket" (default) or "skip" for installment
	// expenses that carry no month count.
	MSIFallback string

	// EnableNoRuleFallback shows spend grouped by purchase month when no
	// billing rule produced any attribution.
	EnableNoRuleFallback bool

	// EnableLegacyChatFallback re-queries legacy chat-keyed rows when an
	// owner's user-keyed data is empty.
	EnableLegacyChatFallback bool
}

// Load reads the configuration from the environment. BQ_PROJECT_ID and
// BQ_DATASET are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		BigQuery: BigQuery{
			ProjectID:          os.Getenv("BQ_PROJECT_ID"),
			Dataset:            os.Getenv("BQ_DATASET"),
			ExpensesTable:      getEnv("BQ_TABLE", "expenses"),
			CardRulesTable:     getEnv("BQ_CARD_RULES_TABLE", "card_rules"),
			IdentityLinksTable: getEnv("BQ_IDENTITY_LINKS_TABLE", "identity_links"),
		},
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		MSIFallback:              getEnv("MSI_FALLBACK", "single_bucket"),
		EnableNoRuleFallback:     getBool("ENABLE_NO_RULE_FALLBACK", true),
		EnableLegacyChatFallback: getBool("ENABLE_LEGACY_CHAT_FALLBACK", false),
	}

	if cfg.BigQuery.ProjectID == "" {
		return nil, &MissingError{Key: "BQ_PROJECT_ID"}
	}
	if cfg.BigQuery.Dataset == "" {
		return nil, &MissingError{Key: "BQ_DATASET"}
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback
	}
	return v == "true" || v == "1" || v == "yes"
}
