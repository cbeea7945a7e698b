package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/billing"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/cashflow"
	"github.com/finclaro/cashflow/internal/config"
	"github.com/finclaro/cashflow/internal/gcsexport"
	infraBQ "github.com/finclaro/cashflow/internal/infra/bigquery"
	"github.com/finclaro/cashflow/internal/logger"
	"github.com/finclaro/cashflow/internal/msi"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "cashflow":
		runCashflow(log)
	case "export":
		runExport(log)
	case "rules":
		runRules(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finclaro Cashflow CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  cashflow  Print an owner's cashflow table for a month range")
	fmt.Println("  export    Render an owner's table and upload it to GCS")
	fmt.Println("  rules     List an owner's active card billing rules")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// newService wires the BigQuery repository and the cashflow service from the
// environment, shared by every subcommand.
func newService(ctx context.Context, log zerolog.Logger) (*cashflow.Service, *infraBQ.Repository, *config.Config) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery, cfg.EnableLegacyChatFallback)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}

	service := cashflow.NewService(repo, msi.ParsePolicy(cfg.MSIFallback), cfg.EnableNoRuleFallback, log)
	return service, repo, cfg
}

func parseMonths(log zerolog.Logger, fromStr, toStr string) (from, to civil.Date) {
	if fromStr == "" && toStr == "" {
		return calendar.DefaultRange(time.Now())
	}
	from, ok := calendar.NormalizeMonthStart(fromStr)
	if !ok {
		log.Fatal().Str("from", fromStr).Msg("Invalid from month, want YYYY-MM")
	}
	to, ok = calendar.NormalizeMonthStart(toStr)
	if !ok {
		log.Fatal().Str("to", toStr).Msg("Invalid to month, want YYYY-MM")
	}
	return from, to
}

func runCashflow(log zerolog.Logger) {
	fs := flag.NewFlagSet("cashflow", flag.ExitOnError)
	owner := fs.String("owner", "", "Owner identity")
	fromStr := fs.String("from", "", "Range start month (YYYY-MM), default 2 months back")
	toStr := fs.String("to", "", "Range end month (YYYY-MM), default 2 months ahead")
	fs.Parse(os.Args[2:])

	if *owner == "" {
		log.Fatal().Msg("Error: --owner is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	service, repo, _ := newService(ctx, log)
	defer repo.Close()

	from, to := parseMonths(log, *fromStr, *toStr)

	table, err := service.Table(ctx, *owner, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build cashflow table")
	}

	printTable(table)
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	owner := fs.String("owner", "", "Owner identity")
	fromStr := fs.String("from", "", "Range start month (YYYY-MM)")
	toStr := fs.String("to", "", "Range end month (YYYY-MM)")
	formatStr := fs.String("format", "csv", "Output format: csv or json")
	fs.Parse(os.Args[2:])

	if *owner == "" {
		log.Fatal().Msg("Error: --owner is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	service, repo, cfg := newService(ctx, log)
	defer repo.Close()

	if cfg.GCSBucket == "" {
		log.Fatal().Msg("Error: GCS_BUCKET is required for export")
	}

	format, err := gcsexport.ParseFormat(*formatStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid format")
	}

	from, to := parseMonths(log, *fromStr, *toStr)

	table, err := service.Table(ctx, *owner, from, to)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build cashflow table")
	}

	data, err := gcsexport.Render(table, format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to render report")
	}

	uploader := gcsexport.NewGCSUploader(cfg.GCSBucket)
	objectName := gcsexport.ObjectName(*owner, from.String(), to.String(), format, time.Now())
	uri, err := uploader.Upload(ctx, objectName, data, format.ContentType())
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Exported %d bytes to %s\n", len(data), uri)
}

func runRules(log zerolog.Logger) {
	fs := flag.NewFlagSet("rules", flag.ExitOnError)
	owner := fs.String("owner", "", "Owner identity")
	fs.Parse(os.Args[2:])

	if *owner == "" {
		log.Fatal().Msg("Error: --owner is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, repo, _ := newService(ctx, log)
	defer repo.Close()

	rules, err := repo.ListActiveCardRules(ctx, *owner)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list card rules")
	}

	fmt.Printf("\n=== Card Rules (%d) ===\n", len(rules))
	for _, rule := range rules {
		fmt.Printf("\n%s\n", rule.CardName)
		fmt.Printf("   Strategy: %s\n", rule.Kind)
		fmt.Printf("   Cut day:  %d\n", rule.CutDay)
		switch rule.Kind {
		case billing.KindCutDayOffset:
			fmt.Printf("   Offset:   %d days", rule.PayOffsetDays)
			if rule.RollWeekendToMonday {
				fmt.Print(" (weekends roll to Monday)")
			}
			fmt.Println()
		default:
			fmt.Printf("   Shift:    %d months\n", rule.BillingShiftMonths)
		}
	}
	fmt.Println()
}

func printTable(table *cashflow.Table) {
	fmt.Printf("\n%-24s", "Card")
	for _, month := range table.Months {
		fmt.Printf("  %10s", month)
	}
	fmt.Println()

	for _, row := range table.Rows {
		fmt.Printf("%-24s", row.CardName)
		for _, month := range table.Months {
			fmt.Printf("  %10s", row.Totals[month].StringFixed(2))
		}
		fmt.Println()
	}

	fmt.Printf("%-24s", "TOTAL")
	for _, month := range table.Months {
		fmt.Printf("  %10s", table.Totals[month].StringFixed(2))
	}
	fmt.Println()
}
