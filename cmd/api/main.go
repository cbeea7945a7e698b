package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/finclaro/cashflow/internal/api/handlers"
	"github.com/finclaro/cashflow/internal/api/middleware"
	"github.com/finclaro/cashflow/internal/calendar"
	"github.com/finclaro/cashflow/internal/cashflow"
	"github.com/finclaro/cashflow/internal/config"
	"github.com/finclaro/cashflow/internal/gcsexport"
	infraBQ "github.com/finclaro/cashflow/internal/infra/bigquery"
	"github.com/finclaro/cashflow/internal/jobs"
	"github.com/finclaro/cashflow/internal/jobs/inmemory"
	"github.com/finclaro/cashflow/internal/logger"
	"github.com/finclaro/cashflow/internal/msi"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.GCSBucket == "" {
		log.Warn().Msg("No GCS bucket configured - report exports will be disabled")
	}

	ctx := context.Background()

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery, cfg.EnableLegacyChatFallback)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	service := cashflow.NewService(repo, msi.ParsePolicy(cfg.MSIFallback), cfg.EnableNoRuleFallback, log)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	uploader := gcsexport.NewGCSUploader(cfg.GCSBucket)
	jobHandler := exportJobHandler(service, uploader, cfg.GCSBucket, log)

	go func() {
		log.Info().Msg("Starting export worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Export worker stopped with error")
		}
	}()

	// Initialize handlers
	cashflowHandler := handlers.NewCashflowHandler(service, log)
	expensesHandler := handlers.NewExpensesHandler(repo, log)
	cardsHandler := handlers.NewCardsHandler(repo, log)
	exportsHandler := handlers.NewExportsHandler(jobQueue, jobStore, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/cashflow", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cashflowHandler.GetTable(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/expenses", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			expensesHandler.ListExpenses(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/cards", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cardsHandler.ListCards(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/exports", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			exportsHandler.CreateExport(w, r)
		case http.MethodGet:
			exportsHandler.ListExports(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/exports/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/exports/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Export ID is required")
				return
			}
			exportsHandler.GetExport(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

// exportJobHandler builds the table for the job's range, renders it and
// uploads the result. The queue persists job state around this call.
func exportJobHandler(service *cashflow.Service, uploader gcsexport.Uploader, bucket string, log zerolog.Logger) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		exportJob, ok := job.(*jobs.ExportReportJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		if bucket == "" {
			return fmt.Errorf("no GCS bucket configured")
		}

		from, ok := calendar.NormalizeMonthStart(exportJob.From)
		if !ok {
			return fmt.Errorf("invalid from month: %q", exportJob.From)
		}
		to, ok := calendar.NormalizeMonthStart(exportJob.To)
		if !ok {
			return fmt.Errorf("invalid to month: %q", exportJob.To)
		}
		format, err := gcsexport.ParseFormat(exportJob.Format)
		if err != nil {
			return err
		}

		table, err := service.Table(ctx, exportJob.Owner, from, to)
		if err != nil {
			return fmt.Errorf("building table: %w", err)
		}

		data, err := gcsexport.Render(table, format)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}

		objectName := gcsexport.ObjectName(exportJob.Owner, exportJob.From, exportJob.To, format, time.Now())
		uri, err := uploader.Upload(ctx, objectName, data, format.ContentType())
		if err != nil {
			return fmt.Errorf("uploading report: %w", err)
		}
		exportJob.GCSURI = uri

		log.Info().
			Str("job_id", exportJob.JobID).
			Str("gcs_uri", uri).
			Int("bytes", len(data)).
			Msg("Report exported")

		return nil
	}
}
