package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/httputil"
	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/pdf_tools/internal/config"
	"github.com/Vovarama1992/pdf_tools/internal/delivery"
	"github.com/Vovarama1992/pdf_tools/internal/domain"
	"github.com/Vovarama1992/pdf_tools/internal/error_notificator"
	"github.com/Vovarama1992/pdf_tools/internal/infra"
	"github.com/Vovarama1992/pdf_tools/internal/pdf"
	"github.com/Vovarama1992/pdf_tools/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {

	// =========================================================================
	// ENV / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var errInfra error_notificator.Notificator
	if cfg.AdminBotToken != "" && len(cfg.AdminChatIDs) > 0 {
		tg, err := error_notificator.NewInfra(cfg.AdminBotToken, cfg.AdminChatIDs)
		if err != nil {
			log.Printf("[error_notificator] telegram disabled: %v", err)
		} else {
			errInfra = tg
		}
	}
	errService := error_notificator.NewService(errInfra, baseLogger.Sugar())

	// =========================================================================
	// INFRASTRUCTURE
	// =========================================================================

	var s3Service ports.S3Service
	if cfg.S3.Enabled() {
		s3Client, err := newS3Client(cfg.S3)
		if err != nil {
			log.Fatalf("failed to init s3: %v", err)
		}
		s3Service = domain.NewS3Service(s3Client, errService)
	} else {
		log.Printf("[s3] S3_ENDPOINT/S3_BUCKET not set, storage delivery disabled")
	}

	var historyService ports.HistoryService
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer db.Close()

		historyRepo := infra.NewHistoryRepo(db)
		if err := initHistory(db, historyRepo); err != nil {
			log.Fatalf("history db: %v", err)
		}

		historyService = domain.NewHistoryService(historyRepo, errService)
	}

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	pdfService := pdf.NewPDFService(pdf.NewPdfcpuEngine())

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Client-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Page-Count"},
	}))

	// HANDLERS
	pdfHandler := delivery.NewPDFHandler(pdfService, s3Service, historyService, errService, zl, cfg.MaxUploadBytes)
	var historyHandler *delivery.HistoryHandler
	if historyService != nil {
		historyHandler = delivery.NewHistoryHandler(historyService, zl)
	}

	// ROUTES
	delivery.RegisterRoutes(
		r,
		pdfHandler,
		historyHandler,
		delivery.NewInFlightGuard(),
		cfg.RateLimitPerMin,
	)

	r.With(httputil.RecoverMiddleware).Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("pong"))
	})

	// =========================================================================
	// BACKGROUND JOBS
	// =========================================================================

	if cfg.Retention > 0 && (s3Service != nil || historyService != nil) {
		go func() {
			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()

			for range ticker.C {
				ctx := context.Background()
				if s3Service != nil {
					if n, err := s3Service.Sweep(ctx, cfg.Retention); err != nil {
						log.Printf("[s3-sweep] error: %v", err)
					} else {
						log.Printf("[s3-sweep] removed %d expired objects", n)
					}
				}
				if historyService != nil {
					if n, err := historyService.Prune(ctx, cfg.Retention); err != nil {
						log.Printf("[history-prune] error: %v", err)
					} else {
						log.Printf("[history-prune] removed %d old operations", n)
					}
				}
			}
		}()
	}

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.Port
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr,
		Service: "pdf_tools",
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// log.Fatalf не выполняет defer, поэтому таймауты старта живут в отдельных функциях.
func newS3Client(cfg config.S3Config) (ports.S3Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return infra.NewS3Client(ctx, cfg)
}

func initHistory(db *sql.DB, repo ports.HistoryRepo) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
