// Entry point for REST API
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ponto.service/internal/api"
	"ponto.service/internal/config"
	"ponto.service/internal/core"
	"ponto.service/internal/ports/evidence"
	"ponto.service/internal/ports/messaging"
	"ponto.service/internal/ports/repository"
	"ponto.service/pkg/aws"
	"ponto.service/pkg/database"
	"ponto.service/pkg/logger"
	"ponto.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup("ponto-api", cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("ponto-api", cfg.OTLPEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error running migrations")
	}

	loc, err := time.LoadLocation(cfg.ReferenceTimezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.ReferenceTimezone).Msg("Unknown reference timezone")
	}

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.IsLocalDev // LocalStack needs path-style addressing
	})

	punches := repository.NewPunchRepository(db, cfg.ReferenceTimezone)
	payments := repository.NewPaymentRepository(db)
	jobs := repository.NewClosureJobRepository(db)
	producer := messaging.NewSQSProducer(sqsClient, cfg.ClosureSQSQueueURL, cfg.EmailSQSQueueURL)
	evidenceStore := evidence.NewS3Store(s3Client, cfg.EvidenceBucket)

	pontoService := core.NewPontoService(punches, payments, jobs, producer, loc, cfg.PendingLookbackDays)
	paymentService := core.NewPaymentService(punches, payments, loc)

	// Setup router and server
	router := api.NewRouter(pontoService, paymentService, evidenceStore, loc)

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(loggerMiddleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Ponto API starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
