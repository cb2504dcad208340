package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	apihttp "interview-memory-service/internal/api/http"
	"interview-memory-service/internal/config"
	"interview-memory-service/internal/events"
	memoryservice "interview-memory-service/internal/memory/service"
	"interview-memory-service/internal/memory/store"
	"interview-memory-service/internal/observability"
	"interview-memory-service/internal/observability/logging"
	"interview-memory-service/internal/service/embed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     os.Getenv("LOG_FORMAT"),
		TimeFormat: time.RFC3339,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	client, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()

	embedder, err := embed.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create embedding client")
	}

	memories := memoryservice.New(
		embedder,
		store.NewMongoStore(client, cfg.Mongo),
		memoryservice.WithDefaultLimit(cfg.Search.DefaultLimit),
		memoryservice.WithNumCandidates(cfg.Search.NumCandidates),
	)

	// Kafka publisher for transcript events; log-only when disabled
	publisher := events.New(&events.Config{
		Enabled:         cfg.Kafka.Enabled,
		Brokers:         cfg.Kafka.Brokers,
		TopicFragment:   cfg.Kafka.TopicFragment,
		TopicAnnotation: cfg.Kafka.TopicAnnotation,
		Principal:       cfg.Kafka.Principal,
	})
	defer publisher.Close()

	// Metrics and health endpoints on their own port
	metricsServer := observability.NewServer(":" + cfg.Service.MetricsPort)
	metricsServer.Start()

	// REST API
	httpServer := &http.Server{
		Addr:    ":" + cfg.Service.HTTPPort,
		Handler: apihttp.NewRouter(memories),
	}
	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen on gRPC port")
	}

	server := grpc.NewServer()

	// Register gRPC health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	go func() {
		log.Info().Str("port", cfg.Service.GRPCPort).Msg("gRPC server listening")
		if err := server.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("gRPC serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Observability.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown error")
	}
	server.GracefulStop()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Metrics server shutdown error")
	}
}
