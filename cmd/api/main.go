package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Recurse-ML/logfire-example/internal/application/user"
	"github.com/Recurse-ML/logfire-example/internal/config"
	"github.com/Recurse-ML/logfire-example/internal/faultpoint"
	"github.com/Recurse-ML/logfire-example/internal/infrastructure/dynamo"
	jwtinfra "github.com/Recurse-ML/logfire-example/internal/infrastructure/jwt"
	s3infra "github.com/Recurse-ML/logfire-example/internal/infrastructure/s3"
	"github.com/Recurse-ML/logfire-example/internal/infrastructure/smtp"
	"github.com/Recurse-ML/logfire-example/internal/infrastructure/sns"
	"github.com/Recurse-ML/logfire-example/internal/observe"
	transporthttp "github.com/Recurse-ML/logfire-example/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()

	// Wait for the database, then bootstrap tables (creates them if missing).
	dynamoClient := dynamo.NewClient(cfg)
	if err := dynamo.WaitReady(context.Background(), dynamoClient, 300, time.Second); err != nil {
		slog.Error("database never became ready", "err", err)
		os.Exit(1)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("JWT provider not available", "err", err)
		os.Exit(1)
	}

	// Alert reporting. Archive and fan-out are optional extras on top of
	// backend delivery.
	source := observe.ResolveCodeSource(cfg)
	slog.Info("alert code source", "repository", source.Repository, "revision", source.Revision)
	var reporter observe.Reporter = observe.LogReporter{}
	if cfg.AlertBackendURL != "" {
		var opts []observe.ReporterOption
		if cfg.AlertBucketName != "" {
			opts = append(opts, observe.WithArchiver(
				s3infra.NewArchive(s3infra.NewClient(cfg), cfg.AlertBucketName),
			))
		}
		if cfg.AlertTopicARN != "" {
			if pub, err := sns.NewTopicPublisher(cfg); err == nil {
				opts = append(opts, observe.WithPublisher(pub))
			} else {
				slog.Warn("SNS publisher not available", "err", err)
			}
		}
		reporter = observe.NewBackendReporter(cfg.AlertBackendURL, cfg.AlertWriteToken, opts...)
	} else {
		slog.Warn("no alert backend configured, events go to the log only")
	}

	faults := faultpoint.NewRegistry(cfg.FaultPoints)
	slog.Info("armed fault points", "points", cfg.FaultPoints)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)

	// Seed initial data.
	userSvc := user.NewService(userRepo)
	if err := userSvc.SeedFirstSuperuser(context.Background(), cfg.FirstSuperuserEmail, cfg.FirstSuperuserPassword); err != nil {
		slog.Error("initial data", "err", err)
		os.Exit(1)
	}

	deps := &transporthttp.Deps{
		UserRepo:       userRepo,
		ItemRepo:       dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items),
		RecoveryRepo:   dynamo.NewRecoveryRepo(dynamoClient, cfg.DynamoTables.RecoveryTokens),
		LoginEventRepo: dynamo.NewLoginEventRepo(dynamoClient, cfg.DynamoTables.LoginEvents),
		Mailer:         smtp.NewMailer(cfg),
		JWTProvider:    jwtProvider,
		Reporter:       reporter,
		CodeSource:     source,
		Faults:         faults,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
