package main

import (
	"chat-feed/auth"
	"chat-feed/feed"
	"chat-feed/infrastructure/grpc/server"
	"chat-feed/infrastructure/httpapi"
	"chat-feed/infrastructure/ws"
	"chat-feed/internal"
	"chat-feed/observability"
	"chat-feed/repositories"
	"chat-feed/runtime"
	"chat-feed/runtime/workers"
	"chat-feed/services"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and owns the shutdown order,
// so deferred cleanups such as closing Badger always run before exit.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if err := internal.LoadEnv(&config); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	charReplacement, err := internal.CharacterRune(config.ModerationCharReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories, pagination and moderation
	messages := repositories.NewMessageRepository(db, log)
	users := repositories.NewUserRepository(db, log)
	rooms := repositories.NewRoomRepository(db)
	paginator := feed.NewPaginator(messages, feed.NewEnricher(users, log), config.MaxPageSize, log)
	moderator, err := runtime.LoadModerator(log, charReplacement)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewFeedMetrics(registry)

	// 4. Live views
	orchestrator := runtime.NewOrchestrator(
		log, workers.NewSupervisor(log, config.RestartInterval), runtime.NewRegistry(), paginator, metrics,
		config.NumberOfWorkers, config.LiveCoalesceWindow, config.SinkTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	orchestrator.Start(ctx)

	// 5. Services
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	interceptor := auth.NewInterceptor(tokens, server.PublicMethods...)
	chatService := services.NewChatService(log, messages, rooms, users, paginator, orchestrator,
		moderator, metrics, config.MaxContentLength)
	authService := services.NewAuthService(log, users, tokens)

	general, err := rooms.EnsureRoom(ctx, config.GeneralRoomName, "Everyone is welcome", "system")
	if err != nil {
		return fmt.Errorf("general room setup failed: %w", err)
	}
	log.Info("General room ready", "room_id", general.ID, "name", general.Name)

	// 6. Listeners
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	grpcServer := server.New(log, interceptor, chatService, authService)

	gateway := ws.NewGateway(log, chatService, interceptor, config.ConnectionBufferSize, config.DefaultPageSize)
	wsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.WSPort),
		Handler:           httpapi.NewPublicRouter(gateway),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.MetricsPort),
		Handler:           httpapi.NewOpsRouter(log, registry, internal.InspectHandler(db, internal.MessageMapper)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 3)
	go func() {
		log.Info("Starting gRPC server", "address", address)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	for _, srv := range []*http.Server{wsServer, metricsServer} {
		go func() {
			log.Info("Starting HTTP server", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("HTTP server %s error: %w", srv.Addr, err)
			}
		}()
	}

	// 7. Wait for Stop or Error
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case runErr = <-errChan:
		log.Error("Server failed, shutting down", "error", runErr)
	}

	// 8. Final Cleanup: live streams end once their subscriptions are closed
	orchestrator.Stop()
	grpcServer.GracefulStop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range []*http.Server{wsServer, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown failed", "address", srv.Addr, "error", err)
		}
	}
	log.Info("Program stopped cleanly")
	return runErr
}
