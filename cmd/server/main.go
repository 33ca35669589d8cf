package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"acadsys/internal/auth"
	"acadsys/internal/bulk"
	"acadsys/internal/config"
	"acadsys/internal/gateway"
	"acadsys/internal/grading"
	"acadsys/internal/schedule"
	"acadsys/internal/store"
)

func main() {
	log.Println("INFO: Starting Academic Administration Server...")

	if err := config.LoadEnv(".env"); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 1. Connect to MongoDB
	db, err := store.Connect(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatalf("FATAL: Failed to create indexes: %v", err)
	}
	indexCancel()

	// 2. Construct Domain Services
	guard := auth.NewAttemptGuard()
	sessions := auth.NewSessionStore()
	authService := auth.NewService(
		db, guard, sessions,
		cfg.Security.JWTSecret,
		time.Duration(cfg.Security.JWTExpirationHours)*time.Hour,
		cfg.Security.BCryptCost,
	)
	ledger := grading.NewLedger(db)
	scheduleService := schedule.NewService(db)
	reconciler := bulk.NewReconciler(db, ledger, cfg.Security.BCryptCost)

	// 3. Setup Routes and Middleware
	router := gateway.SetupRoutes(cfg, &gateway.Services{
		Auth:       authService,
		Ledger:     ledger,
		Schedule:   scheduleService,
		Reconciler: reconciler,
	})

	// 4. Configure Server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Run until interrupted, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Printf("INFO: Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Println("INFO: Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	log.Println("INFO: Server stopped.")
}
