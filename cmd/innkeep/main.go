package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/quietbay/innkeep/internal/adapter/fsm"
	"github.com/quietbay/innkeep/internal/adapter/otel"
	"github.com/quietbay/innkeep/internal/adapter/sqlite"
	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/config"

	handler "github.com/quietbay/innkeep/internal/adapter/http"
	riverq "github.com/quietbay/innkeep/internal/adapter/river"
)

func main() {
	if err := run(); err != nil {
		slog.Error("innkeep failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// --- Observability ---
	providers, err := otel.Setup(ctx, otel.ConfigFromEnv())
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return err
	}

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return err
	}
	defer store.Close()

	clock := app.NewSystemClock(cfg.Timezone)

	riverClient, scheduler, err := riverq.Setup(ctx, db, riverq.Schedule{
		ReminderHour: cfg.ReminderHour,
		CheckoutHour: cfg.CheckoutHour,
		Location:     cfg.Timezone,
	})
	if err != nil {
		return err
	}

	publisher := otel.NewTracingPublisher(riverq.NewPublisher(riverClient))
	stayRepo := otel.NewTracingStayRepository(store.Stays)
	ledgerRepo := otel.NewTracingLedgerRepository(store.Ledger)

	// --- Application ---
	conflicts := app.NewConflictChecker(store.Reservations, stayRepo, clock)
	codes := app.NewCodeAllocator(store.Reservations, stayRepo, ledgerRepo)

	rooms := app.NewRoomService(store.Rooms, fsm.New(), conflicts, clock)
	ledger := app.NewLedgerService(ledgerRepo, codes, publisher, clock)
	stays := app.NewStayService(stayRepo, store.Reservations, rooms, conflicts, codes, ledger, publisher, clock)
	reservations := app.NewReservationService(store.Reservations, store.Rooms, stays, conflicts, codes, publisher, clock)

	scheduler.Bind(stays)
	if err := riverClient.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			slog.Error("river shutdown", "error", err)
		}
	}()

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("innkeep", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("innkeep", "0.1.0"))
	handler.Register(api, handler.Services{
		Rooms:        rooms,
		Reservations: reservations,
		Stays:        stays,
		Ledger:       ledger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errc := make(chan error, 1)
	go func() {
		slog.Info("innkeep listening", "port", cfg.Port, "timezone", cfg.Timezone.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-done:
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown", "error", err)
	}

	return nil
}
