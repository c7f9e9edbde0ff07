package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tutorhub-service/internal/config"
	bookingCancel "tutorhub-service/internal/http-server/handlers/bookings/cancel"
	bookingCreate "tutorhub-service/internal/http-server/handlers/bookings/create"
	bookingGet "tutorhub-service/internal/http-server/handlers/bookings/get"
	bookingList "tutorhub-service/internal/http-server/handlers/bookings/list"
	bookingStatus "tutorhub-service/internal/http-server/handlers/bookings/status"
	pkgAvailability "tutorhub-service/internal/http-server/handlers/packages/availability"
	pkgCancel "tutorhub-service/internal/http-server/handlers/packages/cancel"
	pkgCreate "tutorhub-service/internal/http-server/handlers/packages/create"
	pkgGet "tutorhub-service/internal/http-server/handlers/packages/get"
	pkgList "tutorhub-service/internal/http-server/handlers/packages/list"
	pkgPayment "tutorhub-service/internal/http-server/handlers/packages/payment"
	paymentFailure "tutorhub-service/internal/http-server/handlers/payments/failure"
	paymentHistory "tutorhub-service/internal/http-server/handlers/payments/history"
	paymentOrder "tutorhub-service/internal/http-server/handlers/payments/order"
	paymentVerify "tutorhub-service/internal/http-server/handlers/payments/verify"
	sessionAttendance "tutorhub-service/internal/http-server/handlers/sessions/attendance"
	slotGet "tutorhub-service/internal/http-server/handlers/slots/get"
	"tutorhub-service/internal/lock"
	"tutorhub-service/internal/payment"
	svc "tutorhub-service/internal/service"
	"tutorhub-service/internal/storage/postgres"
	"tutorhub-service/pkg/handlers/slogpretty"
	"tutorhub-service/pkg/middleware/mwlogger"
	"tutorhub-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting API", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.New(cfg.StoragePath)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	if err := storage.Migrate(migrateCtx); err != nil {
		migrateCancel()
		log.Error("Failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}
	migrateCancel()

	locker, err := lock.NewRedisLock(cfg.RedisAddr)
	if err != nil {
		log.Error("Failed to init redis lock", sl.Err(err))
		os.Exit(1)
	}

	payments := payment.New(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	service := svc.NewService(storage, locker, payments)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)

	// Packages
	router.Post("/packages/availability", pkgAvailability.New(log, service))
	router.Post("/packages", pkgCreate.New(log, service))
	router.Get("/packages/{id}", pkgGet.New(log, service))
	router.Put("/packages/{id}/cancel", pkgCancel.New(log, service))
	router.Put("/packages/{id}/payment", pkgPayment.New(log, service))
	router.Get("/students/{student_id}/packages", pkgList.New(log, service))

	// Bookings
	router.Post("/bookings", bookingCreate.New(log, service))
	router.Get("/bookings/{id}", bookingGet.New(log, service))
	router.Put("/bookings/{id}/cancel", bookingCancel.New(log, service))
	router.Put("/bookings/{id}/status", bookingStatus.New(log, service))
	router.Get("/teachers/{teacher_id}/bookings", bookingList.New(log, service))
	router.Get("/students/{student_id}/bookings", bookingList.New(log, service))

	// Sessions
	router.Put("/sessions/{id}/attendance", sessionAttendance.New(log, service))

	// Slots
	router.Get("/teachers/{teacher_id}/slots", slotGet.New(log, service))

	// Payments
	router.Post("/payments/order", paymentOrder.New(log, service))
	router.Post("/payments/verify", paymentVerify.New(log, service))
	router.Post("/payments/failure", paymentFailure.New(log, service))
	router.Get("/payments/history/{user_id}", paymentHistory.New(log, service))

	serv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	serverErrCh := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", slog.String("addr", cfg.Address))
		if err := serv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		} else {
			serverErrCh <- nil
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case err := <-serverErrCh:
		if err != nil {
			log.Error("HTTP server stopped unexpectedly", sl.Err(err))
		} else {
			log.Info("HTTP server stopped gracefully")
		}
	}

	shutdownTimeout := cfg.HTTPServer.ShutdownTimeout

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info("Shutting down HTTP server", slog.String("timeout", shutdownTimeout.String()))

	if err := serv.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	} else {
		log.Info("Server shutdown complete")
	}

	if storage != nil {
		if err := storage.Close(); err != nil {
			log.Error("Failed to close storage", sl.Err(err))
		} else {
			log.Info("Storage closed")
		}
	} else {
		log.Debug("Storage is nil, nothing to close")
	}

	if locker != nil {
		if err := locker.Close(); err != nil {
			log.Error("Failed to close locker", sl.Err(err))
		} else {
			log.Info("Locker closed")
		}
	}

	log.Info("Shutdown finished, server stopped")

}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
