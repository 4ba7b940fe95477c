package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Ivan-Lazz/thePayRoll/internal/auth"
	"github.com/Ivan-Lazz/thePayRoll/internal/config"
	"github.com/Ivan-Lazz/thePayRoll/internal/events"
	"github.com/Ivan-Lazz/thePayRoll/internal/handlers"
	"github.com/Ivan-Lazz/thePayRoll/internal/httpserver"
	"github.com/Ivan-Lazz/thePayRoll/internal/logging"
	loggingmw "github.com/Ivan-Lazz/thePayRoll/internal/middleware/logging"
	"github.com/Ivan-Lazz/thePayRoll/internal/pdf"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := config.InitDB(logging.IntoContext(ctx, logger), cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	csrfIssuer := token.NewCSRFIssuer(cfg.CSRFTokenTTL)
	store := session.NewStore()
	gate := auth.NewGate(store, codec, cfg.SessionTimeout)

	stopJanitor := make(chan struct{})
	go store.Janitor(gate.Timeout, time.Minute, stopJanitor)

	producer := events.NewProducer(cfg.KafkaBrokers)
	generator := pdf.NewGenerator(cfg.PDFPath, cfg.CompanyName)

	secureCookies := cfg.AppEnv == "production"

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, httpserver.Deps{
		DB:    db,
		Gate:  gate,
		Store: store,
		CSRF:  csrfIssuer,

		Auth: &handlers.AuthHandler{
			DB:            db,
			Gate:          gate,
			Codec:         codec,
			CSRF:          csrfIssuer,
			Store:         store,
			Producer:      producer,
			SecureCookies: secureCookies,
		},
		Users:     &handlers.UserHandler{DB: db, Producer: producer},
		Employees: &handlers.EmployeeHandler{DB: db, Producer: producer},
		Accounts:  &handlers.AccountHandler{DB: db, Producer: producer},
		Banking:   &handlers.BankingHandler{DB: db, Producer: producer},
		Payslips:  &handlers.PayslipHandler{DB: db, PDF: generator, Producer: producer},

		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(stopJanitor)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
