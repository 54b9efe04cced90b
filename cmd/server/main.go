package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knowelle28/autobook/internal/config"
	"github.com/knowelle28/autobook/internal/db"
	"github.com/knowelle28/autobook/internal/handler"
	"github.com/knowelle28/autobook/internal/metrics"
	"github.com/knowelle28/autobook/internal/repository"
	"github.com/knowelle28/autobook/internal/server"
	"github.com/knowelle28/autobook/internal/service"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}

	metrics.Register()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	serviceRepo := repository.ServiceRepository{DB: pg}
	staffRepo := repository.StaffRepository{DB: pg}
	hoursRepo := repository.HoursRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	bookingRepo := repository.BookingRepository{DB: pg}

	if cfg.AdminPassword != "" {
		created, err := userRepo.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.Error("failed to seed admin", "err", err)
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap admin created", "email", cfg.AdminEmail)
		}
	}
	if cfg.SeedDemoData {
		if err := serviceRepo.SeedDefaults(ctx); err != nil {
			logger.Error("failed to seed services", "err", err)
			os.Exit(1)
		}
		if err := staffRepo.SeedDefaults(ctx); err != nil {
			logger.Error("failed to seed staff", "err", err)
			os.Exit(1)
		}
	}

	// services
	authService := service.AuthService{Config: cfg, Users: userRepo, Logger: logger}
	bookingService := &service.BookingService{
		Services: serviceRepo,
		Staff:    staffRepo,
		Hours:    hoursRepo,
		Settings: settingsRepo,
		Bookings: bookingRepo,
		Logger:   logger,
		Now:      time.Now,
	}

	// handlers
	router := server.NewRouter(cfg, logger,
		handler.HealthHandler{DB: pg},
		handler.AuthHandler{Service: authService},
		handler.ServiceHandler{Repo: serviceRepo},
		handler.StaffHandler{Repo: staffRepo},
		handler.BookingHandler{Service: bookingService, Repo: bookingRepo},
		handler.HoursHandler{Repo: hoursRepo},
		handler.SettingsHandler{Service: bookingService},
		handler.AdminHandler{Service: bookingService, Repo: bookingRepo},
	)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
