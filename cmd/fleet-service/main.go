package main

import (
	"fmt"
	"os"

	"fleet-service/internal/auth"
	"fleet-service/internal/client"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	vehicleRepo := repository.NewVehicleRepository(database)
	bookingRepo := repository.NewBookingRepository(database)
	issueRepo := repository.NewIssueRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	mileageRepo := repository.NewMileageRepository(database)
	branchRepo := repository.NewBranchRepository(database)

	notifier := client.NewNotifierClient(cfg, appLogger)

	vehicleService := service.NewVehicleService(vehicleRepo, bookingRepo, issueRepo, activityRepo, mileageRepo)
	bookingService := service.NewBookingService(bookingRepo, vehicleRepo, notifier)
	availabilityService := service.NewAvailabilityService(vehicleRepo, bookingRepo)
	issueService := service.NewIssueService(issueRepo, vehicleRepo, activityRepo)
	dashboardService := service.NewDashboardService(vehicleRepo, bookingRepo, issueRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		vehicleService,
		bookingService,
		availabilityService,
		issueService,
		dashboardService,
		branchRepo,
		appLogger,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
