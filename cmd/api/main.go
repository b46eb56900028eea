package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gegsoft/paytrack-backend/api/routes"
	"github.com/gegsoft/paytrack-backend/internal/activity"
	"github.com/gegsoft/paytrack-backend/internal/auth"
	"github.com/gegsoft/paytrack-backend/internal/contractors"
	"github.com/gegsoft/paytrack-backend/internal/contracts"
	"github.com/gegsoft/paytrack-backend/internal/dashboard"
	"github.com/gegsoft/paytrack-backend/internal/payments"
	"github.com/gegsoft/paytrack-backend/internal/projects"
	"github.com/gegsoft/paytrack-backend/internal/users"
	"github.com/gegsoft/paytrack-backend/pkg/auth/session"
	"github.com/gegsoft/paytrack-backend/pkg/config"
	"github.com/gegsoft/paytrack-backend/pkg/db"
	"github.com/gegsoft/paytrack-backend/pkg/logger"
	"github.com/gegsoft/paytrack-backend/pkg/metrics"
	"github.com/gegsoft/paytrack-backend/pkg/migrate"
	"github.com/gegsoft/paytrack-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	projectsRepo := projects.NewRepository(dbClient.DB())
	contractorsRepo := contractors.NewRepository(dbClient.DB())
	contractsRepo := contracts.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	activityRepo := activity.NewRepository(dbClient.DB())

	activityService, err := activity.NewService(activityRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Recorder:       activityService,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(userRepo, cfg.Password, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	projectsService, err := projects.NewService(projectsRepo, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	contractorsService, err := contractors.NewService(contractorsRepo, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create contractors service", err)
		os.Exit(1)
	}

	contractsService, err := contracts.NewService(contractsRepo, projectsRepo, contractorsRepo, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create contracts service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(paymentsRepo, dbClient, contractsRepo, projectsRepo, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(projectsRepo, paymentsRepo, activityService)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:             cfg,
			Logger:             logg,
			DBPinger:           dbClient,
			RedisPinger:        redisClient,
			SessionChecker:     sessionManager,
			HTTPMetrics:        httpMetrics,
			AuthService:        authService,
			UsersService:       usersService,
			ProjectsService:    projectsService,
			ContractorsService: contractorsService,
			ContractsService:   contractsService,
			PaymentsService:    paymentsService,
			ActivityService:    activityService,
			DashboardService:   dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
