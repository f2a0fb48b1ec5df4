package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/code-merge/accompany/contracts"
	onboardinghandler "github.com/code-merge/accompany/domains/onboarding/be/handler"
	onboardingprov "github.com/code-merge/accompany/domains/onboarding/be/provisioning"
	onboardingservice "github.com/code-merge/accompany/domains/onboarding/be/service"
	"github.com/code-merge/accompany/domains/onboarding/be/session"
	"github.com/code-merge/accompany/platform/go/credentials"
	platformlogging "github.com/code-merge/accompany/platform/go/logging"
	platformmiddleware "github.com/code-merge/accompany/platform/go/middleware"
	"github.com/code-merge/accompany/platform/go/persistence"
)

type config struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	Superuser         string `env:"POSTGRES_SUPERUSER" envDefault:"postgres"`
	SuperuserPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresHost      string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort      int    `env:"POSTGRES_PORT" envDefault:"5432"`

	Home          string        `env:"ACCOMPANY_HOME"`            // defaults to ~/.accompany
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	DialTimeout   time.Duration `env:"PROVISION_DIAL_TIMEOUT" envDefault:"10s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "web-server",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	home := cfg.Home
	if home == "" {
		home, err = credentials.DefaultDir()
		if err != nil {
			logger.Fatal("resolve credentials dir", zap.Error(err))
		}
	}
	credStore := credentials.NewStore(home, logger)

	admin := persistence.AdminConfig{
		Superuser: cfg.Superuser,
		Password:  cfg.SuperuserPassword,
		Host:      cfg.PostgresHost,
		Port:      cfg.PostgresPort,
	}

	provisioner := onboardingprov.NewProvisioner(onboardingprov.ProvisionerConfig{
		Admin:       admin,
		Store:       credStore,
		Logger:      logger,
		DialTimeout: cfg.DialTimeout,
	})

	pipeline := onboardingservice.New(onboardingservice.ProvisioningDeps{
		DB:        provisioner,
		SchemaOps: onboardingprov.NewPoolFactory(logger),
	}, logger)

	sessions := session.NewStore(cfg.SessionTTL)
	codec := session.NewCodec([]byte(cfg.SessionSecret), cfg.SessionTTL)

	wizard := onboardinghandler.New(pipeline, credStore, logger)

	wizardValidator := platformmiddleware.SpecValidation(mustLoadSpec(logger))

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		platformmiddleware.DefaultCORS(),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", readyzHandler(admin, logger))

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, logger)

	rootRouter.Group(func(r chi.Router) {
		r.Use(session.Middleware(sessions, codec))
		r.Use(wizardValidator)

		// provisioning streams as long as the run needs; only the step
		// endpoints carry the request timeout
		r.Get("/finish-stream", wizard.FinishStream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
			r.Mount("/", wizard.Routes())
		})
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     rootRouter,
		ReadTimeout: 30 * time.Second,
		// no write timeout: the finish stream has no fixed deadline
		WriteTimeout: 0,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting web server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// mustLoadSpec parses the embedded wizard contract for the request validator.
func mustLoadSpec(logger *zap.Logger) *openapi3.T {
	spec, err := contracts.Onboarding()
	if err != nil {
		logger.Fatal("load onboarding contract", zap.Error(err))
	}
	return spec
}

// readyzHandler reports ready only when the configured Postgres superuser
// account answers a ping.
func readyzHandler(admin persistence.AdminConfig, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := persistence.CheckReachable(ctx, admin.MaintenanceURL()); err != nil {
			logger.Warn("postgres not reachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
