package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthmarket/internal/adapters/cache"
	"github.com/zatekoja/healthmarket/internal/adapters/database"
	"github.com/zatekoja/healthmarket/internal/adapters/events"
	"github.com/zatekoja/healthmarket/internal/adapters/providers/payment"
	"github.com/zatekoja/healthmarket/internal/adapters/providers/recommendation"
	"github.com/zatekoja/healthmarket/internal/adapters/search"
	"github.com/zatekoja/healthmarket/internal/adapters/storage"
	"github.com/zatekoja/healthmarket/internal/api/handlers"
	"github.com/zatekoja/healthmarket/internal/api/middleware"
	"github.com/zatekoja/healthmarket/internal/api/routes"
	"github.com/zatekoja/healthmarket/internal/application/services"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/openai"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
	"github.com/zatekoja/healthmarket/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/healthmarket/internal/infrastructure/observability"
	"github.com/zatekoja/healthmarket/pkg/config"
)

// app holds the wired application
type app struct {
	cfg     *config.Config
	metrics *observability.Metrics
	store   providers.StorageProvider
	redis   *redisclient.Client

	users     repositories.UserRepository
	doctors   repositories.DoctorRepository
	medicines repositories.MedicineRepository
	labTests  repositories.LabTestRepository

	catalog  *services.CatalogService
	eventBus providers.EventBus
	streams  *handlers.SSEHandler
	closers  []func() error
}

// newApp connects the configured backends and builds the repositories and
// services shared by every command
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.metrics = metrics

	var backends storage.Backends
	if cfg.Storage.Backend == "postgres" {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pgClient.Close)
		backends.Postgres = pgClient
	}
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(ctx, &cfg.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		backends.Redis = redisClient
	}

	store, err := storage.New(ctx, cfg.Storage, backends)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = storage.Instrument(store, cfg.Storage.Backend, metrics)
	a.redis = backends.Redis
	log.Info().Str("backend", cfg.Storage.Backend).Msg("storage initialized")

	a.users = database.NewUserAdapter(a.store)
	a.doctors = database.NewDoctorAdapter(a.store)
	a.medicines = database.NewMedicineAdapter(a.store)
	a.labTests = database.NewLabTestAdapter(a.store)
	a.catalog = services.NewCatalogService(a.doctors, a.medicines, a.labTests)

	if backends.Redis != nil {
		a.eventBus = events.NewRedisEventBus(backends.Redis)
	} else {
		a.eventBus = events.NewMemoryEventBus()
	}
	a.closers = append(a.closers, a.eventBus.Close)

	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("typesense unavailable, doctor search uses the catalog scan")
		} else {
			index := search.NewTypesenseAdapter(tsClient)
			if err := index.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to initialize typesense schema")
			}
			a.catalog.SetSearchIndex(index)
		}
	}

	return a, nil
}

// handler builds the HTTP API over the app's repositories
func (a *app) handler() (http.Handler, error) {
	cfg := a.cfg
	store := a.store

	appointments := database.NewAppointmentAdapter(store)
	orders := database.NewMedicineOrderAdapter(store)
	labBookings := database.NewLabBookingAdapter(store)
	addresses := database.NewAddressAdapter(store)
	activity := database.NewActivityAdapter(store)
	wishlists := database.NewWishlistAdapter(store)

	tokens, err := services.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	appointmentService := services.NewAppointmentService(appointments, a.doctors, cfg.Pricing)
	orderService := services.NewMedicineOrderService(orders, a.medicines, addresses, cfg.Pricing)
	labService := services.NewLabBookingService(labBookings, a.labTests, addresses, cfg.Pricing)
	appointmentService.SetEventBus(a.eventBus)
	appointmentService.SetMetrics(a.metrics)
	orderService.SetEventBus(a.eventBus)
	orderService.SetMetrics(a.metrics)
	labService.SetEventBus(a.eventBus)
	labService.SetMetrics(a.metrics)

	userService := services.NewUserService(a.users, activity, tokens)

	recommendationService := a.recommendations()

	var cacheMiddleware *middleware.CacheMiddleware
	if a.redis != nil {
		responseCache := cache.NewRedisAdapter(a.redis, cfg.Storage.KeyPrefix+"cache:")
		recommendationService.SetCache(responseCache)
		cacheMiddleware = middleware.NewCacheMiddleware(responseCache, a.metrics)
	}

	paymentService := services.NewPaymentService(payment.NewQRCodeProvider(), cfg.Payment)
	reportService := services.NewReportService(orders, labBookings, appointments)
	a.streams = handlers.NewSSEHandler(a.eventBus, appointmentService, orderService, labService)

	router := routes.NewRouter(routes.Handlers{
		Catalog:     handlers.NewCatalogHandler(a.catalog),
		Appointment: handlers.NewAppointmentHandler(appointmentService),
		Order:       handlers.NewOrderHandler(orderService),
		Lab:         handlers.NewLabHandler(labService),
		Account: handlers.NewAccountHandler(
			userService,
			services.NewAddressService(addresses),
			services.NewWishlistService(wishlists, a.medicines),
			services.NewActivityService(activity),
		),
		Assist: handlers.NewAssistHandler(recommendationService, paymentService),
		Report: handlers.NewReportHandler(reportService),
		SSE:    a.streams,
	}, userService, cacheMiddleware, cfg.Server.AllowedOrigins, a.metrics)

	return router.SetupRoutes(), nil
}

// recommendations builds the specialty recommender, using OpenAI when a key
// is configured
func (a *app) recommendations() *services.RecommendationService {
	var ai providers.RecommendationProvider
	if a.cfg.OpenAI.APIKey != "" {
		client, err := openai.NewClient(&a.cfg.OpenAI)
		if err != nil {
			log.Warn().Err(err).Msg("openai client unavailable, using keyword recommendations")
		} else {
			ai = client
		}
	}
	svc := services.NewRecommendationService(ai, recommendation.NewKeywordProvider(), a.doctors)
	svc.SetMetrics(a.metrics)
	return svc
}

// Close releases backend connections in reverse order
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn().Err(err).Msg("errors while closing backends")
	}
}

// setupTelemetry starts OTLP export when enabled and returns its shutdown
func setupTelemetry(ctx context.Context, cfg *config.Config) func() {
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint == "" {
		return func() {}
	}
	shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
	if err != nil {
		log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		return func() {}
	}
	log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down OpenTelemetry")
		}
	}
}
