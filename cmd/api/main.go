package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/inventory"
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal outside development.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using process environment")
	}
	logger.Info().Msg("starting storefront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	apptRepo := repository.NewAppointmentRepository(pool, logger)
	dashboardRepo := repository.NewDashboardRepository(pool, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	dispatcher, err := newDispatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Notify.Timeout)
		defer closeCancel()
		if err := dispatcher.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("failed to drain notifications")
		}
	}()

	book, err := newPromoBook(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize promo codes: %w", err)
	}
	defer book.Close()

	pricing := service.Pricing{
		TaxRate:     cfg.Checkout.TaxRate,
		ShippingFee: cfg.Checkout.ShippingFee,
	}

	// Services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	orderService := service.NewOrderService(
		orderRepo,
		cartRepo,
		productRepo,
		userRepo,
		inventory.NewAdjuster(productRepo, logger),
		book,
		dispatcher,
		pricing,
		logger,
	)
	authService := service.NewAuthService(userRepo, tokens, logger)
	apptService := service.NewAppointmentService(apptRepo, userRepo, dispatcher, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, logger)

	mux := router.New(router.Handlers{
		Auth:        handler.NewAuthHandler(authService, logger),
		Products:    handler.NewProductHandler(productService, logger),
		Cart:        handler.NewCartHandler(cartService, logger),
		Orders:      handler.NewOrderHandler(orderService, logger),
		Appointment: handler.NewAppointmentHandler(apptService, logger),
		Dashboard:   handler.NewDashboardHandler(dashboardService, logger),
	}, router.Options{
		Guards:         middleware.NewAuth(tokens, userRepo, logger),
		AuthLimiter:    middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newDispatcher builds the notification fan-out from whichever sinks are configured.
func newDispatcher(cfg *config.Config, logger zerolog.Logger) (*notify.Dispatcher, error) {
	var sinks []notify.Sink

	if cfg.Mail.Enabled() {
		sinks = append(sinks, notify.NewMailSink(
			cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From, logger,
		))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := notify.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize kafka sink: %w", err)
		}
		sinks = append(sinks, kafkaSink)
	}

	if cfg.Redis.Addr != "" {
		sinks = append(sinks, notify.NewRedisSink(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel))
	}

	if len(sinks) == 0 {
		logger.Info().Msg("no notification sinks configured, events will be dropped")
	}
	return notify.NewDispatcher(cfg.Notify.Timeout, logger, sinks...), nil
}

// newPromoBook loads the promo code lists, reading from S3 first when it is
// enabled and falling back to the local copies.
func newPromoBook(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (promo.Book, error) {
	if !cfg.Promo.Enabled {
		logger.Info().Msg("promo codes disabled")
		return promo.NewDisabledBook(), nil
	}

	source := promo.NewFileSource("", logger)
	if cfg.S3.Enabled {
		s3Source, err := promo.NewS3Source(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 source, falling back to local file system only")
		} else {
			source = promo.NewFallbackSource(s3Source, source, logger)
		}
	} else {
		logger.Info().Msg("using local file system for promo code files (S3 disabled)")
	}

	return promo.NewBook(ctx, promo.BookConfig{
		Files:           cfg.Promo.Files,
		MinMatchCount:   cfg.Promo.MinMatchCount,
		MinLength:       cfg.Promo.MinLength,
		MaxLength:       cfg.Promo.MaxLength,
		DiscountPercent: cfg.Promo.DiscountPercent,
	}, source, logger)
}
