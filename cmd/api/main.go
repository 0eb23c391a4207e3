package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quantumshop/internal/config"
	"quantumshop/internal/db"
	apihttp "quantumshop/internal/http"
	"quantumshop/internal/realtime"
	"quantumshop/internal/repository"
	"quantumshop/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	predictionRepo := repository.NewPgPredictionRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	hub := realtime.NewHub(logger)
	var (
		emitter     realtime.Emitter = realtime.HubEmitter{Hub: hub}
		limiter                      = service.NewMemoryRateLimiter(time.Minute, cfg.PredictRatePerMinute)
		redisClient *redis.Client
		bus         *realtime.RedisBus
	)
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process limiter and hub", zap.Error(err))
		} else {
			limiter = service.NewRedisRateLimiter(redisClient, time.Minute, cfg.PredictRatePerMinute, logger)
			bus = realtime.NewRedisBus(redisClient, cfg.RedisChannel, logger)
			emitter = realtime.BusEmitter{Bus: bus}
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL())
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, bearer tokens are ignored")
	}

	predictionSvc := service.NewPredictionService(
		predictionRepo,
		profileRepo,
		realtime.NewAnalysisNotifier(emitter),
		service.NewRandomSource(cfg.RandomSeed),
		cfg.PredictTimeout(),
		logger,
	)
	historySvc := service.NewHistoryService(predictionRepo, cfg.HistoryLimit, logger)
	feedbackSvc := service.NewFeedbackService(predictionRepo, logger)

	router := apihttp.NewRouter(
		logger,
		cfg.CORSOrigins,
		jwtSvc,
		limiter,
		apihttp.NewPredictionHandler(logger, predictionSvc, historySvc),
		apihttp.NewFeedbackHandler(logger, feedbackSvc),
		apihttp.NewRealtimeHandler(logger, hub),
		apihttp.NewHealthHandler(logger, func(ctx context.Context) error { return db.Ping(ctx, pool) }),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if bus != nil {
		g.Go(func() error {
			return bus.StartForwarder(gctx, hub.Broadcast)
		})
	}
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
