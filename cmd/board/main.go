package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/db/memory"
	myPostgresRepo "github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/db/redis"
	httptransport "github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http"
	httpmw "github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/password"
	authsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/auth/service"
	msgsvc "github.com/Miraines/MoonyAndStarry/board-service/internal/app/message/service"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/board-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/metrics"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/infra/server"
	"golang.org/x/sync/errgroup"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger level comes from config, so fall back to defaults here
		lg.Must(lg.Options{}).Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(lg.Options{Level: cfg.LogLevel, Production: cfg.IsProduction(), Service: "board"})
	defer zapLog.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := migrate.Up(sqlDB, zapLog); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	health := map[string]httptransport.HealthCheck{
		"postgres": func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	}

	var registry repo.RefreshTokenRegistry
	switch cfg.RefreshStore {
	case config.RefreshStoreRedis:
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		health["redis"] = func(ctx context.Context) error { return redisCli.Ping(ctx).Err() }
		registry = myRedisRepo.NewRedisRefreshRegistry(redisCli)
	default:
		registry = memory.NewRefreshRegistry()
	}
	zapLog.Info("refresh token registry ready", zap.String("store", cfg.RefreshStore))

	hasher, err := password.New(cfg.PasswordHasher)
	if err != nil {
		zapLog.Fatal("failed to init password hasher", zap.Error(err))
	}
	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	validate := validator.New()
	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	messageRepo := myPostgresRepo.NewPostgresMessageRepo(db)

	auth := authsvc.New(userRepo, registry, jwtUtil, hasher, validate, zapLog.Named("auth"))
	messages := msgsvc.New(messageRepo, validate, zapLog.Named("messages"))

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, _ := httptransport.NewEngine(httptransport.EngineDeps{
		Handler:          httptransport.NewHandler(auth, messages, cfg.CookieDomain, cfg.IsProduction(), zapLog),
		Gate:             httpmw.Authenticate(jwtUtil, zapLog),
		RateLimit:        httpmw.RateLimitPerIP(rootCtx, cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour),
		Health:           health,
		Metrics:          metrics.NewRegistry(),
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: cfg.AllowCredentials,
		Log:              zapLog,
	})

	g, ctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, cfg.HTTPAddress, engine, zapLog)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
		os.Exit(1)
	}
	zapLog.Info("shutdown complete")
}
