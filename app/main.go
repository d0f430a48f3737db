package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"felix-hub/internal/listeners"
	"felix-hub/internal/repositories"
	"felix-hub/internal/routes"
	"felix-hub/migrations"
	"felix-hub/pkg/config"
	"felix-hub/pkg/customvalidator"
	"felix-hub/pkg/database/postgresql"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/eventbus"
	applogger "felix-hub/pkg/logger"
	"felix-hub/pkg/metrics"
	appmiddleware "felix-hub/pkg/middleware"
	"felix-hub/pkg/service"
	"felix-hub/pkg/telegram"
	"felix-hub/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("конфигурация: %v", err)
	}

	// 1. Echo и логгер
	e := echo.New()
	e.HideBanner = true
	logger := applogger.NewLogger(cfg.Server.LogFile)
	defer logger.Sync()

	loggers := &routes.Loggers{
		Main:     logger.Named("main"),
		Auth:     logger.Named("auth"),
		Order:    logger.Named("order"),
		Mechanic: logger.Named("mechanic"),
		Catalog:  logger.Named("catalog"),
	}
	notifyLogger := logger.Named("notify")

	logger.Info("Запуск Felix Hub",
		zap.String("environment", cfg.Environment),
		zap.Any("features", cfg.Features),
	)

	// 2. Middleware
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(appmiddleware.RequestLogger(logger.Named("http")))
	e.Use(metrics.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: !containsWildcard(cfg.Server.AllowedOrigins),
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(middleware.BodyLimit("12M"))

	// 3. Валидатор
	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// 4. БД, миграции, Redis
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.AutoMigrate {
		if err := migrations.Up(ctx, dbConn); err != nil {
			logger.Fatal("миграции не применены", zap.Error(err))
		}
		logger.Info("✅ Миграции применены")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	// 5. Шина событий и уведомления
	bus := eventbus.New(notifyLogger)
	tgService, err := telegram.NewService(cfg.Telegram.BotToken, telegram.Options{
		MaxRetries:       cfg.Telegram.MaxRetries,
		RetryDelay:       cfg.Telegram.RetryDelay,
		BreakerThreshold: cfg.Telegram.BreakerThreshold,
		BreakerTimeout:   cfg.Telegram.BreakerTimeout,
	}, notifyLogger)
	if err != nil {
		logger.Fatal("Telegram", zap.Error(err))
	}
	notificationListener := listeners.NewNotificationListener(
		tgService,
		repositories.NewNotificationLogRepository(dbConn),
		cfg.Telegram,
		cfg.Features,
		notifyLogger,
	)
	notificationListener.Register(bus)

	// 6. Маршруты
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, loggers.Auth)
	routes.InitRouter(e, dbConn, redisClient, jwtSvc, bus, tgService, loggers, cfg)

	// 7. Сервер
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("🚀 Сервер запущен", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Остановка сервера...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка остановки сервера", zap.Error(err))
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
