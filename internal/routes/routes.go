package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/repositories"
	"felix-hub/internal/services"
	"felix-hub/pkg/config"
	"felix-hub/pkg/filestorage"
	"felix-hub/pkg/middleware"
	"felix-hub/pkg/service"
)

type Loggers struct {
	Main     *zap.Logger
	Auth     *zap.Logger
	Order    *zap.Logger
	Mechanic *zap.Logger
	Catalog  *zap.Logger
}

// NopLoggers - все логгеры-пустышки, для тестов.
func NopLoggers() *Loggers {
	nop := zap.NewNop()
	return &Loggers{Main: nop, Auth: nop, Order: nop, Mechanic: nop, Catalog: nop}
}

func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	publisher services.EventPublisher,
	breakers services.BreakerSource,
	loggers *Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	adminMW := middleware.AdminAuth(cfg.Admin, loggers.Auth)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Server.UploadsDir)
	if err != nil {
		loggers.Main.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	txManager := repositories.NewTxManager(dbConn)

	var cacheRepo repositories.CacheRepositoryInterface
	if redisClient != nil {
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	} else {
		loggers.Main.Warn("Redis не подключён: кеш каталога и блокировка входа отключены")
	}

	// --- 1. РЕПОЗИТОРИИ ---
	categoryRepo := repositories.NewCategoryRepository(dbConn)
	partRepo := repositories.NewPartRepository(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	mechanicRepo := repositories.NewMechanicRepository(dbConn)
	assignmentRepo := repositories.NewAssignmentRepository(dbConn)
	historyRepo := repositories.NewOrderHistoryRepository(dbConn)
	commentRepo := repositories.NewOrderCommentRepository(dbConn)
	customRepo := repositories.NewCustomItemRepository(dbConn)
	timeLogRepo := repositories.NewTimeLogRepository(dbConn)
	analyticsRepo := repositories.NewAnalyticsRepository(dbConn)
	notificationLogRepo := repositories.NewNotificationLogRepository(dbConn)

	// --- 2. СЕРВИСЫ ---
	catalogService := services.NewCatalogService(txManager, categoryRepo, partRepo, cacheRepo, cfg.Redis.CatalogTTL, loggers.Catalog)
	orderService := services.NewOrderService(
		txManager, orderRepo, partRepo, categoryRepo, mechanicRepo, assignmentRepo, historyRepo,
		fileStorage, publisher, cfg.Features, loggers.Order,
	)
	mechanicService := services.NewMechanicService(txManager, mechanicRepo, loggers.Mechanic)
	authService := services.NewAuthService(mechanicRepo, cacheRepo, jwtSvc, loggers.Auth, cfg.Auth)
	orderWorkService := services.NewOrderWorkService(
		txManager, orderRepo, commentRepo, customRepo, timeLogRepo, assignmentRepo, historyRepo, loggers.Mechanic,
	)
	timeLogService := services.NewTimeLogService(txManager, orderRepo, timeLogRepo, analyticsRepo, loggers.Mechanic)
	exportService := services.NewExportService(orderRepo, loggers.Order)
	analyticsService := services.NewAnalyticsService(analyticsRepo, notificationLogRepo, breakers, loggers.Main)

	// Токен механика действителен, только пока аккаунт существует и активен.
	authMW := middleware.NewAuthMiddleware(jwtSvc, mechanicResolver(authService), loggers.Auth)

	// --- 3. РОУТЕРЫ ---
	runSystemRouter(e, api, dbConn, cfg, loggers.Main)
	runCatalogRouter(api, catalogService, adminMW, loggers.Catalog)
	runOrderRouter(api, orderService, adminMW, loggers.Order)
	runMechanicAdminRouter(api, mechanicService, adminMW, loggers.Mechanic)
	runMechanicRouter(api, authService, mechanicService, orderService, orderWorkService, timeLogService, authMW, loggers.Mechanic)
	runExportRouter(e, exportService, adminMW, loggers.Order)
	runAnalyticsRouter(api, analyticsService, adminMW, loggers.Main)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
