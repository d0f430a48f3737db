package routes

import (
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/controllers"
	"felix-hub/pkg/config"
	"felix-hub/pkg/metrics"
)

func runSystemRouter(e *echo.Echo, api *echo.Group, dbConn *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) {
	systemCtrl := controllers.NewSystemController(dbConn, cfg, logger)

	e.GET("/health", systemCtrl.Health)
	e.GET("/metrics", metrics.Handler())
	api.GET("/config/feature-flags", systemCtrl.FeatureFlags)

	uploadsPath, err := filepath.Abs(cfg.Server.UploadsDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	e.Static("/uploads", uploadsPath)
}
