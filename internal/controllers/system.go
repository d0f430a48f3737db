package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/pkg/config"
)

// Pinger - всё, что нужно health-check от хранилища (pgxpool.Pool подходит).
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemController struct {
	db          Pinger
	features    config.Features
	environment string
	logger      *zap.Logger
}

func NewSystemController(db Pinger, cfg *config.Config, logger *zap.Logger) *SystemController {
	return &SystemController{
		db:          db,
		features:    cfg.Features,
		environment: cfg.Environment,
		logger:      logger,
	}
}

// Health отвечает 200, даже если база недоступна: статус БД в теле.
func (c *SystemController) Health(ctx echo.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	database := "ok"
	if err := c.db.Ping(pingCtx); err != nil {
		c.logger.Warn("Health: база недоступна", zap.Error(err))
		database = "error"
	}
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}

func (c *SystemController) FeatureFlags(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"environment": c.environment,
		"flags":       c.features,
	})
}
