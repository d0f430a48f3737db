package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/services"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/utils"
)

type AnalyticsController struct {
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewAnalyticsController(analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService, logger: logger}
}

// rangeParam читает целый параметр, вне [minV, maxV] - 400.
func rangeParam(ctx echo.Context, name string, def, minV, maxV int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minV || v > maxV {
		return 0, apperrors.NewBadRequestError(fmt.Sprintf("%s должен быть от %d до %d", name, minV, maxV))
	}
	return v, nil
}

func (c *AnalyticsController) OrdersDaily(ctx echo.Context) error {
	days, err := rangeParam(ctx, "days", 30, 1, 365)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.analyticsService.OrdersPerDay(ctx.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"days": days, "orders_per_day": data}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) StatusChanges(ctx echo.Context) error {
	days, err := rangeParam(ctx, "days", 7, 1, 90)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.analyticsService.StatusChanges(ctx.Request().Context(), days)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"days": days, "status_changes": data}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) NotificationSuccessRate(ctx echo.Context) error {
	hours, err := rangeParam(ctx, "hours", 24, 1, 168)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.analyticsService.NotificationSuccessRate(ctx.Request().Context(), hours)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"hours": hours, "metrics": data}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) NotificationFailures(ctx echo.Context) error {
	hours, err := rangeParam(ctx, "hours", 1, 1, 168)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	limit, err := rangeParam(ctx, "limit", 100, 1, 1000)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	data, err := c.analyticsService.NotificationFailures(ctx.Request().Context(), hours, limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{
		"hours":    hours,
		"limit":    limit,
		"count":    len(data),
		"failures": data,
	}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) Summary(ctx echo.Context) error {
	summary, err := c.analyticsService.DailySummary(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) Alerts(ctx echo.Context) error {
	alerts, err := c.analyticsService.Alerts(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{"count": len(alerts), "alerts": alerts}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) CircuitBreakers(ctx echo.Context) error {
	breakers := c.analyticsService.CircuitBreakers(ctx.Request().Context())
	return utils.SuccessResponse(ctx, map[string]interface{}{"circuit_breakers": breakers}, "Успешно", http.StatusOK)
}

func (c *AnalyticsController) Dashboard(ctx echo.Context) error {
	board, err := c.analyticsService.Dashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, board, "Успешно", http.StatusOK)
}
