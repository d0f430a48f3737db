package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/services"
	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/utils"
)

type ExportController struct {
	exportService services.ExportServiceInterface
	logger        *zap.Logger
}

func NewExportController(exportService services.ExportServiceInterface, logger *zap.Logger) *ExportController {
	return &ExportController{exportService: exportService, logger: logger}
}

// ExportOrders: /export?days=30&status=готов
func (c *ExportController) ExportOrders(ctx echo.Context) error {
	days := services.DefaultExportDays
	if raw := ctx.QueryParam("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("days должен быть числом"), c.logger)
		}
		days = v
	}

	file, err := c.exportService.ExportOrders(ctx.Request().Context(), days, ctx.QueryParam("status"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	ctx.Response().Header().Set("Content-Disposition", "attachment; filename="+file.FileName)
	return ctx.Blob(http.StatusOK, file.ContentType, file.Data)
}
