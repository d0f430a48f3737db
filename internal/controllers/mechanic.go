package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/services"
	"felix-hub/pkg/utils"
)

// MechanicController - управление учётками механиков из админки.
type MechanicController struct {
	mechanicService services.MechanicServiceInterface
	logger          *zap.Logger
}

func NewMechanicController(mechanicService services.MechanicServiceInterface, logger *zap.Logger) *MechanicController {
	return &MechanicController{
		mechanicService: mechanicService,
		logger:          logger,
	}
}

func (c *MechanicController) GetMechanics(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query(), "active")
	filter.Limit = 0
	filter.Offset = 0

	mechanics, err := c.mechanicService.GetMechanics(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanics, "Успешно", http.StatusOK)
}

func (c *MechanicController) FindMechanic(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	mechanic, err := c.mechanicService.FindMechanic(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Успешно", http.StatusOK)
}

func (c *MechanicController) CreateMechanic(ctx echo.Context) error {
	var payload dto.CreateMechanicDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	mechanic, err := c.mechanicService.CreateMechanic(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Механик создан", http.StatusCreated)
}

func (c *MechanicController) UpdateMechanic(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateMechanicDTO
	rawBody, err := readPatchBody(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	mechanic, err := c.mechanicService.UpdateMechanic(ctx.Request().Context(), id, payload, rawBody)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Механик обновлён", http.StatusOK)
}

func (c *MechanicController) DeleteMechanic(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.mechanicService.DeleteMechanic(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Механик удалён", http.StatusOK)
}
