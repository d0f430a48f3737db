package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/dto"
	"felix-hub/internal/services"
	"felix-hub/pkg/utils"
)

// AuthController - вход механика и его профиль.
type AuthController struct {
	authService     services.AuthServiceInterface
	mechanicService services.MechanicServiceInterface
	logger          *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	mechanicService services.MechanicServiceInterface,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService:     authService,
		mechanicService: mechanicService,
		logger:          logger,
	}
}

func (c *AuthController) Login(ctx echo.Context) error {
	var payload dto.LoginDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.authService.Login(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Вход выполнен", http.StatusOK)
}

func (c *AuthController) RefreshToken(ctx echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.authService.RefreshToken(ctx.Request().Context(), payload.RefreshToken)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Токены обновлены", http.StatusOK)
}

func (c *AuthController) Me(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	mechanic, err := c.mechanicService.FindMechanic(ctx.Request().Context(), mechanicID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Успешно", http.StatusOK)
}

func (c *AuthController) UpdateProfile(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateProfileDTO
	rawBody, err := readPatchBody(ctx, &payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	mechanic, err := c.mechanicService.UpdateProfile(ctx.Request().Context(), mechanicID, payload, rawBody)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, mechanic, "Профиль обновлён", http.StatusOK)
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	mechanicID, err := utils.GetMechanicIDFromCtx(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ChangePasswordDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.mechanicService.ChangePassword(ctx.Request().Context(), mechanicID, payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Пароль изменён", http.StatusOK)
}
