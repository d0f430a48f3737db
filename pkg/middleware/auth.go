package middleware

import (
	"context"
	"strings"

	apperrors "felix-hub/pkg/errors"
	"felix-hub/pkg/service"
	"felix-hub/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MechanicResolver возвращает имя активного механика или ошибку (удалён, отключён).
type MechanicResolver func(ctx context.Context, mechanicID uint64) (string, error)

type AuthMiddleware struct {
	jwtService service.JWTService
	resolve    MechanicResolver
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, resolve MechanicResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		resolve:    resolve,
		logger:     logger,
	}
}

// Auth проверяет Bearer access-токен механика и кладёт его ID в контекст запроса.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, err, m.logger)
		}

		if claims.IsRefreshToken {
			m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном")
			return utils.ErrorResponse(c, apperrors.ErrTokenIsNotAccess, m.logger)
		}

		ctx := utils.WithMechanicID(c.Request().Context(), claims.MechanicID)
		if m.resolve != nil {
			name, err := m.resolve(ctx, claims.MechanicID)
			if err != nil {
				m.logger.Warn("AuthMiddleware: механик недоступен", zap.Uint64("mechanic_id", claims.MechanicID), zap.Error(err))
				return utils.ErrorResponse(c, err, m.logger)
			}
			ctx = utils.WithActor(ctx, name)
		}
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
