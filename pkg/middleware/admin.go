package middleware

import (
	"crypto/subtle"

	"felix-hub/pkg/config"
	"felix-hub/pkg/utils"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// AdminAuth - basic auth для административных маршрутов.
// Без ADMIN_PASSWORD проверка отключена.
func AdminAuth(cfg config.AdminConfig, logger *zap.Logger) echo.MiddlewareFunc {
	if cfg.Password == "" {
		logger.Warn("ADMIN_PASSWORD не задан, административные маршруты открыты")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				setActor(c, "admin")
				return next(c)
			}
		}
	}

	return echomw.BasicAuthWithConfig(echomw.BasicAuthConfig{
		Realm: "Felix Hub",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(username), []byte(cfg.Username)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(password), []byte(cfg.Password)) == 1
			if !userOK || !passOK {
				logger.Warn("AdminAuth: неверные учётные данные", zap.String("username", username), zap.String("ip", c.RealIP()))
				return false, nil
			}
			setActor(c, username)
			return true, nil
		},
	})
}

func setActor(c echo.Context, actor string) {
	c.SetRequest(c.Request().WithContext(utils.WithActor(c.Request().Context(), actor)))
}
