package routes

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/controllers"
	"felix-hub/internal/services"
	"felix-hub/pkg/middleware"
)

func mechanicResolver(authService services.AuthServiceInterface) middleware.MechanicResolver {
	return func(ctx context.Context, mechanicID uint64) (string, error) {
		mechanic, err := authService.GetMechanicByID(ctx, mechanicID)
		if err != nil {
			return "", err
		}
		return mechanic.Name, nil
	}
}

func runMechanicAdminRouter(api *echo.Group, mechanicService services.MechanicServiceInterface, adminMW echo.MiddlewareFunc, logger *zap.Logger) {
	mechanicCtrl := controllers.NewMechanicController(mechanicService, logger)

	adminGroup := api.Group("/admin/mechanics", adminMW)
	{
		adminGroup.GET("", mechanicCtrl.GetMechanics)
		adminGroup.POST("", mechanicCtrl.CreateMechanic)
		adminGroup.GET("/:id", mechanicCtrl.FindMechanic)
		adminGroup.PATCH("/:id", mechanicCtrl.UpdateMechanic)
		adminGroup.DELETE("/:id", mechanicCtrl.DeleteMechanic)
	}
}

func runMechanicRouter(
	api *echo.Group,
	authService services.AuthServiceInterface,
	mechanicService services.MechanicServiceInterface,
	orderService services.OrderServiceInterface,
	orderWorkService services.OrderWorkServiceInterface,
	timeLogService services.TimeLogServiceInterface,
	authMW *middleware.AuthMiddleware,
	logger *zap.Logger,
) {
	authCtrl := controllers.NewAuthController(authService, mechanicService, logger)
	workCtrl := controllers.NewMechanicWorkController(orderService, orderWorkService, timeLogService, logger)

	mechanicGroup := api.Group("/mechanic")
	{
		mechanicGroup.POST("/login", authCtrl.Login)
		mechanicGroup.POST("/refresh_token", authCtrl.RefreshToken)
	}

	secureGroup := mechanicGroup.Group("", authMW.Auth)
	{
		secureGroup.GET("/me", authCtrl.Me)
		secureGroup.PATCH("/profile", authCtrl.UpdateProfile)
		secureGroup.POST("/change-password", authCtrl.ChangePassword)

		secureGroup.GET("/orders", workCtrl.GetOrders)
		secureGroup.POST("/orders", workCtrl.CreateOrder)
		secureGroup.GET("/orders/:id", workCtrl.GetOrderDetails)
		secureGroup.PATCH("/orders/:id/status", workCtrl.UpdateStatus)
		secureGroup.GET("/orders/:id/comments", workCtrl.GetComments)
		secureGroup.POST("/orders/:id/comments", workCtrl.AddComment)
		secureGroup.POST("/orders/:id/custom-works", workCtrl.AddCustomWork)
		secureGroup.POST("/orders/:id/custom-parts", workCtrl.AddCustomPart)

		secureGroup.POST("/orders/:id/time/start", workCtrl.StartTimer)
		secureGroup.POST("/orders/:id/time/stop", workCtrl.StopTimer)
		secureGroup.POST("/orders/:id/time/manual", workCtrl.AddManualTime)
		secureGroup.GET("/time/active", workCtrl.GetActiveTimer)
		secureGroup.GET("/time/history", workCtrl.GetTimeHistory)
		secureGroup.GET("/stats", workCtrl.GetStats)
	}
}
