package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/controllers"
	"felix-hub/internal/services"
)

func runOrderRouter(api *echo.Group, orderService services.OrderServiceInterface, adminMW echo.MiddlewareFunc, logger *zap.Logger) {
	orderCtrl := controllers.NewOrderController(orderService, logger)

	ordersGroup := api.Group("/orders")
	{
		ordersGroup.POST("", orderCtrl.CreateOrder)
		ordersGroup.GET("", orderCtrl.GetOrders)
		ordersGroup.GET("/stats", orderCtrl.GetStats)
		ordersGroup.GET("/:id", orderCtrl.FindOrder)

		ordersGroup.PATCH("/:id", orderCtrl.UpdateOrder, adminMW)
		ordersGroup.DELETE("/:id", orderCtrl.DeleteOrder, adminMW)
		ordersGroup.POST("/:id/print", orderCtrl.PrintOrder, adminMW)
		ordersGroup.POST("/:id/assign", orderCtrl.AssignOrder, adminMW)
		ordersGroup.POST("/:id/photo", orderCtrl.UploadPhoto, adminMW)
		ordersGroup.GET("/:id/history", orderCtrl.GetOrderHistory, adminMW)
	}
}
