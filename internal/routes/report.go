package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/controllers"
	"felix-hub/internal/services"
)

func runExportRouter(e *echo.Echo, exportService services.ExportServiceInterface, adminMW echo.MiddlewareFunc, logger *zap.Logger) {
	exportCtrl := controllers.NewExportController(exportService, logger)
	e.GET("/export", exportCtrl.ExportOrders, adminMW)
}

func runAnalyticsRouter(api *echo.Group, analyticsService services.AnalyticsServiceInterface, adminMW echo.MiddlewareFunc, logger *zap.Logger) {
	analyticsCtrl := controllers.NewAnalyticsController(analyticsService, logger)

	metricsGroup := api.Group("/metrics", adminMW)
	{
		metricsGroup.GET("/orders/daily", analyticsCtrl.OrdersDaily)
		metricsGroup.GET("/status-changes", analyticsCtrl.StatusChanges)
		metricsGroup.GET("/notifications/success-rate", analyticsCtrl.NotificationSuccessRate)
		metricsGroup.GET("/notifications/failures", analyticsCtrl.NotificationFailures)
		metricsGroup.GET("/summary", analyticsCtrl.Summary)
		metricsGroup.GET("/alerts", analyticsCtrl.Alerts)
		metricsGroup.GET("/circuit-breakers", analyticsCtrl.CircuitBreakers)
		metricsGroup.GET("/dashboard", analyticsCtrl.Dashboard)
	}
}
