package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"felix-hub/internal/controllers"
	"felix-hub/internal/services"
)

// Чтение каталога открыто для бота и SPA, изменения только для админа.
func runCatalogRouter(api *echo.Group, catalogService services.CatalogServiceInterface, adminMW echo.MiddlewareFunc, logger *zap.Logger) {
	catalogCtrl := controllers.NewCatalogController(catalogService, logger)
	{
		api.GET("/categories", catalogCtrl.GetCategories)
		api.GET("/categories/:id", catalogCtrl.FindCategory)
		api.POST("/categories", catalogCtrl.CreateCategory, adminMW)
		api.PATCH("/categories/:id", catalogCtrl.UpdateCategory, adminMW)
		api.DELETE("/categories/:id", catalogCtrl.DeleteCategory, adminMW)

		api.GET("/parts", catalogCtrl.GetParts)
		api.GET("/parts/:id", catalogCtrl.FindPart)
		api.POST("/parts", catalogCtrl.CreatePart, adminMW)
		api.PATCH("/parts/:id", catalogCtrl.UpdatePart, adminMW)
		api.DELETE("/parts/:id", catalogCtrl.DeletePart, adminMW)
	}
}
