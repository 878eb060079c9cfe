package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/shopfloor/pkg/application/services"
	"github.com/vsinha/shopfloor/pkg/interfaces/http/handler"
	"github.com/vsinha/shopfloor/pkg/interfaces/http/middleware"
)

// New wires the handlers over one inventory service and returns the engine
func New(svc *services.InventoryService, logger *logrus.Logger) *gin.Engine {
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	healthH := handler.NewHealthHandler(svc)
	inventoryH := handler.NewInventoryHandler(svc)
	productionH := handler.NewProductionHandler(svc)
	planningH := handler.NewPlanningHandler(svc)
	dataH := handler.NewDataHandler(svc)

	r.GET("/health", healthH.Health)

	v1 := r.Group("/api/v1")
	{
		components := v1.Group("/components")
		components.GET("", inventoryH.ListComponents)
		components.PATCH("/:id", inventoryH.UpdateComponent)
		components.POST("/:id/print", productionH.RecordPrint)
		components.POST("/:id/post-process", productionH.CompletePostProcessing)

		purchased := v1.Group("/purchased")
		purchased.GET("", inventoryH.ListPurchased)
		purchased.PUT("/:id", inventoryH.UpdatePurchased)

		parts := v1.Group("/parts")
		parts.GET("", inventoryH.ListParts)
		parts.POST("/:id/assemble", productionH.AssemblePart)

		products := v1.Group("/products")
		products.GET("", inventoryH.ListProducts)
		products.POST("/:id/assemble", productionH.AssembleProduct)

		v1.GET("/recipes", inventoryH.ListRecipes)
		v1.GET("/capacity/:id", planningH.Capacity)

		planning := v1.Group("/planning")
		planning.GET("/shortages", planningH.ShortagePlan)
		planning.GET("/priorities", planningH.SmartPriorities)
		planning.GET("/batches", planningH.BatchPriorities)

		tasks := v1.Group("/tasks")
		tasks.GET("/post-processing", planningH.PostProcessingTasks)
		tasks.GET("/assembly", planningH.AssemblyTasks)

		v1.GET("/low-stock", planningH.LowStock)
		v1.GET("/dashboard", planningH.Dashboard)

		settings := v1.Group("/settings")
		settings.GET("/target-buffer", planningH.GetTargetBuffer)
		settings.PUT("/target-buffer", planningH.SetTargetBuffer)

		v1.GET("/backup", dataH.ExportBackup)
		v1.POST("/backup", dataH.ImportBackup)
		v1.POST("/reset", dataH.Reset)
	}

	return r
}
