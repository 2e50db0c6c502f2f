package routes

import (
	"er_diagram/internal/handlers"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(router *gin.Engine, diagramHandler *handlers.DiagramHandler) {
	api := router.Group("/api/v1")

	diagramRoutes := NewDiagramRoutes(diagramHandler)
	diagramRoutes.RegisterRoutes(api)
	diagramRoutes.RegisterLegacyRoutes(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
}
