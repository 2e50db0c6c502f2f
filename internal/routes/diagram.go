package routes

import (
	"er_diagram/internal/handlers"

	"github.com/gin-gonic/gin"
)

type DiagramRoutes struct {
	handler *handlers.DiagramHandler
}

func NewDiagramRoutes(handler *handlers.DiagramHandler) *DiagramRoutes {
	return &DiagramRoutes{handler: handler}
}

func (r *DiagramRoutes) RegisterRoutes(router *gin.RouterGroup) {
	diagrams := router.Group("/diagrams")
	{
		diagrams.POST("", r.handler.SaveDiagram)
		diagrams.GET("/latest", r.handler.GetLatest)
		diagrams.GET("/latest/mermaid", r.handler.VisualizeSchema)
		diagrams.POST("/latest/positions", r.handler.UpdatePosition)
		diagrams.GET("/export", r.handler.ExportSQL)
		diagrams.POST("/apply", r.handler.ApplySchema)
	}
}

// RegisterLegacyRoutes serves the paths the browser editor was written against.
func (r *DiagramRoutes) RegisterLegacyRoutes(router *gin.Engine) {
	router.POST("/save_diagram.php", r.handler.LegacySaveDiagram)
	router.GET("/export_sql.php", r.handler.ExportSQL)
	router.POST("/connection_handler.php", r.handler.LegacyUpdatePosition)
}
