package router

import (
	"github.com/gin-gonic/gin"

	"instaforce.app/engine/internal/http/handler"
	"instaforce.app/engine/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		runHandler := handler.NewRunHandler(services.Runs())
		RunRouter(v1.Group("/runs"), runHandler)
	}
}

func RunRouter(rg *gin.RouterGroup, h *handler.RunHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
