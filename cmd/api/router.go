package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deckforge-backend/internal/shared/middleware"
	"deckforge-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		setupDeckRoutes(v1, c)
	}

	return router
}

// ========================================
// DECK ROUTES
// ========================================
func setupDeckRoutes(v1 *gin.RouterGroup, c *container.Container) {
	decks := v1.Group("/decks")
	{
		decks.GET("", c.DeckHandler.ListDecks)
		decks.PUT("", c.DeckHandler.SaveDeck)
		decks.GET("/:id", c.DeckHandler.GetDeck)
		decks.DELETE("/:id", c.DeckHandler.DeleteDeck)

		decks.POST("/:id/share", c.DeckHandler.CreateShareURL)
		decks.GET("/:id/share/qr", c.DeckHandler.ShareQR)
		decks.GET("/:id/export", c.DeckHandler.ExportDeck)

		decks.POST("/import", c.DeckHandler.ImportFromJSON)
		decks.POST("/import/url", c.DeckHandler.ImportFromURL)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"name":    c.Config.App.Name,
			"version": c.Config.App.Version,
		})
	}
}
