package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftcard-backend/internal/shared/middleware"
	"giftcard-backend/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	router.GET("/api/v1/health", healthHandler(c))

	v1 := router.Group("/api/v1")
	{
		giftCards := v1.Group("/gift-cards")
		{
			giftCards.POST("/apply", c.CheckoutHandler.Apply)
			giftCards.PATCH("/apply", c.CheckoutHandler.Reprice)
			giftCards.DELETE("/apply", c.CheckoutHandler.Remove)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("/:order_id/gift-cards", c.OrderHandler.IssueCards)
			orders.GET("/:order_id/gift-cards", c.OrderHandler.ListCards)
			orders.POST("/:order_id/redemption", c.OrderHandler.AttachRedemption)
			orders.POST("/:order_id/finalize", c.OrderHandler.Finalize)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
		{
			admin.GET("/gift-cards", c.AdminHandler.ListCards)
			admin.GET("/gift-cards/:code", c.AdminHandler.GetCard)
			admin.PATCH("/gift-cards/:code/balance", c.AdminHandler.AdjustBalance)
		}
	}

	return router
}

func healthHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "ok"
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			dbStatus = "unavailable"
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "unavailable"
		}

		status := http.StatusOK
		if dbStatus != "ok" || cacheStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   "up",
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}
