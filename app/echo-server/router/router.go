package router

import (
	"artMarket/internal/middleware"
	"artMarket/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	reco := api.Group("/recommendations", middleware.AuthMiddleware())
	reco.GET("/:user_id", handler.Recommend)

	api.GET("/similar-users/:user_id", handler.SimilarUsers, middleware.AuthMiddleware())
	api.GET("/users/:user_id/vector", handler.UserVector, middleware.AuthMiddleware())
	api.GET("/products", handler.ListProducts)
}

func SetEventRoutes(api *echo.Group, handler *rest.EventHandler, apiKey string) {
	events := api.Group("/events", middleware.APIKeyMiddleware(apiKey))
	events.POST("/view", handler.RecordView)
	events.POST("/purchase", handler.RecordPurchase)
}

func SetTrainingRoutes(api *echo.Group, handler *rest.TrainingHandler, apiKey string) {
	api.POST("/train", handler.Train, middleware.APIKeyMiddleware(apiKey))
	api.GET("/training-status", handler.Status, middleware.APIKeyMiddleware(apiKey))
}
