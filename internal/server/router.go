package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wolverine5550/lexsona-backend/internal/handlers"
)

type RouterConfig struct {
	MatchHandler       *handlers.MatchHandler
	FeedbackHandler    *handlers.FeedbackHandler
	PreferencesHandler *handlers.PreferencesHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/matches/:userID", cfg.MatchHandler.FindMatches)

		api.GET("/preferences/:userID", cfg.PreferencesHandler.Get)
		api.PUT("/preferences", cfg.PreferencesHandler.Upsert)

		api.POST("/feedback", cfg.FeedbackHandler.Record)
		api.POST("/feedback/process", cfg.FeedbackHandler.Process)
		api.POST("/podcasts/:podcastID/metrics", cfg.FeedbackHandler.UpdateMetrics)
	}

	return router
}
