package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	redisclient "github.com/wolverine5550/lexsona-backend/internal/clients/redis"
	"github.com/wolverine5550/lexsona-backend/internal/db"
	"github.com/wolverine5550/lexsona-backend/internal/handlers"
	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/repos"
	"github.com/wolverine5550/lexsona-backend/internal/server"
	"github.com/wolverine5550/lexsona-backend/internal/services"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Database
	dbService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Error("Database auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := dbService.DB()

	// Repos
	log.Info("Setting up repos...")
	podcastRepo := repos.NewPodcastRepo(thePG, log)
	featuresRepo := repos.NewPodcastFeaturesRepo(thePG, log)
	prefsRepo := repos.NewAuthorPreferencesRepo(thePG, log)
	feedbackRepo := repos.NewPodcastFeedbackRepo(thePG, log)
	adjustmentRepo := repos.NewPreferenceAdjustmentRepo(thePG, log)
	metricsRepo := repos.NewPodcastMetricsRepo(thePG, log)

	// Clients
	matchCache, err := redisclient.NewMatchCache(log)
	if err != nil {
		log.Warn("Match cache unavailable, continuing without it", "error", err)
		matchCache = nil
	}
	aiClient, err := services.NewTextAnalysisClient(log)
	if err != nil {
		log.Error("Could not init TextAnalysisClient", "error", err)
		os.Exit(1)
	}
	searchClient, err := services.NewPodcastSearchClient(log)
	if err != nil {
		log.Error("Could not init PodcastSearchClient", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services...")
	weights, err := services.LoadMatchWeights(utils.GetEnv("MATCH_WEIGHTS_FILE", "", log))
	if err != nil {
		log.Error("Invalid match weights", "error", err)
		os.Exit(1)
	}
	extractionService := services.NewFeatureExtractionService(thePG, log, featuresRepo, aiClient)
	localMatcher := services.NewLocalMatcherService(thePG, log, podcastRepo, prefsRepo, adjustmentRepo, extractionService, weights)
	matchingService := services.NewTieredMatchingService(thePG, log, localMatcher, searchClient, podcastRepo, prefsRepo, adjustmentRepo, matchCache)
	preferencesService := services.NewPreferencesService(thePG, log, prefsRepo, matchCache)
	feedbackService := services.NewFeedbackService(thePG, log, feedbackRepo, adjustmentRepo, metricsRepo, matchCache)

	workerCtx, stopWorker := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopWorker()
	feedbackService.Start(workerCtx)
	defer feedbackService.Stop()

	// Handlers
	log.Info("Setting up handlers...")
	matchHandler := handlers.NewMatchHandler(log, matchingService)
	feedbackHandler := handlers.NewFeedbackHandler(log, feedbackService)
	preferencesHandler := handlers.NewPreferencesHandler(log, preferencesService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		MatchHandler:       matchHandler,
		FeedbackHandler:    feedbackHandler,
		PreferencesHandler: preferencesHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
