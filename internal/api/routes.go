/**
 * @description
 * API Route definitions.
 * Wires clients, stores, services and handlers, then assigns routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/api/handlers
 * - backend/internal/services
 * - backend/internal/store
 * - backend/internal/integrations
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharpline/backend/internal/api/handlers"
	"github.com/sharpline/backend/internal/config"
	"github.com/sharpline/backend/internal/integrations/oddsfeed"
	"github.com/sharpline/backend/internal/integrations/openai"
	"github.com/sharpline/backend/internal/integrations/tavily"
	"github.com/sharpline/backend/internal/jobs"
	"github.com/sharpline/backend/internal/services"
	"github.com/sharpline/backend/internal/store"
	"gorm.io/gorm"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Clients
	feedClient := oddsfeed.NewClient(cfg)
	modelClient := openai.NewClient(cfg)
	tavilyClient := tavily.NewClient(cfg)

	// 2. Initialize Stores
	gameStore := store.NewGameStore(db)
	pickStore := store.NewPickStore(db)
	teamStore := store.NewTeamStore(db)

	// 3. Initialize Services
	scheduleService := services.NewScheduleService(feedClient, gameStore)
	matchupService := services.NewMatchupService(gameStore, pickStore, teamStore)
	picksService := services.NewPicksService(matchupService, modelClient, tavilyClient, pickStore)
	runner := jobs.NewRunner(scheduleService, picksService, rdb)

	// 4. Initialize Handlers
	scheduleHandler := handlers.NewScheduleHandler(scheduleService, matchupService)
	picksHandler := handlers.NewPicksHandler(picksService)
	jobsHandler := handlers.NewJobsHandler(runner)

	// 5. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	schedule := v1.Group("/schedule")
	schedule.Get("/all", scheduleHandler.GetAllMatchups)
	schedule.Get("/:league", scheduleHandler.GetSchedule)

	picks := v1.Group("/picks")
	picks.Get("/evaluate/:league", picksHandler.EvaluatePicks)

	jobsGroup := v1.Group("/jobs")
	jobsGroup.Get("/:league", jobsHandler.RunLeagueJob)
}
