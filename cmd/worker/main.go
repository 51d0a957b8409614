/**
 * @description
 * Worker Service Entry Point.
 * Runs the scheduled pipelines:
 * 1. NBA schedule + picks daily at the configured UTC hour.
 * 2. NFL schedule + picks every Tuesday at the configured UTC hour.
 *
 * @dependencies
 * - backend/internal/config
 * - backend/internal/db
 * - backend/internal/jobs
 * - backend/internal/services
 *
 * @notes
 * - The Redis job lock in the runner makes replicas and manual HTTP
 *   triggers safe against each other.
 * - Jobs run without a deadline: the search-augmented model call can take
 *   minutes, and a cancelled generation cannot be resumed.
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sharpline/backend/internal/config"
	"github.com/sharpline/backend/internal/db"
	"github.com/sharpline/backend/internal/integrations/oddsfeed"
	"github.com/sharpline/backend/internal/integrations/openai"
	"github.com/sharpline/backend/internal/integrations/tavily"
	"github.com/sharpline/backend/internal/jobs"
	"github.com/sharpline/backend/internal/logger"
	"github.com/sharpline/backend/internal/models"
	"github.com/sharpline/backend/internal/services"
	"github.com/sharpline/backend/internal/store"
)

func main() {
	logger.Info("🔥 Starting Sharpline Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis connection failed: %v", err)
	}

	// 3. Initialize Services
	feedClient := oddsfeed.NewClient(cfg)
	modelClient := openai.NewClient(cfg)
	tavilyClient := tavily.NewClient(cfg)

	gameStore := store.NewGameStore(pgDB)
	pickStore := store.NewPickStore(pgDB)
	teamStore := store.NewTeamStore(pgDB)

	scheduleService := services.NewScheduleService(feedClient, gameStore)
	matchupService := services.NewMatchupService(gameStore, pickStore, teamStore)
	picksService := services.NewPicksService(matchupService, modelClient, tavilyClient, pickStore)
	runner := jobs.NewRunner(scheduleService, picksService, redisClient)

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Scheduler Loop
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		lastFired := map[models.League]string{}

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				fireDue(ctx, runner, cfg, now.UTC(), lastFired)
			}
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	logger.Info("Worker exited.")
}

// fireDue runs any league job whose trigger window matches now, at most
// once per UTC day.
func fireDue(ctx context.Context, runner *jobs.Runner, cfg *config.Config, now time.Time, lastFired map[models.League]string) {
	today := now.Format("2006-01-02")

	if now.Hour() == cfg.Jobs.NBAHourUTC && lastFired[models.LeagueNBA] != today {
		lastFired[models.LeagueNBA] = today
		runLeague(ctx, runner, models.LeagueNBA)
	}

	if now.Weekday() == time.Tuesday && now.Hour() == cfg.Jobs.NFLHourUTC && lastFired[models.LeagueNFL] != today {
		lastFired[models.LeagueNFL] = today
		runLeague(ctx, runner, models.LeagueNFL)
	}
}

func runLeague(ctx context.Context, runner *jobs.Runner, league models.League) {
	logger.Info("⏰ Triggering scheduled %s job", league.Upper())
	status := runner.RunLeagueJob(ctx, league)
	if !status.OK {
		logger.Error("Scheduled %s job failed: %s", league.Upper(), status.Error)
		return
	}
	if status.Skipped {
		return
	}
	logger.Info("Scheduled %s job done (run %s): %v", league.Upper(), status.RunID, status.Jobs)
}
