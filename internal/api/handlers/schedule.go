/**
 * @description
 * Schedule API Handlers.
 * Exposes the matchup board and the fetch+persist schedule endpoint.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sharpline/backend/internal/models"
	"github.com/sharpline/backend/internal/services"
)

type ScheduleHandler struct {
	Schedule *services.ScheduleService
	Matchups *services.MatchupService
}

func NewScheduleHandler(schedule *services.ScheduleService, matchups *services.MatchupService) *ScheduleHandler {
	return &ScheduleHandler{Schedule: schedule, Matchups: matchups}
}

// GetAllMatchups returns today's board for both leagues
// GET /api/v1/schedule/all
func (h *ScheduleHandler) GetAllMatchups(c *fiber.Ctx) error {
	return c.JSON(h.Matchups.GetAllMatchups(c.Context()))
}

// GetSchedule fetches the league's upcoming slate from the odds feed,
// persists it row by row, and returns the raw feed payload.
// GET /api/v1/schedule/:league
func (h *ScheduleHandler) GetSchedule(c *fiber.Ctx) error {
	league, err := models.ParseLeague(c.Params("league"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	results, err := h.Schedule.FetchSchedule(c.Context(), league)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	// Persistence failures are logged per row; the feed payload is returned
	// either way, matching the board's lenient read posture.
	h.Schedule.InsertScheduleLenient(c.Context(), league, results)

	return c.JSON(results)
}
