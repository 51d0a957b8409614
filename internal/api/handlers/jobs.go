/**
 * @description
 * Job trigger API Handlers.
 * Runs the combined schedule+picks pipeline for a league on demand, the
 * same path the worker takes on its schedule.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/jobs
 */

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sharpline/backend/internal/jobs"
	"github.com/sharpline/backend/internal/models"
)

type JobsHandler struct {
	Runner *jobs.Runner
}

func NewJobsHandler(runner *jobs.Runner) *JobsHandler {
	return &JobsHandler{Runner: runner}
}

// RunLeagueJob triggers ingestion + evaluation for a league.
// GET /api/v1/jobs/:league
func (h *JobsHandler) RunLeagueJob(c *fiber.Ctx) error {
	league, err := models.ParseLeague(c.Params("league"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	status := h.Runner.RunLeagueJob(c.Context(), league)
	if !status.OK {
		return c.Status(fiber.StatusInternalServerError).JSON(status)
	}
	return c.JSON(status)
}
