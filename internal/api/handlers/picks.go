/**
 * @description
 * Picks API Handlers.
 * Triggers an on-demand picks evaluation for a league.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend/internal/services
 */

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sharpline/backend/internal/models"
	"github.com/sharpline/backend/internal/services"
)

type PicksHandler struct {
	Service *services.PicksService
}

func NewPicksHandler(service *services.PicksService) *PicksHandler {
	return &PicksHandler{Service: service}
}

// EvaluatePicks runs the prediction pipeline for a league and returns the
// accepted picks with accept/reject/insert counts.
// GET /api/v1/picks/evaluate/:league
func (h *PicksHandler) EvaluatePicks(c *fiber.Ctx) error {
	league, err := models.ParseLeague(c.Params("league"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	result, err := h.Service.EvaluatePicks(c.Context(), league)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, services.ErrModelOutput) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}
