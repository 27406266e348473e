package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderlog/backend/internal/services"
	"github.com/wanderlog/backend/pkg/logger"
	"github.com/wanderlog/backend/pkg/utils"
)

type DirectionsHandler struct {
	Client *services.DirectionsClient
}

func NewDirectionsHandler(client *services.DirectionsClient) *DirectionsHandler {
	return &DirectionsHandler{Client: client}
}

// GetRoute relays the request body to the directions API and the upstream
// response back to the caller. One attempt, no caching.
func (h *DirectionsHandler) GetRoute(c *fiber.Ctx) error {
	data, contentType, err := h.Client.Route(c.Context(), c.Body())
	if err != nil {
		logger.Error("route_proxy_failed", err, map[string]interface{}{
			"ip": c.IP(),
		})
		return utils.Error(c, fiber.StatusBadGateway, "failed to fetch route")
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}
