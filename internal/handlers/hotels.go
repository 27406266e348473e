package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderlog/backend/internal/catalog"
	"github.com/wanderlog/backend/pkg/utils"
)

type HotelsHandler struct {
	Catalog *catalog.Catalog
}

func NewHotelsHandler(c *catalog.Catalog) *HotelsHandler {
	return &HotelsHandler{Catalog: c}
}

func (h *HotelsHandler) List(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, h.Catalog.All())
}

func (h *HotelsHandler) ByLocation(c *fiber.Ctx) error {
	location, err := url.PathUnescape(c.Params("location"))
	if err != nil {
		location = c.Params("location")
	}

	hotels := h.Catalog.ByLocation(location)
	if len(hotels) == 0 {
		return utils.Error(c, fiber.StatusNotFound, "no hotels found for this location")
	}

	return utils.Success(c, fiber.StatusOK, hotels)
}
