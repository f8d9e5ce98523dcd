package banner

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// RegisterProtectedRoutes must run before the item routes so that
// /api/items/banners is not captured by /api/items/:id.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	banners := router.Group("/api/items/banners")
	banners.Get("/", h.list)
	banners.Get("/:id", h.get)
	banners.Put("/:id", h.update)
	banners.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	active, err := validation.OptionalBool(c, "active")
	if err != nil {
		return response.Error(c, err)
	}
	result, err := h.service.List(c.UserContext(), Filter{Active: active}, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Banners", result)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	b, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find A Banner", b)
}

func (h *Handler) update(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	var req UpdateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	b, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Banner Updated", b)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Banner Deleted", nil)
}
