package city

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	cities := router.Group("/api/cities")
	cities.Get("/", h.list)
	cities.Get("/:id", h.get)
	cities.Post("/", h.create)
	cities.Put("/:id", h.update)
	cities.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Cities", result)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	city, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find One City", city)
}

func (h *Handler) create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	city, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "City created successfully", city)
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
	city, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "City updated successfully", city)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "City deleted successfully", nil)
}
