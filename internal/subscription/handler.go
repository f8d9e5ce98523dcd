package subscription

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

func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	subs := router.Group("/api/subscriptions")
	subs.Get("/", h.list)
	subs.Get("/:id", h.get)
	subs.Post("/", h.create)
	subs.Put("/:id", h.update)
	subs.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	category := Category(c.Query("category"))
	if category != "" {
		if err := validation.Var("category", string(category), "oneof=REGULAR SPONSORED"); err != nil {
			return response.Error(c, err)
		}
	}
	result, err := h.service.List(c.UserContext(), Filter{Category: category}, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Subscriptions", result)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	sub, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find A Subscription", sub)
}

func (h *Handler) create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	sub, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "Subscription Created", sub)
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
	sub, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Subscription Updated", sub)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Subscription Deleted", nil)
}
