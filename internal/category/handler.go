package category

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
	categories := router.Group("/api/categories")
	categories.Get("/", h.listTopLevel)
	// literal segment before the :id routes
	categories.Get("/sub", h.listSub)
	categories.Get("/:id/sub", h.listChildren)
	categories.Get("/:id", h.get)
	categories.Post("/", h.create)
	categories.Put("/:id", h.update)
	categories.Delete("/:id", h.delete)
}

func (h *Handler) listTopLevel(c *fiber.Ctx) error {
	return h.list(c, Filter{Scope: ScopeTopLevel}, "Find All Categories")
}

func (h *Handler) listSub(c *fiber.Ctx) error {
	return h.list(c, Filter{Scope: ScopeSub}, "Find All Sub Categories")
}

func (h *Handler) listChildren(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	return h.list(c, Filter{Scope: ScopeChildren, ParentID: id}, "Find All Sub Categories")
}

func (h *Handler) list(c *fiber.Ctx, filter Filter, message string) error {
	result, err := h.service.List(c.UserContext(), filter, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, message, result)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	category, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find A Category", category)
}

func (h *Handler) create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	category, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "Category Created", category)
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
	category, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Category Updated Successfully", category)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Category Deleted Successfully", nil)
}
