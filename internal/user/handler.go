package user

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

// RegisterProtectedRoutes mounts /api/users. The router must already sit
// behind the auth middleware.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	users := router.Group("/api/users")
	users.Get("/", h.getUsers)
	users.Post("/search", h.searchUsers)
	users.Get("/:id", h.getUser)
	users.Post("/", h.createUser)
	users.Put("/:id", h.updateUser)
	users.Delete("/:id", h.deleteUser)
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Users", result)
}

func (h *Handler) getUser(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find One User", user)
}

func (h *Handler) createUser(c *fiber.Ctx) error {
	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	created, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "User created successfully", created)
}

func (h *Handler) updateUser(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	var req UpdateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	updated, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "User updated successfully", updated)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "User deleted successfully", nil)
}

func (h *Handler) searchUsers(c *fiber.Ctx) error {
	var req SearchRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	users, err := h.service.Search(c.UserContext(), req.Query)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Search Users", users)
}
