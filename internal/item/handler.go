package item

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/auth"
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
	items := router.Group("/api/items")
	items.Get("/", h.list)
	items.Post("/search", h.search)
	items.Get("/:id", h.get)
	items.Post("/", h.create)
	items.Put("/:id", h.update)
	items.Delete("/:id", h.delete)
}

func (h *Handler) list(c *fiber.Ctx) error {
	isBanner, err := validation.OptionalBool(c, "isBanner")
	if err != nil {
		return response.Error(c, err)
	}
	filter := ListFilter{IsBanner: isBanner}
	result, err := h.service.List(c.UserContext(), filter, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Items", result)
}

func (h *Handler) search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	result, err := h.service.Search(c.UserContext(), req.Query, pagination.New(SearchLimit, 0, SearchLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Search Items", result.Items)
}

func (h *Handler) get(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	it, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find An Item", it)
}

func (h *Handler) create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	// the caller owns the item unless an admin names another user
	if req.UserID == 0 {
		if claims, err := auth.ClaimsFromCtx(c); err == nil {
			req.UserID = claims.UserID
		}
	}
	it, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "Item Created", it)
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
	it, err := h.service.Update(c.UserContext(), id, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Item Updated", it)
}

func (h *Handler) delete(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Item Deleted", nil)
}
