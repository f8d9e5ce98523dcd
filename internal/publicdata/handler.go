package publicdata

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/pagination"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

type SearchRequest struct {
	Query  string `json:"query" validate:"required"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	public := router.Group("/public-data")
	public.Post("/search", h.search)
	public.Get("/banners", h.banners)
	public.Get("/categories", h.categories)
	public.Get("/subscriptions", h.subscriptions)
	public.Get("/popular-items", h.popular)
	public.Get("/items", h.items)
	public.Get("/item/:id", h.item)
	public.Get("/users/:id", h.user)
	public.Get("/users/:id/items", h.userItems)
}

func (h *Handler) search(c *fiber.Ctx) error {
	var req SearchRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}
	page := pagination.FromQuery(c, DefaultListLimit)
	if req.Limit > 0 || req.Offset > 0 {
		page = pagination.New(req.Limit, req.Offset, DefaultListLimit)
	}
	result, err := h.service.Search(c.UserContext(), req.Query, page)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Search Items", result)
}

func (h *Handler) banners(c *fiber.Ctx) error {
	result, err := h.service.Banners(c.UserContext(), pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Banners", result)
}

func (h *Handler) categories(c *fiber.Ctx) error {
	tree, err := h.service.Categories(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Categories", tree)
}

func (h *Handler) subscriptions(c *fiber.Ctx) error {
	result, err := h.service.Subscriptions(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Subscriptions", result)
}

func (h *Handler) popular(c *fiber.Ctx) error {
	popular, err := h.service.Popular(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find Popular Items", popular)
}

func (h *Handler) items(c *fiber.Ctx) error {
	categoryID := c.QueryInt("categoryId")
	subcategoryID := c.QueryInt("subcategoryId")
	if categoryID < 0 || subcategoryID < 0 {
		return response.Error(c, apperror.Validation("categoryId and subcategoryId must be positive", nil))
	}
	result, err := h.service.Items(c.UserContext(), categoryID, subcategoryID, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find All Items", result)
}

func (h *Handler) item(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	it, err := h.service.Item(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find An Item", it)
}

func (h *Handler) user(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	profile, err := h.service.User(c.UserContext(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find A User", profile)
}

func (h *Handler) userItems(c *fiber.Ctx) error {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return response.Error(c, err)
	}
	result, err := h.service.UserItems(c.UserContext(), id, pagination.FromQuery(c, DefaultListLimit))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Find User Items", result)
}
