package auth

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/user"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

// Accounts is the part of the user service the auth endpoints need.
type Accounts interface {
	Register(ctx context.Context, req user.RegisterRequest) (user.User, error)
	Authenticate(ctx context.Context, emailOrUsername, password string) (user.User, error)
	CheckUsername(ctx context.Context, username string) (user.Availability, error)
	CheckEmail(ctx context.Context, email string) (user.Availability, error)
}

type LoginResponse struct {
	Token  string    `json:"token"`
	UserID int       `json:"userId"`
	Role   user.Role `json:"role"`
}

type Handler struct {
	accounts Accounts
	issuer   *Issuer
}

func NewHandler(accounts Accounts, issuer *Issuer) *Handler {
	return &Handler{accounts: accounts, issuer: issuer}
}

func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/register", h.register)
	auth.Post("/login", h.login)
	auth.Get("/check-username", h.checkUsername)
	auth.Get("/check-email", h.checkEmail)
}

func (h *Handler) register(c *fiber.Ctx) error {
	var req user.RegisterRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	if _, err := h.accounts.Register(c.UserContext(), req); err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "User created successfully", nil)
}

func (h *Handler) login(c *fiber.Ctx) error {
	var req user.LoginRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	account, err := h.accounts.Authenticate(c.UserContext(), req.EmailOrUsername, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.Issue(account)
	if err != nil {
		return response.Error(c, apperror.Internal(apperror.CodeInternal, "Failed to issue token", err))
	}

	logger.FromContext(c.UserContext()).Info("login", slog.Int("user_id", account.ID))
	return response.OK(c, "Login successful", LoginResponse{Token: token, UserID: account.ID, Role: account.Role})
}

func (h *Handler) checkUsername(c *fiber.Ctx) error {
	result, err := h.accounts.CheckUsername(c.UserContext(), c.Query("username"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Username availability", result)
}

func (h *Handler) checkEmail(c *fiber.Ctx) error {
	result, err := h.accounts.CheckEmail(c.UserContext(), c.Query("email"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, "Email availability", result)
}
