package upload

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
	"github.com/wichananm65/tabdil-hub-backend/internal/validation"
)

type Handler struct {
	service  *Service
	maxBytes int64
}

func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	router.Post("/api/upload", h.upload)
}

func (h *Handler) upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, apperror.Validation("No file uploaded",
			[]validation.FieldError{{Field: "file", Rule: "required"}}))
	}
	if header.Size > h.maxBytes {
		return response.Error(c, h.tooLarge())
	}

	f, err := header.Open()
	if err != nil {
		return response.Error(c, apperror.Internal(apperror.CodeUploadFailed, "Image upload failed", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		return response.Error(c, apperror.Internal(apperror.CodeUploadFailed, "Image upload failed", err))
	}
	if int64(len(data)) > h.maxBytes {
		return response.Error(c, h.tooLarge())
	}

	result, err := h.service.Upload(c.UserContext(), data)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, "Image uploaded successfully", result)
}

func (h *Handler) tooLarge() error {
	return apperror.Validation("File is too large",
		[]validation.FieldError{{Field: "file", Rule: "max", Param: strconv.FormatInt(h.maxBytes, 10)}})
}
