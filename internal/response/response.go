// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Envelope struct {
	StatusCode int        `json:"statusCode"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func OK(c *fiber.Ctx, message string, data any) error {
	return Success(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, message string, data any) error {
	return Success(c, fiber.StatusCreated, message, data)
}

func Success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Status:     StatusSuccess,
		Message:    message,
		Data:       data,
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as an error envelope. Internal failures are logged and
// their cause is never sent to the client.
func Error(c *fiber.Ctx, err error) error {
	appErr := apperror.As(err)
	status := StatusFor(appErr.Kind)

	if appErr.Kind == apperror.KindInternal {
		logger.FromContext(c.UserContext()).Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("code", appErr.Code),
			slog.Any("error", err),
		)
	}

	body := &ErrorBody{Code: appErr.Code, Details: appErr.Details}
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Status:     StatusError,
		Message:    appErr.Message,
		Error:      body,
	})
}

// ErrorHandler is installed as the fiber app error handler so framework
// errors share the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := apperror.KindInternal
		code := apperror.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			kind, code = apperror.KindNotFound, apperror.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			kind, code = apperror.KindValidation, apperror.CodeValidationFailed
		case fiber.StatusUnauthorized:
			kind, code = apperror.KindUnauthorized, apperror.CodeUnauthorized
		}
		if kind != apperror.KindInternal {
			return Error(c, &apperror.Error{Kind: kind, Code: code, Message: fe.Message, Details: fe.Message})
		}
	}
	return Error(c, err)
}
