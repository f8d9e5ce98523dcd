package validation

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
)

type sample struct {
	Title string `json:"title" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Title: "too long title", Email: "nope"})
	require.Error(t, err)

	appErr := apperror.As(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	fields, ok := appErr.Details.([]FieldError)
	require.True(t, ok)
	assert.ElementsMatch(t, []FieldError{
		{Field: "title", Rule: "max", Param: "5"},
		{Field: "email", Rule: "email"},
	}, fields)

	assert.NoError(t, Struct(sample{Title: "ok"}))
}

func TestVar(t *testing.T) {
	err := Var("category", "GOLD", "oneof=REGULAR SPONSORED")
	require.Error(t, err)
	fields := apperror.As(err).Details.([]FieldError)
	assert.Equal(t, "category", fields[0].Field)
	assert.Equal(t, "oneof", fields[0].Rule)

	assert.NoError(t, Var("category", "REGULAR", "oneof=REGULAR SPONSORED"))
}

func TestParamIDAndOptionalBool(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		if _, err := ParamID(c, "id"); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("id")
		}
		flag, err := OptionalBool(c, "active")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("active")
		}
		if flag == nil {
			return c.SendString("unset")
		}
		if *flag {
			return c.SendString("true")
		}
		return c.SendString("false")
	})

	cases := map[string]string{
		"/3":              "unset",
		"/3?active=true":  "true",
		"/3?active=0":     "false",
		"/3?active=maybe": "active",
		"/0":              "id",
		"/abc":            "id",
	}
	for path, want := range cases {
		res, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		raw, _ := io.ReadAll(res.Body)
		assert.Equal(t, want, string(raw), path)
	}
}

func TestBind_RejectsMalformedBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var s sample
		if err := Bind(c, &s); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(apperror.As(err).Message)
		}
		return c.SendString(s.Title)
	})

	for body, want := range map[string]string{
		`{"title":"bike"}`: "bike",
		`{"title":`:        "Invalid request body",
		`{}`:               "Invalid request payload",
	} {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		require.NoError(t, err)
		raw, _ := io.ReadAll(res.Body)
		assert.Equal(t, want, string(raw), body)
	}
}
