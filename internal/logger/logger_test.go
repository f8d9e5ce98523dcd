package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	log := Discard()
	assert.Same(t, log, FromContext(WithLogger(context.Background(), log)))
}

func TestMiddleware_LogsRequestWithID(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Middleware(New(&buf, "info")))
	app.Get("/ping", func(c *fiber.Ctx) error {
		FromContext(c.UserContext()).Info("inside")
		return c.SendStatus(fiber.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-1")
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-1", res.Header.Get(fiber.HeaderXRequestID))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var access map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "request", access["msg"])
	assert.Equal(t, "req-1", access["request_id"])
	assert.Equal(t, "/ping", access["path"])
	assert.Equal(t, float64(fiber.StatusTeapot), access["status"])
}

func TestMiddleware_GeneratesID(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(Discard()))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Len(t, res.Header.Get(fiber.HeaderXRequestID), 36)
}
