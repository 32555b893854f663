package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"qrate/internal/handlers/middleware"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTraceApp(capture *string) *fiber.App {
	m := &middleware.Middleware{}
	app := fiber.New()
	app.Use(m.TraceID())
	app.Get("/", func(c *fiber.Ctx) error {
		*capture = logger.TraceIDFromContext(c.UserContext())
		return c.SendString(middleware.GetTraceID(c))
	})
	return app
}

func TestTraceIDPropagatesHeader(t *testing.T) {
	var fromContext string
	app := newTraceApp(&fromContext)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.TraceIDHeader, "trace-abc-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-abc-123", resp.Header.Get(middleware.TraceIDHeader))
	assert.Equal(t, "trace-abc-123", fromContext)
}

func TestTraceIDGeneratesWhenMissing(t *testing.T) {
	var fromContext string
	app := newTraceApp(&fromContext)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	generated := resp.Header.Get(middleware.TraceIDHeader)
	_, err = uuid.Parse(generated)
	require.NoError(t, err, "generated trace ID should be a uuid")
	assert.Equal(t, generated, fromContext)
}
