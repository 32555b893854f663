package handlers

import (
	"errors"

	"qrate/internal/app"
	eventController "qrate/internal/controllers/events"
	requestController "qrate/internal/controllers/requests"
	songController "qrate/internal/controllers/songs"
	"qrate/internal/handlers/middleware"
	"qrate/internal/repositories"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	middleware middleware.Middleware
	log        logger.Logger
	router     fiber.Router
}

func Router(router fiber.Router, app *app.App) error {
	api := router.Group("/api")
	HealthHandler(api, app.Config)
	NewEventHandler(*app, api).Register()
	NewSongHandler(*app, api).Register()
	NewRequestHandler(*app, api).Register()

	return nil
}

// errorStatus maps controller sentinel errors onto HTTP status codes.
// Anything unrecognized is an internal error.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, eventController.ErrValidation),
		errors.Is(err, songController.ErrValidation),
		errors.Is(err, requestController.ErrValidation),
		errors.Is(err, repositories.ErrQuotaExceeded),
		errors.Is(err, repositories.ErrDuplicateRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, eventController.ErrNotFound),
		errors.Is(err, songController.ErrNotFound),
		errors.Is(err, requestController.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, requestController.ErrPolicy):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// errorResponse writes the standard error envelope. Known errors carry their
// message to the caller; storage failures stay behind a generic message.
func errorResponse(c *fiber.Ctx, err error, fallbackMsg string) error {
	status := errorStatus(err)
	msg := fallbackMsg
	if status != fiber.StatusInternalServerError {
		msg = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
