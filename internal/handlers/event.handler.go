package handlers

import (
	"qrate/internal/app"
	eventController "qrate/internal/controllers/events"
	"qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	Handler
	eventController eventController.EventControllerInterface
}

func NewEventHandler(app app.App, router fiber.Router) *EventHandler {
	log := logger.New("handlers").File("event_handler")
	return &EventHandler{
		eventController: app.Controllers.Event,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *EventHandler) Register() {
	events := h.router.Group("/events")
	events.Post("", h.createEvent)
	events.Get("/:code", h.getEvent)
	events.Get("/:code/insights", h.getInsights)
}

func (h *EventHandler) createEvent(c *fiber.Ctx) error {
	var req eventController.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	event, err := h.eventController.CreateEvent(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err, "Failed to create event")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"event":   event,
	})
}

func (h *EventHandler) getEvent(c *fiber.Ctx) error {
	code := c.Params("code")
	sessionType := models.SessionType(c.Query("session_type", string(models.SessionGuest)))
	userID := c.Query("user_id")

	detail, err := h.eventController.GetEvent(c.Context(), code, userID, sessionType)
	if err != nil {
		return errorResponse(c, err, "Failed to fetch event")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"event":       detail.Event,
		"preferences": detail.Preferences,
	})
}

func (h *EventHandler) getInsights(c *fiber.Ctx) error {
	insights, err := h.eventController.GetInsights(c.Context(), c.Params("code"))
	if err != nil {
		return errorResponse(c, err, "Failed to generate insights")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"insights": insights,
	})
}
