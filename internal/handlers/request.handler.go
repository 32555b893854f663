package handlers

import (
	"qrate/internal/app"
	requestController "qrate/internal/controllers/requests"
	"qrate/internal/models"
	"qrate/internal/repositories"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RequestHandler struct {
	Handler
	requestController requestController.RequestControllerInterface
}

func NewRequestHandler(app app.App, router fiber.Router) *RequestHandler {
	log := logger.New("handlers").File("request_handler")
	return &RequestHandler{
		requestController: app.Controllers.Request,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *RequestHandler) Register() {
	events := h.router.Group("/events/:code")
	events.Get("/request-settings", h.getSettings)
	events.Put("/request-settings", h.updateSettings)
	events.Get("/request-analytics", h.analytics)

	requests := events.Group("/requests")
	requests.Post("", h.submit)
	requests.Get("", h.list)
	requests.Get("/best-next", h.bestNext)
	requests.Put("/:id", h.update)
	requests.Post("/:id/vote", h.vote)
}

func (h *RequestHandler) submit(c *fiber.Ctx) error {
	var req requestController.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.Submit(c.Context(), c.Params("code"), &req)
	if err != nil {
		return errorResponse(c, err, "Failed to submit request")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

func (h *RequestHandler) list(c *fiber.Ctx) error {
	filter := repositories.RequestFilter{
		Status:  models.RequestStatus(c.Query("status")),
		GuestID: c.Query("guestId"),
	}

	requests, err := h.requestController.List(c.Context(), c.Params("code"), filter)
	if err != nil {
		return errorResponse(c, err, "Failed to fetch requests")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"requests": requests,
	})
}

func (h *RequestHandler) update(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	request, err := h.requestController.Update(c.Context(), c.Params("code"), requestID, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to update request")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": request,
	})
}

func (h *RequestHandler) vote(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req requestController.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.requestController.Vote(c.Context(), c.Params("code"), requestID, &req)
	if err != nil {
		return errorResponse(c, err, "Failed to process vote")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"request": result,
	})
}

func (h *RequestHandler) bestNext(c *fiber.Ctx) error {
	var currentTrackID *uuid.UUID
	if raw := c.Query("current_track_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid current track ID",
			})
		}
		currentTrackID = &parsed
	}

	recommendation, err := h.requestController.BestNext(c.Context(), c.Params("code"), currentTrackID)
	if err != nil {
		return errorResponse(c, err, "Failed to get recommendation")
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"recommendation": recommendation,
	})
}

func (h *RequestHandler) getSettings(c *fiber.Ctx) error {
	settings, err := h.requestController.GetSettings(c.Context(), c.Params("code"))
	if err != nil {
		return errorResponse(c, err, "Failed to fetch request settings")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settings,
	})
}

func (h *RequestHandler) updateSettings(c *fiber.Ctx) error {
	var req requestController.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	settings, err := h.requestController.UpdateSettings(c.Context(), c.Params("code"), &req)
	if err != nil {
		return errorResponse(c, err, "Failed to update request settings")
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settings,
	})
}
