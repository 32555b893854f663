package handlers

import (
	"qrate/internal/app"
	songController "qrate/internal/controllers/songs"
	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type SongHandler struct {
	Handler
	songController songController.SongControllerInterface
}

func NewSongHandler(app app.App, router fiber.Router) *SongHandler {
	log := logger.New("handlers").File("song_handler")
	return &SongHandler{
		songController: app.Controllers.Song,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *SongHandler) Register() {
	events := h.router.Group("/events/:code")
	events.Post("/preferences", h.submitPreferences)
	events.Get("/top-songs", h.topSongs)
	events.Get("/session-pool", h.sessionPool)
}

func (h *SongHandler) submitPreferences(c *fiber.Ctx) error {
	var req songController.SubmitPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.songController.SubmitPreferences(c.Context(), c.Params("code"), &req)
	if err != nil {
		return errorResponse(c, err, "Failed to submit preferences")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"guestId": result.GuestID,
	})
}

func (h *SongHandler) topSongs(c *fiber.Ctx) error {
	songs, err := h.songController.TopSongs(c.Context(), c.Params("code"))
	if err != nil {
		return errorResponse(c, err, "Failed to get top songs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"songs":   songs,
	})
}

func (h *SongHandler) sessionPool(c *fiber.Ctx) error {
	songs, err := h.songController.SessionPool(c.Context(), c.Params("code"))
	if err != nil {
		return errorResponse(c, err, "Failed to get session pool")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"songs":   songs,
	})
}
