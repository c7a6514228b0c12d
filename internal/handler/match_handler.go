package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/skillswap/skillswap-api/internal/dto"
	"github.com/skillswap/skillswap-api/internal/service"
	"github.com/skillswap/skillswap-api/internal/utils"
)

// MatchHandler exposes skill-exchange match endpoints.
type MatchHandler struct {
	service service.MatchService
	logger  zerolog.Logger
}

// NewMatchHandler creates a match handler instance.
func NewMatchHandler(service service.MatchService, logger zerolog.Logger) *MatchHandler {
	return &MatchHandler{
		service: service,
		logger:  logger.With().Str("component", "match_handler").Logger(),
	}
}

// Register binds the match routes under the provided router group.
func (h *MatchHandler) Register(router fiber.Router) {
	router.Post("/", h.request)
	router.Get("/", h.list)
	router.Get("/suggestions", h.suggestions)
	router.Post("/:id/accept", h.accept)
	router.Post("/:id/decline", h.decline)
}

func (h *MatchHandler) request(c *fiber.Ctx) error {
	userID := userIDStringFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.MatchCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	match, err := h.service.Request(requestContext(c), userID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSelfMatch):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateMatch):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "match requested", match)
}

func (h *MatchHandler) list(c *fiber.Ctx) error {
	userID := userIDStringFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	matches, err := h.service.List(requestContext(c), userID, c.Query("status"), limit, offset)
	if err != nil {
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "matches", matches)
}

func (h *MatchHandler) suggestions(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	suggestions, err := h.service.Suggestions(requestContext(c), userID, limit)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "match suggestions", suggestions)
}

func (h *MatchHandler) accept(c *fiber.Ctx) error {
	return h.resolve(c, h.service.Accept, "match accepted")
}

func (h *MatchHandler) decline(c *fiber.Ctx) error {
	return h.resolve(c, h.service.Decline, "match declined")
}

func (h *MatchHandler) resolve(c *fiber.Ctx, action func(ctx context.Context, userID string, id uint) (dto.MatchResponse, error), message string) error {
	userID := userIDStringFromContext(c)
	if userID == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid match id")
	}

	match, err := action(requestContext(c), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrMatchForbidden):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrMatchResolved):
			return utils.SendError(c, fiber.StatusConflict, err.Error())
		default:
			return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return utils.SendSuccess(c, message, match)
}
