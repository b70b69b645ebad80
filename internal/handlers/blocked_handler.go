package handlers

import (
	"strconv"

	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/middleware"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BlockedHandler struct {
	moderationService *services.ModerationService
}

func NewBlockedHandler(moderationService *services.ModerationService) *BlockedHandler {
	return &BlockedHandler{moderationService: moderationService}
}

func (h *BlockedHandler) BlockReporter(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BlockReporterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email is required",
		})
	}

	block, err := h.moderationService.BlockReporter(req.Email, adminID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(block)
}

func (h *BlockedHandler) UnblockReporter(c *fiber.Ctx) error {
	email := c.Query("email", "")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email query parameter is required",
		})
	}

	if err := h.moderationService.UnblockReporter(email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reporter unblocked successfully"})
}

func (h *BlockedHandler) ListBlockedReporters(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	blocks, total, err := h.moderationService.ListBlockedReporters(page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch blocked reporters",
		})
	}

	return c.JSON(fiber.Map{
		"blocked": blocks,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
