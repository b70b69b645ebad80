package handlers

import (
	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) GetModerationSettings(c *fiber.Ctx) error {
	settings, err := h.settingsService.ModerationSettings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load moderation settings",
		})
	}
	return c.JSON(dto.ModerationSettingsResponse{
		AutoEscalationHours:           settings.AutoEscalationHours,
		AdminReportEscalationHours:    settings.AdminReportEscalationHours,
		ReminderBeforeEscalationHours: settings.ReminderBeforeEscalationHours,
	})
}

func (h *SettingsHandler) UpdateModerationSettings(c *fiber.Ctx) error {
	var req dto.UpdateModerationSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	settings, err := h.settingsService.UpdateModerationSettings(&req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ModerationSettingsResponse{
		AutoEscalationHours:           settings.AutoEscalationHours,
		AdminReportEscalationHours:    settings.AdminReportEscalationHours,
		ReminderBeforeEscalationHours: settings.ReminderBeforeEscalationHours,
	})
}
