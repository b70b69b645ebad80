package handlers

import (
	"errors"
	"strconv"

	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/middleware"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReportHandler struct {
	moderationService *services.ModerationService
}

func NewReportHandler(moderationService *services.ModerationService) *ReportHandler {
	return &ReportHandler{moderationService: moderationService}
}

// CreateReport accepts an anonymous submission (reporter identified by
// email only).
func (h *ReportHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.moderationService.CreateReport(&req, nil)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

// CreateAccountReport accepts a submission from an authenticated account.
func (h *ReportHandler) CreateAccountReport(c *fiber.Ctx) error {
	accountID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.moderationService.CreateReport(&req, &accountID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) CreateAdminReport(c *fiber.Ctx) error {
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateAdminReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.moderationService.CreateAdminReport(&req, adminID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) VerifyReport(c *fiber.Ctx) error {
	report, err := h.moderationService.VerifyReport(c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// OwnerResolve and OwnerDismiss are the calendar-owner review actions.
func (h *ReportHandler) OwnerResolve(c *fiber.Ctx) error {
	return h.review(c, models.RoleOwner, h.moderationService.ResolveReport)
}

func (h *ReportHandler) OwnerDismiss(c *fiber.Ctx) error {
	return h.review(c, models.RoleOwner, h.moderationService.DismissReport)
}

func (h *ReportHandler) AdminResolve(c *fiber.Ctx) error {
	return h.review(c, models.RoleAdmin, h.moderationService.ResolveReport)
}

func (h *ReportHandler) AdminDismiss(c *fiber.Ctx) error {
	return h.review(c, models.RoleAdmin, h.moderationService.DismissReport)
}

func (h *ReportHandler) AdminEscalate(c *fiber.Ctx) error {
	return h.review(c, models.RoleAdmin, h.moderationService.EscalateReport)
}

func (h *ReportHandler) AdminOverride(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}
	adminID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.moderationService.OverrideReport(reportID, adminID, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	report, err := h.moderationService.GetReport(reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	filter := dto.ReportFilter{
		Status:         c.Query("status", ""),
		Category:       c.Query("category", ""),
		EventID:        c.Query("event_id", ""),
		CalendarID:     c.Query("calendar_id", ""),
		Source:         c.Query("source", ""),
		EscalationType: c.Query("escalation_type", ""),
		SortBy:         c.Query("sort_by", ""),
		SortOrder:      c.Query("sort_order", ""),
		Page:           page,
		Limit:          limit,
	}

	reports, total, err := h.moderationService.ListReports(&filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dto.ListReportsResponse{
		Reports: reports,
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
}

func (h *ReportHandler) GetEscalationHistory(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}

	history, err := h.moderationService.GetEscalationHistory(reportID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"escalations": history})
}

type reviewFunc func(reportID, reviewerID uuid.UUID, role, notes string) (*models.Report, error)

func (h *ReportHandler) review(c *fiber.Ctx, role string, apply reviewFunc) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid report ID",
		})
	}
	reviewerID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := apply(reportID, reviewerID, role, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// respondError maps domain errors to HTTP statuses; validation errors carry
// the full violation list.
func respondError(c *fiber.Ctx, err error) error {
	var ve *dto.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      true,
			"message":    "Validation failed",
			"violations": ve.Violations,
		})
	}

	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrBlockNotFound):
		status, message = fiber.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrReportAlreadyResolved),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrDuplicateReport),
		errors.Is(err, services.ErrAlreadyBlocked):
		status, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, services.ErrEmailRateLimited):
		status, message = fiber.StatusTooManyRequests, err.Error()
	case errors.Is(err, services.ErrReporterBlocked):
		status, message = fiber.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrInvalidVerificationToken):
		status, message = fiber.StatusBadRequest, err.Error()
	}

	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
