package services

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/gatherhub/moderation-service/internal/config"
	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/notify"
	"github.com/gatherhub/moderation-service/internal/reporter"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationService is the single writer for reports, the dedup ledger, the
// escalation audit trail and the blocked-reporter list. The scheduler and the
// handlers both route every mutation through here.
type ModerationService struct {
	reports        ReportRepository
	eventReporters EventReporterRepository
	escalations    EscalationRepository
	blocked        BlockedReporterRepository
	events         EventDirectory
	signals        *SignalService
	notifier       notify.Notifier
	hasher         *reporter.Hasher
	validate       *validator.Validate

	rateLimitWindow time.Duration
	rateLimitMax    int
	verificationTTL time.Duration
	now             func() time.Time
}

func NewModerationService(
	reports ReportRepository,
	eventReporters EventReporterRepository,
	escalations EscalationRepository,
	blocked BlockedReporterRepository,
	events EventDirectory,
	signals *SignalService,
	notifier notify.Notifier,
	hasher *reporter.Hasher,
	cfg *config.Config,
) *ModerationService {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ModerationService{
		reports:         reports,
		eventReporters:  eventReporters,
		escalations:     escalations,
		blocked:         blocked,
		events:          events,
		signals:         signals,
		notifier:        notifier,
		hasher:          hasher,
		validate:        v,
		rateLimitWindow: cfg.RateLimitWindow,
		rateLimitMax:    cfg.RateLimitMax,
		verificationTTL: cfg.VerificationTTL,
		now:             time.Now,
	}
}

// CreateReport files a report against an event. A nil accountID means an
// anonymous submission: the email is required, hashed, gated against the
// block list and the rate limit, and the report starts in
// pending_verification with a single-use token.
func (s *ModerationService) CreateReport(req *dto.CreateReportRequest, accountID *uuid.UUID) (*models.Report, error) {
	anonymous := accountID == nil
	if err := s.validateCreate(req, anonymous); err != nil {
		return nil, err
	}

	eventID, _ := uuid.Parse(req.EventID)
	calendarID, err := s.resolveCalendar(eventID, req.CalendarID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &models.Report{
		ID:          uuid.New(),
		EventID:     eventID,
		CalendarID:  calendarID,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
	}
	if req.ForwardedFromInstance != "" {
		instance := req.ForwardedFromInstance
		report.ForwardedFromInstance = &instance
		if req.ForwardedReportID != "" {
			forwardedID := req.ForwardedReportID
			report.ForwardedReportID = &forwardedID
		}
		received := "received"
		report.ForwardStatus = &received
	}

	ctx := map[string]interface{}{}
	if anonymous {
		hash := s.hasher.HashEmail(req.ReporterEmail)

		isBlocked, err := s.blocked.IsBlocked(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to check blocked reporters: %w", err)
		}
		if isBlocked {
			return nil, ErrReporterBlocked
		}

		count, err := s.reports.CountByEmailHashSince(hash, now.Add(-s.rateLimitWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to count recent reports: %w", err)
		}
		if count >= int64(s.rateLimitMax) {
			return nil, ErrEmailRateLimited
		}

		token, err := reporter.NewVerificationToken()
		if err != nil {
			return nil, err
		}
		expiration := reporter.TokenExpiration(now, s.verificationTTL)

		report.ReporterType = models.ReporterAnonymous
		report.ReporterEmailHash = &hash
		report.VerificationToken = &token
		report.VerificationExpiration = &expiration
		report.Status = models.StatusPendingVerification

		// The email collaborator needs the token; the report JSON never
		// carries it.
		ctx["verification_token"] = token
		ctx["reporter_email"] = strings.ToLower(strings.TrimSpace(req.ReporterEmail))
	} else {
		report.ReporterType = models.ReporterAuthenticated
		report.ReporterAccountID = accountID
		report.Status = models.StatusSubmitted
	}

	return s.persistNewReport(report, ctx)
}

// CreateAdminReport files an administrator-initiated report; it starts in
// submitted and skips the anonymous gates.
func (s *ModerationService) CreateAdminReport(req *dto.CreateAdminReportRequest, adminID uuid.UUID) (*models.Report, error) {
	if err := s.validateAdminCreate(req); err != nil {
		return nil, err
	}

	eventID, _ := uuid.Parse(req.EventID)
	calendarID, err := s.resolveCalendar(eventID, req.CalendarID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:                uuid.New(),
		EventID:           eventID,
		CalendarID:        calendarID,
		Category:          req.Category,
		Description:       strings.TrimSpace(req.Description),
		ReporterType:      models.ReporterAdministrator,
		ReporterAccountID: &adminID,
		AdminID:           &adminID,
		AdminDeadline:     req.Deadline,
		AdminNotes:        req.AdminNotes,
		Status:            models.StatusSubmitted,
	}
	if req.Priority != "" {
		priority := req.Priority
		report.AdminPriority = &priority
	}

	return s.persistNewReport(report, map[string]interface{}{})
}

// persistNewReport applies the two-layer dedup: an optimistic existence check
// before the write, then the unique-constrained ledger insert after it. If
// the insert loses a race, the just-created report is deleted so the loser
// observes a clean duplicate error with no orphan row.
func (s *ModerationService) persistNewReport(report *models.Report, ctx map[string]interface{}) (*models.Report, error) {
	identifier := report.ReporterIdentifier()

	exists, err := s.eventReporters.Exists(report.EventID, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate report: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReport
	}

	if s.signals != nil {
		s.signals.Evaluate(report)
	}

	if err := s.reports.Create(report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	pair := &models.EventReporter{
		ID:                 uuid.New(),
		EventID:            report.EventID,
		ReporterIdentifier: identifier,
		ReportID:           report.ID,
	}
	if err := s.eventReporters.Create(pair); err != nil {
		if delErr := s.reports.Delete(report.ID); delErr != nil {
			slog.Error("failed to delete report after dedup conflict",
				"report_id", report.ID.String(), "error", delErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReport
		}
		return nil, fmt.Errorf("failed to record event reporter: %w", err)
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportCreated, Report: report, Context: ctx})
	return report, nil
}

// VerifyReport consumes a verification token. The conditional update in the
// repository is the atomicity boundary; zero affected rows means invalid,
// expired or already consumed, reported uniformly so callers cannot probe
// token state.
func (s *ModerationService) VerifyReport(token string) (*models.Report, error) {
	if token == "" {
		return nil, ErrInvalidVerificationToken
	}

	report, err := s.reports.ConsumeVerificationToken(token, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to verify report: %w", err)
	}
	if report == nil {
		return nil, ErrInvalidVerificationToken
	}

	esc := &models.ReportEscalation{
		ID:           uuid.New(),
		ReportID:     report.ID,
		FromStatus:   models.StatusPendingVerification,
		ToStatus:     models.StatusSubmitted,
		ReviewerRole: models.RoleSystem,
		Decision:     models.DecisionVerified,
	}
	if err := s.escalations.Create(esc); err != nil {
		slog.Error("failed to record verification audit row",
			"report_id", report.ID.String(), "error", err)
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportVerified, Report: report, Context: map[string]interface{}{}})
	return report, nil
}

// ResolveReport marks a report resolved by its calendar owner (from
// submitted) or an administrator (from escalated).
func (s *ModerationService) ResolveReport(reportID, reviewerID uuid.UUID, role, notes string) (*models.Report, error) {
	report, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.IsTerminal() {
		return nil, ErrReportAlreadyResolved
	}
	if report.Status == models.StatusPendingVerification {
		return nil, ErrInvalidTransition
	}

	if err := s.transition(report, models.StatusResolved, &reviewerID, role, models.DecisionResolved, notes); err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportResolved, Report: report, Context: map[string]interface{}{
		"reviewer_id": reviewerID.String(),
	}})
	return report, nil
}

// DismissReport applies role-dependent dismissal. An owner dismissal is never
// terminal: the report forwards to administrators as an automatic
// escalation. Only an administrator dismissing an escalated report reaches
// the terminal dismissed state.
func (s *ModerationService) DismissReport(reportID, reviewerID uuid.UUID, role, notes string) (*models.Report, error) {
	report, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.IsTerminal() {
		return nil, ErrReportAlreadyResolved
	}

	switch role {
	case models.RoleOwner:
		if report.Status != models.StatusSubmitted {
			return nil, ErrInvalidTransition
		}
		auto := models.EscalationAutomatic
		report.EscalationType = &auto
		report.OwnerNotes = notes
		if err := s.transition(report, models.StatusEscalated, &reviewerID, role, models.DecisionEscalated, notes); err != nil {
			return nil, err
		}
		s.notifier.Publish(notify.Event{Name: notify.EventReportEscalated, Report: report, Context: map[string]interface{}{
			"reviewer_id": reviewerID.String(),
			"reason":      "owner_dismissed",
		}})
		return report, nil

	case models.RoleAdmin:
		if report.Status != models.StatusEscalated {
			return nil, ErrInvalidTransition
		}
		if err := s.transition(report, models.StatusDismissed, &reviewerID, role, models.DecisionDismissed, notes); err != nil {
			return nil, err
		}
		s.notifier.Publish(notify.Event{Name: notify.EventReportDismissed, Report: report, Context: map[string]interface{}{
			"reviewer_id": reviewerID.String(),
		}})
		return report, nil

	default:
		return nil, fmt.Errorf("unknown reviewer role %q", role)
	}
}

// EscalateReport escalates a submitted report manually.
func (s *ModerationService) EscalateReport(reportID, reviewerID uuid.UUID, role, notes string) (*models.Report, error) {
	report, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}
	if report.IsTerminal() {
		return nil, ErrReportAlreadyResolved
	}
	if report.Status != models.StatusSubmitted {
		return nil, ErrInvalidTransition
	}

	manual := models.EscalationManual
	report.EscalationType = &manual
	if err := s.transition(report, models.StatusEscalated, &reviewerID, role, models.DecisionEscalated, notes); err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportEscalated, Report: report, Context: map[string]interface{}{
		"reviewer_id": reviewerID.String(),
		"reason":      "manual",
	}})
	return report, nil
}

// OverrideReport is the administrator bypass: it resolves the report
// regardless of its current status, terminal included.
func (s *ModerationService) OverrideReport(reportID, adminID uuid.UUID, notes string) (*models.Report, error) {
	report, err := s.getReport(reportID)
	if err != nil {
		return nil, err
	}

	if err := s.transition(report, models.StatusResolved, &adminID, models.RoleAdmin, models.DecisionOverride, notes); err != nil {
		return nil, err
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportOverridden, Report: report, Context: map[string]interface{}{
		"reviewer_id": adminID.String(),
	}})
	return report, nil
}

// AutoEscalate is the scheduler path: system-driven escalation of a
// submitted report past its deadline.
func (s *ModerationService) AutoEscalate(report *models.Report, note string) error {
	if report.IsTerminal() {
		return ErrReportAlreadyResolved
	}
	if report.Status != models.StatusSubmitted {
		return ErrInvalidTransition
	}

	auto := models.EscalationAutomatic
	report.EscalationType = &auto
	if err := s.transition(report, models.StatusEscalated, nil, models.RoleSystem, models.DecisionAutoEscalation, note); err != nil {
		return err
	}

	s.notifier.Publish(notify.Event{Name: notify.EventReportAutoEscalated, Report: report, Context: map[string]interface{}{
		"reason": note,
	}})
	return nil
}

// SendEscalationReminder emits one reminder per report, ever: the
// reminder_sent audit row doubles as the dedup marker across ticks. Returns
// whether a reminder was actually sent.
func (s *ModerationService) SendEscalationReminder(report *models.Report) (bool, error) {
	sent, err := s.escalations.HasReminder(report.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check reminder marker: %w", err)
	}
	if sent {
		return false, nil
	}

	esc := &models.ReportEscalation{
		ID:           uuid.New(),
		ReportID:     report.ID,
		FromStatus:   report.Status,
		ToStatus:     report.Status,
		ReviewerRole: models.RoleSystem,
		Decision:     models.DecisionReminderSent,
		Notes:        "escalation reminder sent to calendar owner",
	}
	if err := s.escalations.Create(esc); err != nil {
		return false, fmt.Errorf("failed to record reminder marker: %w", err)
	}

	s.notifier.Publish(notify.Event{Name: notify.EventEscalationReminder, Report: report, Context: map[string]interface{}{}})
	return true, nil
}

func (s *ModerationService) GetReport(reportID uuid.UUID) (*models.Report, error) {
	return s.getReport(reportID)
}

func (s *ModerationService) ListReports(filter *dto.ReportFilter) ([]models.Report, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	return s.reports.List(filter)
}

func (s *ModerationService) GetEscalationHistory(reportID uuid.UUID) ([]models.ReportEscalation, error) {
	if _, err := s.getReport(reportID); err != nil {
		return nil, err
	}
	return s.escalations.ListByReport(reportID)
}

// BlockReporter blocks future anonymous submissions under an email address.
func (s *ModerationService) BlockReporter(email string, adminID uuid.UUID, reason string) (*models.BlockedReporter, error) {
	hash := s.hasher.HashEmail(email)

	isBlocked, err := s.blocked.IsBlocked(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check blocked reporters: %w", err)
	}
	if isBlocked {
		return nil, ErrAlreadyBlocked
	}

	block := &models.BlockedReporter{
		ID:        uuid.New(),
		EmailHash: hash,
		BlockedBy: adminID,
		Reason:    reason,
	}
	if err := s.blocked.Create(block); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyBlocked
		}
		return nil, fmt.Errorf("failed to block reporter: %w", err)
	}
	return block, nil
}

func (s *ModerationService) UnblockReporter(email string) error {
	hash := s.hasher.HashEmail(email)
	deleted, err := s.blocked.DeleteByHash(hash)
	if err != nil {
		return fmt.Errorf("failed to unblock reporter: %w", err)
	}
	if deleted == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (s *ModerationService) ListBlockedReporters(page, limit int) ([]models.BlockedReporter, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.blocked.List(page, limit)
}

func (s *ModerationService) getReport(reportID uuid.UUID) (*models.Report, error) {
	report, err := s.reports.FindByID(reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return report, nil
}

// transition persists a status change and its audit row. Reviewer fields are
// stamped for owner/admin decisions; system transitions leave them untouched.
func (s *ModerationService) transition(report *models.Report, toStatus string, reviewerID *uuid.UUID, role, decision, notes string) error {
	from := report.Status
	report.Status = toStatus
	if role != models.RoleSystem && reviewerID != nil {
		now := s.now()
		report.ReviewerID = reviewerID
		report.ReviewerNotes = notes
		report.ReviewerTimestamp = &now
	}

	if err := s.reports.Save(report); err != nil {
		report.Status = from
		return fmt.Errorf("failed to update report status: %w", err)
	}

	esc := &models.ReportEscalation{
		ID:           uuid.New(),
		ReportID:     report.ID,
		FromStatus:   from,
		ToStatus:     toStatus,
		ReviewerID:   reviewerID,
		ReviewerRole: role,
		Decision:     decision,
		Notes:        notes,
	}
	if err := s.escalations.Create(esc); err != nil {
		return fmt.Errorf("failed to record escalation audit row: %w", err)
	}
	return nil
}

func (s *ModerationService) resolveCalendar(eventID uuid.UUID, calendarID string) (uuid.UUID, error) {
	if calendarID != "" {
		id, err := uuid.Parse(calendarID)
		if err == nil {
			return id, nil
		}
	}
	info, err := s.events.GetEvent(eventID)
	if err != nil {
		return uuid.Nil, ErrEventNotFound
	}
	return info.CalendarID, nil
}

func (s *ModerationService) validateCreate(req *dto.CreateReportRequest, anonymous bool) error {
	violations := s.structViolations(req)

	trimmed := strings.TrimSpace(req.Description)
	if req.Description != "" && trimmed == "" {
		violations = append(violations, dto.FieldViolation{Field: "description", Message: "must not be blank"})
	}
	if len(trimmed) > 2000 {
		violations = append(violations, dto.FieldViolation{Field: "description", Message: "must be at most 2000 characters"})
	}
	if anonymous && strings.TrimSpace(req.ReporterEmail) == "" {
		violations = append(violations, dto.FieldViolation{Field: "reporter_email", Message: "is required for anonymous reports"})
	}

	if len(violations) > 0 {
		return &dto.ValidationError{Violations: violations}
	}
	return nil
}

func (s *ModerationService) validateAdminCreate(req *dto.CreateAdminReportRequest) error {
	violations := s.structViolations(req)

	trimmed := strings.TrimSpace(req.Description)
	if req.Description != "" && trimmed == "" {
		violations = append(violations, dto.FieldViolation{Field: "description", Message: "must not be blank"})
	}
	if len(trimmed) > 2000 {
		violations = append(violations, dto.FieldViolation{Field: "description", Message: "must be at most 2000 characters"})
	}

	if len(violations) > 0 {
		return &dto.ValidationError{Violations: violations}
	}
	return nil
}

// structViolations runs the tag-based checks and collects every failure;
// entry gating never fails fast on the first bad field.
func (s *ModerationService) structViolations(req interface{}) []dto.FieldViolation {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []dto.FieldViolation{{Field: "request", Message: "is not valid"}}
	}

	violations := make([]dto.FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, dto.FieldViolation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return violations
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is not valid"
	}
}
