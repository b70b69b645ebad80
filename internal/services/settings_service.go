package services

import (
	"fmt"
	"strconv"

	"github.com/gatherhub/moderation-service/internal/dto"
)

// Setting keys for the scheduler's duration knobs.
const (
	SettingAutoEscalationHours           = "auto_escalation_hours"
	SettingAdminReportEscalationHours    = "admin_report_escalation_hours"
	SettingReminderBeforeEscalationHours = "reminder_before_escalation_hours"
)

// Defaults used when a key is absent or unparseable.
const (
	DefaultAutoEscalationHours           = 72
	DefaultAdminReportEscalationHours    = 24
	DefaultReminderBeforeEscalationHours = 12
)

// ModerationSettings are the three durations driving the escalation
// scheduler, in hours.
type ModerationSettings struct {
	AutoEscalationHours           int
	AdminReportEscalationHours    int
	ReminderBeforeEscalationHours int
}

// SettingsService reads and writes the string key/value settings store. The
// scheduler fetches ModerationSettings once per tick, so updates take effect
// without a restart.
type SettingsService struct {
	settings SettingRepository
}

func NewSettingsService(settings SettingRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func (s *SettingsService) GetSetting(key string) (string, bool, error) {
	return s.settings.Get(key)
}

func (s *SettingsService) SetSetting(key, value string) error {
	return s.settings.Set(key, value)
}

// ModerationSettings returns the current scheduler durations, falling back
// to the defaults for any key that is unset or not a positive integer.
func (s *SettingsService) ModerationSettings() (*ModerationSettings, error) {
	auto, err := s.hours(SettingAutoEscalationHours, DefaultAutoEscalationHours)
	if err != nil {
		return nil, err
	}
	admin, err := s.hours(SettingAdminReportEscalationHours, DefaultAdminReportEscalationHours)
	if err != nil {
		return nil, err
	}
	reminder, err := s.hours(SettingReminderBeforeEscalationHours, DefaultReminderBeforeEscalationHours)
	if err != nil {
		return nil, err
	}
	return &ModerationSettings{
		AutoEscalationHours:           auto,
		AdminReportEscalationHours:    admin,
		ReminderBeforeEscalationHours: reminder,
	}, nil
}

// UpdateModerationSettings validates and persists the provided knobs; nil
// fields are left unchanged.
func (s *SettingsService) UpdateModerationSettings(req *dto.UpdateModerationSettingsRequest) (*ModerationSettings, error) {
	current, err := s.ModerationSettings()
	if err != nil {
		return nil, err
	}

	var violations []dto.FieldViolation
	auto := current.AutoEscalationHours
	admin := current.AdminReportEscalationHours
	reminder := current.ReminderBeforeEscalationHours

	if req.AutoEscalationHours != nil {
		if *req.AutoEscalationHours < 1 {
			violations = append(violations, dto.FieldViolation{Field: "auto_escalation_hours", Message: "must be a positive integer"})
		} else {
			auto = *req.AutoEscalationHours
		}
	}
	if req.AdminReportEscalationHours != nil {
		if *req.AdminReportEscalationHours < 1 {
			violations = append(violations, dto.FieldViolation{Field: "admin_report_escalation_hours", Message: "must be a positive integer"})
		} else {
			admin = *req.AdminReportEscalationHours
		}
	}
	if req.ReminderBeforeEscalationHours != nil {
		if *req.ReminderBeforeEscalationHours < 1 {
			violations = append(violations, dto.FieldViolation{Field: "reminder_before_escalation_hours", Message: "must be a positive integer"})
		} else {
			reminder = *req.ReminderBeforeEscalationHours
		}
	}
	if len(violations) == 0 && reminder >= auto {
		violations = append(violations, dto.FieldViolation{
			Field:   "reminder_before_escalation_hours",
			Message: "must be less than auto_escalation_hours",
		})
	}
	if len(violations) > 0 {
		return nil, &dto.ValidationError{Violations: violations}
	}

	if err := s.settings.Set(SettingAutoEscalationHours, strconv.Itoa(auto)); err != nil {
		return nil, fmt.Errorf("failed to store setting: %w", err)
	}
	if err := s.settings.Set(SettingAdminReportEscalationHours, strconv.Itoa(admin)); err != nil {
		return nil, fmt.Errorf("failed to store setting: %w", err)
	}
	if err := s.settings.Set(SettingReminderBeforeEscalationHours, strconv.Itoa(reminder)); err != nil {
		return nil, fmt.Errorf("failed to store setting: %w", err)
	}

	return &ModerationSettings{
		AutoEscalationHours:           auto,
		AdminReportEscalationHours:    admin,
		ReminderBeforeEscalationHours: reminder,
	}, nil
}

func (s *SettingsService) hours(key string, fallback int) (int, error) {
	raw, ok, err := s.settings.Get(key)
	if err != nil {
		return 0, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback, nil
	}
	return n, nil
}
