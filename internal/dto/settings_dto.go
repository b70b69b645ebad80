package dto

type ModerationSettingsResponse struct {
	AutoEscalationHours           int `json:"auto_escalation_hours"`
	AdminReportEscalationHours    int `json:"admin_report_escalation_hours"`
	ReminderBeforeEscalationHours int `json:"reminder_before_escalation_hours"`
}

type UpdateModerationSettingsRequest struct {
	AutoEscalationHours           *int `json:"auto_escalation_hours,omitempty"`
	AdminReportEscalationHours    *int `json:"admin_report_escalation_hours,omitempty"`
	ReminderBeforeEscalationHours *int `json:"reminder_before_escalation_hours,omitempty"`
}

type BlockReporterRequest struct {
	Email  string `json:"email" validate:"required,email,max=254"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
