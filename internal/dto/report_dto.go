package dto

import "time"

type CreateReportRequest struct {
	EventID     string `json:"event_id" validate:"required,uuid"`
	CalendarID  string `json:"calendar_id" validate:"omitempty,uuid"`
	Category    string `json:"category" validate:"required,oneof=spam harassment inappropriate misleading other"`
	// Length is bounded on the trimmed value by the service.
	Description string `json:"description" validate:"required"`

	// Required for anonymous submissions, ignored otherwise.
	ReporterEmail string `json:"reporter_email" validate:"omitempty,email,max=254"`

	// Federation passthrough for cross-instance reports.
	ForwardedFromInstance string `json:"forwarded_from_instance,omitempty" validate:"omitempty,max=255"`
	ForwardedReportID     string `json:"forwarded_report_id,omitempty" validate:"omitempty,max=255"`
}

type CreateAdminReportRequest struct {
	EventID     string     `json:"event_id" validate:"required,uuid"`
	CalendarID  string     `json:"calendar_id" validate:"omitempty,uuid"`
	Category    string     `json:"category" validate:"required,oneof=spam harassment inappropriate misleading other"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	AdminNotes  string     `json:"admin_notes" validate:"omitempty,max=2000"`
}

type ReviewRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

type ListReportsResponse struct {
	Reports interface{} `json:"reports"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

var sortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"category":   true,
}

var filterStatuses = map[string]bool{
	"pending_verification": true,
	"submitted":            true,
	"escalated":            true,
	"resolved":             true,
	"dismissed":            true,
}

var filterCategories = map[string]bool{
	"spam":          true,
	"harassment":    true,
	"inappropriate": true,
	"misleading":    true,
	"other":         true,
}

var filterSources = map[string]bool{
	"anonymous":     true,
	"authenticated": true,
	"administrator": true,
}

// ReportFilter narrows and orders report listings. Zero-value string fields
// mean "no filter"; Validate applies defaults for paging and sorting.
type ReportFilter struct {
	Status         string `json:"status"`
	Category       string `json:"category"`
	EventID        string `json:"event_id"`
	CalendarID     string `json:"calendar_id"`
	Source         string `json:"source"`
	EscalationType string `json:"escalation_type"`
	SortBy         string `json:"sort_by"`
	SortOrder      string `json:"sort_order"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
}

// Validate collects every violation, then applies defaults to the fields
// that were left unset.
func (f *ReportFilter) Validate() error {
	var violations []FieldViolation

	if f.Status != "" && !filterStatuses[f.Status] {
		violations = append(violations, FieldViolation{Field: "status", Message: "unknown status"})
	}
	if f.Category != "" && !filterCategories[f.Category] {
		violations = append(violations, FieldViolation{Field: "category", Message: "unknown category"})
	}
	if f.Source != "" && !filterSources[f.Source] {
		violations = append(violations, FieldViolation{Field: "source", Message: "unknown reporter source"})
	}
	if f.EscalationType != "" && f.EscalationType != "manual" && f.EscalationType != "automatic" {
		violations = append(violations, FieldViolation{Field: "escalation_type", Message: "must be manual or automatic"})
	}
	if f.SortBy != "" && !sortColumns[f.SortBy] {
		violations = append(violations, FieldViolation{Field: "sort_by", Message: "unsupported sort column"})
	}
	if f.SortOrder != "" && f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		violations = append(violations, FieldViolation{Field: "sort_order", Message: "must be ASC or DESC"})
	}
	if f.Page < 0 {
		violations = append(violations, FieldViolation{Field: "page", Message: "must be at least 1"})
	}
	if f.Limit < 0 || f.Limit > 100 {
		violations = append(violations, FieldViolation{Field: "limit", Message: "must be between 1 and 100"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}

	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	return nil
}
