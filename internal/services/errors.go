package services

import "errors"

var (
	ErrReportNotFound           = errors.New("report not found")
	ErrReportAlreadyResolved    = errors.New("report is already resolved or dismissed")
	ErrInvalidTransition        = errors.New("transition not permitted from current status")
	ErrDuplicateReport          = errors.New("a report for this event from this reporter already exists")
	ErrEmailRateLimited         = errors.New("too many reports from this email address")
	ErrReporterBlocked          = errors.New("reporter is blocked from submitting reports")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrEventNotFound            = errors.New("event not found")
	ErrAlreadyBlocked           = errors.New("reporter email is already blocked")
	ErrBlockNotFound            = errors.New("no block exists for this email")
)
