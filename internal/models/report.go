package models

import "time"

// ReportFrequency is the cadence of a report subscription
type ReportFrequency string

const (
	ReportFrequencyMonthly ReportFrequency = "MONTHLY"
)

// IsValid reports whether f is a supported report frequency.
func (f ReportFrequency) IsValid() bool {
	return f == ReportFrequencyMonthly
}

// ReportSetting is a user's email report subscription.
type ReportSetting struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;uniqueIndex:idx_report_settings_user_frequency" json:"user_id"`
	IsEnabled      bool            `gorm:"not null;default:true" json:"is_enabled"`
	Frequency      ReportFrequency `gorm:"not null;uniqueIndex:idx_report_settings_user_frequency" json:"frequency"`
	LastSentDate   *time.Time      `json:"last_sent_date,omitempty"`
	NextReportDate time.Time       `gorm:"not null;index" json:"next_report_date"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// ReportStatus is the outcome recorded for one report job execution
type ReportStatus string

const (
	ReportStatusSent       ReportStatus = "SENT"
	ReportStatusFailed     ReportStatus = "FAILED"
	ReportStatusNoActivity ReportStatus = "NO_ACTIVITY"
)

// Report is the append-only audit row written once per due setting per run.
type Report struct {
	Base
	UserID      string       `gorm:"type:uuid;not null;index" json:"user_id"`
	SentDate    time.Time    `gorm:"not null" json:"sent_date"`
	PeriodStart time.Time    `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time    `gorm:"not null" json:"period_end"`
	Status      ReportStatus `gorm:"not null" json:"status"`
	Error       string       `json:"error,omitempty"`
}
