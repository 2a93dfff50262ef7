// Package jobs holds the scheduled background jobs: monthly report emails
// and recurring-transaction materialization.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"finara/internal/daterange"
	"finara/internal/models"
	"finara/internal/recurrence"
	"finara/internal/services"
)

// Job names as registered with the scheduler and the pipeline endpoint.
const (
	ReportJobName    = "monthly-reports"
	RecurringJobName = "recurring-transactions"
)

const batchSize = 100

// ReportEmailer delivers a generated report.
type ReportEmailer interface {
	SendReport(ctx context.Context, report *services.ReportSummary, frequency models.ReportFrequency) error
}

// ReportResult summarizes one report job run.
type ReportResult struct {
	Processed  int `json:"processed"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	NoActivity int `json:"no_activity"`
	Orphaned   int `json:"orphaned"`
	Errors     int `json:"errors"`
}

// ReportJob emails the previous month's report for every due subscription.
type ReportJob struct {
	db        *gorm.DB
	analytics services.AnalyticsServicer
	mailer    ReportEmailer
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewReportJob creates a ReportJob.
func NewReportJob(db *gorm.DB, analytics services.AnalyticsServicer, mailer ReportEmailer, log *zap.SugaredLogger) *ReportJob {
	return &ReportJob{
		db:        db,
		analytics: analytics,
		mailer:    mailer,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Name implements scheduler.Job.
func (j *ReportJob) Name() string { return ReportJobName }

// Execute implements scheduler.Job.
func (j *ReportJob) Execute(ctx context.Context) (any, error) { return j.Run(ctx) }

// Run processes every enabled setting whose next report date has passed.
// Each setting ends with exactly one Report row and a next report date
// strictly after now, whatever the outcome of generation and delivery.
func (j *ReportJob) Run(ctx context.Context) (*ReportResult, error) {
	now := j.now()
	period := daterange.PreviousMonth(now)
	result := &ReportResult{}

	j.log.Infow("processing due reports", "now", now, "period_start", period.From, "period_end", period.To)

	var batch []models.ReportSetting
	err := j.db.
		Preload("User").
		Where("is_enabled = ? AND next_report_date <= ?", true, now).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				j.processSetting(ctx, &batch[i], period, now, result)
			}
			return nil
		}).Error
	if err != nil {
		j.log.Errorw("report job aborted", "error", err, "processed", result.Processed)
		return result, err
	}

	j.log.Infow("report job completed",
		"processed", result.Processed,
		"sent", result.Sent,
		"failed", result.Failed,
		"no_activity", result.NoActivity,
		"orphaned", result.Orphaned,
		"errors", result.Errors,
	)
	return result, nil
}

func (j *ReportJob) processSetting(ctx context.Context, setting *models.ReportSetting, period daterange.Range, now time.Time, result *ReportResult) {
	result.Processed++
	log := j.log.With("setting_id", setting.ID, "user_id", setting.UserID)

	user := setting.User
	if user == nil {
		// Orphaned settings are disabled so they stop being selected.
		log.Warnw("user not found for report setting, disabling it")
		result.Orphaned++
		if err := j.db.Model(&models.ReportSetting{}).
			Where("id = ?", setting.ID).
			Update("is_enabled", false).Error; err != nil {
			log.Errorw("failed to disable orphaned report setting", "error", err)
			result.Errors++
		}
		return
	}

	status, reason := j.deliver(ctx, user, setting, period)

	next, err := recurrence.NextReportDate(setting.Frequency, now)
	if err != nil {
		log.Warnw("unknown report frequency, falling back to monthly", "frequency", setting.Frequency)
		next, err = recurrence.NextReportDate(models.ReportFrequencyMonthly, now)
		if err != nil {
			log.Errorw("failed to compute next report date", "error", err)
			result.Errors++
			return
		}
	}

	var lastSent interface{}
	if status == models.ReportStatusSent {
		lastSent = now
	}

	err = j.db.Transaction(func(tx *gorm.DB) error {
		report := &models.Report{
			UserID:      user.ID,
			SentDate:    now,
			PeriodStart: period.From,
			PeriodEnd:   period.To,
			Status:      status,
			Error:       reason,
		}
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return tx.Model(&models.ReportSetting{}).
			Where("id = ?", setting.ID).
			Updates(map[string]interface{}{
				"last_sent_date":   lastSent,
				"next_report_date": next,
			}).Error
	})
	if err != nil {
		log.Errorw("failed to record report outcome", "error", err, "status", status)
		result.Errors++
		return
	}

	switch status {
	case models.ReportStatusSent:
		result.Sent++
	case models.ReportStatusFailed:
		result.Failed++
	case models.ReportStatusNoActivity:
		result.NoActivity++
	}
	log.Infow("report processed", "status", status, "next_report_date", next)
}

// deliver generates and sends the report, mapping each failure to FAILED.
func (j *ReportJob) deliver(ctx context.Context, user *models.User, setting *models.ReportSetting, period daterange.Range) (models.ReportStatus, string) {
	report, err := j.analytics.GenerateMonthlyReport(user, period)
	if err != nil {
		j.log.Errorw("report generation failed", "user_id", user.ID, "error", err)
		return models.ReportStatusFailed, "generate: " + err.Error()
	}
	if report == nil {
		return models.ReportStatusNoActivity, ""
	}

	if err := j.mailer.SendReport(ctx, report, setting.Frequency); err != nil {
		j.log.Errorw("report email failed", "user_id", user.ID, "email", user.Email, "error", err)
		return models.ReportStatusFailed, "send: " + err.Error()
	}
	return models.ReportStatusSent, ""
}
