package jobs

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"finara/internal/daterange"
	"finara/internal/models"
	"finara/internal/recurrence"
)

var errAlreadyMaterialized = errors.New("occurrence already materialized")

// RecurringResult summarizes one materialization run.
type RecurringResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// RecurringJob creates today's concrete transaction for every recurring
// template that falls due today.
type RecurringJob struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	now func() time.Time
}

// NewRecurringJob creates a RecurringJob.
func NewRecurringJob(db *gorm.DB, log *zap.SugaredLogger) *RecurringJob {
	return &RecurringJob{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Name implements scheduler.Job.
func (j *RecurringJob) Name() string { return RecurringJobName }

// Execute implements scheduler.Job.
func (j *RecurringJob) Execute(ctx context.Context) (any, error) { return j.Run(ctx) }

// Run materializes due templates. It is idempotent within a UTC day: a
// template that already has a copy dated today is skipped.
func (j *RecurringJob) Run(ctx context.Context) (*RecurringResult, error) {
	now := j.now()
	today := daterange.StartOfDay(now)
	result := &RecurringResult{}

	var batch []models.Transaction
	err := j.db.
		Where("is_recurring = ? AND recurring_interval IS NOT NULL", true).
		FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
			for i := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				j.processTemplate(&batch[i], today, now, result)
			}
			return nil
		}).Error
	if err != nil {
		j.log.Errorw("recurring job aborted", "error", err, "processed", result.Processed)
		return result, err
	}

	j.log.Infow("recurring job completed",
		"processed", result.Processed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)
	return result, nil
}

func (j *RecurringJob) processTemplate(tmpl *models.Transaction, today, now time.Time, result *RecurringResult) {
	result.Processed++
	interval := *tmpl.RecurringInterval
	anchor := daterange.StartOfDay(tmpl.Date.UTC())

	if anchor.After(today) || !recurrence.OccursOn(anchor, today, interval) {
		result.Skipped++
		return
	}

	err := j.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Transaction{}).
			Where("recurring_parent_id = ? AND date >= ? AND date < ?", tmpl.ID, today, today.AddDate(0, 0, 1)).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyMaterialized
		}

		parentID := tmpl.ID
		occurrence := &models.Transaction{
			UserID:            tmpl.UserID,
			Title:             tmpl.Title,
			Description:       strings.TrimSpace(tmpl.Description + models.AutoCreatedSuffix),
			Category:          tmpl.Category,
			Type:              tmpl.Type,
			Amount:            tmpl.Amount,
			PaymentMethod:     tmpl.PaymentMethod,
			Date:              today,
			IsRecurring:       false,
			RecurringParentID: &parentID,
		}
		if err := tx.Create(occurrence).Error; err != nil {
			return err
		}

		next, err := recurrence.NextAfter(tmpl.Date, now, interval)
		if err != nil {
			return err
		}
		return tx.Model(&models.Transaction{}).
			Where("id = ?", tmpl.ID).
			Updates(map[string]interface{}{
				"last_processed":      now,
				"next_recurring_date": next,
			}).Error
	})

	switch {
	case errors.Is(err, errAlreadyMaterialized):
		result.Skipped++
	case err != nil:
		j.log.Errorw("failed to materialize recurring transaction", "template_id", tmpl.ID, "error", err)
		result.Errors++
	default:
		result.Created++
		j.log.Infow("materialized recurring transaction", "template_id", tmpl.ID, "user_id", tmpl.UserID)
	}
}
