package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "finara/internal/errors"
	"finara/internal/models"
	"finara/internal/pagination"
	"finara/internal/recurrence"
)

// reportService manages report subscriptions and reads the report audit log.
type reportService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// GetSetting returns the user's monthly report setting, creating an enabled
// one scheduled for the next report slot if none exists yet.
func (s *reportService) GetSetting(userID string) (*models.ReportSetting, error) {
	var setting models.ReportSetting
	err := s.db.Where("user_id = ? AND frequency = ?", userID, models.ReportFrequencyMonthly).First(&setting).Error
	if err == nil {
		return &setting, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	next, err := recurrence.NextReportDate(models.ReportFrequencyMonthly, s.now())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	setting = models.ReportSetting{
		UserID:         userID,
		IsEnabled:      true,
		Frequency:      models.ReportFrequencyMonthly,
		NextReportDate: next,
	}
	if err := s.db.Create(&setting).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &setting, nil
}

// UpdateSetting enables or disables the user's report subscription. Turning
// a disabled subscription back on reschedules it from now so that missed
// cycles are not replayed.
func (s *reportService) UpdateSetting(userID string, isEnabled bool, frequency models.ReportFrequency) (*models.ReportSetting, error) {
	if frequency == "" {
		frequency = models.ReportFrequencyMonthly
	}
	if !frequency.IsValid() {
		return nil, apperrors.ErrInvalidFrequency
	}

	setting, err := s.GetSetting(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"is_enabled": isEnabled, "frequency": frequency}
	if isEnabled && (!setting.IsEnabled || setting.Frequency != frequency) {
		next, err := recurrence.NextReportDate(frequency, s.now())
		if err != nil {
			return nil, err
		}
		updates["next_report_date"] = next
	}

	if err := s.db.Model(setting).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var updated models.ReportSetting
	if err := s.db.First(&updated, "id = ?", setting.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &updated, nil
}

// GetUserReports lists the user's report audit rows, newest first.
func (s *reportService) GetUserReports(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Report], error) {
	page.Defaults()

	base := s.db.Model(&models.Report{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reports []models.Report
	if err := base.Scopes(pagination.Paginate(page)).
		Order("sent_date DESC").
		Find(&reports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(reports, page.PageNumber, page.PageSize, totalItems)
	return &result, nil
}
