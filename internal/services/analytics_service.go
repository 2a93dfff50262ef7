package services

import (
	"time"

	"gorm.io/gorm"

	"finara/internal/daterange"
	apperrors "finara/internal/errors"
	"finara/internal/models"
)

// analyticsService computes period analytics over a user's transactions.
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB) AnalyticsServicer {
	return &analyticsService{db: db}
}

// loadTransactions returns the user's transactions dated within [from, to].
func (s *analyticsService) loadTransactions(userID string, from, to time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from.UTC(), to.UTC()).
		Order("date ASC").
		Find(&txs).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}

// GetSummary returns the summary for r and, unless r is all-time, the prior
// period's summary with percent changes.
func (s *analyticsService) GetSummary(userID string, r daterange.Range) (*SummaryComparison, error) {
	txs, err := s.loadTransactions(userID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	result := &SummaryComparison{Range: r, Current: Summarize(txs)}

	prior, ok := r.Prior()
	if !ok {
		return result, nil
	}

	prevTxs, err := s.loadTransactions(userID, prior.From, prior.To)
	if err != nil {
		return nil, err
	}
	previous := Summarize(prevTxs)
	change := CompareSummaries(previous, result.Current)
	result.Previous = &previous
	result.Change = &change
	return result, nil
}

// GetChart returns the per-day income/expense series for r.
func (s *analyticsService) GetChart(userID string, r daterange.Range) (*ChartResult, error) {
	txs, err := s.loadTransactions(userID, r.From, r.To)
	if err != nil {
		return nil, err
	}

	result := ChartSeries(txs)
	result.Range = r
	return &result, nil
}

// GetCategoryBreakdown returns expense totals per category for r.
func (s *analyticsService) GetCategoryBreakdown(userID string, r daterange.Range) ([]CategoryTotal, error) {
	txs, err := s.loadTransactions(userID, r.From, r.To)
	if err != nil {
		return nil, err
	}
	return CategoryBreakdown(txs), nil
}

// GenerateMonthlyReport builds the report for user over period. A nil
// report with a nil error means the period had no activity.
func (s *analyticsService) GenerateMonthlyReport(user *models.User, period daterange.Range) (*ReportSummary, error) {
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	txs, err := s.loadTransactions(user.ID, period.From, period.To)
	if err != nil {
		return nil, err
	}
	return BuildReportSummary(user, period, txs), nil
}
