package jobs

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"finara/internal/recurrence"
	"finara/internal/scheduler"
	"finara/internal/services"
)

// Register adds the report and recurring-transaction jobs to s on their
// default schedules.
func Register(s *scheduler.Scheduler, db *gorm.DB, analytics services.AnalyticsServicer, emailer ReportEmailer, log *zap.SugaredLogger) {
	s.Register(NewRecurringJob(db, log.Named(RecurringJobName)), recurrence.MustParseRule(recurrence.DailyTransactionsRule))
	s.Register(NewReportJob(db, analytics, emailer, log.Named(ReportJobName)), recurrence.MustParseRule(recurrence.MonthlyReportsRule))
}
