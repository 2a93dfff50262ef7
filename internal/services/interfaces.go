package services

import (
	"time"

	"github.com/shopspring/decimal"

	"finara/internal/daterange"
	"finara/internal/models"
	"finara/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	Type        *models.TransactionType
	Category    *string
	IsRecurring *bool
}

// TransactionInput carries the fields of a new transaction.
type TransactionInput struct {
	Title             string
	Description       string
	Category          *string
	Type              models.TransactionType
	Amount            decimal.Decimal
	PaymentMethod     models.PaymentMethod
	Date              time.Time
	ReceiptURL        *string
	IsRecurring       bool
	RecurringInterval *models.RecurringInterval
}

// TransactionUpdate carries a partial update; nil fields are left unchanged.
type TransactionUpdate struct {
	Title             *string
	Description       *string
	Category          *string
	Type              *models.TransactionType
	Amount            *decimal.Decimal
	PaymentMethod     *models.PaymentMethod
	Date              *time.Time
	ReceiptURL        *string
	IsRecurring       *bool
	RecurringInterval *models.RecurringInterval
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// AnalyticsServicer defines the contract for period analytics and report generation.
type AnalyticsServicer interface {
	GetSummary(userID string, r daterange.Range) (*SummaryComparison, error)
	GetChart(userID string, r daterange.Range) (*ChartResult, error)
	GetCategoryBreakdown(userID string, r daterange.Range) ([]CategoryTotal, error)
	GenerateMonthlyReport(user *models.User, period daterange.Range) (*ReportSummary, error)
}

// ReportServicer defines the contract for report subscriptions and the report audit log.
type ReportServicer interface {
	GetSetting(userID string) (*models.ReportSetting, error)
	UpdateSetting(userID string, isEnabled bool, frequency models.ReportFrequency) (*models.ReportSetting, error)
	GetUserReports(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Report], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
