package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finara/internal/errors"
	"finara/internal/models"
	"finara/internal/pagination"
	"finara/internal/recurrence"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransaction creates a new transaction for a user. Recurring
// templates get their next occurrence computed from the transaction date.
func (s *transactionService) CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if input.Amount.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
	}
	if !input.Type.IsValid() {
		return nil, apperrors.ErrInvalidTransactionType
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}
	if !paymentMethod.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported payment method")
	}

	now := s.now()
	date := input.Date
	if date.IsZero() {
		date = now
	}

	transaction := &models.Transaction{
		UserID:            userID,
		Title:             title,
		Description:       input.Description,
		Category:          normalizeCategory(input.Category),
		Type:              input.Type,
		Amount:            input.Amount,
		PaymentMethod:     paymentMethod,
		Date:              date.UTC(),
		ReceiptURL:        input.ReceiptURL,
		IsRecurring:       input.IsRecurring,
		RecurringInterval: input.RecurringInterval,
	}
	if err := applyRecurrence(transaction, now); err != nil {
		return nil, err
	}

	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// applyRecurrence enforces that an interval is present iff the transaction
// is recurring and recomputes the derived next occurrence.
func applyRecurrence(t *models.Transaction, now time.Time) error {
	if !t.IsRecurring {
		t.RecurringInterval = nil
		t.NextRecurringDate = nil
		return nil
	}
	if t.RecurringInterval == nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInterval, "recurring interval is required for recurring transactions")
	}

	next, err := recurrence.NextAfter(t.Date, now, *t.RecurringInterval)
	if err != nil {
		return err
	}
	t.NextRecurringDate = &next
	return nil
}

func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// GetUserTransactions retrieves a paginated, filtered list of transactions,
// newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.PageNumber, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", f.FromDate.UTC())
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", f.ToDate.UTC())
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.IsRecurring != nil {
		q = q.Where("is_recurring = ?", *f.IsRecurring)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. The next occurrence is
// recomputed whenever the result is a recurring template.
func (s *transactionService) UpdateTransaction(userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title cannot be empty")
		}
		transaction.Title = title
	}
	if update.Description != nil {
		transaction.Description = *update.Description
	}
	if update.Category != nil {
		transaction.Category = normalizeCategory(update.Category)
	}
	if update.Type != nil {
		if !update.Type.IsValid() {
			return nil, apperrors.ErrInvalidTransactionType
		}
		transaction.Type = *update.Type
	}
	if update.Amount != nil {
		if update.Amount.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be non-zero")
		}
		transaction.Amount = *update.Amount
	}
	if update.PaymentMethod != nil {
		if !update.PaymentMethod.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported payment method")
		}
		transaction.PaymentMethod = *update.PaymentMethod
	}
	if update.Date != nil {
		transaction.Date = update.Date.UTC()
	}
	if update.ReceiptURL != nil {
		transaction.ReceiptURL = update.ReceiptURL
	}
	if update.IsRecurring != nil {
		transaction.IsRecurring = *update.IsRecurring
	}
	if update.RecurringInterval != nil {
		interval := *update.RecurringInterval
		transaction.RecurringInterval = &interval
	}

	if err := applyRecurrence(transaction, s.now()); err != nil {
		return nil, err
	}

	if err := s.db.Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction owned by the user
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
