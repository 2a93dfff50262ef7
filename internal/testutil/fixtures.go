package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finara/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     "Test User",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates a one-off transaction dated today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOn(t, db, userID, txType, amount, time.Now().UTC())
}

// CreateTestTransactionOn creates a one-off transaction on the given date.
// amount is a decimal string such as "12.50".
func CreateTestTransactionOn(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		Title:         fmt.Sprintf("Test Transaction %d", nextID()),
		Type:          txType,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: models.PaymentMethodCash,
		Date:          date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRecurringTransaction creates a recurring template anchored at date.
func CreateTestRecurringTransaction(t *testing.T, db *gorm.DB, userID string, interval models.RecurringInterval, date time.Time) *models.Transaction {
	t.Helper()

	category := "Subscriptions"
	tx := &models.Transaction{
		UserID:            userID,
		Title:             fmt.Sprintf("Recurring %d", nextID()),
		Description:       "Monthly plan",
		Category:          &category,
		Type:              models.TransactionTypeExpense,
		Amount:            decimal.RequireFromString("15.99"),
		PaymentMethod:     models.PaymentMethodCard,
		Date:              date,
		IsRecurring:       true,
		RecurringInterval: &interval,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test recurring transaction: %v", err)
	}
	return tx
}

// CreateTestReportSetting creates an enabled monthly report setting due at nextReportDate.
func CreateTestReportSetting(t *testing.T, db *gorm.DB, userID string, nextReportDate time.Time) *models.ReportSetting {
	t.Helper()

	setting := &models.ReportSetting{
		UserID:         userID,
		IsEnabled:      true,
		Frequency:      models.ReportFrequencyMonthly,
		NextReportDate: nextReportDate,
	}
	if err := db.Create(setting).Error; err != nil {
		t.Fatalf("failed to create test report setting: %v", err)
	}
	return setting
}
