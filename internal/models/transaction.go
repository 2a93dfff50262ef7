package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// RecurringInterval is the repeat cadence of a recurring transaction template
type RecurringInterval string

const (
	RecurringIntervalDaily   RecurringInterval = "DAILY"
	RecurringIntervalWeekly  RecurringInterval = "WEEKLY"
	RecurringIntervalMonthly RecurringInterval = "MONTHLY"
	RecurringIntervalYearly  RecurringInterval = "YEARLY"
)

// IsValid reports whether i is a known recurring interval.
func (i RecurringInterval) IsValid() bool {
	switch i {
	case RecurringIntervalDaily, RecurringIntervalWeekly, RecurringIntervalMonthly, RecurringIntervalYearly:
		return true
	}
	return false
}

// PaymentMethod is how a transaction was paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobile       PaymentMethod = "MOBILE_PAYMENT"
	PaymentMethodAutoDebit    PaymentMethod = "AUTO_DEBIT"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid reports whether p is a known payment method.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobile, PaymentMethodAutoDebit, PaymentMethodOther:
		return true
	}
	return false
}

// AutoCreatedSuffix is appended to the description of materialized recurring transactions.
const AutoCreatedSuffix = " (Auto-created from recurring transaction)"

// Transaction is a single income or expense record. Templates carry
// IsRecurring=true and an interval; materialized copies point back to their
// template through RecurringParentID.
type Transaction struct {
	Base
	UserID            string             `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Title             string             `gorm:"not null" json:"title"`
	Description       string             `json:"description"`
	Category          *string            `json:"category,omitempty"`
	Type              TransactionType    `gorm:"not null" json:"type"`
	Amount            decimal.Decimal    `gorm:"type:numeric(15,2);not null" json:"amount"`
	PaymentMethod     PaymentMethod      `json:"payment_method"`
	Date              time.Time          `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	ReceiptURL        *string            `json:"receipt_url,omitempty"`
	IsRecurring       bool               `gorm:"not null;default:false;index" json:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurring_interval,omitempty"`
	NextRecurringDate *time.Time         `json:"next_recurring_date,omitempty"`
	LastProcessed     *time.Time         `json:"last_processed,omitempty"`
	RecurringParentID *string            `gorm:"type:uuid;index" json:"recurring_parent_id,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
