package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finara/internal/models"
	"finara/internal/pagination"
	"finara/internal/testutil"
)

func newTestTransactionService(t *testing.T, now time.Time) (*transactionService, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := &transactionService{db: db, now: func() time.Time { return now }}
	return svc, func() { testutil.TeardownTestDB(t, db) }
}

func interval(i models.RecurringInterval) *models.RecurringInterval { return &i }

func TestCreateTransaction(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("one_off", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)

		category := "  Food "
		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Title:    "Lunch",
			Category: &category,
			Type:     models.TransactionTypeExpense,
			Amount:   decimal.RequireFromString("12.50"),
			Date:     now,
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected generated transaction ID")
		}
		if tx.Category == nil || *tx.Category != "Food" {
			t.Errorf("expected trimmed category, got %v", tx.Category)
		}
		if tx.PaymentMethod != models.PaymentMethodCash {
			t.Errorf("expected default payment method CASH, got %s", tx.PaymentMethod)
		}
		if tx.NextRecurringDate != nil || tx.RecurringInterval != nil {
			t.Error("one-off transaction should carry no recurrence")
		}
	})

	t.Run("recurring_stale_base_uses_now", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Title:             "Rent",
			Type:              models.TransactionTypeExpense,
			Amount:            decimal.NewFromInt(900),
			Date:              time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC),
			IsRecurring:       true,
			RecurringInterval: interval(models.RecurringIntervalMonthly),
		})
		testutil.AssertNoError(t, err)

		if tx.NextRecurringDate == nil {
			t.Fatal("expected next recurring date")
		}
		if tx.NextRecurringDate.Before(now) {
			t.Errorf("next recurring date %s is before now %s", tx.NextRecurringDate, now)
		}
	})

	t.Run("recurring_without_interval", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Title:       "Gym",
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.NewFromInt(30),
			IsRecurring: true,
		})
		testutil.AssertAppError(t, err, "INVALID_RECURRING_INTERVAL")
	})

	t.Run("interval_dropped_when_not_recurring", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{
			Title:             "Coffee",
			Type:              models.TransactionTypeExpense,
			Amount:            decimal.NewFromInt(3),
			RecurringInterval: interval(models.RecurringIntervalDaily),
		})
		testutil.AssertNoError(t, err)
		if tx.RecurringInterval != nil {
			t.Error("expected interval to be cleared on a one-off transaction")
		}
	})

	t.Run("invalid_interval", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)

		_, err := svc.CreateTransaction(user.ID, TransactionInput{
			Title:             "Gym",
			Type:              models.TransactionTypeExpense,
			Amount:            decimal.NewFromInt(30),
			IsRecurring:       true,
			RecurringInterval: interval("HOURLY"),
		})
		testutil.AssertAppError(t, err, "INVALID_RECURRING_INTERVAL")
	})

	t.Run("zero_amount", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()

		_, err := svc.CreateTransaction("any", TransactionInput{Title: "x", Type: models.TransactionTypeIncome})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_title", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()

		_, err := svc.CreateTransaction("any", TransactionInput{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_type", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()

		_, err := svc.CreateTransaction("any", TransactionInput{Title: "x", Type: "TRANSFER", Amount: decimal.NewFromInt(1)})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("invalid_payment_method", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()

		_, err := svc.CreateTransaction("any", TransactionInput{
			Title: "x", Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1), PaymentMethod: "CHEQUE",
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("filters_and_orders", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		old := testutil.CreateTestTransactionOn(t, db, user.ID, models.TransactionTypeIncome, "10", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
		recent := testutil.CreateTestTransactionOn(t, db, user.ID, models.TransactionTypeExpense, "20", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeIncome, "30")

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Fatalf("expected 2 items, got %d", result.TotalItems)
		}
		if result.Data[0].ID != recent.ID || result.Data[1].ID != old.ID {
			t.Error("expected newest transaction first")
		}

		expense := models.TransactionTypeExpense
		filtered, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{Type: &expense})
		testutil.AssertNoError(t, err)
		if filtered.TotalItems != 1 || filtered.Data[0].ID != recent.ID {
			t.Errorf("expected only the expense, got %d items", filtered.TotalItems)
		}

		from := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		ranged, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if ranged.TotalItems != 1 {
			t.Errorf("expected 1 item after from date, got %d", ranged.TotalItems)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		for i := 0; i < 5; i++ {
			testutil.CreateTestTransactionOn(t, db, user.ID, models.TransactionTypeIncome, "1", time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC))
		}

		result, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{PageNumber: 2, PageSize: 2}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 {
			t.Errorf("expected 2 items on page 2, got %d", len(result.Data))
		}
		if result.TotalPages != 3 || !result.HasNextPage || !result.HasPrevPage {
			t.Errorf("unexpected page metadata %+v", result)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("make_recurring", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)
		tx := testutil.CreateTestTransactionOn(t, svc.db, user.ID, models.TransactionTypeExpense, "50", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))

		recurring := true
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{
			IsRecurring:       &recurring,
			RecurringInterval: interval(models.RecurringIntervalWeekly),
		})
		testutil.AssertNoError(t, err)

		if updated.NextRecurringDate == nil || updated.NextRecurringDate.Before(now) {
			t.Fatalf("expected next recurring date >= now, got %v", updated.NextRecurringDate)
		}
	})

	t.Run("stop_recurring_clears_schedule", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)
		tmpl := testutil.CreateTestRecurringTransaction(t, svc.db, user.ID, models.RecurringIntervalMonthly, now)

		recurring := false
		_, err := svc.UpdateTransaction(user.ID, tmpl.ID, TransactionUpdate{IsRecurring: &recurring})
		testutil.AssertNoError(t, err)

		reloaded, err := svc.GetTransactionByID(user.ID, tmpl.ID)
		testutil.AssertNoError(t, err)
		if reloaded.IsRecurring || reloaded.RecurringInterval != nil || reloaded.NextRecurringDate != nil {
			t.Errorf("expected recurrence cleared, got %+v", reloaded)
		}
	})

	t.Run("amount_and_title", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		user := testutil.CreateTestUser(t, svc.db)
		tx := testutil.CreateTestTransaction(t, svc.db, user.ID, models.TransactionTypeExpense, "50")

		amount := decimal.RequireFromString("75.25")
		title := "Groceries"
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, TransactionUpdate{Amount: &amount, Title: &title})
		testutil.AssertNoError(t, err)
		if !updated.Amount.Equal(amount) || updated.Title != "Groceries" {
			t.Errorf("unexpected update result %+v", updated)
		}
	})

	t.Run("other_user", func(t *testing.T) {
		svc, teardown := newTestTransactionService(t, now)
		defer teardown()
		owner := testutil.CreateTestUser(t, svc.db)
		intruder := testutil.CreateTestUser(t, svc.db)
		tx := testutil.CreateTestTransaction(t, svc.db, owner.ID, models.TransactionTypeExpense, "50")

		title := "mine now"
		_, err := svc.UpdateTransaction(intruder.ID, tx.ID, TransactionUpdate{Title: &title})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, "10")

		testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

		_, err := svc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		err := svc.DeleteTransaction(user.ID, "0190a7c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}
