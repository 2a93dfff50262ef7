package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"finara/internal/models"
	"finara/internal/scheduler"
	"finara/internal/services"
	"finara/internal/testutil"
)

func newTestRecurringJob(db *gorm.DB, now time.Time) *RecurringJob {
	job := NewRecurringJob(db, zap.NewNop().Sugar())
	job.now = func() time.Time { return now }
	return job
}

func materialized(t *testing.T, db *gorm.DB, parentID string) []models.Transaction {
	t.Helper()
	var txs []models.Transaction
	if err := db.Where("recurring_parent_id = ?", parentID).Find(&txs).Error; err != nil {
		t.Fatalf("failed to load materialized transactions: %v", err)
	}
	return txs
}

func TestRecurringJob_Run(t *testing.T) {
	// Friday 2024-03-15.
	now := time.Date(2024, 3, 15, 0, 5, 0, 0, time.UTC)

	t.Run("idempotent_within_a_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		tmpl := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalMonthly, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))

		first, err := newTestRecurringJob(db, now).Run(context.Background())
		testutil.AssertNoError(t, err)
		if first.Created != 1 {
			t.Fatalf("expected 1 created on first run, got %+v", first)
		}

		second, err := newTestRecurringJob(db, now.Add(6*time.Hour)).Run(context.Background())
		testutil.AssertNoError(t, err)
		if second.Created != 0 || second.Skipped != 1 {
			t.Errorf("expected second run to skip, got %+v", second)
		}

		if n := len(materialized(t, db, tmpl.ID)); n != 1 {
			t.Errorf("expected exactly 1 materialized transaction, got %d", n)
		}
	})

	t.Run("copy_semantics", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		tmpl := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalDaily, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

		_, err := newTestRecurringJob(db, now).Run(context.Background())
		testutil.AssertNoError(t, err)

		copies := materialized(t, db, tmpl.ID)
		if len(copies) != 1 {
			t.Fatalf("expected 1 copy, got %d", len(copies))
		}
		c := copies[0]
		if c.IsRecurring || c.RecurringInterval != nil {
			t.Error("copy must not be recurring")
		}
		if c.Title != tmpl.Title || c.Type != tmpl.Type || !c.Amount.Equal(tmpl.Amount) || c.PaymentMethod != tmpl.PaymentMethod {
			t.Errorf("copy fields differ from template: %+v", c)
		}
		if c.Category == nil || *c.Category != *tmpl.Category {
			t.Errorf("expected category %q, got %v", *tmpl.Category, c.Category)
		}
		if !strings.HasSuffix(c.Description, models.AutoCreatedSuffix) {
			t.Errorf("expected auto-created suffix, got %q", c.Description)
		}
		testutil.AssertTimeEqual(t, "copy date", &c.Date, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

		var reloaded models.Transaction
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", tmpl.ID).Error)
		if reloaded.LastProcessed == nil {
			t.Error("expected template last_processed to be set")
		}
		if reloaded.NextRecurringDate == nil || reloaded.NextRecurringDate.Before(now) {
			t.Errorf("expected template next date >= now, got %v", reloaded.NextRecurringDate)
		}
	})

	t.Run("frequency_rules", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)

		weeklyHit := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalWeekly, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC))
		weeklyMiss := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalWeekly, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC))
		monthlyMiss := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalMonthly, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC))
		yearly := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalYearly, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC))
		future := testutil.CreateTestRecurringTransaction(t, db, user.ID, models.RecurringIntervalDaily, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

		result, err := newTestRecurringJob(db, now).Run(context.Background())
		testutil.AssertNoError(t, err)

		if result.Processed != 5 || result.Created != 1 || result.Skipped != 4 || result.Errors != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(materialized(t, db, weeklyHit.ID)) != 1 {
			t.Error("expected weekly template on the same weekday to materialize")
		}
		for _, id := range []string{weeklyMiss.ID, monthlyMiss.ID, yearly.ID, future.ID} {
			if len(materialized(t, db, id)) != 0 {
				t.Errorf("template %s should not have materialized", id)
			}
		}
	})

	t.Run("ignores_one_off_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, "5")

		result, err := newTestRecurringJob(db, now).Run(context.Background())
		testutil.AssertNoError(t, err)
		if result.Processed != 0 {
			t.Errorf("expected no templates processed, got %+v", result)
		}
	})
}

func TestRegister(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	s := scheduler.New(db, zap.NewNop().Sugar(), time.Minute)
	Register(s, db, services.NewAnalyticsService(db), &fakeEmailer{}, zap.NewNop().Sugar())

	names := s.Names()
	if len(names) != 2 || names[0] != ReportJobName || names[1] != RecurringJobName {
		t.Errorf("unexpected registered jobs %v", names)
	}
}
