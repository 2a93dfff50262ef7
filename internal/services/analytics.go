package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finara/internal/daterange"
	"finara/internal/models"
)

// UncategorizedLabel groups expenses that carry no category.
const UncategorizedLabel = "Uncategorized"

// topCategoryLimit is how many spending categories a report highlights.
const topCategoryLimit = 5

var hundred = decimal.NewFromInt(100)

// Summary is the aggregate of a user's transactions over one period.
type Summary struct {
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	AvailableBalance float64 `json:"available_balance"`
	SavingsPercent   float64 `json:"savings_percent"`
	ExpenseRatio     float64 `json:"expense_ratio"`
	TransactionCount int     `json:"transaction_count"`
}

// PercentChanges compares a summary with the prior period's.
type PercentChanges struct {
	Income         float64 `json:"income"`
	Expenses       float64 `json:"expenses"`
	Balance        float64 `json:"balance"`
	SavingsPercent float64 `json:"savings_percent"`
}

// SummaryComparison is the analytics summary response. Previous and Change
// are nil for the all-time preset.
type SummaryComparison struct {
	Range    daterange.Range `json:"preset"`
	Current  Summary         `json:"summary"`
	Previous *Summary        `json:"previous,omitempty"`
	Change   *PercentChanges `json:"percentage_change,omitempty"`
}

// ChartPoint is the income and expense total for one calendar day.
type ChartPoint struct {
	Date     string  `json:"date"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// ChartResult is the per-day series plus row counts across the whole range.
type ChartResult struct {
	Range             daterange.Range `json:"preset"`
	Points            []ChartPoint    `json:"chart_data"`
	TotalIncomeCount  int             `json:"total_income_count"`
	TotalExpenseCount int             `json:"total_expense_count"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
	Count    int     `json:"count"`
}

// ReportSummary is the monthly report for one user. It is built once per
// generation and is the only value the mailer reads from.
type ReportSummary struct {
	UserName               string                         `json:"user_name"`
	UserEmail              string                         `json:"user_email"`
	Period                 daterange.Range                `json:"period"`
	Summary                Summary                        `json:"summary"`
	NetBalance             float64                        `json:"net_balance"`
	CategoryBreakdown      map[string]float64             `json:"category_breakdown"`
	PaymentMethodBreakdown map[string]float64             `json:"payment_method_breakdown"`
	TransactionsByType     map[models.TransactionType]int `json:"transactions_by_type"`
	TopCategories          []CategoryTotal                `json:"top_categories"`
	Insights               []string                       `json:"insights"`
}

// PeriodLabel renders the report period as "YYYY-MM-DD - YYYY-MM-DD".
func (r *ReportSummary) PeriodLabel() string {
	return r.Period.From.Format(time.DateOnly) + " - " + r.Period.To.Format(time.DateOnly)
}

// Summarize aggregates txs. Amounts are summed by absolute value, so the
// sign of the stored amount never affects the direction of a row.
func Summarize(txs []models.Transaction) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for i := range txs {
		amount := txs[i].Amount.Abs()
		switch txs[i].Type {
		case models.TransactionTypeIncome:
			income = income.Add(amount)
		case models.TransactionTypeExpense:
			expense = expense.Add(amount)
		}
	}

	s := Summary{
		TotalIncome:      round2(income),
		TotalExpenses:    round2(expense),
		AvailableBalance: round2(income.Sub(expense)),
		TransactionCount: len(txs),
	}
	if income.IsPositive() {
		s.SavingsPercent = round2(income.Sub(expense).Div(income).Mul(hundred))
		s.ExpenseRatio = round2(expense.Div(income).Mul(hundred))
	}
	return s
}

// PercentChange returns the change from previous to current in percent,
// clamped to [-100, 100]. A zero base yields 0 when current is also zero
// and saturates at 100 otherwise.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}

	prev := decimal.NewFromFloat(previous)
	change := decimal.NewFromFloat(current).Sub(prev).Div(prev.Abs()).Mul(hundred)
	if change.GreaterThan(hundred) {
		change = hundred
	} else if change.LessThan(hundred.Neg()) {
		change = hundred.Neg()
	}
	return round2(change)
}

// CompareSummaries computes the percent change of every headline metric.
func CompareSummaries(previous, current Summary) PercentChanges {
	return PercentChanges{
		Income:         PercentChange(previous.TotalIncome, current.TotalIncome),
		Expenses:       PercentChange(previous.TotalExpenses, current.TotalExpenses),
		Balance:        PercentChange(previous.AvailableBalance, current.AvailableBalance),
		SavingsPercent: PercentChange(previous.SavingsPercent, current.SavingsPercent),
	}
}

// ChartSeries buckets txs by UTC calendar day. Only days with at least one
// transaction appear, in ascending order.
func ChartSeries(txs []models.Transaction) ChartResult {
	type bucket struct{ income, expense decimal.Decimal }
	buckets := make(map[string]*bucket)
	var result ChartResult

	for i := range txs {
		key := txs[i].Date.UTC().Format(time.DateOnly)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		amount := txs[i].Amount.Abs()
		switch txs[i].Type {
		case models.TransactionTypeIncome:
			b.income = b.income.Add(amount)
			result.TotalIncomeCount++
		case models.TransactionTypeExpense:
			b.expense = b.expense.Add(amount)
			result.TotalExpenseCount++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result.Points = make([]ChartPoint, 0, len(keys))
	for _, k := range keys {
		result.Points = append(result.Points, ChartPoint{
			Date:     k,
			Income:   round2(buckets[k].income),
			Expenses: round2(buckets[k].expense),
		})
	}
	return result
}

// CategoryBreakdown totals expenses per category, largest first. Ties are
// ordered by name.
func CategoryBreakdown(txs []models.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	overall := decimal.Zero

	for i := range txs {
		if txs[i].Type != models.TransactionTypeExpense {
			continue
		}
		label := UncategorizedLabel
		if txs[i].Category != nil && *txs[i].Category != "" {
			label = *txs[i].Category
		}
		amount := txs[i].Amount.Abs()
		totals[label] = totals[label].Add(amount)
		counts[label]++
		overall = overall.Add(amount)
	}

	result := make([]CategoryTotal, 0, len(totals))
	for label, amount := range totals {
		ct := CategoryTotal{Category: label, Amount: round2(amount), Count: counts[label]}
		if overall.IsPositive() {
			ct.Percent = round2(amount.Div(overall).Mul(hundred))
		}
		result = append(result, ct)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Amount != result[j].Amount {
			return result[i].Amount > result[j].Amount
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// BuildReportSummary assembles the monthly report for txs. It returns nil
// when the period has no transactions.
func BuildReportSummary(user *models.User, period daterange.Range, txs []models.Transaction) *ReportSummary {
	if len(txs) == 0 {
		return nil
	}

	categories := make(map[string]decimal.Decimal)
	methods := make(map[string]decimal.Decimal)
	byType := map[models.TransactionType]int{
		models.TransactionTypeIncome:  0,
		models.TransactionTypeExpense: 0,
	}

	for i := range txs {
		amount := txs[i].Amount.Abs()
		if _, ok := byType[txs[i].Type]; ok {
			byType[txs[i].Type]++
		}
		if txs[i].Category != nil && *txs[i].Category != "" {
			categories[*txs[i].Category] = categories[*txs[i].Category].Add(amount)
		}
		if txs[i].PaymentMethod != "" {
			key := string(txs[i].PaymentMethod)
			methods[key] = methods[key].Add(amount)
		}
	}

	summary := Summarize(txs)
	top := CategoryBreakdown(txs)
	if len(top) > topCategoryLimit {
		top = top[:topCategoryLimit]
	}

	report := &ReportSummary{
		UserName:               user.Name,
		UserEmail:              user.Email,
		Period:                 period,
		Summary:                summary,
		NetBalance:             summary.AvailableBalance,
		CategoryBreakdown:      roundAll(categories),
		PaymentMethodBreakdown: roundAll(methods),
		TransactionsByType:     byType,
		TopCategories:          top,
	}
	report.Insights = buildInsights(report)
	return report
}

func buildInsights(r *ReportSummary) []string {
	var insights []string
	s := r.Summary

	switch {
	case s.TotalIncome <= 0 && s.TotalExpenses > 0:
		insights = append(insights, "You recorded expenses but no income this period.")
	case s.SavingsPercent >= 20:
		insights = append(insights, fmt.Sprintf("Great job! You saved %.2f%% of your income.", s.SavingsPercent))
	case s.SavingsPercent > 0:
		insights = append(insights, fmt.Sprintf("You saved %.2f%% of your income. Aim for at least 20%%.", s.SavingsPercent))
	case s.TotalIncome > 0 && s.AvailableBalance < 0:
		insights = append(insights, "Your expenses exceeded your income this period.")
	}

	if len(r.TopCategories) > 0 {
		top := r.TopCategories[0]
		insights = append(insights, fmt.Sprintf("Your top spending category was %s at %.2f%% of expenses.", top.Category, top.Percent))
	}
	return insights
}

func roundAll(m map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round2(v)
	}
	return out
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
