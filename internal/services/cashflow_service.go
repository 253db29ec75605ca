package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneta/internal/errors"
	"moneta/internal/models"
)

// spendingIncreaseThreshold is the month-over-month growth (percent) above
// which a category is flagged in insights.
const spendingIncreaseThreshold = 20.0

// cashFlowService implements income/expense analytics over synced
// transactions and recurring stream forecasts.
type cashFlowService struct {
	db *gorm.DB
}

// NewCashFlowService creates a new cash flow service.
func NewCashFlowService(db *gorm.DB) CashFlowServicer {
	return &cashFlowService{db: db}
}

// AnalyzeCashFlow aggregates settled transactions over the period, defaulting
// to the trailing 30 days. Partitioning follows the upstream sign convention:
// negative amounts are inflows, everything else is spending.
func (s *cashFlowService) AnalyzeCashFlow(userID string, startDate, endDate *time.Time) (*CashFlowAnalysis, error) {
	end := models.DateOnly(time.Now().UTC())
	if endDate != nil {
		end = models.DateOnly(*endDate)
	}
	start := end.AddDate(0, 0, -30)
	if startDate != nil {
		start = models.DateOnly(*startDate)
	}
	if start.After(end) {
		return nil, errors.ErrInvalidDateRange
	}

	transactions, err := s.settledTransactions(userID, start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	analysis := &CashFlowAnalysis{
		Period: Period{
			Start: models.FormatDate(start),
			End:   models.FormatDate(end),
			Days:  int(end.Sub(start).Hours()/24) + 1,
		},
	}

	incomeByCategory := map[string]decimal.Decimal{}
	expensesByCategory := map[string]decimal.Decimal{}
	dailyIncome := map[string]decimal.Decimal{}
	dailyExpenses := map[string]decimal.Decimal{}

	for _, txn := range transactions {
		day := models.FormatDate(txn.Date)
		category := transactionCategory(&txn)

		if txn.Amount.IsNegative() {
			amount := txn.Amount.Abs()
			analysis.TotalIncome = analysis.TotalIncome.Add(amount)
			incomeByCategory[category] = incomeByCategory[category].Add(amount)
			dailyIncome[day] = dailyIncome[day].Add(amount)
		} else {
			analysis.TotalExpenses = analysis.TotalExpenses.Add(txn.Amount)
			expensesByCategory[category] = expensesByCategory[category].Add(txn.Amount)
			dailyExpenses[day] = dailyExpenses[day].Add(txn.Amount)
		}
	}

	analysis.NetCashFlow = analysis.TotalIncome.Sub(analysis.TotalExpenses)
	if analysis.TotalIncome.IsPositive() {
		rate, _ := analysis.NetCashFlow.Div(analysis.TotalIncome).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		analysis.SavingsRate = rate
	}

	analysis.IncomeByCategory = sortedCategories(incomeByCategory)
	analysis.ExpensesByCategory = sortedCategories(expensesByCategory)
	analysis.DailyData = dailySeries(dailyIncome, dailyExpenses)

	// Averages span full days between the endpoints, minimum one.
	spanDays := int(end.Sub(start).Hours() / 24)
	if spanDays < 1 {
		spanDays = 1
	}
	divisor := decimal.NewFromInt(int64(spanDays))
	analysis.Averages = FlowAverages{
		DailyIncome:   analysis.TotalIncome.Div(divisor).Round(2),
		DailyExpenses: analysis.TotalExpenses.Div(divisor).Round(2),
	}
	return analysis, nil
}

// GetSpendingInsights compares the current calendar month against the
// previous one and flags categories whose spending grew past the threshold.
func (s *cashFlowService) GetSpendingInsights(userID string) (*SpendingInsights, error) {
	now := time.Now().UTC()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousStart := currentStart.AddDate(0, -1, 0)
	previousEnd := currentStart.AddDate(0, 0, -1)

	current, err := s.AnalyzeCashFlow(userID, &currentStart, &now)
	if err != nil {
		return nil, err
	}
	previous, err := s.AnalyzeCashFlow(userID, &previousStart, &previousEnd)
	if err != nil {
		return nil, err
	}

	insights := &SpendingInsights{
		SpendingIncreases:  []CategoryIncrease{},
		CurrentSavingsRate: current.SavingsRate,
	}

	top := current.ExpensesByCategory
	if len(top) > 5 {
		top = top[:5]
	}
	insights.TopSpendingCategories = top

	previousByCategory := map[string]decimal.Decimal{}
	for _, entry := range previous.ExpensesByCategory {
		previousByCategory[entry.Category] = entry.Amount
	}
	for _, entry := range current.ExpensesByCategory {
		prev, ok := previousByCategory[entry.Category]
		if !ok || !prev.IsPositive() {
			continue
		}
		change, _ := entry.Amount.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		if change > spendingIncreaseThreshold {
			insights.SpendingIncreases = append(insights.SpendingIncreases, CategoryIncrease{
				Category:      entry.Category,
				Current:       entry.Amount,
				Previous:      prev,
				ChangePercent: change,
			})
		}
	}

	sort.Slice(insights.SpendingIncreases, func(i, j int) bool {
		return insights.SpendingIncreases[i].ChangePercent > insights.SpendingIncreases[j].ChangePercent
	})
	if len(insights.SpendingIncreases) > 3 {
		insights.SpendingIncreases = insights.SpendingIncreases[:3]
	}

	if previous.TotalExpenses.IsPositive() {
		pct, _ := current.TotalExpenses.Sub(previous.TotalExpenses).
			Div(previous.TotalExpenses).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		insights.MonthOverMonth.ExpenseChangePercent = pct
	}
	if previous.TotalIncome.IsPositive() {
		pct, _ := current.TotalIncome.Sub(previous.TotalIncome).
			Div(previous.TotalIncome).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		insights.MonthOverMonth.IncomeChangePercent = pct
	}

	insights.Recommendations = buildRecommendations(insights)
	return insights, nil
}

// buildRecommendations turns the insights into at most three advisory lines:
// one savings-rate note plus the two steepest category increases.
func buildRecommendations(insights *SpendingInsights) []string {
	var recs []string
	if insights.CurrentSavingsRate < 10 {
		recs = append(recs, "Your savings rate is below 10%. Consider reviewing discretionary spending.")
	} else if insights.CurrentSavingsRate >= 20 {
		recs = append(recs, "Great job! You're saving over 20% of your income.")
	}
	increases := insights.SpendingIncreases
	if len(increases) > 2 {
		increases = increases[:2]
	}
	for _, inc := range increases {
		recs = append(recs, fmt.Sprintf("Spending in %s increased by %.1f%% this month.", inc.Category, inc.ChangePercent))
	}
	if len(recs) == 0 {
		recs = append(recs, "Your spending patterns look stable this month.")
	}
	return recs
}

// ForecastCashFlow sums active recurring streams whose next expected payment
// lands inside the forward window. Each stream counts once at its average
// amount; the detected cadence is reported but not extrapolated.
func (s *cashFlowService) ForecastCashFlow(userID string, days int) (*CashFlowForecast, error) {
	if days <= 0 {
		days = 30
	}
	horizon := models.DateOnly(time.Now().UTC()).AddDate(0, 0, days)

	var streams []models.RecurringStream
	err := s.db.Where("user_id = ? AND is_active = ? AND next_expected_date IS NOT NULL",
		userID, true).
		Find(&streams).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	forecast := &CashFlowForecast{
		ForecastPeriodDays:   days,
		UpcomingTransactions: []UpcomingTransaction{},
	}

	for _, stream := range streams {
		date := *stream.NextExpectedDate
		if date.After(horizon) {
			continue
		}
		amount := stream.AverageAmount.Abs()
		forecast.UpcomingTransactions = append(forecast.UpcomingTransactions, UpcomingTransaction{
			Description:  stream.Description,
			Amount:       amount,
			IsIncome:     stream.IsIncome,
			ExpectedDate: models.FormatDate(date),
			Frequency:    string(stream.Frequency),
		})
		if stream.IsIncome {
			forecast.ExpectedIncome = forecast.ExpectedIncome.Add(amount)
		} else {
			forecast.ExpectedExpenses = forecast.ExpectedExpenses.Add(amount)
		}
	}

	sort.Slice(forecast.UpcomingTransactions, func(i, j int) bool {
		return forecast.UpcomingTransactions[i].ExpectedDate < forecast.UpcomingTransactions[j].ExpectedDate
	})
	forecast.ExpectedNet = forecast.ExpectedIncome.Sub(forecast.ExpectedExpenses)
	return forecast, nil
}

func (s *cashFlowService) settledTransactions(userID string, start, end time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ? AND pending = ?",
		userID, start, end, false).
		Find(&transactions).Error
	return transactions, err
}

// transactionCategory prefers the user's override over the synced category.
func transactionCategory(txn *models.Transaction) string {
	if txn.CustomCategory != "" {
		return txn.CustomCategory
	}
	if txn.CategoryPrimary != "" {
		return txn.CategoryPrimary
	}
	return models.CategoryUncategorized
}

// sortedCategories ranks totals descending, breaking ties by name for a
// stable order.
func sortedCategories(totals map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for category, amount := range totals {
		out = append(out, CategoryAmount{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

func dailySeries(income, expenses map[string]decimal.Decimal) []DailyFlow {
	days := map[string]bool{}
	for d := range income {
		days[d] = true
	}
	for d := range expenses {
		days[d] = true
	}

	out := make([]DailyFlow, 0, len(days))
	for day := range days {
		in := income[day]
		ex := expenses[day]
		out = append(out, DailyFlow{
			Date:     day,
			Income:   in,
			Expenses: ex,
			Net:      in.Sub(ex),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
