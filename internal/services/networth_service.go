package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moneta/internal/errors"
	"moneta/internal/models"
)

// trendWindowDays is the snapshot window examined for the net worth trend.
const trendWindowDays = 90

// trendMinSnapshots is the minimum history needed before a trend is called.
const trendMinSnapshots = 7

// netWorthService implements net worth tracking over synced account balances
// and the daily snapshot series.
type netWorthService struct {
	db *gorm.DB
}

// NewNetWorthService creates a new net worth service.
func NewNetWorthService(db *gorm.DB) NetWorthServicer {
	return &netWorthService{db: db}
}

// CalculateCurrentNetWorth computes the live breakdown from account balances
// plus the market value of investment holdings. Only active accounts flagged
// for inclusion participate. Liability balances are reported as positive debt
// regardless of the stored sign.
func (s *netWorthService) CalculateCurrentNetWorth(userID string) (*NetWorthBreakdown, error) {
	accounts, err := s.includedAccounts(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	breakdown := &NetWorthBreakdown{
		AssetsBreakdown:      []AccountBreakdown{},
		LiabilitiesBreakdown: []AccountBreakdown{},
	}

	for _, account := range accounts {
		balance := account.BalanceCurrent
		entry := AccountBreakdown{
			ID:      account.ID,
			Name:    account.Name,
			Type:    account.Type,
			Subtype: account.Subtype,
		}
		if account.IsAsset {
			entry.Balance = balance
			entry.IsLiquid = account.IsLiquid
			breakdown.TotalAssets = breakdown.TotalAssets.Add(balance)
			if account.IsLiquid {
				breakdown.LiquidAssets = breakdown.LiquidAssets.Add(balance)
			}
			if account.Type == models.AccountTypeInvestment {
				breakdown.InvestmentAssets = breakdown.InvestmentAssets.Add(balance)
			}
			breakdown.AssetsBreakdown = append(breakdown.AssetsBreakdown, entry)
		} else {
			debt := balance.Abs()
			entry.Balance = debt
			breakdown.TotalLiabilities = breakdown.TotalLiabilities.Add(debt)
			switch account.Type {
			case models.AccountTypeCredit:
				breakdown.CreditCardDebt = breakdown.CreditCardDebt.Add(debt)
			case models.AccountTypeLoan:
				breakdown.LoanDebt = breakdown.LoanDebt.Add(debt)
			}
			breakdown.LiabilitiesBreakdown = append(breakdown.LiabilitiesBreakdown, entry)
		}
	}

	// Holdings are valued on top of account balances; brokerage cash sits in
	// the account balance, positions in the holdings.
	holdingsValue, err := s.holdingsValue(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	breakdown.TotalAssets = breakdown.TotalAssets.Add(holdingsValue)
	breakdown.InvestmentAssets = breakdown.InvestmentAssets.Add(holdingsValue)

	breakdown.NetWorth = breakdown.TotalAssets.Sub(breakdown.TotalLiabilities)
	breakdown.Changes = NetWorthChanges{
		Daily:   s.changeSince(userID, breakdown.NetWorth, 1),
		Weekly:  s.changeSince(userID, breakdown.NetWorth, 7),
		Monthly: s.changeSince(userID, breakdown.NetWorth, 30),
	}
	return breakdown, nil
}

// changeSince compares the current net worth against the most recent snapshot
// at least `days` old. No snapshot means zero change.
func (s *netWorthService) changeSince(userID string, current decimal.Decimal, days int) NetWorthChange {
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -days))

	var snapshot models.NetWorthSnapshot
	err := s.db.Where("user_id = ? AND snapshot_date <= ?", userID, cutoff).
		Order("snapshot_date DESC").
		First(&snapshot).Error
	if err != nil {
		return NetWorthChange{Amount: decimal.Zero}
	}

	diff := current.Sub(snapshot.NetWorth)
	change := NetWorthChange{Amount: diff}
	if !snapshot.NetWorth.IsZero() {
		pct, _ := diff.Div(snapshot.NetWorth.Abs()).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		change.Percent = pct
	}
	return change
}

// GetHistory returns the snapshot series for the trailing window, oldest first.
func (s *netWorthService) GetHistory(userID string, days int) ([]NetWorthHistoryPoint, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -days))

	var snapshots []models.NetWorthSnapshot
	err := s.db.Where("user_id = ? AND snapshot_date >= ?", userID, cutoff).
		Order("snapshot_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	points := make([]NetWorthHistoryPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		point := NetWorthHistoryPoint{
			Date:             models.FormatDate(snap.SnapshotDate),
			NetWorth:         snap.NetWorth,
			TotalAssets:      snap.TotalAssets,
			TotalLiabilities: snap.TotalLiabilities,
		}
		if snap.DailyChange.Valid {
			point.DailyChange = snap.DailyChange.Decimal
		}
		if snap.DailyChangePercent.Valid {
			point.DailyChangePercent, _ = snap.DailyChangePercent.Decimal.Float64()
		}
		points = append(points, point)
	}
	return points, nil
}

// CalculateWealthMetrics derives financial health ratios from the current
// breakdown and recent spending. Zero denominators yield zero ratios.
func (s *netWorthService) CalculateWealthMetrics(userID string) (*WealthMetrics, error) {
	breakdown, err := s.CalculateCurrentNetWorth(userID)
	if err != nil {
		return nil, err
	}

	metrics := &WealthMetrics{NetWorthTrend: s.netWorthTrend(userID)}

	assets, _ := breakdown.TotalAssets.Float64()
	liabilities, _ := breakdown.TotalLiabilities.Float64()
	liquid, _ := breakdown.LiquidAssets.Float64()
	investments, _ := breakdown.InvestmentAssets.Float64()

	if assets > 0 {
		metrics.DebtToAssetRatio = round3(liabilities / assets)
		metrics.InvestmentAllocationPercent = round1(investments / assets * 100)
	}
	if liabilities > 0 {
		metrics.LiquidityRatio = round3(liquid / liabilities)
	}

	monthlySpending, err := s.monthlySpending(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	if monthlySpending > 0 {
		metrics.LiquidMonths = round1(liquid / monthlySpending)
	}
	return metrics, nil
}

// monthlySpending totals outgoing expense activity over the trailing 30 days.
func (s *netWorthService) monthlySpending(userID string) (float64, error) {
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -30))

	var transactions []models.Transaction
	err := s.db.Where("user_id = ? AND date >= ? AND cash_flow_type = ? AND amount > 0",
		userID, cutoff, models.CashFlowExpense).
		Find(&transactions).Error
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, txn := range transactions {
		total = total.Add(txn.Amount)
	}
	spending, _ := total.Float64()
	return spending, nil
}

// netWorthTrend classifies the trailing window's direction by comparing the
// average of the last week of snapshots against the average of the preceding
// snapshots (up to a month back). Fewer than the minimum number of snapshots
// reports insufficient data; moves inside a ±3% band count as stable.
func (s *netWorthService) netWorthTrend(userID string) string {
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -trendWindowDays))

	var snapshots []models.NetWorthSnapshot
	err := s.db.Where("user_id = ? AND snapshot_date >= ?", userID, cutoff).
		Order("snapshot_date ASC").
		Find(&snapshots).Error
	if err != nil || len(snapshots) < trendMinSnapshots {
		return TrendInsufficientData
	}

	n := len(snapshots)
	lo := n - 30
	if lo < 0 {
		lo = 0
	}
	recent := snapshots[n-trendMinSnapshots:]
	previous := snapshots[lo : n-trendMinSnapshots]
	if len(previous) == 0 {
		return TrendStable
	}

	recentAvg := averageNetWorth(recent)
	previousAvg := averageNetWorth(previous)
	if previousAvg.IsZero() {
		return TrendStable
	}

	pct, _ := recentAvg.Sub(previousAvg).Div(previousAvg.Abs()).Mul(decimal.NewFromInt(100)).Float64()
	switch {
	case pct > 3:
		return TrendIncreasing
	case pct < -3:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func averageNetWorth(snapshots []models.NetWorthSnapshot) decimal.Decimal {
	total := decimal.Zero
	for _, snap := range snapshots {
		total = total.Add(snap.NetWorth)
	}
	return total.Div(decimal.NewFromInt(int64(len(snapshots))))
}

// SaveDailySnapshot persists today's breakdown as a snapshot, computing the
// change against the most recent prior day. Re-running on the same day
// updates the existing row.
func (s *netWorthService) SaveDailySnapshot(userID string) (*models.NetWorthSnapshot, error) {
	breakdown, err := s.CalculateCurrentNetWorth(userID)
	if err != nil {
		return nil, err
	}

	today := models.DateOnly(time.Now().UTC())

	snapshot := models.NetWorthSnapshot{
		UserID:           userID,
		SnapshotDate:     today,
		TotalAssets:      breakdown.TotalAssets,
		LiquidAssets:     breakdown.LiquidAssets,
		InvestmentAssets: breakdown.InvestmentAssets,
		TotalLiabilities: breakdown.TotalLiabilities,
		CreditCardDebt:   breakdown.CreditCardDebt,
		LoanDebt:         breakdown.LoanDebt,
		NetWorth:         breakdown.NetWorth,
	}

	var previous models.NetWorthSnapshot
	err = s.db.Where("user_id = ? AND snapshot_date < ?", userID, today).
		Order("snapshot_date DESC").
		First(&previous).Error
	if err == nil {
		diff := breakdown.NetWorth.Sub(previous.NetWorth)
		snapshot.DailyChange = decimal.NewNullDecimal(diff)
		if !previous.NetWorth.IsZero() {
			pct := diff.Div(previous.NetWorth.Abs()).Mul(decimal.NewFromInt(100)).Round(4)
			snapshot.DailyChangePercent = decimal.NewNullDecimal(pct)
		}
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_assets", "liquid_assets", "investment_assets",
			"total_liabilities", "credit_card_debt", "loan_debt",
			"net_worth", "daily_change", "daily_change_percent",
		}),
	}).Create(&snapshot).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	var stored models.NetWorthSnapshot
	if err := s.db.First(&stored, "user_id = ? AND snapshot_date = ?", userID, today).Error; err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return &stored, nil
}

// includedAccounts loads active accounts that participate in net worth.
func (s *netWorthService) includedAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.Where("user_id = ? AND is_active = ? AND include_in_net_worth = ?",
		userID, true, true).
		Find(&accounts).Error
	return accounts, err
}

// holdingsValue totals the user's investment holdings at institution value.
func (s *netWorthService) holdingsValue(userID string) (decimal.Decimal, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, holding := range holdings {
		total = total.Add(holding.InstitutionValue)
	}
	return total, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
