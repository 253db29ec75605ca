package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneta/internal/errors"
	"moneta/internal/models"
)

// portfolioService implements portfolio analytics over synced holdings and
// investment transactions.
type portfolioService struct {
	db *gorm.DB
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(db *gorm.DB) PortfolioServicer {
	return &portfolioService{db: db}
}

// GetPortfolioSummary values every holding, largest first, and groups
// allocation by security type. An empty portfolio returns a zeroed summary,
// not an error.
func (s *portfolioService) GetPortfolioSummary(userID string) (*PortfolioSummary, error) {
	holdings, err := s.userHoldings(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	summary := &PortfolioSummary{
		Holdings:      []HoldingSummary{},
		Allocation:    map[string]AllocationSlice{},
		HoldingsCount: len(holdings),
	}

	typeTotals := map[string]decimal.Decimal{}
	for _, holding := range holdings {
		value := holding.InstitutionValue
		// Missing cost basis counts as zero, so the position reads as pure gain.
		cost := decimal.Zero
		if holding.CostBasis.Valid {
			cost = holding.CostBasis.Decimal
		}
		summary.TotalValue = summary.TotalValue.Add(value)
		summary.TotalCostBasis = summary.TotalCostBasis.Add(cost)

		entry := HoldingSummary{
			ID:         holding.ID,
			SecurityID: holding.SecurityID,
			Ticker:     holding.Security.TickerSymbol,
			Name:       holding.Security.Name,
			Type:       holding.Security.Type,
			Sector:     holding.Security.Sector,
			Quantity:   holding.Quantity,
			Price:      holding.InstitutionPrice,
			Value:      value,
			CostBasis:  cost,
			GainLoss:   value.Sub(cost),
		}
		if holding.UnrealizedGainLossPercent.Valid {
			entry.GainLossPercent, _ = holding.UnrealizedGainLossPercent.Decimal.Float64()
		}
		summary.Holdings = append(summary.Holdings, entry)

		secType := holding.Security.Type
		if secType == "" {
			secType = models.SecurityTypeOther
		}
		typeTotals[secType] = typeTotals[secType].Add(value)
	}

	sort.Slice(summary.Holdings, func(i, j int) bool {
		return summary.Holdings[i].Value.GreaterThan(summary.Holdings[j].Value)
	})

	summary.TotalGainLoss = summary.TotalValue.Sub(summary.TotalCostBasis)
	if summary.TotalCostBasis.IsPositive() {
		pct, _ := summary.TotalGainLoss.Div(summary.TotalCostBasis).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		summary.TotalGainLossPercent = pct
	}

	for secType, value := range typeTotals {
		slice := AllocationSlice{Value: value}
		if summary.TotalValue.IsPositive() {
			pct, _ := value.Div(summary.TotalValue).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			slice.Percent = pct
		}
		summary.Allocation[secType] = slice
	}
	return summary, nil
}

// AnalyzePortfolioRisk scores diversification and concentration. The score
// rewards position count and sector spread, capped at 100.
func (s *portfolioService) AnalyzePortfolioRisk(userID string) (*PortfolioRisk, error) {
	holdings, err := s.userHoldings(userID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	if len(holdings) == 0 {
		return &PortfolioRisk{
			ConcentrationRisk:  RiskNone,
			SectorDistribution: map[string]float64{},
			Recommendations:    []string{"Add investments to begin tracking"},
		}, nil
	}

	total := decimal.Zero
	topValue := decimal.Zero
	sectorTotals := map[string]decimal.Decimal{}
	for _, holding := range holdings {
		value := holding.InstitutionValue
		total = total.Add(value)
		if value.GreaterThan(topValue) {
			topValue = value
		}
		sector := holding.Security.Sector
		if sector == "" {
			sector = "Unknown"
		}
		sectorTotals[sector] = sectorTotals[sector].Add(value)
	}

	risk := &PortfolioRisk{
		HoldingsCount:      len(holdings),
		SectorsCount:       len(sectorTotals),
		SectorDistribution: map[string]float64{},
	}

	if total.IsPositive() {
		pct, _ := topValue.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
		risk.TopHoldingPercent = pct
		for sector, value := range sectorTotals {
			sectorPct, _ := value.Div(total).Mul(decimal.NewFromInt(100)).Round(2).Float64()
			risk.SectorDistribution[sector] = sectorPct
		}
	}

	risk.DiversificationScore = len(holdings)*5 + len(sectorTotals)*10
	if risk.DiversificationScore > 100 {
		risk.DiversificationScore = 100
	}

	switch {
	case risk.TopHoldingPercent > 50:
		risk.ConcentrationRisk = RiskHigh
	case risk.TopHoldingPercent > 25:
		risk.ConcentrationRisk = RiskMedium
	default:
		risk.ConcentrationRisk = RiskLow
	}

	if risk.TopHoldingPercent > 30 {
		risk.Recommendations = append(risk.Recommendations,
			"Your largest holding exceeds 30% of the portfolio. Consider reducing the position.")
	}
	if risk.SectorsCount < 3 && risk.HoldingsCount >= 5 {
		risk.Recommendations = append(risk.Recommendations,
			"Holdings are concentrated in few sectors. Consider diversifying across sectors.")
	}
	if risk.HoldingsCount < 10 {
		risk.Recommendations = append(risk.Recommendations,
			"Consider adding more positions to improve diversification.")
	}
	if len(risk.Recommendations) == 0 {
		risk.Recommendations = append(risk.Recommendations, "Portfolio diversification looks healthy")
	}
	return risk, nil
}

// GetDividendIncome totals dividend and interest payouts over the trailing
// window, defaulting to a year, with a per-month breakdown.
func (s *portfolioService) GetDividendIncome(userID string, days int) (*DividendIncome, error) {
	if days <= 0 {
		days = 365
	}
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -days))

	var transactions []models.InvestmentTransaction
	err := s.db.Where("user_id = ? AND date >= ? AND subtype IN ?",
		userID, cutoff, []string{
			models.InvestmentSubtypeDividend,
			models.InvestmentSubtypeQualifiedDividend,
			models.InvestmentSubtypeInterest,
		}).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	income := &DividendIncome{
		DividendCount:    len(transactions),
		MonthlyBreakdown: []MonthlyDividend{},
	}

	monthly := map[string]decimal.Decimal{}
	for _, txn := range transactions {
		amount := txn.Amount.Abs()
		income.TotalDividendIncome = income.TotalDividendIncome.Add(amount)
		month := txn.Date.Format("2006-01")
		monthly[month] = monthly[month].Add(amount)
	}

	for month, amount := range monthly {
		income.MonthlyBreakdown = append(income.MonthlyBreakdown, MonthlyDividend{Month: month, Amount: amount})
	}
	sort.Slice(income.MonthlyBreakdown, func(i, j int) bool {
		return income.MonthlyBreakdown[i].Month < income.MonthlyBreakdown[j].Month
	})

	// A full year prorates over twelve months; shorter windows over the
	// fractional months they actually cover, floored at one.
	if days >= 365 {
		income.AverageMonthly = income.TotalDividendIncome.Div(decimal.NewFromInt(12)).Round(2)
	} else {
		months := decimal.NewFromInt(int64(days)).Div(decimal.NewFromInt(30))
		if months.LessThan(decimal.NewFromInt(1)) {
			months = decimal.NewFromInt(1)
		}
		income.AverageMonthly = income.TotalDividendIncome.Div(months).Round(2)
	}
	return income, nil
}

// GetInvestmentTransactions lists recent investment activity, newest first,
// defaulting to the trailing 90 days.
func (s *portfolioService) GetInvestmentTransactions(userID string, days int) ([]InvestmentActivity, error) {
	if days <= 0 {
		days = 90
	}
	cutoff := models.DateOnly(time.Now().UTC().AddDate(0, 0, -days))

	var transactions []models.InvestmentTransaction
	err := s.db.Preload("Security").
		Where("user_id = ? AND date >= ?", userID, cutoff).
		Order("date DESC").
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	activity := make([]InvestmentActivity, 0, len(transactions))
	for _, txn := range transactions {
		entry := InvestmentActivity{
			ID:       txn.ID,
			Date:     models.FormatDate(txn.Date),
			Type:     txn.Type,
			Subtype:  txn.Subtype,
			Name:     txn.Name,
			Amount:   txn.Amount,
			Quantity: txn.Quantity,
		}
		if txn.Price.Valid {
			entry.Price = txn.Price.Decimal
		}
		if txn.Security != nil {
			entry.Ticker = txn.Security.TickerSymbol
		}
		activity = append(activity, entry)
	}
	return activity, nil
}

func (s *portfolioService) userHoldings(userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.Preload("Security").
		Where("user_id = ?", userID).
		Find(&holdings).Error
	return holdings, err
}
