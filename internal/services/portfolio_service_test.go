package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/testutil"
)

func TestGetPortfolioSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID, func(a *models.Account) {
		a.Type = models.AccountTypeInvestment
		a.IsLiquid = false
	})
	svc := NewPortfolioService(db)

	t.Run("empty portfolio yields zeroed summary", func(t *testing.T) {
		summary, err := svc.GetPortfolioSummary(user.ID)
		testutil.AssertNoError(t, err)
		if !summary.TotalValue.IsZero() || summary.HoldingsCount != 0 {
			t.Errorf("expected zeroed summary, got %+v", summary)
		}
		if summary.Holdings == nil || summary.Allocation == nil {
			t.Error("expected empty collections, not nil")
		}
	})

	equity := testutil.CreateTestSecurity(t, db, func(s *models.Security) {
		s.Type = models.SecurityTypeEquity
		s.Sector = "Technology"
	})
	bond := testutil.CreateTestSecurity(t, db, func(s *models.Security) {
		s.Type = models.SecurityTypeFixedIncome
		s.Sector = "Government"
	})

	testutil.CreateTestHolding(t, db, user.ID, account.ID, equity.ID, func(h *models.Holding) {
		h.InstitutionValue = dec("6000.00")
		h.CostBasis = dnull("5000.00")
		h.UnrealizedGainLoss = dnull("1000.00")
		h.UnrealizedGainLossPercent = dnull("20")
	})
	testutil.CreateTestHolding(t, db, user.ID, account.ID, bond.ID, func(h *models.Holding) {
		h.InstitutionValue = dec("4000.00")
		h.CostBasis = dnull("4000.00")
	})

	t.Run("totals and allocation", func(t *testing.T) {
		summary, err := svc.GetPortfolioSummary(user.ID)
		testutil.AssertNoError(t, err)

		if !summary.TotalValue.Equal(dec("10000.00")) {
			t.Errorf("expected total value 10000.00, got %s", summary.TotalValue)
		}
		if !summary.TotalCostBasis.Equal(dec("9000.00")) {
			t.Errorf("expected cost basis 9000.00, got %s", summary.TotalCostBasis)
		}
		if !summary.TotalGainLoss.Equal(dec("1000.00")) {
			t.Errorf("expected gain 1000.00, got %s", summary.TotalGainLoss)
		}
		if summary.TotalGainLossPercent != 11.11 {
			t.Errorf("expected gain percent 11.11, got %v", summary.TotalGainLossPercent)
		}

		equitySlice := summary.Allocation[models.SecurityTypeEquity]
		if equitySlice.Percent != 60 {
			t.Errorf("expected equity allocation 60%%, got %v", equitySlice.Percent)
		}
		bondSlice := summary.Allocation[models.SecurityTypeFixedIncome]
		if !bondSlice.Value.Equal(dec("4000.00")) {
			t.Errorf("expected fixed income value 4000.00, got %s", bondSlice.Value)
		}

		if !summary.Holdings[0].Value.Equal(dec("6000.00")) {
			t.Errorf("expected largest holding first, got %s", summary.Holdings[0].Value)
		}
		if !summary.Holdings[1].GainLoss.IsZero() {
			t.Errorf("expected zero gain on the break-even position, got %s", summary.Holdings[1].GainLoss)
		}
	})
}

func TestPortfolioSummaryMissingCostBasis(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID, func(a *models.Account) {
		a.Type = models.AccountTypeInvestment
	})
	svc := NewPortfolioService(db)

	sec := testutil.CreateTestSecurity(t, db)
	testutil.CreateTestHolding(t, db, user.ID, account.ID, sec.ID, func(h *models.Holding) {
		h.InstitutionValue = dec("5000.00")
		h.CostBasis = decimal.NullDecimal{}
		h.UnrealizedGainLoss = decimal.NullDecimal{}
	})

	summary, err := svc.GetPortfolioSummary(user.ID)
	testutil.AssertNoError(t, err)

	// No recorded cost reads as pure gain, and the total is still computed.
	if !summary.Holdings[0].GainLoss.Equal(dec("5000.00")) {
		t.Errorf("expected holding gain 5000.00, got %s", summary.Holdings[0].GainLoss)
	}
	if !summary.TotalGainLoss.Equal(dec("5000.00")) {
		t.Errorf("expected total gain 5000.00, got %s", summary.TotalGainLoss)
	}
	if summary.TotalGainLossPercent != 0 {
		t.Errorf("gain percent is undefined without cost basis, got %v", summary.TotalGainLossPercent)
	}
}

func TestAnalyzePortfolioRisk(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID, func(a *models.Account) {
		a.Type = models.AccountTypeInvestment
	})
	svc := NewPortfolioService(db)

	t.Run("empty portfolio", func(t *testing.T) {
		risk, err := svc.AnalyzePortfolioRisk(user.ID)
		testutil.AssertNoError(t, err)
		if risk.DiversificationScore != 0 || risk.ConcentrationRisk != RiskNone {
			t.Errorf("expected N/A risk for empty portfolio, got %+v", risk)
		}
		if len(risk.Recommendations) != 1 || risk.Recommendations[0] != "Add investments to begin tracking" {
			t.Errorf("unexpected recommendations: %v", risk.Recommendations)
		}
	})

	t.Run("single holding is maximum concentration", func(t *testing.T) {
		sec := testutil.CreateTestSecurity(t, db)
		testutil.CreateTestHolding(t, db, user.ID, account.ID, sec.ID, func(h *models.Holding) {
			h.InstitutionValue = dec("5000.00")
		})

		risk, err := svc.AnalyzePortfolioRisk(user.ID)
		testutil.AssertNoError(t, err)

		if risk.TopHoldingPercent != 100 {
			t.Errorf("expected top holding 100%%, got %v", risk.TopHoldingPercent)
		}
		if risk.ConcentrationRisk != RiskHigh {
			t.Errorf("expected High concentration, got %s", risk.ConcentrationRisk)
		}
		// 1 holding * 5 + 1 sector * 10
		if risk.DiversificationScore != 15 {
			t.Errorf("expected score 15, got %d", risk.DiversificationScore)
		}

		foundReduce := false
		for _, rec := range risk.Recommendations {
			if rec == "Your largest holding exceeds 30% of the portfolio. Consider reducing the position." {
				foundReduce = true
			}
		}
		if !foundReduce {
			t.Errorf("expected concentration advisory, got %v", risk.Recommendations)
		}
	})

	t.Run("spread portfolio scores low risk", func(t *testing.T) {
		sectors := []string{"Healthcare", "Financials", "Energy", "Utilities", "Consumer"}
		for _, sector := range sectors {
			sec := testutil.CreateTestSecurity(t, db, func(s *models.Security) { s.Sector = sector })
			testutil.CreateTestHolding(t, db, user.ID, account.ID, sec.ID, func(h *models.Holding) {
				h.InstitutionValue = dec("1000.00")
			})
		}

		risk, err := svc.AnalyzePortfolioRisk(user.ID)
		testutil.AssertNoError(t, err)

		if risk.HoldingsCount != 6 || risk.SectorsCount != 6 {
			t.Fatalf("expected 6 holdings over 6 sectors, got %d/%d", risk.HoldingsCount, risk.SectorsCount)
		}
		if risk.TopHoldingPercent != 50 {
			t.Errorf("expected top holding 50%%, got %v", risk.TopHoldingPercent)
		}
		if risk.ConcentrationRisk != RiskMedium {
			t.Errorf("expected Medium concentration, got %s", risk.ConcentrationRisk)
		}
		// 6*5 + 6*10 = 90
		if risk.DiversificationScore != 90 {
			t.Errorf("expected score 90, got %d", risk.DiversificationScore)
		}
	})
}

func TestGetDividendIncome(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID, func(a *models.Account) {
		a.Type = models.AccountTypeInvestment
	})
	svc := NewPortfolioService(db)

	now := time.Now().UTC()
	for _, daysAgo := range []int{5, 35, 70} {
		offset := daysAgo
		testutil.CreateTestInvestmentTransaction(t, db, user.ID, account.ID, func(txn *models.InvestmentTransaction) {
			txn.Type = "cash"
			txn.Subtype = models.InvestmentSubtypeDividend
			txn.Amount = dec("-40.00") // payouts arrive as inflows
			txn.Date = models.DateOnly(now.AddDate(0, 0, -offset))
		})
	}
	// Buys never count as dividend income.
	testutil.CreateTestInvestmentTransaction(t, db, user.ID, account.ID, func(txn *models.InvestmentTransaction) {
		txn.Type = "buy"
		txn.Amount = dec("500.00")
		txn.Date = models.DateOnly(now)
	})

	t.Run("full year prorates over twelve months", func(t *testing.T) {
		income, err := svc.GetDividendIncome(user.ID, 365)
		testutil.AssertNoError(t, err)

		if !income.TotalDividendIncome.Equal(dec("120.00")) {
			t.Errorf("expected total 120.00, got %s", income.TotalDividendIncome)
		}
		if income.DividendCount != 3 {
			t.Errorf("expected 3 payouts, got %d", income.DividendCount)
		}
		if !income.AverageMonthly.Equal(dec("10.00")) {
			t.Errorf("expected monthly average 10.00, got %s", income.AverageMonthly)
		}
		if len(income.MonthlyBreakdown) != 3 {
			t.Errorf("expected 3 months in breakdown, got %d", len(income.MonthlyBreakdown))
		}
	})

	t.Run("short window prorates over covered months", func(t *testing.T) {
		income, err := svc.GetDividendIncome(user.ID, 60)
		testutil.AssertNoError(t, err)
		// Two payouts inside 60 days, prorated over two months.
		if !income.TotalDividendIncome.Equal(dec("80.00")) {
			t.Errorf("expected total 80.00, got %s", income.TotalDividendIncome)
		}
		if !income.AverageMonthly.Equal(dec("40.00")) {
			t.Errorf("expected monthly average 40.00, got %s", income.AverageMonthly)
		}
	})

	t.Run("proration months are fractional", func(t *testing.T) {
		income, err := svc.GetDividendIncome(user.ID, 45)
		testutil.AssertNoError(t, err)
		// Two payouts over a month and a half: 80 / 1.5.
		if !income.AverageMonthly.Equal(dec("53.33")) {
			t.Errorf("expected monthly average 53.33, got %s", income.AverageMonthly)
		}
	})
}

func TestGetInvestmentTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID, func(a *models.Account) {
		a.Type = models.AccountTypeInvestment
	})
	svc := NewPortfolioService(db)

	sec := testutil.CreateTestSecurity(t, db)
	now := time.Now().UTC()

	testutil.CreateTestInvestmentTransaction(t, db, user.ID, account.ID, func(txn *models.InvestmentTransaction) {
		txn.SecurityID = &sec.ID
		txn.Date = models.DateOnly(now.AddDate(0, 0, -10))
	})
	testutil.CreateTestInvestmentTransaction(t, db, user.ID, account.ID, func(txn *models.InvestmentTransaction) {
		txn.Date = models.DateOnly(now.AddDate(0, 0, -1))
	})
	// Outside the default window.
	testutil.CreateTestInvestmentTransaction(t, db, user.ID, account.ID, func(txn *models.InvestmentTransaction) {
		txn.Date = models.DateOnly(now.AddDate(0, 0, -120))
	})

	activity, err := svc.GetInvestmentTransactions(user.ID, 0)
	testutil.AssertNoError(t, err)

	if len(activity) != 2 {
		t.Fatalf("expected 2 recent transactions, got %d", len(activity))
	}
	if activity[0].Date < activity[1].Date {
		t.Error("expected newest first ordering")
	}
	if activity[1].Ticker != sec.TickerSymbol {
		t.Errorf("expected security ticker %s, got %q", sec.TickerSymbol, activity[1].Ticker)
	}
}
