package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// SyncReport summarizes one reconciliation run. It is always produced:
// category failures are captured in Errors instead of aborting the run.
type SyncReport struct {
	LinkID                       string   `json:"link_id"`
	AccountsSynced               int      `json:"accounts_synced"`
	TransactionsSynced           int      `json:"transactions_synced"`
	SecuritiesSynced             int      `json:"securities_synced"`
	HoldingsSynced               int      `json:"holdings_synced"`
	InvestmentTransactionsSynced int      `json:"investment_transactions_synced"`
	LiabilitiesSynced            int      `json:"liabilities_synced"`
	RecurringStreamsSynced       int      `json:"recurring_streams_synced"`
	Errors                       []string `json:"errors"`
}

// SyncServicer defines the contract for the reconciliation pipeline.
type SyncServicer interface {
	Sync(ctx context.Context, linkID string) (*SyncReport, error)
}

// LinkSyncResult is the outcome of syncing one link during a sync-all run.
type LinkSyncResult struct {
	LinkID          string      `json:"link_id"`
	InstitutionName string      `json:"institution_name"`
	Success         bool        `json:"success"`
	Report          *SyncReport `json:"report,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// SyncAllReport aggregates per-link outcomes for a user's active links.
type SyncAllReport struct {
	LinksSynced int              `json:"links_synced"`
	LinksFailed int              `json:"links_failed"`
	Results     []LinkSyncResult `json:"results"`
}

// Webhook event categories and codes understood by the link service.
const (
	WebhookCategoryTransactions = "TRANSACTIONS"
	WebhookCategoryHoldings     = "HOLDINGS"
	WebhookCategoryLiabilities  = "LIABILITIES"
	WebhookCategoryItem         = "ITEM"

	WebhookCodeInitialUpdate     = "INITIAL_UPDATE"
	WebhookCodeHistoricalUpdate  = "HISTORICAL_UPDATE"
	WebhookCodeDefaultUpdate     = "DEFAULT_UPDATE"
	WebhookCodeError             = "ERROR"
	WebhookCodePendingExpiration = "PENDING_EXPIRATION"
)

// WebhookEvent is a notification pushed by the aggregator.
type WebhookEvent struct {
	Category       string `json:"webhook_type"`
	Code           string `json:"webhook_code"`
	ItemExternalID string `json:"item_id"`
	ErrorCode      string `json:"error_code,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// WebhookReceipt is the always-acknowledged webhook response. Internal
// failures are attached for diagnostics but never change the outcome.
type WebhookReceipt struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

// LinkServicer defines the contract for institution link lifecycle management.
type LinkServicer interface {
	CreateLink(userID, externalItemID, accessToken, institutionID, institutionName string) (*models.InstitutionLink, error)
	GetUserLinks(userID string) ([]models.InstitutionLink, error)
	GetLink(userID, linkID string) (*models.InstitutionLink, error)
	DeleteLink(ctx context.Context, userID, linkID string) error
	SyncAll(ctx context.Context, userID string) (*SyncAllReport, error)
	HandleWebhook(ctx context.Context, event WebhookEvent) *WebhookReceipt
	RefreshStaleLinks(ctx context.Context, maxAge time.Duration)
}

// NetWorthChange is the delta against a prior snapshot over one lookback window.
type NetWorthChange struct {
	Amount  decimal.Decimal `json:"amount"`
	Percent float64         `json:"percent"`
}

// NetWorthChanges groups the standard 1/7/30-day lookback windows.
type NetWorthChanges struct {
	Daily   NetWorthChange `json:"daily"`
	Weekly  NetWorthChange `json:"weekly"`
	Monthly NetWorthChange `json:"monthly"`
}

// AccountBreakdown is one account's contribution to the net worth breakdown.
type AccountBreakdown struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Type     models.AccountType `json:"type"`
	Subtype  string             `json:"subtype,omitempty"`
	Balance  decimal.Decimal    `json:"balance"`
	IsLiquid bool               `json:"is_liquid,omitempty"`
}

// NetWorthBreakdown is the current net worth report.
// Invariant: NetWorth == TotalAssets - TotalLiabilities.
type NetWorthBreakdown struct {
	NetWorth             decimal.Decimal    `json:"net_worth"`
	TotalAssets          decimal.Decimal    `json:"total_assets"`
	TotalLiabilities     decimal.Decimal    `json:"total_liabilities"`
	LiquidAssets         decimal.Decimal    `json:"liquid_assets"`
	InvestmentAssets     decimal.Decimal    `json:"investment_assets"`
	CreditCardDebt       decimal.Decimal    `json:"credit_card_debt"`
	LoanDebt             decimal.Decimal    `json:"loan_debt"`
	AssetsBreakdown      []AccountBreakdown `json:"assets_breakdown"`
	LiabilitiesBreakdown []AccountBreakdown `json:"liabilities_breakdown"`
	Changes              NetWorthChanges    `json:"changes"`
}

// NetWorthHistoryPoint is one snapshot in the net worth history series.
type NetWorthHistoryPoint struct {
	Date               string          `json:"date"`
	NetWorth           decimal.Decimal `json:"net_worth"`
	TotalAssets        decimal.Decimal `json:"total_assets"`
	TotalLiabilities   decimal.Decimal `json:"total_liabilities"`
	DailyChange        decimal.Decimal `json:"daily_change"`
	DailyChangePercent float64         `json:"daily_change_percent"`
}

// Net worth trend values.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// WealthMetrics holds derived financial health ratios.
type WealthMetrics struct {
	DebtToAssetRatio            float64 `json:"debt_to_asset_ratio"`
	LiquidityRatio              float64 `json:"liquidity_ratio"`
	InvestmentAllocationPercent float64 `json:"investment_allocation_percent"`
	LiquidMonths                float64 `json:"liquid_months"`
	NetWorthTrend               string  `json:"net_worth_trend"`
}

// NetWorthServicer defines the contract for net worth tracking.
type NetWorthServicer interface {
	CalculateCurrentNetWorth(userID string) (*NetWorthBreakdown, error)
	GetHistory(userID string, days int) ([]NetWorthHistoryPoint, error)
	CalculateWealthMetrics(userID string) (*WealthMetrics, error)
	SaveDailySnapshot(userID string) (*models.NetWorthSnapshot, error)
}

// CategoryAmount is a per-category total, used in descending-order rankings.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// DailyFlow is income/expense activity for a single day.
type DailyFlow struct {
	Date     string          `json:"date"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// Period describes the analyzed date range, inclusive of both endpoints.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// FlowAverages holds per-day averages over the analysis period.
type FlowAverages struct {
	DailyIncome   decimal.Decimal `json:"daily_income"`
	DailyExpenses decimal.Decimal `json:"daily_expenses"`
}

// CashFlowAnalysis is the cash flow report for one period.
// Invariant: TotalIncome - TotalExpenses == NetCashFlow.
type CashFlowAnalysis struct {
	Period             Period           `json:"period"`
	TotalIncome        decimal.Decimal  `json:"total_income"`
	TotalExpenses      decimal.Decimal  `json:"total_expenses"`
	NetCashFlow        decimal.Decimal  `json:"net_cash_flow"`
	SavingsRate        float64          `json:"savings_rate"`
	IncomeByCategory   []CategoryAmount `json:"income_by_category"`
	ExpensesByCategory []CategoryAmount `json:"expenses_by_category"`
	DailyData          []DailyFlow      `json:"daily_data"`
	Averages           FlowAverages     `json:"averages"`
}

// CategoryIncrease flags a category whose month-over-month spending rose
// beyond the alert threshold.
type CategoryIncrease struct {
	Category      string          `json:"category"`
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	ChangePercent float64         `json:"change_percent"`
}

// MonthOverMonth compares the current calendar month to the previous one.
type MonthOverMonth struct {
	ExpenseChangePercent float64 `json:"expense_change_percent"`
	IncomeChangePercent  float64 `json:"income_change_percent"`
}

// SpendingInsights is the monthly spending comparison report.
type SpendingInsights struct {
	TopSpendingCategories []CategoryAmount   `json:"top_spending_categories"`
	SpendingIncreases     []CategoryIncrease `json:"spending_increases"`
	MonthOverMonth        MonthOverMonth     `json:"month_over_month"`
	CurrentSavingsRate    float64            `json:"current_savings_rate"`
	Recommendations       []string           `json:"recommendations"`
}

// UpcomingTransaction is a projected occurrence of a recurring stream.
type UpcomingTransaction struct {
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	IsIncome     bool            `json:"is_income"`
	ExpectedDate string          `json:"expected_date"`
	Frequency    string          `json:"frequency"`
}

// CashFlowForecast projects recurring streams over a forward window.
type CashFlowForecast struct {
	ForecastPeriodDays   int                   `json:"forecast_period_days"`
	ExpectedIncome       decimal.Decimal       `json:"expected_income"`
	ExpectedExpenses     decimal.Decimal       `json:"expected_expenses"`
	ExpectedNet          decimal.Decimal       `json:"expected_net"`
	UpcomingTransactions []UpcomingTransaction `json:"upcoming_transactions"`
}

// CashFlowServicer defines the contract for cash flow analytics.
type CashFlowServicer interface {
	AnalyzeCashFlow(userID string, startDate, endDate *time.Time) (*CashFlowAnalysis, error)
	GetSpendingInsights(userID string) (*SpendingInsights, error)
	ForecastCashFlow(userID string, days int) (*CashFlowForecast, error)
}

// HoldingSummary is one position in the portfolio report, joined to its security.
type HoldingSummary struct {
	ID              string          `json:"id"`
	SecurityID      string          `json:"security_id"`
	Ticker          string          `json:"ticker,omitempty"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Sector          string          `json:"sector,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Value           decimal.Decimal `json:"value"`
	CostBasis       decimal.Decimal `json:"cost_basis"`
	GainLoss        decimal.Decimal `json:"gain_loss"`
	GainLossPercent float64         `json:"gain_loss_percent"`
}

// AllocationSlice is the portfolio share held in one security type.
type AllocationSlice struct {
	Value   decimal.Decimal `json:"value"`
	Percent float64         `json:"percent"`
}

// PortfolioSummary is the portfolio valuation report. An empty portfolio
// yields a zeroed summary with an empty holdings list, never an error.
type PortfolioSummary struct {
	TotalValue           decimal.Decimal            `json:"total_value"`
	TotalCostBasis       decimal.Decimal            `json:"total_cost_basis"`
	TotalGainLoss        decimal.Decimal            `json:"total_gain_loss"`
	TotalGainLossPercent float64                    `json:"total_gain_loss_percent"`
	Holdings             []HoldingSummary           `json:"holdings"`
	Allocation           map[string]AllocationSlice `json:"allocation"`
	HoldingsCount        int                        `json:"holdings_count"`
}

// Concentration risk levels.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
	RiskNone   = "N/A"
)

// PortfolioRisk is the diversification and concentration report.
type PortfolioRisk struct {
	DiversificationScore int                `json:"diversification_score"`
	ConcentrationRisk    string             `json:"concentration_risk"`
	TopHoldingPercent    float64            `json:"top_holding_percent"`
	HoldingsCount        int                `json:"num_holdings"`
	SectorsCount         int                `json:"num_sectors"`
	SectorDistribution   map[string]float64 `json:"sector_distribution"`
	Recommendations      []string           `json:"recommendations"`
}

// MonthlyDividend is dividend income received in one calendar month.
type MonthlyDividend struct {
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
}

// DividendIncome summarizes dividend and interest income over a window.
type DividendIncome struct {
	TotalDividendIncome decimal.Decimal   `json:"total_dividend_income"`
	AverageMonthly      decimal.Decimal   `json:"average_monthly"`
	DividendCount       int               `json:"dividend_count"`
	MonthlyBreakdown    []MonthlyDividend `json:"monthly_breakdown"`
}

// InvestmentActivity is one investment transaction in the activity report.
type InvestmentActivity struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
	Subtype  string          `json:"subtype,omitempty"`
	Name     string          `json:"name"`
	Ticker   string          `json:"ticker,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PortfolioServicer defines the contract for portfolio analytics.
type PortfolioServicer interface {
	GetPortfolioSummary(userID string) (*PortfolioSummary, error)
	AnalyzePortfolioRisk(userID string) (*PortfolioRisk, error)
	GetDividendIncome(userID string, days int) (*DividendIncome, error)
	GetInvestmentTransactions(userID string, days int) ([]InvestmentActivity, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	CashFlowType *models.CashFlowType
	Category     *string
	AccountID    *string
	Pending      *bool
}

// TransactionServicer defines the contract for reading synced transactions.
type TransactionServicer interface {
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
