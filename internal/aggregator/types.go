package aggregator

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Enum coerces the aggregator's enum-like fields to plain strings. Depending
// on endpoint version the upstream serializes these either as bare strings
// or as tagged objects {"value": "..."}; both decode to the plain value.
type Enum string

// UnmarshalJSON implements json.Unmarshaler.
func (e *Enum) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Enum(s)
		return nil
	}
	if string(data) == "null" {
		*e = ""
		return nil
	}
	var tagged struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &tagged); err == nil {
		*e = Enum(tagged.Value)
		return nil
	}
	return fmt.Errorf("aggregator: cannot decode enum value %s", string(data))
}

// String returns the plain string value.
func (e Enum) String() string { return string(e) }

// Balances carries an account's balance block. Missing fields stay nil and
// are resolved to zero or null downstream, per field.
type Balances struct {
	Available    *decimal.Decimal `json:"available"`
	Current      *decimal.Decimal `json:"current"`
	Limit        *decimal.Decimal `json:"limit"`
	CurrencyCode string           `json:"iso_currency_code"`
}

// AccountRecord is a raw account as returned by the aggregator.
type AccountRecord struct {
	AccountID    string   `json:"account_id"`
	Name         string   `json:"name"`
	OfficialName string   `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         Enum     `json:"type"`
	Subtype      Enum     `json:"subtype"`
	Balances     Balances `json:"balances"`
}

// CategoryRecord is the two-level category block on a transaction.
type CategoryRecord struct {
	Primary  Enum `json:"primary"`
	Detailed Enum `json:"detailed"`
}

// LocationRecord is the optional merchant location block on a transaction.
type LocationRecord struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

// TransactionRecord is a raw transaction as returned by the aggregator.
// Amount keeps the upstream sign convention: negative = inflow.
type TransactionRecord struct {
	TransactionID  string           `json:"transaction_id"`
	AccountID      string           `json:"account_id"`
	Amount         decimal.Decimal  `json:"amount"`
	CurrencyCode   string           `json:"iso_currency_code"`
	Date           string           `json:"date"` // YYYY-MM-DD
	AuthorizedDate string           `json:"authorized_date"`
	Name           string           `json:"name"`
	MerchantName   string           `json:"merchant_name"`
	Category       *CategoryRecord  `json:"personal_finance_category"`
	Pending        bool             `json:"pending"`
	Location       *LocationRecord  `json:"location"`
}

// SecurityRecord is raw security master data.
type SecurityRecord struct {
	SecurityID       string           `json:"security_id"`
	TickerSymbol     string           `json:"ticker_symbol"`
	CUSIP            string           `json:"cusip"`
	ISIN             string           `json:"isin"`
	Name             string           `json:"name"`
	Type             Enum             `json:"type"`
	ClosePrice       *decimal.Decimal `json:"close_price"`
	ClosePriceAsOf   string           `json:"close_price_as_of"`
	CurrencyCode     string           `json:"iso_currency_code"`
	IsCashEquivalent bool             `json:"is_cash_equivalent"`
	Sector           string           `json:"sector"`
	Industry         string           `json:"industry"`
}

// HoldingRecord is a raw position of one security in one account.
type HoldingRecord struct {
	AccountID        string           `json:"account_id"`
	SecurityID       string           `json:"security_id"`
	Quantity         decimal.Decimal  `json:"quantity"`
	CostBasis        *decimal.Decimal `json:"cost_basis"`
	InstitutionPrice decimal.Decimal  `json:"institution_price"`
	InstitutionValue decimal.Decimal  `json:"institution_value"`
	CurrencyCode     string           `json:"iso_currency_code"`
}

// HoldingsResponse bundles securities with the holdings that reference them.
type HoldingsResponse struct {
	Securities []SecurityRecord `json:"securities"`
	Holdings   []HoldingRecord  `json:"holdings"`
}

// InvestmentTransactionRecord is a raw buy/sell/dividend/fee event.
type InvestmentTransactionRecord struct {
	InvestmentTransactionID string           `json:"investment_transaction_id"`
	AccountID               string           `json:"account_id"`
	SecurityID              string           `json:"security_id"`
	Date                    string           `json:"date"`
	Name                    string           `json:"name"`
	Type                    Enum             `json:"type"`
	Subtype                 Enum             `json:"subtype"`
	Amount                  decimal.Decimal  `json:"amount"`
	Price                   *decimal.Decimal `json:"price"`
	Quantity                decimal.Decimal  `json:"quantity"`
	Fees                    *decimal.Decimal `json:"fees"`
	CurrencyCode            string           `json:"iso_currency_code"`
}

// CreditLiabilityRecord is raw credit card debt detail.
type CreditLiabilityRecord struct {
	AccountID            string           `json:"account_id"`
	IsOverdue            *bool            `json:"is_overdue"`
	LastPaymentAmount    *decimal.Decimal `json:"last_payment_amount"`
	LastPaymentDate      string           `json:"last_payment_date"`
	LastStatementBalance *decimal.Decimal `json:"last_statement_balance"`
	MinimumPaymentAmount *decimal.Decimal `json:"minimum_payment_amount"`
	NextPaymentDueDate   string           `json:"next_payment_due_date"`
}

// LoanLiabilityRecord is raw student loan or mortgage detail.
type LoanLiabilityRecord struct {
	AccountID                  string           `json:"account_id"`
	InterestRatePercentage     *decimal.Decimal `json:"interest_rate_percentage"`
	InterestRateType           Enum             `json:"interest_rate_type"`
	OriginationDate            string           `json:"origination_date"`
	OriginationPrincipalAmount *decimal.Decimal `json:"origination_principal_amount"`
}

// LiabilitiesResponse groups liability records by type.
type LiabilitiesResponse struct {
	Credit   []CreditLiabilityRecord `json:"credit"`
	Student  []LoanLiabilityRecord   `json:"student"`
	Mortgage []LoanLiabilityRecord   `json:"mortgage"`
}

// RecurringStreamRecord is a raw detected recurring transaction stream.
type RecurringStreamRecord struct {
	StreamID         string           `json:"stream_id"`
	AccountID        string           `json:"account_id"`
	Description      string           `json:"description"`
	MerchantName     string           `json:"merchant_name"`
	Frequency        Enum             `json:"frequency"`
	AverageAmount    *decimal.Decimal `json:"average_amount"`
	LastAmount       *decimal.Decimal `json:"last_amount"`
	IsIncome         bool             `json:"is_income"`
	Category         Enum             `json:"category"`
	IsActive         bool             `json:"is_active"`
	FirstDate        string           `json:"first_date"`
	LastDate         string           `json:"last_date"`
	NextExpectedDate string           `json:"next_expected_date"`
}
