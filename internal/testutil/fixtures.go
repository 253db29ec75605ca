package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"moneta/internal/models"
)

var fixtureCounter int64

func nextID() int64 { return atomic.AddInt64(&fixtureCounter, 1) }

// CreateTestUser inserts a user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:     fmt.Sprintf("user%d@example.com", nextID()),
		Password:  "$2a$10$abcdefghijklmnopqrstuv", // not a real hash; auth tests hash their own
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}

// CreateTestLink inserts an active institution link for the user.
func CreateTestLink(t *testing.T, db *gorm.DB, userID string) *models.InstitutionLink {
	t.Helper()
	link := &models.InstitutionLink{
		UserID:          userID,
		ExternalItemID:  fmt.Sprintf("item-%d", nextID()),
		AccessToken:     fmt.Sprintf("access-token-%d", nextID()),
		InstitutionID:   "ins_1",
		InstitutionName: "Test Bank",
		Status:          models.LinkStatusActive,
	}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("creating test link: %v", err)
	}
	return link
}

// CreateTestAccount inserts an account. Overrides mutate the account before insert.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID, linkID string, overrides ...func(*models.Account)) *models.Account {
	t.Helper()
	acctType := models.AccountTypeDepository
	account := &models.Account{
		InstitutionLinkID: linkID,
		UserID:            userID,
		ExternalID:        fmt.Sprintf("acct-%d", nextID()),
		Name:              "Test Checking",
		Type:              acctType,
		Subtype:           "checking",
		BalanceCurrent:    decimal.NewFromInt(1000),
		Currency:          "USD",
		IsAsset:           true,
		IsLiquid:          true,
		IncludeInNetWorth: true,
		IsActive:          true,
	}
	for _, o := range overrides {
		o(account)
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("creating test account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a transaction with cash flow classified from
// the amount and category, matching what the pipeline would store.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, overrides ...func(*models.Transaction)) *models.Transaction {
	t.Helper()
	txn := &models.Transaction{
		AccountID:       accountID,
		UserID:          userID,
		ExternalID:      fmt.Sprintf("txn-%d", nextID()),
		Amount:          decimal.NewFromInt(25),
		Currency:        "USD",
		Date:            models.DateOnly(time.Now().UTC()),
		Name:            "Coffee Shop",
		CategoryPrimary: "FOOD_AND_DRINK",
	}
	for _, o := range overrides {
		o(txn)
	}
	txn.CashFlowType = models.ClassifyCashFlow(txn.Amount, txn.CategoryPrimary)
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("creating test transaction: %v", err)
	}
	return txn
}

// CreateTestSecurity inserts a security with a unique external id.
func CreateTestSecurity(t *testing.T, db *gorm.DB, overrides ...func(*models.Security)) *models.Security {
	t.Helper()
	n := nextID()
	sec := &models.Security{
		ExternalID:   fmt.Sprintf("sec-%d", n),
		TickerSymbol: fmt.Sprintf("TST%d", n),
		Name:         fmt.Sprintf("Test Security %d", n),
		Type:         models.SecurityTypeEquity,
		ClosePrice:   decimal.NewNullDecimal(decimal.NewFromInt(100)),
		Currency:     "USD",
		Sector:       "Technology",
	}
	for _, o := range overrides {
		o(sec)
	}
	if err := db.Create(sec).Error; err != nil {
		t.Fatalf("creating test security: %v", err)
	}
	return sec
}

// CreateTestHolding inserts a holding for the given account and security.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID, accountID, securityID string, overrides ...func(*models.Holding)) *models.Holding {
	t.Helper()
	holding := &models.Holding{
		AccountID:        accountID,
		UserID:           userID,
		SecurityID:       securityID,
		Quantity:         decimal.NewFromInt(10),
		CostBasis:        decimal.NewNullDecimal(decimal.NewFromInt(900)),
		InstitutionPrice: decimal.NewFromInt(100),
		InstitutionValue: decimal.NewFromInt(1000),
		Currency:         "USD",
	}
	for _, o := range overrides {
		o(holding)
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("creating test holding: %v", err)
	}
	return holding
}

// CreateTestInvestmentTransaction inserts an investment transaction.
func CreateTestInvestmentTransaction(t *testing.T, db *gorm.DB, userID, accountID string, overrides ...func(*models.InvestmentTransaction)) *models.InvestmentTransaction {
	t.Helper()
	txn := &models.InvestmentTransaction{
		AccountID:  accountID,
		UserID:     userID,
		ExternalID: fmt.Sprintf("inv-txn-%d", nextID()),
		Date:       models.DateOnly(time.Now().UTC()),
		Name:       "Buy Test Security",
		Type:       "buy",
		Amount:     decimal.NewFromInt(500),
		Quantity:   decimal.NewFromInt(5),
		Currency:   "USD",
	}
	for _, o := range overrides {
		o(txn)
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("creating test investment transaction: %v", err)
	}
	return txn
}

// CreateTestNetWorthSnapshot inserts a net worth snapshot for the given date.
func CreateTestNetWorthSnapshot(t *testing.T, db *gorm.DB, userID string, date time.Time, netWorth decimal.Decimal, overrides ...func(*models.NetWorthSnapshot)) *models.NetWorthSnapshot {
	t.Helper()
	snap := &models.NetWorthSnapshot{
		UserID:       userID,
		SnapshotDate: models.DateOnly(date),
		TotalAssets:  netWorth,
		NetWorth:     netWorth,
	}
	for _, o := range overrides {
		o(snap)
	}
	if err := db.Create(snap).Error; err != nil {
		t.Fatalf("creating test net worth snapshot: %v", err)
	}
	return snap
}

// CreateTestRecurringStream inserts a recurring stream.
func CreateTestRecurringStream(t *testing.T, db *gorm.DB, userID, accountID string, overrides ...func(*models.RecurringStream)) *models.RecurringStream {
	t.Helper()
	next := models.DateOnly(time.Now().UTC().AddDate(0, 0, 7))
	stream := &models.RecurringStream{
		UserID:        userID,
		AccountID:     accountID,
		ExternalID:    fmt.Sprintf("stream-%d", nextID()),
		Description:   "Monthly Subscription",
		Frequency:     models.FrequencyMonthly,
		AverageAmount: decimal.NewFromInt(15),
		IsActive:      true,
		NextExpectedDate: &next,
	}
	for _, o := range overrides {
		o(stream)
	}
	if err := db.Create(stream).Error; err != nil {
		t.Fatalf("creating test recurring stream: %v", err)
	}
	return stream
}
