package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"moneta/internal/aggregator"
	"moneta/internal/errors"
	"moneta/internal/logger"
	"moneta/internal/models"
)

// transactionWindowDays is the trailing window fetched on every sync. The
// aggregator keeps longer history, but reconciliation only refreshes recent
// activity; older rows stay as previously synced.
const transactionWindowDays = 90

// syncService implements the reconciliation pipeline. Each run pulls the
// upstream state for one institution link and upserts it into local storage,
// keyed by external ids so that repeated runs converge on the same rows.
type syncService struct {
	db     *gorm.DB
	client aggregator.Client
}

// NewSyncService creates a new sync service.
func NewSyncService(db *gorm.DB, client aggregator.Client) SyncServicer {
	return &syncService{db: db, client: client}
}

// Sync reconciles all data categories for one institution link. Category
// failures are isolated: a failing category is recorded in the report and
// the remaining categories still run. Only an unknown link aborts the run.
func (s *syncService) Sync(ctx context.Context, linkID string) (*SyncReport, error) {
	log := logger.Get()

	var link models.InstitutionLink
	if err := s.db.First(&link, "id = ?", linkID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrLinkNotFound
		}
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	report := &SyncReport{LinkID: link.ID, Errors: []string{}}

	phases := []struct {
		name string
		run  func(context.Context, *models.InstitutionLink, *SyncReport) error
	}{
		{"accounts", s.syncAccounts},
		{"transactions", s.syncTransactions},
		{"investments", s.syncInvestments},
		{"liabilities", s.syncLiabilities},
		{"recurring streams", s.syncRecurringStreams},
	}

	for _, phase := range phases {
		if err := phase.run(ctx, &link, report); err != nil {
			log.Warnw("sync phase failed",
				"link_id", link.ID, "phase", phase.name, "error", err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s sync error: %v", phase.name, err))
		}
	}

	// The timestamp records the attempt, not success; partial runs count.
	now := time.Now().UTC()
	updates := map[string]interface{}{"last_synced_at": now}
	if len(report.Errors) == 0 && link.Status == models.LinkStatusError {
		updates["status"] = models.LinkStatusActive
		updates["error_code"] = ""
		updates["error_message"] = ""
	}
	if err := s.db.Model(&models.InstitutionLink{}).Where("id = ?", link.ID).Updates(updates).Error; err != nil {
		log.Errorw("failed to update link sync timestamp", "link_id", link.ID, "error", err)
	}

	log.Infow("sync completed",
		"link_id", link.ID,
		"accounts", report.AccountsSynced,
		"transactions", report.TransactionsSynced,
		"holdings", report.HoldingsSynced,
		"liabilities", report.LiabilitiesSynced,
		"errors", len(report.Errors))
	return report, nil
}

// syncAccounts upserts accounts and writes today's balance snapshots.
func (s *syncService) syncAccounts(ctx context.Context, link *models.InstitutionLink, report *SyncReport) error {
	records, err := s.client.GetAccounts(ctx, link.AccessToken)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	today := models.DateOnly(now)

	for _, rec := range records {
		if rec.AccountID == "" {
			report.Errors = append(report.Errors, "accounts sync error: record missing account_id")
			continue
		}

		acctType := models.AccountType(rec.Type.String())
		if !models.KnownAccountType(rec.Type.String()) {
			acctType = models.AccountTypeOther
		}

		account := models.Account{
			InstitutionLinkID: link.ID,
			UserID:            link.UserID,
			ExternalID:        rec.AccountID,
			Name:              rec.Name,
			OfficialName:      rec.OfficialName,
			Mask:              rec.Mask,
			Type:              acctType,
			Subtype:           rec.Subtype.String(),
			BalanceAvailable:  nullDecimal(rec.Balances.Available),
			BalanceCurrent:    decimalOrZero(rec.Balances.Current),
			BalanceLimit:      nullDecimal(rec.Balances.Limit),
			Currency:          currencyOrUSD(rec.Balances.CurrencyCode),
			IsAsset:           models.IsAssetType(acctType),
			IsLiquid:          acctType == models.AccountTypeDepository,
			IncludeInNetWorth: true,
			IsActive:          true,
			LastBalanceUpdate: &now,
		}

		// User-editable classification fields are set on first insert only;
		// the update list below leaves them untouched on resync.
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "official_name", "mask", "type", "subtype",
				"balance_available", "balance_current", "balance_limit",
				"currency", "last_balance_update", "updated_at",
			}),
		}).Create(&account).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("accounts sync error: upsert %s: %v", rec.AccountID, err))
			continue
		}

		// Re-read for the canonical row id; on conflict the in-memory id is
		// the losing insert's, not the stored row's.
		var stored models.Account
		if err := s.db.First(&stored, "external_id = ?", rec.AccountID).Error; err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("accounts sync error: reload %s: %v", rec.AccountID, err))
			continue
		}

		snapshot := models.BalanceSnapshot{
			AccountID:        stored.ID,
			UserID:           link.UserID,
			SnapshotDate:     today,
			BalanceAvailable: account.BalanceAvailable,
			BalanceCurrent:   account.BalanceCurrent,
			BalanceLimit:     account.BalanceLimit,
		}
		err = s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"balance_available", "balance_current", "balance_limit",
			}),
		}).Create(&snapshot).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("accounts sync error: snapshot %s: %v", rec.AccountID, err))
			continue
		}

		report.AccountsSynced++
	}
	return nil
}

// syncTransactions upserts transactions from the trailing window, classifying
// cash flow from the upstream sign and category.
func (s *syncService) syncTransactions(ctx context.Context, link *models.InstitutionLink, report *SyncReport) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -transactionWindowDays)

	records, err := s.client.GetTransactions(ctx, link.AccessToken, start, end)
	if err != nil {
		return err
	}

	accounts, err := s.accountIndex(link.ID)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.TransactionID == "" {
			report.Errors = append(report.Errors, "transactions sync error: record missing transaction_id")
			continue
		}
		account, ok := accounts[rec.AccountID]
		if !ok {
			// Accounts can lag the upstream feed; the record shows up again
			// on the next run.
			logger.Get().Debugw("skipping transaction for unknown account",
				"link_id", link.ID, "external_account_id", rec.AccountID)
			continue
		}
		date, err := parseDate(rec.Date)
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("transactions sync error: %s: bad date %q", rec.TransactionID, rec.Date))
			continue
		}

		primary := models.CategoryUncategorized
		detailed := ""
		if rec.Category != nil && rec.Category.Primary.String() != "" {
			primary = rec.Category.Primary.String()
			detailed = rec.Category.Detailed.String()
		}

		txn := models.Transaction{
			AccountID:        account.ID,
			UserID:           link.UserID,
			ExternalID:       rec.TransactionID,
			Amount:           rec.Amount,
			Currency:         currencyOrUSD(rec.CurrencyCode),
			Date:             date,
			AuthorizedDate:   parseDatePtr(rec.AuthorizedDate),
			Name:             rec.Name,
			MerchantName:     rec.MerchantName,
			CategoryPrimary:  primary,
			CategoryDetailed: detailed,
			CashFlowType:     models.ClassifyCashFlow(rec.Amount, primary),
			Pending:          rec.Pending,
		}
		if rec.Location != nil {
			txn.LocationCity = rec.Location.City
			txn.LocationRegion = rec.Location.Region
			txn.LocationCountry = rec.Location.Country
		}

		// custom_category is user-editable and excluded from the update list.
		err = s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"amount", "currency", "date", "authorized_date", "name",
				"merchant_name", "category_primary", "category_detailed",
				"cash_flow_type", "pending",
				"location_city", "location_region", "location_country",
				"updated_at",
			}),
		}).Create(&txn).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("transactions sync error: upsert %s: %v", rec.TransactionID, err))
			continue
		}
		report.TransactionsSynced++
	}
	return nil
}

// syncInvestments upserts securities, holdings, and investment transactions.
// Securities are shared master data; holdings converge on one row per
// (account, security) pair.
func (s *syncService) syncInvestments(ctx context.Context, link *models.InstitutionLink, report *SyncReport) error {
	holdings, err := s.client.GetHoldings(ctx, link.AccessToken)
	if err != nil {
		return err
	}

	accounts, err := s.accountIndex(link.ID)
	if err != nil {
		return err
	}

	securityIDs := make(map[string]string) // external id -> row id
	for _, rec := range holdings.Securities {
		if rec.SecurityID == "" {
			report.Errors = append(report.Errors, "investments sync error: security record missing security_id")
			continue
		}

		secType := rec.Type.String()
		if !models.KnownSecurityType(secType) {
			secType = models.SecurityTypeOther
		}
		security := models.Security{
			ExternalID:       rec.SecurityID,
			TickerSymbol:     rec.TickerSymbol,
			CUSIP:            rec.CUSIP,
			ISIN:             rec.ISIN,
			Name:             rec.Name,
			Type:             secType,
			ClosePrice:       nullDecimal(rec.ClosePrice),
			ClosePriceAsOf:   parseDatePtr(rec.ClosePriceAsOf),
			Currency:         currencyOrUSD(rec.CurrencyCode),
			IsCashEquivalent: rec.IsCashEquivalent,
			Sector:           rec.Sector,
			Industry:         rec.Industry,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"ticker_symbol", "cusip", "isin", "name", "type",
				"close_price", "close_price_as_of", "currency",
				"is_cash_equivalent", "sector", "industry", "updated_at",
			}),
		}).Create(&security).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("investments sync error: security %s: %v", rec.SecurityID, err))
			continue
		}
		var stored models.Security
		if err := s.db.First(&stored, "external_id = ?", rec.SecurityID).Error; err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("investments sync error: reload security %s: %v", rec.SecurityID, err))
			continue
		}
		securityIDs[rec.SecurityID] = stored.ID
		report.SecuritiesSynced++
	}

	now := time.Now().UTC()
	for _, rec := range holdings.Holdings {
		account, ok := accounts[rec.AccountID]
		if !ok {
			logger.Get().Debugw("skipping holding for unknown account",
				"link_id", link.ID, "external_account_id", rec.AccountID)
			continue
		}
		securityID, ok := securityIDs[rec.SecurityID]
		if !ok {
			// The security may predate this run; fall back to storage.
			var stored models.Security
			if err := s.db.First(&stored, "external_id = ?", rec.SecurityID).Error; err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("investments sync error: holding references unknown security %s", rec.SecurityID))
				continue
			}
			securityID = stored.ID
			securityIDs[rec.SecurityID] = stored.ID
		}

		holding := models.Holding{
			AccountID:        account.ID,
			UserID:           link.UserID,
			SecurityID:       securityID,
			Quantity:         rec.Quantity,
			CostBasis:        nullDecimal(rec.CostBasis),
			InstitutionPrice: rec.InstitutionPrice,
			InstitutionValue: rec.InstitutionValue,
			Currency:         currencyOrUSD(rec.CurrencyCode),
			LastUpdated:      &now,
		}
		if rec.CostBasis != nil && rec.CostBasis.IsPositive() {
			gain := rec.InstitutionValue.Sub(*rec.CostBasis)
			pct := gain.Div(*rec.CostBasis).Mul(decimal.NewFromInt(100)).Round(4)
			holding.UnrealizedGainLoss = decimal.NewNullDecimal(gain)
			holding.UnrealizedGainLossPercent = decimal.NewNullDecimal(pct)
		}

		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}, {Name: "security_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"quantity", "cost_basis", "institution_price", "institution_value",
				"currency", "unrealized_gain_loss", "unrealized_gain_loss_percent",
				"last_updated", "updated_at",
			}),
		}).Create(&holding).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("investments sync error: holding %s/%s: %v", rec.AccountID, rec.SecurityID, err))
			continue
		}
		report.HoldingsSynced++
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -transactionWindowDays)
	invTxns, err := s.client.GetInvestmentTransactions(ctx, link.AccessToken, start, end)
	if err != nil {
		return err
	}

	for _, rec := range invTxns {
		if rec.InvestmentTransactionID == "" {
			report.Errors = append(report.Errors, "investments sync error: transaction record missing id")
			continue
		}
		account, ok := accounts[rec.AccountID]
		if !ok {
			logger.Get().Debugw("skipping investment transaction for unknown account",
				"link_id", link.ID, "external_account_id", rec.AccountID)
			continue
		}
		date, err := parseDate(rec.Date)
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("investments sync error: %s: bad date %q", rec.InvestmentTransactionID, rec.Date))
			continue
		}

		var securityID *string
		if rec.SecurityID != "" {
			if id, ok := securityIDs[rec.SecurityID]; ok {
				securityID = &id
			} else {
				var stored models.Security
				if err := s.db.First(&stored, "external_id = ?", rec.SecurityID).Error; err == nil {
					id := stored.ID
					securityID = &id
					securityIDs[rec.SecurityID] = stored.ID
				}
			}
		}

		invTxn := models.InvestmentTransaction{
			AccountID:  account.ID,
			UserID:     link.UserID,
			SecurityID: securityID,
			ExternalID: rec.InvestmentTransactionID,
			Date:       date,
			Name:       rec.Name,
			Type:       rec.Type.String(),
			Subtype:    rec.Subtype.String(),
			Amount:     rec.Amount,
			Price:      nullDecimal(rec.Price),
			Quantity:   rec.Quantity,
			Fees:       nullDecimal(rec.Fees),
			Currency:   currencyOrUSD(rec.CurrencyCode),
		}
		err = s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"security_id", "date", "name", "type", "subtype",
				"amount", "price", "quantity", "fees", "currency", "updated_at",
			}),
		}).Create(&invTxn).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("investments sync error: upsert %s: %v", rec.InvestmentTransactionID, err))
			continue
		}
		report.InvestmentTransactionsSynced++
	}
	return nil
}

// syncLiabilities upserts type-specific debt detail, one row per account.
func (s *syncService) syncLiabilities(ctx context.Context, link *models.InstitutionLink, report *SyncReport) error {
	resp, err := s.client.GetLiabilities(ctx, link.AccessToken)
	if err != nil {
		return err
	}

	accounts, err := s.accountIndex(link.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	upsert := func(liability *models.Liability, externalAccountID string) {
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"type", "is_overdue", "last_payment_amount", "last_payment_date",
				"last_statement_balance", "minimum_payment_amount", "next_payment_due_date",
				"interest_rate_percentage", "interest_rate_type",
				"origination_date", "origination_principal_amount",
				"last_updated", "updated_at",
			}),
		}).Create(liability).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("liabilities sync error: upsert %s: %v", externalAccountID, err))
			return
		}
		report.LiabilitiesSynced++
	}

	for _, rec := range resp.Credit {
		account, ok := accounts[rec.AccountID]
		if !ok {
			logger.Get().Debugw("skipping liability for unknown account",
				"link_id", link.ID, "external_account_id", rec.AccountID)
			continue
		}
		upsert(&models.Liability{
			AccountID:            account.ID,
			UserID:               link.UserID,
			Type:                 models.LiabilityTypeCredit,
			IsOverdue:            rec.IsOverdue,
			LastPaymentAmount:    nullDecimal(rec.LastPaymentAmount),
			LastPaymentDate:      parseDatePtr(rec.LastPaymentDate),
			LastStatementBalance: nullDecimal(rec.LastStatementBalance),
			MinimumPaymentAmount: nullDecimal(rec.MinimumPaymentAmount),
			NextPaymentDueDate:   parseDatePtr(rec.NextPaymentDueDate),
			LastUpdated:          &now,
		}, rec.AccountID)
	}

	loans := []struct {
		records []aggregator.LoanLiabilityRecord
		typ     models.LiabilityType
	}{
		{resp.Student, models.LiabilityTypeStudent},
		{resp.Mortgage, models.LiabilityTypeMortgage},
	}
	for _, group := range loans {
		for _, rec := range group.records {
			account, ok := accounts[rec.AccountID]
			if !ok {
				logger.Get().Debugw("skipping liability for unknown account",
					"link_id", link.ID, "external_account_id", rec.AccountID)
				continue
			}
			upsert(&models.Liability{
				AccountID:                  account.ID,
				UserID:                     link.UserID,
				Type:                       group.typ,
				InterestRatePercentage:     nullDecimal(rec.InterestRatePercentage),
				InterestRateType:           rec.InterestRateType.String(),
				OriginationDate:            parseDatePtr(rec.OriginationDate),
				OriginationPrincipalAmount: nullDecimal(rec.OriginationPrincipalAmount),
				LastUpdated:                &now,
			}, rec.AccountID)
		}
	}
	return nil
}

// syncRecurringStreams upserts detected recurring transaction streams.
func (s *syncService) syncRecurringStreams(ctx context.Context, link *models.InstitutionLink, report *SyncReport) error {
	records, err := s.client.GetRecurringStreams(ctx, link.AccessToken)
	if err != nil {
		return err
	}

	accounts, err := s.accountIndex(link.ID)
	if err != nil {
		return err
	}

	for _, rec := range records {
		if rec.StreamID == "" {
			report.Errors = append(report.Errors, "recurring streams sync error: record missing stream_id")
			continue
		}
		account, ok := accounts[rec.AccountID]
		if !ok {
			logger.Get().Debugw("skipping recurring stream for unknown account",
				"link_id", link.ID, "external_account_id", rec.AccountID)
			continue
		}

		freq := models.Frequency(rec.Frequency.String())
		if !models.KnownFrequency(rec.Frequency.String()) {
			freq = models.FrequencyUnknown
		}

		stream := models.RecurringStream{
			UserID:           link.UserID,
			AccountID:        account.ID,
			ExternalID:       rec.StreamID,
			Description:      rec.Description,
			MerchantName:     rec.MerchantName,
			Frequency:        freq,
			AverageAmount:    decimalOrZero(rec.AverageAmount),
			LastAmount:       nullDecimal(rec.LastAmount),
			IsIncome:         rec.IsIncome,
			Category:         rec.Category.String(),
			IsActive:         rec.IsActive,
			FirstDate:        parseDatePtr(rec.FirstDate),
			LastDate:         parseDatePtr(rec.LastDate),
			NextExpectedDate: parseDatePtr(rec.NextExpectedDate),
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "merchant_name", "frequency",
				"average_amount", "last_amount", "is_income", "category",
				"is_active", "first_date", "last_date", "next_expected_date",
				"updated_at",
			}),
		}).Create(&stream).Error
		if err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("recurring streams sync error: upsert %s: %v", rec.StreamID, err))
			continue
		}
		report.RecurringStreamsSynced++
	}
	return nil
}

// accountIndex loads the link's accounts keyed by external account id.
func (s *syncService) accountIndex(linkID string) (map[string]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("institution_link_id = ?", linkID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	index := make(map[string]models.Account, len(accounts))
	for _, a := range accounts {
		index[a.ExternalID] = a
	}
	return index, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func currencyOrUSD(code string) string {
	if code == "" {
		return "USD"
	}
	return code
}
