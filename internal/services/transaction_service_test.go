package services

import (
	"testing"
	"time"

	"moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/testutil"
)

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID)
	svc := NewTransactionService(db)

	now := time.Now().UTC()
	for i := 0; i < 25; i++ {
		offset := i
		testutil.CreateTestTransaction(t, db, user.ID, account.ID, func(txn *models.Transaction) {
			txn.Date = models.DateOnly(now.AddDate(0, 0, -offset))
		})
	}
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, func(txn *models.Transaction) {
		txn.Amount = dec("-2000.00")
		txn.CategoryPrimary = "INCOME"
		txn.Date = models.DateOnly(now)
	})

	t.Run("paginates newest first", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{Page: 1, PageSize: 10}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 26 {
			t.Errorf("expected 26 total, got %d", page.TotalItems)
		}
		if page.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", page.TotalPages)
		}
		if len(page.Data) != 10 {
			t.Fatalf("expected 10 rows, got %d", len(page.Data))
		}
		for i := 1; i < len(page.Data); i++ {
			if page.Data[i-1].Date.Before(page.Data[i].Date) {
				t.Fatal("expected newest-first ordering")
			}
		}
	})

	t.Run("filters by cash flow type", func(t *testing.T) {
		income := models.CashFlowIncome
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{CashFlowType: &income})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 income transaction, got %d", page.TotalItems)
		}
	})

	t.Run("filters by date range", func(t *testing.T) {
		from := now.AddDate(0, 0, -5)
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{PageSize: 100}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 7 {
			t.Errorf("expected 7 transactions in the window, got %d", page.TotalItems)
		}
	})
}

func TestGetAccountTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	mine := testutil.CreateTestAccount(t, db, user.ID, link.ID)
	testutil.CreateTestTransaction(t, db, user.ID, mine.ID)

	other := testutil.CreateTestUser(t, db)
	otherLink := testutil.CreateTestLink(t, db, other.ID)
	theirs := testutil.CreateTestAccount(t, db, other.ID, otherLink.ID)

	svc := NewTransactionService(db)

	t.Run("lists own account", func(t *testing.T) {
		page, err := svc.GetAccountTransactions(user.ID, mine.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 transaction, got %d", page.TotalItems)
		}
	})

	t.Run("cannot read another user's account", func(t *testing.T) {
		_, err := svc.GetAccountTransactions(user.ID, theirs.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertAppError(t, err, errors.ErrAccountNotFound)
	})
}
