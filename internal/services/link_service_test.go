package services

import (
	"context"
	"testing"

	"moneta/internal/aggregator"
	"moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/testutil"
)

func TestLinkLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	fake := &fakeAggregator{}
	svc := NewLinkService(db, fake, NewSyncService(db, fake))

	t.Run("create and fetch", func(t *testing.T) {
		link, err := svc.CreateLink(user.ID, "item-abc", "token-abc", "ins_1", "First Bank")
		testutil.AssertNoError(t, err)
		if link.Status != models.LinkStatusActive {
			t.Errorf("expected active status, got %s", link.Status)
		}

		fetched, err := svc.GetLink(user.ID, link.ID)
		testutil.AssertNoError(t, err)
		if fetched.InstitutionName != "First Bank" {
			t.Errorf("expected First Bank, got %s", fetched.InstitutionName)
		}
	})

	t.Run("duplicate item conflicts", func(t *testing.T) {
		_, err := svc.CreateLink(user.ID, "item-abc", "token-other", "ins_1", "First Bank")
		testutil.AssertAppError(t, err, errors.ErrConflict)
	})

	t.Run("other users cannot fetch the link", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		links, err := svc.GetUserLinks(user.ID)
		testutil.AssertNoError(t, err)
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}

		_, err = svc.GetLink(other.ID, links[0].ID)
		testutil.AssertAppError(t, err, errors.ErrLinkNotFound)
	})
}

func TestDeleteLink(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)
	account := testutil.CreateTestAccount(t, db, user.ID, link.ID)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID)

	fake := &fakeAggregator{}
	svc := NewLinkService(db, fake, NewSyncService(db, fake))

	testutil.AssertNoError(t, svc.DeleteLink(context.Background(), user.ID, link.ID))

	if !fake.removed {
		t.Error("expected upstream item removal")
	}
	var count int64
	testutil.AssertNoError(t, db.Model(&models.InstitutionLink{}).Where("id = ?", link.ID).Count(&count).Error)
	if count != 0 {
		t.Error("expected link row removed")
	}
}

func TestSyncAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	first := testutil.CreateTestLink(t, db, user.ID)
	second := testutil.CreateTestLink(t, db, user.ID)

	fake := &fakeAggregator{accounts: []aggregator.AccountRecord{
		checkingRecord("ext-syncall-1", "100.00"),
	}}
	svc := NewLinkService(db, fake, NewSyncService(db, fake))

	report, err := svc.SyncAll(context.Background(), user.ID)
	testutil.AssertNoError(t, err)

	if report.LinksSynced != 2 || report.LinksFailed != 0 {
		t.Fatalf("expected both links synced, got %+v", report)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	seen := map[string]bool{}
	for _, result := range report.Results {
		seen[result.LinkID] = result.Success
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Errorf("expected per-link results for both links, got %v", seen)
	}
}

func TestHandleWebhook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	link := testutil.CreateTestLink(t, db, user.ID)

	fake := &fakeAggregator{accounts: []aggregator.AccountRecord{
		checkingRecord("ext-webhook-1", "250.00"),
	}}
	svc := NewLinkService(db, fake, NewSyncService(db, fake))

	t.Run("transaction update triggers sync", func(t *testing.T) {
		receipt := svc.HandleWebhook(context.Background(), WebhookEvent{
			Category:       WebhookCategoryTransactions,
			Code:           WebhookCodeDefaultUpdate,
			ItemExternalID: link.ExternalItemID,
		})
		if !receipt.Received || receipt.Error != "" {
			t.Fatalf("expected clean receipt, got %+v", receipt)
		}

		var count int64
		testutil.AssertNoError(t, db.Model(&models.Account{}).Count(&count).Error)
		if count != 1 {
			t.Errorf("expected webhook sync to create the account, got %d rows", count)
		}
	})

	t.Run("item error marks the link", func(t *testing.T) {
		receipt := svc.HandleWebhook(context.Background(), WebhookEvent{
			Category:       WebhookCategoryItem,
			Code:           WebhookCodeError,
			ItemExternalID: link.ExternalItemID,
			ErrorCode:      "ITEM_LOGIN_REQUIRED",
			ErrorMessage:   "the credentials have changed",
		})
		if !receipt.Received {
			t.Fatal("webhook must always be acknowledged")
		}

		var after models.InstitutionLink
		testutil.AssertNoError(t, db.First(&after, "id = ?", link.ID).Error)
		if after.Status != models.LinkStatusError || after.ErrorCode != "ITEM_LOGIN_REQUIRED" {
			t.Errorf("expected error status recorded, got %+v", after)
		}
	})

	t.Run("unknown item is acknowledged", func(t *testing.T) {
		receipt := svc.HandleWebhook(context.Background(), WebhookEvent{
			Category:       WebhookCategoryTransactions,
			Code:           WebhookCodeDefaultUpdate,
			ItemExternalID: "item-never-seen",
		})
		if !receipt.Received {
			t.Error("webhook must always be acknowledged")
		}
		if receipt.Error == "" {
			t.Error("expected the failure noted in the receipt")
		}
	})

	t.Run("pending expiration updates status", func(t *testing.T) {
		receipt := svc.HandleWebhook(context.Background(), WebhookEvent{
			Category:       WebhookCategoryItem,
			Code:           WebhookCodePendingExpiration,
			ItemExternalID: link.ExternalItemID,
		})
		if !receipt.Received {
			t.Fatal("webhook must always be acknowledged")
		}

		var after models.InstitutionLink
		testutil.AssertNoError(t, db.First(&after, "id = ?", link.ID).Error)
		if after.Status != models.LinkStatusPendingExpiration {
			t.Errorf("expected pending_expiration, got %s", after.Status)
		}
	})
}
