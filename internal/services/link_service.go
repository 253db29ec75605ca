package services

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"moneta/internal/aggregator"
	"moneta/internal/errors"
	"moneta/internal/logger"
	"moneta/internal/models"
)

// linkService manages institution link lifecycle: creation, removal, manual
// syncs, and webhook-driven updates.
type linkService struct {
	db     *gorm.DB
	client aggregator.Client
	sync   SyncServicer
}

// NewLinkService creates a new link service.
func NewLinkService(db *gorm.DB, client aggregator.Client, sync SyncServicer) LinkServicer {
	return &linkService{db: db, client: client, sync: sync}
}

// CreateLink stores a new institution connection. The external item id is
// unique across all users; a duplicate means the institution is already linked.
func (s *linkService) CreateLink(userID, externalItemID, accessToken, institutionID, institutionName string) (*models.InstitutionLink, error) {
	link := &models.InstitutionLink{
		UserID:          userID,
		ExternalItemID:  externalItemID,
		AccessToken:     accessToken,
		InstitutionID:   institutionID,
		InstitutionName: institutionName,
		Status:          models.LinkStatusActive,
	}
	if err := s.db.Create(link).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.WithMessage(errors.ErrConflict, "This institution is already linked")
		}
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	logger.Get().Infow("institution linked",
		"link_id", link.ID, "user_id", userID, "institution", institutionName)
	return link, nil
}

// GetUserLinks lists the user's institution links.
func (s *linkService) GetUserLinks(userID string) ([]models.InstitutionLink, error) {
	var links []models.InstitutionLink
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&links).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return links, nil
}

// GetLink fetches one link, scoped to the owning user.
func (s *linkService) GetLink(userID, linkID string) (*models.InstitutionLink, error) {
	var link models.InstitutionLink
	err := s.db.First(&link, "id = ? AND user_id = ?", linkID, userID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrLinkNotFound
		}
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return &link, nil
}

// DeleteLink removes a link upstream and locally. The local delete cascades
// to accounts and all their children. An upstream removal failure is logged
// but does not block the local delete; the connection may already be dead.
func (s *linkService) DeleteLink(ctx context.Context, userID, linkID string) error {
	link, err := s.GetLink(userID, linkID)
	if err != nil {
		return err
	}

	if err := s.client.RemoveItem(ctx, link.AccessToken); err != nil {
		logger.Get().Warnw("upstream item removal failed, deleting locally anyway",
			"link_id", link.ID, "error", err)
	}

	if err := s.db.Unscoped().Delete(link).Error; err != nil {
		return errors.Wrap(errors.ErrInternalServer, err)
	}
	logger.Get().Infow("institution link removed", "link_id", link.ID, "user_id", userID)
	return nil
}

// SyncAll runs the pipeline for each of the user's links, sequentially, and
// reports per-link outcomes. One failing link never stops the others.
func (s *linkService) SyncAll(ctx context.Context, userID string) (*SyncAllReport, error) {
	links, err := s.GetUserLinks(userID)
	if err != nil {
		return nil, err
	}

	report := &SyncAllReport{Results: []LinkSyncResult{}}
	for _, link := range links {
		result := LinkSyncResult{LinkID: link.ID, InstitutionName: link.InstitutionName}

		syncReport, err := s.sync.Sync(ctx, link.ID)
		if err != nil {
			result.Error = err.Error()
			report.LinksFailed++
		} else {
			result.Success = true
			result.Report = syncReport
			report.LinksSynced++
		}
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// HandleWebhook reacts to an aggregator notification. The receipt is always
// acknowledged: the aggregator retries unacknowledged deliveries, and a
// failure on our side must not cause a retry storm.
func (s *linkService) HandleWebhook(ctx context.Context, event WebhookEvent) *WebhookReceipt {
	receipt := &WebhookReceipt{Received: true}
	log := logger.Get()

	var link models.InstitutionLink
	err := s.db.First(&link, "external_item_id = ?", event.ItemExternalID).Error
	if err != nil {
		log.Warnw("webhook for unknown item", "item_id", event.ItemExternalID, "code", event.Code)
		receipt.Error = "unknown item"
		return receipt
	}

	switch event.Category {
	case WebhookCategoryTransactions, WebhookCategoryHoldings, WebhookCategoryLiabilities:
		if _, err := s.sync.Sync(ctx, link.ID); err != nil {
			log.Errorw("webhook-triggered sync failed", "link_id", link.ID, "error", err)
			receipt.Error = err.Error()
		}
	case WebhookCategoryItem:
		s.handleItemEvent(&link, event, receipt)
	default:
		log.Infow("ignoring webhook category", "category", event.Category, "code", event.Code)
	}
	return receipt
}

func (s *linkService) handleItemEvent(link *models.InstitutionLink, event WebhookEvent, receipt *WebhookReceipt) {
	var updates map[string]interface{}
	switch event.Code {
	case WebhookCodeError:
		updates = map[string]interface{}{
			"status":        models.LinkStatusError,
			"error_code":    event.ErrorCode,
			"error_message": event.ErrorMessage,
		}
	case WebhookCodePendingExpiration:
		updates = map[string]interface{}{
			"status": models.LinkStatusPendingExpiration,
		}
	default:
		return
	}
	if err := s.db.Model(&models.InstitutionLink{}).Where("id = ?", link.ID).Updates(updates).Error; err != nil {
		logger.Get().Errorw("failed to update link status from webhook", "link_id", link.ID, "error", err)
		receipt.Error = err.Error()
	}
}

// RefreshStaleLinks syncs active links not refreshed within maxAge. Used by
// the scheduled sweep in the API process.
func (s *linkService) RefreshStaleLinks(ctx context.Context, maxAge time.Duration) {
	cutoff := time.Now().Add(-maxAge)

	var links []models.InstitutionLink
	err := s.db.Where("status = ? AND (last_synced_at IS NULL OR last_synced_at < ?)",
		models.LinkStatusActive, cutoff).
		Find(&links).Error
	if err != nil {
		logger.Get().Errorw("failed to list stale links", "error", err)
		return
	}
	for _, link := range links {
		if _, err := s.sync.Sync(ctx, link.ID); err != nil {
			logger.Get().Warnw("scheduled sync failed", "link_id", link.ID, "error", err)
		}
	}
}
