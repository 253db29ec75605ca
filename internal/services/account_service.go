package services

import (
	stderrors "errors"

	"gorm.io/gorm"

	"moneta/internal/errors"
	"moneta/internal/models"
)

// AccountUpdate carries the user-editable classification fields. Nil fields
// are left untouched. These are exactly the fields the reconciliation
// pipeline never overwrites.
type AccountUpdate struct {
	IsAsset           *bool   `json:"is_asset"`
	IsLiquid          *bool   `json:"is_liquid"`
	IncludeInNetWorth *bool   `json:"include_in_net_worth"`
	CustomCategory    *string `json:"custom_category"`
}

// AccountServicer defines the contract for reading and classifying accounts.
type AccountServicer interface {
	GetUserAccounts(userID string) ([]models.Account, error)
	GetAccount(userID, accountID string) (*models.Account, error)
	UpdateClassification(userID, accountID string, update AccountUpdate) (*models.Account, error)
}

type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new account service.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// GetUserAccounts lists the user's accounts.
func (s *accountService) GetUserAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&accounts).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return accounts, nil
}

// GetAccount fetches one account, scoped to the owning user.
func (s *accountService) GetAccount(userID, accountID string) (*models.Account, error) {
	var account models.Account
	err := s.db.First(&account, "id = ? AND user_id = ?", accountID, userID).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateClassification applies the user's net worth classification. Synced
// balance and identity fields are not editable here.
func (s *accountService) UpdateClassification(userID, accountID string, update AccountUpdate) (*models.Account, error) {
	account, err := s.GetAccount(userID, accountID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.IsAsset != nil {
		changes["is_asset"] = *update.IsAsset
	}
	if update.IsLiquid != nil {
		changes["is_liquid"] = *update.IsLiquid
	}
	if update.IncludeInNetWorth != nil {
		changes["include_in_net_worth"] = *update.IncludeInNetWorth
	}
	if update.CustomCategory != nil {
		changes["custom_category"] = *update.CustomCategory
	}
	if len(changes) == 0 {
		return account, nil
	}

	if err := s.db.Model(account).Updates(changes).Error; err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}
	return account, nil
}
