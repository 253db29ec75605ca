package services

import (
	stderrors "errors"

	"gorm.io/gorm"

	"moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// GetUserTransactions lists the user's transactions with filters, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	query := s.filtered(s.db.Where("user_id = ?", userID), filter)
	return s.paginate(query, page)
}

// GetAccountTransactions lists one account's transactions, verifying the
// account belongs to the user first.
func (s *transactionService) GetAccountTransactions(userID, accountID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	var account models.Account
	if err := s.db.First(&account, "id = ? AND user_id = ?", accountID, userID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	page.Defaults()
	query := s.filtered(s.db.Where("user_id = ? AND account_id = ?", userID, accountID), filter)
	return s.paginate(query, page)
}

func (s *transactionService) filtered(query *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		query = query.Where("date >= ?", models.DateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", models.DateOnly(*filter.ToDate))
	}
	if filter.CashFlowType != nil {
		query = query.Where("cash_flow_type = ?", *filter.CashFlowType)
	}
	if filter.Category != nil {
		query = query.Where("category_primary = ? OR custom_category = ?", *filter.Category, *filter.Category)
	}
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Pending != nil {
		query = query.Where("pending = ?", *filter.Pending)
	}
	return query
}

func (s *transactionService) paginate(query *gorm.DB, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	var total int64
	if err := query.Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err := query.Model(&models.Transaction{}).
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternalServer, err)
	}

	response := pagination.NewPageResponse(transactions, page.Page, page.PageSize, total)
	return &response, nil
}
