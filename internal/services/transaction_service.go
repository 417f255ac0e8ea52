package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
	"meal_care_backend/internal/repositories"
	"meal_care_backend/pkg/utils"
)

var ErrTransactionNotFound = fmt.Errorf("transaction %w", ErrNotFound)

var (
	transactionTypes    = []string{models.TransactionIncome, models.TransactionExpense}
	transactionStatuses = []string{models.TransactionPending, models.TransactionCompleted, models.TransactionCancelled}
	relatedTypes        = []string{models.RelatedCustomer, models.RelatedEmployee, models.RelatedSupplier}
)

// CreateTransactionRequest records a manual ledger line. RelatedType and RelatedID go together.
type CreateTransactionRequest struct {
	Type            string   `json:"type" binding:"required"`
	Category        string   `json:"category" binding:"required"`
	Amount          *float64 `json:"amount" binding:"required"`
	Description     *string  `json:"description"`
	TransactionDate *string  `json:"transaction_date"` // YYYY-MM-DD, defaults to today
	PaymentMethod   *string  `json:"payment_method"`
	Status          *string  `json:"status"`
	RelatedID       *int64   `json:"related_id"`
	RelatedType     *string  `json:"related_type"`
}

type TransactionService interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*models.Transaction, error)
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int, error)
}

type transactionService struct {
	transactionRepo repositories.TransactionRepository
	tx              repositories.Transactor
}

func NewTransactionService(repo repositories.TransactionRepository, tx repositories.Transactor) TransactionService {
	return &transactionService{transactionRepo: repo, tx: tx}
}

// recordLedger appends a completed ledger line inside the caller's transaction.
// Zero amounts move no money and are skipped.
func recordLedger(ctx context.Context, exec repositories.SQLExecutor, repo repositories.TransactionRepository, txn *models.Transaction) error {
	txn.Amount = utils.RoundMoney(txn.Amount)
	if txn.Amount <= 0 {
		return nil
	}
	txn.Status = models.TransactionCompleted
	if _, err := repo.CreateTransaction(ctx, exec, txn); err != nil {
		return fmt.Errorf("recording %s transaction: %w", txn.Category, err)
	}
	return nil
}

func (s *transactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*models.Transaction, error) {
	switch {
	case !utils.OneOf(req.Type, transactionTypes...):
		return nil, validationErrorf("type must be one of %s", strings.Join(transactionTypes, ", "))
	case utils.IsEmpty(req.Category):
		return nil, validationErrorf("category cannot be empty")
	case req.Amount == nil || utils.RoundMoney(*req.Amount) <= 0:
		return nil, validationErrorf("amount must be greater than zero")
	case req.PaymentMethod != nil && !utils.OneOf(*req.PaymentMethod, paymentMethods...):
		return nil, validationErrorf("payment_method must be one of %s", strings.Join(paymentMethods, ", "))
	case req.Status != nil && !utils.OneOf(*req.Status, transactionStatuses...):
		return nil, validationErrorf("status must be one of %s", strings.Join(transactionStatuses, ", "))
	case (req.RelatedID == nil) != (req.RelatedType == nil):
		return nil, validationErrorf("related_id and related_type must be given together")
	case req.RelatedType != nil && !utils.OneOf(*req.RelatedType, relatedTypes...):
		return nil, validationErrorf("related_type must be one of %s", strings.Join(relatedTypes, ", "))
	}
	if err := validateDate("transaction_date", req.TransactionDate); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		Type:          req.Type,
		Category:      strings.TrimSpace(req.Category),
		Amount:        utils.RoundMoney(*req.Amount),
		Description:   trimmedOrNil(req.Description),
		PaymentMethod: req.PaymentMethod,
		Status:        models.TransactionCompleted,
		RelatedID:     req.RelatedID,
		RelatedType:   req.RelatedType,
	}
	if d := trimmedOrNil(req.TransactionDate); d != nil {
		txn.TransactionDate = *d
	}
	if req.Status != nil {
		txn.Status = *req.Status
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.transactionRepo.CreateTransaction(ctx, exec, txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	utils.LogInfo("Transaction recorded", map[string]interface{}{"transaction_id": txn.ID, "type": txn.Type, "amount": txn.Amount})
	return txn, nil
}

func (s *transactionService) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return txn, nil
}

func (s *transactionService) GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	switch {
	case filters.Type != nil && *filters.Type != "" && !utils.OneOf(*filters.Type, transactionTypes...):
		return nil, 0, validationErrorf("type must be one of %s", strings.Join(transactionTypes, ", "))
	case filters.Status != nil && *filters.Status != "" && !utils.OneOf(*filters.Status, transactionStatuses...):
		return nil, 0, validationErrorf("status must be one of %s", strings.Join(transactionStatuses, ", "))
	}
	if err := validateDate("start_date", filters.StartDate); err != nil {
		return nil, 0, err
	}
	if err := validateDate("end_date", filters.EndDate); err != nil {
		return nil, 0, err
	}
	transactions, total, err := s.transactionRepo.GetTransactions(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, total, nil
}
