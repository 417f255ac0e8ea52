package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"meal_care_backend/internal/models"
)

// TransactionRepository defines the database operations for the financial ledger.
// Ledger rows are append-only.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, executor SQLExecutor, txn *models.Transaction) (int64, error)
	GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error)
	GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int, error)
}

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, type, category, amount, description, transaction_date, payment_method, status,
	related_id, related_type, created_at`

func scanTransactionRow(row scanner, extra ...interface{}) (*models.Transaction, error) {
	t := &models.Transaction{}
	var date sql.NullTime
	dest := []interface{}{&t.ID, &t.Type, &t.Category, &t.Amount, &t.Description, &date, &t.PaymentMethod,
		&t.Status, &t.RelatedID, &t.RelatedType, &t.CreatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if d := dateString(date); d != nil {
		t.TransactionDate = *d
	}
	return t, nil
}

func (r *transactionRepository) CreateTransaction(ctx context.Context, executor SQLExecutor, txn *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions
	            (type, category, amount, description, transaction_date, payment_method, status, related_id,
	             related_type, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	txn.CreatedAt = nowUTC()
	if txn.Status == "" {
		txn.Status = models.TransactionCompleted
	}
	if txn.TransactionDate == "" {
		txn.TransactionDate = txn.CreatedAt.Format("2006-01-02")
	}

	err := executor.QueryRowContext(ctx, query,
		txn.Type, txn.Category, txn.Amount, txn.Description, txn.TransactionDate, txn.PaymentMethod, txn.Status,
		txn.RelatedID, txn.RelatedType, txn.CreatedAt,
	).Scan(&txn.ID)
	if err != nil {
		return 0, translateError(err, "creating transaction")
	}
	return txn.ID, nil
}

func (r *transactionRepository) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	txn, err := scanTransactionRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting transaction by ID %d: %v", ErrDatabaseError, id, err)
	}
	return txn, nil
}

func (r *transactionRepository) GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int, error) {
	transactions := []models.Transaction{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + transactionColumns + `, COUNT(*) OVER() AS total_count FROM transactions`)

	var where whereBuilder
	if filters.Type != nil && *filters.Type != "" {
		where.add("type = $%d", *filters.Type)
	}
	if filters.Status != nil && *filters.Status != "" {
		where.add("status = $%d", *filters.Status)
	}
	if filters.Category != nil && *filters.Category != "" {
		where.add("category = $%d", *filters.Category)
	}
	if filters.RelatedType != nil && *filters.RelatedType != "" {
		where.add("related_type = $%d", *filters.RelatedType)
	}
	if filters.RelatedID != nil {
		where.add("related_id = $%d", *filters.RelatedID)
	}
	if filters.StartDate != nil && *filters.StartDate != "" {
		where.add("transaction_date >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		where.add("transaction_date <= $%d", *filters.EndDate)
	}
	where.writeTo(&queryBuilder, "transaction_date DESC, id DESC", filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), where.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransactionRow(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
		}
		transactions = append(transactions, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, totalCount, nil
}
