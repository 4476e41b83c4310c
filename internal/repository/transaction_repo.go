package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no transaction matches the given id for the
// given owner. Missing and foreign records are deliberately the same error.
var ErrNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, owner_id, type, amount, category, description, transaction_date, created_at`

// Create inserts a new transaction and fills in the store-assigned fields.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO transactions (owner_id, type, amount, category, description, transaction_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		tx.OwnerID, tx.Type, tx.Amount, tx.Category, tx.Description, tx.TransactionDate,
	).Scan(&tx.ID, &tx.CreatedAt)
}

// Find returns one transaction by id, scoped to its owner.
func (r *TransactionRepository) Find(ctx context.Context, ownerID, id int64) (*domain.Transaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

// List returns the owner's transactions matching the filter, newest
// transaction_date first, ties broken by created_at descending.
func (r *TransactionRepository) List(ctx context.Context, ownerID int64, f domain.TransactionFilter) ([]*domain.Transaction, error) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}

	if f.Dates != nil {
		args = append(args, f.Dates.Start, f.Dates.End)
		where = append(where,
			"transaction_date >= $"+strconv.Itoa(len(args)-1),
			"transaction_date <= $"+strconv.Itoa(len(args)))
	}
	if f.Type != nil {
		args = append(args, *f.Type)
		where = append(where, "type = $"+strconv.Itoa(len(args)))
	}
	if f.Category != "" {
		args = append(args, "%"+f.Category+"%")
		where = append(where, "category ILIKE $"+strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY transaction_date DESC, created_at DESC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Update applies the supplied fields in a single atomic statement and returns
// the updated record. ErrNotFound when the owner has no such transaction.
func (r *TransactionRepository) Update(ctx context.Context, ownerID, id int64, u domain.TransactionUpdate) (*domain.Transaction, error) {
	if u.IsZero() {
		return r.Find(ctx, ownerID, id)
	}

	var set []string
	args := []any{ownerID, id}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}
	if u.Type != nil {
		add("type", *u.Type)
	}
	if u.Amount != nil {
		add("amount", *u.Amount)
	}
	if u.Category != nil {
		add("category", *u.Category)
	}
	if u.Description.Set {
		// nil Value binds as SQL NULL, clearing the column.
		add("description", u.Description.Value)
	}
	if u.TransactionDate != nil {
		add("transaction_date", *u.TransactionDate)
	}

	row := r.db.QueryRow(ctx,
		`UPDATE transactions
		 SET `+strings.Join(set, ", ")+`
		 WHERE owner_id = $1 AND id = $2
		 RETURNING `+transactionColumns,
		args...,
	)

	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Delete removes the owner's transaction by id.
func (r *TransactionRepository) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM transactions WHERE owner_id = $1 AND id = $2`,
		ownerID, id,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SumByType returns the amount total for one transaction type, optionally
// bounded to an inclusive date range. Zero when nothing matches.
func (r *TransactionRepository) SumByType(ctx context.Context, ownerID int64, txType domain.TransactionType, dates *domain.DateRange) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE owner_id = $1 AND type = $2`
	args := []any{ownerID, txType}
	if dates != nil {
		query += ` AND transaction_date >= $3 AND transaction_date <= $4`
		args = append(args, dates.Start, dates.End)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum by type: %w", err)
	}
	return total, nil
}

// SumByCategory returns per-category totals for one transaction type,
// largest total first.
func (r *TransactionRepository) SumByCategory(ctx context.Context, ownerID int64, txType domain.TransactionType) ([]domain.CategoryTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT category, SUM(amount) AS total
		 FROM transactions
		 WHERE owner_id = $1 AND type = $2
		 GROUP BY category
		 ORDER BY total DESC`,
		ownerID, txType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CategoryTotal{}
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		result = append(result, ct)
	}
	return result, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.OwnerID,
		&tx.Type,
		&tx.Amount,
		&tx.Category,
		&tx.Description,
		&tx.TransactionDate,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID,
			&tx.OwnerID,
			&tx.Type,
			&tx.Amount,
			&tx.Category,
			&tx.Description,
			&tx.TransactionDate,
			&tx.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &tx)
	}
	return result, rows.Err()
}
