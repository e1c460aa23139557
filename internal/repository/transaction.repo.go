package repository

import (
	"context"
	"errors"
	"fmt"

	"fintrack-service/internal/domain"
	"fintrack-service/pkg/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, filter *domain.TransactionFilter) ([]*domain.Transaction, error)
	Delete(ctx context.Context, id int64) error
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepo(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO transactions (trx_type, amount, trx_date, note, budget_id, category_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, t.TrxType, t.Amount, t.TrxDate, t.Note, t.BudgetID, t.CategoryID, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *transactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.QueryRow(ctx, `
		SELECT id, trx_type, amount, trx_date, note, budget_id, category_id, created_by, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`, id).Scan(
		&t.ID, &t.TrxType, &t.Amount, &t.TrxDate, &t.Note, &t.BudgetID, &t.CategoryID,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) List(ctx context.Context, filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `
		SELECT id, trx_type, amount, trx_date, note, budget_id, category_id, created_by, created_at, updated_at
		FROM transactions
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if filter != nil && filter.CreatedBy != nil {
		query += fmt.Sprintf(" AND created_by = $%d", argIndex)
		args = append(args, *filter.CreatedBy)
		argIndex++
	}
	if filter != nil && filter.TrxType != nil {
		query += fmt.Sprintf(" AND trx_type = $%d", argIndex)
		args = append(args, *filter.TrxType)
		argIndex++
	}

	query += " ORDER BY trx_date DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.TrxType, &t.Amount, &t.TrxDate, &t.Note, &t.BudgetID, &t.CategoryID,
			&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *transactionRepo) Delete(ctx context.Context, id int64) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return xerrors.ErrTransactionNotFound
	}
	return nil
}
