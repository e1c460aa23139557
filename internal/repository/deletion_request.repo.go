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

type DeletionRequestRepository interface {
	Create(ctx context.Context, dr *domain.DeletionRequest) error
	GetByID(ctx context.Context, id int64) (*domain.DeletionRequest, error)
	List(ctx context.Context, filter *domain.DeletionRequestFilter) ([]*domain.DeletionRequest, error)
	ExistsPending(ctx context.Context, transactionID, requestedBy int64) (bool, error)
	PendingCount(ctx context.Context) (int64, error)

	// Reject transitions pending → rejected as a single conditional write.
	// A request that is no longer pending yields ErrAlreadyReviewed.
	Reject(ctx context.Context, id, reviewedBy int64, adminNote *string) error

	// ApproveAndDeleteTransaction transitions pending → approved and removes
	// the target transaction in one storage transaction. Either both effects
	// commit or neither does.
	ApproveAndDeleteTransaction(ctx context.Context, id, reviewedBy int64, adminNote *string) error
}

type deletionRequestRepo struct {
	db *pgxpool.Pool
}

func NewDeletionRequestRepo(db *pgxpool.Pool) DeletionRequestRepository {
	return &deletionRequestRepo{db: db}
}

// selectColumns joins requester/reviewer identities and what is left of the
// target transaction. The transaction join is LEFT: approved requests outlive
// the record they removed.
const selectColumns = `
	SELECT
		dr.id, dr.transaction_id, dr.requested_by, dr.reviewed_by, dr.status,
		dr.reason, dr.admin_note, dr.created_at, dr.reviewed_at,
		u_req.name, u_req.email,
		u_rev.name,
		t.trx_type, t.amount
	FROM deletion_requests dr
	JOIN users u_req ON dr.requested_by = u_req.id
	LEFT JOIN users u_rev ON dr.reviewed_by = u_rev.id
	LEFT JOIN transactions t ON dr.transaction_id = t.id
`

func (r *deletionRequestRepo) Create(ctx context.Context, dr *domain.DeletionRequest) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO deletion_requests (transaction_id, requested_by, status, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`, dr.TransactionID, dr.RequestedBy, dr.Status, dr.Reason,
	).Scan(&dr.ID, &dr.CreatedAt)

	if err != nil {
		// Loser of a concurrent duplicate submit hits the partial unique
		// index on (transaction_id, requested_by) WHERE status='pending'.
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return xerrors.ErrDuplicateDeletionRequest
		}
		return err
	}
	return nil
}

func (r *deletionRequestRepo) GetByID(ctx context.Context, id int64) (*domain.DeletionRequest, error) {
	row := r.db.QueryRow(ctx, selectColumns+` WHERE dr.id = $1`, id)
	dr, err := scanDeletionRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrDeletionRequestNotFound
		}
		return nil, err
	}
	return dr, nil
}

func (r *deletionRequestRepo) List(ctx context.Context, filter *domain.DeletionRequestFilter) ([]*domain.DeletionRequest, error) {
	query := selectColumns + ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if filter != nil && filter.Status != nil {
		query += fmt.Sprintf(" AND dr.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter != nil && filter.RequestedBy != nil {
		query += fmt.Sprintf(" AND dr.requested_by = $%d", argIndex)
		args = append(args, *filter.RequestedBy)
		argIndex++
	}

	query += " ORDER BY dr.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.DeletionRequest
	for rows.Next() {
		dr, err := scanDeletionRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, dr)
	}
	return list, rows.Err()
}

func (r *deletionRequestRepo) ExistsPending(ctx context.Context, transactionID, requestedBy int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM deletion_requests
			WHERE transaction_id = $1 AND requested_by = $2 AND status = $3
		)
	`, transactionID, requestedBy, domain.DeletionRequestPending).Scan(&exists)
	return exists, err
}

func (r *deletionRequestRepo) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM deletion_requests WHERE status = $1
	`, domain.DeletionRequestPending).Scan(&count)
	return count, err
}

func (r *deletionRequestRepo) Reject(ctx context.Context, id, reviewedBy int64, adminNote *string) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE deletion_requests
		SET status = $1, reviewed_by = $2, reviewed_at = NOW(), admin_note = $3
		WHERE id = $4 AND status = $5
	`, domain.DeletionRequestRejected, reviewedBy, adminNote, id, domain.DeletionRequestPending)
	if err != nil {
		return err
	}
	// Zero rows means another reviewer already won the compare-and-set.
	if ct.RowsAffected() == 0 {
		return xerrors.ErrAlreadyReviewed
	}
	return nil
}

func (r *deletionRequestRepo) ApproveAndDeleteTransaction(ctx context.Context, id, reviewedBy int64, adminNote *string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Conditional transition; RETURNING gives us the target under the same
	// snapshot the transition committed against.
	var transactionID int64
	err = tx.QueryRow(ctx, `
		UPDATE deletion_requests
		SET status = $1, reviewed_by = $2, reviewed_at = NOW(), admin_note = $3
		WHERE id = $4 AND status = $5
		RETURNING transaction_id
	`, domain.DeletionRequestApproved, reviewedBy, adminNote, id, domain.DeletionRequestPending,
	).Scan(&transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrAlreadyReviewed
		}
		return err
	}

	ct, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", transactionID, xerrors.ErrDeletionFailed)
	}
	if ct.RowsAffected() == 0 {
		// Target vanished outside the workflow; the deferred rollback keeps
		// the request pending rather than approved-with-nothing-deleted.
		return xerrors.ErrDeletionFailed
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit approval: %w", xerrors.ErrDeletionFailed)
	}
	return nil
}

func scanDeletionRequest(row pgx.Row) (*domain.DeletionRequest, error) {
	var dr domain.DeletionRequest
	err := row.Scan(
		&dr.ID, &dr.TransactionID, &dr.RequestedBy, &dr.ReviewedBy, &dr.Status,
		&dr.Reason, &dr.AdminNote, &dr.CreatedAt, &dr.ReviewedAt,
		&dr.RequesterName, &dr.RequesterEmail,
		&dr.ReviewerName,
		&dr.TrxType, &dr.TrxAmount,
	)
	if err != nil {
		return nil, err
	}
	return &dr, nil
}
