// Package repotest provides in-memory repository implementations for tests.
// They mirror the storage-level guarantees the pgx implementations rely on:
// the pending-uniqueness index and conditional status writes, both applied
// under a single lock, so concurrency behavior can be exercised without a
// database.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack-service/internal/domain"
	"fintrack-service/pkg/xerrors"
)

type UserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{nextID: 1, users: map[int64]*domain.User{}}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return xerrors.ErrEmailAlreadyInUse
		}
	}
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, xerrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (r *UserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return xerrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type TransactionRepo struct {
	mu           sync.Mutex
	nextID       int64
	transactions map[int64]*domain.Transaction

	// DeleteErr, when set, makes every delete fail. DeleteCount tracks
	// successful deletes. Both support atomicity and race assertions.
	DeleteErr   error
	DeleteCount int
}

func NewTransactionRepo() *TransactionRepo {
	return &TransactionRepo{nextID: 1, transactions: map[int64]*domain.Transaction{}}
}

func (r *TransactionRepo) Create(_ context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.transactions[t.ID] = &cp
	return nil
}

func (r *TransactionRepo) GetByID(_ context.Context, id int64) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[id]
	if !ok {
		return nil, xerrors.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *TransactionRepo) List(_ context.Context, filter *domain.TransactionFilter) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range r.transactions {
		if filter != nil && filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter != nil && filter.TrxType != nil && t.TrxType != *filter.TrxType {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TransactionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteLocked(id)
}

func (r *TransactionRepo) deleteLocked(id int64) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	if _, ok := r.transactions[id]; !ok {
		return xerrors.ErrTransactionNotFound
	}
	delete(r.transactions, id)
	r.DeleteCount++
	return nil
}

type DeletionRequestRepo struct {
	mu       sync.Mutex
	nextID   int64
	requests map[int64]*domain.DeletionRequest
	trxRepo  *TransactionRepo
}

func NewDeletionRequestRepo(trxRepo *TransactionRepo) *DeletionRequestRepo {
	return &DeletionRequestRepo{nextID: 1, requests: map[int64]*domain.DeletionRequest{}, trxRepo: trxRepo}
}

func (r *DeletionRequestRepo) Create(_ context.Context, dr *domain.DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// partial unique index equivalent
	for _, existing := range r.requests {
		if existing.TransactionID == dr.TransactionID &&
			existing.RequestedBy == dr.RequestedBy &&
			existing.Status == domain.DeletionRequestPending {
			return xerrors.ErrDuplicateDeletionRequest
		}
	}
	dr.ID = r.nextID
	r.nextID++
	dr.CreatedAt = time.Now()
	cp := *dr
	r.requests[dr.ID] = &cp
	return nil
}

func (r *DeletionRequestRepo) GetByID(_ context.Context, id int64) (*domain.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dr, ok := r.requests[id]
	if !ok {
		return nil, xerrors.ErrDeletionRequestNotFound
	}
	cp := *dr
	return &cp, nil
}

func (r *DeletionRequestRepo) List(_ context.Context, filter *domain.DeletionRequestFilter) ([]*domain.DeletionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DeletionRequest
	for _, dr := range r.requests {
		if filter != nil && filter.Status != nil && dr.Status != *filter.Status {
			continue
		}
		if filter != nil && filter.RequestedBy != nil && dr.RequestedBy != *filter.RequestedBy {
			continue
		}
		cp := *dr
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DeletionRequestRepo) ExistsPending(_ context.Context, transactionID, requestedBy int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dr := range r.requests {
		if dr.TransactionID == transactionID && dr.RequestedBy == requestedBy && dr.Status == domain.DeletionRequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *DeletionRequestRepo) PendingCount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, dr := range r.requests {
		if dr.Status == domain.DeletionRequestPending {
			n++
		}
	}
	return n, nil
}

func (r *DeletionRequestRepo) Reject(_ context.Context, id, reviewedBy int64, adminNote *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dr, ok := r.requests[id]
	if !ok || dr.Status != domain.DeletionRequestPending {
		return xerrors.ErrAlreadyReviewed
	}
	now := time.Now()
	dr.Status = domain.DeletionRequestRejected
	dr.ReviewedBy = &reviewedBy
	dr.ReviewedAt = &now
	dr.AdminNote = adminNote
	return nil
}

func (r *DeletionRequestRepo) ApproveAndDeleteTransaction(_ context.Context, id, reviewedBy int64, adminNote *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dr, ok := r.requests[id]
	if !ok || dr.Status != domain.DeletionRequestPending {
		return xerrors.ErrAlreadyReviewed
	}

	// Both effects under one lock: the delete failing leaves the request
	// pending, mirroring the rollback of the real transaction.
	r.trxRepo.mu.Lock()
	err := r.trxRepo.deleteLocked(dr.TransactionID)
	r.trxRepo.mu.Unlock()
	if err != nil {
		return xerrors.ErrDeletionFailed
	}

	now := time.Now()
	dr.Status = domain.DeletionRequestApproved
	dr.ReviewedBy = &reviewedBy
	dr.ReviewedAt = &now
	dr.AdminNote = adminNote
	return nil
}
