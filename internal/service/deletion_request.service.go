package service

import (
	"context"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/repository"
	"fintrack-service/pkg/xerrors"
)

// DeletionRequestService owns the pending → approved/rejected lifecycle.
// All state lives in storage; every mutation is a conditional write so
// concurrent callers race in the database, not in memory.
type DeletionRequestService struct {
	requests     repository.DeletionRequestRepository
	transactions repository.TransactionRepository
}

func NewDeletionRequestService(
	requests repository.DeletionRequestRepository,
	transactions repository.TransactionRepository,
) *DeletionRequestService {
	return &DeletionRequestService{
		requests:     requests,
		transactions: transactions,
	}
}

type SubmitDeletionRequest struct {
	TransactionID int64  `json:"transaction_id"`
	Reason        string `json:"reason"`
}

type ReviewDeletionRequest struct {
	RequestID int64
	Decision  domain.ReviewDecision
	AdminNote *string
}

// Submit files a deletion request for a transaction. Members may only target
// their own transactions; duplicate pending requests for the same
// (transaction, requester) pair are rejected.
func (s *DeletionRequestService) Submit(ctx context.Context, p domain.Principal, req *SubmitDeletionRequest) (*domain.DeletionRequest, error) {
	if !p.HasCapability(domain.CapSubmitDeletionRequest) {
		return nil, xerrors.ErrForbidden
	}

	trx, err := s.transactions.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}

	if !p.IsAdmin() && !trx.OwnedBy(p) {
		return nil, xerrors.ErrNotTransactionOwner
	}

	exists, err := s.requests.ExistsPending(ctx, req.TransactionID, p.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, xerrors.ErrDuplicateDeletionRequest
	}

	dr := &domain.DeletionRequest{
		TransactionID: req.TransactionID,
		RequestedBy:   p.ID,
		Status:        domain.DeletionRequestPending,
		Reason:        req.Reason,
	}
	// Create also maps the unique-index violation of a concurrent duplicate
	// submit to the same conflict as the precheck above.
	if err := s.requests.Create(ctx, dr); err != nil {
		return nil, err
	}

	return s.requests.GetByID(ctx, dr.ID)
}

// Review settles a pending request. Approval deletes the target transaction
// in the same storage transaction as the status transition; rejection leaves
// the target untouched. Terminal requests cannot be reviewed again.
func (s *DeletionRequestService) Review(ctx context.Context, p domain.Principal, req *ReviewDeletionRequest) (*domain.DeletionRequest, error) {
	if req.Decision != domain.DecisionApprove && req.Decision != domain.DecisionReject {
		return nil, xerrors.ErrInvalidDecision
	}

	if !p.HasCapability(domain.CapReviewDeletionRequest) {
		return nil, xerrors.ErrForbidden
	}

	dr, err := s.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	if dr.Status.Terminal() {
		return nil, xerrors.ErrAlreadyReviewed
	}

	if err := domain.GuardSelfAction(p, dr.RequestedBy); err != nil {
		return nil, xerrors.ErrSelfReviewNotAllowed
	}

	switch req.Decision {
	case domain.DecisionApprove:
		err = s.requests.ApproveAndDeleteTransaction(ctx, req.RequestID, p.ID, req.AdminNote)
	case domain.DecisionReject:
		err = s.requests.Reject(ctx, req.RequestID, p.ID, req.AdminNote)
	}
	if err != nil {
		return nil, err
	}

	return s.requests.GetByID(ctx, req.RequestID)
}

// Get returns one request. Members can only read their own.
func (s *DeletionRequestService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.DeletionRequest, error) {
	dr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && dr.RequestedBy != p.ID {
		return nil, xerrors.ErrForbidden
	}
	return dr, nil
}

// List returns requests, optionally filtered by status. Members are always
// scoped to their own requests.
func (s *DeletionRequestService) List(ctx context.Context, p domain.Principal, status *domain.DeletionRequestStatus) ([]*domain.DeletionRequest, error) {
	filter := &domain.DeletionRequestFilter{Status: status}
	if !p.IsAdmin() {
		filter.RequestedBy = &p.ID
	}
	return s.requests.List(ctx, filter)
}

func (s *DeletionRequestService) PendingCount(ctx context.Context, p domain.Principal) (int64, error) {
	if !p.HasCapability(domain.CapReviewDeletionRequest) {
		return 0, xerrors.ErrForbidden
	}
	return s.requests.PendingCount(ctx)
}
