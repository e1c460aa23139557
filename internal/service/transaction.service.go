package service

import (
	"context"
	"time"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/repository"
	"fintrack-service/pkg/xerrors"
)

type TransactionService struct {
	transactions repository.TransactionRepository
}

func NewTransactionService(transactions repository.TransactionRepository) *TransactionService {
	return &TransactionService{transactions: transactions}
}

type CreateTransactionRequest struct {
	TrxType    string  `json:"trx_type"`
	Amount     float64 `json:"amount"`
	TrxDate    string  `json:"trx_date"`
	Note       *string `json:"note,omitempty"`
	BudgetID   *int64  `json:"budget_id,omitempty"`
	CategoryID *int64  `json:"category_id,omitempty"`
}

func (s *TransactionService) Create(ctx context.Context, p domain.Principal, req *CreateTransactionRequest) (*domain.Transaction, error) {
	trxType := domain.TransactionType(req.TrxType)
	if trxType != domain.TransactionTypeIncome && trxType != domain.TransactionTypeExpense {
		return nil, xerrors.ErrInvalidInput
	}
	if req.Amount <= 0 {
		return nil, xerrors.ErrInvalidInput
	}
	trxDate, err := time.Parse("2006-01-02", req.TrxDate)
	if err != nil {
		return nil, xerrors.ErrInvalidInput
	}

	t := &domain.Transaction{
		TrxType:    trxType,
		Amount:     req.Amount,
		TrxDate:    trxDate,
		Note:       req.Note,
		BudgetID:   req.BudgetID,
		CategoryID: req.CategoryID,
		CreatedBy:  p.ID,
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TransactionService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() && !t.OwnedBy(p) {
		return nil, xerrors.ErrForbidden
	}
	return t, nil
}

func (s *TransactionService) List(ctx context.Context, p domain.Principal, trxType *domain.TransactionType) ([]*domain.Transaction, error) {
	filter := &domain.TransactionFilter{TrxType: trxType}
	if !p.IsAdmin() {
		filter.CreatedBy = &p.ID
	}
	return s.transactions.List(ctx, filter)
}

// Delete is the direct deletion path, reserved for admins. Members go through
// the deletion-request workflow instead.
func (s *TransactionService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if !p.HasCapability(domain.CapDeleteTransaction) {
		return xerrors.ErrForbidden
	}
	if _, err := s.transactions.GetByID(ctx, id); err != nil {
		return err
	}
	return s.transactions.Delete(ctx, id)
}
