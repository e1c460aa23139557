package domain

import "time"

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is the target resource of the guarded-deletion workflow.
// Budgets and categories are owned by other services and referenced by id only.
type Transaction struct {
	ID         int64           `json:"id"`
	TrxType    TransactionType `json:"trx_type"`
	Amount     float64         `json:"amount"`
	TrxDate    time.Time       `json:"trx_date"`
	Note       *string         `json:"note,omitempty"`
	BudgetID   *int64          `json:"budget_id,omitempty"`
	CategoryID *int64          `json:"category_id,omitempty"`
	CreatedBy  int64           `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (t *Transaction) OwnedBy(p Principal) bool {
	return t.CreatedBy == p.ID
}

type TransactionFilter struct {
	CreatedBy *int64
	TrxType   *TransactionType
}
