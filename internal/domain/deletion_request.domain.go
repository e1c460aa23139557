package domain

import "time"

// DeletionRequestStatus represents possible states of a deletion request.
type DeletionRequestStatus string

const (
	DeletionRequestPending  DeletionRequestStatus = "pending"
	DeletionRequestApproved DeletionRequestStatus = "approved"
	DeletionRequestRejected DeletionRequestStatus = "rejected"
)

// Terminal reports whether no further transition is permitted from s.
func (s DeletionRequestStatus) Terminal() bool {
	return s == DeletionRequestApproved || s == DeletionRequestRejected
}

// ReviewDecision is the reviewer's verdict on a pending request.
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// DeletionRequest is the workflow record guarding a transaction delete.
// Approved and rejected requests are never deleted; they form the audit trail.
type DeletionRequest struct {
	ID            int64                 `json:"id"`
	TransactionID int64                 `json:"transaction_id"`
	RequestedBy   int64                 `json:"requested_by"`
	ReviewedBy    *int64                `json:"reviewed_by,omitempty"`
	Status        DeletionRequestStatus `json:"status"`
	Reason        string                `json:"reason"`
	AdminNote     *string               `json:"admin_note,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	ReviewedAt    *time.Time            `json:"reviewed_at,omitempty"`

	// Joined display fields; nil once the transaction has been deleted.
	RequesterName  string   `json:"requester_name,omitempty"`
	RequesterEmail string   `json:"requester_email,omitempty"`
	ReviewerName   *string  `json:"reviewer_name,omitempty"`
	TrxType        *string  `json:"trx_type,omitempty"`
	TrxAmount      *float64 `json:"trx_amount,omitempty"`
}

type DeletionRequestFilter struct {
	Status      *DeletionRequestStatus
	RequestedBy *int64
}
