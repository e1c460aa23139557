package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input provided")
)

// Registration / Login
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyInUse  = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role: must be 'admin' or 'member'")
	ErrNameRequired       = errors.New("name required")
	ErrEmailRequired      = errors.New("email required")
	ErrPasswordRequired   = errors.New("password required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Self-action guard: privileged actions may not target the acting principal.
var ErrSelfActionNotAllowed = errors.New("action cannot target your own account")

// Transactions
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotTransactionOwner = errors.New("you can only request deletion for your own transactions")
)

// Deletion requests
var (
	ErrDeletionRequestNotFound  = errors.New("deletion request not found")
	ErrDuplicateDeletionRequest = errors.New("deletion request already exists for this transaction")
	ErrAlreadyReviewed          = errors.New("this request has already been reviewed")
	ErrSelfReviewNotAllowed     = errors.New("you cannot review your own deletion request")
	ErrInvalidDecision          = errors.New("invalid decision: must be 'approve' or 'reject'")
	ErrDeletionFailed           = errors.New("failed to delete transaction for approved request")
)
