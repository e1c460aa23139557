package domain

import "fintrack-service/pkg/xerrors"

// Role is the closed set of roles a principal can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	default:
		return "", xerrors.ErrInvalidRole
	}
}

// Capability names a restricted action a role may perform.
type Capability string

const (
	CapSubmitDeletionRequest Capability = "deletion_request:submit"
	CapReviewDeletionRequest Capability = "deletion_request:review"
	CapDeleteTransaction     Capability = "transaction:delete"
	CapManageUsers           Capability = "user:manage"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapSubmitDeletionRequest: true,
		CapReviewDeletionRequest: true,
		CapDeleteTransaction:     true,
		CapManageUsers:           true,
	},
	RoleMember: {
		CapSubmitDeletionRequest: true,
	},
}

// Principal is the resolved identity+role behind a request.
type Principal struct {
	ID   int64
	Role Role
}

func (p Principal) HasCapability(c Capability) bool {
	return roleCapabilities[p.Role][c]
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// GuardSelfAction rejects restricted actions whose target is the acting
// principal itself (deleting own account, changing own role, reviewing own
// request). Must be called before any mutating effect.
func GuardSelfAction(p Principal, targetUserID int64) error {
	if p.ID == targetUserID {
		return xerrors.ErrSelfActionNotAllowed
	}
	return nil
}
