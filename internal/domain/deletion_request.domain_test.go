package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeletionRequestStatusTerminal(t *testing.T) {
	assert.False(t, DeletionRequestPending.Terminal())
	assert.True(t, DeletionRequestApproved.Terminal())
	assert.True(t, DeletionRequestRejected.Terminal())
}

func TestTransactionOwnedBy(t *testing.T) {
	trx := Transaction{ID: 1, CreatedBy: 5}

	assert.True(t, trx.OwnedBy(Principal{ID: 5, Role: RoleMember}))
	assert.False(t, trx.OwnedBy(Principal{ID: 6, Role: RoleMember}))
	// Ownership is literal; admin privilege is decided by callers.
	assert.False(t, trx.OwnedBy(Principal{ID: 9, Role: RoleAdmin}))
}
