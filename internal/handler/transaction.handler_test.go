package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionBadInput(t *testing.T) {
	env := newAPIEnv(t)
	tok := env.registerAndLogin(t, "Member", "member@example.com", "")

	rec := env.do(t, http.MethodPost, "/transactions", tok, map[string]interface{}{
		"trx_type": "transfer",
		"amount":   10,
		"trx_date": "2026-08-15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionVisibility(t *testing.T) {
	env := newAPIEnv(t)

	annTok := env.registerAndLogin(t, "Ann", "ann@example.com", "")
	bobTok := env.registerAndLogin(t, "Bob", "bob@example.com", "")
	trxID := env.createTransaction(t, annTok)

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/transactions/%d", trxID), bobTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/transactions?type=bogus", annTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/transactions", bobTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeEnvelope(t, rec).Data["total"])
}

func TestDirectDeleteIsAdminOnly(t *testing.T) {
	env := newAPIEnv(t)

	memberTok := env.registerAndLogin(t, "Member", "member@example.com", "")
	adminTok := env.registerAndLogin(t, "Admin", "admin@example.com", "admin")
	trxID := env.createTransaction(t, memberTok)

	// Members must go through the deletion-request workflow.
	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/transactions/%d", trxID), memberTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/transactions/%d", trxID), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/transactions/%d", trxID), memberTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
