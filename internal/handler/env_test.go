package handler_test

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack-service/internal/handler"
	"fintrack-service/internal/repository/repotest"
	"fintrack-service/internal/router"
	"fintrack-service/internal/service"
	"fintrack-service/pkg/jwtutil"
	"fintrack-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// apiEnv wires the full HTTP surface over the in-memory repositories. The
// redis client points at a closed port, so rate limiting and the count cache
// fail open and every request reaches the handlers.
type apiEnv struct {
	handler http.Handler
	gen     *jwtutil.Generator
	users   *repotest.UserRepo
	trx     *repotest.TransactionRepo
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	ver := jwtutil.NewVerifier(&priv.PublicKey, "fintrack", "fintrack-api")
	gen := jwtutil.NewGenerator(priv, "fintrack", "fintrack-api", "", time.Hour)

	users := repotest.NewUserRepo()
	trx := repotest.NewTransactionRepo()
	requests := repotest.NewDeletionRequestRepo(trx)

	logger := zap.NewNop()
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	authHandler := handler.NewAuthHandler(service.NewAuthService(users, gen), logger)
	trxHandler := handler.NewTransactionHandler(service.NewTransactionService(trx), logger)
	drHandler := handler.NewDeletionRequestHandler(service.NewDeletionRequestService(requests, trx), rdb, logger)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, trxHandler, drHandler, middleware.NewAuthMiddleware(ver), rdb)

	return &apiEnv{handler: r, gen: gen, users: users, trx: trx}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// registerAndLogin creates a user through the API and returns a bearer token.
func (e *apiEnv) registerAndLogin(t *testing.T, name, email, role string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "s3cret-pass",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, ok := decodeEnvelope(t, rec).Data["token"].(string)
	require.True(t, ok)
	return token
}

// createTransaction inserts a transaction through the API and returns its id.
func (e *apiEnv) createTransaction(t *testing.T, token string) int64 {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/transactions", token, map[string]interface{}{
		"trx_type": "expense",
		"amount":   25.50,
		"trx_date": "2026-08-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	trx, ok := decodeEnvelope(t, rec).Data["transaction"].(map[string]interface{})
	require.True(t, ok)
	return int64(trx["id"].(float64))
}
