package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/service"
	"fintrack-service/pkg/response"
	"fintrack-service/pkg/xerrors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingCountCacheKey = "deletion_requests:pending_count"

type DeletionRequestHandler struct {
	service     *service.DeletionRequestService
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewDeletionRequestHandler(s *service.DeletionRequestService, rdb *redis.Client, logger *zap.Logger) *DeletionRequestHandler {
	return &DeletionRequestHandler{service: s, redisClient: rdb, logger: logger}
}

type createDeletionRequestBody struct {
	TransactionID int64  `json:"transaction_id"`
	Reason        string `json:"reason"`
}

type reviewBody struct {
	AdminNote *string `json:"admin_note,omitempty"`
}

// Create handles POST /deletion-requests.
func (h *DeletionRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var body createDeletionRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.TransactionID <= 0 {
		response.Error(w, http.StatusBadRequest, "transaction_id must be a positive integer")
		return
	}
	if len(body.Reason) < 10 || len(body.Reason) > 500 {
		response.Error(w, http.StatusBadRequest, "reason must be between 10 and 500 characters")
		return
	}

	dr, err := h.service.Submit(r.Context(), p, &service.SubmitDeletionRequest{
		TransactionID: body.TransactionID,
		Reason:        body.Reason,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.invalidatePendingCount(r.Context())
	h.logger.Info("deletion request submitted",
		zap.Int64("request_id", dr.ID),
		zap.Int64("transaction_id", dr.TransactionID),
		zap.Int64("requested_by", p.ID),
	)

	response.JSON(w, http.StatusCreated,
		"Deletion request submitted successfully. Admin will review your request.",
		map[string]interface{}{"deletion_request": dr},
	)
}

// GetAll handles GET /deletion-requests with an optional ?status= filter.
func (h *DeletionRequestHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var status *domain.DeletionRequestStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.DeletionRequestStatus(s)
		if st != domain.DeletionRequestPending && !st.Terminal() {
			response.Error(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		status = &st
	}

	requests, err := h.service.List(r.Context(), p, status)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Deletion requests retrieved successfully", map[string]interface{}{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetByID handles GET /deletion-requests/{id}.
func (h *DeletionRequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request id")
		return
	}

	dr, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Deletion request retrieved successfully", map[string]interface{}{
		"deletion_request": dr,
	})
}

// Approve handles POST /deletion-requests/{id}/approve.
func (h *DeletionRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.DecisionApprove)
}

// Reject handles POST /deletion-requests/{id}/reject.
func (h *DeletionRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, domain.DecisionReject)
}

func (h *DeletionRequestHandler) review(w http.ResponseWriter, r *http.Request, decision domain.ReviewDecision) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request id")
		return
	}

	// The body is optional. ContentLength is unreliable for chunked requests,
	// so decode whatever is there and treat a bare EOF as "no body".
	var body reviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, xerrors.ErrInvalidRequest.Error())
		return
	}
	if body.AdminNote != nil && len(*body.AdminNote) > 500 {
		response.Error(w, http.StatusBadRequest, "admin_note must not exceed 500 characters")
		return
	}

	dr, err := h.service.Review(r.Context(), p, &service.ReviewDeletionRequest{
		RequestID: id,
		Decision:  decision,
		AdminNote: body.AdminNote,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.invalidatePendingCount(r.Context())
	h.logger.Info("deletion request reviewed",
		zap.Int64("request_id", dr.ID),
		zap.String("decision", string(decision)),
		zap.Int64("reviewed_by", p.ID),
	)

	msg := "Deletion request rejected successfully"
	if decision == domain.DecisionApprove {
		msg = "Deletion request approved and transaction deleted successfully"
	}
	response.JSON(w, http.StatusOK, msg, map[string]interface{}{
		"deletion_request": dr,
	})
}

// GetPendingCount handles GET /deletion-requests/pending/count with a short
// redis cache in front of the count query.
func (h *DeletionRequestHandler) GetPendingCount(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	// Authorize before touching the cache; a warm cache must not bypass
	// the capability check.
	if !p.HasCapability(domain.CapReviewDeletionRequest) {
		writeServiceError(w, h.logger, xerrors.ErrForbidden)
		return
	}

	if h.redisClient != nil {
		if cached, err := h.redisClient.Get(r.Context(), pendingCountCacheKey).Result(); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				response.JSON(w, http.StatusOK, "Pending count retrieved successfully", map[string]interface{}{
					"count": count,
				})
				return
			}
		}
	}

	count, err := h.service.PendingCount(r.Context(), p)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if h.redisClient != nil {
		_ = h.redisClient.Set(r.Context(), pendingCountCacheKey, strconv.FormatInt(count, 10), 30*time.Second).Err()
	}

	response.JSON(w, http.StatusOK, "Pending count retrieved successfully", map[string]interface{}{
		"count": count,
	})
}

// invalidatePendingCount drops the cached count after any mutation; errors
// are ignored, the cache simply repopulates on the next read.
func (h *DeletionRequestHandler) invalidatePendingCount(ctx context.Context) {
	if h.redisClient == nil {
		return
	}
	_ = h.redisClient.Del(ctx, pendingCountCacheKey).Err()
}
