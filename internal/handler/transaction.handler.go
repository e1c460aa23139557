package handler

import (
	"net/http"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/service"
	"fintrack-service/pkg/response"

	"go.uber.org/zap"
)

type TransactionHandler struct {
	service *service.TransactionService
	logger  *zap.Logger
}

func NewTransactionHandler(s *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{service: s, logger: logger}
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req service.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	trx, err := h.service.Create(r.Context(), p, &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, "Transaction created successfully", map[string]interface{}{
		"transaction": trx,
	})
}

// GetAll handles GET /transactions with an optional ?type= filter.
func (h *TransactionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var trxType *domain.TransactionType
	if s := r.URL.Query().Get("type"); s != "" {
		t := domain.TransactionType(s)
		if t != domain.TransactionTypeIncome && t != domain.TransactionTypeExpense {
			response.Error(w, http.StatusBadRequest, "unknown transaction type filter")
			return
		}
		trxType = &t
	}

	list, err := h.service.List(r.Context(), p, trxType)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Transactions retrieved successfully", map[string]interface{}{
		"transactions": list,
		"total":        len(list),
	})
}

// GetByID handles GET /transactions/{id}.
func (h *TransactionHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	trx, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Transaction retrieved successfully", map[string]interface{}{
		"transaction": trx,
	})
}

// Delete handles DELETE /transactions/{id}, the admin-only direct path.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.service.Delete(r.Context(), p, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("transaction deleted directly", zap.Int64("transaction_id", id), zap.Int64("deleted_by", p.ID))

	response.JSON(w, http.StatusOK, "Transaction deleted successfully", nil)
}
