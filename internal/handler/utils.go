package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fintrack-service/internal/domain"
	"fintrack-service/pkg/middleware"
	"fintrack-service/pkg/response"
	"fintrack-service/pkg/xerrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// principalFromContext rebuilds the resolved principal the auth middleware
// placed in the request context.
func principalFromContext(ctx context.Context) (domain.Principal, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return domain.Principal{}, false
	}
	roleStr, ok := middleware.GetRole(ctx)
	if !ok {
		return domain.Principal{}, false
	}
	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return domain.Principal{}, false
	}
	return domain.Principal{ID: userID, Role: role}, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, xerrors.ErrInvalidRequest.Error())
		return false
	}
	return true
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v <= 0 {
		return 0, xerrors.ErrInvalidInput
	}
	return v, nil
}

// writeServiceError maps sentinel errors onto the HTTP taxonomy. Anything
// unclassified becomes a generic 500 without leaking internals.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, xerrors.ErrUnauthorized),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken),
		errors.Is(err, xerrors.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, xerrors.ErrForbidden),
		errors.Is(err, xerrors.ErrNotTransactionOwner):
		response.Error(w, http.StatusForbidden, err.Error())

	case errors.Is(err, xerrors.ErrSelfActionNotAllowed),
		errors.Is(err, xerrors.ErrSelfReviewNotAllowed),
		errors.Is(err, xerrors.ErrInvalidDecision),
		errors.Is(err, xerrors.ErrInvalidRole),
		errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrNameRequired),
		errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidEmailFormat),
		errors.Is(err, xerrors.ErrPasswordTooShort):
		response.Error(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrUserNotFound),
		errors.Is(err, xerrors.ErrTransactionNotFound),
		errors.Is(err, xerrors.ErrDeletionRequestNotFound):
		response.Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, xerrors.ErrDuplicateDeletionRequest),
		errors.Is(err, xerrors.ErrAlreadyReviewed),
		errors.Is(err, xerrors.ErrEmailAlreadyInUse):
		response.Error(w, http.StatusConflict, err.Error())

	case errors.Is(err, xerrors.ErrDeletionFailed):
		if logger != nil {
			logger.Error("approval transaction aborted", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, xerrors.ErrDeletionFailed.Error())

	default:
		if logger != nil {
			logger.Error("internal error", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, xerrors.ErrInternalServer.Error())
	}
}
