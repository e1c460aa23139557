package handler

import (
	"net/http"

	"fintrack-service/internal/service"
	"fintrack-service/pkg/middleware"
	"fintrack-service/pkg/response"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service *service.AuthService
	logger  *zap.Logger
}

func NewAuthHandler(s *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: s, logger: logger}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))

	response.JSON(w, http.StatusCreated, "User registered successfully", map[string]interface{}{
		"user": user,
	})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeJSON(w, r, &body) {
		return
	}

	user, token, err := h.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Profile retrieved successfully", map[string]interface{}{
		"user": user,
	})
}

// GetAllUsers handles GET /auth/users.
func (h *AuthHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	users, err := h.service.ListUsers(r.Context(), p)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, "Users retrieved successfully", map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

// DeleteUser handles DELETE /auth/users/{id}.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.service.DeleteUser(r.Context(), p, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user deleted", zap.Int64("user_id", id), zap.Int64("deleted_by", p.ID))

	response.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

type updateRoleBody struct {
	Role string `json:"role"`
}

// UpdateUserRole handles PUT /auth/users/{id}/role.
func (h *AuthHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := urlParamInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var body updateRoleBody
	if !decodeJSON(w, r, &body) {
		return
	}

	user, err := h.service.UpdateUserRole(r.Context(), p, id, body.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user role updated",
		zap.Int64("user_id", id),
		zap.String("role", body.Role),
		zap.Int64("updated_by", p.ID),
	)

	response.JSON(w, http.StatusOK, "User role updated successfully", map[string]interface{}{
		"user": user,
	})
}
