package http_handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/acme/identity-service/internal/application/identity"
	"github.com/acme/identity-service/internal/domain"
	"github.com/acme/identity-service/internal/logger"
	"github.com/acme/identity-service/internal/transport/http/dto"
	"github.com/acme/identity-service/internal/transport/http/middleware"
	"github.com/acme/identity-service/internal/transport/http/response"
)

type AdminHandler struct {
	svc *identity.Service
}

func NewAdminHandler(svc *identity.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	_, role := actor(r)

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.WriteError(w, r, domain.ErrInvalidField("limit", "must be an integer"))
			return
		}
		limit = n
	}

	users, err := h.svc.ListUsers(r.Context(), role, limit)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.ListUsersResponse{Users: dto.ToUserViews(users)})
}

func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := actor(r)

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	var req dto.SetUserRoleRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	stored, err := h.svc.SetUserRole(r.Context(), actorID, actorRole, targetID, req.Role)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Str("role", stored).
		Msg("admin_role_updated")

	response.OK(w, dto.SetRoleResponse{UserID: targetID, Role: stored})
}

func (h *AdminHandler) RemoveUser(w http.ResponseWriter, r *http.Request) {
	actorID, actorRole := actor(r)

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.RemoveUser(r.Context(), actorID, actorRole, targetID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("actor_id", actorID).
		Str("target_id", targetID).
		Msg("admin_user_removed")

	response.NoContent(w)
}

// BanUser is routed but intentionally answers not_available (501); the
// moderation workflow lives in a later milestone.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	_, actorRole := actor(r)

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.BanUser(r.Context(), actorRole, targetID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, map[string]string{"status": "banned", "user_id": targetID})
}

func actor(r *http.Request) (id, role string) {
	id, _ = middleware.UserIDFromContext(r.Context())
	role, _ = middleware.RoleFromContext(r.Context())
	return id, role
}
