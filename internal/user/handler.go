package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/migration-tracker/internal/auth"
	"github.com/frahmantamala/migration-tracker/internal/transport"
	"github.com/frahmantamala/migration-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Profile(userID int64) (*ProfileResponse, error)
	GrantsForUser(userID int64) ([]GrantResponse, error)
	UpsertGrant(userID int64, moduleName string, dto GrantDTO, grantedBy int64) (*GrantResponse, error)
	RevokeGrant(userID int64, moduleName string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetCurrentUser: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.Service.Profile(user.UserID)
	if err != nil {
		h.Logger.Error("GetCurrentUser: service error", "error", err, "user_id", user.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) targetUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return 0, false
	}
	return userID, true
}

// ListGrants handles GET /admin/users/{userID}/grants
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUserID(w, r)
	if !ok {
		return
	}

	grants, err := h.Service.GrantsForUser(userID)
	if err != nil {
		h.Logger.Error("ListGrants: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, GrantsResponse{Grants: grants})
}

// UpsertGrant handles PUT /admin/users/{userID}/grants/{moduleName}
func (h *Handler) UpsertGrant(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.UserFromContext(r.Context())
	if !ok || admin == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, ok := h.targetUserID(w, r)
	if !ok {
		return
	}
	moduleName := chi.URLParam(r, "moduleName")

	var dto GrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpsertGrant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.UpsertGrant(userID, moduleName, dto, admin.UserID)
	if err != nil {
		h.Logger.Error("UpsertGrant: service error", "error", err, "user_id", userID, "module", moduleName)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, grant)
}

// RevokeGrant handles DELETE /admin/users/{userID}/grants/{moduleName}
func (h *Handler) RevokeGrant(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.targetUserID(w, r)
	if !ok {
		return
	}
	moduleName := chi.URLParam(r, "moduleName")

	if err := h.Service.RevokeGrant(userID, moduleName); err != nil {
		h.Logger.Error("RevokeGrant: service error", "error", err, "user_id", userID, "module", moduleName)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
