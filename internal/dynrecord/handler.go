package dynrecord

import (
	"context"
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
	SubmitRecord(ctx context.Context, projectID, moduleGroupID int64, user *auth.UserContext, candidate map[string]any) (*Record, error)
	UpdateRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext, partial map[string]any) (*Record, error)
	FinalizeRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext) (*Record, error)
	GetRecord(projectID, moduleGroupID int64, recordID string, user *auth.UserContext) (*Record, error)
	ListRecords(projectID, moduleGroupID int64, user *auth.UserContext, limit, offset int) ([]*Record, error)
	DeleteRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (projectID, moduleGroupID int64, user *auth.UserContext, ok bool) {
	user, found := auth.UserFromContext(r.Context())
	if !found || user == nil {
		h.Logger.Error("record handler: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return 0, 0, nil, false
	}

	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid project ID")
		return 0, 0, nil, false
	}

	moduleGroupID, err = strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module group ID")
		return 0, 0, nil, false
	}

	return projectID, moduleGroupID, user, true
}

func (h *Handler) SubmitRecord(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}

	var dto SubmitRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitRecord: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.SubmitRecord(r.Context(), projectID, groupID, user, dto.Fields)
	if err != nil {
		h.Logger.Error("SubmitRecord: service error", "error", err, "project_id", projectID, "module_group_id", groupID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}
	recordID := chi.URLParam(r, "recordID")

	var dto SubmitRecordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRecord: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.UpdateRecord(r.Context(), projectID, groupID, recordID, user, dto.Fields)
	if err != nil {
		h.Logger.Error("UpdateRecord: service error", "error", err, "record_id", recordID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) FinalizeRecord(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}
	recordID := chi.URLParam(r, "recordID")

	record, err := h.Service.FinalizeRecord(r.Context(), projectID, groupID, recordID, user)
	if err != nil {
		h.Logger.Error("FinalizeRecord: service error", "error", err, "record_id", recordID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}
	recordID := chi.URLParam(r, "recordID")

	record, err := h.Service.GetRecord(projectID, groupID, recordID, user)
	if err != nil {
		h.Logger.Error("GetRecord: service error", "error", err, "record_id", recordID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}

	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	records, err := h.Service.ListRecords(projectID, groupID, user, limit, offset)
	if err != nil {
		h.Logger.Error("ListRecords: service error", "error", err, "project_id", projectID, "module_group_id", groupID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RecordsResponse{
		Records: records,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	projectID, groupID, user, ok := h.scope(w, r)
	if !ok {
		return
	}
	recordID := chi.URLParam(r, "recordID")

	if err := h.Service.DeleteRecord(r.Context(), projectID, groupID, recordID, user); err != nil {
		h.Logger.Error("DeleteRecord: service error", "error", err, "record_id", recordID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
