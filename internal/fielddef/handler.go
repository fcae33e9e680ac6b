package fielddef

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/migration-tracker/internal/auth"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
	"github.com/frahmantamala/migration-tracker/internal/transport"
	"github.com/frahmantamala/migration-tracker/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetGroup(moduleGroupID int64) (*ModuleGroup, error)
	GetAllGroups() ([]*ModuleGroup, error)
	CreateGroup(name string) (*ModuleGroup, error)
	FieldsForGroup(moduleGroupID int64) ([]*FieldDefinition, error)
	CreateField(dto *CreateFieldDTO) (*FieldDefinition, error)
	UpdateField(id int64, dto *UpdateFieldDTO) (*FieldDefinition, error)
	DeactivateField(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	Resolver  *lookup.Resolver
	Evaluator auth.PermissionEvaluator
}

func NewHandler(service ServiceAPI, resolver *lookup.Resolver, evaluator auth.PermissionEvaluator) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Resolver:    resolver,
		Evaluator:   evaluator,
	}
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.GetAllGroups()
	if err != nil {
		h.Logger.Error("ListGroups: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	resp := ModuleGroupsResponse{ModuleGroups: make([]ModuleGroupResponse, 0, len(groups))}
	for _, g := range groups {
		resp.ModuleGroups = append(resp.ModuleGroups, ModuleGroupResponse{ID: g.ID, Name: g.Name})
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var dto CreateGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateGroup: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	group, err := h.Service.CreateGroup(dto.Name)
	if err != nil {
		h.Logger.Error("CreateGroup: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ModuleGroupResponse{ID: group.ID, Name: group.Name})
}

// ListFields renders a module group's active schema: definitions in display
// order plus resolved select options. A lookup source being down degrades to
// a warning on the affected fields, never a failed response.
func (h *Handler) ListFields(w http.ResponseWriter, r *http.Request) {
	user, found := auth.UserFromContext(r.Context())
	if !found || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module group ID")
		return
	}

	group, err := h.Service.GetGroup(groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if !h.Evaluator.Authorize(user.Role, user.Grants, group.Name, auth.ActionView) {
		h.Logger.Warn("ListFields: access denied", "user_id", user.UserID, "module_group_id", groupID)
		h.WriteError(w, http.StatusForbidden, "permission denied")
		return
	}

	fields, err := h.Service.FieldsForGroup(groupID)
	if err != nil {
		h.Logger.Error("ListFields: service error", "error", err, "module_group_id", groupID)
		h.HandleServiceError(w, err)
		return
	}

	refs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.DataType == DataTypeSelect && f.HasLookup() {
			refs = append(refs, *f.LookupSourceRef)
		}
	}
	options, failures := h.Resolver.NewBatch().ResolveAll(r.Context(), refs)

	resp := ListFieldsResponse{Fields: make([]FieldResponse, 0, len(fields))}
	for _, f := range fields {
		fr := FieldResponse{FieldDefinition: *f}
		if f.DataType == DataTypeSelect && f.HasLookup() {
			ref := *f.LookupSourceRef
			fr.Options = options[ref]
			if _, failed := failures[ref]; failed {
				resp.Warnings = append(resp.Warnings, fmt.Sprintf("options unavailable for field %q", f.Name))
			}
		}
		resp.Fields = append(resp.Fields, fr)
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateField(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid module group ID")
		return
	}

	var dto CreateFieldDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateField: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.ModuleGroupID = groupID

	field, err := h.Service.CreateField(&dto)
	if err != nil {
		h.Logger.Error("CreateField: service error", "error", err, "module_group_id", groupID, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, field)
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := strconv.ParseInt(chi.URLParam(r, "fieldID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid field ID")
		return
	}

	var dto UpdateFieldDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateField: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	field, err := h.Service.UpdateField(fieldID, &dto)
	if err != nil {
		h.Logger.Error("UpdateField: service error", "error", err, "field_id", fieldID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, field)
}

func (h *Handler) DeactivateField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := strconv.ParseInt(chi.URLParam(r, "fieldID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid field ID")
		return
	}

	if err := h.Service.DeactivateField(fieldID); err != nil {
		h.Logger.Error("DeactivateField: service error", "error", err, "field_id", fieldID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
