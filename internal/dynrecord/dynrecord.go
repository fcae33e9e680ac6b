package dynrecord

import (
	"encoding/json"
	"time"

	recordDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/record"
)

// Record statuses.
const (
	StatusActive    = "active"
	StatusFinalized = "finalized"
)

// Record is the domain view of one dynamic record. Fields is the typed
// payload keyed by field name; every value in it was produced by the
// validator, never raw client input.
type Record struct {
	ID            string         `json:"id"`
	ProjectID     int64          `json:"project_id"`
	ModuleGroupID int64          `json:"module_group_id"`
	Fields        map[string]any `json:"fields"`
	Status        string         `json:"status"`
	IsDeleted     bool           `json:"is_deleted"`
	CreatedBy     int64          `json:"created_by"`
	UpdatedBy     int64          `json:"updated_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func ToDataModel(r *Record) (*recordDatamodel.ModuleRecord, error) {
	payload, err := json.Marshal(r.Fields)
	if err != nil {
		return nil, err
	}
	return &recordDatamodel.ModuleRecord{
		ID:            r.ID,
		ProjectID:     r.ProjectID,
		ModuleGroupID: r.ModuleGroupID,
		Fields:        payload,
		Status:        r.Status,
		IsDeleted:     r.IsDeleted,
		CreatedBy:     r.CreatedBy,
		UpdatedBy:     r.UpdatedBy,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}, nil
}

func FromDataModel(m *recordDatamodel.ModuleRecord) (*Record, error) {
	fields := make(map[string]any)
	if len(m.Fields) > 0 {
		if err := json.Unmarshal(m.Fields, &fields); err != nil {
			return nil, err
		}
	}
	return &Record{
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		ModuleGroupID: m.ModuleGroupID,
		Fields:        fields,
		Status:        m.Status,
		IsDeleted:     m.IsDeleted,
		CreatedBy:     m.CreatedBy,
		UpdatedBy:     m.UpdatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// RepositoryAPI is the store contract the gate persists through. Every
// operation is scoped to (projectID, moduleGroupID); an id that exists
// under a different scope behaves as not found. Serialization of
// concurrent updates to one record id is the store's responsibility.
type RepositoryAPI interface {
	Create(record *recordDatamodel.ModuleRecord) error
	GetByID(projectID, moduleGroupID int64, id string) (*recordDatamodel.ModuleRecord, error)
	List(projectID, moduleGroupID int64, limit, offset int) ([]*recordDatamodel.ModuleRecord, error)
	Update(record *recordDatamodel.ModuleRecord) error
	SoftDelete(projectID, moduleGroupID int64, id string, deletedBy int64) (bool, error)
}
