package postgres

import (
	"time"

	recordDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/record"
	"github.com/frahmantamala/migration-tracker/internal/dynrecord"
	"gorm.io/gorm"
)

// RecordRepository implements the dynrecord store contract using GORM.
// Scope columns are part of every WHERE clause so an id reused outside its
// (project, module group) scope behaves as missing.
type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) dynrecord.RepositoryAPI {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Create(record *recordDatamodel.ModuleRecord) error {
	return r.db.Create(record).Error
}

func (r *RecordRepository) GetByID(projectID, moduleGroupID int64, id string) (*recordDatamodel.ModuleRecord, error) {
	var record recordDatamodel.ModuleRecord
	err := r.db.
		Where("id = ? AND project_id = ? AND module_group_id = ?", id, projectID, moduleGroupID).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *RecordRepository) List(projectID, moduleGroupID int64, limit, offset int) ([]*recordDatamodel.ModuleRecord, error) {
	var records []*recordDatamodel.ModuleRecord
	err := r.db.
		Where("project_id = ? AND module_group_id = ? AND is_deleted = ?", projectID, moduleGroupID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

func (r *RecordRepository) Update(record *recordDatamodel.ModuleRecord) error {
	record.UpdatedAt = time.Now()
	result := r.db.
		Where("project_id = ? AND module_group_id = ?", record.ProjectID, record.ModuleGroupID).
		Save(record)
	return result.Error
}

// SoftDelete flips is_deleted and reports whether a live row was hit.
// Rows are never physically removed; audit history depends on them.
func (r *RecordRepository) SoftDelete(projectID, moduleGroupID int64, id string, deletedBy int64) (bool, error) {
	result := r.db.Model(&recordDatamodel.ModuleRecord{}).
		Where("id = ? AND project_id = ? AND module_group_id = ? AND is_deleted = ?", id, projectID, moduleGroupID, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_by": deletedBy,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
