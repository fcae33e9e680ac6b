package postgres

import (
	moduleDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/module"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"gorm.io/gorm"
)

type FieldDefinitionRepository struct {
	db *gorm.DB
}

func NewFieldDefinitionRepository(db *gorm.DB) fielddef.RepositoryAPI {
	return &FieldDefinitionRepository{db: db}
}

func (r *FieldDefinitionRepository) GetGroupByID(id int64) (*moduleDatamodel.ModuleGroup, error) {
	var group moduleDatamodel.ModuleGroup
	err := r.db.Where("id = ?", id).First(&group).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *FieldDefinitionRepository) GetAllGroups() ([]*moduleDatamodel.ModuleGroup, error) {
	var groups []*moduleDatamodel.ModuleGroup
	err := r.db.Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *FieldDefinitionRepository) CreateGroup(group *moduleDatamodel.ModuleGroup) error {
	return r.db.Create(group).Error
}

// GetFieldsByGroup returns definitions in rendering order: display_order
// ascending, ties broken by id ascending.
func (r *FieldDefinitionRepository) GetFieldsByGroup(moduleGroupID int64, includeInactive bool) ([]*moduleDatamodel.FieldDefinition, error) {
	query := r.db.Where("module_group_id = ?", moduleGroupID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var fields []*moduleDatamodel.FieldDefinition
	err := query.Order("display_order ASC, id ASC").Find(&fields).Error
	return fields, err
}

func (r *FieldDefinitionRepository) GetFieldByID(id int64) (*moduleDatamodel.FieldDefinition, error) {
	var field moduleDatamodel.FieldDefinition
	err := r.db.Where("id = ?", id).First(&field).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}

func (r *FieldDefinitionRepository) GetFieldByName(moduleGroupID int64, name string) (*moduleDatamodel.FieldDefinition, error) {
	var field moduleDatamodel.FieldDefinition
	err := r.db.Where("module_group_id = ? AND name = ?", moduleGroupID, name).First(&field).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &field, nil
}

func (r *FieldDefinitionRepository) CreateField(field *moduleDatamodel.FieldDefinition) error {
	return r.db.Create(field).Error
}

func (r *FieldDefinitionRepository) UpdateField(field *moduleDatamodel.FieldDefinition) error {
	return r.db.Save(field).Error
}

func (r *FieldDefinitionRepository) DeactivateField(id int64) error {
	return r.db.Model(&moduleDatamodel.FieldDefinition{}).Where("id = ?", id).Update("is_active", false).Error
}
