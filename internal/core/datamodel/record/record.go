package record

import (
	"encoding/json"
	"time"
)

// ModuleRecord is one stored instance of a module group's schema, scoped to
// a project. Fields holds the validated payload as JSONB; only normalized
// values produced by the validator ever reach this column.
type ModuleRecord struct {
	ID            string          `gorm:"primaryKey;column:id"`
	ProjectID     int64           `gorm:"column:project_id;not null;index:idx_module_records_scope,priority:1"`
	ModuleGroupID int64           `gorm:"column:module_group_id;not null;index:idx_module_records_scope,priority:2"`
	Fields        json.RawMessage `gorm:"column:fields;type:jsonb;not null"`
	Status        string          `gorm:"column:status;default:active"`
	IsDeleted     bool            `gorm:"column:is_deleted;default:false"`
	CreatedBy     int64           `gorm:"column:created_by"`
	UpdatedBy     int64           `gorm:"column:updated_by"`
	CreatedAt     time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;default:now()"`
}

func (ModuleRecord) TableName() string {
	return "module_records"
}
