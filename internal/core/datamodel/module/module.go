package module

import "time"

// ModuleGroup is a named category of dynamic records sharing one field
// schema. Its identity is immutable once records exist against it.
type ModuleGroup struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (ModuleGroup) TableName() string {
	return "module_groups"
}

// FieldDefinition describes one column of a module group's record schema.
// Definitions are never physically deleted while records reference the
// group; is_active=false is the removal mechanism.
type FieldDefinition struct {
	ID                int64     `gorm:"primaryKey"`
	ModuleGroupID     int64     `gorm:"column:module_group_id;not null;uniqueIndex:uq_field_definitions_group_name,priority:1"`
	Name              string    `gorm:"column:name;not null;uniqueIndex:uq_field_definitions_group_name,priority:2"`
	Label             string    `gorm:"column:label;not null"`
	DataType          string    `gorm:"column:data_type;not null"`
	IsRequired        bool      `gorm:"column:is_required;default:false"`
	IsActive          bool      `gorm:"column:is_active;default:true"`
	DisplayOrder      int       `gorm:"column:display_order;not null;default:0"`
	DefaultValue      *string   `gorm:"column:default_value"`
	LookupSourceRef   *string   `gorm:"column:lookup_source_ref"`
	ValidationPattern *string   `gorm:"column:validation_pattern"`
	HelpText          *string   `gorm:"column:help_text"`
	CreatedAt         time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time `gorm:"column:updated_at;default:now()"`
}

func (FieldDefinition) TableName() string {
	return "field_definitions"
}
