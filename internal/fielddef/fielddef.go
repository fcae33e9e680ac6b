package fielddef

import (
	"time"

	moduleDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/module"
)

// DataType is the set of value kinds a dynamic field can hold.
type DataType string

const (
	DataTypeText     DataType = "text"
	DataTypeTextarea DataType = "textarea"
	DataTypeNumber   DataType = "number"
	DataTypeDate     DataType = "date"
	DataTypeBoolean  DataType = "boolean"
	DataTypeSelect   DataType = "select"
)

func (d DataType) Valid() bool {
	switch d {
	case DataTypeText, DataTypeTextarea, DataTypeNumber, DataTypeDate, DataTypeBoolean, DataTypeSelect:
		return true
	}
	return false
}

// FieldDefinition is the domain view of one schema column of a module
// group. Name is unique within the group; DisplayOrder totally orders
// rendering and violation reporting, ties broken by ID ascending.
type FieldDefinition struct {
	ID                int64     `json:"id"`
	ModuleGroupID     int64     `json:"module_group_id"`
	Name              string    `json:"name"`
	Label             string    `json:"label"`
	DataType          DataType  `json:"data_type"`
	IsRequired        bool      `json:"is_required"`
	IsActive          bool      `json:"is_active"`
	DisplayOrder      int       `json:"display_order"`
	DefaultValue      *string   `json:"default_value,omitempty"`
	LookupSourceRef   *string   `json:"lookup_source_ref,omitempty"`
	ValidationPattern *string   `json:"validation_pattern,omitempty"`
	HelpText          *string   `json:"help_text,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HasLookup reports whether the field's options come from a lookup source.
func (f *FieldDefinition) HasLookup() bool {
	return f.LookupSourceRef != nil && *f.LookupSourceRef != ""
}

func (f *FieldDefinition) Deactivate() {
	f.IsActive = false
	f.UpdatedAt = time.Now()
}

type ModuleGroup struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDataModel(f *FieldDefinition) *moduleDatamodel.FieldDefinition {
	return &moduleDatamodel.FieldDefinition{
		ID:                f.ID,
		ModuleGroupID:     f.ModuleGroupID,
		Name:              f.Name,
		Label:             f.Label,
		DataType:          string(f.DataType),
		IsRequired:        f.IsRequired,
		IsActive:          f.IsActive,
		DisplayOrder:      f.DisplayOrder,
		DefaultValue:      f.DefaultValue,
		LookupSourceRef:   f.LookupSourceRef,
		ValidationPattern: f.ValidationPattern,
		HelpText:          f.HelpText,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func FromDataModel(f *moduleDatamodel.FieldDefinition) *FieldDefinition {
	return &FieldDefinition{
		ID:                f.ID,
		ModuleGroupID:     f.ModuleGroupID,
		Name:              f.Name,
		Label:             f.Label,
		DataType:          DataType(f.DataType),
		IsRequired:        f.IsRequired,
		IsActive:          f.IsActive,
		DisplayOrder:      f.DisplayOrder,
		DefaultValue:      f.DefaultValue,
		LookupSourceRef:   f.LookupSourceRef,
		ValidationPattern: f.ValidationPattern,
		HelpText:          f.HelpText,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func GroupFromDataModel(g *moduleDatamodel.ModuleGroup) *ModuleGroup {
	return &ModuleGroup{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
}
