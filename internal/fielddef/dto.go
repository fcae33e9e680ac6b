package fielddef

import (
	"strings"

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/core/common/validation"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

// CreateFieldDTO is the admin request payload for registering a field.
type CreateFieldDTO struct {
	ModuleGroupID     int64    `json:"module_group_id"`
	Name              string   `json:"name"`
	Label             string   `json:"label"`
	DataType          DataType `json:"data_type"`
	IsRequired        bool     `json:"is_required"`
	DisplayOrder      int      `json:"display_order"`
	DefaultValue      *string  `json:"default_value,omitempty"`
	LookupSourceRef   *string  `json:"lookup_source_ref,omitempty"`
	ValidationPattern *string  `json:"validation_pattern,omitempty"`
	HelpText          *string  `json:"help_text,omitempty"`
}

func (dto *CreateFieldDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)

	builder := validation.NewBuilder()
	builder.Field("name", dto.Name).Required().MaxLength(100)
	builder.Field("label", dto.Label).Required().MaxLength(255)
	builder.Field("data_type", string(dto.DataType)).Custom(func(interface{}) *internal.ValidationError {
		if !dto.DataType.Valid() {
			return &internal.ValidationError{Field: "data_type", Message: "unknown data type", Code: string(internal.ErrCodeValidationFailed)}
		}
		return nil
	})
	builder.Field("lookup_source_ref", dto.LookupSourceRef).Custom(func(interface{}) *internal.ValidationError {
		if dto.DataType == DataTypeSelect && (dto.LookupSourceRef == nil || *dto.LookupSourceRef == "") {
			return &internal.ValidationError{Field: "lookup_source_ref", Message: "select fields need a lookup source", Code: string(internal.ErrCodeFieldRequired)}
		}
		return nil
	})
	return builder.Validate()
}

// UpdateFieldDTO carries partial edits; nil means leave unchanged.
type UpdateFieldDTO struct {
	Label             *string `json:"label,omitempty"`
	IsRequired        *bool   `json:"is_required,omitempty"`
	DisplayOrder      *int    `json:"display_order,omitempty"`
	DefaultValue      *string `json:"default_value,omitempty"`
	LookupSourceRef   *string `json:"lookup_source_ref,omitempty"`
	ValidationPattern *string `json:"validation_pattern,omitempty"`
	HelpText          *string `json:"help_text,omitempty"`
}

// FieldResponse is a definition plus its resolved options, ready for form
// rendering. Warnings carries per-field lookup degradation notices.
type FieldResponse struct {
	FieldDefinition
	Options []lookup.Option `json:"options,omitempty"`
}

type ListFieldsResponse struct {
	Fields   []FieldResponse `json:"fields"`
	Warnings []string        `json:"warnings,omitempty"`
}

type ModuleGroupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ModuleGroupsResponse struct {
	ModuleGroups []ModuleGroupResponse `json:"module_groups"`
}

type CreateGroupDTO struct {
	Name string `json:"name"`
}
