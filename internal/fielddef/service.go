package fielddef

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/frahmantamala/migration-tracker/internal"
	moduleDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/module"
)

type RepositoryAPI interface {
	GetGroupByID(id int64) (*moduleDatamodel.ModuleGroup, error)
	GetAllGroups() ([]*moduleDatamodel.ModuleGroup, error)
	CreateGroup(group *moduleDatamodel.ModuleGroup) error
	GetFieldsByGroup(moduleGroupID int64, includeInactive bool) ([]*moduleDatamodel.FieldDefinition, error)
	GetFieldByID(id int64) (*moduleDatamodel.FieldDefinition, error)
	GetFieldByName(moduleGroupID int64, name string) (*moduleDatamodel.FieldDefinition, error)
	CreateField(field *moduleDatamodel.FieldDefinition) error
	UpdateField(field *moduleDatamodel.FieldDefinition) error
	DeactivateField(id int64) error
}

// Service is the field definition registry: the single source of schema
// metadata for dynamic records. Read paths have no side effects.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// FieldsForGroup returns the active field definitions of a module group,
// ordered by display order (ties by id ascending). Used for rendering and
// for validating new records.
func (s *Service) FieldsForGroup(moduleGroupID int64) ([]*FieldDefinition, error) {
	return s.fields(moduleGroupID, false)
}

// FieldsForUpdate additionally includes inactive definitions so updates to
// records that still carry values under a now-inactive field can recognize
// those keys instead of dropping them.
func (s *Service) FieldsForUpdate(moduleGroupID int64) ([]*FieldDefinition, error) {
	return s.fields(moduleGroupID, true)
}

func (s *Service) fields(moduleGroupID int64, includeInactive bool) ([]*FieldDefinition, error) {
	group, err := s.repo.GetGroupByID(moduleGroupID)
	if err != nil {
		s.logger.Error("failed to get module group", "error", err, "module_group_id", moduleGroupID)
		return nil, internal.NewStorageError(err)
	}
	if group == nil {
		return nil, internal.ErrModuleGroupNotFound
	}

	dataFields, err := s.repo.GetFieldsByGroup(moduleGroupID, includeInactive)
	if err != nil {
		s.logger.Error("failed to get field definitions", "error", err, "module_group_id", moduleGroupID)
		return nil, internal.NewStorageError(err)
	}

	fields := make([]*FieldDefinition, 0, len(dataFields))
	for _, df := range dataFields {
		fields = append(fields, FromDataModel(df))
	}
	return fields, nil
}

// GetGroup resolves a module group by id, NotFound when unknown.
func (s *Service) GetGroup(moduleGroupID int64) (*ModuleGroup, error) {
	group, err := s.repo.GetGroupByID(moduleGroupID)
	if err != nil {
		s.logger.Error("failed to get module group", "error", err, "module_group_id", moduleGroupID)
		return nil, internal.NewStorageError(err)
	}
	if group == nil {
		return nil, internal.ErrModuleGroupNotFound
	}
	return GroupFromDataModel(group), nil
}

func (s *Service) GetAllGroups() ([]*ModuleGroup, error) {
	dataGroups, err := s.repo.GetAllGroups()
	if err != nil {
		s.logger.Error("failed to get module groups", "error", err)
		return nil, internal.NewStorageError(err)
	}

	groups := make([]*ModuleGroup, 0, len(dataGroups))
	for _, dg := range dataGroups {
		groups = append(groups, GroupFromDataModel(dg))
	}
	return groups, nil
}

func (s *Service) CreateGroup(name string) (*ModuleGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeFieldRequired)
	}

	group := &moduleDatamodel.ModuleGroup{Name: name}
	if err := s.repo.CreateGroup(group); err != nil {
		s.logger.Error("failed to create module group", "error", err, "name", name)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("module group created", "module_group_id", group.ID, "name", name)
	return GroupFromDataModel(group), nil
}

// CreateField registers a new field definition. Admin-only; name must be
// unique within the module group.
func (s *Service) CreateField(dto *CreateFieldDTO) (*FieldDefinition, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("field definition validation failed", "error", err, "module_group_id", dto.ModuleGroupID)
		return nil, err
	}

	group, err := s.repo.GetGroupByID(dto.ModuleGroupID)
	if err != nil {
		return nil, internal.NewStorageError(err)
	}
	if group == nil {
		return nil, internal.ErrModuleGroupNotFound
	}

	existing, err := s.repo.GetFieldByName(dto.ModuleGroupID, dto.Name)
	if err != nil {
		return nil, internal.NewStorageError(err)
	}
	if existing != nil {
		return nil, internal.ErrDuplicateFieldName
	}

	if dto.ValidationPattern != nil && *dto.ValidationPattern != "" {
		if _, err := regexp.Compile(*dto.ValidationPattern); err != nil {
			return nil, internal.NewValidationFieldError("validation_pattern", "invalid regular expression", internal.ErrCodePatternMismatch)
		}
	}

	field := &moduleDatamodel.FieldDefinition{
		ModuleGroupID:     dto.ModuleGroupID,
		Name:              dto.Name,
		Label:             dto.Label,
		DataType:          string(dto.DataType),
		IsRequired:        dto.IsRequired,
		IsActive:          true,
		DisplayOrder:      dto.DisplayOrder,
		DefaultValue:      dto.DefaultValue,
		LookupSourceRef:   dto.LookupSourceRef,
		ValidationPattern: dto.ValidationPattern,
		HelpText:          dto.HelpText,
	}

	if err := s.repo.CreateField(field); err != nil {
		s.logger.Error("failed to create field definition", "error", err, "module_group_id", dto.ModuleGroupID, "name", dto.Name)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("field definition created",
		"field_id", field.ID,
		"module_group_id", dto.ModuleGroupID,
		"name", dto.Name,
		"data_type", dto.DataType)

	return FromDataModel(field), nil
}

// UpdateField edits mutable attributes of a definition. Name and data type
// stay fixed once created; records already persisted depend on them.
func (s *Service) UpdateField(id int64, dto *UpdateFieldDTO) (*FieldDefinition, error) {
	field, err := s.repo.GetFieldByID(id)
	if err != nil {
		return nil, internal.NewStorageError(err)
	}
	if field == nil {
		return nil, internal.ErrFieldNotFound
	}

	if dto.Label != nil {
		field.Label = *dto.Label
	}
	if dto.IsRequired != nil {
		field.IsRequired = *dto.IsRequired
	}
	if dto.DisplayOrder != nil {
		field.DisplayOrder = *dto.DisplayOrder
	}
	if dto.DefaultValue != nil {
		field.DefaultValue = dto.DefaultValue
	}
	if dto.LookupSourceRef != nil {
		field.LookupSourceRef = dto.LookupSourceRef
	}
	if dto.ValidationPattern != nil {
		if *dto.ValidationPattern != "" {
			if _, err := regexp.Compile(*dto.ValidationPattern); err != nil {
				return nil, internal.NewValidationFieldError("validation_pattern", "invalid regular expression", internal.ErrCodePatternMismatch)
			}
		}
		field.ValidationPattern = dto.ValidationPattern
	}
	if dto.HelpText != nil {
		field.HelpText = dto.HelpText
	}

	if err := s.repo.UpdateField(field); err != nil {
		s.logger.Error("failed to update field definition", "error", err, "field_id", id)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("field definition updated", "field_id", id)
	return FromDataModel(field), nil
}

// DeactivateField is the removal mechanism. Definitions are never deleted
// while records reference their group; historical records keep rendering.
func (s *Service) DeactivateField(id int64) error {
	field, err := s.repo.GetFieldByID(id)
	if err != nil {
		return internal.NewStorageError(err)
	}
	if field == nil {
		return internal.ErrFieldNotFound
	}

	if err := s.repo.DeactivateField(id); err != nil {
		s.logger.Error("failed to deactivate field definition", "error", err, "field_id", id)
		return internal.NewStorageError(err)
	}

	s.logger.Info("field definition deactivated", "field_id", id, "name", field.Name)
	return nil
}
