package dynrecord

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/auth"
	"github.com/frahmantamala/migration-tracker/internal/core/events"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

// SchemaAPI is what the gate needs from the field definition registry.
type SchemaAPI interface {
	GetGroup(moduleGroupID int64) (*fielddef.ModuleGroup, error)
	FieldsForGroup(moduleGroupID int64) ([]*fielddef.FieldDefinition, error)
	FieldsForUpdate(moduleGroupID int64) ([]*fielddef.FieldDefinition, error)
}

// Service is the module access gate. Every operation walks the same path:
// authorize, then validate, then persist. A rejection at any step leaves
// the store untouched; there are no partial writes to compensate for.
type Service struct {
	repo      RepositoryAPI
	schema    SchemaAPI
	resolver  *lookup.Resolver
	evaluator auth.PermissionEvaluator
	validator *Validator
	bus       *events.EventBus
	logger    *slog.Logger
}

func NewService(
	repo RepositoryAPI,
	schema SchemaAPI,
	resolver *lookup.Resolver,
	evaluator auth.PermissionEvaluator,
	bus *events.EventBus,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		schema:    schema,
		resolver:  resolver,
		evaluator: evaluator,
		validator: NewValidator(),
		bus:       bus,
		logger:    logger,
	}
}

// authorize resolves the group (so the module name is known) and checks
// the caller's capability. It runs before any validator or store call.
func (s *Service) authorize(user *auth.UserContext, moduleGroupID int64, action auth.Action) (*fielddef.ModuleGroup, error) {
	group, err := s.schema.GetGroup(moduleGroupID)
	if err != nil {
		return nil, err
	}

	if !s.evaluator.Authorize(user.Role, user.Grants, group.Name, action) {
		s.logger.Warn("record operation denied",
			"user_id", user.UserID,
			"module", group.Name,
			"action", action)
		return nil, internal.ErrPermissionDenied
	}

	return group, nil
}

// resolveOptions fetches the option sets for every select field in one
// batch. Lookups for distinct refs run concurrently and are joined here;
// validation does not start until all of them finished or failed.
func (s *Service) resolveOptions(ctx context.Context, defs []*fielddef.FieldDefinition) (map[string][]lookup.Option, map[string]error) {
	var refs []string
	for _, def := range defs {
		if def.DataType == fielddef.DataTypeSelect && def.HasLookup() {
			refs = append(refs, *def.LookupSourceRef)
		}
	}
	if len(refs) == 0 {
		return nil, nil
	}
	return s.resolver.NewBatch().ResolveAll(ctx, refs)
}

// SubmitRecord creates a record from candidate input.
func (s *Service) SubmitRecord(ctx context.Context, projectID, moduleGroupID int64, user *auth.UserContext, candidate map[string]any) (*Record, error) {
	group, err := s.authorize(user, moduleGroupID, auth.ActionCreate)
	if err != nil {
		return nil, err
	}

	defs, err := s.schema.FieldsForGroup(moduleGroupID)
	if err != nil {
		return nil, err
	}

	options, failures := s.resolveOptions(ctx, defs)

	normalized, violations := s.validator.Validate(defs, candidate, options, failures, nil)
	if violations != nil {
		s.logger.Info("record submission rejected",
			"project_id", projectID,
			"module", group.Name,
			"violations", len(violations))
		return nil, internal.NewValidationFailedError(violations)
	}

	now := time.Now()
	record := &Record{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		ModuleGroupID: moduleGroupID,
		Fields:        normalized,
		Status:        StatusActive,
		CreatedBy:     user.UserID,
		UpdatedBy:     user.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	dataRecord, err := ToDataModel(record)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode record payload", err)
	}

	if err := s.repo.Create(dataRecord); err != nil {
		s.logger.Error("failed to persist record", "error", err, "project_id", projectID, "module_group_id", moduleGroupID)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("record created",
		"record_id", record.ID,
		"project_id", projectID,
		"module", group.Name,
		"user_id", user.UserID)

	s.publish(ctx, events.NewRecordCreatedEvent(record.ID, projectID, moduleGroupID, user.UserID))

	return record, nil
}

// UpdateRecord merges a partial candidate into the existing payload and
// revalidates the result. Values under inactive definitions pass through
// unchanged.
func (s *Service) UpdateRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext, partial map[string]any) (*Record, error) {
	group, err := s.authorize(user, moduleGroupID, auth.ActionEdit)
	if err != nil {
		return nil, err
	}

	existing, err := s.getExisting(projectID, moduleGroupID, recordID)
	if err != nil {
		return nil, err
	}

	defs, err := s.schema.FieldsForUpdate(moduleGroupID)
	if err != nil {
		return nil, err
	}

	// partial updates merge into the stored mapping, they never replace it
	merged := make(map[string]any, len(existing.Fields)+len(partial))
	for k, v := range existing.Fields {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}

	options, failures := s.resolveOptions(ctx, defs)

	normalized, violations := s.validator.Validate(defs, merged, options, failures, existing.Fields)
	if violations != nil {
		s.logger.Info("record update rejected",
			"record_id", recordID,
			"module", group.Name,
			"violations", len(violations))
		return nil, internal.NewValidationFailedError(violations)
	}

	existing.Fields = normalized
	existing.UpdatedBy = user.UserID
	existing.UpdatedAt = time.Now()

	dataRecord, err := ToDataModel(existing)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode record payload", err)
	}

	if err := s.repo.Update(dataRecord); err != nil {
		s.logger.Error("failed to update record", "error", err, "record_id", recordID)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("record updated", "record_id", recordID, "module", group.Name, "user_id", user.UserID)

	s.publish(ctx, events.NewRecordUpdatedEvent(recordID, projectID, moduleGroupID, user.UserID))

	return existing, nil
}

// FinalizeRecord marks a record as finalized, the terminal status a
// completed checklist entry reaches.
func (s *Service) FinalizeRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext) (*Record, error) {
	group, err := s.authorize(user, moduleGroupID, auth.ActionSave)
	if err != nil {
		return nil, err
	}

	existing, err := s.getExisting(projectID, moduleGroupID, recordID)
	if err != nil {
		return nil, err
	}

	existing.Status = StatusFinalized
	existing.UpdatedBy = user.UserID
	existing.UpdatedAt = time.Now()

	dataRecord, err := ToDataModel(existing)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode record payload", err)
	}

	if err := s.repo.Update(dataRecord); err != nil {
		s.logger.Error("failed to finalize record", "error", err, "record_id", recordID)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("record finalized", "record_id", recordID, "module", group.Name, "user_id", user.UserID)

	return existing, nil
}

// GetRecord fetches one record within its scope.
func (s *Service) GetRecord(projectID, moduleGroupID int64, recordID string, user *auth.UserContext) (*Record, error) {
	if _, err := s.authorize(user, moduleGroupID, auth.ActionView); err != nil {
		return nil, err
	}
	return s.getExisting(projectID, moduleGroupID, recordID)
}

// ListRecords pages through the non-deleted records of a scope.
func (s *Service) ListRecords(projectID, moduleGroupID int64, user *auth.UserContext, limit, offset int) ([]*Record, error) {
	if _, err := s.authorize(user, moduleGroupID, auth.ActionView); err != nil {
		return nil, err
	}

	dataRecords, err := s.repo.List(projectID, moduleGroupID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list records", "error", err, "project_id", projectID, "module_group_id", moduleGroupID)
		return nil, internal.NewStorageError(err)
	}

	records := make([]*Record, 0, len(dataRecords))
	for _, dm := range dataRecords {
		record, err := FromDataModel(dm)
		if err != nil {
			return nil, internal.NewInternalError("failed to decode record payload", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteRecord soft-deletes: the row stays for audit history.
func (s *Service) DeleteRecord(ctx context.Context, projectID, moduleGroupID int64, recordID string, user *auth.UserContext) error {
	group, err := s.authorize(user, moduleGroupID, auth.ActionDelete)
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(projectID, moduleGroupID, recordID, user.UserID)
	if err != nil {
		s.logger.Error("failed to delete record", "error", err, "record_id", recordID)
		return internal.NewStorageError(err)
	}
	if !deleted {
		return internal.ErrRecordNotFound
	}

	s.logger.Info("record deleted", "record_id", recordID, "module", group.Name, "user_id", user.UserID)

	s.publish(ctx, events.NewRecordDeletedEvent(recordID, projectID, moduleGroupID, user.UserID))

	return nil
}

func (s *Service) getExisting(projectID, moduleGroupID int64, recordID string) (*Record, error) {
	dataRecord, err := s.repo.GetByID(projectID, moduleGroupID, recordID)
	if err != nil {
		s.logger.Error("failed to get record", "error", err, "record_id", recordID)
		return nil, internal.NewStorageError(err)
	}
	if dataRecord == nil || dataRecord.IsDeleted {
		return nil, internal.ErrRecordNotFound
	}

	record, err := FromDataModel(dataRecord)
	if err != nil {
		return nil, internal.NewInternalError("failed to decode record payload", err)
	}
	return record, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish record event", "event_type", event.EventType(), "error", err)
	}
}
