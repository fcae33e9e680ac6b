package dynrecord_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/migration-tracker/internal"
	"github.com/frahmantamala/migration-tracker/internal/auth"
	recordDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/record"
	"github.com/frahmantamala/migration-tracker/internal/dynrecord"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

// Mock record repository for testing
type mockRecordRepository struct {
	records     map[string]*recordDatamodel.ModuleRecord
	createCalls int
	updateCalls int
	createError error
	getError    error
	updateError error
	deleteError error
}

func newMockRecordRepository() *mockRecordRepository {
	return &mockRecordRepository{
		records: make(map[string]*recordDatamodel.ModuleRecord),
	}
}

func (m *mockRecordRepository) Create(record *recordDatamodel.ModuleRecord) error {
	m.createCalls++
	if m.createError != nil {
		return m.createError
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockRecordRepository) GetByID(projectID, moduleGroupID int64, id string) (*recordDatamodel.ModuleRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, exists := m.records[id]
	if !exists || record.ProjectID != projectID || record.ModuleGroupID != moduleGroupID {
		return nil, nil
	}
	return record, nil
}

func (m *mockRecordRepository) List(projectID, moduleGroupID int64, limit, offset int) ([]*recordDatamodel.ModuleRecord, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	var out []*recordDatamodel.ModuleRecord
	for _, record := range m.records {
		if record.ProjectID == projectID && record.ModuleGroupID == moduleGroupID && !record.IsDeleted {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockRecordRepository) Update(record *recordDatamodel.ModuleRecord) error {
	m.updateCalls++
	if m.updateError != nil {
		return m.updateError
	}
	m.records[record.ID] = record
	return nil
}

func (m *mockRecordRepository) SoftDelete(projectID, moduleGroupID int64, id string, deletedBy int64) (bool, error) {
	if m.deleteError != nil {
		return false, m.deleteError
	}
	record, exists := m.records[id]
	if !exists || record.ProjectID != projectID || record.ModuleGroupID != moduleGroupID || record.IsDeleted {
		return false, nil
	}
	record.IsDeleted = true
	record.UpdatedBy = deletedBy
	return true, nil
}

// Mock schema source for testing
type mockSchema struct {
	group      *fielddef.ModuleGroup
	fields     []*fielddef.FieldDefinition
	allFields  []*fielddef.FieldDefinition
	groupError error
}

func (m *mockSchema) GetGroup(moduleGroupID int64) (*fielddef.ModuleGroup, error) {
	if m.groupError != nil {
		return nil, m.groupError
	}
	if m.group == nil {
		return nil, internal.ErrModuleGroupNotFound
	}
	return m.group, nil
}

func (m *mockSchema) FieldsForGroup(moduleGroupID int64) ([]*fielddef.FieldDefinition, error) {
	return m.fields, nil
}

func (m *mockSchema) FieldsForUpdate(moduleGroupID int64) ([]*fielddef.FieldDefinition, error) {
	if m.allFields != nil {
		return m.allFields, nil
	}
	return m.fields, nil
}

// Mock lookup source for testing
type mockLookupSource struct {
	options map[string][]lookup.Option
	errors  map[string]error
	calls   int
}

func (m *mockLookupSource) Resolve(ctx context.Context, ref string) ([]lookup.Option, error) {
	m.calls++
	if err, ok := m.errors[ref]; ok {
		return nil, err
	}
	return m.options[ref], nil
}

var _ = Describe("RecordService", func() {
	var (
		repo      *mockRecordRepository
		schema    *mockSchema
		source    *mockLookupSource
		service   *dynrecord.Service
		logger    *slog.Logger
		member    *auth.UserContext
		adminUser *auth.UserContext
		ctx       context.Context
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockRecordRepository()
		schema = &mockSchema{
			group: &fielddef.ModuleGroup{ID: 1, Name: "application-portfolio"},
			fields: []*fielddef.FieldDefinition{
				textField(1, "app_name", 1, true),
			},
		}
		source = &mockLookupSource{}
		resolver := lookup.NewResolver(source, logger)
		service = dynrecord.NewService(repo, schema, resolver, auth.NewEvaluator(), nil, logger)

		member = &auth.UserContext{
			UserID: 7,
			Email:  "dina@mail.com",
			Role:   auth.RoleMember,
			Grants: []auth.Grant{{
				ModuleName: "application-portfolio",
				CanView:    true,
				CanCreate:  true,
				CanEdit:    true,
			}},
		}
		adminUser = &auth.UserContext{UserID: 1, Role: auth.RoleAdmin}
		ctx = context.Background()
	})

	Describe("SubmitRecord", func() {
		It("should persist a valid record with a fresh id", func() {
			record, err := service.SubmitRecord(ctx, 100, 1, member, map[string]any{"app_name": "billing"})

			Expect(err).NotTo(HaveOccurred())
			Expect(record.ID).NotTo(BeEmpty())
			Expect(record.Status).To(Equal(dynrecord.StatusActive))
			Expect(record.Fields).To(HaveKeyWithValue("app_name", "billing"))
			Expect(record.CreatedBy).To(Equal(int64(7)))
			Expect(repo.createCalls).To(Equal(1))
		})

		It("should deny a caller without the create capability before touching the store", func() {
			viewer := &auth.UserContext{
				UserID: 9,
				Role:   auth.RoleMember,
				Grants: []auth.Grant{{ModuleName: "application-portfolio", CanView: true}},
			}

			record, err := service.SubmitRecord(ctx, 100, 1, viewer, map[string]any{"app_name": "billing"})

			Expect(record).To(BeNil())
			Expect(err).To(Equal(internal.ErrPermissionDenied))
			Expect(repo.createCalls).To(BeZero())
		})

		It("should deny a caller with no grant for the module at all", func() {
			stranger := &auth.UserContext{UserID: 11, Role: auth.RoleMember}

			_, err := service.SubmitRecord(ctx, 100, 1, stranger, map[string]any{"app_name": "billing"})

			Expect(err).To(Equal(internal.ErrPermissionDenied))
			Expect(repo.createCalls).To(BeZero())
		})

		It("should allow an admin without grant rows", func() {
			record, err := service.SubmitRecord(ctx, 100, 1, adminUser, map[string]any{"app_name": "billing"})

			Expect(err).NotTo(HaveOccurred())
			Expect(record).NotTo(BeNil())
		})

		It("should reject invalid input without persisting anything", func() {
			record, err := service.SubmitRecord(ctx, 100, 1, member, map[string]any{})

			Expect(record).To(BeNil())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(repo.createCalls).To(BeZero())
		})

		It("should wrap store failures as storage errors", func() {
			repo.createError = errors.New("connection reset")

			_, err := service.SubmitRecord(ctx, 100, 1, member, map[string]any{"app_name": "billing"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeStorageFailure))
		})

		It("should validate select values against resolved options", func() {
			envField := textField(2, "environment", 2, true)
			envField.DataType = fielddef.DataTypeSelect
			envField.LookupSourceRef = strPtr("lookup:environments")
			schema.fields = append(schema.fields, envField)
			source.options = map[string][]lookup.Option{
				"lookup:environments": {{Key: "prod", Label: "Production"}},
			}

			record, err := service.SubmitRecord(ctx, 100, 1, member,
				map[string]any{"app_name": "billing", "environment": "prod"})

			Expect(err).NotTo(HaveOccurred())
			Expect(record.Fields).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should surface a lookup outage as a field violation, not a crash", func() {
			envField := textField(2, "environment", 2, true)
			envField.DataType = fielddef.DataTypeSelect
			envField.LookupSourceRef = strPtr("lookup:environments")
			schema.fields = append(schema.fields, envField)
			source.errors = map[string]error{"lookup:environments": errors.New("timeout")}

			_, err := service.SubmitRecord(ctx, 100, 1, member,
				map[string]any{"app_name": "billing", "environment": "prod"})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(repo.createCalls).To(BeZero())
		})
	})

	Describe("UpdateRecord", func() {
		var recordID string

		BeforeEach(func() {
			notesField := textField(3, "notes", 3, false)
			schema.fields = append(schema.fields, notesField)

			record, err := service.SubmitRecord(ctx, 100, 1, member,
				map[string]any{"app_name": "billing", "notes": "first pass"})
			Expect(err).NotTo(HaveOccurred())
			recordID = record.ID
		})

		It("should merge partial input into the stored payload", func() {
			updated, err := service.UpdateRecord(ctx, 100, 1, recordID, member,
				map[string]any{"notes": "second pass"})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Fields).To(HaveKeyWithValue("app_name", "billing"))
			Expect(updated.Fields).To(HaveKeyWithValue("notes", "second pass"))
		})

		It("should keep legacy values under deactivated definitions", func() {
			for _, def := range schema.fields {
				if def.Name == "notes" {
					def.IsActive = false
				}
			}

			updated, err := service.UpdateRecord(ctx, 100, 1, recordID, member,
				map[string]any{"app_name": "billing-v2"})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Fields).To(HaveKeyWithValue("app_name", "billing-v2"))
			Expect(updated.Fields).To(HaveKeyWithValue("notes", "first pass"))
		})

		It("should report NotFound for a record in another scope", func() {
			_, err := service.UpdateRecord(ctx, 999, 1, recordID, member,
				map[string]any{"notes": "second pass"})

			Expect(err).To(Equal(internal.ErrRecordNotFound))
		})
	})

	Describe("FinalizeRecord", func() {
		It("should require the save capability", func() {
			record, err := service.SubmitRecord(ctx, 100, 1, member, map[string]any{"app_name": "billing"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.FinalizeRecord(ctx, 100, 1, record.ID, member)
			Expect(err).To(Equal(internal.ErrPermissionDenied))

			finalized, err := service.FinalizeRecord(ctx, 100, 1, record.ID, adminUser)
			Expect(err).NotTo(HaveOccurred())
			Expect(finalized.Status).To(Equal(dynrecord.StatusFinalized))
		})
	})

	Describe("DeleteRecord", func() {
		It("should soft-delete and hide the record from reads", func() {
			record, err := service.SubmitRecord(ctx, 100, 1, adminUser, map[string]any{"app_name": "billing"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeleteRecord(ctx, 100, 1, record.ID, adminUser)).To(Succeed())

			_, err = service.GetRecord(100, 1, record.ID, adminUser)
			Expect(err).To(Equal(internal.ErrRecordNotFound))
		})

		It("should report NotFound for an unknown id", func() {
			err := service.DeleteRecord(ctx, 100, 1, "nope", adminUser)
			Expect(err).To(Equal(internal.ErrRecordNotFound))
		})
	})
})
