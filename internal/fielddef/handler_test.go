package fielddef_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/migration-tracker/internal/auth"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	"github.com/frahmantamala/migration-tracker/internal/lookup"
)

// Mock schema service for handler tests
type mockFieldService struct {
	group  *fielddef.ModuleGroup
	fields []*fielddef.FieldDefinition
}

func (m *mockFieldService) GetGroup(moduleGroupID int64) (*fielddef.ModuleGroup, error) {
	return m.group, nil
}

func (m *mockFieldService) GetAllGroups() ([]*fielddef.ModuleGroup, error) {
	return []*fielddef.ModuleGroup{m.group}, nil
}

func (m *mockFieldService) CreateGroup(name string) (*fielddef.ModuleGroup, error) {
	return m.group, nil
}

func (m *mockFieldService) FieldsForGroup(moduleGroupID int64) ([]*fielddef.FieldDefinition, error) {
	return m.fields, nil
}

func (m *mockFieldService) CreateField(dto *fielddef.CreateFieldDTO) (*fielddef.FieldDefinition, error) {
	return nil, errors.New("not used")
}

func (m *mockFieldService) UpdateField(id int64, dto *fielddef.UpdateFieldDTO) (*fielddef.FieldDefinition, error) {
	return nil, errors.New("not used")
}

func (m *mockFieldService) DeactivateField(id int64) error {
	return errors.New("not used")
}

// Mock lookup source for handler tests
type handlerLookupSource struct {
	options map[string][]lookup.Option
	errs    map[string]error
}

func (m *handlerLookupSource) Resolve(ctx context.Context, ref string) ([]lookup.Option, error) {
	if err, ok := m.errs[ref]; ok {
		return nil, err
	}
	return m.options[ref], nil
}

var _ = Describe("FieldDef Handler", func() {
	var (
		service *mockFieldService
		source  *handlerLookupSource
		router  *chi.Mux
		viewer  *auth.UserContext
	)

	strPtr := func(s string) *string { return &s }

	listFields := func(user *auth.UserContext) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/modules/1/fields", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		service = &mockFieldService{
			group: &fielddef.ModuleGroup{ID: 1, Name: "application-portfolio"},
			fields: []*fielddef.FieldDefinition{
				{
					ID: 1, ModuleGroupID: 1, Name: "app_name", Label: "Application Name",
					DataType: fielddef.DataTypeText, IsActive: true, DisplayOrder: 1,
				},
				{
					ID: 2, ModuleGroupID: 1, Name: "environment", Label: "Environment",
					DataType: fielddef.DataTypeSelect, IsActive: true, DisplayOrder: 2,
					LookupSourceRef: strPtr("lookup:environments"),
				},
			},
		}
		source = &handlerLookupSource{
			options: map[string][]lookup.Option{
				"lookup:environments": {{Key: "dev", Label: "Development"}},
			},
		}

		resolver := lookup.NewResolver(source, logger)
		handler := fielddef.NewHandler(service, resolver, auth.NewEvaluator())

		router = chi.NewRouter()
		router.Get("/modules/{groupID}/fields", handler.ListFields)

		viewer = &auth.UserContext{
			UserID: 7,
			Role:   auth.RoleMember,
			Grants: []auth.Grant{{ModuleName: "application-portfolio", CanView: true}},
		}
	})

	Describe("ListFields", func() {
		It("should return definitions with resolved options", func() {
			rec := listFields(viewer)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp fielddef.ListFieldsResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Fields).To(HaveLen(2))
			Expect(resp.Fields[1].Options).To(HaveLen(1))
			Expect(resp.Fields[1].Options[0].Key).To(Equal("dev"))
			Expect(resp.Warnings).To(BeEmpty())
		})

		It("should degrade to a warning when a lookup source is down", func() {
			source.errs = map[string]error{"lookup:environments": errors.New("connection refused")}

			rec := listFields(viewer)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp fielddef.ListFieldsResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Fields).To(HaveLen(2))
			Expect(resp.Fields[1].Options).To(BeEmpty())
			Expect(resp.Warnings).To(HaveLen(1))
			Expect(resp.Warnings[0]).To(ContainSubstring("environment"))
		})

		It("should return 403 for a caller without the view capability", func() {
			stranger := &auth.UserContext{UserID: 9, Role: auth.RoleMember}

			rec := listFields(stranger)

			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should return 401 without an authenticated user", func() {
			rec := listFields(nil)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
