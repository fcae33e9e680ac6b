package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	moduleDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/module"
	"github.com/frahmantamala/migration-tracker/internal/fielddef"
	fielddefPostgres "github.com/frahmantamala/migration-tracker/internal/fielddef/postgres"
)

func TestFieldDefPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FieldDef Postgres Suite")
}

// SQLite-compatible models for testing
type SQLiteModuleGroup struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteModuleGroup) TableName() string {
	return "module_groups"
}

type SQLiteFieldDefinition struct {
	ID                int64     `gorm:"primaryKey"`
	ModuleGroupID     int64     `gorm:"column:module_group_id;not null;uniqueIndex:uq_field_definitions_group_name,priority:1"`
	Name              string    `gorm:"column:name;not null;uniqueIndex:uq_field_definitions_group_name,priority:2"`
	Label             string    `gorm:"column:label;not null"`
	DataType          string    `gorm:"column:data_type;not null"`
	IsRequired        bool      `gorm:"column:is_required;default:false"`
	IsActive          bool      `gorm:"column:is_active;default:false"`
	DisplayOrder      int       `gorm:"column:display_order;not null;default:0"`
	DefaultValue      *string   `gorm:"column:default_value"`
	LookupSourceRef   *string   `gorm:"column:lookup_source_ref"`
	ValidationPattern *string   `gorm:"column:validation_pattern"`
	HelpText          *string   `gorm:"column:help_text"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (SQLiteFieldDefinition) TableName() string {
	return "field_definitions"
}

var _ = Describe("FieldDef PostgreSQL Repository", func() {
	var (
		db      *gorm.DB
		repo    fielddef.RepositoryAPI
		groupID int64
	)

	newField := func(name string, order int, active bool) *moduleDatamodel.FieldDefinition {
		return &moduleDatamodel.FieldDefinition{
			ModuleGroupID: groupID,
			Name:          name,
			Label:         name,
			DataType:      string(fielddef.DataTypeText),
			IsActive:      active,
			DisplayOrder:  order,
		}
	}

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteModuleGroup{}, &SQLiteFieldDefinition{})
		Expect(err).NotTo(HaveOccurred())

		repo = fielddefPostgres.NewFieldDefinitionRepository(db)

		group := &moduleDatamodel.ModuleGroup{Name: "application-portfolio"}
		Expect(repo.CreateGroup(group)).To(Succeed())
		groupID = group.ID
	})

	Describe("groups", func() {
		It("should fetch a created group by id", func() {
			got, err := repo.GetGroupByID(groupID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.Name).To(Equal("application-portfolio"))
		})

		It("should return nil for an unknown group", func() {
			got, err := repo.GetGroupByID(999)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should list groups sorted by name", func() {
			Expect(repo.CreateGroup(&moduleDatamodel.ModuleGroup{Name: "server-inventory"})).To(Succeed())
			Expect(repo.CreateGroup(&moduleDatamodel.ModuleGroup{Name: "database-catalog"})).To(Succeed())

			groups, err := repo.GetAllGroups()
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(3))
			Expect(groups[0].Name).To(Equal("application-portfolio"))
			Expect(groups[1].Name).To(Equal("database-catalog"))
			Expect(groups[2].Name).To(Equal("server-inventory"))
		})
	})

	Describe("GetFieldsByGroup", func() {
		It("should order by display order with id as tiebreaker", func() {
			Expect(repo.CreateField(newField("gamma", 2, true))).To(Succeed())
			Expect(repo.CreateField(newField("alpha", 1, true))).To(Succeed())
			Expect(repo.CreateField(newField("beta", 2, true))).To(Succeed())

			fields, err := repo.GetFieldsByGroup(groupID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(fields).To(HaveLen(3))
			Expect(fields[0].Name).To(Equal("alpha"))
			Expect(fields[1].Name).To(Equal("gamma"))
			Expect(fields[2].Name).To(Equal("beta"))
		})

		It("should include inactive definitions only when asked", func() {
			Expect(repo.CreateField(newField("active_field", 1, true))).To(Succeed())
			Expect(repo.CreateField(newField("inactive_field", 2, false))).To(Succeed())

			active, err := repo.GetFieldsByGroup(groupID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].Name).To(Equal("active_field"))

			all, err := repo.GetFieldsByGroup(groupID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})
	})

	Describe("field lookups and mutation", func() {
		It("should find fields by name within a group", func() {
			Expect(repo.CreateField(newField("app_name", 1, true))).To(Succeed())

			got, err := repo.GetFieldByName(groupID, "app_name")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())

			got, err = repo.GetFieldByName(groupID, "ghost")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should reject duplicate names within a group at the constraint level", func() {
			Expect(repo.CreateField(newField("app_name", 1, true))).To(Succeed())
			Expect(repo.CreateField(newField("app_name", 2, true))).NotTo(Succeed())
		})

		It("should deactivate without deleting", func() {
			field := newField("app_name", 1, true)
			Expect(repo.CreateField(field)).To(Succeed())

			Expect(repo.DeactivateField(field.ID)).To(Succeed())

			got, err := repo.GetFieldByID(field.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
			Expect(got.IsActive).To(BeFalse())
		})
	})
})
