package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"module_records", "module_permissions", "field_definitions", "lookup_sources", "module_groups", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser := func(email, name, role string) int64 {
			var id int64
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
				fmt.Printf("user %s already exists\n", email)
				return id
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, true, now(), now())",
				email, name, string(hash), role).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", email, err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
				log.Fatalf("failed to look up user %s: %v", email, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", email, role)
			return id
		}

		adminID := seedUser("admin@mail.com", "Admin", "admin")
		memberID := seedUser("dina@mail.com", "Dina", "member")

		groups := []string{"application-portfolio", "server-inventory"}
		groupIDs := make(map[string]int64, len(groups))
		for _, name := range groups {
			var id int64
			if err := db.Raw("SELECT id FROM module_groups WHERE name = ?", name).Row().Scan(&id); err != nil {
				if err := db.Exec(
					"INSERT INTO module_groups (name, created_at, updated_at) VALUES (?, now(), now())", name).Error; err != nil {
					log.Fatalf("failed to insert module group %s: %v", name, err)
				}
				if err := db.Raw("SELECT id FROM module_groups WHERE name = ?", name).Row().Scan(&id); err != nil {
					log.Fatalf("failed to look up module group %s: %v", name, err)
				}
				fmt.Printf("Seeded module group: %s\n", name)
			}
			groupIDs[name] = id
		}

		lookups := []struct {
			Ref   string
			Query string
		}{
			{"lookup:environments", "SELECT key, label FROM lookup_environments ORDER BY label"},
			{"lookup:migration-waves", "SELECT key, label FROM lookup_migration_waves ORDER BY label"},
		}
		for _, l := range lookups {
			var exists int
			if err := db.Raw("SELECT 1 FROM lookup_sources WHERE ref = ?", l.Ref).Row().Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO lookup_sources (ref, query, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
					l.Ref, l.Query).Error; err != nil {
					log.Fatalf("failed to insert lookup source %s: %v", l.Ref, err)
				}
				fmt.Printf("Seeded lookup source: %s\n", l.Ref)
			}
		}

		type fieldSeed struct {
			Name      string
			Label     string
			DataType  string
			Required  bool
			Order     int
			Default   *string
			LookupRef *string
			Pattern   *string
		}
		strPtr := func(s string) *string { return &s }

		appFields := []fieldSeed{
			{Name: "app_name", Label: "Application Name", DataType: "text", Required: true, Order: 1},
			{Name: "environment", Label: "Environment", DataType: "select", Required: true, Order: 2, LookupRef: strPtr("lookup:environments")},
			{Name: "migration_wave", Label: "Migration Wave", DataType: "select", Required: false, Order: 3, LookupRef: strPtr("lookup:migration-waves")},
			{Name: "cutover_date", Label: "Cutover Date", DataType: "date", Required: false, Order: 4},
			{Name: "monthly_cost", Label: "Monthly Cost", DataType: "number", Required: false, Order: 5, Default: strPtr("0")},
			{Name: "decommission", Label: "Decommission After Migration", DataType: "boolean", Required: false, Order: 6, Default: strPtr("false")},
			{Name: "notes", Label: "Notes", DataType: "textarea", Required: false, Order: 7},
		}

		for _, f := range appFields {
			groupID := groupIDs["application-portfolio"]
			var exists int
			if err := db.Raw("SELECT 1 FROM field_definitions WHERE module_group_id = ? AND name = ?", groupID, f.Name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(`
				INSERT INTO field_definitions
					(module_group_id, name, label, data_type, is_required, is_active, display_order, default_value, lookup_source_ref, validation_pattern, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, true, ?, ?, ?, ?, now(), now())`,
				groupID, f.Name, f.Label, f.DataType, f.Required, f.Order, f.Default, f.LookupRef, f.Pattern).Error; err != nil {
				log.Fatalf("failed to insert field %s: %v", f.Name, err)
			}
			fmt.Printf("Seeded field definition: %s\n", f.Name)
		}

		grantMember := func(userID int64, moduleName string, view, create, edit bool) {
			var exists int
			if err := db.Raw("SELECT 1 FROM module_permissions WHERE user_id = ? AND module_name = ?", userID, moduleName).Row().Scan(&exists); err == nil {
				return
			}
			if err := db.Exec(`
				INSERT INTO module_permissions
					(user_id, module_name, can_view, can_create, can_edit, can_save, can_delete, granted_by, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, false, false, ?, now(), now())`,
				userID, moduleName, view, create, edit, adminID).Error; err != nil {
				log.Fatalf("failed to grant %s to user %d: %v", moduleName, userID, err)
			}
			fmt.Printf("Granted %s to user %d\n", moduleName, userID)
		}

		// member can view and create records, but not finalize or delete
		grantMember(memberID, "application-portfolio", true, true, true)

		fmt.Println("Seeding complete")
	},
}
