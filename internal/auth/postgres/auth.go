package postgres

import (
	"database/sql"
	"fmt"

	"github.com/frahmantamala/migration-tracker/internal/auth"
	permissionDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/permission"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE email = ? AND is_active = true`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

// GetUserWithGrants loads the user row plus every module permission row
// belonging to the user. Admins typically have no rows; their role alone
// authorizes them.
func (r *Repository) GetUserWithGrants(userID int64) (*auth.UserContext, error) {
	var user auth.UserContext

	query := `SELECT id, email, role FROM users WHERE id = ? AND is_active = true`

	row := r.db.Raw(query, userID).Row()
	if err := row.Scan(&user.UserID, &user.Email, &user.Role); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	var perms []permissionDatamodel.ModulePermission
	if err := r.db.Where("user_id = ?", userID).Order("module_name ASC").Find(&perms).Error; err != nil {
		return nil, err
	}

	for _, p := range perms {
		user.Grants = append(user.Grants, auth.Grant{
			ModuleName: p.ModuleName,
			CanView:    p.CanView,
			CanCreate:  p.CanCreate,
			CanEdit:    p.CanEdit,
			CanSave:    p.CanSave,
			CanDelete:  p.CanDelete,
		})
	}

	return &user, nil
}
