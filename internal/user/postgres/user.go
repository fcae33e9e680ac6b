package postgres

import (
	"database/sql"
	"time"

	userDatamodel "github.com/frahmantamala/migration-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/migration-tracker/internal/user"
	"github.com/jmoiron/sqlx"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

type grantRow struct {
	UserID     int64     `db:"user_id"`
	ModuleName string    `db:"module_name"`
	CanView    bool      `db:"can_view"`
	CanCreate  bool      `db:"can_create"`
	CanEdit    bool      `db:"can_edit"`
	CanSave    bool      `db:"can_save"`
	CanDelete  bool      `db:"can_delete"`
	GrantedBy  *int64    `db:"granted_by"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (row grantRow) toResponse() user.GrantResponse {
	return user.GrantResponse{
		UserID:     row.UserID,
		ModuleName: row.ModuleName,
		CanView:    row.CanView,
		CanCreate:  row.CanCreate,
		CanEdit:    row.CanEdit,
		CanSave:    row.CanSave,
		CanDelete:  row.CanDelete,
		GrantedBy:  row.GrantedBy,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (r *UserRepository) GetByID(userID int64) (*user.User, error) {
	var row userDatamodel.User
	err := r.db.Get(&row,
		"SELECT id, email, name, role, is_active, created_at, updated_at FROM users WHERE id = $1",
		userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, err
	}

	return user.FromDataModel(&row), nil
}

func (r *UserRepository) GetGrants(userID int64) ([]user.GrantResponse, error) {
	var rows []grantRow
	err := r.db.Select(&rows, `
		SELECT user_id, module_name, can_view, can_create, can_edit, can_save, can_delete, granted_by, updated_at
		FROM module_permissions
		WHERE user_id = $1
		ORDER BY module_name ASC`, userID)
	if err != nil {
		return nil, err
	}

	grants := make([]user.GrantResponse, 0, len(rows))
	for _, row := range rows {
		grants = append(grants, row.toResponse())
	}
	return grants, nil
}

func (r *UserRepository) UpsertGrant(userID int64, moduleName string, dto user.GrantDTO, grantedBy int64) (*user.GrantResponse, error) {
	var row grantRow
	err := r.db.Get(&row, `
		INSERT INTO module_permissions (user_id, module_name, can_view, can_create, can_edit, can_save, can_delete, granted_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (user_id, module_name) DO UPDATE SET
			can_view = EXCLUDED.can_view,
			can_create = EXCLUDED.can_create,
			can_edit = EXCLUDED.can_edit,
			can_save = EXCLUDED.can_save,
			can_delete = EXCLUDED.can_delete,
			granted_by = EXCLUDED.granted_by,
			updated_at = NOW()
		RETURNING user_id, module_name, can_view, can_create, can_edit, can_save, can_delete, granted_by, updated_at`,
		userID, moduleName, dto.CanView, dto.CanCreate, dto.CanEdit, dto.CanSave, dto.CanDelete, grantedBy)
	if err != nil {
		return nil, err
	}

	resp := row.toResponse()
	return &resp, nil
}

func (r *UserRepository) DeleteGrant(userID int64, moduleName string) (bool, error) {
	res, err := r.db.Exec(
		"DELETE FROM module_permissions WHERE user_id = $1 AND module_name = $2",
		userID, moduleName)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
