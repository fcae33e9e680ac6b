package permission

import "time"

// ModulePermission is a flat per-user, per-module capability row. At most
// one row exists per (user_id, module_name); rows cascade with the user.
type ModulePermission struct {
	ID         int64     `gorm:"primaryKey"`
	UserID     int64     `gorm:"column:user_id;not null;uniqueIndex:uq_module_permissions_user_module,priority:1"`
	ModuleName string    `gorm:"column:module_name;not null;uniqueIndex:uq_module_permissions_user_module,priority:2"`
	CanView    bool      `gorm:"column:can_view;default:false"`
	CanCreate  bool      `gorm:"column:can_create;default:false"`
	CanEdit    bool      `gorm:"column:can_edit;default:false"`
	CanSave    bool      `gorm:"column:can_save;default:false"`
	CanDelete  bool      `gorm:"column:can_delete;default:false"`
	GrantedBy  *int64    `gorm:"column:granted_by"`
	CreatedAt  time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt  time.Time `gorm:"column:updated_at;default:now()"`
}

func (ModulePermission) TableName() string {
	return "module_permissions"
}
