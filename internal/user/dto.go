package user

import "time"

// GrantDTO is the admin payload for granting module capabilities. An upsert
// replaces the user's whole capability set for the module; there is at most
// one grant row per (user, module).
type GrantDTO struct {
	CanView   bool `json:"can_view"`
	CanCreate bool `json:"can_create"`
	CanEdit   bool `json:"can_edit"`
	CanSave   bool `json:"can_save"`
	CanDelete bool `json:"can_delete"`
}

type GrantResponse struct {
	UserID     int64     `json:"user_id"`
	ModuleName string    `json:"module_name"`
	CanView    bool      `json:"can_view"`
	CanCreate  bool      `json:"can_create"`
	CanEdit    bool      `json:"can_edit"`
	CanSave    bool      `json:"can_save"`
	CanDelete  bool      `json:"can_delete"`
	GrantedBy  *int64    `json:"granted_by,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type GrantsResponse struct {
	Grants []GrantResponse `json:"grants"`
}

// ProfileResponse is the /users/me shape: identity plus current grants so a
// client can decide which module surfaces to render.
type ProfileResponse struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	IsActive bool            `json:"is_active"`
	Grants   []GrantResponse `json:"grants"`
}
