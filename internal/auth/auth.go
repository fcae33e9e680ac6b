package auth

import (
	"context"
	"errors"
)

// Roles. Admin is a role check, not a data-driven grant: an admin is
// authorized for every module and action without consulting grant rows.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Action is one of the flat per-module capabilities. There is no wildcard
// or hierarchy; each action maps to exactly one grant bit.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionSave   Action = "save"
	ActionDelete Action = "delete"
)

// Grant is one user's capability set for one module. At most one grant
// exists per (user, module).
type Grant struct {
	ModuleName string `json:"module_name"`
	CanView    bool   `json:"can_view"`
	CanCreate  bool   `json:"can_create"`
	CanEdit    bool   `json:"can_edit"`
	CanSave    bool   `json:"can_save"`
	CanDelete  bool   `json:"can_delete"`
}

// Allows returns the grant bit matching the action.
func (g Grant) Allows(action Action) bool {
	switch action {
	case ActionView:
		return g.CanView
	case ActionCreate:
		return g.CanCreate
	case ActionEdit:
		return g.CanEdit
	case ActionSave:
		return g.CanSave
	case ActionDelete:
		return g.CanDelete
	}
	return false
}

// UserContext is the resolved caller identity the core trusts as already
// authenticated. It is always passed explicitly into gated operations,
// never read from ambient state.
type UserContext struct {
	UserID int64   `json:"user_id"`
	Email  string  `json:"email"`
	Role   string  `json:"role"`
	Grants []Grant `json:"grants,omitempty"`
}

func (u *UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// GrantFor returns the user's grant for the module, if any.
func (u *UserContext) GrantFor(moduleName string) (Grant, bool) {
	for _, g := range u.Grants {
		if g.ModuleName == moduleName {
			return g, true
		}
	}
	return Grant{}, false
}

type ctxKey string

const ContextUserKey ctxKey = "user"

var ErrForbidden = errors.New("forbidden")

func UserFromContext(ctx context.Context) (*UserContext, bool) {
	u, ok := ctx.Value(ContextUserKey).(*UserContext)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *UserContext) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithGrants(userID int64) (*UserContext, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetPasswordForEmail(email string) (passwordHash string, userID string, err error)
	GetUserWithGrants(userID int64) (*UserContext, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(userID string) (token string, err error)
	GenerateRefreshToken(userID string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}
