package auth

// PermissionEvaluator decides whether a (module, action) pair is authorized
// for a caller. Pure function of the inputs; no state, safe for concurrent
// use from any number of request handlers.
type PermissionEvaluator interface {
	Authorize(role string, grants []Grant, moduleName string, action Action) bool
}

type DefaultEvaluator struct{}

func NewEvaluator() PermissionEvaluator {
	return &DefaultEvaluator{}
}

// Authorize applies the flat capability matrix. The admin branch is a
// deliberate role check rather than an all-bits grant row, matching how
// grants are administered: admins never have rows, and their access must
// not depend on grant data being present.
func (e *DefaultEvaluator) Authorize(role string, grants []Grant, moduleName string, action Action) bool {
	if role == RoleAdmin {
		return true
	}

	for _, g := range grants {
		if g.ModuleName == moduleName {
			return g.Allows(action)
		}
	}

	// no grant row for the module means every action is denied
	return false
}
