package user

import (
	"log/slog"

	"github.com/frahmantamala/migration-tracker/internal"
)

type RepositoryAPI interface {
	GetByID(userID int64) (*User, error)
	GetGrants(userID int64) ([]GrantResponse, error)
	UpsertGrant(userID int64, moduleName string, dto GrantDTO, grantedBy int64) (*GrantResponse, error)
	DeleteGrant(userID int64, moduleName string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Profile returns the user's identity together with all module grants.
func (s *Service) Profile(userID int64) (*ProfileResponse, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		if err == ErrNotFound {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, internal.NewStorageError(err)
	}

	grants, err := s.repo.GetGrants(userID)
	if err != nil {
		s.logger.Error("failed to get user grants", "error", err, "user_id", userID)
		return nil, internal.NewStorageError(err)
	}

	return &ProfileResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Role:     u.Role,
		IsActive: u.IsActive,
		Grants:   grants,
	}, nil
}

// GrantsForUser lists a user's module grants, admin surface.
func (s *Service) GrantsForUser(userID int64) ([]GrantResponse, error) {
	if _, err := s.repo.GetByID(userID); err != nil {
		if err == ErrNotFound {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewStorageError(err)
	}

	grants, err := s.repo.GetGrants(userID)
	if err != nil {
		s.logger.Error("failed to get user grants", "error", err, "user_id", userID)
		return nil, internal.NewStorageError(err)
	}
	return grants, nil
}

// UpsertGrant sets the user's capability bits for one module, replacing any
// previous grant for that module.
func (s *Service) UpsertGrant(userID int64, moduleName string, dto GrantDTO, grantedBy int64) (*GrantResponse, error) {
	if moduleName == "" {
		return nil, internal.NewValidationFieldError("module_name", "module name is required", internal.ErrCodeFieldRequired)
	}

	target, err := s.repo.GetByID(userID)
	if err != nil {
		if err == ErrNotFound {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewStorageError(err)
	}
	if !target.IsActiveUser() {
		return nil, internal.NewValidationFieldError("user_id", "user is inactive", internal.ErrCodeValidationFailed)
	}

	grant, err := s.repo.UpsertGrant(userID, moduleName, dto, grantedBy)
	if err != nil {
		s.logger.Error("failed to upsert grant", "error", err, "user_id", userID, "module", moduleName)
		return nil, internal.NewStorageError(err)
	}

	s.logger.Info("module grant upserted",
		"user_id", userID,
		"module", moduleName,
		"granted_by", grantedBy)
	return grant, nil
}

// RevokeGrant removes the user's grant for the module. Without a grant row
// the evaluator denies every action, so revocation is a hard cutoff.
func (s *Service) RevokeGrant(userID int64, moduleName string) error {
	deleted, err := s.repo.DeleteGrant(userID, moduleName)
	if err != nil {
		s.logger.Error("failed to delete grant", "error", err, "user_id", userID, "module", moduleName)
		return internal.NewStorageError(err)
	}
	if !deleted {
		return internal.NewNotFoundError("grant not found", internal.ErrCodeGrantNotFound)
	}

	s.logger.Info("module grant revoked", "user_id", userID, "module", moduleName)
	return nil
}
