package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/repository"
)

// AdminService holds operator actions that are not exposed over HTTP.
type AdminService struct {
	accounts repository.Accounts
	hasher   PasswordHasher
}

func NewAdminService(accounts repository.Accounts, hasher PasswordHasher) *AdminService {
	return &AdminService{accounts: accounts, hasher: hasher}
}

// DeleteAccount removes an account. Students linked to it keep existing
// with their parent link cleared by the foreign key.
func (s *AdminService) DeleteAccount(ctx context.Context, username string) error {
	if err := s.accounts.Delete(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("account not found")
		}
		return apperr.Internal("delete account", err)
	}
	return nil
}

// SetPassword replaces the password of username. An empty password gets a
// random one, which is returned so the operator can hand it over.
func (s *AdminService) SetPassword(ctx context.Context, username, password string) (string, error) {
	generated := ""
	if password == "" {
		generated = uuid.NewString()
		password = generated
	}
	if len(password) > maxPasswordBytes {
		return "", apperr.Validation("password", "password is too long")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", apperr.Internal("set password: hash", err)
	}
	if err := s.accounts.UpdatePassword(ctx, username, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("account not found")
		}
		return "", apperr.Internal("set password", err)
	}
	return generated, nil
}
