package service

import (
	"context"
	"errors"
	"strings"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/repository"
)

// Auth failure messages shown to clients.
const (
	msgInvalidCredentials = "invalid credentials"
	msgInactiveAccount    = "inactive account"
)

// AuthService handles login and token flows.
type AuthService struct {
	accounts repository.Accounts
	hasher   PasswordHasher
	tokens   *TokenIssuer
}

func NewAuthService(accounts repository.Accounts, hasher PasswordHasher, tokens *TokenIssuer) *AuthService {
	return &AuthService{accounts: accounts, hasher: hasher, tokens: tokens}
}

// Login accepts a username or an email as identifier. An identifier that
// matches a stored email is replaced by that account's username; otherwise
// it is used as a username as-is.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	fields := apperr.Fields{}
	if identifier == "" {
		fields.Add("username_or_email", "this field is required")
	}
	if password == "" {
		fields.Add("password", "this field is required")
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	username, err := s.resolveUsername(ctx, identifier)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Auth(msgInvalidCredentials)
		}
		return nil, apperr.Internal("login: lookup username", err)
	}
	if err := s.hasher.Verify(account.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, apperr.Auth(msgInvalidCredentials)
		}
		return nil, apperr.Internal("login: verify password", err)
	}
	if !account.IsActive {
		return nil, apperr.Auth(msgInactiveAccount)
	}

	pair, err := s.tokens.Issue(account)
	if err != nil {
		return nil, apperr.Internal("login: issue tokens", err)
	}
	return &models.LoginResult{
		TokenPair: pair,
		Username:  account.Username,
		Role:      account.Role,
	}, nil
}

// resolveUsername swallows only a missing email; store faults propagate.
func (s *AuthService) resolveUsername(ctx context.Context, identifier string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(identifier))
	switch {
	case err == nil:
		return account.Username, nil
	case errors.Is(err, repository.ErrNotFound):
		return identifier, nil
	default:
		return "", apperr.Internal("login: lookup email", err)
	}
}

// Refresh exchanges a refresh token for a new access token. The account is
// reloaded so a deleted or deactivated account cannot refresh and the new
// token carries the current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	account, err := s.accounts.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.Auth("account no longer exists")
		}
		return "", apperr.Internal("refresh: lookup account", err)
	}
	if account.ID != claims.UserID {
		return "", apperr.Auth("invalid token")
	}
	if !account.IsActive {
		return "", apperr.Auth(msgInactiveAccount)
	}
	access, err := s.tokens.IssueAccess(account)
	if err != nil {
		return "", apperr.Internal("refresh: issue token", err)
	}
	return access, nil
}

// ParseAccessToken validates an access token. Refresh tokens are rejected.
func (s *AuthService) ParseAccessToken(accessToken string) (*Claims, error) {
	return s.tokens.Parse(accessToken, TokenTypeAccess)
}
