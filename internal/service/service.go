package service

import (
	"context"
	"time"

	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/repository"
)

type Registration interface {
	Register(ctx context.Context, in RegisterInput) (*models.Account, error)
}

type Authorization interface {
	Login(ctx context.Context, identifier, password string) (*models.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ParseAccessToken(accessToken string) (*Claims, error)
}

// Linking exposes student lookups and parent/child management.
type Linking interface {
	GetStudent(ctx context.Context, username string) (*models.StudentView, error)
	GetAccount(ctx context.Context, username string) (*models.Account, error)
	CreateChild(ctx context.Context, in CreateChildInput) (string, error)
	ListChildren(ctx context.Context, parentUsername string) ([]models.StudentView, error)
}

// AccountAdmin is reachable from the CLI only.
type AccountAdmin interface {
	DeleteAccount(ctx context.Context, username string) error
	SetPassword(ctx context.Context, username, password string) (string, error)
}

type Service struct {
	Registration
	Authorization
	Linking
	AccountAdmin
}

// Options carries the settings the services need from config.
type Options struct {
	SigningKey        string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	BcryptCost        int
	PlaceholderDomain string
}

func NewService(repos *repository.Repository, opts Options) *Service {
	hasher := NewBcryptHasher(opts.BcryptCost)
	tokens := NewTokenIssuer(opts.SigningKey, opts.AccessTTL, opts.RefreshTTL)
	return &Service{
		Registration:  NewRegistrationService(repos.Accounts, repos.Tx, hasher, opts.PlaceholderDomain),
		Authorization: NewAuthService(repos.Accounts, hasher, tokens),
		Linking:       NewLinkingService(repos.Accounts, hasher, opts.PlaceholderDomain),
		AccountAdmin:  NewAdminService(repos.Accounts, hasher),
	}
}
