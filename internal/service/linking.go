package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/repository"
)

const (
	msgMissingFields    = "missing required fields"
	msgParentNotFound   = "parent not found"
	msgStudentNotFound  = "student not found"
	msgDuplicateChild   = "duplicate username"
	childEmailSubdomain = "child"
)

type childForm struct {
	ChildName     string `json:"child_name" validate:"max=150,username"`
	ChildAge      *int   `json:"child_age" validate:"omitempty,min=0"`
	ChildPassword string `json:"child_password"`
}

// LinkingService manages parent and student links.
type LinkingService struct {
	accounts          repository.Accounts
	hasher            PasswordHasher
	validate          *validator.Validate
	placeholderDomain string
	now               func() time.Time
}

func NewLinkingService(accounts repository.Accounts, hasher PasswordHasher, placeholderDomain string) *LinkingService {
	return &LinkingService{
		accounts:          accounts,
		hasher:            hasher,
		validate:          newValidator(),
		placeholderDomain: placeholderDomain,
		now:               time.Now,
	}
}

// GetStudent returns the public view of a student account.
func (s *LinkingService) GetStudent(ctx context.Context, username string) (*models.StudentView, error) {
	a, err := s.accounts.GetByUsernameAndRole(ctx, username, models.RoleStudent)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgStudentNotFound)
		}
		return nil, apperr.Internal("get student", err)
	}
	view := a.ToStudentView()
	return &view, nil
}

// GetAccount loads any account by username.
func (s *LinkingService) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	a, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, apperr.Internal("get account", err)
	}
	return a, nil
}

// CreateChild adds a student linked to an existing parent and returns the
// child's username.
func (s *LinkingService) CreateChild(ctx context.Context, in CreateChildInput) (string, error) {
	parentUsername := strings.TrimSpace(in.ParentUsername)
	childUsername := strings.TrimSpace(in.ChildUsername)
	if parentUsername == "" || childUsername == "" || in.ChildPassword == "" {
		return "", apperr.Validation("non_field_errors", msgMissingFields)
	}

	fields := apperr.Fields{}
	form := childForm{ChildName: childUsername, ChildAge: in.ChildAge, ChildPassword: in.ChildPassword}
	if err := collectFieldErrors(s.validate, form, fields); err != nil {
		return "", err
	}
	checkPasswordLength(fields, "child_password", in.ChildPassword)
	if len(fields) > 0 {
		return "", apperr.ValidationFields(fields)
	}

	parent, err := s.accounts.GetByUsernameAndRole(ctx, parentUsername, models.RoleParent)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound(msgParentNotFound)
		}
		return "", apperr.Internal("create child: lookup parent", err)
	}

	taken, err := s.accounts.ExistsByUsername(ctx, childUsername)
	if err != nil {
		return "", apperr.Internal("create child: check username", err)
	}
	if taken {
		return "", apperr.Validation("child_name", msgDuplicateChild)
	}

	hash, err := s.hasher.Hash(in.ChildPassword)
	if err != nil {
		return "", apperr.Internal("create child: hash password", err)
	}

	parentID := parent.ID
	child := &models.Account{
		Username:       childUsername,
		Email:          s.childEmail(childUsername),
		PasswordHash:   hash,
		Role:           models.RoleStudent,
		Age:            in.ChildAge,
		LinkedParentID: &parentID,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	}
	if _, err := s.accounts.Create(ctx, child); err != nil {
		if apperr.Is(err, apperr.CodeDuplicateKey) {
			// Lost a race with another insert, or the synthesized email collides.
			return "", apperr.Validation("child_name", msgDuplicateChild)
		}
		return "", apperr.Internal("create child", err)
	}
	return child.Username, nil
}

func (s *LinkingService) childEmail(childUsername string) string {
	return fmt.Sprintf("%s@%s.%s", strings.ToLower(childUsername), childEmailSubdomain, s.placeholderDomain)
}

// ListChildren returns the students linked to a parent account.
func (s *LinkingService) ListChildren(ctx context.Context, parentUsername string) ([]models.StudentView, error) {
	parent, err := s.accounts.GetByUsernameAndRole(ctx, parentUsername, models.RoleParent)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgParentNotFound)
		}
		return nil, apperr.Internal("list children: lookup parent", err)
	}
	children, err := s.accounts.ListByParent(ctx, parent.ID)
	if err != nil {
		return nil, apperr.Internal("list children", err)
	}
	out := make([]models.StudentView, 0, len(children))
	for _, c := range children {
		out = append(out, c.ToStudentView())
	}
	return out, nil
}
