package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/repository"
)

// placeholderChildPrefix names the student account created with every parent.
const placeholderChildPrefix = "student_"

// maxParentUsernameLen leaves room for the prefix of the placeholder child.
const maxParentUsernameLen = maxUsernameLen - len(placeholderChildPrefix)

type registerForm struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Age      *int   `json:"age" validate:"omitempty,min=0"`
	Role     string `json:"role" validate:"omitempty,oneof=student parent teacher admin"`
}

// RegistrationService creates accounts from self-registration.
type RegistrationService struct {
	accounts          repository.Accounts
	tx                repository.Transactor
	hasher            PasswordHasher
	validate          *validator.Validate
	placeholderDomain string
	now               func() time.Time
}

func NewRegistrationService(accounts repository.Accounts, tx repository.Transactor, hasher PasswordHasher, placeholderDomain string) *RegistrationService {
	return &RegistrationService{
		accounts:          accounts,
		tx:                tx,
		hasher:            hasher,
		validate:          newValidator(),
		placeholderDomain: placeholderDomain,
		now:               time.Now,
	}
}

// Register validates in, creates the account and, for parents, a linked
// placeholder student in the same transaction. It returns the primary account.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	form := registerForm{
		Username: strings.TrimSpace(in.Username),
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
		Age:      in.Age,
		Role:     strings.TrimSpace(in.Role),
	}

	fields := apperr.Fields{}
	if err := collectFieldErrors(s.validate, form, fields); err != nil {
		return nil, err
	}
	checkPasswordLength(fields, "password", form.Password)
	if form.Role == string(models.RoleParent) && len(fields["username"]) == 0 &&
		len(form.Username) > maxParentUsernameLen {
		fields.Add("username", fmt.Sprintf("parent usernames are limited to %d characters", maxParentUsernameLen))
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	role := models.DefaultRole
	if form.Role != "" {
		role, _ = models.ParseRole(form.Role)
	}

	if _, err := s.accounts.GetByEmail(ctx, form.Email); err == nil {
		return nil, apperr.Validation("email", "email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal("register: lookup email", err)
	}

	hash, err := s.hasher.Hash(form.Password)
	if err != nil {
		return nil, apperr.Internal("register: hash password", err)
	}

	account := &models.Account{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		Role:         role,
		Age:          form.Age,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}

	// The parent and its placeholder child commit or roll back together.
	err = s.tx.WithinTx(ctx, func(ctx context.Context, accounts repository.Accounts) error {
		id, err := accounts.Create(ctx, account)
		if err != nil {
			return err
		}
		account.ID = id

		if role != models.RoleParent {
			return nil
		}
		child, err := s.placeholderChild(account)
		if err != nil {
			return err
		}
		if _, err := accounts.Create(ctx, child); err != nil {
			if apperr.Is(err, apperr.CodeDuplicateKey) {
				return placeholderConflict(child, err)
			}
			return fmt.Errorf("create placeholder child %q: %w", child.Username, err)
		}
		return nil
	})
	if err != nil {
		account.ID = 0
		return nil, apperr.Internal("register: create account", err)
	}
	return account, nil
}

// placeholderConflict reports which generated value of the placeholder child
// is already taken. Both are derived from the parent's username.
func placeholderConflict(child *models.Account, err error) error {
	field, value := "username", child.Username
	if names := apperr.FieldErrors(err).Names(); len(names) == 1 && names[0] == "email" {
		field, value = "email", child.Email
	}
	return apperr.Validation(field,
		fmt.Sprintf("placeholder child %s %q is already taken", field, value))
}

// placeholderChild builds the student linked to a newly registered parent.
// Its password is random; an operator sets a real one via the admin command.
func (s *RegistrationService) placeholderChild(parent *models.Account) (*models.Account, error) {
	hash, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	parentID := parent.ID
	return &models.Account{
		Username:       placeholderChildPrefix + parent.Username,
		Email:          fmt.Sprintf("%s_child@%s", strings.ToLower(parent.Username), s.placeholderDomain),
		PasswordHash:   hash,
		Role:           models.RoleStudent,
		LinkedParentID: &parentID,
		IsActive:       true,
		CreatedAt:      parent.CreatedAt,
	}, nil
}
