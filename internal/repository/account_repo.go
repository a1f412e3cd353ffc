package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/models"
)

// ErrNotFound is returned when a lookup matches no account.
var ErrNotFound = errors.New("account not found")

type AccountRepository struct {
	db DBTX
	q  accountQueries
}

func NewAccountRepository(db DBTX, dialect Dialect) *AccountRepository {
	return &AccountRepository{db: db, q: newAccountQueries(dialect)}
}

// Ensure implementation of Accounts interface at compile time.
var _ Accounts = (*AccountRepository)(nil)

const selectAccountColumns = `
	SELECT a.id, a.username, a.email, a.password_hash, a.role, a.age,
	       a.linked_parent_id, p.username, a.is_active, a.created_at
	FROM accounts a
	LEFT JOIN accounts p ON p.id = a.linked_parent_id`

const (
	insertAccountSQL = `
		INSERT INTO accounts (username, email, password_hash, role, age, linked_parent_id, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	selectAccountByUsernameSQL        = selectAccountColumns + ` WHERE a.username = ?`
	selectAccountByEmailSQL           = selectAccountColumns + ` WHERE a.email = ?`
	selectAccountByUsernameAndRoleSQL = selectAccountColumns + ` WHERE a.username = ? AND a.role = ?`
	selectAccountsByParentSQL         = selectAccountColumns + ` WHERE a.linked_parent_id = ? ORDER BY a.id`

	existsAccountByUsernameSQL = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = ?)`
	updatePasswordSQL          = `UPDATE accounts SET password_hash = ? WHERE username = ?`
	deleteAccountSQL           = `DELETE FROM accounts WHERE username = ?`
)

// accountQueries holds the statements rebound for one dialect.
type accountQueries struct {
	insert, byUsername, byEmail, byUsernameAndRole, byParent string
	exists, updatePassword, delete                          string
}

func newAccountQueries(d Dialect) accountQueries {
	return accountQueries{
		insert:            rebind(d, insertAccountSQL),
		byUsername:        rebind(d, selectAccountByUsernameSQL),
		byEmail:           rebind(d, selectAccountByEmailSQL),
		byUsernameAndRole: rebind(d, selectAccountByUsernameAndRoleSQL),
		byParent:          rebind(d, selectAccountsByParentSQL),
		exists:            rebind(d, existsAccountByUsernameSQL),
		updatePassword:    rebind(d, updatePasswordSQL),
		delete:            rebind(d, deleteAccountSQL),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a              models.Account
		role           string
		age            sql.NullInt64
		parentID       sql.NullInt64
		parentUsername sql.NullString
	)
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &age,
		&parentID, &parentUsername, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	if age.Valid {
		v := int(age.Int64)
		a.Age = &v
	}
	if parentID.Valid {
		v := parentID.Int64
		a.LinkedParentID = &v
	}
	if parentUsername.Valid {
		v := parentUsername.String
		a.LinkedParentUsername = &v
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return &a, nil
}

// Create inserts a and returns its new id. A unique violation on username or
// email is reported as an apperr duplicate-key error naming the column.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) (int64, error) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	createdAt = createdAt.UTC()

	var age any
	if a.Age != nil {
		age = int64(*a.Age)
	}
	var parentID any
	if a.LinkedParentID != nil {
		parentID = *a.LinkedParentID
	}

	var id int64
	err := r.db.QueryRowContext(ctx, r.q.insert,
		a.Username, a.Email, a.PasswordHash, string(a.Role), age, parentID, a.IsActive, createdAt,
	).Scan(&id)
	if err != nil {
		if field, ok := uniqueViolation(err); ok {
			return 0, apperr.Duplicate(field, err)
		}
		return 0, fmt.Errorf("insert account %q: %w", a.Username, err)
	}
	return id, nil
}

func (r *AccountRepository) getOne(ctx context.Context, what, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select account by %s: %w", what, err)
	}
	return a, nil
}

// GetByUsername returns ErrNotFound when no account has username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, "username", r.q.byUsername, username)
}

// GetByEmail matches the stored (already lowercased) email exactly.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, "email", r.q.byEmail, email)
}

func (r *AccountRepository) GetByUsernameAndRole(ctx context.Context, username string, role models.Role) (*models.Account, error) {
	return r.getOne(ctx, "username and role", r.q.byUsernameAndRole, username, string(role))
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, r.q.exists, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return exists, nil
}

// ListByParent returns the accounts linked to parentID, oldest first.
func (r *AccountRepository) ListByParent(ctx context.Context, parentID int64) ([]models.Account, error) {
	rows, err := r.db.QueryContext(ctx, r.q.byParent, parentID)
	if err != nil {
		return nil, fmt.Errorf("select children of %d: %w", parentID, err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child of %d: %w", parentID, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children of %d: %w", parentID, err)
	}
	return out, nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, r.q.updatePassword, passwordHash, username)
	if err != nil {
		return fmt.Errorf("update password of %q: %w", username, err)
	}
	return requireAffected(res, username)
}

// Delete removes the account; dependents keep existing with a nulled link.
func (r *AccountRepository) Delete(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, r.q.delete, username)
	if err != nil {
		return fmt.Errorf("delete account %q: %w", username, err)
	}
	return requireAffected(res, username)
}

func requireAffected(res sql.Result, username string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %q: %w", username, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
