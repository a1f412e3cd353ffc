package repository

import (
	"context"
	"database/sql"

	"cyberkids_accounts/internal/models"
)

// Accounts is the account store.
type Accounts interface {
	Create(ctx context.Context, a *models.Account) (int64, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUsernameAndRole(ctx context.Context, username string, role models.Role) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListByParent(ctx context.Context, parentID int64) ([]models.Account, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	Delete(ctx context.Context, username string) error
}

// Transactor runs fn against an account store bound to one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, accounts Accounts) error) error
}

type SQLTransactor struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLTransactor(db *sql.DB, dialect Dialect) *SQLTransactor {
	return &SQLTransactor{db: db, dialect: dialect}
}

var _ Transactor = (*SQLTransactor)(nil)

func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, accounts Accounts) error) error {
	return WithTx(ctx, t.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewAccountRepository(tx, t.dialect))
	})
}

type Repository struct {
	Accounts Accounts
	Tx       Transactor
}

func NewRepository(db *sql.DB, dialect Dialect) *Repository {
	return &Repository{
		Accounts: NewAccountRepository(db, dialect),
		Tx:       NewSQLTransactor(db, dialect),
	}
}
