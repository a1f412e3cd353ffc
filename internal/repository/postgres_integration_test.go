//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/config"
	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/repository"
	"cyberkids_accounts/internal/repository/db"
)

func newPostgresRepo(t *testing.T) *repository.Repository {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cyberkids_test"),
		postgres.WithUsername("cyberkids"),
		postgres.WithPassword("cyberkids"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, dialect, err := db.Open(ctx, config.DBConfig{
		Driver:         config.DriverPostgres,
		DSN:            dsn,
		ConnectRetries: 5,
		ConnectBackoff: 200 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	_, err = db.Migrate(ctx, sqlDB, dialect)
	require.NoError(t, err)

	return repository.NewRepository(sqlDB, dialect)
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	parentID, err := repo.Accounts.Create(ctx, account("alice", "alice@example.com", models.RoleParent))
	require.NoError(t, err)

	child := account("student_alice", "alice_child@cyberkids.local", models.RoleStudent)
	child.LinkedParentID = &parentID
	_, err = repo.Accounts.Create(ctx, child)
	require.NoError(t, err)

	got, err := repo.Accounts.GetByUsername(ctx, "student_alice")
	require.NoError(t, err)
	require.NotNil(t, got.LinkedParentUsername)
	assert.Equal(t, "alice", *got.LinkedParentUsername)

	_, err = repo.Accounts.Create(ctx, account("bob", "alice@example.com", models.RoleStudent))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDuplicateKey, apperr.Kind(err))
	assert.Contains(t, apperr.FieldErrors(err), "email")

	_, err = repo.Accounts.Create(ctx, account("alice", "alice2@example.com", models.RoleStudent))
	require.Error(t, err)
	assert.Contains(t, apperr.FieldErrors(err), "username")

	require.NoError(t, repo.Accounts.Delete(ctx, "alice"))
	got, err = repo.Accounts.GetByUsername(ctx, "student_alice")
	require.NoError(t, err)
	assert.Nil(t, got.LinkedParentID)
}
