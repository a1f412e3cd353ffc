package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyberkids_accounts/internal/apperr"
	"cyberkids_accounts/internal/config"
	"cyberkids_accounts/internal/service"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	body := "db:\n" +
		"  driver: sqlite\n" +
		"  path: " + filepath.Join(dir, "cli.db") + "\n" +
		"auth:\n" +
		"  signing_key: cli-test-key\n" +
		"  bcrypt_cost: 4\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
	assert.Contains(t, names, "accounts")

	for _, flag := range []string{"config", "port", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	path := writeConfig(t)
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--port", "9191", "--log-level", "debug"}))

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "cli-test-key", cfg.Auth.SigningKey)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cmd := NewRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "nope.yml")}))

	_, err := loadConfig(cmd)
	require.Error(t, err)
}

func TestMigrateCmd(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(1 applied)")

	out, err = execute(t, "migrate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(0 applied)")
}

func TestAccountsCmd(t *testing.T) {
	path := writeConfig(t)
	ctx := context.Background()

	v := config.NewViper()
	cfg, err := config.Load(v, path)
	require.NoError(t, err)
	db, repos, _, err := openStore(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := service.NewService(repos, serviceOptions(cfg))
	_, err = svc.Register(ctx, service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "old-pass",
		Role:     "parent",
	})
	require.NoError(t, err)

	t.Run("set explicit password", func(t *testing.T) {
		out, err := execute(t, "accounts", "set-password", "alice", "new-pass", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, `Password for "alice" updated`)

		_, err = svc.Login(ctx, "alice", "new-pass")
		require.NoError(t, err)
	})

	t.Run("generate password", func(t *testing.T) {
		out, err := execute(t, "accounts", "set-password", "student_alice", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, `Generated password for "student_alice"`)
	})

	t.Run("delete keeps linked student", func(t *testing.T) {
		out, err := execute(t, "accounts", "delete", "alice", "--config", path)
		require.NoError(t, err)
		assert.Contains(t, out, `Account "alice" deleted`)

		view, err := svc.GetStudent(ctx, "student_alice")
		require.NoError(t, err)
		assert.Nil(t, view.LinkedParent)
	})

	t.Run("delete unknown account", func(t *testing.T) {
		_, err := execute(t, "accounts", "delete", "ghost", "--config", path)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := execute(t, "accounts", "delete", "--config", path)
		require.Error(t, err)
	})
}
