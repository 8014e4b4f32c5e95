package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	missing := filepath.Join(t.TempDir(), "absent.yaml")
	cmd.SetArgs(append([]string{"--config", missing}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUserCreate(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	out, err := run(t, "user", "create", "--email", "ada@example.com", "--first-name", "Ada",
		"--external-id", "twitter://42")
	require.NoError(t, err)
	require.Contains(t, out, "(Ada)")

	_, err = run(t, "user", "create")
	require.Error(t, err)

	_, err = run(t, "user", "create", "--external-id", "not-an-id")
	require.ErrorContains(t, err, "provider://id")
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	_, err := run(t, "migrate")
	require.ErrorContains(t, err, "postgres")
}

func TestSealDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SECRETBOX_MASTER_KEY", "0123456789abcdef0123456789abcdef")

	out, err := run(t, "seal-dsn", "postgres://u:p@db/app")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "enc:"))
	require.NotContains(t, out, "u:p@db")
}
