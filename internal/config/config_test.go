package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellologin/internal/security/secretbox"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "dev", c.App.Env)
	require.Equal(t, "http://localhost:8080", c.App.BaseURL)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, 3*time.Second, c.Storage.LookupTimeout)
	require.Equal(t, "sid", c.Auth.Session.CookieName)
	require.Equal(t, 30*time.Minute, c.Auth.PendingRegistrationTTL)
	require.False(t, c.Providers.Google.Enabled)
	require.Equal(t, []string{"openid", "email", "profile"}, c.Providers.Google.Scopes)
}

func TestLoad_FileAndEnv(t *testing.T) {
	p := writeFile(t, `
app:
  base_url: https://login.example.org/
storage:
  driver: postgres
  dsn: postgres://file
auth:
  session:
    signing_key: file-key-0123456789abcdef0123456789
providers:
  facebook:
    enabled: true
    client_id: fb
    client_secret: fb-secret
`)
	t.Setenv("STORAGE_DSN", "postgres://env")
	t.Setenv("TWITTER_CLIENT_ID", "tw")
	t.Setenv("TWITTER_CLIENT_SECRET", "tw-secret")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "https://login.example.org", c.App.BaseURL)
	require.Equal(t, "postgres://env", c.Storage.DSN)
	require.True(t, c.Providers.Facebook.Enabled)
	require.True(t, c.Providers.Twitter.Enabled)
	require.Equal(t, "tw", c.Providers.Twitter.ClientID)
	require.False(t, c.Providers.Google.Enabled)
}

func TestLoad_Validation(t *testing.T) {
	cases := map[string]string{
		"prod without signing key": "app:\n  env: prod\n  base_url: https://x.org\n",
		"relative base url":        "app:\n  base_url: /login\n",
		"postgres without dsn":     "storage:\n  driver: postgres\n",
		"unknown cache":            "cache:\n  kind: memcached\n",
		"provider without secret":  "providers:\n  google:\n    enabled: true\n    client_id: x\n",
		"bad trusted proxy":        "server:\n  trusted_proxies: [\"10.0.0.0/33\"]\n",
	}
	for name, body := range cases {
		_, err := Load(writeFile(t, body))
		require.Error(t, err, name)
	}

	_, err := Load(writeFile(t, "app: [not, a, map]"))
	require.ErrorContains(t, err, "parse")
}

func TestLoad_TrustedProxies(t *testing.T) {
	c, err := Load(writeFile(t, "server:\n  trusted_proxies: [\"10.0.0.0/8\", \"192.0.2.1\"]\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, c.Server.TrustedProxies)

	t.Setenv("SERVER_TRUSTED_PROXIES", " 127.0.0.1 , ::1,")
	c, err = Load(writeFile(t, ""))
	require.NoError(t, err)
	require.Equal(t, []string{"127.0.0.1", "::1"}, c.Server.TrustedProxies)
}

func TestLoad_SealedDSN(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	box, err := secretbox.New([]byte(key))
	require.NoError(t, err)
	sealed, err := box.Seal("postgres://secret@db/app")
	require.NoError(t, err)

	p := writeFile(t, "storage:\n  driver: postgres\n  dsn: \""+SealedPrefix+sealed+"\"\n")

	_, err = Load(p)
	require.ErrorContains(t, err, secretbox.EnvKey)

	t.Setenv(secretbox.EnvKey, key)
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "postgres://secret@db/app", c.Storage.DSN)
}
