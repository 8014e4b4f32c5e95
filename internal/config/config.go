package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellologin/internal/security/secretbox"
	"github.com/dropDatabas3/hellologin/internal/validation"
)

// SealedPrefix marks a storage.dsn sealed with secretbox under
// SECRETBOX_MASTER_KEY.
const SealedPrefix = "enc:"

// ProviderConfig holds OAuth client credentials for one identity provider.
type ProviderConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
		// Public base URL used to build provider callback URLs, e.g. https://example.org
		BaseURL string `yaml:"base_url"`
		// Default language code when neither the user nor the request has one.
		DefaultLanguage string `yaml:"default_language"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// IPs or CIDRs allowed to set X-Forwarded-For.
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// memory | postgres
		Driver        string        `yaml:"driver"`
		DSN           string        `yaml:"dsn"`
		MaxConns      int32         `yaml:"max_conns"`
		LookupTimeout time.Duration `yaml:"lookup_timeout"`
		Migrate       bool          `yaml:"migrate"`
	} `yaml:"storage"`

	Cache struct {
		// memory | redis
		Kind  string `yaml:"kind"`
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Auth struct {
		Session struct {
			CookieName string        `yaml:"cookie_name"`
			Domain     string        `yaml:"domain"`
			SameSite   string        `yaml:"samesite"`
			Secure     bool          `yaml:"secure"`
			TTL        time.Duration `yaml:"ttl"`
			// HMAC key used to sign the serialized identity stored in the session.
			SigningKey string `yaml:"signing_key"`
		} `yaml:"session"`
		PendingRegistrationTTL time.Duration `yaml:"pending_registration_ttl"`
		OAuthStateTTL          time.Duration `yaml:"oauth_state_ttl"`
		PasswordMinLength      int           `yaml:"password_min_length"`
		PasswordBlacklistPath  string        `yaml:"password_blacklist_path"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool          `yaml:"enabled"`
		Limit   int           `yaml:"limit"`
		Window  time.Duration `yaml:"window"`
	} `yaml:"rate"`

	Providers struct {
		Google   ProviderConfig `yaml:"google"`
		Twitter  ProviderConfig `yaml:"twitter"`
		Facebook ProviderConfig `yaml:"facebook"`
	} `yaml:"providers"`
}

// Load reads the YAML file at path (a missing file yields defaults), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var c Config

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	c.applyEnvOverrides()
	c.applyDefaults()

	if err := c.openSealed(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.BaseURL == "" && c.IsDev() {
		c.App.BaseURL = "http://localhost:8080"
	}
	c.App.BaseURL = strings.TrimRight(c.App.BaseURL, "/")
	if c.App.DefaultLanguage == "" {
		c.App.DefaultLanguage = "en"
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.LookupTimeout == 0 {
		c.Storage.LookupTimeout = 3 * time.Second
	}

	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "hellologin"
	}

	if c.Auth.Session.CookieName == "" {
		c.Auth.Session.CookieName = "sid"
	}
	if c.Auth.Session.SameSite == "" {
		c.Auth.Session.SameSite = "Lax"
	}
	if c.Auth.Session.TTL == 0 {
		c.Auth.Session.TTL = 12 * time.Hour
	}
	if c.Auth.Session.SigningKey == "" && c.IsDev() {
		c.Auth.Session.SigningKey = "dev-only-signing-key-change-me-0123456789"
	}
	if c.Auth.PendingRegistrationTTL == 0 {
		c.Auth.PendingRegistrationTTL = 30 * time.Minute
	}
	if c.Auth.OAuthStateTTL == 0 {
		c.Auth.OAuthStateTTL = 10 * time.Minute
	}
	if c.Auth.PasswordMinLength == 0 {
		c.Auth.PasswordMinLength = 10
	}

	if c.Rate.Limit == 0 {
		c.Rate.Limit = 10
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}

	if len(c.Providers.Google.Scopes) == 0 {
		c.Providers.Google.Scopes = []string{"openid", "email", "profile"}
	}
	if len(c.Providers.Twitter.Scopes) == 0 {
		c.Providers.Twitter.Scopes = []string{"users.read", "tweet.read"}
	}
	if len(c.Providers.Facebook.Scopes) == 0 {
		c.Providers.Facebook.Scopes = []string{"email", "public_profile"}
	}
}

// openSealed decrypts a sealed DSN in place.
func (c *Config) openSealed() error {
	sealed, ok := strings.CutPrefix(c.Storage.DSN, SealedPrefix)
	if !ok {
		return nil
	}
	raw, ok := getEnvStr(secretbox.EnvKey)
	if !ok {
		return fmt.Errorf("config: storage.dsn is sealed but %s is not set", secretbox.EnvKey)
	}
	key, err := secretbox.ParseKey(raw)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	box, err := secretbox.New(key)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dsn, err := box.Open(sealed)
	if err != nil {
		return fmt.Errorf("config: storage.dsn: %w", err)
	}
	c.Storage.DSN = dsn
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c *Config) IsDev() bool {
	return !strings.EqualFold(c.App.Env, "prod")
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.App.BaseURL == "" {
		return errors.New("config: app.base_url is required")
	}
	if !strings.HasPrefix(c.App.BaseURL, "http://") && !strings.HasPrefix(c.App.BaseURL, "https://") {
		return fmt.Errorf("config: app.base_url must be absolute, got %q", c.App.BaseURL)
	}
	if len(c.Auth.Session.SigningKey) < 32 {
		return errors.New("config: auth.session.signing_key must be at least 32 bytes")
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return errors.New("config: storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Cache.Kind {
	case "memory":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return errors.New("config: cache.redis.addr is required for redis")
		}
	default:
		return fmt.Errorf("config: unknown cache.kind %q", c.Cache.Kind)
	}
	for _, tp := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(tp); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(tp); err != nil {
			return fmt.Errorf("config: server.trusted_proxies has invalid entry %q", tp)
		}
	}
	for name, p := range map[string]ProviderConfig{
		"google":   c.Providers.Google,
		"twitter":  c.Providers.Twitter,
		"facebook": c.Providers.Facebook,
	} {
		if p.Enabled && (p.ClientID == "" || p.ClientSecret == "") {
			return fmt.Errorf("config: providers.%s requires client_id and client_secret", name)
		}
		for _, sc := range p.Scopes {
			if !validation.ValidScopeName(sc) {
				return fmt.Errorf("config: providers.%s has invalid scope %q", name, sc)
			}
		}
	}
	return nil
}

// ---- env helpers ----

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

// applyEnvOverrides overwrites file values with environment variables.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_BASE_URL"); ok {
		c.App.BaseURL = v
	}
	if v, ok := getEnvStr("APP_DEFAULT_LANGUAGE"); ok {
		c.App.DefaultLanguage = v
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("SERVER_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = splitList(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvDur("STORAGE_LOOKUP_TIMEOUT"); ok {
		c.Storage.LookupTimeout = v
	}
	if v, ok := getEnvBool("STORAGE_MIGRATE"); ok {
		c.Storage.Migrate = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvStr("SESSION_SIGNING_KEY"); ok {
		c.Auth.Session.SigningKey = v
	}
	if v, ok := getEnvBool("SESSION_SECURE"); ok {
		c.Auth.Session.Secure = v
	}
	if v, ok := getEnvDur("SESSION_TTL"); ok {
		c.Auth.Session.TTL = v
	}
	if v, ok := getEnvDur("PENDING_REGISTRATION_TTL"); ok {
		c.Auth.PendingRegistrationTTL = v
	}

	if v, ok := getEnvStr("PASSWORD_BLACKLIST_PATH"); ok {
		c.Auth.PasswordBlacklistPath = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}

	overrideProvider(&c.Providers.Google, "GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET")
	overrideProvider(&c.Providers.Twitter, "TWITTER_CLIENT_ID", "TWITTER_CLIENT_SECRET")
	overrideProvider(&c.Providers.Facebook, "FACEBOOK_APP_ID", "FACEBOOK_APP_SECRET")
}

// overrideProvider sets credentials from env and enables the provider when
// both are present.
func overrideProvider(p *ProviderConfig, idKey, secretKey string) {
	id, okID := getEnvStr(idKey)
	secret, okSecret := getEnvStr(secretKey)
	if okID {
		p.ClientID = id
	}
	if okSecret {
		p.ClientSecret = secret
	}
	if okID && okSecret {
		p.Enabled = true
	}
}
