package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds runtime settings for the docchat CLI.
//
// The identity fields describe an OAuth2 public client registered with the
// identity provider; Authority is the tenant base URL that the device and
// token endpoints hang off.
type Config struct {
	APIBaseURL string `envconfig:"API_BASE_URL"`

	ClientID              string `envconfig:"CLIENT_ID"`
	Authority             string `envconfig:"AUTHORITY"`
	APIScope              string `envconfig:"API_SCOPE"`
	RedirectURL           string `envconfig:"REDIRECT_URL"`
	PostLogoutRedirectURL string `envconfig:"POST_LOGOUT_REDIRECT_URL"`

	StateDBPath     string `envconfig:"STATE_DB_PATH"`
	StateKeyPath    string `envconfig:"STATE_KEY_PATH"`
	StatePassphrase string `envconfig:"STATE_PASSPHRASE"`
	// PromptPassphrase asks for the state passphrase on the terminal at
	// startup instead of reading it from the environment.
	PromptPassphrase bool `envconfig:"PROMPT_PASSPHRASE"`

	MaxFileMiB  int64 `envconfig:"MAX_FILE_MIB"`
	MaxBatchMiB int64 `envconfig:"MAX_BATCH_MIB"`

	LogLevel  string `envconfig:"LOG_LEVEL"`
	LogFormat string `envconfig:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000/jasp-api"
	c.Authority = "https://login.microsoftonline.com/common"
	c.StateDBPath = filepath.Join(stateDir(), "state.db")
	c.StateKeyPath = filepath.Join(stateDir(), "device.key")
	c.MaxFileMiB = 500
	c.MaxBatchMiB = 1024
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Scopes returns the scopes requested at login: OpenID basics plus the API
// scope when one is configured.
func (c *Config) Scopes() []string {
	scopes := []string{"openid", "profile", "email", "offline_access"}
	if c.APIScope != "" {
		scopes = append(scopes, c.APIScope)
	}
	return scopes
}

// DeviceAuthURL and TokenURL derive the OAuth2 endpoints from Authority.
func (c *Config) DeviceAuthURL() string {
	return strings.TrimRight(c.Authority, "/") + "/oauth2/v2.0/devicecode"
}

func (c *Config) TokenURL() string {
	return strings.TrimRight(c.Authority, "/") + "/oauth2/v2.0/token"
}

// LogoutURL is the browser URL that ends the identity provider session.
func (c *Config) LogoutURL() string {
	u := strings.TrimRight(c.Authority, "/") + "/oauth2/v2.0/logout"
	if c.PostLogoutRedirectURL != "" {
		u += "?post_logout_redirect_uri=" + c.PostLogoutRedirectURL
	}
	return u
}

func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "docchat")
	}
	return ".docchat"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags (if present).
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
