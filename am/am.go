// Package am holds the BFD core configuration: where the database lives,
// how the store retries transient failures, and who the system admins are.
// Configuration is read from bfd.toml (project or user scope) with BFD_*
// environment variables taking precedence.
package am

// Config represents the core BFD configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Store    StoreConfig    `mapstructure:"store"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig configures the tag store's handling of transient storage
// failures. Values <= 0 fall back to the defaults (3 attempts, 50ms backoff).
type StoreConfig struct {
	RetryAttempts  int `mapstructure:"retry_attempts"`   // bounded re-attempts per single-key operation
	RetryBackoffMS int `mapstructure:"retry_backoff_ms"` // base backoff between attempts, doubled each retry
}

// LogConfig configures log output
type LogConfig struct {
	JSON      bool `mapstructure:"json"`      // JSON structured output instead of console
	Verbosity int  `mapstructure:"verbosity"` // 0 = warnings, 1 = info, 2 = debug
}

// AdminConfig names actors with unconditional access to every capability.
// System admin identity is always passed explicitly into the permission
// resolver; this list only seeds that actor state at the edges.
type AdminConfig struct {
	SystemAdmins []string `mapstructure:"system_admins"`
}

// Default values applied by SetDefaults and by consumers when a field is
// out of range.
const (
	DefaultDatabasePath   = "bfd.db"
	DefaultRetryAttempts  = 3
	DefaultRetryBackoffMS = 50
)

// RetryAttemptsOrDefault returns the configured attempt count, or the
// default when unset or invalid.
func (c StoreConfig) RetryAttemptsOrDefault() int {
	if c.RetryAttempts <= 0 {
		return DefaultRetryAttempts
	}
	return c.RetryAttempts
}

// RetryBackoffMSOrDefault returns the configured base backoff, or the
// default when unset or invalid.
func (c StoreConfig) RetryBackoffMSOrDefault() int {
	if c.RetryBackoffMS <= 0 {
		return DefaultRetryBackoffMS
	}
	return c.RetryBackoffMS
}

// IsSystemAdmin reports whether the identifier appears in the configured
// system admin list.
func (c AdminConfig) IsSystemAdmin(id string) bool {
	for _, admin := range c.SystemAdmins {
		if admin == id {
			return true
		}
	}
	return false
}
