package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultInterval           = 10 * time.Minute
	DefaultStalenessThreshold = 10 * time.Minute
	DefaultQueryTimeout       = 15 * time.Second
	DefaultRemedyTimeout      = 1 * time.Minute
	DefaultTimestampColumn    = "o_ts_exch"
)

// Config is the top-level configuration for the feedwatch daemon.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
}

// MonitorConfig holds all daemon settings.
type MonitorConfig struct {
	// Interval is the fixed cycle cadence. Each cycle's deadline is anchored
	// to the intended start of the previous cycle, not to wall-clock after
	// sleep, so cycle work does not accumulate skew.
	Interval time.Duration `yaml:"interval"`

	// StalenessThreshold is how old an instrument's last update may be
	// before the instrument counts as stale. One value for all instruments.
	StalenessThreshold time.Duration `yaml:"staleness_threshold"`

	// QueryTimeout bounds each per-instrument backend query.
	QueryTimeout time.Duration `yaml:"query_timeout"`

	// Instruments is the list of data feeds to watch.
	Instruments []Instrument `yaml:"instruments"`

	// Backend selects and configures the time-series store queried for
	// last-update timestamps.
	Backend BackendConfig `yaml:"backend"`

	// Telegram configures the alert delivery channel.
	Telegram TelegramConfig `yaml:"telegram"`

	// Remediation configures the recovery command run when an alert fires.
	Remediation RemediationConfig `yaml:"remediation"`
}

// Instrument describes one watched data feed.
type Instrument struct {
	// Label is a unique, human-readable identifier shown in alerts.
	Label string `yaml:"label"`

	// SourceKey is the backend lookup key: the table name for the
	// clickhouse backend, the metric name for the prometheus backend.
	SourceKey string `yaml:"source_key"`
}

// BackendConfig configures the time-series store.
type BackendConfig struct {
	// Type is the backend type: clickhouse | prometheus.
	Type string `yaml:"type"`

	// Addr is the backend address: host:port for clickhouse, the full
	// metrics endpoint URL for prometheus.
	Addr string `yaml:"addr"`

	// ClickHouse fields — used when Type == "clickhouse".
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable that holds the
	// database password.
	PasswordEnv string `yaml:"password_env"`
	// TimestampColumn is the column max()'d to obtain the last update time.
	TimestampColumn string `yaml:"timestamp_column"`

	// Auth configures HTTP authentication for the prometheus backend.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options for the prometheus backend.
	TLS TLSConfig `yaml:"tls"`
}

// Password returns the database password resolved from the environment.
// Returns empty string if PasswordEnv is unset or the variable is not found.
func (b BackendConfig) Password() string {
	if b.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(b.PasswordEnv)
}

// AuthConfig specifies the authentication mode for an HTTP backend.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields — used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields — used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields — used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields — used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for the prometheus backend.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// TelegramConfig configures the alert delivery channel.
type TelegramConfig struct {
	// TokenEnv is the name of the environment variable that holds the bot
	// token. The token itself never appears in the config file.
	TokenEnv string `yaml:"token_env"`

	// ChatID is the destination chat identifier.
	ChatID string `yaml:"chat_id"`
}

// Token returns the bot token resolved from the environment.
func (t TelegramConfig) Token() string {
	if t.TokenEnv == "" {
		return ""
	}
	return os.Getenv(t.TokenEnv)
}

// RemediationConfig configures the recovery command.
type RemediationConfig struct {
	// Command is the path of the executable to run when an alert fires.
	// Empty disables remediation; alerts are still sent.
	Command string `yaml:"command"`

	// Args are passed to the command verbatim.
	Args []string `yaml:"args"`

	// Timeout bounds one remediation attempt.
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval:           DefaultInterval,
			StalenessThreshold: DefaultStalenessThreshold,
			QueryTimeout:       DefaultQueryTimeout,
			Backend: BackendConfig{
				TimestampColumn: DefaultTimestampColumn,
			},
			Remediation: RemediationConfig{
				Timeout: DefaultRemedyTimeout,
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	m := cfg.Monitor
	if m.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive")
	}
	if m.StalenessThreshold <= 0 {
		return fmt.Errorf("monitor.staleness_threshold must be positive")
	}
	if m.QueryTimeout <= 0 {
		return fmt.Errorf("monitor.query_timeout must be positive")
	}
	if len(m.Instruments) == 0 {
		return fmt.Errorf("monitor.instruments must not be empty")
	}
	for i, inst := range m.Instruments {
		if inst.Label == "" {
			return fmt.Errorf("instruments[%d]: label is required", i)
		}
		if inst.SourceKey == "" {
			return fmt.Errorf("instruments[%d] %q: source_key is required", i, inst.Label)
		}
	}
	switch m.Backend.Type {
	case "clickhouse", "prometheus":
	default:
		return fmt.Errorf("backend.type: unknown type %q", m.Backend.Type)
	}
	if m.Backend.Addr == "" {
		return fmt.Errorf("backend.addr is required")
	}
	switch m.Backend.Auth.Mode {
	case "mtls", "apikey", "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("backend.auth: unknown auth mode %q", m.Backend.Auth.Mode)
	}
	if m.Telegram.TokenEnv == "" {
		return fmt.Errorf("telegram.token_env is required")
	}
	if m.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if m.Remediation.Command != "" && m.Remediation.Timeout <= 0 {
		return fmt.Errorf("remediation.timeout must be positive")
	}
	return nil
}
