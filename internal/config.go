package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is the remote replica-management API root.
	DefaultBaseURL = "https://api.sensay.io/v1"

	// DefaultAPIVersion is the API version date sent with every request.
	DefaultAPIVersion = "2025-03-25"

	// DefaultMessagesTable holds collected chat-platform messages.
	DefaultMessagesTable = "slack_messages"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds the operator's credentials and store settings. Secrets come
// from the config file or environment; commands receive the loaded value
// explicitly rather than reading ambient state.
type Config struct {
	OrganizationSecret string `yaml:"organization_secret"`
	APIVersion         string `yaml:"api_version"`
	BaseURL            string `yaml:"base_url,omitempty"`
	DatabasePath       string `yaml:"database_path"`
	MessagesTable      string `yaml:"messages_table"`
	TestUserID         string `yaml:"test_user_id,omitempty"`
}

// DefaultConfigPath returns ~/.replicactl.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".replicactl.yaml"), nil
}

// LoadConfig reads the config file at path (missing file is not an error),
// applies defaults, then applies environment overrides. Environment wins.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		APIVersion:    DefaultAPIVersion,
		BaseURL:       DefaultBaseURL,
		MessagesTable: DefaultMessagesTable,
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MessagesTable == "" {
		cfg.MessagesTable = DefaultMessagesTable
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SENSAY_ORGANIZATION_SECRET"); v != "" {
		cfg.OrganizationSecret = v
	}
	if v := os.Getenv("SENSAY_API_VERSION"); v != "" {
		cfg.APIVersion = v
	}
	if v := os.Getenv("SENSAY_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("REPLICACTL_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("REPLICACTL_TABLE"); v != "" {
		cfg.MessagesTable = v
	}
	if v := os.Getenv("REPLICACTL_TEST_USER"); v != "" {
		cfg.TestUserID = v
	}
}

// Validate checks that every field required for API and store access is
// present and well-formed.
func (c *Config) Validate() error {
	if c.OrganizationSecret == "" {
		return &ConfigError{Field: "organization_secret", Msg: "required"}
	}
	if c.APIVersion == "" {
		return &ConfigError{Field: "api_version", Msg: "required"}
	}
	if c.DatabasePath == "" {
		return &ConfigError{Field: "database_path", Msg: "required"}
	}
	if !tableNameRe.MatchString(c.MessagesTable) {
		return &ConfigError{Field: "messages_table", Msg: fmt.Sprintf("invalid table name %q", c.MessagesTable)}
	}
	return nil
}

// SaveConfig writes the config file with owner-only permissions; the file
// carries the organization secret.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
