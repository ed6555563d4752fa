package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSprintField = "customfield_10020"
	DefaultMaxResults  = 500
	DefaultLogLevel    = "info"

	configDirEnvKey = "JIRAKEEP_CONFIG_DIR"
	globalFileName  = ".jirakeep.toml"

	baseURLEnvKey        = "JIRA_URL"
	usernameEnvKey       = "JIRA_USERNAME"
	apiTokenEnvKey       = "JIRA_API_TOKEN"
	projectKeyEnvKey     = "JIRA_PROJECT_KEY"
	boardIDEnvKey        = "JIRA_BOARD_ID"
	epicKeyEnvKey        = "JIRA_EPIC_KEY"
	sprintTemplateEnvKey = "JIRA_SPRINT_TEMPLATE"
	sprintStartEnvKey    = "JIRA_SPRINT_STARTING_NUMBER"
	peopleQueueEnvKey    = "JIRA_PEOPLE_QUEUE"
	dryRunEnvKey         = "JIRA_DRY_RUN"
)

// Config is the merged runtime configuration. Resolution order, later wins:
// defaults, global TOML file, per-tool YAML file, JIRA_* environment
// variables, command-line flags.
type Config struct {
	BaseURL  string `toml:"base_url" yaml:"base_url"`
	Username string `toml:"username" yaml:"username"`
	APIToken string `toml:"-" yaml:"api_token"`

	SprintField string `toml:"sprint_field" yaml:"sprint_field"`
	MaxResults  int    `toml:"max_results" yaml:"max_results"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`

	DryRun bool `toml:"-" yaml:"dry_run"`

	// Per-tool defaults; settable through tool config files and the
	// environment but kept out of the global file.
	ProjectKey     string   `toml:"-" yaml:"project_key"`
	BoardID        int      `toml:"-" yaml:"board_id"`
	EpicKey        string   `toml:"-" yaml:"epic_key"`
	SprintTemplate string   `toml:"-" yaml:"sprint_template"`
	SprintStart    int      `toml:"-" yaml:"sprint_starting_number"`
	PeopleQueue    []string `toml:"-" yaml:"people_queue"`
	StaleDays      int      `toml:"-" yaml:"stale_days"`
	TransitionTo   string   `toml:"-" yaml:"transition_to"`
	Issue          string   `toml:"-" yaml:"issue"`
	Append         []string `toml:"-" yaml:"append"`
	Overwrite      []string `toml:"-" yaml:"overwrite"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		SprintField: DefaultSprintField,
		MaxResults:  DefaultMaxResults,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads the global config file and applies environment overrides. A
// .env file in the working directory is honored first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.normalize()

	return &cfg, nil
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, globalFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, globalFileName), nil
}

// ApplyToolFile layers a per-tool YAML config file onto the config.
// Environment overrides are re-applied afterwards so they keep precedence
// over file values.
func (c *Config) ApplyToolFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read tool config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse tool config %s: %w", path, err)
	}
	if err := c.applyEnv(); err != nil {
		return err
	}
	c.normalize()
	return nil
}

// RequireConnection validates that the Jira connection settings are
// present. Missing settings are reported together, with remediation, before
// any network activity.
func (c *Config) RequireConnection() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "base URL: set base_url in the config file, JIRA_URL, or --base-url")
	}
	if c.Username == "" {
		missing = append(missing, "username: set username in the config file, JIRA_USERNAME, or --username")
	}
	if c.APIToken == "" {
		missing = append(missing, "API token: set JIRA_API_TOKEN, api_token in a tool config file, or --api-token")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required settings:\n  - %s", strings.Join(missing, "\n  - "))
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var problems []string

	if raw := strings.TrimSpace(os.Getenv(baseURLEnvKey)); raw != "" {
		c.BaseURL = raw
	}
	if raw := strings.TrimSpace(os.Getenv(usernameEnvKey)); raw != "" {
		c.Username = raw
	}
	if raw := strings.TrimSpace(os.Getenv(apiTokenEnvKey)); raw != "" {
		c.APIToken = raw
	}
	if raw := strings.TrimSpace(os.Getenv(projectKeyEnvKey)); raw != "" {
		c.ProjectKey = raw
	}
	if raw := strings.TrimSpace(os.Getenv(epicKeyEnvKey)); raw != "" {
		c.EpicKey = raw
	}
	if raw := strings.TrimSpace(os.Getenv(sprintTemplateEnvKey)); raw != "" {
		c.SprintTemplate = raw
	}
	if raw := strings.TrimSpace(os.Getenv(peopleQueueEnvKey)); raw != "" {
		c.PeopleQueue = splitCSV(raw)
	}

	if raw := strings.TrimSpace(os.Getenv(boardIDEnvKey)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be an integer, got %q", boardIDEnvKey, raw))
		} else {
			c.BoardID = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(sprintStartEnvKey)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be an integer, got %q", sprintStartEnvKey, raw))
		} else {
			c.SprintStart = parsed
		}
	}
	if raw := strings.TrimSpace(os.Getenv(dryRunEnvKey)); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a boolean, got %q", dryRunEnvKey, raw))
		} else {
			c.DryRun = parsed
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid environment configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.SprintField == "" {
		c.SprintField = DefaultSprintField
	}
	if c.MaxResults <= 0 {
		c.MaxResults = DefaultMaxResults
	}
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
