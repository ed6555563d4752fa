package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearJiraEnv keeps ambient JIRA_* variables from leaking into tests.
func clearJiraEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		baseURLEnvKey, usernameEnvKey, apiTokenEnvKey, projectKeyEnvKey,
		boardIDEnvKey, epicKeyEnvKey, sprintTemplateEnvKey,
		sprintStartEnvKey, peopleQueueEnvKey, dryRunEnvKey,
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.SprintField != DefaultSprintField {
		t.Fatalf("expected default sprint field %q, got %q", DefaultSprintField, cfg.SprintField)
	}
	if cfg.MaxResults != DefaultMaxResults {
		t.Fatalf("expected default max results %d, got %d", DefaultMaxResults, cfg.MaxResults)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.BaseURL != "" || cfg.Username != "" || cfg.APIToken != "" {
		t.Fatal("expected empty connection settings by default")
	}
}

func TestLoadGlobalFile(t *testing.T) {
	clearJiraEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, globalFileName)
	if err := os.WriteFile(path, []byte(`base_url = "https://jira.example.com/"
username = "jane@example.com"
sprint_field = "customfield_10999"
log_level = "warn"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configDirEnvKey, dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "https://jira.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.BaseURL)
	}
	if cfg.Username != "jane@example.com" {
		t.Fatalf("expected username from file, got %q", cfg.Username)
	}
	if cfg.SprintField != "customfield_10999" {
		t.Fatalf("expected sprint field from file, got %q", cfg.SprintField)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log level warn, got %q", cfg.LogLevel)
	}
}

func TestLoadMissingGlobalFileIsFine(t *testing.T) {
	clearJiraEnv(t)
	t.Setenv(configDirEnvKey, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxResults != DefaultMaxResults {
		t.Fatalf("expected defaults, got max results %d", cfg.MaxResults)
	}
}

func TestApplyToolFile(t *testing.T) {
	clearJiraEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "support_vanguard.yaml")
	if err := os.WriteFile(path, []byte(`project_key: MAAS
board_id: 42
epic_key: MAAS-100
sprint_template: "Pulse ${sprint_number}"
sprint_starting_number: 7
people_queue:
  - one@example.com
  - two@example.com
dry_run: true
`), 0o644); err != nil {
		t.Fatalf("write tool config: %v", err)
	}

	cfg := Default()
	cfg.BaseURL = "https://jira.example.com"
	if err := cfg.ApplyToolFile(path); err != nil {
		t.Fatalf("apply tool file: %v", err)
	}

	if cfg.ProjectKey != "MAAS" || cfg.BoardID != 42 || cfg.EpicKey != "MAAS-100" {
		t.Fatalf("unexpected tool settings: %+v", cfg)
	}
	if cfg.SprintTemplate != "Pulse ${sprint_number}" || cfg.SprintStart != 7 {
		t.Fatalf("unexpected sprint settings: %+v", cfg)
	}
	if len(cfg.PeopleQueue) != 2 || cfg.PeopleQueue[0] != "one@example.com" {
		t.Fatalf("unexpected people queue: %v", cfg.PeopleQueue)
	}
	if !cfg.DryRun {
		t.Fatal("expected dry run from tool file")
	}
	if cfg.BaseURL != "https://jira.example.com" {
		t.Fatalf("expected base URL untouched, got %q", cfg.BaseURL)
	}
}

func TestEnvOverridesToolFile(t *testing.T) {
	clearJiraEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.yaml")
	if err := os.WriteFile(path, []byte(`epic_key: MAAS-100
people_queue: [one@example.com]
`), 0o644); err != nil {
		t.Fatalf("write tool config: %v", err)
	}

	t.Setenv(epicKeyEnvKey, "MAAS-200")
	t.Setenv(peopleQueueEnvKey, "a@example.com, b@example.com")

	cfg := Default()
	if err := cfg.ApplyToolFile(path); err != nil {
		t.Fatalf("apply tool file: %v", err)
	}
	if cfg.EpicKey != "MAAS-200" {
		t.Fatalf("expected env to win, got %q", cfg.EpicKey)
	}
	if len(cfg.PeopleQueue) != 2 || cfg.PeopleQueue[1] != "b@example.com" {
		t.Fatalf("expected queue from env, got %v", cfg.PeopleQueue)
	}
}

func TestApplyEnvAggregatesProblems(t *testing.T) {
	clearJiraEnv(t)
	t.Setenv(boardIDEnvKey, "not-a-number")
	t.Setenv(sprintStartEnvKey, "also-not")

	cfg := Default()
	err := cfg.applyEnv()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, boardIDEnvKey) || !strings.Contains(msg, sprintStartEnvKey) {
		t.Fatalf("expected both problems reported, got: %v", err)
	}
}

func TestRequireConnection(t *testing.T) {
	cfg := Default()
	err := cfg.RequireConnection()
	if err == nil {
		t.Fatal("expected error for empty connection settings")
	}
	for _, want := range []string{"base URL", "username", "API token", "JIRA_API_TOKEN"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q mentioned, got: %v", want, err)
		}
	}

	cfg.BaseURL = "https://jira.example.com"
	cfg.Username = "jane@example.com"
	cfg.APIToken = "token"
	if err := cfg.RequireConnection(); err != nil {
		t.Fatalf("expected complete settings to pass, got %v", err)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a@example.com ,, b@example.com ")
	if len(got) != 2 || got[0] != "a@example.com" || got[1] != "b@example.com" {
		t.Fatalf("unexpected split: %v", got)
	}
	if splitCSV("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
