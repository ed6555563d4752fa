package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jirakeep/internal/config"
	"jirakeep/internal/jira"
)

// rootOptions holds the values of the persistent connection flags. Flag
// values only win over file and environment settings when the flag was
// actually given, so the defaults here are placeholders.
type rootOptions struct {
	baseURL  string
	username string
	apiToken string
	dryRun   bool
	json     bool
	logLevel string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "jirakeep",
		Short:         "Jirakeep automates recurring Jira maintenance chores",
		Long: `Jirakeep automates recurring Jira maintenance chores: closing stale
orphan issues, propagating fields from an issue down its child tree, and
creating rotating duty issues in sprint slots.

Settings are resolved from ~/.jirakeep.toml, a per-tool YAML config file
(--config), JIRA_* environment variables, and flags, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = version

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.baseURL, "base-url", "b", "", "URL of the Jira instance")
	flags.StringVarP(&opts.username, "username", "u", "", "username to log in to Jira")
	flags.StringVarP(&opts.apiToken, "api-token", "t", "", "Jira API token (or JIRA_API_TOKEN)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "compute and print changes without applying anything")
	flags.BoolVar(&opts.json, "json", false, "output JSON")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		warning, err := configureLoggerForCLI(opts.logLevel, cfg.LogLevel)
		if err != nil {
			return err
		}
		if warning != "" {
			fmt.Fprintln(os.Stderr, warning)
		}
		return nil
	}

	cmd.AddCommand(
		newCloseOrphansCmd(cfg, opts),
		newUpdateChildrenCmd(cfg, opts),
		newVanguardCmd(cfg, opts),
		newShowAndTellCmd(cfg, opts),
		newWhoamiCmd(cfg, opts),
	)

	return cmd
}

// resolveConfig layers the tool config file (if any) onto the global
// config, then applies explicitly given command-line flags on top, and
// validates the connection settings.
func resolveConfig(cmd *cobra.Command, cfg *config.Config, opts *rootOptions, toolFile string) (*config.Config, error) {
	resolved := *cfg
	if toolFile != "" {
		if err := resolved.ApplyToolFile(toolFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		resolved.BaseURL = opts.baseURL
	}
	if flags.Changed("username") {
		resolved.Username = opts.username
	}
	if flags.Changed("api-token") {
		resolved.APIToken = opts.apiToken
	}
	if flags.Changed("dry-run") {
		resolved.DryRun = opts.dryRun
	}

	if err := resolved.RequireConnection(); err != nil {
		return nil, err
	}
	return &resolved, nil
}

func newTrackerClient(cfg *config.Config) *jira.Client {
	return jira.NewClient(cfg.BaseURL, cfg.Username, cfg.APIToken)
}
