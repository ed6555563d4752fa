package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jirakeep/internal/config"
)

func newCloseOrphansCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		toolFile     string
		projectKey   string
		staleDays    int
		transitionTo string
	)

	cmd := &cobra.Command{
		Use:   "close-orphans",
		Short: "Close parentless issues that have gone stale",
		Long: `Close-orphans finds tasks, stories, bugs and epics without a parent
that have not been updated for the given number of days, adds a comment
explaining the cleanup, and transitions them to the target status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, cfg, opts, toolFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("project") && resolved.ProjectKey != "" {
				projectKey = resolved.ProjectKey
			}
			if !cmd.Flags().Changed("stale-days") && resolved.StaleDays > 0 {
				staleDays = resolved.StaleDays
			}
			if !cmd.Flags().Changed("transition-to") && resolved.TransitionTo != "" {
				transitionTo = resolved.TransitionTo
			}
			if projectKey == "" {
				return errors.New("a project key is required (--project or config)")
			}
			if transitionTo == "" {
				return errors.New("a target status is required (--transition-to or config)")
			}

			client := newTrackerClient(resolved)
			jql := fmt.Sprintf("project = %q AND type IN (Task, Story, Bug, Epic)"+
				" AND status NOT IN (Done, Rejected) AND parent is null"+
				" AND updated <= -%dd ORDER BY created DESC", projectKey, staleDays)

			issues, err := client.Search(cmd.Context(), jql, resolved.MaxResults)
			if err != nil {
				return fmt.Errorf("search stale orphans: %w", err)
			}

			comment := fmt.Sprintf("Issue will be closed because it does not have a parent"+
				" and it has not been updated for %d days", staleDays)

			if opts.json {
				if err := writeJSON(map[string]any{
					"issues":  issues,
					"comment": comment,
					"dry_run": resolved.DryRun,
				}); err != nil {
					return err
				}
			} else {
				verb := "Closing"
				if resolved.DryRun {
					verb = "Would close"
				}
				if err := writePlain("%s %d issues with comment:\n  %s\n", verb, len(issues), comment); err != nil {
					return err
				}
				for _, issue := range issues {
					if err := writePlain(" %s | %s | %s\n", issue.Key, issue.Fields.IssueType.Name, issue.Fields.Summary); err != nil {
						return err
					}
				}
			}

			if resolved.DryRun {
				return nil
			}
			for _, issue := range issues {
				if err := client.AddComment(cmd.Context(), issue.Key, comment); err != nil {
					return err
				}
				if err := client.TransitionTo(cmd.Context(), issue.Key, transitionTo); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&toolFile, "config", "", "per-tool YAML config file")
	cmd.Flags().StringVarP(&projectKey, "project", "p", "", "project key to scan")
	cmd.Flags().IntVarP(&staleDays, "stale-days", "s", 60, "days without an update before an orphan counts as stale")
	cmd.Flags().StringVar(&transitionTo, "transition-to", "", "status to transition stale orphans to")
	return cmd
}
