package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jirakeep/internal/config"
	"jirakeep/internal/reconcile"
)

func newUpdateChildrenCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		toolFile  string
		issueKey  string
		appends   []string
		overwrite []string
	)

	cmd := &cobra.Command{
		Use:   "update-children",
		Short: "Propagate fields from an issue down its child tree",
		Long: `Update-children walks every descendant of the given issue and reconciles
the named fields against the issue's own values. Appended fields receive
the union of both value sets; overwritten fields are replaced outright.
Fields that are not named are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, cfg, opts, toolFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("issue") && resolved.Issue != "" {
				issueKey = resolved.Issue
			}
			if !cmd.Flags().Changed("append") && len(resolved.Append) > 0 {
				appends = resolved.Append
			}
			if !cmd.Flags().Changed("overwrite") && len(resolved.Overwrite) > 0 {
				overwrite = resolved.Overwrite
			}
			if issueKey == "" {
				return errors.New("an issue key is required (--issue or config)")
			}

			policies, err := buildPolicies(appends, overwrite)
			if err != nil {
				return err
			}
			if len(policies) == 0 {
				return errors.New("nothing to reconcile; name at least one field with --append or --overwrite")
			}

			reconciler := reconcile.New(newTrackerClient(resolved), resolved.MaxResults)
			plans, err := reconciler.Plans(cmd.Context(), issueKey, policies)
			if err != nil {
				return err
			}

			if opts.json {
				if err := writeJSON(map[string]any{
					"root":    issueKey,
					"plans":   plans,
					"dry_run": resolved.DryRun,
				}); err != nil {
					return err
				}
			} else if err := writeReconcilePlans(plans, resolved.DryRun); err != nil {
				return err
			}

			if resolved.DryRun {
				return nil
			}
			return reconciler.Apply(cmd.Context(), plans)
		},
	}

	cmd.Flags().StringVar(&toolFile, "config", "", "per-tool YAML config file")
	cmd.Flags().StringVarP(&issueKey, "issue", "i", "", "issue whose children are reconciled")
	cmd.Flags().StringSliceVarP(&appends, "append", "a", nil, "fields to union with the root's values (components, labels, versions)")
	cmd.Flags().StringSliceVarP(&overwrite, "overwrite", "o", nil, "fields to replace with the root's values (components, labels, versions)")
	return cmd
}

// buildPolicies turns the flag values into a policy map. A field named in
// both lists is overwritten; replacing is the stronger intent.
func buildPolicies(appends, overwrite []string) (map[reconcile.Field]reconcile.Policy, error) {
	policies := make(map[reconcile.Field]reconcile.Policy, len(appends)+len(overwrite))
	for _, raw := range appends {
		field, err := reconcile.ParseField(raw)
		if err != nil {
			return nil, fmt.Errorf("--append: %w", err)
		}
		policies[field] = reconcile.PolicyUnion
	}
	for _, raw := range overwrite {
		field, err := reconcile.ParseField(raw)
		if err != nil {
			return nil, fmt.Errorf("--overwrite: %w", err)
		}
		policies[field] = reconcile.PolicyOverwrite
	}
	return policies, nil
}
