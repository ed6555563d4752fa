package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"jirakeep/internal/config"
	"jirakeep/internal/jira"
	"jirakeep/internal/rota"
)

// newDutyCmd builds a rotation subcommand. The vanguard and show-and-tell
// commands share everything except the duty texts.
func newDutyCmd(use, short, long string, duty rota.Duty, cfg *config.Config, opts *rootOptions) *cobra.Command {
	var (
		toolFile       string
		projectKey     string
		boardID        int
		epicKey        string
		sprintTemplate string
		sprintStart    int
		people         []string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, cfg, opts, toolFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("project") && resolved.ProjectKey != "" {
				projectKey = resolved.ProjectKey
			}
			if !flags.Changed("board") && resolved.BoardID != 0 {
				boardID = resolved.BoardID
			}
			if !flags.Changed("epic") && resolved.EpicKey != "" {
				epicKey = resolved.EpicKey
			}
			if !flags.Changed("sprint-template") && resolved.SprintTemplate != "" {
				sprintTemplate = resolved.SprintTemplate
			}
			if !flags.Changed("sprint-start") && resolved.SprintStart != 0 {
				sprintStart = resolved.SprintStart
			}
			if !flags.Changed("people") && len(resolved.PeopleQueue) > 0 {
				people = resolved.PeopleQueue
			}

			switch {
			case projectKey == "":
				return errors.New("a project key is required (--project or config)")
			case boardID == 0:
				return errors.New("a board id is required (--board or config)")
			case epicKey == "":
				return errors.New("an epic key is required (--epic or config)")
			case sprintStart == 0:
				return errors.New("a starting sprint number is required (--sprint-start or config)")
			case len(people) == 0:
				return errors.New("an assignee queue is required (--people or config)")
			}
			if err := rota.ValidateTemplate(sprintTemplate); err != nil {
				return err
			}

			planner := rota.New(newTrackerClient(resolved), duty, resolved.MaxResults)
			plan, err := planner.Plan(cmd.Context(), rota.Params{
				Project:        projectKey,
				BoardID:        boardID,
				EpicKey:        epicKey,
				SprintTemplate: sprintTemplate,
				SprintStart:    sprintStart,
				Queue:          people,
			})
			if err != nil {
				return err
			}

			if opts.json {
				if err := writeJSON(map[string]any{
					"duty":    duty.Name,
					"plan":    plan,
					"dry_run": resolved.DryRun,
				}); err != nil {
					return err
				}
			} else if err := writeRotaPlan(plan, resolved.DryRun); err != nil {
				return err
			}

			if !resolved.DryRun {
				report := func(assignment rota.Assignment, created jira.CreatedIssue) {
					_ = writePlain("created %s for %s in sprint %s (week %d)\n",
						created.Key, assignment.Assignee, assignment.SprintName, assignment.Week)
				}
				if opts.json {
					report = nil
				}
				if err := planner.Apply(cmd.Context(), plan, resolved.SprintField, report); err != nil {
					return err
				}
			}

			if opts.json {
				return nil
			}
			return writeUnassigned(plan.Unassigned)
		},
	}

	cmd.Flags().StringVar(&toolFile, "config", "", "per-tool YAML config file")
	cmd.Flags().StringVarP(&projectKey, "project", "p", "", "project key the duty issues are created in")
	cmd.Flags().IntVar(&boardID, "board", 0, "id of the board holding the sprints")
	cmd.Flags().StringVarP(&epicKey, "epic", "e", "", fmt.Sprintf("epic the %s issues are filed under", duty.Name))
	cmd.Flags().StringVar(&sprintTemplate, "sprint-template", "Sprint ${sprint_number}", "sprint name template, expanded with ${sprint_number}")
	cmd.Flags().IntVar(&sprintStart, "sprint-start", 0, "sprint number to start scheduling at")
	cmd.Flags().StringSliceVar(&people, "people", nil, "assignee queue, consumed in order")
	return cmd
}
