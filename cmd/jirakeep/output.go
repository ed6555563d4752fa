package main

import (
	"fmt"
	"os"
	"strings"

	"jirakeep/internal/format"
	"jirakeep/internal/reconcile"
	"jirakeep/internal/rota"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeReconcilePlans(plans []reconcile.Plan, dryRun bool) error {
	verb := "updating"
	if dryRun {
		verb = "would update"
	}
	for _, plan := range plans {
		if err := writePlain("%s: %s\n", plan.Key, plan.Summary); err != nil {
			return err
		}
		for _, change := range plan.Changes {
			if err := writePlain("  %s %s: as is [%s] / to be [%s]\n",
				verb, change.Field, strings.Join(change.AsIs, ", "), strings.Join(change.ToBe, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRotaPlan(plan *rota.RunPlan, dryRun bool) error {
	for _, name := range plan.Skipped {
		if err := writePlain("sprint %s already has its duty issues, skipping\n", name); err != nil {
			return err
		}
	}
	if dryRun {
		for _, assignment := range plan.Assignments {
			if err := writePlain("would create %q for %s in sprint %s (week %d)\n",
				assignment.Summary, assignment.Assignee, assignment.SprintName, assignment.Week); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeUnassigned(unassigned []string) error {
	if len(unassigned) == 0 {
		return nil
	}
	return writePlain("ran out of sprints; %d assignees left unassigned: %s\n",
		len(unassigned), strings.Join(unassigned, ", "))
}
