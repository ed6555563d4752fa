package main

import (
	"github.com/spf13/cobra"

	"jirakeep/internal/config"
	"jirakeep/internal/rota"
)

func newShowAndTellCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	return newDutyCmd(
		"show-and-tell",
		"Schedule the show and tell rotation",
		`Show-and-tell maps the assignee queue onto the weekly presentation slots
of upcoming sprints, starting at the configured sprint number. One duty
issue is created per week under the rotation epic, assigned to the next
person in the queue, and placed into the sprint.`,
		rota.ShowAndTell(), cfg, opts,
	)
}
