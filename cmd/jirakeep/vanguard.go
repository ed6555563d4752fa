package main

import (
	"github.com/spf13/cobra"

	"jirakeep/internal/config"
	"jirakeep/internal/rota"
)

func newVanguardCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	return newDutyCmd(
		"support-vanguard",
		"Schedule the support vanguard rotation",
		`Support-vanguard maps the assignee queue onto the weekly support slots
of upcoming sprints, starting at the configured sprint number. One duty
issue is created per week under the rotation epic, assigned to the next
person in the queue, and placed into the sprint.`,
		rota.Vanguard(), cfg, opts,
	)
}
