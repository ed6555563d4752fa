package main

import (
	"github.com/spf13/cobra"

	"jirakeep/internal/config"
)

func newWhoamiCmd(cfg *config.Config, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify credentials by fetching the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, err := resolveConfig(cmd, cfg, opts, "")
			if err != nil {
				return err
			}
			user, err := newTrackerClient(resolved).Myself(cmd.Context())
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(user)
			}
			return writePlain("%s <%s>\n", user.DisplayName, user.EmailAddress)
		},
	}
}
