package main

import (
	"github.com/Veraticus/regulaite/internal/cli"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the active rule table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			table, err := loadRules(settings)
			if err != nil {
				return err
			}
			return cli.RenderRules(cmd.OutOrStdout(), table)
		},
	}
}
