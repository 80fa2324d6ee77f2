package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lzjever/mbos-wsdesk/internal/view"
)

var servicesCmd = &cobra.Command{
	Use:     "services",
	Aliases: []string{"svc"},
	Short:   "Service catalog commands",
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List launchable services",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			if err := a.dashboard.SwitchTab(ctx, view.TabServices); err != nil {
				return err
			}
			printResult(a.dashboard.ServiceCards())
			return nil
		})
	},
}

func init() {
	servicesCmd.AddCommand(servicesListCmd)
	rootCmd.AddCommand(servicesCmd)
}
