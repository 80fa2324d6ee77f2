package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend health",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			h, err := a.client.Health(ctx)
			if err != nil {
				return err
			}
			if output == "json" {
				printResult(h)
				return nil
			}
			fmt.Printf("Backend: %s\n", a.client.BaseURL())
			fmt.Printf("Status:  %s\n", h.Status)
			fmt.Printf("Docker:  %t\n", h.Docker)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
