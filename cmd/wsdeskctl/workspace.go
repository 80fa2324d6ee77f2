package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/lifecycle"
)

var createName string

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Workspace management commands",
}

var wsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			if err := a.dashboard.LoadWorkspaces(ctx); err != nil {
				return err
			}
			printResult(a.dashboard.Cards())
			return nil
		})
	},
}

var wsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get workspace details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			ws, err := a.registry.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printResult(ws)
			return nil
		})
	},
}

var wsCreateCmd = &cobra.Command{
	Use:   "create <service>",
	Short: "Launch a workspace from a service",
	Long: `Launch a workspace from a service. Without --name the backend picks
{service}-{8 hex chars}. After the backend accepts the request the command
waits briefly for the workspace to settle and then lists active workspaces.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			if _, err := a.controller.Create(ctx, args[0], createName); err != nil {
				return reported(err)
			}
			if ctx.Err() == nil {
				printResult(a.dashboard.Cards())
			}
			return nil
		})
	},
}

var wsDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a workspace",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			if _, err := a.controller.Delete(ctx, args[0], lifecycle.FromList); err != nil {
				if core.IsCode(err, core.ErrDeclined) {
					fmt.Fprintln(os.Stderr, "Aborted.")
					return nil
				}
				return reported(err)
			}
			printResult(a.dashboard.Cards())
			return nil
		})
	},
}

var wsLogsCmd = &cobra.Command{
	Use:   "logs <name>",
	Short: "Print a workspace's container logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			logs, err := a.registry.Logs(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "json" {
				printResult(map[string]string{"logs": logs})
				return nil
			}
			if logs == "" {
				logs = "No logs available\n"
			}
			fmt.Print(logs)
			return nil
		})
	},
}

func init() {
	wsCreateCmd.Flags().StringVarP(&createName, "name", "n", "", "Workspace name (letters, numbers, dashes, underscores)")
	wsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	workspaceCmd.AddCommand(wsListCmd, wsGetCmd, wsCreateCmd, wsDeleteCmd, wsLogsCmd)
	rootCmd.AddCommand(workspaceCmd)
}
