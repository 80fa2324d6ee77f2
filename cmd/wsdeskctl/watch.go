package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/lifecycle"
	"github.com/lzjever/mbos-wsdesk/internal/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Watch a workspace's status and remote-display session",
	Long: `Open a workspace the way the detail view does: its status is polled on a
fixed interval and, if it is running, a remote-display session is attached.
The session never reconnects on its own.

Commands (type and press enter):
  r   reconnect the session
  l   show or hide container logs
  d   delete the workspace
  q   quit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), func(ctx context.Context, a *app) error {
			return watch(ctx, a, args[0])
		})
	},
}

func watch(ctx context.Context, a *app, name string) error {
	detail, err := a.dashboard.OpenDetail(ctx, name)
	if err != nil {
		return reported(err)
	}
	printResult(detail.Workspace())

	stopStatus := detail.OnStatusChange(func(ws core.Workspace) {
		fmt.Printf("Status: %s\n", statusText(ws.CurrentStatus))
	})
	defer stopStatus()
	sessionSub := detail.OnSessionChange(func(c session.Change) {
		fmt.Printf("Session: %s\n", indicatorText(c.To.Indicator()))
		if c.Err != nil {
			a.log.Debug(core.Message(c.Err))
		}
	})
	defer sessionSub.Dispose()
	fmt.Printf("Session: %s\n", indicatorText(detail.Indicator()))
	fmt.Fprintln(os.Stderr, "r=reconnect l=logs d=delete q=quit")

	lines := make(chan string)
	go readLines(os.Stdin, lines)
	answers = lines
	defer func() { answers = nil }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				// No terminal: keep watching until interrupted.
				lines = nil
				continue
			}
			switch line {
			case "r":
				if err := detail.Reconnect(ctx); err != nil {
					a.notifier.Error(core.Message(err))
				}
			case "l":
				pane := detail.ToggleLogs(ctx)
				if pane.Visible {
					fmt.Print(pane.Text)
					if len(pane.Text) > 0 && pane.Text[len(pane.Text)-1] != '\n' {
						fmt.Println()
					}
				} else {
					fmt.Println("Logs hidden.")
				}
			case "d":
				if _, err := a.controller.Delete(ctx, name, lifecycle.FromDetail); err != nil {
					continue
				}
				printResult(a.dashboard.Cards())
				return nil
			case "q":
				return nil
			case "":
			default:
				fmt.Fprintf(os.Stderr, "unknown command %q\n", line)
			}
		}
	}
}

func init() {
	watchCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before deleting")
	rootCmd.AddCommand(watchCmd)
}
