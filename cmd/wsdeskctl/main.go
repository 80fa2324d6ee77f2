package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	apiURL      string
	output      string
	logLevel    string
	metricsAddr string
	assumeYes   bool
)

var rootCmd = &cobra.Command{
	Use:   "wsdeskctl",
	Short: "wsdesk CLI - launch and watch remote-desktop workspaces",
	Long: `wsdeskctl browses the service catalog, creates and deletes workspaces,
and watches a running workspace's status and remote-display session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startMetricsServer(cmd.Context(), metricsAddr)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiURL, "api-url", "a", "", "Backend API URL (default $WSDESK_API_URL or http://localhost:5000)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
}
