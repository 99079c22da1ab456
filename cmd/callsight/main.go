package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "callsight",
	Short: "Call-insight engine for sales-call transcripts",
	Long: `callsight turns raw sales-call transcripts into sentiment scores,
talk ratios and semantic embeddings, finds similar calls, and
synthesizes coaching recommendations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Version: version,
}

func main() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.AddCommand(ingestCmd, recommendCmd, analyticsCmd, reindexCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
