package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	inserr "github.com/voxmetrics/callsight/internal/errors"
	"github.com/voxmetrics/callsight/server/runner/ingest"
	"github.com/voxmetrics/callsight/store"
)

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest raw calls from a JSON file",
	Long: `Ingest raw calls from a JSON file.

The file holds an array of raw call objects:

  [{"call_id": "c-1", "agent_id": "a-7", "customer_id": "u-3",
    "start_time": "2025-06-01T10:00:00Z", "duration_seconds": 540,
    "transcript": "Agent: Hi, this is Dana...\nCustomer: Hi..."}]

Calls without a call_id get a generated one. Each call is scored,
embedded, persisted and indexed; a failing call is reported but never
aborts the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading input file: %w", err)
		}
		var raws []*ingest.RawCall
		if err := json.Unmarshal(data, &raws); err != nil {
			return fmt.Errorf("parsing input file: %w", err)
		}
		if len(raws) == 0 {
			return fmt.Errorf("input file contains no calls")
		}

		ctx, stop := signalContext()
		defer stop()

		e, err := newEngine(ctx, 0)
		if err != nil {
			return err
		}
		defer e.close()

		e.runner.SetConcurrency(concurrency)
		outcomes, err := e.runner.Run(ctx, raws)
		if err != nil {
			return err
		}

		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "call %s failed: %v\n", o.CallID, o.Err)
			}
		}
		fmt.Fprintf(os.Stdout, "ingested %d calls (%d failed)\n", len(outcomes)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d calls failed", failed, len(outcomes))
		}
		return nil
	},
}

// --- recommend ---

var recommendCmd = &cobra.Command{
	Use:   "recommend <call-id>",
	Short: "Print similar calls and coaching nudges for a call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")

		ctx, stop := signalContext()
		defer stop()

		e, err := newEngine(ctx, topK)
		if err != nil {
			return err
		}
		defer e.close()

		record, err := e.store.GetCall(ctx, args[0])
		if err != nil {
			return err
		}
		if record == nil {
			return inserr.NotFound("call", args[0])
		}

		recommendation, err := e.recommender.Recommend(ctx, toInsightCall(record))
		if err != nil {
			return err
		}
		return printJSON(recommendation)
	},
}

// --- analytics ---

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the per-agent sentiment leaderboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		e, err := newEngine(ctx, 0)
		if err != nil {
			return err
		}
		defer e.close()

		stats, err := e.analytics.AgentLeaderboard(ctx)
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

// --- reindex ---

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Recompute features and embeddings for every stored call",
	Long: `Recompute features and embeddings for every stored call.

Useful after changing the embedding model or dimension. Calls are
re-run through the full pipeline and upserted in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		ctx, stop := signalContext()
		defer stop()

		e, err := newEngine(ctx, 0)
		if err != nil {
			return err
		}
		defer e.close()

		records, err := e.store.ListCalls(ctx, &store.FindCall{})
		if err != nil {
			return err
		}
		raws := make([]*ingest.RawCall, 0, len(records))
		for _, r := range records {
			raws = append(raws, &ingest.RawCall{
				ID:              r.ID,
				AgentID:         r.AgentID,
				CustomerID:      r.CustomerID,
				Language:        r.Language,
				StartTime:       time.Unix(r.StartTs, 0),
				DurationSeconds: r.DurationSeconds,
				Transcript:      r.Transcript,
			})
		}
		if len(raws) == 0 {
			fmt.Fprintln(os.Stdout, "no calls to reindex")
			return nil
		}

		e.runner.SetConcurrency(concurrency)
		outcomes, err := e.runner.Run(ctx, raws)
		if err != nil {
			return err
		}

		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "call %s failed: %v\n", o.CallID, o.Err)
			}
		}
		fmt.Fprintf(os.Stdout, "reindexed %d calls (%d failed)\n", len(outcomes)-failed, failed)
		return nil
	},
}

func init() {
	ingestCmd.Flags().Int("concurrency", 4, "calls processed in parallel")
	recommendCmd.Flags().Int("top-k", 5, "number of similar calls to return")
	reindexCmd.Flags().Int("concurrency", 4, "calls processed in parallel")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
