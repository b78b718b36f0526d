package dedupe

import (
	"context"
	"fmt"

	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Backfill missing entity embeddings",
	Long: `Backfill embeddings for entities that have none.

Entities are embedded in batches from their name and description until no
entity in the group is missing an embedding. Run this before the first
deduplication scan, or after bulk imports that bypass the embedding step.`,
	RunE: runBackfill,
}

var (
	backfillGroupID   string
	backfillBatchSize int
)

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().StringVar(&backfillGroupID, "group-id", "", "Group ID to backfill (defaults to configured group)")
	backfillCmd.Flags().IntVar(&backfillBatchSize, "batch-size", 0, "Entities embedded per batch (defaults to configured batch size)")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	count, err := engine.BackfillEmbeddings(cmd.Context(), backfillGroupID, backfillBatchSize)
	if err != nil {
		return fmt.Errorf("embedding backfill failed after %d entities: %w", count, err)
	}

	fmt.Printf("Backfilled embeddings for %d entities\n", count)
	return nil
}
