package dedupe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a deduplication scan",
	Long: `Run a single deduplication scan over the most recently created entities.

Each scanned entity is compared against its nearest neighbors by embedding
similarity, and surviving candidate pairs are confirmed by the language
model. The resulting report lists confirmed duplicate pairs with confidence
scores; no entities are merged.`,
	RunE: runDeduplication,
}

var (
	runGroupID string
	runLimit   int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runGroupID, "group-id", "", "Group ID to scan (defaults to configured group)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "Number of recent entities to scan (defaults to configured limit)")
}

func runDeduplication(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	report, err := engine.Run(cmd.Context(), runGroupID, runLimit)
	if err != nil {
		return fmt.Errorf("deduplication run failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return nil
}
