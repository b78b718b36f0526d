package dedupe

import (
	"context"
	"fmt"

	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/spf13/cobra"
)

var indicesCmd = &cobra.Command{
	Use:   "init-indices",
	Short: "Create graph indices and constraints",
	Long: `Create the graph indices and constraints the deduplication pipeline
depends on, including the vector index over entity embeddings. Safe to run
repeatedly; existing indices are left untouched.`,
	RunE: runInitIndices,
}

func init() {
	rootCmd.AddCommand(indicesCmd)
}

func runInitIndices(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	if err := engine.CreateIndices(cmd.Context()); err != nil {
		return fmt.Errorf("failed to create indices: %w", err)
	}

	fmt.Println("Indices created")
	return nil
}
