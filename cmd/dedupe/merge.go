package dedupe

import (
	"context"
	"fmt"
	"os"

	"github.com/soundprediction/dedupe/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge duplicate entities",
	Long: `Merge one or more duplicate entities into their keepers.

A single pair is merged with --keeper and --duplicate. A batch of pairs is
merged with --file, a YAML file of the form:

  pairs:
    - keeper: uuid-of-entity-to-keep
      duplicate: uuid-of-entity-to-remove
    - keeper: ...
      duplicate: ...

Each merge transfers the duplicate's relationships onto the keeper and then
deletes the duplicate. In batch mode, a failed pair is reported and the
remaining pairs are still attempted.`,
	RunE: runMerge,
}

var (
	mergeKeeperID    string
	mergeDuplicateID string
	mergeGroupID     string
	mergeActor       string
	mergeFile        string
)

// mergePlan is the YAML format accepted by --file.
type mergePlan struct {
	Pairs []mergePair `yaml:"pairs"`
}

type mergePair struct {
	Keeper    string `yaml:"keeper"`
	Duplicate string `yaml:"duplicate"`
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&mergeKeeperID, "keeper", "", "UUID of the entity to keep")
	mergeCmd.Flags().StringVar(&mergeDuplicateID, "duplicate", "", "UUID of the entity to merge away")
	mergeCmd.Flags().StringVar(&mergeGroupID, "group-id", "", "Group ID (defaults to configured group)")
	mergeCmd.Flags().StringVar(&mergeActor, "actor", "system", "Actor recorded on transferred relationships")
	mergeCmd.Flags().StringVar(&mergeFile, "file", "", "YAML file listing keeper/duplicate pairs to merge")
}

func runMerge(cmd *cobra.Command, args []string) error {
	pairs, err := collectMergePairs()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close(context.Background())

	failed := 0
	for _, pair := range pairs {
		result, err := engine.Merge(cmd.Context(), pair.Keeper, pair.Duplicate, mergeGroupID, mergeActor)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Failed to merge %s into %s: %v\n", pair.Duplicate, pair.Keeper, err)
			continue
		}
		fmt.Printf("%s (%d relationships transferred)\n", result.Message, result.RelationshipsTransferred)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d merges failed", failed, len(pairs))
	}
	return nil
}

func collectMergePairs() ([]mergePair, error) {
	if mergeFile != "" {
		if mergeKeeperID != "" || mergeDuplicateID != "" {
			return nil, fmt.Errorf("--file cannot be combined with --keeper/--duplicate")
		}

		data, err := os.ReadFile(mergeFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read merge file: %w", err)
		}

		var plan mergePlan
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse merge file: %w", err)
		}
		if len(plan.Pairs) == 0 {
			return nil, fmt.Errorf("merge file %s lists no pairs", mergeFile)
		}
		for i, pair := range plan.Pairs {
			if pair.Keeper == "" || pair.Duplicate == "" {
				return nil, fmt.Errorf("merge file pair %d is missing keeper or duplicate", i+1)
			}
		}
		return plan.Pairs, nil
	}

	if mergeKeeperID == "" || mergeDuplicateID == "" {
		return nil, fmt.Errorf("either --file or both --keeper and --duplicate are required")
	}
	return []mergePair{{Keeper: mergeKeeperID, Duplicate: mergeDuplicateID}}, nil
}
