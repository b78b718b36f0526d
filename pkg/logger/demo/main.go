package main

import (
	"log/slog"

	"github.com/soundprediction/dedupe/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Dedupe Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting merged entity - green!")
	log.Info("Merged duplicate into keeper - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Graph write operations are highlighted in green:")
	log.Info("Merging entity pair", "keeper", "a-1", "duplicate", "b-2")
	log.Info("Merged entity pair", "relationships_transferred", 7)
	log.Info("Persisting backfilled embeddings", "count", 100)

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
