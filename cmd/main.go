package main

import (
	"fmt"
	"os"

	"github.com/soundprediction/dedupe/cmd/dedupe"
)

func main() {
	if err := dedupe.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
