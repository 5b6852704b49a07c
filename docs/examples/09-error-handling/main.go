package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

func loadTheme(path string) (*gmltopo.Theme, error) {
	theme := gmltopo.NewTheme(path, gmltopo.DefaultOptions())

	summary, err := theme.LoadFile(path)
	if err != nil {
		// Check if file exists
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("input file not found: %s", path)
		}
		return nil, err
	}

	// Features with malformed ordinates are skipped, not fatal
	if summary.Skipped > 0 {
		log.Printf("Warning: %s: %d features skipped", path, summary.Skipped)
	}
	return theme, nil
}

func main() {
	theme, err := loadTheme("parcels.gml")
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	// Feeding directly reports parse errors per sequence
	theme.BeginFeature()
	err = theme.FeedString(1, "0 0 10 0 10 1e5")
	var malformed *gmltopo.MalformedOrdinateError
	if errors.As(err, &malformed) {
		log.Printf("Expected error: %v", err)
	}

	// A face walk that does not close is a hard failure
	err = theme.Detect(gmltopo.Holes)
	var limit *gmltopo.TraversalLimitError
	if errors.As(err, &limit) {
		log.Fatalf("Topology too large: %v", err)
	}

	fmt.Printf("Errors: %d\n", theme.Stats().Errors)
}
