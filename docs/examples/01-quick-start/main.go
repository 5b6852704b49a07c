package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

func main() {
	theme := gmltopo.NewTheme("parcels", gmltopo.DefaultOptions())

	// Two adjacent squares and a detached one
	parcels := []string{
		"0 0 10 0 10 10 0 10 0 0",
		"10 0 20 0 20 10 10 10 10 0",
		"50 0 60 0 60 10 50 10 50 0",
	}
	for i, ring := range parcels {
		theme.BeginFeature()
		if err := theme.FeedString(gmltopo.Location(i+1), ring); err != nil {
			log.Fatal(err)
		}
	}

	if err := theme.Detect(gmltopo.Holes | gmltopo.FreeStandingSurfaces); err != nil {
		log.Fatal(err)
	}

	stats := theme.Stats()
	fmt.Printf("Nodes: %d\n", stats.Nodes)
	fmt.Printf("Edges: %d\n", stats.Edges)

	for _, e := range theme.Errors() {
		fmt.Printf("%s at (%g %g) %v\n", e.Kind, e.X, e.Y, e.Params)
	}
}
