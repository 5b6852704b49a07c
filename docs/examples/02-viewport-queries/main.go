package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/gmltopo/pkg/gmltopo"
)

func main() {
	// Load a theme
	theme := gmltopo.NewTheme("buildings", gmltopo.DefaultOptions())
	if _, err := theme.LoadFile("buildings.gml"); err != nil {
		log.Fatal(err)
	}
	if err := theme.Detect(gmltopo.FreeStandingSurfacesWithAllObjects); err != nil {
		log.Fatal(err)
	}

	// Define viewport
	viewport := gmltopo.Bounds{
		MinX: 1000, MaxX: 2000,
		MinY: 5000, MaxY: 6000,
	}

	// Query the R-tree index for visible nodes
	nodes := theme.NodesInBounds(viewport)
	fmt.Printf("Visible nodes: %d\n", len(nodes))

	for _, e := range theme.ErrorsInBounds(viewport) {
		fmt.Printf("  %s at (%g %g)\n", e.Kind, e.X, e.Y)
	}
}
