// Package gmltopo validates the topology of GML feature boundaries.
//
// Coordinates of feature boundaries are streamed into a Theme, which builds a
// planar half-edge graph from them. Once every feature has been ingested, the
// graph is queried for data defects: open or unenclosed boundaries, surfaces
// disconnected from the rest of the theme, interior rings enclosing nothing,
// and declared boundaries that do not run along the built edges.
//
// # Basic Usage
//
//	theme := gmltopo.NewTheme("parcels", gmltopo.DefaultOptions())
//
//	// one exterior ring of feature 42
//	theme.BeginFeature()
//	if err := theme.FeedString(42, "0 0 10 0 10 10 0 10 0 0"); err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := theme.DetectUnenclosedBoundaries(); err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range theme.Errors() {
//	    fmt.Println(e.Kind, e.X, e.Y, e.Params)
//	}
//
// # Rings and Roles
//
// The first ring after BeginFeature is an exterior ring; every ring after a
// BeginInterior call is an interior ring. The owning feature, given as the
// Location of each Feed, is placed on the left side of every segment:
// exterior rings are expected counter-clockwise and interior rings clockwise.
//
// # Boundary Validation
//
// A declared boundary is checked against the built graph without modifying
// it:
//
//	check := theme.ValidateBoundary(gmltopo.EnclosingBoundary)
//	check.BeginFeature()
//	check.FeedString(99, "0 0 0 10 10 10 10 0 0 0")
//
// With EnclosingBoundary every border edge the boundary runs along is marked
// enclosed and no longer reported by DetectUnenclosedBoundaries.
//
// # Marking Passes
//
// Unenclosed-boundary detection (and enclosed marking) and free-standing
// surface detection share the edge marks of the graph. Only one of them may
// run on a theme; the other returns a *StateError.
//
// # Concurrency
//
// A Theme is not safe for concurrent use. Independent themes may run in
// parallel; RunThemes does this with a bounded worker pool.
package gmltopo
