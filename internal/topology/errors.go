package topology

import (
	"fmt"
)

// StateError indicates an operation that conflicts with the marking pass
// already performed on the topology.
type StateError struct {
	Op   string // Operation that was refused
	Pass string // Marking pass already in effect
}

func (e *StateError) Error() string {
	return fmt.Sprintf("topology: %s not allowed after %s marking pass", e.Op, e.Pass)
}

// TraversalLimitError indicates a face walk that did not return to its start
// edge within the configured number of steps. The graph is likely corrupt.
type TraversalLimitError struct {
	Op    string
	Limit int
	Edge  EdgeID  // Start edge of the walk
	X, Y  float64 // Source of the start edge
}

func (e *TraversalLimitError) Error() string {
	return fmt.Sprintf("topology: %s: walk from edge %d at (%v, %v) exceeded %d steps",
		e.Op, e.Edge, e.X, e.Y, e.Limit)
}

// ErrUnknownEdge indicates an edge id outside the topology
type ErrUnknownEdge struct {
	Edge EdgeID
}

func (e *ErrUnknownEdge) Error() string {
	return fmt.Sprintf("topology: unknown edge %d", e.Edge)
}
