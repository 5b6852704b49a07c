// Package defect defines the topology error records produced while building
// and validating a topology, and the per-theme collector that accumulates them.
//
// Defects describe problems in the data, not in the program: they are never
// returned as Go errors and never abort a run.
package defect

import (
	"fmt"
)

// Kind identifies the category of a topology defect.
type Kind int

const (
	// PointDetached: a point of a declared boundary is not a node of the topology.
	PointDetached Kind = iota + 1
	// EdgePointsInvalid: two consecutive boundary points are nodes, but no edge joins them.
	EdgePointsInvalid
	// EdgeMissingLeft: the edge has no object on its left side.
	EdgeMissingLeft
	// EdgeMissingRight: the edge has no object on its right side.
	EdgeMissingRight
	// EdgeInvalidLeft: the edge carries a different object on its left side.
	EdgeInvalidLeft
	// EdgeInvalidRight: the edge carries a different object on its right side.
	EdgeInvalidRight
	// EdgeInvalid: conflicting side assignment, or the object is on the opposite side.
	EdgeInvalid
	// HoleEmptyInterior: an interior ring encloses no object.
	HoleEmptyInterior
	// FreeStandingSurface: a surface not connected to the rest of the theme.
	FreeStandingSurface
	// FreeStandingSurfaceDetailed lists every object of the free-standing surface.
	FreeStandingSurfaceDetailed
	// BoundaryEdgeUnenclosed: a border edge not covered by an enclosing boundary.
	BoundaryEdgeUnenclosed

	kindCount
)

var kindNames = [...]string{
	PointDetached:               "POINT_DETACHED",
	EdgePointsInvalid:           "EDGE_POINTS_INVALID",
	EdgeMissingLeft:             "EDGE_MISSING_LEFT",
	EdgeMissingRight:            "EDGE_MISSING_RIGHT",
	EdgeInvalidLeft:             "EDGE_INVALID_LEFT",
	EdgeInvalidRight:            "EDGE_INVALID_RIGHT",
	EdgeInvalid:                 "EDGE_INVALID",
	HoleEmptyInterior:           "HOLE_EMPTY_INTERIOR",
	FreeStandingSurface:         "FREE_STANDING_SURFACE",
	FreeStandingSurfaceDetailed: "FREE_STANDING_SURFACE_DETAILED",
	BoundaryEdgeUnenclosed:      "BOUNDARY_EDGE_UNENCLOSED",
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k > 0 && k < kindCount
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrUnknownKind indicates a kind name that does not denote a defect kind
type ErrUnknownKind struct {
	Name string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown topology error kind: %q", e.Name)
}

// ParseKind returns the kind with the given name, e.g. "POINT_DETACHED".
func ParseKind(name string) (Kind, error) {
	for k := PointDetached; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, &ErrUnknownKind{Name: name}
}

// Kinds returns all defect kinds in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := PointDetached; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot marshal %v", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
