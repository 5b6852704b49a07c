// Package coord turns raw GML ordinate text into a stream of hashed 2D coordinates.
package coord

import "fmt"

// Location is an opaque tag identifying the feature (and ring) that produced
// a coordinate. The topology uses it as the object reference of the feature.
type Location uint64

// GeometryType selects how the parser delivers coordinates to its handler.
type GeometryType int

const (
	// TypeDefault passes every coordinate straight through.
	TypeDefault GeometryType = 0

	// TypeArc delivers circular-arc control points as complete triples.
	// Consecutive arcs of one ordinate sequence share their end point, so
	// after the first triple coordinates are released in pairs.
	TypeArc GeometryType = 1

	// TypeUnique suppresses a coordinate identical to the one before it.
	TypeUnique GeometryType = 2
)

func (t GeometryType) String() string {
	switch t {
	case TypeDefault:
		return "default"
	case TypeArc:
		return "arc"
	case TypeUnique:
		return "unique"
	default:
		return fmt.Sprintf("GeometryType(%d)", int(t))
	}
}

// Coordinate is one parsed position.
//
// Hash is an FNV-1a hash over the normalized ordinate text, so two coordinates
// written with the same values hash equally regardless of leading zeros,
// trailing fraction zeros or an explicit plus sign.
type Coordinate struct {
	X, Y     float64
	Hash     uint64
	Location Location
	Type     GeometryType
}

// SamePosition reports whether c and o denote the same (x, y) position.
func (c Coordinate) SamePosition(o Coordinate) bool {
	return c.X == o.X && c.Y == o.Y
}

// Handler consumes the coordinate stream produced by a Parser.
type Handler interface {
	// Coordinate receives the next coordinate. A non-nil error aborts the
	// ordinate sequence currently being parsed.
	Coordinate(c Coordinate) error

	// NextGeometricObject signals the start of a new feature geometry.
	NextGeometricObject()

	// NextInterior signals the start of an interior ring of the current feature.
	NextInterior()
}
