package gmltopo

import (
	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
	"github.com/beetlebugorg/gmltopo/internal/topology"
)

// Location tags every coordinate with its owning feature.
type Location = coord.Location

// GeometryType selects how ordinates are delivered to the graph.
type GeometryType = coord.GeometryType

const (
	TypeDefault = coord.TypeDefault // every coordinate
	TypeArc     = coord.TypeArc     // circular arc control points, in complete triples
	TypeUnique  = coord.TypeUnique  // immediate duplicates suppressed
)

// Error is one topology defect.
type Error = defect.Record

// ErrorKind classifies a topology defect.
type ErrorKind = defect.Kind

// Param is a key/value parameter of an Error.
type Param = defect.Param

const (
	PointDetached               = defect.PointDetached
	EdgePointsInvalid           = defect.EdgePointsInvalid
	EdgeMissingLeft             = defect.EdgeMissingLeft
	EdgeMissingRight            = defect.EdgeMissingRight
	EdgeInvalidLeft             = defect.EdgeInvalidLeft
	EdgeInvalidRight            = defect.EdgeInvalidRight
	EdgeInvalid                 = defect.EdgeInvalid
	HoleEmptyInterior           = defect.HoleEmptyInterior
	FreeStandingSurface         = defect.FreeStandingSurface
	FreeStandingSurfaceDetailed = defect.FreeStandingSurfaceDetailed
	BoundaryEdgeUnenclosed      = defect.BoundaryEdgeUnenclosed
)

// Parameter keys of an Error.
const (
	KeyIs     = defect.KeyIs
	KeyShould = defect.KeyShould
	KeyX2     = defect.KeyX2
	KeyY2     = defect.KeyY2
	KeyLeft   = defect.KeyLeft
	KeyRight  = defect.KeyRight
)

// ParseErrorKind returns the kind with the given name, e.g. "POINT_DETACHED".
func ParseErrorKind(name string) (ErrorKind, error) {
	return defect.ParseKind(name)
}

// ObjectID is a feature reference packed with its ring role.
type ObjectID = topology.ObjectID

// Role is the ring role of an object.
type Role = topology.Role

const (
	RoleNone     = topology.RoleNone
	RoleExterior = topology.RoleExterior
	RoleInterior = topology.RoleInterior
)

// Pack builds an ObjectID from a feature reference and a role.
func Pack(ref uint64, role Role) ObjectID {
	return topology.Pack(ref, role)
}

// Strategy selects how a BoundaryCheck treats ring boundaries.
type Strategy = topology.Strategy

const (
	SingleBoundary    = topology.SingleBoundary
	MultipleBoundary  = topology.MultipleBoundary
	EnclosingBoundary = topology.EnclosingBoundary
)

// ParseStrategy accepts "single", "multiple" and "enclosing".
func ParseStrategy(name string) (Strategy, error) {
	return topology.ParseStrategy(name)
}

// Side is a side of a directed edge.
type Side = topology.Side

const (
	SideLeft  = topology.SideLeft
	SideRight = topology.SideRight
)

// Result classifies the last edge matched by a BoundaryCheck.
type Result = topology.Result

const (
	ResultInvalid = topology.ResultInvalid
	ResultLeft    = topology.ResultLeft
	ResultRight   = topology.ResultRight
)

// Errors returned by the engine.
type (
	MalformedOrdinateError    = coord.MalformedOrdinateError
	IncompleteCoordinateError = coord.IncompleteCoordinateError
	StateError                = topology.StateError
	TraversalLimitError       = topology.TraversalLimitError
)
