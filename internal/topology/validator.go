package topology

import (
	"fmt"
	"strconv"

	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// Strategy selects when an EdgeValidator forgets its previous point.
type Strategy int

const (
	// SingleBoundary validates one continuous boundary per geometric object.
	SingleBoundary Strategy = iota

	// MultipleBoundary also restarts at every interior ring, so the rings of
	// a surface are validated independently.
	MultipleBoundary

	// EnclosingBoundary is MultipleBoundary, and additionally marks each
	// matched border edge as enclosed.
	EnclosingBoundary
)

func (s Strategy) String() string {
	switch s {
	case SingleBoundary:
		return "single"
	case MultipleBoundary:
		return "multiple"
	case EnclosingBoundary:
		return "enclosing"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the names returned by Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	for s := SingleBoundary; s <= EnclosingBoundary; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown boundary strategy %q", name)
}

// Side is a side of a directed edge.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// Result classifies the last matched edge of a validated boundary.
type Result int

const (
	ResultInvalid Result = iota
	ResultLeft
	ResultRight
)

func (r Result) String() string {
	switch r {
	case ResultLeft:
		return "left"
	case ResultRight:
		return "right"
	default:
		return "invalid"
	}
}

// EdgeValidator is a coord.Handler confirming that a declared boundary runs
// exactly along existing edges of the topology. It never inserts.
type EdgeValidator struct {
	topo     *Topology
	sink     defect.Sink
	strategy Strategy

	prev   NodeID
	prevXY [2]float64
	last   EdgeID

	points  int
	matched int
}

// NewEdgeValidator creates a validator over t reporting to t's sink.
func NewEdgeValidator(t *Topology, strategy Strategy) *EdgeValidator {
	return &EdgeValidator{
		topo:     t,
		sink:     t.sink,
		strategy: strategy,
		prev:     NoNode,
		last:     NoEdge,
	}
}

// Coordinate implements coord.Handler.
func (v *EdgeValidator) Coordinate(c coord.Coordinate) error {
	v.points++
	loc := strconv.FormatUint(uint64(c.Location), 10)

	n := v.topo.Lookup(c)
	if n == NoNode {
		params := []defect.Param{defect.P(defect.KeyIs, loc)}
		if near := v.topo.NearestNode(c.X, c.Y); near != NoNode {
			params = append(params, defect.Point(v.topo.XY(near))...)
		}
		v.sink.Add(defect.PointDetached, c.X, c.Y, params...)
		v.prev = NoNode
		return nil
	}

	if v.prev != NoNode && v.prev != n {
		e := v.topo.Edge(v.prev, n)
		if e == NoEdge {
			params := append([]defect.Param{defect.P(defect.KeyIs, loc)},
				defect.Point(v.prevXY[0], v.prevXY[1])...)
			v.sink.Add(defect.EdgePointsInvalid, c.X, c.Y, params...)
		} else {
			v.last = e
			v.matched++
			if v.strategy == EnclosingBoundary && (v.topo.Left(e).IsEmpty() || v.topo.Right(e).IsEmpty()) {
				if err := v.topo.MarkEnclosedEdge(e); err != nil {
					return err
				}
			}
		}
	}
	v.prev = n
	v.prevXY = [2]float64{c.X, c.Y}
	return nil
}

// NextGeometricObject implements coord.Handler.
func (v *EdgeValidator) NextGeometricObject() {
	v.prev = NoNode
	v.last = NoEdge
}

// NextInterior implements coord.Handler.
func (v *EdgeValidator) NextInterior() {
	if v.strategy != SingleBoundary {
		v.prev = NoNode
	}
}

// Points returns the number of coordinates checked.
func (v *EdgeValidator) Points() int { return v.points }

// Matched returns the number of consecutive point pairs found as edges.
func (v *EdgeValidator) Matched() int { return v.matched }

// LastEdge returns the last matched edge, or NoEdge.
func (v *EdgeValidator) LastEdge() EdgeID { return v.last }

// Report checks that expected lies on the given side of the last matched
// edge, as walked by the boundary.
//
// A missing side yields EDGE_MISSING_LEFT/RIGHT, a different object
// EDGE_INVALID_LEFT/RIGHT, and expected found on the opposite side a generic
// EDGE_INVALID listing both sides. Without a matched edge the result is
// ResultInvalid; the walk itself already reported why.
func (v *EdgeValidator) Report(side Side, expected ObjectID) Result {
	e := v.last
	if e == NoEdge {
		return ResultInvalid
	}

	left, right := v.topo.Left(e), v.topo.Right(e)
	actual, other := left, right
	missing, invalid, ok := defect.EdgeMissingLeft, defect.EdgeInvalidLeft, ResultLeft
	if side == SideRight {
		actual, other = right, left
		missing, invalid, ok = defect.EdgeMissingRight, defect.EdgeInvalidRight, ResultRight
	}

	x, y := v.topo.XY(v.topo.Source(e))
	second := defect.Point(v.topo.XY(v.topo.Target(e)))

	switch {
	case !actual.IsEmpty() && actual.SameObject(expected):
		return ok
	case !other.IsEmpty() && other.SameObject(expected):
		params := append([]defect.Param{
			defect.P(defect.KeyLeft, left.param()),
			defect.P(defect.KeyRight, right.param()),
		}, second...)
		v.sink.Add(defect.EdgeInvalid, x, y, params...)
	case actual.IsEmpty():
		params := append([]defect.Param{defect.P(defect.KeyShould, expected.param())}, second...)
		v.sink.Add(missing, x, y, params...)
	default:
		params := append([]defect.Param{
			defect.P(defect.KeyIs, actual.param()),
			defect.P(defect.KeyShould, expected.param()),
		}, second...)
		v.sink.Add(invalid, x, y, params...)
	}
	return ResultInvalid
}
