package topology

import (
	"github.com/beetlebugorg/gmltopo/internal/coord"
)

// Builder is a coord.Handler that inserts every pair of consecutive
// coordinates of a ring as a segment of the topology.
//
// The owning object is the coordinate's Location. It is placed on the left
// side of each segment, so counter-clockwise exterior rings and clockwise
// interior rings put the surface on the left. Closed rings wound the other
// way are still inserted as given; they are logged and counted.
type Builder struct {
	topo    *Topology
	role    Role
	prev    coord.Coordinate
	hasPrev bool
	points  int

	first       coord.Coordinate // start of the current ring
	segments    int
	area        float64 // twice the signed area, relative to first
	misoriented int
}

// NewBuilder creates a builder inserting into t.
func NewBuilder(t *Topology) *Builder {
	return &Builder{topo: t, role: RoleExterior}
}

// Coordinate implements coord.Handler.
func (b *Builder) Coordinate(c coord.Coordinate) error {
	b.points++
	if !b.hasPrev {
		b.first = c
		b.segments = 0
		b.area = 0
	} else {
		b.topo.InsertSegment(b.prev, c, Pack(uint64(c.Location), b.role), 0)
		b.segments++
		b.area += (b.prev.X-b.first.X)*(c.Y-b.first.Y) - (c.X-b.first.X)*(b.prev.Y-b.first.Y)
		if b.segments >= 3 && c.SamePosition(b.first) {
			b.closeRing(c)
		}
	}
	b.prev = c
	b.hasPrev = true
	return nil
}

func (b *Builder) closeRing(c coord.Coordinate) {
	cw := b.area < 0
	if (b.role == RoleInterior) != cw && b.area != 0 {
		b.misoriented++
		b.topo.log.V(1).Info("ring wound against its role, object lies on the right",
			"ref", uint64(c.Location), "role", b.role.String(), "x", c.X, "y", c.Y)
	}
	b.segments = 0
	b.area = 0
}

// NextGeometricObject implements coord.Handler. The next ring is an exterior ring.
func (b *Builder) NextGeometricObject() {
	b.role = RoleExterior
	b.hasPrev = false
}

// NextInterior implements coord.Handler. The next ring is an interior ring.
func (b *Builder) NextInterior() {
	b.role = RoleInterior
	b.hasPrev = false
}

// Points returns the number of coordinates received.
func (b *Builder) Points() int { return b.points }

// Misoriented returns the number of closed exterior rings wound clockwise
// and interior rings wound counter-clockwise.
func (b *Builder) Misoriented() int { return b.misoriented }
