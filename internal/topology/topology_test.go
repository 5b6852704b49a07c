package topology

import (
	"errors"
	"testing"

	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
)

const square42 = "0 0 10 0 10 10 0 10 0 0"

type collect []coord.Coordinate

func (c *collect) Coordinate(x coord.Coordinate) error {
	*c = append(*c, x)
	return nil
}
func (c *collect) NextGeometricObject() {}
func (c *collect) NextInterior()        {}

// coords parses ordinate text into coordinates with real content hashes.
func coords(t *testing.T, s string) []coord.Coordinate {
	t.Helper()
	var c collect
	if err := coord.NewParser(&c).ParseString(s, 0); err != nil {
		t.Fatalf("ParseString(%q) error = %v", s, err)
	}
	return c
}

// feed sends one feature through h: the first ring is exterior, the rest interior.
func feed(t *testing.T, h coord.Handler, loc coord.Location, rings ...string) {
	t.Helper()
	p := coord.NewParser(h)
	p.NextGeometricObject()
	for i, r := range rings {
		if i > 0 {
			p.NextInterior()
		}
		if err := p.ParseString(r, loc); err != nil {
			t.Fatalf("ParseString(%q) error = %v", r, err)
		}
	}
}

func newTopology(opts Options) (*Topology, *defect.Collector) {
	c := defect.NewCollector("test", 0)
	return New(opts, c), c
}

func build(t *testing.T, features map[coord.Location][]string) (*Topology, *defect.Collector) {
	t.Helper()
	topo, c := newTopology(DefaultOptions())
	b := NewBuilder(topo)
	// deterministic order
	for loc := coord.Location(0); loc < 100; loc++ {
		if rings, ok := features[loc]; ok {
			feed(t, b, loc, rings...)
		}
	}
	return topo, c
}

func nodeAt(t *testing.T, topo *Topology, x, y float64) NodeID {
	t.Helper()
	n := topo.NodeAt(x, y)
	if n == NoNode {
		t.Fatalf("no node at (%v, %v)", x, y)
	}
	return n
}

// TestSquareExample tests the single square of object 42 end to end
func TestSquareExample(t *testing.T) {
	topo, c := build(t, map[coord.Location][]string{42: {square42}})

	if topo.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", topo.NodeCount())
	}
	if topo.EdgeCount() != 8 {
		t.Errorf("EdgeCount() = %d, want 8", topo.EdgeCount())
	}
	if c.Len() != 0 {
		t.Fatalf("building reported %d defects", c.Len())
	}

	n, err := topo.DetectUnenclosedBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 || c.Count(defect.BoundaryEdgeUnenclosed) != 4 {
		t.Fatalf("got %d unenclosed edges (%d recorded), want 4", n, c.Count(defect.BoundaryEdgeUnenclosed))
	}
	for _, r := range c.Records() {
		if is, _ := r.Param(defect.KeyIs); is != "42" {
			t.Errorf("IS = %q, want 42", is)
		}
	}

	ring := coords(t, square42)
	for i := 0; i+1 < len(ring); i++ {
		e := topo.Edge(topo.Lookup(ring[i]), topo.Lookup(ring[i+1]))
		if e == NoEdge {
			t.Fatalf("missing edge %d", i)
		}
		if err := topo.MarkEnclosedEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	c.Drain()
	n, err = topo.DetectUnenclosedBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || c.Len() != 0 {
		t.Errorf("got %d unenclosed edges after marking, want 0", n)
	}
}

// TestSideSwap tests that a twin carries the swapped labels
func TestSideSwap(t *testing.T) {
	topo, _ := newTopology(DefaultOptions())
	pts := coords(t, "1 1 4 5")
	l, r := Pack(7, RoleExterior), Pack(9, RoleInterior)
	topo.InsertSegment(pts[0], pts[1], l, r)

	a, b := nodeAt(t, topo, 1, 1), nodeAt(t, topo, 4, 5)
	e := topo.Edge(a, b)
	tw := topo.Edge(b, a)
	if e == NoEdge || tw == NoEdge {
		t.Fatal("edge pair not found")
	}
	if topo.Twin(e) != tw || topo.Twin(tw) != e {
		t.Errorf("Twin mismatch: %d/%d", e, tw)
	}
	if topo.Source(e) != a || topo.Target(e) != b {
		t.Error("wrong endpoints")
	}
	if topo.Left(e) != l || topo.Right(e) != r {
		t.Errorf("forward sides = %v/%v", topo.Left(e), topo.Right(e))
	}
	if topo.Left(tw) != r || topo.Right(tw) != l {
		t.Errorf("twin sides = %v/%v, want %v/%v", topo.Left(tw), topo.Right(tw), r, l)
	}
}

// TestSideMerge tests label merging and conflicting claims
func TestSideMerge(t *testing.T) {
	tests := []struct {
		name        string
		ordinates   string
		secondLeft  ObjectID
		secondRight ObjectID
		wantDefects int
		wantRight   ObjectID
	}{
		{"same claim", "0 0 5 0", Pack(1, RoleExterior), 0, 0, 0},
		{"neighbour from reverse", "5 0 0 0", Pack(2, RoleExterior), 0, 0, Pack(2, RoleExterior)},
		{"conflicting left", "0 0 5 0", Pack(3, RoleExterior), 0, 1, 0},
		{"conflicting role", "0 0 5 0", Pack(1, RoleInterior), 0, 1, 0},
		{"right claim", "0 0 5 0", 0, Pack(4, RoleExterior), 0, Pack(4, RoleExterior)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, c := newTopology(DefaultOptions())
			first := coords(t, "0 0 5 0")
			topo.InsertSegment(first[0], first[1], Pack(1, RoleExterior), 0)

			second := coords(t, tt.ordinates)
			topo.InsertSegment(second[0], second[1], tt.secondLeft, tt.secondRight)

			if topo.EdgeCount() != 2 {
				t.Errorf("EdgeCount() = %d, want 2", topo.EdgeCount())
			}
			if c.Count(defect.EdgeInvalid) != tt.wantDefects {
				t.Fatalf("got %d EDGE_INVALID, want %d", c.Count(defect.EdgeInvalid), tt.wantDefects)
			}
			e := topo.Edge(nodeAt(t, topo, 0, 0), nodeAt(t, topo, 5, 0))
			if topo.Left(e) != Pack(1, RoleExterior) {
				t.Errorf("left = %v, existing label overwritten", topo.Left(e))
			}
			if topo.Right(e) != tt.wantRight {
				t.Errorf("right = %v, want %v", topo.Right(e), tt.wantRight)
			}
			if tt.wantDefects > 0 {
				r := c.Records()[0]
				is, _ := r.Param(defect.KeyIs)
				should, _ := r.Param(defect.KeyShould)
				if is != "1" || should != tt.secondLeft.param() {
					t.Errorf("IS=%q SHOULD=%q", is, should)
				}
			}
		})
	}
}

// TestHashCollision tests that equal hashes never merge distinct positions
func TestHashCollision(t *testing.T) {
	topo, _ := newTopology(DefaultOptions())
	a := coord.Coordinate{X: 1, Y: 2, Hash: 99}
	b := coord.Coordinate{X: 3, Y: 4, Hash: 99}
	c := coord.Coordinate{X: 5, Y: 6, Hash: 99}
	topo.InsertSegment(a, b, Pack(1, RoleExterior), 0)
	topo.InsertSegment(b, c, Pack(1, RoleExterior), 0)

	if topo.NodeCount() != 3 {
		t.Fatalf("NodeCount() = %d, want 3", topo.NodeCount())
	}
	for _, p := range []coord.Coordinate{a, b, c} {
		n := topo.Lookup(p)
		if n == NoNode {
			t.Fatalf("Lookup(%v) failed", p)
		}
		if x, y := topo.XY(n); x != p.X || y != p.Y {
			t.Errorf("Lookup(%v) returned node at (%v, %v)", p, x, y)
		}
	}
	if topo.Lookup(coord.Coordinate{X: 7, Y: 8, Hash: 99}) != NoNode {
		t.Error("Lookup matched a position that was never inserted")
	}
}

func TestZeroLengthSegment(t *testing.T) {
	topo, c := newTopology(DefaultOptions())
	pts := coords(t, "1 1 1.0 1.00")
	topo.InsertSegment(pts[0], pts[1], Pack(1, RoleExterior), 0)
	if topo.NodeCount() != 1 || topo.EdgeCount() != 0 || c.Len() != 0 {
		t.Errorf("nodes=%d edges=%d defects=%d", topo.NodeCount(), topo.EdgeCount(), c.Len())
	}
}

// TestAngularOrder tests the counter-clockwise order around a node
func TestAngularOrder(t *testing.T) {
	topo, _ := newTopology(DefaultOptions())
	center := coords(t, "0 0")[0]
	// inserted out of angular order
	for _, s := range []string{"0 -1", "-1 0", "1 0", "0 1", "1 1"} {
		topo.InsertSegment(center, coords(t, s)[0], Pack(1, RoleExterior), 0)
	}

	out := topo.Outgoing(topo.Lookup(center))
	want := [][2]float64{{0, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 0}}
	if len(out) != len(want) {
		t.Fatalf("got %d outgoing edges, want %d", len(out), len(want))
	}
	for i, e := range out {
		x, y := topo.XY(topo.Target(e))
		if x != want[i][0] || y != want[i][1] {
			t.Errorf("outgoing[%d] ends at (%v, %v), want %v", i, x, y, want[i])
		}
	}
}

// TestTargetCcwNextCycles tests that every walk returns to its start
func TestTargetCcwNextCycles(t *testing.T) {
	topo, _ := build(t, map[coord.Location][]string{
		1: {"0 0 10 0 10 10 0 10 0 0", "2 2 2 8 8 8 8 2 2 2"},
		2: {"10 0 20 0 20 10 10 10 10 0"},
		3: {"30 30 31 30 31 31 30 30"},
		4: {"10 10 15 15"},
	})

	for i := 0; i < topo.EdgeCount(); i++ {
		start := EdgeID(i)
		e := start
		steps := 0
		for {
			next := topo.TargetCcwNext(e)
			if topo.Source(next) != topo.Target(e) {
				t.Fatalf("edge %d does not continue from target of %d", next, e)
			}
			e = next
			steps++
			if e == start {
				break
			}
			if steps > topo.EdgeCount() {
				t.Fatalf("walk from %d did not return", start)
			}
		}
	}
}

func TestTargetCcwNextSquare(t *testing.T) {
	topo, _ := build(t, map[coord.Location][]string{42: {square42}})
	ring := coords(t, square42)
	e := topo.Edge(topo.Lookup(ring[0]), topo.Lookup(ring[1]))
	for i := 1; i < 4; i++ {
		e = topo.TargetCcwNext(e)
		want := topo.Edge(topo.Lookup(ring[i]), topo.Lookup(ring[i+1]))
		if e != want {
			t.Fatalf("step %d: got edge %d, want %d", i, e, want)
		}
	}
}

func TestSpatialQueries(t *testing.T) {
	topo, _ := build(t, map[coord.Location][]string{42: {square42}})

	if n := topo.NodeAt(10, 10); n == NoNode {
		t.Error("NodeAt(10, 10) = NoNode")
	}
	if n := topo.NodeAt(10, 10.000001); n != NoNode {
		t.Error("NodeAt matched an inexact position")
	}

	n := topo.NearestNode(9, 1)
	if x, y := topo.XY(n); x != 10 || y != 0 {
		t.Errorf("NearestNode(9, 1) = (%v, %v), want (10, 0)", x, y)
	}

	if got := topo.NodesInBounds(-1, -1, 10, 5); len(got) != 2 {
		t.Errorf("NodesInBounds returned %d nodes, want 2", len(got))
	}

	// index catches up with later insertions
	more := coords(t, "50 50 60 60")
	topo.InsertSegment(more[0], more[1], Pack(1, RoleExterior), 0)
	if n := topo.NodeAt(60, 60); n == NoNode {
		t.Error("node inserted after first query not indexed")
	}

	empty, _ := newTopology(DefaultOptions())
	if empty.NearestNode(0, 0) != NoNode || empty.NodeAt(0, 0) != NoNode {
		t.Error("empty topology returned a node")
	}
}

func TestMarkEnclosedEdgeUnknown(t *testing.T) {
	topo, _ := newTopology(DefaultOptions())
	var unknown *ErrUnknownEdge
	if err := topo.MarkEnclosedEdge(3); !errors.As(err, &unknown) {
		t.Errorf("error = %v, want *ErrUnknownEdge", err)
	}
}

func TestMarkingPassExclusion(t *testing.T) {
	t.Run("surfaces after boundaries", func(t *testing.T) {
		topo, _ := build(t, map[coord.Location][]string{42: {square42}})
		if _, err := topo.DetectUnenclosedBoundaries(); err != nil {
			t.Fatal(err)
		}
		_, err := topo.DetectFreeStandingSurfaces()
		var state *StateError
		if !errors.As(err, &state) {
			t.Fatalf("error = %v, want *StateError", err)
		}
		if state.Pass != "boundary" {
			t.Errorf("Pass = %q", state.Pass)
		}
	})

	t.Run("marking after surfaces", func(t *testing.T) {
		topo, _ := build(t, map[coord.Location][]string{42: {square42}})
		if _, err := topo.DetectFreeStandingSurfacesWithAllObjects(); err != nil {
			t.Fatal(err)
		}
		var state *StateError
		if err := topo.MarkEnclosedEdge(0); !errors.As(err, &state) {
			t.Errorf("MarkEnclosedEdge error = %v, want *StateError", err)
		}
		if _, err := topo.DetectUnenclosedBoundaries(); !errors.As(err, &state) {
			t.Errorf("DetectUnenclosedBoundaries error = %v, want *StateError", err)
		}
		// surface detectors may run again
		if _, err := topo.DetectFreeStandingSurfaces(); err != nil {
			t.Errorf("second surface pass failed: %v", err)
		}
	})

	t.Run("holes are independent", func(t *testing.T) {
		topo, _ := build(t, map[coord.Location][]string{42: {square42}})
		if _, err := topo.DetectUnenclosedBoundaries(); err != nil {
			t.Fatal(err)
		}
		if _, err := topo.DetectHoles(); err != nil {
			t.Errorf("DetectHoles error = %v", err)
		}
	})
}

// TestBuilderRingOrientation tests counting of rings wound against their role
func TestBuilderRingOrientation(t *testing.T) {
	tests := []struct {
		name  string
		rings []string
		want  int
	}{
		{"ccw exterior", []string{square42}, 0},
		{"cw exterior", []string{"0 0 0 10 10 10 10 0 0 0"}, 1},
		{"cw hole", []string{"0 0 10 0 10 10 0 10 0 0", "2 2 2 8 8 8 8 2 2 2"}, 0},
		{"ccw hole", []string{"0 0 10 0 10 10 0 10 0 0", "2 2 8 2 8 8 2 8 2 2"}, 1},
		{"open line", []string{"0 10 0 0 10 0"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, _ := newTopology(DefaultOptions())
			b := NewBuilder(topo)
			feed(t, b, 1, tt.rings...)
			if got := b.Misoriented(); got != tt.want {
				t.Errorf("Misoriented() = %d, want %d", got, tt.want)
			}
		})
	}
}
