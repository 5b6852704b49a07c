package topology

import (
	"errors"
	"testing"

	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// TestValidatorSameRing tests that a ring validates against itself
func TestValidatorSameRing(t *testing.T) {
	topo, c := build(t, map[coord.Location][]string{42: {square42}})
	v := NewEdgeValidator(topo, SingleBoundary)
	feed(t, v, 42, square42)

	if c.Len() != 0 {
		t.Fatalf("got %d defects, want 0: %+v", c.Len(), c.Records())
	}
	if v.Points() != 5 || v.Matched() != 4 {
		t.Errorf("points=%d matched=%d, want 5 and 4", v.Points(), v.Matched())
	}
	if got := v.Report(SideLeft, Pack(42, RoleExterior)); got != ResultLeft {
		t.Errorf("Report() = %v, want left", got)
	}
	if c.Len() != 0 {
		t.Errorf("Report added %d defects", c.Len())
	}
}

// TestValidatorDisplacedPoint tests that one moved point is never a silent pass
func TestValidatorDisplacedPoint(t *testing.T) {
	tests := []struct {
		name string
		ring string
		want defect.Kind
	}{
		{"off the graph", "0 0 10 0 10.5 10 0 10 0 0", defect.PointDetached},
		{"onto another node", "0 0 10 0 0 10 0 0", defect.EdgePointsInvalid},
		{"tiny offset", "0 0 10 0 10 10.000000001 0 10 0 0", defect.PointDetached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, c := build(t, map[coord.Location][]string{42: {square42}})
			v := NewEdgeValidator(topo, SingleBoundary)
			feed(t, v, 42, tt.ring)

			if c.Len() != 1 {
				t.Fatalf("got %d defects, want 1: %+v", c.Len(), c.Records())
			}
			if k := c.Records()[0].Kind; k != tt.want {
				t.Errorf("kind = %v, want %v", k, tt.want)
			}
		})
	}
}

func TestValidatorDetachedParams(t *testing.T) {
	topo, c := build(t, map[coord.Location][]string{42: {square42}})
	v := NewEdgeValidator(topo, SingleBoundary)
	feed(t, v, 7, "0 0 10 0 10.5 9.5")

	r := c.Records()[0]
	if r.X != 10.5 || r.Y != 9.5 {
		t.Errorf("defect at (%v, %v)", r.X, r.Y)
	}
	is, _ := r.Param(defect.KeyIs)
	x2, _ := r.Param(defect.KeyX2)
	y2, _ := r.Param(defect.KeyY2)
	if is != "7" || x2 != "10" || y2 != "10" {
		t.Errorf("IS=%q X2=%q Y2=%q, want 7, nearest node 10/10", is, x2, y2)
	}
}

func TestValidatorStrategies(t *testing.T) {
	// a square with a hole, validated as exterior followed by interior
	rings := []string{square42, "2 2 2 8 8 8 8 2 2 2"}

	tests := []struct {
		strategy    Strategy
		wantDefects int
	}{
		// the jump from the last exterior point to the first interior point is not an edge
		{SingleBoundary, 1},
		{MultipleBoundary, 0},
		{EnclosingBoundary, 0},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.String(), func(t *testing.T) {
			topo, c := build(t, map[coord.Location][]string{1: rings})
			v := NewEdgeValidator(topo, tt.strategy)
			feed(t, v, 1, rings...)
			if c.Len() != tt.wantDefects {
				t.Errorf("got %d defects, want %d: %+v", c.Len(), tt.wantDefects, c.Records())
			}
		})
	}
}

// TestEnclosingBoundary tests that enclosed border edges are no longer reported
func TestEnclosingBoundary(t *testing.T) {
	topo, c := build(t, map[coord.Location][]string{
		1: {"0 0 5 0 5 10 0 10 0 0"},
		2: {"5 0 10 0 10 10 5 10 5 0"},
	})

	// enclosing boundary walked clockwise
	v := NewEdgeValidator(topo, EnclosingBoundary)
	feed(t, v, 99, "0 0 0 10 5 10 10 10 10 0 5 0 0 0")
	if c.Len() != 0 {
		t.Fatalf("validation reported %+v", c.Records())
	}

	n, err := topo.DetectUnenclosedBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("got %d unenclosed edges, want 0", n)
	}
}

func TestEnclosingBoundaryPartial(t *testing.T) {
	topo, _ := build(t, map[coord.Location][]string{42: {square42}})
	v := NewEdgeValidator(topo, EnclosingBoundary)
	feed(t, v, 99, "0 0 10 0 10 10")

	n, err := topo.DetectUnenclosedBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("got %d unenclosed edges, want 2", n)
	}
}

// TestValidatorReport tests every classification of the last matched edge
func TestValidatorReport(t *testing.T) {
	tests := []struct {
		name     string
		features map[coord.Location][]string
		side     Side
		expected ObjectID
		want     Result
		kind     defect.Kind
	}{
		{"left confirmed", map[coord.Location][]string{42: {square42}}, SideLeft, Pack(42, RoleExterior), ResultLeft, 0},
		{"role ignored", map[coord.Location][]string{42: {square42}}, SideLeft, Pack(42, RoleInterior), ResultLeft, 0},
		{"right missing", map[coord.Location][]string{42: {square42}}, SideRight, Pack(7, RoleExterior), ResultInvalid, defect.EdgeMissingRight},
		{"left invalid", map[coord.Location][]string{42: {square42}}, SideLeft, Pack(7, RoleExterior), ResultInvalid, defect.EdgeInvalidLeft},
		{"opposite side", map[coord.Location][]string{42: {square42}}, SideRight, Pack(42, RoleExterior), ResultInvalid, defect.EdgeInvalid},
		{
			"right confirmed",
			map[coord.Location][]string{42: {square42}, 43: {"0 0 0 -10 10 -10 10 0 0 0"}},
			SideRight, Pack(43, RoleExterior), ResultRight, 0,
		},
		{
			"right invalid",
			map[coord.Location][]string{42: {square42}, 43: {"0 0 0 -10 10 -10 10 0 0 0"}},
			SideRight, Pack(44, RoleExterior), ResultInvalid, defect.EdgeInvalidRight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, c := build(t, tt.features)
			v := NewEdgeValidator(topo, MultipleBoundary)
			// the bottom edge of the square, walked left to right
			feed(t, v, 1, "0 0 10 0")

			if got := v.Report(tt.side, tt.expected); got != tt.want {
				t.Errorf("Report() = %v, want %v", got, tt.want)
			}
			if tt.kind == 0 {
				if c.Len() != 0 {
					t.Errorf("unexpected defects %+v", c.Records())
				}
				return
			}
			if c.Len() != 1 || c.Records()[0].Kind != tt.kind {
				t.Fatalf("defects = %+v, want one %v", c.Records(), tt.kind)
			}
			r := c.Records()[0]
			if r.X != 0 || r.Y != 0 {
				t.Errorf("defect at (%v, %v), want edge source", r.X, r.Y)
			}
			if tt.kind == defect.EdgeInvalid {
				left, _ := r.Param(defect.KeyLeft)
				right, _ := r.Param(defect.KeyRight)
				if left != "42" || right != "" {
					t.Errorf("LEFT=%q RIGHT=%q", left, right)
				}
			}
		})
	}
}

func TestValidatorReportWithoutEdge(t *testing.T) {
	topo, c := build(t, map[coord.Location][]string{42: {square42}})
	v := NewEdgeValidator(topo, SingleBoundary)
	feed(t, v, 1, "0 0")
	if got := v.Report(SideLeft, Pack(42, RoleExterior)); got != ResultInvalid {
		t.Errorf("Report() = %v, want invalid", got)
	}
	if c.Len() != 0 {
		t.Errorf("unexpected defects %+v", c.Records())
	}
}

// TestFreeStandingSquare tests a disconnected square next to the main surface
func TestFreeStandingSquare(t *testing.T) {
	features := map[coord.Location][]string{
		1: {"0 0 100 0 100 100 0 100 0 0"},
		2: {"200 0 210 0 210 10 200 10 200 0"},
	}

	t.Run("with all objects", func(t *testing.T) {
		topo, c := build(t, features)
		n, err := topo.DetectFreeStandingSurfacesWithAllObjects()
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 || c.Len() != 1 {
			t.Fatalf("got %d free-standing surfaces, %d records, want 1", n, c.Len())
		}
		r := c.Records()[0]
		if r.Kind != defect.FreeStandingSurfaceDetailed {
			t.Errorf("kind = %v", r.Kind)
		}
		if ids := r.Values(defect.KeyIs); len(ids) != 1 || ids[0] != "2" {
			t.Errorf("IS = %v, want [2]", ids)
		}
	})

	t.Run("plain", func(t *testing.T) {
		topo, c := build(t, features)
		n, err := topo.DetectFreeStandingSurfaces()
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 || c.Records()[0].Kind != defect.FreeStandingSurface {
			t.Fatalf("got %d, records %+v", n, c.Records())
		}
		if is, _ := c.Records()[0].Param(defect.KeyIs); is != "2" {
			t.Errorf("IS = %q, want 2", is)
		}
	})
}

func TestFreeStandingCases(t *testing.T) {
	tests := []struct {
		name     string
		features map[coord.Location][]string
		want     int
		wantIs   []string
	}{
		{
			"single surface",
			map[coord.Location][]string{42: {square42}},
			0, nil,
		},
		{
			"adjacent surfaces are connected",
			map[coord.Location][]string{
				1: {"0 0 10 0 10 10 0 10 0 0"},
				2: {"10 0 20 0 20 10 10 10 10 0"},
			},
			0, nil,
		},
		{
			"island of two objects",
			map[coord.Location][]string{
				1: {"0 0 10 0 10 10 0 10 0 0"},
				2: {"10 0 20 0 20 10 10 10 10 0"},
				3: {"50 0 52 0 52 2 50 2 50 0"},
				4: {"52 0 54 0 54 2 52 2 52 0"},
			},
			1, []string{"3", "4"},
		},
		{
			"filled hole is not free-standing",
			map[coord.Location][]string{
				1: {"0 0 10 0 10 10 0 10 0 0", "2 2 2 8 8 8 8 2 2 2"},
				2: {"2 2 8 2 8 8 2 8 2 2"},
			},
			0, nil,
		},
		{
			"two islands",
			map[coord.Location][]string{
				1: {"0 0 10 0 10 10 0 10 0 0"},
				2: {"20 0 21 0 21 1 20 1 20 0"},
				3: {"30 0 31 0 31 1 30 1 30 0"},
			},
			2, []string{"2", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, c := build(t, tt.features)
			n, err := topo.DetectFreeStandingSurfacesWithAllObjects()
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.want {
				t.Fatalf("got %d free-standing surfaces, want %d: %+v", n, tt.want, c.Records())
			}
			var ids []string
			for _, r := range c.Records() {
				ids = append(ids, r.Values(defect.KeyIs)...)
			}
			if len(ids) != len(tt.wantIs) {
				t.Fatalf("IS values = %v, want %v", ids, tt.wantIs)
			}
			for i := range ids {
				if ids[i] != tt.wantIs[i] {
					t.Errorf("IS values = %v, want %v", ids, tt.wantIs)
				}
			}
		})
	}
}

func TestTraversalLimit(t *testing.T) {
	topo, c := newTopology(Options{MaxTraversalSteps: 2})
	b := NewBuilder(topo)
	feed(t, b, 1, "0 0 100 0 100 100 0 100 0 0")
	feed(t, b, 2, square42)

	_, err := topo.DetectFreeStandingSurfaces()
	var limit *TraversalLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("error = %v, want *TraversalLimitError", err)
	}
	if limit.Limit != 2 {
		t.Errorf("Limit = %d, want 2", limit.Limit)
	}
	if c.Len() != 0 {
		t.Errorf("partial walk reported %d defects", c.Len())
	}
}

func TestDetectHoles(t *testing.T) {
	tests := []struct {
		name     string
		features map[coord.Location][]string
		want     int
	}{
		{
			"empty hole",
			map[coord.Location][]string{1: {square42, "2 2 2 8 8 8 8 2 2 2"}},
			1,
		},
		{
			"two empty holes",
			map[coord.Location][]string{1: {square42, "1 1 1 4 4 4 4 1 1 1", "6 6 6 9 9 9 9 6 6 6"}},
			2,
		},
		{
			"filled hole",
			map[coord.Location][]string{
				1: {square42, "2 2 2 8 8 8 8 2 2 2"},
				2: {"2 2 8 2 8 8 2 8 2 2"},
			},
			0,
		},
		{
			"no holes",
			map[coord.Location][]string{1: {square42}},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo, c := build(t, tt.features)
			n, err := topo.DetectHoles()
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.want || c.Count(defect.HoleEmptyInterior) != tt.want {
				t.Fatalf("got %d holes, want %d", n, tt.want)
			}
			for _, r := range c.Records() {
				if is, _ := r.Param(defect.KeyIs); is != "1" {
					t.Errorf("IS = %q, want 1", is)
				}
			}
		})
	}
}

func TestObjectID(t *testing.T) {
	tests := []struct {
		ref  uint64
		role Role
	}{
		{0, RoleExterior},
		{42, RoleExterior},
		{42, RoleInterior},
		{MaxRef, RoleInterior},
		{7, RoleNone},
	}
	for _, tt := range tests {
		id := Pack(tt.ref, tt.role)
		if id.Ref() != tt.ref || id.Role() != tt.role {
			t.Errorf("Pack(%d, %v) unpacked to %d, %v", tt.ref, tt.role, id.Ref(), id.Role())
		}
	}

	if !ObjectID(0).IsEmpty() || Pack(0, RoleExterior).IsEmpty() {
		t.Error("IsEmpty mismatch")
	}
	if Pack(1<<63|5, RoleExterior).Ref() != 5 {
		t.Error("reference bits leaked into the role")
	}
	if !Pack(5, RoleExterior).SameObject(Pack(5, RoleInterior)) {
		t.Error("SameObject compares roles")
	}
	if got := Pack(5, RoleInterior).String(); got != "interior:5" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{SingleBoundary, MultipleBoundary, EnclosingBoundary} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStrategy("outer"); err == nil {
		t.Error("ParseStrategy accepted an unknown name")
	}
}
