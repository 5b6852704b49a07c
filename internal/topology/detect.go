package topology

import (
	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// face is the result of walking one face boundary.
type face struct {
	start   EdgeID
	area    float64    // signed, positive for counter-clockwise walks
	objects []ObjectID // distinct by reference, in walk order
}

// walkFace follows TargetCcwNext from start until it returns, marking every
// half-edge in seen. Objects are only collected when collect is set.
func (t *Topology) walkFace(start EdgeID, seen *bitset, collect bool, op string) (face, error) {
	f := face{start: start}
	var refs map[uint64]struct{}
	if collect {
		refs = make(map[uint64]struct{})
	}

	var twice float64
	e := start
	for steps := 0; ; steps++ {
		if steps >= t.opts.MaxTraversalSteps {
			x, y := t.XY(t.edges[start].source)
			err := &TraversalLimitError{Op: op, Limit: t.opts.MaxTraversalSteps, Edge: start, X: x, Y: y}
			t.log.Error(err, "face walk abandoned", "edge", start, "x", x, "y", y)
			return f, err
		}

		seen.set(e)
		a, b := t.nodes[t.edges[e].source], t.nodes[t.edges[e].target]
		twice += a.x*b.y - b.x*a.y

		if collect {
			if id := t.Left(e); !id.IsEmpty() {
				if _, ok := refs[id.Ref()]; !ok {
					refs[id.Ref()] = struct{}{}
					f.objects = append(f.objects, id)
				}
			}
		}

		e = t.TargetCcwNext(e)
		if e == start {
			break
		}
	}
	f.area = twice / 2
	return f, nil
}

// DetectHoles reports one HOLE_EMPTY_INTERIOR per interior ring whose inside
// is not covered by any object. It returns the number of holes found.
func (t *Topology) DetectHoles() (int, error) {
	var seen bitset
	found := 0
	for i := range t.edges {
		e := EdgeID(i)
		if seen.has(e) {
			continue
		}
		if left := t.Left(e); left.Role() != RoleInterior || !t.Right(e).IsEmpty() {
			continue
		}
		if _, err := t.walkFace(e, &seen, false, "hole detection"); err != nil {
			return found, err
		}
		x, y := t.XY(t.edges[e].source)
		t.sink.Add(defect.HoleEmptyInterior, x, y, defect.P(defect.KeyIs, t.Left(e).param()))
		found++
	}
	t.log.V(1).Info("hole detection finished", "holes", found)
	return found, nil
}

// DetectFreeStandingSurfaces reports every connected surface that is not
// part of the theme's main surface.
//
// Border edges (an exterior object on the left, nothing on the right) are
// walked face by face. Counter-clockwise walks are the outer boundaries of
// connected surfaces; all of them except the one enclosing the largest area
// are free-standing. Each is reported once with the first object met.
func (t *Topology) DetectFreeStandingSurfaces() (int, error) {
	return t.detectFreeStanding(false)
}

// DetectFreeStandingSurfacesWithAllObjects is DetectFreeStandingSurfaces, but
// each FREE_STANDING_SURFACE_DETAILED record lists every distinct object
// along the surface's outer boundary as an IS parameter.
func (t *Topology) DetectFreeStandingSurfacesWithAllObjects() (int, error) {
	return t.detectFreeStanding(true)
}

func (t *Topology) detectFreeStanding(detailed bool) (int, error) {
	op := "free-standing surface detection"
	if err := t.enterPass(passSurfaces, op); err != nil {
		return 0, err
	}
	t.visited.clear()

	var outers []face
	for i := range t.edges {
		e := EdgeID(i)
		if t.visited.has(e) || !t.isBorder(e) || t.Left(e).Role() != RoleExterior {
			continue
		}
		f, err := t.walkFace(e, &t.visited, detailed, op)
		if err != nil {
			return 0, err
		}
		if f.area > 0 {
			outers = append(outers, f)
		}
	}
	if len(outers) < 2 {
		t.log.V(1).Info("free-standing surface detection finished", "surfaces", len(outers), "freeStanding", 0)
		return 0, nil
	}

	largest := 0
	for i, f := range outers {
		if f.area > outers[largest].area {
			largest = i
		}
	}

	found := 0
	for i, f := range outers {
		if i == largest {
			continue
		}
		x, y := t.XY(t.edges[f.start].source)
		if detailed {
			params := make([]defect.Param, 0, len(f.objects))
			for _, id := range f.objects {
				params = append(params, defect.P(defect.KeyIs, id.param()))
			}
			t.sink.Add(defect.FreeStandingSurfaceDetailed, x, y, params...)
		} else {
			t.sink.Add(defect.FreeStandingSurface, x, y, defect.P(defect.KeyIs, t.Left(f.start).param()))
		}
		found++
	}
	t.log.V(1).Info("free-standing surface detection finished", "surfaces", len(outers), "freeStanding", found)
	return found, nil
}

// DetectUnenclosedBoundaries reports every border half-edge (an object on
// the left, nothing on the right) whose pair was not marked enclosed.
func (t *Topology) DetectUnenclosedBoundaries() (int, error) {
	if err := t.enterPass(passBoundaries, "unenclosed boundary detection"); err != nil {
		return 0, err
	}
	found := 0
	for i := range t.edges {
		e := EdgeID(i)
		if !t.isBorder(e) || t.IsEnclosed(e) {
			continue
		}
		src, dst := t.nodes[t.edges[e].source], t.nodes[t.edges[e].target]
		params := append([]defect.Param{defect.P(defect.KeyIs, t.Left(e).param())},
			defect.Point(dst.x, dst.y)...)
		t.sink.Add(defect.BoundaryEdgeUnenclosed, src.x, src.y, params...)
		found++
	}
	t.log.V(1).Info("unenclosed boundary detection finished", "edges", found)
	return found, nil
}
