// Package topology maintains the planar half-edge graph of a theme and the
// validations that run on it.
//
// # Storage
//
// Nodes and half-edges live in two arenas and refer to each other by index.
// Half-edges are created in twin pairs at indices 2k and 2k+1, so the twin of
// e is e^1. The two side labels of a pair are stored once: the left side of
// one half-edge is the right side of its twin.
//
// Each node keeps its outgoing half-edges sorted by angle, which makes the
// rotation around a node (TargetCcwNext) a constant-time neighbour lookup.
//
// # Concurrency
//
// A Topology is owned by one theme and is not safe for concurrent use.
package topology

import (
	"math"
	"sort"

	"github.com/go-logr/logr"

	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// NodeID indexes the node arena.
type NodeID int32

// EdgeID indexes the half-edge arena.
type EdgeID int32

const (
	NoNode NodeID = -1
	NoEdge EdgeID = -1
)

// DefaultMaxTraversalSteps bounds a single face walk.
const DefaultMaxTraversalSteps = 1_000_000

// Options configures a Topology.
type Options struct {
	// MaxTraversalSteps caps the number of edges a single face walk may
	// visit before it is abandoned with a TraversalLimitError.
	MaxTraversalSteps int

	// Logger receives diagnostics. The zero value discards them.
	Logger logr.Logger
}

// DefaultOptions returns the default topology options.
func DefaultOptions() Options {
	return Options{
		MaxTraversalSteps: DefaultMaxTraversalSteps,
		Logger:            logr.Discard(),
	}
}

type node struct {
	x, y  float64
	hash  uint64
	chain NodeID   // next node with the same hash
	out   []EdgeID // outgoing half-edges by ascending angle
}

type halfEdge struct {
	source, target NodeID
	angle          float64
}

// pass is the marking pass that owns the edge marks.
type pass int

const (
	passNone pass = iota
	passBoundaries
	passSurfaces
)

func (p pass) String() string {
	switch p {
	case passBoundaries:
		return "boundary"
	case passSurfaces:
		return "surface"
	default:
		return "none"
	}
}

// Topology is a planar graph of unique nodes and labelled half-edges.
type Topology struct {
	opts Options
	log  logr.Logger
	sink defect.Sink

	nodes  []node
	byHash map[uint64]NodeID

	edges []halfEdge
	sides [][2]ObjectID // per pair: [0] is left of the even half-edge

	pass     pass
	enclosed bitset // keyed by the even half-edge of a pair
	visited  bitset

	index *nodeIndex
}

// New creates an empty topology reporting defects to sink.
func New(opts Options, sink defect.Sink) *Topology {
	if opts.MaxTraversalSteps <= 0 {
		opts.MaxTraversalSteps = DefaultMaxTraversalSteps
	}
	return &Topology{
		opts:   opts,
		log:    opts.Logger.WithName("topology"),
		sink:   sink,
		byHash: make(map[uint64]NodeID),
	}
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int { return len(t.nodes) }

// EdgeCount returns the number of half-edges, twins included.
func (t *Topology) EdgeCount() int { return len(t.edges) }

// InsertSegment adds the segment a-b with the given side labels.
//
// If the nodes are already joined, the labels are merged into the existing
// pair; claiming a side that already carries a different object records an
// EDGE_INVALID defect and leaves the existing label in place. Zero-length
// segments are ignored.
func (t *Topology) InsertSegment(a, b coord.Coordinate, left, right ObjectID) {
	na := t.resolve(a)
	nb := t.resolve(b)
	if na == nb {
		return
	}

	e := t.Edge(na, nb)
	if e == NoEdge {
		e = t.addPair(na, nb)
	}
	t.claim(e, left, true)
	t.claim(e, right, false)
}

func (t *Topology) claim(e EdgeID, id ObjectID, leftSide bool) {
	if id.IsEmpty() {
		return
	}
	slot := &t.sides[e>>1][int(e&1)]
	if !leftSide {
		slot = &t.sides[e>>1][1-int(e&1)]
	}
	switch {
	case slot.IsEmpty():
		*slot = id
	case *slot != id:
		src, dst := t.nodes[t.edges[e].source], t.nodes[t.edges[e].target]
		params := append([]defect.Param{
			defect.P(defect.KeyIs, slot.param()),
			defect.P(defect.KeyShould, id.param()),
		}, defect.Point(dst.x, dst.y)...)
		t.sink.Add(defect.EdgeInvalid, src.x, src.y, params...)
	}
}

func (t *Topology) resolve(c coord.Coordinate) NodeID {
	if n := t.Lookup(c); n != NoNode {
		return n
	}
	id := NodeID(len(t.nodes))
	head, ok := t.byHash[c.Hash]
	if !ok {
		head = NoNode
	}
	t.nodes = append(t.nodes, node{x: c.X, y: c.Y, hash: c.Hash, chain: head})
	t.byHash[c.Hash] = id
	return id
}

func (t *Topology) addPair(a, b NodeID) EdgeID {
	pa, pb := t.nodes[a], t.nodes[b]
	e := EdgeID(len(t.edges))
	t.edges = append(t.edges,
		halfEdge{source: a, target: b, angle: math.Atan2(pb.y-pa.y, pb.x-pa.x)},
		halfEdge{source: b, target: a, angle: math.Atan2(pa.y-pb.y, pa.x-pb.x)},
	)
	t.sides = append(t.sides, [2]ObjectID{})
	t.link(a, e)
	t.link(b, e^1)
	return e
}

// link inserts e into the angle-ordered list of its source. Equal angles keep
// insertion order.
func (t *Topology) link(n NodeID, e EdgeID) {
	out := t.nodes[n].out
	angle := t.edges[e].angle
	i := sort.Search(len(out), func(i int) bool {
		return t.edges[out[i]].angle > angle
	})
	out = append(out, NoEdge)
	copy(out[i+1:], out[i:])
	out[i] = e
	t.nodes[n].out = out
}

// Lookup returns the node at c's position, or NoNode. Nodes sharing a hash
// are told apart by their exact coordinates.
func (t *Topology) Lookup(c coord.Coordinate) NodeID {
	n, ok := t.byHash[c.Hash]
	if !ok {
		return NoNode
	}
	for ; n != NoNode; n = t.nodes[n].chain {
		if t.nodes[n].x == c.X && t.nodes[n].y == c.Y {
			return n
		}
	}
	return NoNode
}

// Edge returns the half-edge from a to b, or NoEdge.
func (t *Topology) Edge(a, b NodeID) EdgeID {
	if !t.validNode(a) || !t.validNode(b) {
		return NoEdge
	}
	for _, e := range t.nodes[a].out {
		if t.edges[e].target == b {
			return e
		}
	}
	return NoEdge
}

// Twin returns the opposite half-edge of e.
func (t *Topology) Twin(e EdgeID) EdgeID { return e ^ 1 }

// Source returns the start node of e.
func (t *Topology) Source(e EdgeID) NodeID { return t.edges[e].source }

// Target returns the end node of e.
func (t *Topology) Target(e EdgeID) NodeID { return t.edges[e].target }

// Left returns the object on the left side of e.
func (t *Topology) Left(e EdgeID) ObjectID { return t.sides[e>>1][int(e&1)] }

// Right returns the object on the right side of e.
func (t *Topology) Right(e EdgeID) ObjectID { return t.sides[e>>1][1-int(e&1)] }

// TargetCcwNext returns the outgoing half-edge of e's target that follows
// twin(e) counter-clockwise. Repeated application traces the face on the
// right of e; since it is a permutation of the half-edges, every walk
// returns to its start.
func (t *Topology) TargetCcwNext(e EdgeID) EdgeID {
	tw := e ^ 1
	out := t.nodes[t.edges[e].target].out
	for i, o := range out {
		if o == tw {
			return out[(i+1)%len(out)]
		}
	}
	// unreachable: every half-edge is linked at its source
	return tw
}

// Outgoing returns the half-edges leaving n in counter-clockwise order. The
// slice must not be modified.
func (t *Topology) Outgoing(n NodeID) []EdgeID {
	if !t.validNode(n) {
		return nil
	}
	return t.nodes[n].out
}

// XY returns the position of n.
func (t *Topology) XY(n NodeID) (x, y float64) {
	return t.nodes[n].x, t.nodes[n].y
}

// IsEnclosed reports whether e's pair was marked enclosed.
func (t *Topology) IsEnclosed(e EdgeID) bool {
	return t.enclosed.has(e &^ 1)
}

// MarkEnclosedEdge flags the pair of e as enclosed by a boundary, so it is
// no longer reported as unenclosed. It starts the boundary marking pass.
func (t *Topology) MarkEnclosedEdge(e EdgeID) error {
	if !t.validEdge(e) {
		return &ErrUnknownEdge{Edge: e}
	}
	if err := t.enterPass(passBoundaries, "enclosed edge marking"); err != nil {
		return err
	}
	t.enclosed.set(e &^ 1)
	return nil
}

func (t *Topology) enterPass(p pass, op string) error {
	if t.pass != passNone && t.pass != p {
		return &StateError{Op: op, Pass: t.pass.String()}
	}
	t.pass = p
	return nil
}

func (t *Topology) validNode(n NodeID) bool {
	return n >= 0 && int(n) < len(t.nodes)
}

func (t *Topology) validEdge(e EdgeID) bool {
	return e >= 0 && int(e) < len(t.edges)
}

// isBorder reports whether e has an object on its left and none on its right.
func (t *Topology) isBorder(e EdgeID) bool {
	return !t.Left(e).IsEmpty() && t.Right(e).IsEmpty()
}
