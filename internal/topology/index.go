package topology

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// pointExtent gives point rectangles the non-zero size the R-tree requires.
const pointExtent = 1e-9

// nodeIndex is an R-tree over node positions. Nodes are never deleted, so
// the index only ever catches up with nodes appended since the last query.
type nodeIndex struct {
	rtree   *rtreego.Rtree
	indexed int
}

// indexedNode wraps a node for R-tree storage.
type indexedNode struct {
	id   NodeID
	x, y float64
}

// Bounds implements rtreego.Spatial interface.
func (n *indexedNode) Bounds() rtreego.Rect {
	point := rtreego.Point{n.x, n.y}
	rect, _ := rtreego.NewRect(point, []float64{pointExtent, pointExtent})
	return rect
}

// spatialIndex brings the index up to date and returns it.
func (t *Topology) spatialIndex() *nodeIndex {
	if t.index == nil {
		t.index = &nodeIndex{rtree: rtreego.NewTree(2, 25, 50)}
	}
	for ; t.index.indexed < len(t.nodes); t.index.indexed++ {
		id := NodeID(t.index.indexed)
		t.index.rtree.Insert(&indexedNode{id: id, x: t.nodes[id].x, y: t.nodes[id].y})
	}
	return t.index
}

// NodeAt returns the node at exactly (x, y), or NoNode.
func (t *Topology) NodeAt(x, y float64) NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	query, err := rtreego.NewRect(rtreego.Point{x, y}, []float64{pointExtent, pointExtent})
	if err != nil {
		return NoNode
	}
	for _, s := range t.spatialIndex().rtree.SearchIntersect(query) {
		n := s.(*indexedNode)
		if n.x == x && n.y == y {
			return n.id
		}
	}
	return NoNode
}

// NearestNode returns the node closest to (x, y), or NoNode for an empty
// topology.
func (t *Topology) NearestNode(x, y float64) NodeID {
	if len(t.nodes) == 0 {
		return NoNode
	}
	s := t.spatialIndex().rtree.NearestNeighbor(rtreego.Point{x, y})
	if s == nil {
		return NoNode
	}
	return s.(*indexedNode).id
}

// NodesInBounds returns the nodes inside the rectangle, in no particular order.
func (t *Topology) NodesInBounds(minX, minY, maxX, maxY float64) []NodeID {
	if len(t.nodes) == 0 || maxX < minX || maxY < minY {
		return nil
	}
	// grown by the point extent so nodes on the border still intersect
	lengths := []float64{
		math.Max(maxX-minX, 0) + 2*pointExtent,
		math.Max(maxY-minY, 0) + 2*pointExtent,
	}
	query, err := rtreego.NewRect(rtreego.Point{minX - pointExtent, minY - pointExtent}, lengths)
	if err != nil {
		return nil
	}

	spatials := t.spatialIndex().rtree.SearchIntersect(query)
	result := make([]NodeID, 0, len(spatials))
	for _, s := range spatials {
		n := s.(*indexedNode)
		if n.x >= minX && n.x <= maxX && n.y >= minY && n.y <= maxY {
			result = append(result, n.id)
		}
	}
	return result
}
