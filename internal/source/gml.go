package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/beetlebugorg/gmltopo/internal/coord"
)

// ReadGML streams a GML document and feeds the boundaries of its features.
//
// Every child of a featureMember, member or featureMembers element is a
// feature; its gml:id is entered in the object table. A document without
// feature members is read as one anonymous feature. Elements are matched by
// local name, so GML 2, 3.1 and 3.2 namespaces are all accepted.
//
// Each exterior (outerBoundaryIs) and each free-standing LineString, Curve
// or Point starts a new geometric object; interior (innerBoundaryIs) starts
// an interior ring. posList, pos and coordinates content is fed as is,
// honouring srsDimension. Arc, ArcString and Circle segments switch to arc
// delivery; the control points of one arc element are fed as a single
// sequence, so arcs written as separate pos elements stay whole. A malformed
// ordinate sequence abandons the rest of its feature.
func ReadGML(r io.Reader, f Feeder, opts Options) (Summary, error) {
	g := &gmlReader{
		reader: newReader(f, opts, "gml"),
		dec:    xml.NewDecoder(r),
	}
	if err := g.run(); err != nil {
		return g.summary, fmt.Errorf("gml: %w", err)
	}
	if g.err != nil {
		return g.summary, fmt.Errorf("gml: %w", g.err)
	}
	return g.summary, nil
}

type gmlFeature struct {
	ref   coord.Location
	id    string
	depth int
	fed   bool
	skip  bool
}

type dimFrame struct {
	depth int
	dim   int
}

type gmlReader struct {
	*reader
	dec *xml.Decoder

	depth        int
	memberDepth  int // open featureMember or member
	membersDepth int // open featureMembers

	feature   *gmlFeature
	ringDepth int // open exterior or interior
	arcDepth  int
	arcBuf    []byte // ordinates of the open arc element
	arcDim    int
	dims      []dimFrame

	collect int // open posList, pos or coordinates
	coords  *xml.StartElement
}

func (g *gmlReader) run() error {
	for g.err == nil {
		tok, err := g.dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			g.depth++
			g.start(t)
		case xml.CharData:
			if g.collect > 0 {
				g.buf = append(g.buf, t...)
			}
		case xml.EndElement:
			g.end()
			g.depth--
		}
	}
	if g.feature != nil && g.err == nil {
		g.endFeature()
	}
	return nil
}

func (g *gmlReader) start(el xml.StartElement) {
	if v, ok := attr(el, "srsDimension"); ok {
		if dim, err := strconv.Atoi(v); err == nil {
			g.dims = append(g.dims, dimFrame{depth: g.depth, dim: dim})
		}
	}

	name := el.Name.Local
	if g.feature == nil {
		switch {
		case name == "featureMember" || name == "member":
			g.memberDepth = g.depth
			return
		case name == "featureMembers":
			g.membersDepth = g.depth
			return
		case g.memberDepth > 0 && g.depth == g.memberDepth+1,
			g.membersDepth > 0 && g.depth == g.membersDepth+1:
			id, _ := attr(el, "id")
			g.beginFeature(id, g.depth)
			return
		}
	}

	switch name {
	case "exterior", "outerBoundaryIs":
		g.ensureFeature()
		g.ringDepth = g.depth
		g.f.BeginFeature()
	case "interior", "innerBoundaryIs":
		g.ensureFeature()
		g.ringDepth = g.depth
		g.f.BeginInterior()
	case "LineString", "Curve", "Point":
		if g.ringDepth == 0 {
			g.ensureFeature()
			g.f.BeginFeature()
		}
	case "Arc", "ArcString", "Circle":
		g.arcDepth = g.depth
		g.arcBuf = g.arcBuf[:0]
		g.f.SetGeometryType(coord.TypeArc)
	case "posList", "pos", "coordinates":
		g.ensureFeature()
		g.collect = g.depth
		g.buf = g.buf[:0]
		g.coords = nil
		if name == "coordinates" {
			el := el.Copy()
			g.coords = &el
		}
	}
}

func (g *gmlReader) end() {
	if g.depth == g.collect {
		g.collect = 0
		g.flush()
	}
	if n := len(g.dims); n > 0 && g.dims[n-1].depth == g.depth {
		g.dims = g.dims[:n-1]
	}
	if g.depth == g.arcDepth {
		g.arcDepth = 0
		g.flushArc()
		g.f.SetGeometryType(g.opts.baseType())
	}
	if g.depth == g.ringDepth {
		g.ringDepth = 0
	}
	if g.feature != nil && g.depth == g.feature.depth {
		g.endFeature()
	}
	if g.depth == g.memberDepth {
		g.memberDepth = 0
	}
	if g.depth == g.membersDepth {
		g.membersDepth = 0
	}
}

func (g *gmlReader) flush() {
	if g.feature.skip {
		return
	}
	data := g.buf
	dim := 2
	if n := len(g.dims); n > 0 {
		dim = g.dims[n-1].dim
	}
	if g.coords != nil {
		data, dim = normalizeCoordinates(*g.coords, data)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}
	if g.arcDepth > 0 {
		g.arcBuf = append(append(g.arcBuf, data...), ' ')
		g.arcDim = dim
		return
	}
	g.send(data, dim)
}

// flushArc feeds the control points collected inside an arc element.
func (g *gmlReader) flushArc() {
	if g.feature == nil || g.feature.skip || len(bytes.TrimSpace(g.arcBuf)) == 0 {
		return
	}
	g.send(g.arcBuf, g.arcDim)
}

func (g *gmlReader) send(data []byte, dim int) {
	g.f.SetDimension(dim == 3)
	if err := g.feed(g.feature.ref, data); err != nil {
		g.feature.skip = true
		return
	}
	g.feature.fed = true
}

func (g *gmlReader) beginFeature(id string, depth int) {
	g.feature = &gmlFeature{ref: g.opts.Objects.Ref(id), id: id, depth: depth}
	g.f.SetGeometryType(g.opts.baseType())
	g.log.V(2).Info("feature", "id", id, "ref", uint64(g.feature.ref))
}

// ensureFeature opens the anonymous document feature when geometry appears
// outside any feature member.
func (g *gmlReader) ensureFeature() {
	if g.feature == nil {
		g.beginFeature("", 0)
	}
}

func (g *gmlReader) endFeature() {
	if g.feature.fed {
		g.summary.Features++
	}
	g.feature = nil
	g.ringDepth = 0
	g.arcDepth = 0
	g.arcBuf = g.arcBuf[:0]
}

// normalizeCoordinates rewrites the content of a GML 2 coordinates element
// into whitespace separated ordinates and infers the tuple dimension.
func normalizeCoordinates(el xml.StartElement, data []byte) ([]byte, int) {
	cs, ts, dec := ",", " ", "."
	if v, ok := attr(el, "cs"); ok && v != "" {
		cs = v
	}
	if v, ok := attr(el, "ts"); ok && v != "" {
		ts = v
	}
	if v, ok := attr(el, "decimal"); ok && v != "" {
		dec = v
	}

	data = bytes.TrimSpace(data)
	first := data
	if i := bytes.IndexAny(data, ts+" \t\r\n"); i >= 0 {
		first = data[:i]
	}
	dim := bytes.Count(first, []byte(cs)) + 1

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case bytes.HasPrefix(data[i:], []byte(cs)):
			out = append(out, ' ')
			i += len(cs) - 1
		case bytes.HasPrefix(data[i:], []byte(ts)):
			out = append(out, ' ')
			i += len(ts) - 1
		case dec != "." && bytes.HasPrefix(data[i:], []byte(dec)):
			out = append(out, '.')
			i += len(dec) - 1
		default:
			out = append(out, c)
		}
	}
	return out, dim
}

func attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
