package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/beetlebugorg/gmltopo/internal/coord"
)

// ReadShapefile feeds the polygons and polylines of an ESRI shapefile.
//
// Shapefile rings are clockwise for outer boundaries and counter-clockwise
// for holes; both are reversed so that, as in GML, the surface lies on the
// left. A clockwise part starts a geometric object and a counter-clockwise
// part is fed as its interior. Identifiers come from an "id" or "gml_id"
// attribute, or else from the record number.
func ReadShapefile(path string, f Feeder, opts Options) (Summary, error) {
	r := newReader(f, opts, "shapefile")

	file, err := shp.Open(path)
	if err != nil {
		return r.summary, fmt.Errorf("shapefile: %w", err)
	}
	defer file.Close()

	idField := -1
	for i, field := range file.Fields() {
		name := strings.ToLower(field.String())
		if name == "id" || name == "gml_id" {
			idField = i
			break
		}
	}

	for r.err == nil && file.Next() {
		n, shape := file.Shape()
		id := strconv.Itoa(n + 1)
		if idField >= 0 {
			if v := strings.Trim(file.ReadAttribute(n, idField), " \x00"); v != "" {
				id = v
			}
		}
		ref := r.opts.Objects.Ref(id)

		var fed int
		switch s := shape.(type) {
		case *shp.Polygon:
			fed = r.shpParts(ref, s.Parts, s.Points, nil, true)
		case *shp.PolygonZ:
			fed = r.shpParts(ref, s.Parts, s.Points, s.ZArray, true)
		case *shp.PolyLine:
			fed = r.shpParts(ref, s.Parts, s.Points, nil, false)
		case *shp.PolyLineZ:
			fed = r.shpParts(ref, s.Parts, s.Points, s.ZArray, false)
		default:
			r.log.V(2).Info("ignoring shape", "record", n, "type", fmt.Sprintf("%T", shape))
		}
		if fed > 0 {
			r.summary.Features++
		}
	}
	if r.err != nil {
		return r.summary, fmt.Errorf("shapefile: %w", r.err)
	}
	if err := file.Err(); err != nil {
		return r.summary, fmt.Errorf("shapefile: %w", err)
	}
	return r.summary, nil
}

// shpParts feeds the parts of one record and returns how many were fed.
func (r *reader) shpParts(ref coord.Location, parts []int32, points []shp.Point, z []float64, polygon bool) int {
	fed := 0
	outer := false
	for i, first := range parts {
		last := len(points)
		if i < len(parts)-1 {
			last = int(parts[i+1])
		}
		if int(first) >= last || last > len(points) {
			continue
		}
		ring := points[first:last]

		switch {
		case !polygon:
			r.f.BeginFeature()
		case ringArea(ring) < 0:
			r.f.BeginFeature()
			outer = true
		case outer:
			r.f.BeginInterior()
		default:
			// a hole before any outer ring is taken as an outer ring as drawn
			r.f.BeginFeature()
		}

		var zs []float64
		if len(z) >= last {
			zs = z[first:last]
		}
		r.f.SetGeometryType(r.opts.baseType())
		r.f.SetDimension(zs != nil)
		if err := r.feed(ref, r.appendShpRing(ring, zs, polygon)); err != nil {
			return fed
		}
		fed++
	}
	return fed
}

// appendShpRing renders ring as ordinate text in r.buf, reversed for
// polygons.
func (r *reader) appendShpRing(ring []shp.Point, z []float64, reverse bool) []byte {
	buf := r.buf[:0]
	for k := range ring {
		i := k
		if reverse {
			i = len(ring) - 1 - k
		}
		buf = strconv.AppendFloat(buf, ring[i].X, 'f', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, ring[i].Y, 'f', -1, 64)
		buf = append(buf, ' ')
		if z != nil {
			buf = strconv.AppendFloat(buf, z[i], 'f', -1, 64)
			buf = append(buf, ' ')
		}
	}
	r.buf = buf
	return buf
}

// ringArea returns the signed area of ring, positive when counter-clockwise.
func ringArea(ring []shp.Point) float64 {
	var sum float64
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum / 2
}
