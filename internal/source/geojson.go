package source

import (
	"encoding/json"
	"fmt"
	"strconv"

	geojson "github.com/paulmach/go.geojson"

	"github.com/beetlebugorg/gmltopo/internal/coord"
)

// ReadGeoJSON feeds the boundaries of a FeatureCollection, a single Feature
// or a bare Geometry.
//
// Every polygon starts a geometric object with its first ring; the remaining
// rings are interior. Line strings are fed as single-ring objects and points
// are ignored. Ordinates beyond the second are passed through as 3D.
// Feature identifiers come from the feature id, or else from an "id" or
// "gml_id" property.
func ReadGeoJSON(data []byte, f Feeder, opts Options) (Summary, error) {
	r := newReader(f, opts, "geojson")

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return r.summary, fmt.Errorf("geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return r.summary, fmt.Errorf("geojson: %w", err)
		}
		for _, feat := range fc.Features {
			if r.err != nil {
				break
			}
			r.geoFeature(feat)
		}
	case "Feature":
		feat, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return r.summary, fmt.Errorf("geojson: %w", err)
		}
		r.geoFeature(feat)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return r.summary, fmt.Errorf("geojson: %w", err)
		}
		r.geoObject(r.opts.Objects.Ref(""), g)
	}
	if r.err != nil {
		return r.summary, fmt.Errorf("geojson: %w", r.err)
	}
	return r.summary, nil
}

func (r *reader) geoFeature(feat *geojson.Feature) {
	if feat == nil || feat.Geometry == nil {
		return
	}
	ref := r.opts.Objects.Ref(featureID(feat))
	r.geoObject(ref, feat.Geometry)
}

func featureID(feat *geojson.Feature) string {
	if feat.ID != nil {
		return fmt.Sprint(feat.ID)
	}
	for _, key := range []string{"id", "gml_id"} {
		if v, ok := feat.Properties[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

func (r *reader) geoObject(ref coord.Location, g *geojson.Geometry) {
	fed, ok := r.geoGeometry(ref, g)
	if fed > 0 {
		r.summary.Features++
	}
	if !ok {
		r.log.V(1).Info("feature abandoned", "ref", uint64(ref))
	}
}

// geoGeometry feeds g and returns the number of rings fed. It stops at the
// first ring that fails to parse.
func (r *reader) geoGeometry(ref coord.Location, g *geojson.Geometry) (int, bool) {
	if g == nil {
		return 0, true
	}
	switch g.Type {
	case geojson.GeometryPolygon:
		return r.geoPolygon(ref, g.Polygon)
	case geojson.GeometryMultiPolygon:
		fed := 0
		for _, poly := range g.MultiPolygon {
			n, ok := r.geoPolygon(ref, poly)
			fed += n
			if !ok {
				return fed, false
			}
		}
		return fed, true
	case geojson.GeometryLineString:
		return r.geoPolygon(ref, [][][]float64{g.LineString})
	case geojson.GeometryMultiLineString:
		fed := 0
		for _, line := range g.MultiLineString {
			n, ok := r.geoPolygon(ref, [][][]float64{line})
			fed += n
			if !ok {
				return fed, false
			}
		}
		return fed, true
	case geojson.GeometryCollection:
		fed := 0
		for _, child := range g.Geometries {
			n, ok := r.geoGeometry(ref, child)
			fed += n
			if !ok {
				return fed, false
			}
		}
		return fed, true
	default:
		return 0, true
	}
}

func (r *reader) geoPolygon(ref coord.Location, rings [][][]float64) (int, bool) {
	fed := 0
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		if fed == 0 {
			r.f.BeginFeature()
		} else {
			r.f.BeginInterior()
		}
		r.f.SetGeometryType(r.opts.baseType())
		r.f.SetDimension(len(ring[0]) > 2)
		if err := r.feed(ref, r.appendRing(ring)); err != nil {
			return fed, false
		}
		fed++
	}
	return fed, true
}

// appendRing renders ring as ordinate text in r.buf. Positions shorter than
// the first are padded with zeros and longer ones are cut.
func (r *reader) appendRing(ring [][]float64) []byte {
	dim := 2
	if len(ring[0]) > 2 {
		dim = 3
	}
	buf := r.buf[:0]
	for _, pos := range ring {
		for k := 0; k < dim; k++ {
			v := 0.0
			if k < len(pos) {
				v = pos[k]
			}
			buf = strconv.AppendFloat(buf, v, 'f', -1, 64)
			buf = append(buf, ' ')
		}
	}
	r.buf = buf
	return buf
}
