package report

import (
	"strconv"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/beetlebugorg/gmltopo/internal/defect"
)

// Geometry returns the location of r: a line to the second point when the
// record carries X2 and Y2, the defect point otherwise.
func Geometry(r defect.Record) geom.T {
	x2, okX := r.Param(defect.KeyX2)
	y2, okY := r.Param(defect.KeyY2)
	if okX && okY {
		bx, errX := strconv.ParseFloat(x2, 64)
		by, errY := strconv.ParseFloat(y2, 64)
		if errX == nil && errY == nil {
			return geom.NewLineStringFlat(geom.XY, []float64{r.X, r.Y, bx, by})
		}
	}
	return geom.NewPointFlat(geom.XY, []float64{r.X, r.Y})
}

// WKT renders the location of r as well-known text.
func WKT(r defect.Record) (string, error) {
	return wkt.Marshal(Geometry(r))
}
