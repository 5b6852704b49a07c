// Package report renders topology errors for people and stores them for
// later inspection.
package report

import (
	"strings"

	"github.com/beetlebugorg/gmltopo/internal/defect"
)

var templates = map[defect.Kind]string{
	defect.PointDetached:               "Point {AT} of boundary {IS} is not a node of the topology; the nearest node is {TO}.",
	defect.EdgePointsInvalid:           "Boundary {IS} steps from {TO} to {AT}, but no edge joins these nodes.",
	defect.EdgeMissingLeft:             "Edge {AT} to {TO} has no object on its left; expected {SHOULD}.",
	defect.EdgeMissingRight:            "Edge {AT} to {TO} has no object on its right; expected {SHOULD}.",
	defect.EdgeInvalidLeft:             "Edge {AT} to {TO} has object {IS} on its left; expected {SHOULD}.",
	defect.EdgeInvalidRight:            "Edge {AT} to {TO} has object {IS} on its right; expected {SHOULD}.",
	defect.EdgeInvalid:                 "Edge {AT} to {TO} is claimed by object {SHOULD} on a side already taken by object {IS}.",
	defect.HoleEmptyInterior:           "Interior ring of object {IS} at {AT} encloses no object.",
	defect.FreeStandingSurface:         "Surface of object {IS} at {AT} is not connected to the main surface.",
	defect.FreeStandingSurfaceDetailed: "Surface of objects {IS} at {AT} is not connected to the main surface.",
	defect.BoundaryEdgeUnenclosed:      "Border edge {AT} to {TO} of object {IS} is not enclosed by any boundary.",
}

// sideTemplate describes an EDGE_INVALID raised by a boundary check, where
// the expected object was found on the opposite side.
const sideTemplate = "Edge {AT} to {TO} has the expected object on the opposite side (left {LEFT}, right {RIGHT})."

// Formatter renders records as English messages.
type Formatter struct {
	// Resolve maps an object reference, as found in IS, SHOULD, LEFT and
	// RIGHT parameters, to a feature identifier. If nil or if it returns
	// "", the reference itself is shown.
	Resolve func(ref string) string
}

// Format renders r with a zero Formatter.
func Format(r defect.Record) string {
	return Formatter{}.Format(r)
}

// Format renders r.
func (f Formatter) Format(r defect.Record) string {
	tmpl, ok := templates[r.Kind]
	if !ok {
		return r.Kind.String() + " at " + position(r.X, r.Y)
	}
	if _, side := r.Param(defect.KeyLeft); r.Kind == defect.EdgeInvalid && side {
		tmpl = sideTemplate
	}

	at := position(r.X, r.Y)
	to := "?"
	x2, okX := r.Param(defect.KeyX2)
	y2, okY := r.Param(defect.KeyY2)
	if okX && okY {
		to = "(" + x2 + " " + y2 + ")"
	}

	return strings.NewReplacer(
		"{AT}", at,
		"{TO}", to,
		"{IS}", f.objects(r, defect.KeyIs),
		"{SHOULD}", f.objects(r, defect.KeyShould),
		"{LEFT}", f.objects(r, defect.KeyLeft),
		"{RIGHT}", f.objects(r, defect.KeyRight),
	).Replace(tmpl)
}

func (f Formatter) objects(r defect.Record, key string) string {
	values := r.Values(key)
	if len(values) == 0 {
		return "none"
	}
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = f.name(v)
	}
	return strings.Join(names, ", ")
}

func (f Formatter) name(ref string) string {
	if ref == "" {
		return "none"
	}
	if f.Resolve != nil {
		if id := f.Resolve(ref); id != "" {
			return id
		}
	}
	return ref
}

func position(x, y float64) string {
	return "(" + defect.FormatOrdinate(x) + " " + defect.FormatOrdinate(y) + ")"
}
