// Package source walks feature documents and feeds their boundary
// ordinates to a topology theme or boundary check.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/beetlebugorg/gmltopo/internal/coord"
)

// Feeder receives feature boundaries as ordinate text.
type Feeder interface {
	// BeginFeature starts a new geometric object; the next ring is exterior.
	BeginFeature()
	// BeginInterior starts an interior ring of the current object.
	BeginInterior()
	SetGeometryType(gt coord.GeometryType)
	SetDimension(threeD bool)
	// Feed delivers one whitespace separated ordinate sequence of feature loc.
	Feed(loc coord.Location, ordinates []byte) error
}

// Options configures a reader.
type Options struct {
	// Objects receives the feature identifiers. If nil, a new table is
	// created and returned in the Summary.
	Objects *ObjectTable

	// SuppressDuplicates feeds ordinates with coord.TypeUnique instead of
	// coord.TypeDefault, dropping repeated points.
	SuppressDuplicates bool

	// Logger receives skipped features at V(0) and per-feature detail at V(2).
	Logger logr.Logger
}

func (o Options) baseType() coord.GeometryType {
	if o.SuppressDuplicates {
		return coord.TypeUnique
	}
	return coord.TypeDefault
}

// Summary describes one read input.
type Summary struct {
	Objects  *ObjectTable
	Features int // features with at least one geometry
	Rings    int // ordinate sequences fed
	Skipped  int // features abandoned because of malformed ordinates
}

// ErrUnsupportedFormat indicates a file extension no reader handles
type ErrUnsupportedFormat struct {
	Path string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported input format: %s", e.Path)
}

// ReadFile picks a reader by file extension: .gml and .xml are read as GML,
// .geojson and .json as GeoJSON, .shp as an ESRI shapefile.
func ReadFile(path string, f Feeder, opts Options) (Summary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gml", ".xml":
		file, err := os.Open(path)
		if err != nil {
			return Summary{}, err
		}
		defer file.Close()
		return ReadGML(file, f, opts)
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return Summary{}, err
		}
		return ReadGeoJSON(data, f, opts)
	case ".shp":
		return ReadShapefile(path, f, opts)
	default:
		return Summary{}, &ErrUnsupportedFormat{Path: path}
	}
}

// ObjectTable assigns references to feature identifiers. References start
// at 1 and are stable: an identifier seen again gets its first reference.
//
// An ObjectTable is not safe for concurrent use.
type ObjectTable struct {
	ids  []string
	refs map[string]coord.Location
}

// NewObjectTable creates an empty table.
func NewObjectTable() *ObjectTable {
	return &ObjectTable{refs: make(map[string]coord.Location)}
}

// Ref returns the reference of id, assigning the next one if id is new. An
// empty id always gets a fresh reference.
func (t *ObjectTable) Ref(id string) coord.Location {
	if id != "" {
		if ref, ok := t.refs[id]; ok {
			return ref
		}
	}
	t.ids = append(t.ids, id)
	ref := coord.Location(len(t.ids))
	if id != "" {
		t.refs[id] = ref
	}
	return ref
}

// ID returns the identifier of ref. Anonymous features have an empty id.
func (t *ObjectTable) ID(ref coord.Location) (string, bool) {
	if ref == 0 || int(ref) > len(t.ids) {
		return "", false
	}
	return t.ids[ref-1], true
}

// Resolve maps a decimal reference, as carried in error parameters, back to
// its identifier. It returns "" for unknown or anonymous references.
func (t *ObjectTable) Resolve(ref string) string {
	n, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		return ""
	}
	id, _ := t.ID(coord.Location(n))
	return id
}

// Len returns the number of references assigned.
func (t *ObjectTable) Len() int { return len(t.ids) }

// reader holds the state shared by the format readers.
type reader struct {
	f       Feeder
	opts    Options
	log     logr.Logger
	summary Summary
	buf     []byte
	err     error // first failure that is not a parse error
}

func newReader(f Feeder, opts Options, format string) *reader {
	if opts.Objects == nil {
		opts.Objects = NewObjectTable()
	}
	return &reader{
		f:       f,
		opts:    opts,
		log:     opts.Logger.WithName("source").WithValues("format", format),
		summary: Summary{Objects: opts.Objects},
	}
}

// feed sends one ordinate sequence. A malformed sequence is logged and
// counted as skipped; any other failure is kept in r.err and ends the read.
// In both cases the error is returned so the caller abandons the feature.
func (r *reader) feed(loc coord.Location, ordinates []byte) error {
	r.summary.Rings++
	err := r.f.Feed(loc, ordinates)
	if err == nil {
		return nil
	}
	if !isParseError(err) {
		if r.err == nil {
			r.err = err
		}
		return err
	}
	id, _ := r.opts.Objects.ID(loc)
	r.log.Error(err, "skipping feature", "id", id, "ref", uint64(loc))
	r.summary.Skipped++
	return err
}

// isParseError reports whether err only concerns the ordinate text.
func isParseError(err error) bool {
	var malformed *coord.MalformedOrdinateError
	var incomplete *coord.IncompleteCoordinateError
	return errors.As(err, &malformed) || errors.As(err, &incomplete)
}
