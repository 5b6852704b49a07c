package gmltopo

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/beetlebugorg/gmltopo/internal/coord"
	"github.com/beetlebugorg/gmltopo/internal/defect"
	"github.com/beetlebugorg/gmltopo/internal/source"
	"github.com/beetlebugorg/gmltopo/internal/topology"
)

// ObjectTable maps feature identifiers found in input files to the
// references carried in error parameters.
type ObjectTable = source.ObjectTable

// LoadSummary describes one loaded input file.
type LoadSummary = source.Summary

// Theme is one topology validation run: a graph, its error collector and the
// coordinate parser feeding it.
type Theme struct {
	name string
	id   uuid.UUID
	opts Options
	log  logr.Logger

	errors  *defect.Collector
	topo    *topology.Topology
	builder *topology.Builder
	parser  *coord.Parser
	objects *source.ObjectTable

	features int
}

// NewTheme creates an empty theme.
func NewTheme(name string, opts Options) *Theme {
	id := uuid.New()
	log := opts.Logger.WithName("gmltopo").WithValues("theme", name, "run", id.String())

	errors := defect.NewCollector(name, opts.ErrorLimit)
	topo := topology.New(topology.Options{
		MaxTraversalSteps: opts.MaxTraversalSteps,
		Logger:            log,
	}, errors)
	builder := topology.NewBuilder(topo)

	return &Theme{
		name:    name,
		id:      id,
		opts:    opts,
		log:     log,
		errors:  errors,
		topo:    topo,
		builder: builder,
		parser:  coord.NewParser(builder),
		objects: source.NewObjectTable(),
	}
}

// Name returns the theme name.
func (t *Theme) Name() string { return t.name }

// ID returns the unique id of this run.
func (t *Theme) ID() uuid.UUID { return t.id }

// Objects returns the table of feature identifiers loaded through LoadFile.
func (t *Theme) Objects() *ObjectTable { return t.objects }

// BeginFeature starts a new feature; the next ring is an exterior ring.
func (t *Theme) BeginFeature() {
	t.features++
	t.parser.NextGeometricObject()
}

// BeginInterior starts an interior ring of the current feature.
func (t *Theme) BeginInterior() {
	t.parser.NextInterior()
}

// SetGeometryType selects how the following ordinates are delivered.
func (t *Theme) SetGeometryType(gt GeometryType) {
	t.parser.SetGeometryType(gt)
}

// SetDimension switches between 2D pairs and 3D triples.
func (t *Theme) SetDimension(threeD bool) {
	t.parser.SetDimension(threeD)
}

// Feed adds one ordinate sequence (the content of a gml:posList) of feature
// loc. Consecutive sequences of one ring are joined. A parse error abandons
// the sequence; segments already inserted stay in the graph.
func (t *Theme) Feed(loc Location, ordinates []byte) error {
	return t.parser.Parse(ordinates, loc)
}

// FeedString is Feed for character data.
func (t *Theme) FeedString(loc Location, ordinates string) error {
	return t.parser.ParseString(ordinates, loc)
}

// LoadFile ingests a GML, GeoJSON or shapefile. Feature identifiers are
// recorded in Objects.
func (t *Theme) LoadFile(path string) (LoadSummary, error) {
	summary, err := source.ReadFile(path, t, t.sourceOptions())
	if err != nil {
		return summary, err
	}
	t.log.V(1).Info("loaded input", "path", path, "features", summary.Features, "skipped", summary.Skipped)
	return summary, nil
}

func (t *Theme) sourceOptions() source.Options {
	return source.Options{
		Objects:            t.objects,
		SuppressDuplicates: t.opts.SuppressDuplicates,
		Logger:             t.log,
	}
}

// ValidateBoundary returns a check feeding declared boundaries against the
// edges built so far. The check shares the theme's graph and errors but has
// its own coordinate parser.
func (t *Theme) ValidateBoundary(strategy Strategy) *BoundaryCheck {
	v := topology.NewEdgeValidator(t.topo, strategy)
	return &BoundaryCheck{
		theme:     t,
		validator: v,
		parser:    coord.NewParser(v),
	}
}

// DetectHoles reports interior rings that enclose no object.
func (t *Theme) DetectHoles() (int, error) {
	return t.topo.DetectHoles()
}

// DetectFreeStandingSurfaces reports surfaces not connected to the theme's
// main surface, naming one object each.
func (t *Theme) DetectFreeStandingSurfaces() (int, error) {
	return t.topo.DetectFreeStandingSurfaces()
}

// DetectFreeStandingSurfacesWithAllObjects reports surfaces not connected to
// the theme's main surface, naming every object along their boundary.
func (t *Theme) DetectFreeStandingSurfacesWithAllObjects() (int, error) {
	return t.topo.DetectFreeStandingSurfacesWithAllObjects()
}

// DetectUnenclosedBoundaries reports border edges that no enclosing boundary
// ran along.
func (t *Theme) DetectUnenclosedBoundaries() (int, error) {
	return t.topo.DetectUnenclosedBoundaries()
}

// Detection selects detectors for Detect.
type Detection uint8

const (
	Holes Detection = 1 << iota
	UnenclosedBoundaries
	FreeStandingSurfaces
	FreeStandingSurfacesWithAllObjects
)

var detectionNames = []struct {
	flag Detection
	name string
}{
	{Holes, "holes"},
	{UnenclosedBoundaries, "unenclosed_boundaries"},
	{FreeStandingSurfaces, "free_standing_surfaces"},
	{FreeStandingSurfacesWithAllObjects, "free_standing_surfaces_with_all_objects"},
}

// ParseDetection combines detector names such as "holes" or
// "unenclosed_boundaries" into a Detection.
func ParseDetection(names ...string) (Detection, error) {
	var d Detection
next:
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, dn := range detectionNames {
			if dn.name == name {
				d |= dn.flag
				continue next
			}
		}
		return d, fmt.Errorf("unknown detector: %q", name)
	}
	return d, nil
}

// String lists the selected detector names, separated by commas.
func (d Detection) String() string {
	var names []string
	for _, dn := range detectionNames {
		if d&dn.flag != 0 {
			names = append(names, dn.name)
		}
	}
	return strings.Join(names, ",")
}

// Detect runs the selected detectors in declaration order. Selecting
// UnenclosedBoundaries together with a free-standing detector fails with a
// *StateError after the unenclosed boundaries were reported.
func (t *Theme) Detect(d Detection) error {
	steps := []struct {
		flag Detection
		name string
		run  func() (int, error)
	}{
		{Holes, "holes", t.DetectHoles},
		{UnenclosedBoundaries, "unenclosed boundaries", t.DetectUnenclosedBoundaries},
		{FreeStandingSurfaces, "free-standing surfaces", t.DetectFreeStandingSurfaces},
		{FreeStandingSurfacesWithAllObjects, "free-standing surfaces with all objects", t.DetectFreeStandingSurfacesWithAllObjects},
	}
	for _, s := range steps {
		if d&s.flag == 0 {
			continue
		}
		n, err := s.run()
		if err != nil {
			return err
		}
		t.log.V(1).Info("detector finished", "detector", s.name, "found", n)
	}
	return nil
}

// Errors returns the stored errors in the order they were found. The slice
// must not be modified.
func (t *Theme) Errors() []Error {
	return t.errors.Records()
}

// ErrorCount returns how many errors of kind were found, including errors
// not stored because of Options.ErrorLimit.
func (t *Theme) ErrorCount(kind ErrorKind) int {
	return t.errors.Count(kind)
}

// Drain returns the stored errors and clears them from the theme.
func (t *Theme) Drain() []Error {
	return t.errors.Drain()
}

// ErrorsInBounds returns the stored errors located within b.
func (t *Theme) ErrorsInBounds(b Bounds) []Error {
	var result []Error
	for _, e := range t.errors.Records() {
		if b.Contains(e.X, e.Y) {
			result = append(result, e)
		}
	}
	return result
}

// NodesInBounds returns the positions of the graph nodes within b.
func (t *Theme) NodesInBounds(b Bounds) [][2]float64 {
	if b.IsEmpty() {
		return nil
	}
	ids := t.topo.NodesInBounds(b.MinX, b.MinY, b.MaxX, b.MaxY)
	result := make([][2]float64, len(ids))
	for i, n := range ids {
		x, y := t.topo.XY(n)
		result[i] = [2]float64{x, y}
	}
	return result
}

// Stats summarizes a theme.
type Stats struct {
	Name     string
	Features int // BeginFeature calls
	Points   int // coordinates delivered to the graph
	Nodes    int
	Edges    int // half-edges, twins included
	Errors   int // errors found, stored or not

	// Misoriented counts closed rings wound against their role: clockwise
	// exterior or counter-clockwise interior rings. Their object lies on the
	// right of the ring's edges, so holes and free-standing surfaces of
	// those objects are not detected reliably.
	Misoriented int
	Dropped  int // errors not stored because of Options.ErrorLimit
	Counts   map[ErrorKind]int
}

// Stats returns the current theme statistics.
func (t *Theme) Stats() Stats {
	return Stats{
		Name:     t.name,
		Features: t.features,
		Points:   t.builder.Points(),
		Nodes:    t.topo.NodeCount(),
		Edges:    t.topo.EdgeCount(),
		Errors:   t.errors.Total(),
		Dropped:  t.errors.Dropped(),
		Counts:   t.errors.Counts(),

		Misoriented: t.builder.Misoriented(),
	}
}

// BoundaryCheck feeds declared boundaries against a theme's graph.
type BoundaryCheck struct {
	theme     *Theme
	validator *topology.EdgeValidator
	parser    *coord.Parser
}

// BeginFeature starts a new declared boundary.
func (c *BoundaryCheck) BeginFeature() { c.parser.NextGeometricObject() }

// BeginInterior starts an interior ring of the declared boundary.
func (c *BoundaryCheck) BeginInterior() { c.parser.NextInterior() }

// SetGeometryType selects how the following ordinates are delivered.
func (c *BoundaryCheck) SetGeometryType(gt GeometryType) { c.parser.SetGeometryType(gt) }

// SetDimension switches between 2D pairs and 3D triples.
func (c *BoundaryCheck) SetDimension(threeD bool) { c.parser.SetDimension(threeD) }

// Feed checks one ordinate sequence of the declared boundary loc.
func (c *BoundaryCheck) Feed(loc Location, ordinates []byte) error {
	return c.parser.Parse(ordinates, loc)
}

// FeedString is Feed for character data.
func (c *BoundaryCheck) FeedString(loc Location, ordinates string) error {
	return c.parser.ParseString(ordinates, loc)
}

// LoadFile checks every boundary of a GML, GeoJSON or shapefile.
func (c *BoundaryCheck) LoadFile(path string) (LoadSummary, error) {
	return source.ReadFile(path, c, c.theme.sourceOptions())
}

// Report checks that expected lies on side of the last edge matched since
// BeginFeature, emitting an edge error when it does not.
func (c *BoundaryCheck) Report(side Side, expected ObjectID) Result {
	return c.validator.Report(side, expected)
}

// Matched returns how many consecutive point pairs were found as edges.
func (c *BoundaryCheck) Matched() int { return c.validator.Matched() }
