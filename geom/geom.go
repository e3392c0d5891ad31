// Package geom holds the in-memory value model for vector geometries: the
// seven shape kinds of the simple-feature world, in 2D and 3D-with-Z variants,
// each optionally tied to a spatial reference system.
//
// Values are built either by application code through the constructors or by
// decoding one wire value; the codec never mutates a value it encodes.
package geom

// Layout describes how many ordinates one coordinate carries.
type Layout int

const (
	NoLayout Layout = iota
	// XY is a 2-ordinate coordinate.
	XY
	// XYZ is a 3-ordinate coordinate. Wire values flagged as M-only or ZM
	// collapse onto this layout: the third ordinate slot takes whatever the
	// stream supplies.
	XYZ
)

// Stride returns the number of ordinates per coordinate.
func (l Layout) Stride() int {
	if l == XYZ {
		return 3
	}

	return 2
}

func (l Layout) String() string {
	switch l {
	case XY:
		return "XY"
	case XYZ:
		return "XYZ"
	default:
		return "NoLayout"
	}
}

// Kind is the base shape code, numbered exactly as the wire format assigns it.
type Kind uint32

const (
	KindPoint Kind = iota + 1
	KindLineString
	KindPolygon
	KindMultiPoint
	KindMultiLineString
	KindMultiPolygon
	KindGeometryCollection
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLineString:
		return "LineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPoint:
		return "MultiPoint"
	case KindMultiLineString:
		return "MultiLineString"
	case KindMultiPolygon:
		return "MultiPolygon"
	case KindGeometryCollection:
		return "GeometryCollection"
	default:
		return "Unknown"
	}
}

// SRID is a Spatial Reference Identifier, an integer naming the coordinate
// reference system of a geometry. The zero value means the reference system
// is unspecified.
type SRID uint32

// Coord is one coordinate tuple. Z is meaningful only under the XYZ layout.
type Coord struct {
	X float64
	Y float64
	Z float64
}

// Geometry is the closed set of shapes the codec understands.
//
// The SRID is a property of the whole value: nested elements inside a
// multi-shape or collection always report SRID 0.
type Geometry interface {
	Kind() Kind
	Layout() Layout
	SRID() SRID
	// EncodedLen reports the exact number of bytes the wire encoding of this
	// value occupies, including the header and the conditional SRID field.
	EncodedLen() int

	setSRID(srid SRID)
}

// SetSRID attaches a reference system identifier to the outermost value and
// returns it for chaining.
func SetSRID(g Geometry, srid SRID) Geometry {
	g.setSRID(srid)

	return g
}

// Point is a single coordinate.
type Point struct {
	layout Layout
	srid   SRID
	coord  Coord
}

func NewPoint(layout Layout, coord Coord) *Point {
	return &Point{layout: layout, coord: coord}
}

func (p *Point) Kind() Kind     { return KindPoint }
func (p *Point) Layout() Layout { return p.layout }
func (p *Point) SRID() SRID     { return p.srid }
func (p *Point) Coord() Coord   { return p.coord }

func (p *Point) SetSRID(srid SRID) *Point {
	p.srid = srid

	return p
}

func (p *Point) setSRID(srid SRID) { p.srid = srid }

// LineString is an ordered coordinate sequence.
type LineString struct {
	layout Layout
	srid   SRID
	coords []Coord
}

func NewLineString(layout Layout, coords []Coord) *LineString {
	return &LineString{layout: layout, coords: coords}
}

func (l *LineString) Kind() Kind      { return KindLineString }
func (l *LineString) Layout() Layout  { return l.layout }
func (l *LineString) SRID() SRID      { return l.srid }
func (l *LineString) Coords() []Coord { return l.coords }
func (l *LineString) NumCoords() int  { return len(l.coords) }

func (l *LineString) SetSRID(srid SRID) *LineString {
	l.srid = srid

	return l
}

func (l *LineString) setSRID(srid SRID) { l.srid = srid }

// Polygon is an ordered sequence of rings, each ring an ordered coordinate
// sequence. Ring closure is not enforced here; that is the server's concern.
type Polygon struct {
	layout Layout
	srid   SRID
	rings  [][]Coord
}

func NewPolygon(layout Layout, rings [][]Coord) *Polygon {
	return &Polygon{layout: layout, rings: rings}
}

func (p *Polygon) Kind() Kind       { return KindPolygon }
func (p *Polygon) Layout() Layout   { return p.layout }
func (p *Polygon) SRID() SRID       { return p.srid }
func (p *Polygon) Rings() [][]Coord { return p.rings }
func (p *Polygon) NumRings() int    { return len(p.rings) }

func (p *Polygon) SetSRID(srid SRID) *Polygon {
	p.srid = srid

	return p
}

func (p *Polygon) setSRID(srid SRID) { p.srid = srid }

// MultiPoint is a coordinate sequence where every element wire-encodes as a
// full mini-point.
type MultiPoint struct {
	layout Layout
	srid   SRID
	coords []Coord
}

func NewMultiPoint(layout Layout, coords []Coord) *MultiPoint {
	return &MultiPoint{layout: layout, coords: coords}
}

func (m *MultiPoint) Kind() Kind      { return KindMultiPoint }
func (m *MultiPoint) Layout() Layout  { return m.layout }
func (m *MultiPoint) SRID() SRID      { return m.srid }
func (m *MultiPoint) Coords() []Coord { return m.coords }
func (m *MultiPoint) NumCoords() int  { return len(m.coords) }

func (m *MultiPoint) SetSRID(srid SRID) *MultiPoint {
	m.srid = srid

	return m
}

func (m *MultiPoint) setSRID(srid SRID) { m.srid = srid }

// MultiLineString is an ordered sequence of line-string bodies.
type MultiLineString struct {
	layout Layout
	srid   SRID
	lines  [][]Coord
}

func NewMultiLineString(layout Layout, lines [][]Coord) *MultiLineString {
	return &MultiLineString{layout: layout, lines: lines}
}

func (m *MultiLineString) Kind() Kind       { return KindMultiLineString }
func (m *MultiLineString) Layout() Layout   { return m.layout }
func (m *MultiLineString) SRID() SRID       { return m.srid }
func (m *MultiLineString) Lines() [][]Coord { return m.lines }
func (m *MultiLineString) NumLines() int    { return len(m.lines) }

func (m *MultiLineString) SetSRID(srid SRID) *MultiLineString {
	m.srid = srid

	return m
}

func (m *MultiLineString) setSRID(srid SRID) { m.srid = srid }

// MultiPolygon is an ordered sequence of polygon bodies.
type MultiPolygon struct {
	layout   Layout
	srid     SRID
	polygons [][][]Coord
}

func NewMultiPolygon(layout Layout, polygons [][][]Coord) *MultiPolygon {
	return &MultiPolygon{layout: layout, polygons: polygons}
}

func (m *MultiPolygon) Kind() Kind           { return KindMultiPolygon }
func (m *MultiPolygon) Layout() Layout       { return m.layout }
func (m *MultiPolygon) SRID() SRID           { return m.srid }
func (m *MultiPolygon) Polygons() [][][]Coord { return m.polygons }
func (m *MultiPolygon) NumPolygons() int     { return len(m.polygons) }

func (m *MultiPolygon) SetSRID(srid SRID) *MultiPolygon {
	m.srid = srid

	return m
}

func (m *MultiPolygon) setSRID(srid SRID) { m.srid = srid }

// GeometryCollection is a heterogeneous, possibly nested sequence of
// geometries. Elements are encoded and decoded with the collection's own
// layout; their SRIDs are always 0.
type GeometryCollection struct {
	layout Layout
	srid   SRID
	geoms  []Geometry
}

func NewGeometryCollection(layout Layout, geoms []Geometry) *GeometryCollection {
	return &GeometryCollection{layout: layout, geoms: geoms}
}

func (c *GeometryCollection) Kind() Kind        { return KindGeometryCollection }
func (c *GeometryCollection) Layout() Layout    { return c.layout }
func (c *GeometryCollection) SRID() SRID        { return c.srid }
func (c *GeometryCollection) Geoms() []Geometry { return c.geoms }
func (c *GeometryCollection) NumGeoms() int     { return len(c.geoms) }

func (c *GeometryCollection) SetSRID(srid SRID) *GeometryCollection {
	c.srid = srid

	return c
}

func (c *GeometryCollection) setSRID(srid SRID) { c.srid = srid }
