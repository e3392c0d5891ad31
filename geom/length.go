package geom

// Wire-format sizes. Every encoded value starts with a 5-byte header (byte
// order selector + type word); an SRID field follows only when the SRID is
// set, and only on the outermost header.
const (
	HeaderLen   = 5
	SRIDLen     = 4
	CountLen    = 4
	OrdinateLen = 8
)

// CoordLen returns the encoded size of one coordinate under the layout.
func CoordLen(layout Layout) int { return layout.Stride() * OrdinateLen }

func headerEncodedLen(srid SRID) int {
	if srid != 0 {
		return HeaderLen + SRIDLen
	}

	return HeaderLen
}

// elementEncodedLen is the size of g when nested inside a multi-shape or
// collection, where its mini-header never carries an SRID field.
func elementEncodedLen(g Geometry) int {
	n := g.EncodedLen()
	if g.SRID() != 0 {
		n -= SRIDLen
	}

	return n
}

func (p *Point) EncodedLen() int {
	return headerEncodedLen(p.srid) + CoordLen(p.layout)
}

func (l *LineString) EncodedLen() int {
	return headerEncodedLen(l.srid) + CountLen + len(l.coords)*CoordLen(l.layout)
}

func (p *Polygon) EncodedLen() int {
	n := headerEncodedLen(p.srid) + CountLen
	for _, ring := range p.rings {
		n += CountLen + len(ring)*CoordLen(p.layout)
	}

	return n
}

func (m *MultiPoint) EncodedLen() int {
	return headerEncodedLen(m.srid) + CountLen + len(m.coords)*(HeaderLen+CoordLen(m.layout))
}

func (m *MultiLineString) EncodedLen() int {
	n := headerEncodedLen(m.srid) + CountLen
	for _, line := range m.lines {
		n += HeaderLen + CountLen + len(line)*CoordLen(m.layout)
	}

	return n
}

func (m *MultiPolygon) EncodedLen() int {
	n := headerEncodedLen(m.srid) + CountLen
	for _, polygon := range m.polygons {
		n += HeaderLen + CountLen
		for _, ring := range polygon {
			n += CountLen + len(ring)*CoordLen(m.layout)
		}
	}

	return n
}

func (c *GeometryCollection) EncodedLen() int {
	n := headerEncodedLen(c.srid) + CountLen
	for _, g := range c.geoms {
		n += elementEncodedLen(g)
	}

	return n
}
