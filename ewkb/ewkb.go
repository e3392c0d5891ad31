// Package ewkb translates between geom values and the Extended Well-Known
// Binary wire format used by PostGIS. Decode walks one value depth-first off a
// wire.ReadBuffer; Encode mirrors it onto a wire.WriteBuffer, emitting exactly
// the byte count the value's EncodedLen promises.
//
// The codec holds no state beyond the call stack and is safe to invoke
// concurrently for independent values.
package ewkb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/spatialwire/geomcodec/geom"
	"github.com/spatialwire/geomcodec/utils"
	"github.com/spatialwire/geomcodec/wire"
)

// maxAllocHint caps slice preallocation driven by wire counts, so a hostile
// count cannot reserve memory before the stream proves it has the elements.
const maxAllocHint = 1 << 12

func allocHint(n uint32) int {
	if n > maxAllocHint {
		return maxAllocHint
	}

	return int(n)
}

// Decode reads one geometry value. A malformed or truncated stream fails the
// whole value; there is no partial result.
func Decode(r *wire.ReadBuffer) (geom.Geometry, error) {
	hdr, err := decodeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}

	g, err := decodeBody(r, hdr)
	if err != nil {
		return nil, err
	}

	if hdr.srid != 0 {
		geom.SetSRID(g, hdr.srid)
	}

	return g, nil
}

// decodeBody reads the shape-specific body that follows hdr. Nested elements
// re-enter decodeHeader for their own mini-headers: each mini-header's byte
// order governs the bytes immediately following it, while the enclosing
// layout governs coordinate width throughout the tree. Layout, SRID, and, for
// the homogeneous multi-shapes, the shape code of a mini-header are parsed
// but not consulted.
func decodeBody(r *wire.ReadBuffer, hdr header) (geom.Geometry, error) {
	switch hdr.kind {
	case geom.KindPoint:
		coord, err := readCoord(r, hdr.order, hdr.layout)
		if err != nil {
			return nil, fmt.Errorf("point coordinate: %w", err)
		}

		return geom.NewPoint(hdr.layout, coord), nil

	case geom.KindLineString:
		coords, err := readCoordSeq(r, hdr.order, hdr.layout)
		if err != nil {
			return nil, fmt.Errorf("linestring: %w", err)
		}

		return geom.NewLineString(hdr.layout, coords), nil

	case geom.KindPolygon:
		rings, err := readRings(r, hdr.order, hdr.layout)
		if err != nil {
			return nil, fmt.Errorf("polygon: %w", err)
		}

		return geom.NewPolygon(hdr.layout, rings), nil

	case geom.KindMultiPoint:
		n, err := r.ReadUint32(hdr.order)
		if err != nil {
			return nil, fmt.Errorf("multipoint count: %w", err)
		}

		coords := make([]geom.Coord, 0, allocHint(n))

		for i := uint32(0); i < n; i++ {
			elem, err := decodeHeader(r)
			if err != nil {
				return nil, fmt.Errorf("multipoint element #%d header: %w", i, err)
			}

			coord, err := readCoord(r, elem.order, hdr.layout)
			if err != nil {
				return nil, fmt.Errorf("multipoint element #%d: %w", i, err)
			}

			coords = append(coords, coord)
		}

		return geom.NewMultiPoint(hdr.layout, coords), nil

	case geom.KindMultiLineString:
		n, err := r.ReadUint32(hdr.order)
		if err != nil {
			return nil, fmt.Errorf("multilinestring count: %w", err)
		}

		lines := make([][]geom.Coord, 0, allocHint(n))

		for i := uint32(0); i < n; i++ {
			elem, err := decodeHeader(r)
			if err != nil {
				return nil, fmt.Errorf("multilinestring element #%d header: %w", i, err)
			}

			coords, err := readCoordSeq(r, elem.order, hdr.layout)
			if err != nil {
				return nil, fmt.Errorf("multilinestring element #%d: %w", i, err)
			}

			lines = append(lines, coords)
		}

		return geom.NewMultiLineString(hdr.layout, lines), nil

	case geom.KindMultiPolygon:
		n, err := r.ReadUint32(hdr.order)
		if err != nil {
			return nil, fmt.Errorf("multipolygon count: %w", err)
		}

		polygons := make([][][]geom.Coord, 0, allocHint(n))

		for i := uint32(0); i < n; i++ {
			elem, err := decodeHeader(r)
			if err != nil {
				return nil, fmt.Errorf("multipolygon element #%d header: %w", i, err)
			}

			rings, err := readRings(r, elem.order, hdr.layout)
			if err != nil {
				return nil, fmt.Errorf("multipolygon element #%d: %w", i, err)
			}

			polygons = append(polygons, rings)
		}

		return geom.NewMultiPolygon(hdr.layout, polygons), nil

	case geom.KindGeometryCollection:
		n, err := r.ReadUint32(hdr.order)
		if err != nil {
			return nil, fmt.Errorf("collection count: %w", err)
		}

		geoms := make([]geom.Geometry, 0, allocHint(n))

		for i := uint32(0); i < n; i++ {
			elem, err := decodeHeader(r)
			if err != nil {
				return nil, fmt.Errorf("collection element #%d header: %w", i, err)
			}

			// The element keeps its own byte order and shape code, but the
			// enclosing layout wins over whatever its own flags imply.
			child, err := decodeBody(r, header{order: elem.order, kind: elem.kind, layout: hdr.layout})
			if err != nil {
				return nil, fmt.Errorf("collection element #%d: %w", i, err)
			}

			geoms = append(geoms, child)
		}

		return geom.NewGeometryCollection(hdr.layout, geoms), nil

	default:
		// decodeHeader only admits codes 1..7.
		return nil, fmt.Errorf("shape code %d: %w", hdr.kind, utils.ErrUnrecognizedShapeCode)
	}
}

func readCoord(r *wire.ReadBuffer, order binary.ByteOrder, layout geom.Layout) (geom.Coord, error) {
	var coord geom.Coord

	x, err := r.ReadFloat64(order)
	if err != nil {
		return coord, err
	}

	y, err := r.ReadFloat64(order)
	if err != nil {
		return coord, err
	}

	coord.X, coord.Y = x, y

	if layout == geom.XYZ {
		z, err := r.ReadFloat64(order)
		if err != nil {
			return coord, err
		}

		coord.Z = z
	}

	return coord, nil
}

func readCoordSeq(r *wire.ReadBuffer, order binary.ByteOrder, layout geom.Layout) ([]geom.Coord, error) {
	n, err := r.ReadUint32(order)
	if err != nil {
		return nil, fmt.Errorf("coordinate count: %w", err)
	}

	coords := make([]geom.Coord, 0, allocHint(n))

	for i := uint32(0); i < n; i++ {
		coord, err := readCoord(r, order, layout)
		if err != nil {
			return nil, fmt.Errorf("coordinate #%d: %w", i, err)
		}

		coords = append(coords, coord)
	}

	return coords, nil
}

func readRings(r *wire.ReadBuffer, order binary.ByteOrder, layout geom.Layout) ([][]geom.Coord, error) {
	n, err := r.ReadUint32(order)
	if err != nil {
		return nil, fmt.Errorf("ring count: %w", err)
	}

	rings := make([][]geom.Coord, 0, allocHint(n))

	for i := uint32(0); i < n; i++ {
		ring, err := readCoordSeq(r, order, layout)
		if err != nil {
			return nil, fmt.Errorf("ring #%d: %w", i, err)
		}

		rings = append(rings, ring)
	}

	return rings, nil
}

// Encode appends the wire encoding of g to w. It does not flush; the caller
// owns the flush at the value boundary. The byte count appended is exactly
// g.EncodedLen().
func Encode(g geom.Geometry, w *wire.WriteBuffer) error {
	return encodeValue(g, w, g.SRID())
}

// encodeValue writes one header+body pair. Nested elements recurse with srid
// forced to 0: the SRID is a property of the whole value, not of its parts.
func encodeValue(g geom.Geometry, w *wire.WriteBuffer, srid geom.SRID) error {
	if err := encodeHeader(w, g.Kind(), g.Layout(), srid); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	switch t := g.(type) {
	case *geom.Point:
		return writeCoord(w, t.Layout(), t.Coord())

	case *geom.LineString:
		return writeCoordSeq(w, t.Layout(), t.Coords())

	case *geom.Polygon:
		return writeRings(w, t.Layout(), t.Rings())

	case *geom.MultiPoint:
		if err := w.WriteUint32(uint32(t.NumCoords()), canonicalOrder); err != nil {
			return err
		}

		for _, coord := range t.Coords() {
			if err := encodeHeader(w, geom.KindPoint, t.Layout(), 0); err != nil {
				return err
			}

			if err := writeCoord(w, t.Layout(), coord); err != nil {
				return err
			}
		}

		return nil

	case *geom.MultiLineString:
		if err := w.WriteUint32(uint32(t.NumLines()), canonicalOrder); err != nil {
			return err
		}

		for _, line := range t.Lines() {
			if err := encodeHeader(w, geom.KindLineString, t.Layout(), 0); err != nil {
				return err
			}

			if err := writeCoordSeq(w, t.Layout(), line); err != nil {
				return err
			}
		}

		return nil

	case *geom.MultiPolygon:
		if err := w.WriteUint32(uint32(t.NumPolygons()), canonicalOrder); err != nil {
			return err
		}

		for _, polygon := range t.Polygons() {
			if err := encodeHeader(w, geom.KindPolygon, t.Layout(), 0); err != nil {
				return err
			}

			if err := writeRings(w, t.Layout(), polygon); err != nil {
				return err
			}
		}

		return nil

	case *geom.GeometryCollection:
		if err := w.WriteUint32(uint32(t.NumGeoms()), canonicalOrder); err != nil {
			return err
		}

		for i, child := range t.Geoms() {
			// The child re-derives its own shape code and layout from its tag.
			if err := encodeValue(child, w, 0); err != nil {
				return fmt.Errorf("collection element #%d: %w", i, err)
			}
		}

		return nil

	default:
		return fmt.Errorf("geometry of type %T: %w", g, utils.ErrUnrecognizedShapeCode)
	}
}

func writeCoord(w *wire.WriteBuffer, layout geom.Layout, coord geom.Coord) error {
	if err := w.WriteFloat64(coord.X, canonicalOrder); err != nil {
		return err
	}

	if err := w.WriteFloat64(coord.Y, canonicalOrder); err != nil {
		return err
	}

	if layout == geom.XYZ {
		return w.WriteFloat64(coord.Z, canonicalOrder)
	}

	return nil
}

func writeCoordSeq(w *wire.WriteBuffer, layout geom.Layout, coords []geom.Coord) error {
	if err := w.WriteUint32(uint32(len(coords)), canonicalOrder); err != nil {
		return err
	}

	for _, coord := range coords {
		if err := writeCoord(w, layout, coord); err != nil {
			return err
		}
	}

	return nil
}

func writeRings(w *wire.WriteBuffer, layout geom.Layout, rings [][]geom.Coord) error {
	if err := w.WriteUint32(uint32(len(rings)), canonicalOrder); err != nil {
		return err
	}

	for _, ring := range rings {
		if err := writeCoordSeq(w, layout, ring); err != nil {
			return err
		}
	}

	return nil
}

// EncodedLen reports the exact byte count Encode will append for g. The
// transport needs the total value length before any byte is emitted.
func EncodedLen(g geom.Geometry) int { return g.EncodedLen() }

// Marshal encodes g into a fresh byte slice and checks the result against the
// value's own length accounting.
func Marshal(g geom.Geometry) ([]byte, error) {
	want := g.EncodedLen()

	var buf bytes.Buffer
	buf.Grow(want)

	w := wire.NewWriteBuffer(&buf, wire.DefaultBufferSize)

	if err := Encode(g, w); err != nil {
		return nil, err
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	if buf.Len() != want {
		return nil, fmt.Errorf("encoded %d bytes where length accounting promised %d: %w",
			buf.Len(), want, utils.ErrInvariantViolation)
	}

	return buf.Bytes(), nil
}

// Unmarshal decodes exactly one geometry value from data. Trailing bytes are
// an error: a datum carries one value and nothing else.
func Unmarshal(data []byte) (geom.Geometry, error) {
	r := wire.NewReadBuffer(bytes.NewReader(data), wire.DefaultBufferSize)

	g, err := Decode(r)
	if err != nil {
		return nil, err
	}

	if err := r.EnsureAvailable(1); err != io.EOF {
		return nil, fmt.Errorf("trailing bytes after geometry value: %w", utils.ErrInvariantViolation)
	}

	return g, nil
}
