package ewkb

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/spatialwire/geomcodec/geom"
	"github.com/spatialwire/geomcodec/utils"
	"github.com/spatialwire/geomcodec/wire"
)

var geomCmp = cmp.Options{
	cmp.AllowUnexported(
		geom.Point{},
		geom.LineString{},
		geom.Polygon{},
		geom.MultiPoint{},
		geom.MultiLineString{},
		geom.MultiPolygon{},
		geom.GeometryCollection{},
	),
	cmpopts.EquateEmpty(),
}

func requireGeomEqual(t *testing.T, expected, actual geom.Geometry) {
	t.Helper()

	if diff := cmp.Diff(expected, actual, geomCmp); diff != "" {
		t.Fatalf("geometry mismatch (-expected +actual):\n%s", diff)
	}
}

func appendUint32(buf []byte, order binary.AppendByteOrder, v uint32) []byte {
	return order.AppendUint32(buf, v)
}

func appendFloat64(buf []byte, order binary.AppendByteOrder, f float64) []byte {
	return order.AppendUint64(buf, math.Float64bits(f))
}

func TestPointEncoding(t *testing.T) {
	data, err := Marshal(geom.NewPoint(geom.XY, geom.Coord{X: 1, Y: 2}))
	require.NoError(t, err)
	require.Len(t, data, 21)

	var expected []byte
	expected = append(expected, 0x00)
	expected = appendUint32(expected, binary.BigEndian, 1)
	expected = appendFloat64(expected, binary.BigEndian, 1)
	expected = appendFloat64(expected, binary.BigEndian, 2)

	require.Equal(t, expected, data)
}

func TestPointEncodingWithSRID(t *testing.T) {
	data, err := Marshal(geom.NewPoint(geom.XY, geom.Coord{X: 1, Y: 2}).SetSRID(4326))
	require.NoError(t, err)
	require.Len(t, data, 25)

	var expected []byte
	expected = append(expected, 0x00)
	expected = appendUint32(expected, binary.BigEndian, 1|sridFlag)
	expected = appendUint32(expected, binary.BigEndian, 4326)
	expected = appendFloat64(expected, binary.BigEndian, 1)
	expected = appendFloat64(expected, binary.BigEndian, 2)

	require.Equal(t, expected, data)
}

func TestMultiPointEncoding(t *testing.T) {
	data, err := Marshal(geom.NewMultiPoint(geom.XY, []geom.Coord{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
	}))
	require.NoError(t, err)
	require.Len(t, data, 51)

	var expected []byte
	expected = append(expected, 0x00)
	expected = appendUint32(expected, binary.BigEndian, 4)
	expected = appendUint32(expected, binary.BigEndian, 2)

	// Each element carries a full mini-point header.
	for _, coord := range []geom.Coord{{X: 0, Y: 0}, {X: 1, Y: 1}} {
		expected = append(expected, 0x00)
		expected = appendUint32(expected, binary.BigEndian, 1)
		expected = appendFloat64(expected, binary.BigEndian, coord.X)
		expected = appendFloat64(expected, binary.BigEndian, coord.Y)
	}

	require.Equal(t, expected, data)
}

func roundTripCases() []geom.Geometry {
	ring := func() []geom.Coord {
		return []geom.Coord{
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 4, Z: 1},
			{X: 4, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: 1},
		}
	}

	var cases []geom.Geometry

	for _, layout := range []geom.Layout{geom.XY, geom.XYZ} {
		cases = append(cases,
			geom.NewPoint(layout, geom.Coord{X: 1.5, Y: -2.25, Z: 3.125}),
			geom.NewLineString(layout, []geom.Coord{
				{X: 0, Y: 0, Z: 0},
				{X: 1, Y: 1, Z: 1},
				{X: 2, Y: 4, Z: 8},
			}),
			geom.NewLineString(layout, nil),
			geom.NewPolygon(layout, [][]geom.Coord{ring(), ring()}),
			geom.NewMultiPoint(layout, []geom.Coord{
				{X: -1, Y: -1, Z: -1},
				{X: 7, Y: 8, Z: 9},
			}),
			geom.NewMultiLineString(layout, [][]geom.Coord{
				{{X: 0, Y: 0}, {X: 5, Y: 5, Z: 5}},
				{{X: 1, Y: 2, Z: 3}},
			}),
			geom.NewMultiPolygon(layout, [][][]geom.Coord{
				{ring()},
				{ring(), ring()},
			}),
			geom.NewGeometryCollection(layout, []geom.Geometry{
				geom.NewPoint(layout, geom.Coord{X: 1, Y: 2, Z: 3}),
				geom.NewLineString(layout, []geom.Coord{{X: 0, Y: 0}, {X: 1, Y: 1}}),
				geom.NewGeometryCollection(layout, []geom.Geometry{
					geom.NewPoint(layout, geom.Coord{X: 9, Y: 9, Z: 9}),
				}),
			}),
		)
	}

	return cases
}

func zeroUnusedOrdinates(g geom.Geometry) geom.Geometry {
	// An XY value never carries its Z ordinates over the wire, so the decoded
	// tree has zero Z slots. Rebuild the expectation accordingly.
	if g.Layout() == geom.XYZ {
		return g
	}

	drop := func(coords []geom.Coord) []geom.Coord {
		out := make([]geom.Coord, len(coords))
		for i, c := range coords {
			out[i] = geom.Coord{X: c.X, Y: c.Y}
		}

		return out
	}

	dropRings := func(rings [][]geom.Coord) [][]geom.Coord {
		out := make([][]geom.Coord, len(rings))
		for i, ring := range rings {
			out[i] = drop(ring)
		}

		return out
	}

	switch t := g.(type) {
	case *geom.Point:
		c := t.Coord()
		return geom.NewPoint(geom.XY, geom.Coord{X: c.X, Y: c.Y}).SetSRID(t.SRID())
	case *geom.LineString:
		return geom.NewLineString(geom.XY, drop(t.Coords())).SetSRID(t.SRID())
	case *geom.Polygon:
		return geom.NewPolygon(geom.XY, dropRings(t.Rings())).SetSRID(t.SRID())
	case *geom.MultiPoint:
		return geom.NewMultiPoint(geom.XY, drop(t.Coords())).SetSRID(t.SRID())
	case *geom.MultiLineString:
		return geom.NewMultiLineString(geom.XY, dropRings(t.Lines())).SetSRID(t.SRID())
	case *geom.MultiPolygon:
		polygons := make([][][]geom.Coord, t.NumPolygons())
		for i, polygon := range t.Polygons() {
			polygons[i] = dropRings(polygon)
		}

		return geom.NewMultiPolygon(geom.XY, polygons).SetSRID(t.SRID())
	case *geom.GeometryCollection:
		geoms := make([]geom.Geometry, t.NumGeoms())
		for i, child := range t.Geoms() {
			geoms[i] = zeroUnusedOrdinates(child)
		}

		return geom.NewGeometryCollection(geom.XY, geoms).SetSRID(t.SRID())
	default:
		return g
	}
}

func TestRoundTrip(t *testing.T) {
	for _, original := range roundTripCases() {
		for _, srid := range []geom.SRID{0, 4326} {
			original := original
			srid := srid

			t.Run(original.Kind().String()+"/"+original.Layout().String(), func(t *testing.T) {
				geom.SetSRID(original, srid)

				data, err := Marshal(original)
				require.NoError(t, err)
				require.Equal(t, original.EncodedLen(), len(data))

				decoded, err := Unmarshal(data)
				require.NoError(t, err)

				requireGeomEqual(t, zeroUnusedOrdinates(original), decoded)
			})
		}
	}
}

func TestCollectionRoundTripZeroesNestedSRID(t *testing.T) {
	inner := geom.NewPoint(geom.XY, geom.Coord{X: 1, Y: 2}).SetSRID(999)
	original := geom.NewGeometryCollection(geom.XY, []geom.Geometry{
		inner,
		geom.NewLineString(geom.XY, []geom.Coord{{X: 0, Y: 0}, {X: 3, Y: 4}}),
		geom.NewGeometryCollection(geom.XY, []geom.Geometry{
			geom.NewPoint(geom.XY, geom.Coord{X: 5, Y: 6}),
		}),
	}).SetSRID(4326)

	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	collection := decoded.(*geom.GeometryCollection)
	require.Equal(t, geom.SRID(4326), collection.SRID())
	require.Equal(t, 3, collection.NumGeoms())

	for _, child := range collection.Geoms() {
		require.Equal(t, geom.SRID(0), child.SRID())
	}

	point := collection.Geoms()[0].(*geom.Point)
	require.Equal(t, geom.Coord{X: 1, Y: 2}, point.Coord())
}

func TestUnrecognizedShapeCode(t *testing.T) {
	for _, word := range []uint32{0, 8} {
		var data []byte
		data = append(data, 0x00)
		data = appendUint32(data, binary.BigEndian, word)

		_, err := Unmarshal(data)
		require.ErrorIs(t, err, utils.ErrUnrecognizedShapeCode)
	}
}

func TestUnrecognizedShapeCodeNested(t *testing.T) {
	var data []byte
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindGeometryCollection))
	data = appendUint32(data, binary.BigEndian, 1)
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, 8) // masks to shape code 0

	_, err := Unmarshal(data)
	require.ErrorIs(t, err, utils.ErrUnrecognizedShapeCode)
}

func TestByteOrderHonoredPerMiniHeader(t *testing.T) {
	// Little-endian collection holding one big-endian point.
	var data []byte
	data = append(data, 0x01)
	data = appendUint32(data, binary.LittleEndian, uint32(geom.KindGeometryCollection))
	data = appendUint32(data, binary.LittleEndian, 1)
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindPoint))
	data = appendFloat64(data, binary.BigEndian, 1.5)
	data = appendFloat64(data, binary.BigEndian, 2.5)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewGeometryCollection(geom.XY, []geom.Geometry{
		geom.NewPoint(geom.XY, geom.Coord{X: 1.5, Y: 2.5}),
	}), decoded)
}

func TestMOrdinateReadAsZ(t *testing.T) {
	// M flag alone yields 3-ordinate coordinates; the M value lands in Z.
	var data []byte
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindPoint)|mFlag)
	data = appendFloat64(data, binary.BigEndian, 1)
	data = appendFloat64(data, binary.BigEndian, 2)
	data = appendFloat64(data, binary.BigEndian, 42)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewPoint(geom.XYZ, geom.Coord{X: 1, Y: 2, Z: 42}), decoded)
}

func TestZAndMTogetherStillThreeOrdinates(t *testing.T) {
	var data []byte
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindPoint)|zFlag|mFlag)
	data = appendFloat64(data, binary.BigEndian, 1)
	data = appendFloat64(data, binary.BigEndian, 2)
	data = appendFloat64(data, binary.BigEndian, 3)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewPoint(geom.XYZ, geom.Coord{X: 1, Y: 2, Z: 3}), decoded)
}

func TestEnclosingDimensionalityWins(t *testing.T) {
	// The collection says XYZ; its element's mini-header says XY. The element
	// still decodes with three ordinates per coordinate.
	var data []byte
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindGeometryCollection)|zFlag)
	data = appendUint32(data, binary.BigEndian, 1)
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindPoint))
	data = appendFloat64(data, binary.BigEndian, 1)
	data = appendFloat64(data, binary.BigEndian, 2)
	data = appendFloat64(data, binary.BigEndian, 3)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewGeometryCollection(geom.XYZ, []geom.Geometry{
		geom.NewPoint(geom.XYZ, geom.Coord{X: 1, Y: 2, Z: 3}),
	}), decoded)
}

func TestNestedSRIDConsumedButIgnored(t *testing.T) {
	// A stray SRID field inside a multipoint element mini-header keeps the
	// stream aligned but never reaches the decoded value.
	var data []byte
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindMultiPoint))
	data = appendUint32(data, binary.BigEndian, 1)
	data = append(data, 0x00)
	data = appendUint32(data, binary.BigEndian, uint32(geom.KindPoint)|sridFlag)
	data = appendUint32(data, binary.BigEndian, 31337)
	data = appendFloat64(data, binary.BigEndian, 1)
	data = appendFloat64(data, binary.BigEndian, 2)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewMultiPoint(geom.XY, []geom.Coord{{X: 1, Y: 2}}), decoded)
}

func TestLittleEndianStream(t *testing.T) {
	var data []byte
	data = append(data, 0x01)
	data = appendUint32(data, binary.LittleEndian, uint32(geom.KindLineString))
	data = appendUint32(data, binary.LittleEndian, 2)
	data = appendFloat64(data, binary.LittleEndian, 1)
	data = appendFloat64(data, binary.LittleEndian, 2)
	data = appendFloat64(data, binary.LittleEndian, 3)
	data = appendFloat64(data, binary.LittleEndian, 4)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	requireGeomEqual(t, geom.NewLineString(geom.XY, []geom.Coord{
		{X: 1, Y: 2},
		{X: 3, Y: 4},
	}), decoded)
}

func TestTruncatedStream(t *testing.T) {
	data, err := Marshal(geom.NewPoint(geom.XY, geom.Coord{X: 1, Y: 2}))
	require.NoError(t, err)

	_, err = Unmarshal(data[:len(data)-3])
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestTrailingBytes(t *testing.T) {
	data, err := Marshal(geom.NewPoint(geom.XY, geom.Coord{X: 1, Y: 2}))
	require.NoError(t, err)

	_, err = Unmarshal(append(data, 0x00))
	require.ErrorIs(t, err, utils.ErrInvariantViolation)
}

func TestStreamingThroughSmallBuffers(t *testing.T) {
	coords := make([]geom.Coord, 100)
	for i := range coords {
		coords[i] = geom.Coord{X: float64(i), Y: float64(-i)}
	}

	original := geom.NewLineString(geom.XY, coords).SetSRID(4326)

	var sink bytes.Buffer

	// The value is far larger than the buffer, so the encoder must flush
	// mid-value and the decoder must refill mid-value.
	w := wire.NewWriteBuffer(&sink, 16)
	require.NoError(t, Encode(original, w))
	require.NoError(t, w.Flush())
	require.Equal(t, original.EncodedLen(), w.BytesWritten())

	r := wire.NewReadBuffer(iotest.OneByteReader(bytes.NewReader(sink.Bytes())), 16)

	decoded, err := Decode(r)
	require.NoError(t, err)

	requireGeomEqual(t, original, decoded)
}

func TestEncodedLenMatchesEncode(t *testing.T) {
	for _, g := range roundTripCases() {
		var sink bytes.Buffer

		w := wire.NewWriteBuffer(&sink, wire.DefaultBufferSize)
		require.NoError(t, Encode(g, w))
		require.NoError(t, w.Flush())

		require.Equal(t, EncodedLen(g), sink.Len(), "kind %s layout %s", g.Kind(), g.Layout())
	}
}
