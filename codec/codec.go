// Package codec plugs the EWKB geometry codec into pgx's type map, the
// value-transfer layer that decides which codec handles which column type.
// Binary-format datums carry raw EWKB; text-format datums carry its hex form.
package codec

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spatialwire/geomcodec/ewkb"
	"github.com/spatialwire/geomcodec/geom"
)

var _ pgtype.Codec = GeometryCodec{}

// GeometryCodec translates between geom.Geometry values and EWKB datums.
type GeometryCodec struct{}

func (GeometryCodec) FormatSupported(format int16) bool {
	return format == pgtype.BinaryFormatCode || format == pgtype.TextFormatCode
}

func (GeometryCodec) PreferredFormat() int16 { return pgtype.BinaryFormatCode }

func (GeometryCodec) PlanEncode(m *pgtype.Map, oid uint32, format int16, value any) pgtype.EncodePlan {
	if _, ok := value.(geom.Geometry); !ok {
		return nil
	}

	switch format {
	case pgtype.BinaryFormatCode:
		return encodePlanGeometryBinary{}
	case pgtype.TextFormatCode:
		return encodePlanGeometryText{}
	}

	return nil
}

type encodePlanGeometryBinary struct{}

func (encodePlanGeometryBinary) Encode(value any, buf []byte) ([]byte, error) {
	g := value.(geom.Geometry)

	// Marshal checks the emitted byte count against the value's own length
	// accounting, which is what the transport frames the datum with.
	data, err := ewkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}

	return append(buf, data...), nil
}

type encodePlanGeometryText struct{}

func (encodePlanGeometryText) Encode(value any, buf []byte) ([]byte, error) {
	g := value.(geom.Geometry)

	data, err := ewkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal geometry: %w", err)
	}

	return append(buf, fmt.Sprintf("%X", data)...), nil
}

func (GeometryCodec) PlanScan(m *pgtype.Map, oid uint32, format int16, target any) pgtype.ScanPlan {
	switch target.(type) {
	case *geom.Geometry:
		switch format {
		case pgtype.BinaryFormatCode:
			return scanPlanGeometryBinary{}
		case pgtype.TextFormatCode:
			return scanPlanGeometryText{}
		}
	case *[]byte:
		// Callers that want the undecoded datum get it as-is.
		return scanPlanRawBytes{format: format}
	}

	return nil
}

type scanPlanGeometryBinary struct{}

func (scanPlanGeometryBinary) Scan(src []byte, target any) error {
	p := target.(*geom.Geometry)

	if src == nil {
		*p = nil
		return nil
	}

	g, err := ewkb.Unmarshal(src)
	if err != nil {
		return fmt.Errorf("unmarshal geometry: %w", err)
	}

	*p = g

	return nil
}

type scanPlanGeometryText struct{}

func (scanPlanGeometryText) Scan(src []byte, target any) error {
	p := target.(*geom.Geometry)

	if src == nil {
		*p = nil
		return nil
	}

	data, err := decodeHexDatum(src)
	if err != nil {
		return err
	}

	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("unmarshal geometry: %w", err)
	}

	*p = g

	return nil
}

type scanPlanRawBytes struct {
	format int16
}

func (s scanPlanRawBytes) Scan(src []byte, target any) error {
	p := target.(*[]byte)

	if src == nil {
		*p = nil
		return nil
	}

	if s.format == pgtype.TextFormatCode {
		data, err := decodeHexDatum(src)
		if err != nil {
			return err
		}

		*p = data

		return nil
	}

	// The datum buffer is only valid for the duration of the call.
	*p = append([]byte(nil), src...)

	return nil
}

func decodeHexDatum(src []byte) ([]byte, error) {
	data := make([]byte, hex.DecodedLen(len(src)))

	if _, err := hex.Decode(data, src); err != nil {
		return nil, fmt.Errorf("decode hex datum: %w", err)
	}

	return data, nil
}

func (c GeometryCodec) DecodeDatabaseSQLValue(m *pgtype.Map, oid uint32, format int16, src []byte) (driver.Value, error) {
	if src == nil {
		return nil, nil
	}

	if format == pgtype.TextFormatCode {
		return string(src), nil
	}

	// EWKB hex is the conventional SQL-facing representation.
	return fmt.Sprintf("%X", src), nil
}

func (c GeometryCodec) DecodeValue(m *pgtype.Map, oid uint32, format int16, src []byte) (any, error) {
	if src == nil {
		return nil, nil
	}

	var g geom.Geometry

	plan := c.PlanScan(m, oid, format, &g)
	if plan == nil {
		return nil, fmt.Errorf("unsupported format code %d", format)
	}

	if err := plan.Scan(src, &g); err != nil {
		return nil, err
	}

	return g, nil
}
