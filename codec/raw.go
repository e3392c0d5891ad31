package codec

import (
	"database/sql/driver"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spatialwire/geomcodec/utils"
)

var _ pgtype.Codec = RawCodec{}

// RawCodec serves callers that explicitly want the undecoded EWKB datum and
// hands everything else to a delegate codec. Registering it without a
// delegate is a setup error: any structured decode then fails with
// utils.ErrMisconfiguredFallback.
type RawCodec struct {
	// Delegate handles targets other than []byte, typically GeometryCodec{}.
	Delegate pgtype.Codec
}

func (c RawCodec) FormatSupported(format int16) bool {
	return format == pgtype.BinaryFormatCode || format == pgtype.TextFormatCode
}

func (c RawCodec) PreferredFormat() int16 { return pgtype.BinaryFormatCode }

func (c RawCodec) PlanEncode(m *pgtype.Map, oid uint32, format int16, value any) pgtype.EncodePlan {
	if _, ok := value.([]byte); ok {
		return encodePlanRawPassthrough{}
	}

	if c.Delegate == nil {
		return nil
	}

	return c.Delegate.PlanEncode(m, oid, format, value)
}

type encodePlanRawPassthrough struct{}

func (encodePlanRawPassthrough) Encode(value any, buf []byte) ([]byte, error) {
	return append(buf, value.([]byte)...), nil
}

func (c RawCodec) PlanScan(m *pgtype.Map, oid uint32, format int16, target any) pgtype.ScanPlan {
	if _, ok := target.(*[]byte); ok {
		return scanPlanRawBytes{format: format}
	}

	if c.Delegate == nil {
		return errScanPlan{err: fmt.Errorf("scan into %T: %w", target, utils.ErrMisconfiguredFallback)}
	}

	return c.Delegate.PlanScan(m, oid, format, target)
}

type errScanPlan struct {
	err error
}

func (p errScanPlan) Scan([]byte, any) error { return p.err }

func (c RawCodec) DecodeDatabaseSQLValue(m *pgtype.Map, oid uint32, format int16, src []byte) (driver.Value, error) {
	if c.Delegate == nil {
		return nil, utils.ErrMisconfiguredFallback
	}

	return c.Delegate.DecodeDatabaseSQLValue(m, oid, format, src)
}

func (c RawCodec) DecodeValue(m *pgtype.Map, oid uint32, format int16, src []byte) (any, error) {
	if c.Delegate == nil {
		return nil, utils.ErrMisconfiguredFallback
	}

	return c.Delegate.DecodeValue(m, oid, format, src)
}
