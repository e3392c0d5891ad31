package codec

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Register installs the geometry codec for one type OID.
func Register(m *pgtype.Map, name string, oid uint32) {
	m.RegisterType(&pgtype.Type{Name: name, OID: oid, Codec: GeometryCodec{}})
}

// RegisterRaw installs the raw-bytes fallback for one type OID, delegating
// structured decodes to the geometry codec.
func RegisterRaw(m *pgtype.Map, name string, oid uint32) {
	m.RegisterType(&pgtype.Type{Name: name, OID: oid, Codec: RawCodec{Delegate: GeometryCodec{}}})
}

// RegisterFromConn discovers the dynamically assigned PostGIS type OIDs on
// the connected server and registers the geometry codec for them on the
// connection's type map. The geometry type must exist; geography is optional.
func RegisterFromConn(ctx context.Context, conn *pgx.Conn) error {
	rows, err := conn.Query(ctx,
		"select typname, oid from pg_type where typname = any($1)",
		[]string{"geometry", "geography"})
	if err != nil {
		return fmt.Errorf("query pg_type: %w", err)
	}

	oids := make(map[string]uint32)

	var (
		name string
		oid  uint32
	)

	if _, err := pgx.ForEachRow(rows, []any{&name, &oid}, func() error {
		oids[name] = oid

		return nil
	}); err != nil {
		return fmt.Errorf("scan pg_type rows: %w", err)
	}

	if _, ok := oids["geometry"]; !ok {
		return fmt.Errorf("type 'geometry' is not known to the server; is PostGIS installed?")
	}

	for name, oid := range oids {
		Register(conn.TypeMap(), name, oid)
	}

	return nil
}
