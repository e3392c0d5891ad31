package scan

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spatialwire/geomcodec/app/dump"
	"github.com/spatialwire/geomcodec/codec"
	"github.com/spatialwire/geomcodec/ewkb"
	"github.com/spatialwire/geomcodec/geom"
	"github.com/spatialwire/geomcodec/utils"
)

func run(cmd *cobra.Command, args []string) error {
	logger, err := utils.NewDevelopmentLogger()
	if err != nil {
		return fmt.Errorf("new logger: %w", err)
	}

	dsn, err := cmd.Flags().GetString(dsnFlag)
	if err != nil {
		return fmt.Errorf("get flag '%v': %w", dsnFlag, err)
	}

	maxCoords, err := cmd.Flags().GetInt(maxCoordsFlag)
	if err != nil {
		return fmt.Errorf("get flag '%v': %w", maxCoordsFlag, err)
	}

	ctx := context.Background()

	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse connection config: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, connCfg)
	if err != nil {
		return fmt.Errorf("open connection: %w", err)
	}

	defer func() {
		if err := conn.Close(ctx); err != nil {
			logger.Error("close connection", zap.Error(err))
		}
	}()

	if err := codec.RegisterFromConn(ctx, conn); err != nil {
		return fmt.Errorf("register geometry codec: %w", err)
	}

	return dumpQuery(ctx, logger, conn, args[0], maxCoords)
}

func dumpQuery(ctx context.Context, logger *zap.Logger, conn *pgx.Conn, query string, maxCoords int) error {
	logger.Debug("execute SQL query", zap.String("query", query))

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	defer rows.Close()

	rowIx := 0

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return fmt.Errorf("row #%d values: %w", rowIx, err)
		}

		for colIx, value := range values {
			g, ok := value.(geom.Geometry)
			if !ok {
				logger.Debug("skip non-geometry column",
					zap.Int("row", rowIx),
					zap.Int("column", colIx),
					zap.String("type", fmt.Sprintf("%T", value)))

				continue
			}

			if err := renderValue(g, maxCoords); err != nil {
				return fmt.Errorf("row #%d column #%d: %w", rowIx, colIx, err)
			}
		}

		rowIx++
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}

	logger.Info("scan finished", zap.Int("rows", rowIx))

	return nil
}

func renderValue(g geom.Geometry, maxCoords int) error {
	switch format {
	case formatHex:
		data, err := ewkb.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal geometry: %w", err)
		}

		fmt.Printf("%X\n", data)
	default:
		dump.WriteTree(os.Stdout, g, maxCoords)
	}

	return nil
}
