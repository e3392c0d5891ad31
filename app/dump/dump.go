package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/spatialwire/geomcodec/geom"
)

// WriteTree prints the shape tree of a decoded geometry, one node per line,
// nested collection elements indented under their parent.
func WriteTree(w io.Writer, g geom.Geometry, maxCoords int) {
	writeNode(w, g, 0, maxCoords)
}

func writeNode(w io.Writer, g geom.Geometry, depth, maxCoords int) {
	head := fmt.Sprintf("%s%s[%s]", strings.Repeat("  ", depth), g.Kind(), g.Layout())
	if g.SRID() != 0 {
		head += fmt.Sprintf(" srid=%d", g.SRID())
	}

	switch t := g.(type) {
	case *geom.Point:
		fmt.Fprintf(w, "%s %s\n", head, formatCoord(t.Layout(), t.Coord()))
	case *geom.LineString:
		fmt.Fprintf(w, "%s n=%d %s\n", head, t.NumCoords(), formatCoords(t.Layout(), t.Coords(), maxCoords))
	case *geom.Polygon:
		fmt.Fprintf(w, "%s rings=%d\n", head, t.NumRings())

		for _, ring := range t.Rings() {
			fmt.Fprintf(w, "%s  ring n=%d %s\n", strings.Repeat("  ", depth), len(ring),
				formatCoords(t.Layout(), ring, maxCoords))
		}
	case *geom.MultiPoint:
		fmt.Fprintf(w, "%s n=%d %s\n", head, t.NumCoords(), formatCoords(t.Layout(), t.Coords(), maxCoords))
	case *geom.MultiLineString:
		fmt.Fprintf(w, "%s n=%d\n", head, t.NumLines())

		for _, line := range t.Lines() {
			fmt.Fprintf(w, "%s  line n=%d %s\n", strings.Repeat("  ", depth), len(line),
				formatCoords(t.Layout(), line, maxCoords))
		}
	case *geom.MultiPolygon:
		fmt.Fprintf(w, "%s n=%d\n", head, t.NumPolygons())

		for _, polygon := range t.Polygons() {
			fmt.Fprintf(w, "%s  polygon rings=%d\n", strings.Repeat("  ", depth), len(polygon))

			for _, ring := range polygon {
				fmt.Fprintf(w, "%s    ring n=%d %s\n", strings.Repeat("  ", depth), len(ring),
					formatCoords(t.Layout(), ring, maxCoords))
			}
		}
	case *geom.GeometryCollection:
		fmt.Fprintf(w, "%s n=%d\n", head, t.NumGeoms())

		for _, child := range t.Geoms() {
			writeNode(w, child, depth+1, maxCoords)
		}
	}
}

func formatCoord(layout geom.Layout, coord geom.Coord) string {
	if layout == geom.XYZ {
		return fmt.Sprintf("(%g %g %g)", coord.X, coord.Y, coord.Z)
	}

	return fmt.Sprintf("(%g %g)", coord.X, coord.Y)
}

func formatCoords(layout geom.Layout, coords []geom.Coord, maxCoords int) string {
	var sb strings.Builder

	for i, coord := range coords {
		if maxCoords > 0 && i == maxCoords {
			fmt.Fprintf(&sb, " ...%d more", len(coords)-maxCoords)
			break
		}

		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(formatCoord(layout, coord))
	}

	return sb.String()
}
