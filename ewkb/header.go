package ewkb

import (
	"encoding/binary"
	"fmt"

	"github.com/spatialwire/geomcodec/geom"
	"github.com/spatialwire/geomcodec/utils"
	"github.com/spatialwire/geomcodec/wire"
)

// Wire layout of the fixed prefix:
//
//	Header     := ByteOrder(1) TypeWord(4) [SRID(4)]
//	ByteOrder  := 0 (big-endian) | 1 (little-endian)
//	TypeWord   := bits[0..2] = ShapeCode(1..7); bit 29 = HasSRID; bit 30 = HasM; bit 31 = HasZ
//
// The same prefix, without the SRID field, precedes every element of a
// multi-shape or collection.
const (
	orderBig    = 0x00
	orderLittle = 0x01

	zFlag    = 0x80000000
	mFlag    = 0x40000000
	sridFlag = 0x20000000

	kindMask = 0x07
)

// Encoded values are always written in canonical big-endian form, whatever
// order the value was originally decoded with.
var canonicalOrder binary.ByteOrder = binary.BigEndian

// header is the decoded prefix of one geometry value or of one nested element.
// The byte order governs every multi-byte field that follows, until a nested
// mini-header supplies its own selector for its own fields.
type header struct {
	order  binary.ByteOrder
	kind   geom.Kind
	layout geom.Layout
	srid   geom.SRID
}

func byteOrderFromSelector(sel byte) (binary.ByteOrder, error) {
	switch sel {
	case orderBig:
		return binary.BigEndian, nil
	case orderLittle:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("selector 0x%02x: %w", sel, utils.ErrUnrecognizedByteOrder)
	}
}

// decodeHeader consumes one header from the stream. It is used both for the
// outermost value and for the mini-headers preceding nested elements; in the
// nested case the caller ignores the layout and SRID it reports, but the SRID
// field, if flagged, is still consumed here so the stream stays aligned.
//
// The M flag alone promotes the layout to XYZ: the coordinate model has no
// separate M slot, so an M ordinate is read into the Z slot.
func decodeHeader(r *wire.ReadBuffer) (header, error) {
	sel, err := r.ReadByte()
	if err != nil {
		return header{}, err
	}

	order, err := byteOrderFromSelector(sel)
	if err != nil {
		return header{}, err
	}

	word, err := r.ReadUint32(order)
	if err != nil {
		return header{}, err
	}

	code := word & kindMask
	if code == 0 {
		return header{}, fmt.Errorf("type word 0x%08x: %w", word, utils.ErrUnrecognizedShapeCode)
	}

	hdr := header{
		order:  order,
		kind:   geom.Kind(code),
		layout: geom.XY,
	}

	if word&(zFlag|mFlag) != 0 {
		hdr.layout = geom.XYZ
	}

	if word&sridFlag != 0 {
		srid, err := r.ReadUint32(order)
		if err != nil {
			return header{}, err
		}

		hdr.srid = geom.SRID(srid)
	}

	return hdr, nil
}

// encodeHeader writes a canonical header. The SRID bit and field appear only
// when srid is set; nested elements are always written with srid 0.
func encodeHeader(w *wire.WriteBuffer, kind geom.Kind, layout geom.Layout, srid geom.SRID) error {
	if err := w.WriteByte(orderBig); err != nil {
		return err
	}

	word := uint32(kind)
	if layout == geom.XYZ {
		word |= zFlag
	}

	if srid != 0 {
		word |= sridFlag
	}

	if err := w.WriteUint32(word, canonicalOrder); err != nil {
		return err
	}

	if srid != 0 {
		return w.WriteUint32(uint32(srid), canonicalOrder)
	}

	return nil
}
