// Package wire implements the bounded buffers that sit between the codec and
// the byte stream. The codec never assumes a whole value is resident in
// memory: it asks the read side to make the next fixed-size field available
// and the write side to make room for it, and both sides may block on the
// underlying stream to satisfy that.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// DefaultBufferSize is a reasonable buffer size for network streams.
	DefaultBufferSize = 4096

	// minBufferSize still fits the largest fixed-size field (one 8-byte
	// ordinate) with room to spare.
	minBufferSize = 16
)

// ReadBuffer is a bounded buffer over an io.Reader. Errors from the reader
// propagate unchanged; a stream that ends in the middle of a requested field
// surfaces as io.ErrUnexpectedEOF.
//
// A ReadBuffer is not safe for concurrent use.
type ReadBuffer struct {
	src io.Reader
	buf []byte
	r   int // next byte to hand out
	w   int // end of buffered data
}

func NewReadBuffer(src io.Reader, size int) *ReadBuffer {
	if size < minBufferSize {
		size = minBufferSize
	}

	return &ReadBuffer{src: src, buf: make([]byte, size)}
}

// Buffered returns the number of bytes available without touching the stream.
func (b *ReadBuffer) Buffered() int { return b.w - b.r }

// EnsureAvailable blocks until at least n contiguous bytes are buffered.
// n must not exceed the buffer capacity; fixed-size fields never do.
func (b *ReadBuffer) EnsureAvailable(n int) error {
	if n > len(b.buf) {
		return fmt.Errorf("field of %d bytes exceeds buffer capacity %d", n, len(b.buf))
	}

	for b.w-b.r < n {
		if b.r > 0 {
			copy(b.buf, b.buf[b.r:b.w])
			b.w -= b.r
			b.r = 0
		}

		m, err := b.src.Read(b.buf[b.w:])
		b.w += m

		if b.w-b.r >= n {
			return nil
		}

		if err != nil {
			if err == io.EOF && b.w > b.r {
				err = io.ErrUnexpectedEOF
			}

			return err
		}
	}

	return nil
}

func (b *ReadBuffer) ReadByte() (byte, error) {
	if err := b.EnsureAvailable(1); err != nil {
		return 0, err
	}

	c := b.buf[b.r]
	b.r++

	return c, nil
}

func (b *ReadBuffer) ReadUint32(order binary.ByteOrder) (uint32, error) {
	if err := b.EnsureAvailable(4); err != nil {
		return 0, err
	}

	v := order.Uint32(b.buf[b.r:])
	b.r += 4

	return v, nil
}

func (b *ReadBuffer) ReadFloat64(order binary.ByteOrder) (float64, error) {
	if err := b.EnsureAvailable(8); err != nil {
		return 0, err
	}

	v := math.Float64frombits(order.Uint64(b.buf[b.r:]))
	b.r += 8

	return v, nil
}

// Skip discards n bytes, refilling as many times as needed; unlike
// EnsureAvailable it accepts counts beyond the buffer capacity.
func (b *ReadBuffer) Skip(n int) error {
	for n > 0 {
		if b.Buffered() == 0 {
			if err := b.EnsureAvailable(1); err != nil {
				return err
			}
		}

		m := b.Buffered()
		if m > n {
			m = n
		}

		b.r += m
		n -= m
	}

	return nil
}
