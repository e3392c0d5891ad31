package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// WriteBuffer is a bounded buffer over an io.Writer. Before appending a
// fixed-size field the codec checks for room and flushes first when short, so
// values larger than the buffer stream through it. Errors from the writer
// propagate unchanged.
//
// A WriteBuffer is not safe for concurrent use.
type WriteBuffer struct {
	dst     io.Writer
	buf     []byte
	n       int
	written int
}

func NewWriteBuffer(dst io.Writer, size int) *WriteBuffer {
	if size < minBufferSize {
		size = minBufferSize
	}

	return &WriteBuffer{dst: dst, buf: make([]byte, size)}
}

// SpaceRemaining returns the number of bytes that fit before a flush is due.
func (b *WriteBuffer) SpaceRemaining() int { return len(b.buf) - b.n }

// BytesWritten counts every byte appended since the buffer was created,
// flushed or not.
func (b *WriteBuffer) BytesWritten() int { return b.written }

func (b *WriteBuffer) ensureSpace(n int) error {
	if b.SpaceRemaining() < n {
		return b.Flush()
	}

	return nil
}

func (b *WriteBuffer) WriteByte(c byte) error {
	if err := b.ensureSpace(1); err != nil {
		return err
	}

	b.buf[b.n] = c
	b.n++
	b.written++

	return nil
}

func (b *WriteBuffer) WriteUint32(v uint32, order binary.ByteOrder) error {
	if err := b.ensureSpace(4); err != nil {
		return err
	}

	order.PutUint32(b.buf[b.n:], v)
	b.n += 4
	b.written += 4

	return nil
}

func (b *WriteBuffer) WriteFloat64(f float64, order binary.ByteOrder) error {
	if err := b.ensureSpace(8); err != nil {
		return err
	}

	order.PutUint64(b.buf[b.n:], math.Float64bits(f))
	b.n += 8
	b.written += 8

	return nil
}

// Flush pushes all buffered bytes to the underlying writer.
func (b *WriteBuffer) Flush() error {
	if b.n == 0 {
		return nil
	}

	m, err := b.dst.Write(b.buf[:b.n])
	if err != nil {
		return err
	}

	if m < b.n {
		return io.ErrShortWrite
	}

	b.n = 0

	return nil
}
