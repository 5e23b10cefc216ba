package cmd

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder builds one payload. The zero value is ready after Reset.
type Encoder struct {
	buf []byte
}

// Reset starts a new payload carrying the sequence token seq.
func (e *Encoder) Reset(seq uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf[:0], seq)
	return e
}

// Bytes returns the encoded payload. It aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the payload length so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) U8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.U8(1)
	}
	return e.U8(0)
}

func (e *Encoder) U32(v uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) I32(v int32) *Encoder { return e.U32(uint32(v)) }

func (e *Encoder) F32(v float32) *Encoder { return e.U32(math.Float32bits(v)) }

// Blob appends a length-prefixed byte slice.
func (e *Encoder) Blob(p []byte) *Encoder {
	e.U32(uint32(len(p)))
	e.buf = append(e.buf, p...)
	return e
}

// Str appends a length-prefixed string.
func (e *Encoder) Str(s string) *Encoder {
	e.U32(uint32(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// Decoder reads a payload written by Encoder. Reading past the end is a
// corrupt record and panics.
type Decoder struct {
	p   []byte
	off int
}

// NewDecoder returns a decoder over payload and the leading sequence token.
func NewDecoder(payload []byte) (*Decoder, uint32) {
	d := &Decoder{p: payload}
	return d, d.U32()
}

func (d *Decoder) take(n int) []byte {
	if n < 0 || d.off+n > len(d.p) {
		panic(fmt.Sprintf("cmd: truncated payload: need %d bytes at %d of %d", n, d.off, len(d.p)))
	}
	b := d.p[d.off : d.off+n]
	d.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.p) - d.off }

func (d *Decoder) U8() uint8 { return d.take(1)[0] }

func (d *Decoder) Bool() bool { return d.U8() != 0 }

func (d *Decoder) U32() uint32 { return binary.LittleEndian.Uint32(d.take(4)) }

func (d *Decoder) I32() int32 { return int32(d.U32()) }

func (d *Decoder) F32() float32 { return math.Float32frombits(d.U32()) }

// Blob returns a length-prefixed byte slice. It aliases the payload.
func (d *Decoder) Blob() []byte { return d.take(int(d.U32())) }

func (d *Decoder) Str() string { return string(d.Blob()) }
