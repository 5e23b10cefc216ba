// Package fifo implements the single-producer/single-consumer byte ring that
// carries command records between the API goroutine and the render goroutine.
//
// A record is an 8-byte header (opcode, payload length) followed by the
// payload padded to 4 bytes. Records never straddle the end of the ring:
// when the tail cannot hold the next record the writer leaves a wrap
// marker (or, when fewer than 8 bytes remain, nothing) and restarts at 0.
//
// The read and write cursors are published with atomics; the payload bytes
// written before a cursor store are visible to the goroutine that loads it.
// The wake channels only carry "something changed" hints and never guard
// data.
package fifo

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"
)

const (
	headerSize = 8
	align      = 4
	minSize    = 64

	// WrapOp is reserved for the wrap marker and must not be enqueued.
	WrapOp = ^uint32(0)
)

// Fifo is a lockless SPSC ring. Exactly one goroutine may call the producer
// methods (Reserve, Commit, Enqueue) and exactly one goroutine may call the
// consumer methods (Get, Next).
type Fifo struct {
	buf  []byte
	size int

	// producer-owned
	wpos    int
	pending int // payload size of the outstanding reservation, 0 if none

	// consumer-owned
	rpos int
	cur  int // record size of the record returned by the last Get

	put atomic.Int64
	get atomic.Int64

	dataReady  chan struct{}
	spaceReady chan struct{}
}

// New returns a ring of at least capacity bytes.
func New(capacity int) *Fifo {
	size := max(roundUp(capacity), minSize)
	return &Fifo{
		buf:        make([]byte, size),
		size:       size,
		dataReady:  make(chan struct{}, 1),
		spaceReady: make(chan struct{}, 1),
	}
}

// Cap returns the ring size in bytes.
func (f *Fifo) Cap() int { return f.size }

// MaxPayload returns the largest payload a single record may carry.
func (f *Fifo) MaxPayload() int { return f.size - headerSize - align }

// Empty reports whether the consumer has drained every committed record.
func (f *Fifo) Empty() bool { return f.get.Load() == f.put.Load() }

func roundUp(n int) int { return (n + align - 1) &^ (align - 1) }

func recordSize(n int) int { return headerSize + roundUp(n) }

func signal(c chan struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

// Reserve returns a writable payload slice of n bytes at the write cursor,
// blocking while the consumer has not freed enough space. The slice is
// valid until Commit.
func (f *Fifo) Reserve(n int) []byte {
	if n <= 0 {
		panic("fifo: zero-size record")
	}
	if n > f.MaxPayload() {
		panic(fmt.Sprintf("fifo: %d byte record exceeds ring payload limit %d", n, f.MaxPayload()))
	}
	if f.pending != 0 {
		panic("fifo: Reserve called with an uncommitted reservation")
	}
	need := recordSize(n)
	for {
		get := int(f.get.Load())
		put := f.wpos
		if put >= get {
			if put+need < f.size || (put+need == f.size && get > 0) {
				f.pending = n
				return f.buf[put+headerSize : put+headerSize+n]
			}
			// The tail is too short. Wrap only when the consumer is not
			// parked at 0, otherwise put would catch up with get.
			if get > 0 {
				if f.size-put >= headerSize {
					binary.LittleEndian.PutUint32(f.buf[put:], WrapOp)
					binary.LittleEndian.PutUint32(f.buf[put+4:], 0)
				}
				f.wpos = 0
				f.put.Store(0)
				signal(f.dataReady)
				continue
			}
		} else if put+need < get {
			f.pending = n
			return f.buf[put+headerSize : put+headerSize+n]
		}
		<-f.spaceReady
	}
}

// Commit publishes the reserved record under op.
func (f *Fifo) Commit(op uint32) {
	if f.pending == 0 {
		panic("fifo: Commit without Reserve")
	}
	if op == 0 || op == WrapOp {
		panic(fmt.Sprintf("fifo: reserved opcode %#x", op))
	}
	put := f.wpos
	binary.LittleEndian.PutUint32(f.buf[put:], op)
	binary.LittleEndian.PutUint32(f.buf[put+4:], uint32(f.pending))
	put += recordSize(f.pending)
	if put == f.size {
		put = 0
	}
	f.pending = 0
	f.wpos = put
	f.put.Store(int64(put))
	signal(f.dataReady)
}

// Enqueue copies payload into a new record.
func (f *Fifo) Enqueue(op uint32, payload []byte) {
	copy(f.Reserve(len(payload)), payload)
	f.Commit(op)
}

// Get returns the record at the read cursor. The payload aliases the ring
// and stays valid until Next. When the ring is empty Get either returns
// ok == false or, with block set, waits for the producer.
func (f *Fifo) Get(block bool) (op uint32, payload []byte, ok bool) {
	if f.cur != 0 {
		panic("fifo: Get called before Next")
	}
	for {
		get := f.rpos
		if get == int(f.put.Load()) {
			if !block {
				return 0, nil, false
			}
			<-f.dataReady
			continue
		}
		if f.size-get < headerSize {
			f.advance(0)
			continue
		}
		op = binary.LittleEndian.Uint32(f.buf[get:])
		n := int(binary.LittleEndian.Uint32(f.buf[get+4:]))
		if op == WrapOp {
			f.advance(0)
			continue
		}
		if op == 0 || n == 0 || get+recordSize(n) > f.size {
			panic(fmt.Sprintf("fifo: corrupt record at %d: op=%#x len=%d", get, op, n))
		}
		f.cur = recordSize(n)
		return op, f.buf[get+headerSize : get+headerSize+n], true
	}
}

// Next releases the record returned by the last Get.
func (f *Fifo) Next() {
	if f.cur == 0 {
		panic("fifo: Next without Get")
	}
	pos := f.rpos + f.cur
	if pos == f.size {
		pos = 0
	}
	f.cur = 0
	f.advance(pos)
}

func (f *Fifo) advance(pos int) {
	f.rpos = pos
	f.get.Store(int64(pos))
	signal(f.spaceReady)
}
