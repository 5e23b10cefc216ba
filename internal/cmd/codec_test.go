package cmd

import (
	"bytes"
	"testing"
)

func TestCodec(t *testing.T) {
	var e Encoder
	e.Reset(42).U8(7).Bool(true).U32(0xdeadbeef).I32(-5).F32(1.5).
		Blob([]byte{9, 8, 7}).Str("NAMED_x")

	d, seq := NewDecoder(e.Bytes())
	if seq != 42 {
		t.Errorf("seq = %d, want 42", seq)
	}
	if got := d.U8(); got != 7 {
		t.Errorf("U8() = %d, want 7", got)
	}
	if !d.Bool() {
		t.Error("Bool() = false, want true")
	}
	if got := d.U32(); got != 0xdeadbeef {
		t.Errorf("U32() = %#x, want 0xdeadbeef", got)
	}
	if got := d.I32(); got != -5 {
		t.Errorf("I32() = %d, want -5", got)
	}
	if got := d.F32(); got != 1.5 {
		t.Errorf("F32() = %v, want 1.5", got)
	}
	if got := d.Blob(); !bytes.Equal(got, []byte{9, 8, 7}) {
		t.Errorf("Blob() = %v, want [9 8 7]", got)
	}
	if got := d.Str(); got != "NAMED_x" {
		t.Errorf("Str() = %q, want NAMED_x", got)
	}
	if d.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", d.Remaining())
	}
}

func TestDecoderTruncated(t *testing.T) {
	var e Encoder
	e.Reset(0).U8(1)
	d, _ := NewDecoder(e.Bytes())
	defer func() {
		if recover() == nil {
			t.Error("reading past the payload did not panic")
		}
	}()
	d.U32()
}

func TestOpTable(t *testing.T) {
	for o := OpNone + 1; o < OpCount; o++ {
		if ops[o].name == "" {
			t.Errorf("Op(%d) has no table entry", o)
		}
	}
	if OpAllocationRead1D.Mutates() {
		t.Error("read back marked as mutating")
	}
	if !OpAllocationData1D.Mutates() {
		t.Error("data upload not marked as mutating")
	}
	if !OpElementCreate.Sync() || OpAllocationData1D.Sync() {
		t.Error("sync flags wrong")
	}
	if Op(9999).Valid() {
		t.Error("Op(9999) reported valid")
	}
}
