package main

import (
	"testing"
	"time"

	"github.com/gogpu/gfxrt"
	"github.com/gogpu/gfxrt/compiler"
	"github.com/gogpu/gfxrt/surface"
)

func TestFountainRuns(t *testing.T) {
	f := &fountain{count: 32}
	comp := compiler.New()
	comp.Register("root", f.root)
	surf := surface.NewHeadless(64, 64)

	rs, err := gfxrt.New(gfxrt.WithCompiler(comp), gfxrt.WithSurface(surf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(rs.Destroy)

	parts, err := setup(rs, f.count)
	if err != nil {
		t.Fatalf("setup() error = %v", err)
	}
	deadline := time.After(5 * time.Second)
	for rs.Frames() < 5 {
		select {
		case <-surf.Presented():
		case <-deadline:
			t.Fatalf("drew %d frames, want 5", rs.Frames())
		}
	}
	if err := rs.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	moved := 0
	state := make([]float32, f.count*stride)
	if err := gfxrt.Copy1DRangeTo(parts, 0, uint32(f.count), state); err != nil {
		t.Fatalf("Copy1DRangeTo() error = %v", err)
	}
	for i := 0; i < len(state); i += stride {
		if state[i+1] != 0 {
			moved++
		}
	}
	if moved == 0 {
		t.Error("no particle was spawned")
	}
}
