// Package gfxrt is a GPU runtime: typed memory allocations, pipeline state
// and small scripts executed once per frame on a dedicated render
// goroutine.
//
// # Overview
//
// A Context starts the engine and is the only producer of its command
// ring. Calls that create objects or read data wait for the matching
// record on the return ring; everything else is fire-and-forget and is
// applied in issue order. Finish waits for every earlier command.
//
// # Quick Start
//
//	c := compiler.New()
//	c.Register("root", func(env *engine.Env, launch uint32) bool {
//	    env.Color(1, 0, 0, 1)
//	    env.DrawRect(0, 0, 64, 64, 0)
//	    return false // no continuous redraw
//	})
//
//	rs, err := gfxrt.New(gfxrt.WithCompiler(c))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rs.Destroy()
//
//	script, err := rs.NewScriptC().SetRoot(true).SetText("fn root() {}").Create()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rs.BindRootScript(script)
//	rs.Finish()
//
// # Memory
//
// Elements describe one cell, Types add extents, mip levels and cube
// faces, and Allocations hold the data. Typed range copies check the host
// scalar type, the count and the bounds before anything is enqueued:
//
//	elem, _ := rs.PredefinedElement(schema.PredefinedF32)
//	a, _ := rs.CreateSized(elem, 1024, gfxrt.UsageScript)
//	err := gfxrt.Copy1DRangeFrom(a, 0, 4, []float32{1, 2, 3, 4})
//
// Validation failures are logged and returned as errors wrapping the
// package sentinels (ErrTypeMismatch, ErrOutOfRange, ...).
//
// # Logging
//
// gfxrt is silent by default. SetLogger enables structured logging for the
// client, the engine, the script compiler and the GPU layer.
package gfxrt
