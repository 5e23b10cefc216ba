// Command rsdemo runs a particle fountain on the gfxrt engine and reports
// how many frames were drawn.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gfxrt"
	"github.com/gogpu/gfxrt/compiler"
	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/schema"
	"github.com/gogpu/gfxrt/surface"
)

const fountainSource = `
#pragma version(1)
#pragma stateVertex(parent)
#pragma stateFragmentStore(parent)

fn root() {}
`

func main() {
	var (
		configPath = flag.String("config", "", "engine configuration file (TOML)")
		frames     = flag.Int("frames", 120, "frames to draw before exiting")
		particles  = flag.Int("particles", 512, "number of particles")
		verbose    = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *verbose {
		gfxrt.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	if *particles < 1 || *frames < 1 {
		log.Fatal("particles and frames must be positive")
	}

	f := &fountain{count: *particles}
	comp := compiler.New()
	comp.Register("root", f.root)

	surf := surface.NewHeadless(640, 480)
	rs, err := gfxrt.New(
		gfxrt.WithConfig(cfg),
		gfxrt.WithCompiler(comp),
		gfxrt.WithSurface(surf),
	)
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	defer rs.Destroy()

	if _, err := setup(rs, *particles); err != nil {
		log.Fatalf("setup: %v", err)
	}

	start := time.Now()
	stall := time.NewTimer(time.Second)
	defer stall.Stop()
	for rs.Frames() < uint64(*frames) {
		select {
		case <-surf.Presented():
			stall.Reset(time.Second)
		case <-stall.C:
			log.Fatalf("rendering stalled after %d frames", rs.Frames())
		}
	}
	elapsed := time.Since(start)
	log.Printf("%d frames, %d particles in %v (%.1f fps)",
		rs.Frames(), *particles, elapsed.Round(time.Millisecond), float64(rs.Frames())/elapsed.Seconds())
}

// setup creates the particle allocation, the programs and the root script.
func setup(rs *gfxrt.Context, count int) (*gfxrt.Allocation, error) {
	elem, err := rs.CreateElement(
		schema.Component{Kind: schema.KindX, Type: schema.DataTypeFloat32, Name: "x"},
		schema.Component{Kind: schema.KindY, Type: schema.DataTypeFloat32, Name: "y"},
		schema.Component{Kind: schema.KindUser, Type: schema.DataTypeFloat32, Name: "dx"},
		schema.Component{Kind: schema.KindUser, Type: schema.DataTypeFloat32, Name: "dy"},
	)
	if err != nil {
		return nil, err
	}
	parts, err := rs.CreateSized(elem, uint32(count), gfxrt.UsageScript)
	if err != nil {
		return nil, err
	}
	if err := parts.SetName("particles"); err != nil {
		return nil, err
	}

	pv, err := rs.CreateProgramVertex(true)
	if err != nil {
		return nil, err
	}
	if err := rs.BindProgramVertex(pv); err != nil {
		return nil, err
	}
	ps, err := rs.CreateProgramStore(gfxrt.DepthAlways, false, true)
	if err != nil {
		return nil, err
	}
	if err := rs.BindProgramStore(ps); err != nil {
		return nil, err
	}

	script, err := rs.NewScriptC().
		SetRoot(true).
		SetClearColor(0.05, 0.05, 0.1, 1).
		AddType(0, parts.Type()).
		DefineInt("particleCount", int32(count)).
		DefineFloat("gravity", 0.25).
		SetText(fountainSource).
		Create()
	if err != nil {
		return nil, err
	}
	if err := script.BindAllocation(parts, 0); err != nil {
		return nil, err
	}
	if err := rs.BindRootScript(script); err != nil {
		return nil, err
	}
	return parts, rs.Finish()
}
