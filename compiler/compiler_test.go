package compiler

import (
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/gpu"
)

func TestStripPragmas(t *testing.T) {
	src := "#pragma version(1)\n" +
		"  #pragma stateVertex( flat )\n" +
		"#pragma relaxed\n" +
		"#pragma broken(\n" +
		"fn root() {}\n"
	out, got := StripPragmas(src)
	want := []engine.Pragma{
		{Key: "version", Value: "1"},
		{Key: "stateVertex", Value: "flat"},
		{Key: "relaxed"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pragmas = %+v, want %+v", got, want)
	}
	if wantOut := "\n\n\n\nfn root() {}\n"; out != wantOut {
		t.Errorf("stripped source = %q, want %q", out, wantOut)
	}
}

func invoke(t *testing.T, res engine.CompileResult) bool {
	t.Helper()
	if res.Program == nil {
		t.Fatalf("no program, log: %s", res.Log)
	}
	return res.Program.Invoke(nil, 7)
}

func TestCompileSelectsEntry(t *testing.T) {
	c := New()
	var called []string
	for _, name := range []string{"root", "other"} {
		c.Register(name, func(_ *engine.Env, launch uint32) bool {
			called = append(called, name)
			return launch == 7
		})
	}
	if got := c.Entries(); !reflect.DeepEqual(got, []string{"other", "root"}) {
		t.Errorf("Entries() = %v", got)
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"default entry", "fn helper() {}\nfn root() {}\n", "root"},
		{"first function", "fn other() {}\n", "other"},
		{"entry pragma", "#pragma entry(other)\nfn root() {}\n", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = nil
			res := c.Compile(engine.CompileRequest{Label: tt.name, Source: tt.src})
			if !invoke(t, res) {
				t.Error("Invoke did not pass the launch index through")
			}
			if len(called) != 1 || called[0] != tt.want {
				t.Errorf("called %v, want %s", called, tt.want)
			}
		})
	}
}

func TestCompilePreamble(t *testing.T) {
	c := New()
	c.Register("root", func(*engine.Env, uint32) bool { return true })
	res := c.Compile(engine.CompileRequest{
		Preamble: "// generated\nconst NAMED_flat: u32 = 3u;\nconst speed: f32 = 0.25f;\n",
		Source:   "#pragma stateVertex(flat)\nfn root() -> f32 { return speed * f32(NAMED_flat); }\n",
	})
	invoke(t, res)
	if len(res.Pragmas) != 1 || res.Pragmas[0].Value != "flat" {
		t.Errorf("pragmas = %+v", res.Pragmas)
	}
}

func TestCompileFailures(t *testing.T) {
	c := New()
	c.Register("root", func(*engine.Env, uint32) bool { return true })

	tests := []struct {
		name string
		src  string
		log  string
	}{
		{"syntax error", "fn root( {", "parse"},
		{"no function", "const x: i32 = 1;", ErrNoFunction.Error()},
		{"unregistered", "fn missing() {}", ErrNoHost.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Compile(engine.CompileRequest{Source: tt.src})
			if res.Program != nil {
				t.Fatal("failed compile produced a program")
			}
			if !strings.Contains(res.Log, tt.log) {
				t.Errorf("log = %q, want it to mention %q", res.Log, tt.log)
			}
		})
	}
}

type countingModules struct {
	dev       *gpu.Device
	created   int
	destroyed int
}

func (m *countingModules) CreateShaderModule(label string, spirv []uint32) (*gpu.ShaderModule, error) {
	m.created++
	return m.dev.CreateShaderModule(label, spirv)
}

func (m *countingModules) DestroyShaderModule(sm *gpu.ShaderModule) {
	m.destroyed++
	m.dev.DestroyShaderModule(sm)
}

func TestCompileShaderModule(t *testing.T) {
	dev, err := gpu.OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop() error = %v", err)
	}
	t.Cleanup(dev.Close)
	mods := &countingModules{dev: dev}

	c := New(WithValidation(false))
	c.Register("root", func(*engine.Env, uint32) bool { return true })
	res := c.Compile(engine.CompileRequest{
		Label: "with_stage",
		Source: `
fn root() {}

@vertex
fn vs(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0, 0.0, 0.0, 1.0);
}
`,
		Modules: mods,
	})
	invoke(t, res)
	p := res.Program.(*program)
	if mods.created != 1 || p.module == nil || p.module.Words() == 0 {
		t.Fatalf("shader module not created: created %d, log %q", mods.created, res.Log)
	}

	r, ok := res.Program.(engine.Releaser)
	if !ok {
		t.Fatal("program does not release its module")
	}
	r.Release()
	r.Release()
	if mods.destroyed != 1 {
		t.Errorf("destroyed %d modules, want 1", mods.destroyed)
	}
}

func TestNoModuleWithoutStages(t *testing.T) {
	mods := &countingModules{}
	c := New()
	c.Register("root", func(*engine.Env, uint32) bool { return true })
	invoke(t, c.Compile(engine.CompileRequest{Source: "fn root() {}", Modules: mods}))
	if mods.created != 0 {
		t.Errorf("created %d modules for a host-only script", mods.created)
	}
}
