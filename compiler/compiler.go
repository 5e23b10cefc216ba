package compiler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/gfxrt/engine"
	"github.com/gogpu/gfxrt/internal/gpu"
)

// DefaultEntry is the function name used when a script has no entry
// pragma.
const DefaultEntry = "root"

// Compile errors, reported through CompileResult.Log.
var (
	ErrNoFunction = errors.New("compiler: script declares no function")
	ErrNoHost     = errors.New("compiler: no host entry point registered")
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithValidation enables naga IR validation before code generation. It is
// on by default.
func WithValidation(on bool) Option {
	return func(c *Compiler) { c.opts.Validate = on }
}

// WithDebug emits debug names in generated SPIR-V.
func WithDebug(on bool) Option {
	return func(c *Compiler) { c.opts.Debug = on }
}

// WithSPIRVVersion selects the SPIR-V version of generated modules.
func WithSPIRVVersion(v spirv.Version) Option {
	return func(c *Compiler) { c.opts.SPIRVVersion = v }
}

// Compiler implements engine.Compiler. It is safe for concurrent use;
// entry points may be registered while a context compiles.
type Compiler struct {
	opts naga.CompileOptions

	mu      sync.RWMutex
	entries map[string]engine.EntryPoint
}

var _ engine.Compiler = (*Compiler)(nil)

// New returns a Compiler with no registered entry points.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		opts:    naga.DefaultOptions(),
		entries: make(map[string]engine.EntryPoint),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register binds name to fn. Scripts select it with a function of the same
// name or an entry pragma. Registering a name again replaces fn.
func (c *Compiler) Register(name string, fn engine.EntryPoint) {
	c.mu.Lock()
	c.entries[name] = fn
	c.mu.Unlock()
}

// Lookup returns the entry point registered under name.
func (c *Compiler) Lookup(name string) (engine.EntryPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.entries[name]
	return fn, ok
}

// Entries returns the registered names in sorted order.
func (c *Compiler) Entries() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// Compile implements engine.Compiler.
func (c *Compiler) Compile(req engine.CompileRequest) engine.CompileResult {
	src, pragmas := StripPragmas(req.Source)
	res := engine.CompileResult{Pragmas: pragmas}

	text := req.Preamble + "\n" + src
	module, err := c.lower(text)
	if err != nil {
		res.Log = err.Error()
		slogger().Error("script compile", "label", req.Label, "err", err)
		return res
	}

	name, err := entryName(pragmas, module)
	if err != nil {
		res.Log = err.Error()
		return res
	}
	fn, ok := c.Lookup(name)
	if !ok {
		res.Log = fmt.Errorf("%w: %q", ErrNoHost, name).Error()
		slogger().Error("script compile", "label", req.Label, "entry", name, "err", ErrNoHost)
		return res
	}

	p := &program{name: name, fn: fn}
	var log strings.Builder
	if len(module.EntryPoints) > 0 && req.Modules != nil {
		if err := c.attachModule(p, module, req); err != nil {
			fmt.Fprintf(&log, "shader module: %v\n", err)
			slogger().Warn("script has no shader module", "label", req.Label, "err", err)
		}
	}
	res.Program = p
	res.Log = log.String()
	slogger().Debug("script compiled", "label", req.Label, "entry", name, "pragmas", len(pragmas))
	return res
}

func (c *Compiler) lower(text string) (*ir.Module, error) {
	ast, err := naga.Parse(text)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, text)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	if c.opts.Validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("validation failed: %w", verrs[0])
		}
	}
	return module, nil
}

func (c *Compiler) attachModule(p *program, module *ir.Module, req engine.CompileRequest) error {
	bytes, err := naga.GenerateSPIRV(module, spirv.Options{
		Version: c.opts.SPIRVVersion,
		Debug:   c.opts.Debug,
	})
	if err != nil {
		return err
	}
	words := make([]uint32, len(bytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(bytes[i*4:])
	}
	m, err := req.Modules.CreateShaderModule(req.Label, words)
	if err != nil {
		return err
	}
	p.module, p.modules = m, req.Modules
	return nil
}

// entryName picks the host entry point of a script: the entry pragma, else
// DefaultEntry when declared, else the first declared function.
func entryName(pragmas []engine.Pragma, module *ir.Module) (string, error) {
	for _, p := range pragmas {
		if p.Key == "entry" && p.Value != "" {
			return p.Value, nil
		}
	}
	var first string
	for _, f := range module.Functions {
		if f.Name == DefaultEntry {
			return f.Name, nil
		}
		if first == "" {
			first = f.Name
		}
	}
	if first == "" {
		return "", ErrNoFunction
	}
	return first, nil
}

// program is the CompiledProgram of one script.
type program struct {
	name    string
	fn      engine.EntryPoint
	module  *gpu.ShaderModule
	modules engine.ShaderModules
}

func (p *program) Invoke(env *engine.Env, launch uint32) bool { return p.fn(env, launch) }

// Release destroys the shader module of the script.
func (p *program) Release() {
	if p.module != nil {
		p.modules.DestroyShaderModule(p.module)
		p.module = nil
	}
}
