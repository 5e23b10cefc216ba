package engine

import "github.com/gogpu/gfxrt/internal/gpu"

// CompiledProgram is the callable produced for a script. Invoke runs one
// launch and reports whether it produced a frame worth presenting.
type CompiledProgram interface {
	Invoke(env *Env, launch uint32) bool
}

// EntryPoint adapts a function to CompiledProgram.
type EntryPoint func(env *Env, launch uint32) bool

// Invoke calls f.
func (f EntryPoint) Invoke(env *Env, launch uint32) bool { return f(env, launch) }

// Releaser is implemented by programs holding GPU resources.
type Releaser interface {
	Release()
}

// Pragma is a key/value declaration found in script source.
type Pragma struct {
	Key   string
	Value string
}

// ShaderModules creates GPU shader modules. *gpu.Device implements it.
type ShaderModules interface {
	CreateShaderModule(label string, spirv []uint32) (*gpu.ShaderModule, error)
	DestroyShaderModule(m *gpu.ShaderModule)
}

// CompileRequest is handed to the Compiler.
type CompileRequest struct {
	Label    string
	Preamble string
	Source   string

	// Modules is nil when the context runs without a GPU device.
	Modules ShaderModules
}

// CompileResult is the outcome of a compile. Program is nil when nothing
// runnable was produced; Log then explains why.
type CompileResult struct {
	Program CompiledProgram
	Pragmas []Pragma
	Log     string
}

// Compiler turns script text into a CompiledProgram.
type Compiler interface {
	Compile(req CompileRequest) CompileResult
}
