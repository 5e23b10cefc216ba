package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// ShaderModule is a compiled SPIR-V module on the device.
type ShaderModule struct {
	m     hal.ShaderModule
	words int
}

// Words returns the SPIR-V length in 32-bit words.
func (m *ShaderModule) Words() int { return m.words }

// CreateShaderModule uploads SPIR-V code.
func (d *Device) CreateShaderModule(label string, spirv []uint32) (*ShaderModule, error) {
	if d.device == nil {
		return nil, ErrClosed
	}
	m, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %s: %w", label, err)
	}
	return &ShaderModule{m: m, words: len(spirv)}, nil
}

// DestroyShaderModule releases m.
func (d *Device) DestroyShaderModule(m *ShaderModule) {
	if m == nil || m.m == nil {
		return
	}
	if d.device != nil {
		d.device.DestroyShaderModule(m.m)
	}
	m.m = nil
}
