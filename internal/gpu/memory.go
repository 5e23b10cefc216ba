package gpu

import (
	"errors"
	"fmt"
)

// ErrMemoryBudgetExceeded is returned when a resource would exceed the budget.
var ErrMemoryBudgetExceeded = errors.New("gpu: memory budget exceeded")

const (
	// DefaultMaxMemoryMB is the default GPU memory budget.
	DefaultMaxMemoryMB = 256

	// MinMemoryMB is the smallest accepted budget.
	MinMemoryMB = 16
)

// MemoryStats reports budget usage.
type MemoryStats struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	Buffers        int
	Textures       int
	Utilization    float64
}

func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d MB, %d buffers, %d textures]",
		s.Utilization*100,
		s.UsedBytes/(1024*1024),
		s.TotalBytes/(1024*1024),
		s.Buffers,
		s.Textures)
}

// MemoryBudget accounts for the bytes held by GPU mirrors of allocations.
// Host copies stay authoritative, so a mirror that does not fit is simply
// not created.
type MemoryBudget struct {
	budget   uint64
	used     uint64
	buffers  int
	textures int
}

// NewMemoryBudget returns a budget of maxMB megabytes. Values below
// MinMemoryMB select DefaultMaxMemoryMB.
func NewMemoryBudget(maxMB int) *MemoryBudget {
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}
	return &MemoryBudget{budget: uint64(maxMB) * 1024 * 1024}
}

func (m *MemoryBudget) reserve(size uint64, texture bool) error {
	if m.used+size > m.budget {
		return fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrMemoryBudgetExceeded, size, m.used, m.budget)
	}
	m.used += size
	if texture {
		m.textures++
	} else {
		m.buffers++
	}
	return nil
}

func (m *MemoryBudget) release(size uint64, texture bool) {
	m.used -= min(size, m.used)
	if texture {
		m.textures--
	} else {
		m.buffers--
	}
}

// Stats returns current usage.
func (m *MemoryBudget) Stats() MemoryStats {
	s := MemoryStats{
		TotalBytes: m.budget,
		UsedBytes:  m.used,
		Buffers:    m.buffers,
		Textures:   m.textures,
	}
	if m.budget > m.used {
		s.AvailableBytes = m.budget - m.used
	}
	if m.budget > 0 {
		s.Utilization = float64(m.used) / float64(m.budget)
	}
	return s
}

// SetMemoryBudget replaces the budget of d with one of maxMB megabytes.
// Resources already created stay accounted.
func (d *Device) SetMemoryBudget(maxMB int) {
	nb := NewMemoryBudget(maxMB)
	nb.used, nb.buffers, nb.textures = d.budget.used, d.budget.buffers, d.budget.textures
	d.budget = nb
}
