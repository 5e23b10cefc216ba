package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the tunables of a Context. The zero value is not valid;
// start from DefaultConfig.
type Config struct {
	// FifoBytes is the size of the command ring.
	FifoBytes int `toml:"fifo_bytes"`

	// ReturnBytes is the size of the return ring.
	ReturnBytes int `toml:"return_bytes"`

	// ScriptSlots is the number of allocation slots per script.
	ScriptSlots int `toml:"script_slots"`

	// FragmentSlots caps the texture slots of a fragment program.
	FragmentSlots int `toml:"fragment_slots"`

	// DrainBatch caps the records processed per loop iteration; 0 drains
	// until the ring is empty.
	DrainBatch int `toml:"drain_batch"`

	// ThreadPriority is the nice value requested for the render thread.
	// 0 leaves the priority alone.
	ThreadPriority int `toml:"thread_priority"`

	// Workers is the size of the CPU pool used for mipmap generation. 0
	// uses GOMAXPROCS.
	Workers int `toml:"workers"`

	// GPUMemoryMB bounds the memory used by GPU mirrors of allocations.
	GPUMemoryMB int `toml:"gpu_memory_mb"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		FifoBytes:      256 * 1024,
		ReturnBytes:    64 * 1024,
		ScriptSlots:    16,
		FragmentSlots:  8,
		ThreadPriority: -4,
		GPUMemoryMB:    256,
	}
}

// ErrInvalidConfig is wrapped by Validate errors.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Validate checks the ranges of every field.
func (c Config) Validate() error {
	switch {
	case c.FifoBytes < 1024:
		return fmt.Errorf("%w: fifo_bytes %d below 1024", ErrInvalidConfig, c.FifoBytes)
	case c.ReturnBytes < 1024:
		return fmt.Errorf("%w: return_bytes %d below 1024", ErrInvalidConfig, c.ReturnBytes)
	case c.ScriptSlots < 1:
		return fmt.Errorf("%w: script_slots must be positive", ErrInvalidConfig)
	case c.FragmentSlots < 1:
		return fmt.Errorf("%w: fragment_slots must be positive", ErrInvalidConfig)
	case c.DrainBatch < 0:
		return fmt.Errorf("%w: drain_batch must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.ThreadPriority < -20 || c.ThreadPriority > 19:
		return fmt.Errorf("%w: thread_priority %d outside [-20, 19]", ErrInvalidConfig, c.ThreadPriority)
	}
	return nil
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys the file sets
// that Config does not know are reported as an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("engine: read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// ParseConfig decodes TOML text on top of DefaultConfig.
func ParseConfig(text string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, fmt.Errorf("engine: parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// String renders c as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("engine.Config{%v}", err)
	}
	return b.String()
}
