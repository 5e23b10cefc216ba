package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("fifo_bytes = 4096\nscript_slots = 4\nthread_priority = 0\n")
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.FifoBytes != 4096 || cfg.ScriptSlots != 4 || cfg.ThreadPriority != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReturnBytes != DefaultConfig().ReturnBytes {
		t.Errorf("unset key lost its default: return_bytes = %d", cfg.ReturnBytes)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"small fifo", func(c *Config) { c.FifoBytes = 16 }},
		{"small return ring", func(c *Config) { c.ReturnBytes = 0 }},
		{"no slots", func(c *Config) { c.ScriptSlots = 0 }},
		{"negative batch", func(c *Config) { c.DrainBatch = -1 }},
		{"priority", func(c *Config) { c.ThreadPriority = 40 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"no fragment slots", func(c *Config) { c.FragmentSlots = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.toml")
	if err := os.WriteFile(good, []byte("drain_batch = 64\ngpu_memory_mb = 32\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(good)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DrainBatch != 64 || cfg.GPUMemoryMB != 32 {
		t.Errorf("cfg = %+v", cfg)
	}

	// A round trip through String keeps every field.
	again, err := ParseConfig(cfg.String())
	if err != nil || again != cfg {
		t.Errorf("ParseConfig(String()) = %+v, %v; want %+v", again, err, cfg)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("fifo_size = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig(unknown key) error = %v, want ErrInvalidConfig", err)
	}
}
