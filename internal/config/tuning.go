package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the VM/JIT knobs an operator can override via an
// optional YAML file (SPEC_FULL.md §2); every field has a zero-value-safe
// default applied by Default() so a partially specified file (or none
// at all) still produces a usable Tuning.
type Tuning struct {
	// OperandStackCap caps the VM's operand stack, shared by all frames (spec.md
	// §4.3 default: 1024).
	OperandStackCap int `yaml:"operand_stack_cap"`
	// FrameStackCap caps call nesting depth (spec.md §4.3 default: 256).
	FrameStackCap int `yaml:"frame_stack_cap"`
	// JITHotThreshold is the call count after which a function is
	// compiled (spec.md §4.5 default: 1000).
	JITHotThreshold int `yaml:"jit_hot_threshold"`
	// JITCachePath is the sqlite database path for the JIT's cross-run
	// compiled-entry cache. Empty disables the cache.
	JITCachePath string `yaml:"jit_cache_path"`
}

// Default returns the tuning spec.md's CORE hard-codes when no file is
// loaded.
func Default() Tuning {
	return Tuning{
		OperandStackCap: 1024,
		FrameStackCap:   256,
		JITHotThreshold: 1000,
		JITCachePath:    "",
	}
}

// Load reads a YAML tuning file, starting from Default() and
// overwriting only the fields the file sets explicitly (zero/empty
// values in the decoded struct are left at their default).
func Load(path string) (Tuning, error) {
	t := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var overlay Tuning
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Tuning{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if overlay.OperandStackCap != 0 {
		t.OperandStackCap = overlay.OperandStackCap
	}
	if overlay.FrameStackCap != 0 {
		t.FrameStackCap = overlay.FrameStackCap
	}
	if overlay.JITHotThreshold != 0 {
		t.JITHotThreshold = overlay.JITHotThreshold
	}
	if overlay.JITCachePath != "" {
		t.JITCachePath = overlay.JITCachePath
	}
	return t, nil
}
