// Package wconfig holds the construction-time configuration shared by
// the witness generator and the HAL backends.
package wconfig

import (
	"fmt"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// HashSuite selects the hash family the HAL uses for row/fold hashing.
type HashSuite int

const (
	// HashSHA256 uses crypto/sha256.
	HashSHA256 HashSuite = iota
	// HashPoseidon uses the Poseidon sponge over Fp.
	HashPoseidon
	// HashPoseidon2 uses the same simplified sponge as HashPoseidon with
	// fewer partial rounds; it is not a certified Poseidon2 parameter set.
	HashPoseidon2
)

func (h HashSuite) String() string {
	switch h {
	case HashSHA256:
		return "sha256"
	case HashPoseidon:
		return "poseidon"
	case HashPoseidon2:
		return "poseidon2"
	default:
		return "unknown"
	}
}

// Backend selects where HAL operations execute.
type Backend int

const (
	// BackendCPU runs every HAL operation on the host.
	BackendCPU Backend = iota
	// BackendAccelerator targets a device at index 0. This module does
	// not ship an accelerator implementation (see DESIGN.md); Validate
	// accepts it, and NewHALBackend then fails with
	// ErrPreconditionFailure.
	BackendAccelerator
)

func (b Backend) String() string {
	if b == BackendAccelerator {
		return "accelerator"
	}
	return "cpu"
}

// Config is the construction-time configuration for the witness and
// HAL core, following the teacher's Config/VMConfig fluent-builder
// style (internal/vybium-starks-vm/utils/config.go).
type Config struct {
	// Po2 is log2(steps), the trace length exponent.
	Po2 int

	// Suite selects the hash family used by HAL row/fold hashing.
	Suite HashSuite

	// Backend selects where HAL operations run.
	Backend Backend

	// Sequential replaces par_step_* with a plain sequential loop and
	// skips the explicit back-injection pre-pass, per spec.md §6.
	Sequential bool
}

// DefaultConfig returns a Config suitable for small traces and tests.
func DefaultConfig() *Config {
	return &Config{
		Po2:        5,
		Suite:      HashPoseidon2,
		Backend:    BackendCPU,
		Sequential: false,
	}
}

// WithPo2 sets the trace length exponent.
func (c *Config) WithPo2(po2 int) *Config {
	c.Po2 = po2
	return c
}

// WithHashSuite sets the hash family.
func (c *Config) WithHashSuite(suite HashSuite) *Config {
	c.Suite = suite
	return c
}

// WithBackend sets the execution backend.
func (c *Config) WithBackend(backend Backend) *Config {
	c.Backend = backend
	return c
}

// WithSequential toggles the debugging sequential-mode fallback.
func (c *Config) WithSequential(seq bool) *Config {
	c.Sequential = seq
	return c
}

// Validate checks the configuration for internal consistency, mirroring
// utils.Config.Validate in the teacher.
func (c *Config) Validate() error {
	const minPo2 = 1
	maxPo2 := 27 // field.MaxROUPo2
	if c.Po2 < minPo2 || c.Po2 >= maxPo2 {
		return werr.NewOpError(werr.ErrInvalidConfig, "Config.Validate",
			fmt.Sprintf("po2 must be in [%d, %d), got %d", minPo2, maxPo2, c.Po2))
	}
	if c.Suite != HashSHA256 && c.Suite != HashPoseidon && c.Suite != HashPoseidon2 {
		return werr.NewOpError(werr.ErrInvalidConfig, "Config.Validate", "unknown hash suite")
	}
	if c.Backend != BackendCPU && c.Backend != BackendAccelerator {
		return werr.NewOpError(werr.ErrInvalidConfig, "Config.Validate", "unknown backend")
	}
	return nil
}
