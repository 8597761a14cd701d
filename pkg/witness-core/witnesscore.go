package witnesscore

import (
	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/hal"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/trace"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/witness"
)

// Fp is a BabyBear base-field element.
type Fp = field.Fp

// FpExt is an element of the degree-4 extension of Fp.
type FpExt = field.FpExt

// PreflightTrace is the read-only record of a guest program's
// execution that Generator.Execute consumes: control-column rows and
// the non-deterministic hints (RAM address/value, byte-lookup
// operand) each cycle needs.
type PreflightTrace = trace.PreflightTrace

// Hints are the per-cycle, trace-supplied inputs the execute phase
// consumes.
type Hints = circuit.Hints

// Descriptor is the compile-time circuit description a Generator
// steps.
type Descriptor = circuit.Descriptor

// HintSource supplies per-cycle hints to build a Descriptor; a
// PreflightTrace satisfies it directly.
type HintSource = circuit.HintSource

// DefaultDescriptor returns the circuit descriptor this module ships:
// a chained accumulator column plus RAM-consistency and byte-lookup
// sub-tables, parameterized by hints.
func DefaultDescriptor(hints HintSource) *Descriptor {
	return circuit.Default(hints)
}

// Generator drives the three-pass witness generation pipeline:
// execute, verify-ram, verify-bytes, followed by zero-knowledge noise
// fill and sanitization.
type Generator = witness.Generator

// NewGenerator allocates a Generator's column buffers for cfg.Po2
// steps against desc, copying io into the generator's IO column.
func NewGenerator(cfg *Config, io []Fp, desc *Descriptor) (*Generator, error) {
	return witness.NewGenerator(cfg, io, desc)
}

// HALBackend is the hardware-abstraction surface NTT, element-wise
// arithmetic, FRI folding, and row/fold hashing are driven through
// once witness generation completes.
type HALBackend = hal.Backend

// Digest is a fixed-width hash output produced by a HALBackend.
type Digest = hal.Digest

// NewHALBackend constructs the CPU-backed HALBackend for cfg's
// configured hash suite. cfg.Backend must be BackendCPU; any other
// value is a construction-time precondition failure, since this
// module ships no accelerator implementation (see DESIGN.md).
func NewHALBackend(cfg *Config) (HALBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Backend != BackendCPU {
		return nil, ErrorFromPrecondition("NewHALBackend", "no accelerator backend is available in this build")
	}
	return hal.NewCPUBackend(cfg.Suite), nil
}

// ErrorFromPrecondition builds an Error of code ErrPreconditionFailure
// for callers assembling their own precondition checks against this
// package's public surface.
func ErrorFromPrecondition(op, message string) *Error {
	return &Error{Code: ErrPreconditionFailure, Op: op, Cycle: -1, Message: message}
}
