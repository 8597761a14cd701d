// Package trace defines the pre-flight trace interface the witness
// generator consumes: a read-only, deterministic record of the guest's
// concrete execution, produced upstream by the (out-of-scope) RISC-V
// emulator. spec.md §1 treats the emulator as an external collaborator;
// this package specifies only the interface the machine and circuit
// packages need.
package trace

import (
	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
)

// PreflightTrace is the opaque, read-only record the witness generator
// derives every row of data and the sort permutations from. It also
// satisfies circuit.HintSource directly.
type PreflightTrace interface {
	// Len returns the number of cycles the guest program actually
	// executed before halting (the loader's last_cycle).
	Len() int

	// CtrlRow returns the control-column values for cycle, of length
	// circuit.Descriptor.CtrlSize. Valid only for cycle < Len().
	CtrlRow(cycle int) []field.Fp

	// Hints returns the non-deterministic per-cycle inputs (RAM
	// address/value, byte-lookup operand) the execute phase needs.
	// The execute phase calls it for every cycle of the usable domain
	// (steps minus the zk-noise rows), including padding cycles at or
	// past Len().
	Hints(cycle int) circuit.Hints
}
