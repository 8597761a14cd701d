// Package loader stamps the control column with the boot program and
// the cycles the guest program actually executed, returning the first
// cycle not covered by execution (spec.md §4.D).
package loader

import (
	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/trace"
)

// Load writes ctrl[j*steps+c] for every executed cycle c (read from
// tr.CtrlRow), then pads cycles [lastCycle, padEnd) by repeating the
// final executed row — the "valid padding" of spec.md §8 scenario S1.
// It returns lastCycle, the first cycle not part of the executed
// program.
func Load(ctrl buffer.Buf[field.Fp], steps int, padEnd int, desc *circuit.Descriptor, tr trace.PreflightTrace) int {
	lastCycle := tr.Len()

	for c := 0; c < lastCycle; c++ {
		row := tr.CtrlRow(c)
		for j := 0; j < desc.CtrlSize; j++ {
			ctrl.SetAt(j*steps+c, row[j])
		}
	}

	if lastCycle > 0 {
		padRow := make([]field.Fp, desc.CtrlSize)
		for j := 0; j < desc.CtrlSize; j++ {
			padRow[j] = ctrl.GetAt(j*steps + lastCycle - 1)
		}
		for c := lastCycle; c < padEnd; c++ {
			for j := 0; j < desc.CtrlSize; j++ {
				ctrl.SetAt(j*steps+c, padRow[j])
			}
		}
	}

	return lastCycle
}
