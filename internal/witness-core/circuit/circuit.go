// Package circuit holds the compile-time circuit constants and step
// kernels the machine and witness packages consume opaquely: column
// counts, the tap set, and the three per-cycle step functions.
//
// In a production prover these are emitted by an external circuit
// compiler (spec.md §1, "out of scope"); this module ships a small,
// concrete descriptor — a single running accumulator column driven by
// the control stream, plus a RAM-consistency and a byte-lookup
// sub-table, each with its own back-chained running index — sized to
// exercise every operation the witness generator and machine package
// implement (back injection, parallel stepping, sort-then-verify) end
// to end, grounded on the teacher's per-concern table split
// (internal/vybium-starks-vm/vm/ram_table.go, u32_lookup_tables.go).
package circuit

import (
	"fmt"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// Control column indices.
const (
	CtrlPC = iota
	CtrlOp
	CtrlSizeDefault
)

// Data column indices.
const (
	DataAcc         = iota // running accumulator, chained on itself via a back read
	DataAddr               // RAM address hint for this cycle (sort key "ram")
	DataVal                // RAM value hint for this cycle
	DataByte               // byte-lookup operand hint for this cycle (sort key "bytes")
	DataRAMRun             // cumulative distinct-address run index, back-chained
	DataByteRun            // cumulative distinct-byte run index, back-chained
	DataSizeDefault
)

// BackWindow is the largest back-offset any tap in this descriptor
// reads (W in spec.md §4.E).
const BackWindow = 1

// Tap is a (column, back-offset) pair the circuit reads at each row.
type Tap struct {
	Column int
	Back   int
}

// Cols bundles the three witness buffers a step kernel operates on.
type Cols struct {
	Ctrl buffer.Buf[field.Fp]
	IO   buffer.Buf[field.Fp]
	Data buffer.Buf[field.Fp]
}

// Hints is the per-cycle, trace-supplied, non-deterministic input a
// step kernel consumes: the RAM address/value and byte-lookup operand
// the pre-flight trace recorded for this cycle.
type Hints struct {
	Addr field.Fp
	Val  field.Fp
	Byte field.Fp
}

// StepFn is the signature of a per-cycle step kernel.
type StepFn func(cycle, steps int, cols Cols) error

// Descriptor is the compile-time circuit description.
type Descriptor struct {
	CtrlSize int
	DataSize int
	Taps     []Tap

	StepExec        StepFn
	StepVerifyMem   StepFn
	StepVerifyBytes StepFn

	// InjectExecBacks, InjectVerifyMemBacks, InjectVerifyBytesBacks
	// pre-populate the back cell(s) a subsequent call to the matching
	// StepFn at the same cycle argument will read, per spec.md §4.E.
	// Each is a function of (cycle, steps, cols) exactly like a StepFn:
	// called with the cycle whose *next* row will read the back cell,
	// it writes row cycle-1 (the one-cell back window this descriptor
	// uses everywhere).
	InjectExecBacks        StepFn
	InjectVerifyMemBacks   StepFn
	InjectVerifyBytesBacks StepFn
}

// Default returns the descriptor this module ships, parameterized by a
// HintSource the pre-flight trace implements.
func Default(hints HintSource) *Descriptor {
	return &Descriptor{
		CtrlSize: CtrlSizeDefault,
		DataSize: DataSizeDefault,
		Taps: []Tap{
			{Column: DataAcc, Back: BackWindow},
			{Column: DataRAMRun, Back: BackWindow},
			{Column: DataByteRun, Back: BackWindow},
		},
		StepExec:        stepExec(hints),
		StepVerifyMem:   stepVerifyMem,
		StepVerifyBytes: stepVerifyBytes,

		InjectExecBacks:        injectBack(DataAcc, injectAcc),
		InjectVerifyMemBacks:   injectBack(DataRAMRun, injectRun(DataAddr, DataRAMRun)),
		InjectVerifyBytesBacks: injectBack(DataByteRun, injectRun(DataByte, DataByteRun)),
	}
}

// HintSource supplies the per-cycle non-deterministic inputs the
// execute phase needs; the pre-flight trace implements it.
type HintSource interface {
	Hints(cycle int) Hints
}

func at(steps int, col, cycle int) int {
	return col*steps + cycle
}

// ioAt returns cols.IO[cycle], or ZERO if the caller-supplied io
// buffer does not cover this cycle: io is copied in verbatim at
// whatever length the caller gave NewGenerator, not padded to steps.
func ioAt(cols Cols, cycle int) field.Fp {
	if cycle < cols.IO.Size() {
		return cols.IO.GetAt(cycle)
	}
	return field.Zero
}

// stepExec writes data[DataAcc][cycle] = data[DataAcc][cycle-1] +
// ctrl[CtrlOp][cycle] + io[cycle] (ZERO once cycle runs past the
// caller-supplied io buffer), and copies this cycle's trace hints into
// the RAM/byte hint columns.
func stepExec(hints HintSource) StepFn {
	return func(cycle, steps int, cols Cols) error {
		var prevAcc field.Fp
		if cycle == 0 {
			prevAcc = field.Zero
		} else {
			prevAcc = cols.Data.GetAt(at(steps, DataAcc, cycle-1))
			if !prevAcc.IsValid() {
				return werr.NewError(werr.ErrTraceConstraintViolation, "step_exec", cycle,
					"back cell data[DataAcc][cycle-1] was not injected before stepping")
			}
		}
		op := cols.Ctrl.GetAt(at(steps, CtrlOp, cycle))
		acc := prevAcc.Add(op).Add(ioAt(cols, cycle))

		h := hints.Hints(cycle)
		cols.Data.SetAt(at(steps, DataAcc, cycle), acc)
		cols.Data.SetAt(at(steps, DataAddr, cycle), h.Addr)
		cols.Data.SetAt(at(steps, DataVal, cycle), h.Val)
		cols.Data.SetAt(at(steps, DataByte, cycle), h.Byte)
		return nil
	}
}

// stepVerifyMem runs after sort("ram"): it checks that the address
// column is monotone non-decreasing and writes the cumulative
// distinct-address run index, back-chained on itself.
func stepVerifyMem(cycle, steps int, cols Cols) error {
	addr := cols.Data.GetAt(at(steps, DataAddr, cycle))
	if cycle == 0 {
		cols.Data.SetAt(at(steps, DataRAMRun, cycle), field.Zero)
		return nil
	}
	prevAddr := cols.Data.GetAt(at(steps, DataAddr, cycle-1))
	prevRun := cols.Data.GetAt(at(steps, DataRAMRun, cycle-1))
	if !prevRun.IsValid() {
		return werr.NewError(werr.ErrTraceConstraintViolation, "step_verify_mem", cycle,
			"back cell data[DataRAMRun][cycle-1] was not injected before stepping")
	}
	if fpLess(addr, prevAddr) {
		return werr.NewError(werr.ErrTraceConstraintViolation, "step_verify_mem", cycle,
			fmt.Sprintf("ram key not monotone non-decreasing: addr[%d]=%s < addr[%d]=%s", cycle, addr, cycle-1, prevAddr))
	}
	run := prevRun
	if !addr.Equals(prevAddr) {
		run = run.Add(field.One)
	}
	cols.Data.SetAt(at(steps, DataRAMRun, cycle), run)
	return nil
}

// stepVerifyBytes runs after sort("bytes"): analogous to
// stepVerifyMem, over the byte-lookup column.
func stepVerifyBytes(cycle, steps int, cols Cols) error {
	b := cols.Data.GetAt(at(steps, DataByte, cycle))
	if cycle == 0 {
		cols.Data.SetAt(at(steps, DataByteRun, cycle), field.Zero)
		return nil
	}
	prevByte := cols.Data.GetAt(at(steps, DataByte, cycle-1))
	prevRun := cols.Data.GetAt(at(steps, DataByteRun, cycle-1))
	if !prevRun.IsValid() {
		return werr.NewError(werr.ErrTraceConstraintViolation, "step_verify_bytes", cycle,
			"back cell data[DataByteRun][cycle-1] was not injected before stepping")
	}
	if fpLess(b, prevByte) {
		return werr.NewError(werr.ErrTraceConstraintViolation, "step_verify_bytes", cycle,
			fmt.Sprintf("bytes key not monotone non-decreasing: byte[%d]=%s < byte[%d]=%s", cycle, b, cycle-1, prevByte))
	}
	run := prevRun
	if !b.Equals(prevByte) {
		run = run.Add(field.One)
	}
	cols.Data.SetAt(at(steps, DataByteRun, cycle), run)
	return nil
}

// fpLess compares canonical residues. Both sides must be valid.
func fpLess(a, b field.Fp) bool {
	return a.Uint32() < b.Uint32()
}

// computeFn derives the value a back-chained column should hold at
// row, given every column already written at rows < row.
type computeFn func(row, steps int, cols Cols) (field.Fp, error)

// injectBack builds an InjectFn for a single-cell back window: called
// with cycle, it ensures column col holds a written value at row
// cycle-1, computing it with compute if it isn't already valid. It is
// idempotent — a cell already written (e.g. by sequential stepping,
// which never needs injection) is left untouched.
func injectBack(col int, compute computeFn) StepFn {
	return func(cycle, steps int, cols Cols) error {
		if cycle == 0 {
			return nil
		}
		row := cycle - 1
		idx := at(steps, col, row)
		if cols.Data.GetAt(idx).IsValid() {
			return nil
		}
		v, err := compute(row, steps, cols)
		if err != nil {
			return err
		}
		cols.Data.SetAt(idx, v)
		return nil
	}
}

// injectAcc recomputes data[DataAcc][row] from the previous
// accumulator cell and the control column, the same formula stepExec
// uses for its own row.
func injectAcc(row, steps int, cols Cols) (field.Fp, error) {
	var prev field.Fp
	if row == 0 {
		prev = field.Zero
	} else {
		prev = cols.Data.GetAt(at(steps, DataAcc, row-1))
		if !prev.IsValid() {
			return field.Fp{}, werr.NewError(werr.ErrTraceConstraintViolation, "inject_exec_backs", row,
				"back cell data[DataAcc][row-1] was not available during injection")
		}
	}
	op := cols.Ctrl.GetAt(at(steps, CtrlOp, row))
	return prev.Add(op).Add(ioAt(cols, row)), nil
}

// injectRun recomputes the cumulative distinct-value run index for
// hintCol into runCol at row, the same formula stepVerifyMem and
// stepVerifyBytes use.
func injectRun(hintCol, runCol int) computeFn {
	return func(row, steps int, cols Cols) (field.Fp, error) {
		if row == 0 {
			return field.Zero, nil
		}
		key := cols.Data.GetAt(at(steps, hintCol, row))
		prevKey := cols.Data.GetAt(at(steps, hintCol, row-1))
		prevRun := cols.Data.GetAt(at(steps, runCol, row-1))
		if !prevRun.IsValid() {
			return field.Fp{}, werr.NewError(werr.ErrTraceConstraintViolation, "inject_verify_backs", row,
				"back cell run column at row-1 was not available during injection")
		}
		run := prevRun
		if !key.Equals(prevKey) {
			run = run.Add(field.One)
		}
		return run, nil
	}
}
