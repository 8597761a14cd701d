// Package witness implements the three-pass witness generator: it
// loads the control column from a pre-flight trace, steps the
// execute/verify-ram/verify-bytes phases of the circuit descriptor
// (sequentially or via the machine package's data-parallel fan-out),
// fills the trailing zero-knowledge rows with random noise, and
// sanitizes any cell a step kernel never wrote.
package witness

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"
	"sync"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/loader"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/machine"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/trace"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/wconfig"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// ZKCycles is the number of trailing rows of the padded trace reserved
// for zero-knowledge masking noise. No step kernel ever runs over
// these rows; they exist only so the low-degree extension the outer
// prover computes hides the real trace's degree pattern.
const ZKCycles = 1

// Generator holds the column buffers and descriptor for one witness
// generation run. It is not safe for concurrent use by multiple
// goroutines calling Execute; the internal parallelism Execute itself
// uses is private to a single call.
type Generator struct {
	desc  *circuit.Descriptor
	steps int
	cols  circuit.Cols
	cfg   *wconfig.Config
}

// NewGenerator allocates the column buffers for a run of 2^cfg.Po2
// steps and validates cfg. io is copied verbatim into the generator's
// IO column (spec.md §3/§4.F's third witness column, alongside ctrl
// and data); stepExec reads it back cycle by cycle, treating cycles
// past len(io) as ZERO.
func NewGenerator(cfg *wconfig.Config, io []field.Fp, desc *circuit.Descriptor) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	steps := 1 << uint(cfg.Po2)
	if steps <= ZKCycles {
		return nil, werr.NewOpError(werr.ErrInvalidConfig, "NewGenerator",
			fmt.Sprintf("po2 %d yields %d steps, too small to reserve %d zk-noise rows", cfg.Po2, steps, ZKCycles))
	}
	return &Generator{
		desc:  desc,
		steps: steps,
		cols:  allocCols(desc, steps, io),
		cfg:   cfg,
	}, nil
}

func allocCols(desc *circuit.Descriptor, steps int, io []field.Fp) circuit.Cols {
	invalid := func(int) field.Fp { return field.Invalid }
	return circuit.Cols{
		Ctrl: buffer.AllocFilled[field.Fp]("ctrl", desc.CtrlSize*steps, invalid),
		IO:   buffer.CopyFrom[field.Fp]("io", io),
		Data: buffer.AllocFilled[field.Fp]("data", desc.DataSize*steps, invalid),
	}
}

// Steps returns the padded trace length, a power of two.
func (g *Generator) Steps() int { return g.steps }

// Cols exposes the generator's column buffers, for a caller that needs
// to hand them to the HAL layer once generation completes.
func (g *Generator) Cols() circuit.Cols { return g.cols }

// Execute runs the full three-pass pipeline over tr and returns the
// number of cycles the guest program actually executed (the loader's
// last_cycle).
func (g *Generator) Execute(tr trace.PreflightTrace) (int, error) {
	bound := g.steps - ZKCycles

	lastCycle := loader.Load(g.cols.Ctrl, g.steps, bound, g.desc, tr)
	if lastCycle > bound {
		return 0, werr.NewOpError(werr.ErrPreconditionFailure, "Generator.Execute",
			fmt.Sprintf("trace length %d exceeds usable domain %d (steps %d minus %d zk-noise rows)", lastCycle, bound, g.steps, ZKCycles))
	}

	ctx := &machine.Context{Desc: g.desc, Cols: g.cols, Steps: g.steps}

	if err := g.runPhase(ctx, bound, ctx.StepExec, ctx.ParStepExec); err != nil {
		return 0, err
	}
	if err := ctx.Sort(machine.SortRAM, bound); err != nil {
		return 0, err
	}
	if err := g.runPhase(ctx, bound, ctx.StepVerifyMem, ctx.ParStepVerifyMem); err != nil {
		return 0, err
	}
	if err := ctx.Sort(machine.SortBytes, bound); err != nil {
		return 0, err
	}
	if err := g.runPhase(ctx, bound, ctx.StepVerifyBytes, ctx.ParStepVerifyBytes); err != nil {
		return 0, err
	}

	g.fillZKNoise(bound)
	g.sanitize()

	return lastCycle, nil
}

// runPhase runs one of the three step kernels over [0, bound): the
// plain sequential loop when Config.Sequential is set (the debugging
// fallback of spec.md §6, which also proves the back-injection
// pre-pass is unnecessary when nothing reorders the steps), or the
// machine package's inject-then-fan-out parallel path otherwise.
func (g *Generator) runPhase(ctx *machine.Context, bound int, step func(int) error, par func(int, int) error) error {
	if g.cfg.Sequential {
		for c := 0; c < bound; c++ {
			if err := step(c); err != nil {
				return err
			}
		}
		return nil
	}
	return par(bound, machine.DefaultWorkers())
}

// fillZKNoise overwrites data columns in [bound, steps) with
// cryptographically seeded random field elements.
func (g *Generator) fillZKNoise(bound int) {
	rng := newNoiseRNG()
	for col := 0; col < g.desc.DataSize; col++ {
		base := col * g.steps
		for c := bound; c < g.steps; c++ {
			g.cols.Data.SetAt(base+c, field.Random(rng))
		}
	}
}

// sanitize replaces any remaining INVALID cell with ZERO, in the
// control, data and io buffers: the fused valid_or_zero pass spec.md
// §4.F requires before handing the witness to the outer prover. The
// three buffers are swept concurrently rather than as sequential full
// passes, matching the original implementation's fused parallel
// iterator (original_source/risc0, witgen.rs).
func (g *Generator) sanitize() {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		g.cols.IO.ViewMut(func(s []field.Fp) {
			for i := range s {
				s[i] = s[i].ValidOrZero()
			}
		})
	}()
	go func() {
		defer wg.Done()
		g.cols.Ctrl.ViewMut(func(s []field.Fp) {
			for i := range s {
				s[i] = s[i].ValidOrZero()
			}
		})
	}()
	go func() {
		defer wg.Done()
		g.cols.Data.ViewMut(func(s []field.Fp) {
			for i := range s {
				s[i] = s[i].ValidOrZero()
			}
		})
	}()
	wg.Wait()
}

func newNoiseRNG() *mathrand.Rand {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("witness: failed to seed zk-noise rng: %v", err))
	}
	return mathrand.New(mathrand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

// NewScratchContext allocates a fresh, independent set of column
// buffers for desc sized for steps rows with io copied in, for callers
// (notably VerifyStepOracle) that need to step a circuit without
// disturbing a generator's own columns.
func NewScratchContext(desc *circuit.Descriptor, steps int, io []field.Fp) *machine.Context {
	return &machine.Context{Desc: desc, Cols: allocCols(desc, steps, io), Steps: steps}
}

// VerifyStepOracle runs the execute phase over [0, bound) twice, once
// forward and once in reverse cycle order after a full back-injection
// pre-pass, on two independent scratch contexts, and reports a
// trace-constraint error if the two runs disagree anywhere. This is
// the forward/reverse step oracle spec.md's testable property 4
// describes: the only way StepExec can read state outside its own row
// is through the declared back window, so stepping in any order that
// respects that window must reach the same trace.
func (g *Generator) VerifyStepOracle(tr trace.PreflightTrace, bound int) error {
	io := g.cols.IO.AsSlice()
	fwd := NewScratchContext(g.desc, g.steps, io)
	rev := NewScratchContext(g.desc, g.steps, io)
	for _, ctx := range []*machine.Context{fwd, rev} {
		for c := 0; c < bound; c++ {
			row := tr.CtrlRow(c)
			for j, v := range row {
				ctx.Cols.Ctrl.SetAt(j*g.steps+c, v)
			}
		}
	}

	if err := machine.TestStepExecute(fwd, tr, bound, true); err != nil {
		return err
	}
	if err := machine.TestStepExecute(rev, tr, bound, false); err != nil {
		return err
	}

	for c := 0; c < bound; c++ {
		idx := circuit.DataAcc*g.steps + c
		a := fwd.Cols.Data.GetAt(idx)
		b := rev.Cols.Data.GetAt(idx)
		if !a.Equals(b) {
			return werr.NewError(werr.ErrTraceConstraintViolation, "Generator.VerifyStepOracle", c,
				fmt.Sprintf("forward/reverse step execution disagree: %s vs %s", a, b))
		}
	}
	return nil
}
