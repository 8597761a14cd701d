package machine

import (
	"testing"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
)

// fixedHints is a trivial HintSource/PreflightTrace stand-in: cycle i
// hints an address/byte that cycles through a small alphabet, so
// Sort actually reorders rows and the run-index columns take more
// than one distinct value.
type fixedHints struct {
	n int
}

func (f fixedHints) Len() int { return f.n }

func (f fixedHints) CtrlRow(cycle int) []field.Fp {
	return []field.Fp{field.New(uint32(cycle)), field.New(uint32(cycle % 3))}
}

func (f fixedHints) Hints(cycle int) circuit.Hints {
	addr := field.New(uint32((cycle / 2) % 4))
	b := field.New(uint32(cycle % 5))
	return circuit.Hints{Addr: addr, Val: field.New(uint32(cycle)), Byte: b}
}

func newContext(n int) (*Context, *circuit.Descriptor) {
	steps := 1
	for steps < n {
		steps *= 2
	}
	if steps == 0 {
		steps = 1
	}
	hints := fixedHints{n: n}
	desc := circuit.Default(hints)
	cols := circuit.Cols{
		Ctrl: buffer.AllocFilled[field.Fp]("ctrl", desc.CtrlSize*steps, func(int) field.Fp { return field.Invalid }),
		IO:   buffer.Alloc[field.Fp]("io", 0),
		Data: buffer.AllocFilled[field.Fp]("data", desc.DataSize*steps, func(int) field.Fp { return field.Invalid }),
	}
	for c := 0; c < n; c++ {
		row := hints.CtrlRow(c)
		for j, v := range row {
			cols.Ctrl.SetAt(j*steps+c, v)
		}
	}
	return &Context{Desc: desc, Cols: cols, Steps: steps}, desc
}

func TestParStepExecMatchesSequential(t *testing.T) {
	const n = 20
	seq, _ := newContext(n)
	for cycle := 0; cycle < n; cycle++ {
		if err := seq.StepExec(cycle); err != nil {
			t.Fatalf("sequential StepExec(%d): %v", cycle, err)
		}
	}

	par, _ := newContext(n)
	if err := par.ParStepExec(n, 4); err != nil {
		t.Fatalf("ParStepExec: %v", err)
	}

	for c := 0; c < n; c++ {
		idx := circuit.DataAcc*par.Steps + c
		got := par.Cols.Data.GetAt(idx)
		want := seq.Cols.Data.GetAt(idx)
		if !got.Equals(want) {
			t.Errorf("cycle %d: parallel acc = %s, sequential acc = %s", c, got, want)
		}
	}
}

func TestStepExecRejectsMissingBack(t *testing.T) {
	ctx, _ := newContext(5)
	if err := ctx.StepExec(3); err == nil {
		t.Fatal("StepExec at cycle 3 with no prior stepping should fail, got nil error")
	}
}

func TestSortThenVerifyMem(t *testing.T) {
	const n = 16
	ctx, _ := newContext(n)
	for c := 0; c < n; c++ {
		if err := ctx.StepExec(c); err != nil {
			t.Fatalf("StepExec(%d): %v", c, err)
		}
	}
	if err := ctx.Sort(SortRAM, n); err != nil {
		t.Fatalf("Sort(SortRAM): %v", err)
	}
	for c := 0; c < n; c++ {
		if err := ctx.StepVerifyMem(c); err != nil {
			t.Fatalf("StepVerifyMem(%d) after sort: %v", c, err)
		}
	}
	var prev field.Fp
	for c := 0; c < n; c++ {
		addr := ctx.Cols.Data.GetAt(circuit.DataAddr*ctx.Steps + c)
		if c > 0 && addr.Uint32() < prev.Uint32() {
			t.Errorf("row %d: addr %s out of order after sort (prev %s)", c, addr, prev)
		}
		prev = addr
	}
}

func TestVerifyMemFailsWithoutSort(t *testing.T) {
	const n = 16
	ctx, _ := newContext(n)
	for c := 0; c < n; c++ {
		if err := ctx.StepExec(c); err != nil {
			t.Fatalf("StepExec(%d): %v", c, err)
		}
	}
	// Reverse the address column so it is guaranteed non-monotone,
	// instead of relying on hint data happening to be unsorted.
	for c := 0; c < n/2; c++ {
		j, k := circuit.DataAddr*ctx.Steps+c, circuit.DataAddr*ctx.Steps+(n-1-c)
		a, b := ctx.Cols.Data.GetAt(j), ctx.Cols.Data.GetAt(k)
		ctx.Cols.Data.SetAt(j, b)
		ctx.Cols.Data.SetAt(k, a)
	}
	var sawErr bool
	for c := 0; c < n; c++ {
		if err := ctx.StepVerifyMem(c); err != nil {
			sawErr = true
			break
		}
	}
	if !sawErr {
		t.Fatal("expected StepVerifyMem to reject a non-monotone address column")
	}
}

func TestTestStepExecuteForwardReverseAgree(t *testing.T) {
	const n = 24
	fwdCtx, _ := newContext(n)
	if err := TestStepExecute(fwdCtx, fixedHints{n: n}, n, true); err != nil {
		t.Fatalf("TestStepExecute(fwd): %v", err)
	}
	revCtx, _ := newContext(n)
	if err := TestStepExecute(revCtx, fixedHints{n: n}, n, false); err != nil {
		t.Fatalf("TestStepExecute(rev): %v", err)
	}
	for c := 0; c < n; c++ {
		idx := circuit.DataAcc*fwdCtx.Steps + c
		got := revCtx.Cols.Data.GetAt(idx)
		want := fwdCtx.Cols.Data.GetAt(idx)
		if !got.Equals(want) {
			t.Errorf("cycle %d: reverse-order acc = %s, forward-order acc = %s", c, got, want)
		}
	}
}

func TestChunkWorkersCoversRangeDisjointly(t *testing.T) {
	ranges := chunkWorkers(17, 4)
	covered := make([]bool, 17)
	for _, r := range ranges {
		for i := r[0]; i < r[1]; i++ {
			if covered[i] {
				t.Fatalf("index %d covered by more than one chunk", i)
			}
			covered[i] = true
		}
	}
	for i, ok := range covered {
		if !ok {
			t.Errorf("index %d not covered by any chunk", i)
		}
	}
}
