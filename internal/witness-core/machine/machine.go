// Package machine orchestrates the circuit descriptor's step kernels
// over a trace: sequential and data-parallel stepping, back-injection,
// sort-then-verify, and the forward/reverse step oracle used to check
// that a step kernel's only non-local read is its own back window.
package machine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/trace"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// SortDomain names one of the descriptor's independent sub-table
// key domains.
type SortDomain int

const (
	// SortRAM sorts rows [0, bound) by (data[DataAddr], cycle).
	SortRAM SortDomain = iota
	// SortBytes sorts rows [0, bound) by (data[DataByte], cycle).
	SortBytes
)

// Context bundles the circuit descriptor and the column buffers a
// witness generator steps over.
type Context struct {
	Desc *circuit.Descriptor
	Cols circuit.Cols
	// Steps is the padded trace length (a power of two).
	Steps int
}

// StepExec runs the execute-phase step kernel at cycle.
func (c *Context) StepExec(cycle int) error {
	return c.Desc.StepExec(cycle, c.Steps, c.Cols)
}

// StepVerifyMem runs the RAM-consistency step kernel at cycle. It must
// be called after Sort(SortRAM).
func (c *Context) StepVerifyMem(cycle int) error {
	return c.Desc.StepVerifyMem(cycle, c.Steps, c.Cols)
}

// StepVerifyBytes runs the byte-lookup step kernel at cycle. It must
// be called after Sort(SortBytes).
func (c *Context) StepVerifyBytes(cycle int) error {
	return c.Desc.StepVerifyBytes(cycle, c.Steps, c.Cols)
}

// InjectExecBacks pre-populates the back cell StepExec(cycle) will
// read, without running the kernel itself.
func (c *Context) InjectExecBacks(cycle int) error {
	return c.Desc.InjectExecBacks(cycle, c.Steps, c.Cols)
}

// InjectVerifyMemBacks pre-populates the back cell StepVerifyMem(cycle)
// will read.
func (c *Context) InjectVerifyMemBacks(cycle int) error {
	return c.Desc.InjectVerifyMemBacks(cycle, c.Steps, c.Cols)
}

// InjectVerifyBytesBacks pre-populates the back cell
// StepVerifyBytes(cycle) will read.
func (c *Context) InjectVerifyBytesBacks(cycle int) error {
	return c.Desc.InjectVerifyBytesBacks(cycle, c.Steps, c.Cols)
}

// chunkWorkers splits [0, bound) into at most numWorkers contiguous,
// non-overlapping ranges, the same chunking core.ParallelBatchInversion
// uses, so that concurrent step invocations never write the same row.
func chunkWorkers(bound, numWorkers int) [][2]int {
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunkSize := (bound + numWorkers - 1) / numWorkers
	if chunkSize < 1 {
		chunkSize = 1
	}
	var ranges [][2]int
	for start := 0; start < bound; start += chunkSize {
		end := start + chunkSize
		if end > bound {
			end = bound
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

// runParallel fans step out across goroutines over [0, bound), one
// worker per chunk, and returns the first error any worker reports.
// Safe whenever step's writes at row i never depend on or alias
// step's writes at row j != i within the same call — the contract
// inject_*_backs establishes before a parallel pass begins.
func runParallel(bound, numWorkers int, step func(row int) error) error {
	if bound <= 0 {
		return nil
	}
	ranges := chunkWorkers(bound, numWorkers)
	var wg sync.WaitGroup
	errs := make([]error, len(ranges))
	for i, r := range ranges {
		wg.Add(1)
		go func(idx int, start, end int) {
			defer wg.Done()
			for row := start; row < end; row++ {
				if err := step(row); err != nil {
					errs[idx] = err
					return
				}
			}
		}(i, r[0], r[1])
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParStepExec runs InjectExecBacks sequentially over [0, bound) first
// (each injection depends on the previous row's already-injected
// cell, per spec.md §4.E), then fans StepExec out across numWorkers
// goroutines, since every back cell StepExec reads is now materialized
// and each row's writes are disjoint.
func (c *Context) ParStepExec(bound int, numWorkers int) error {
	for cycle := 0; cycle < bound; cycle++ {
		if err := c.InjectExecBacks(cycle); err != nil {
			return err
		}
	}
	return runParallel(bound, numWorkers, c.StepExec)
}

// ParStepVerifyMem injects RAM run-index backs sequentially, then fans
// StepVerifyMem out in parallel. Callers must Sort(SortRAM) first.
func (c *Context) ParStepVerifyMem(bound int, numWorkers int) error {
	for cycle := 0; cycle < bound; cycle++ {
		if err := c.InjectVerifyMemBacks(cycle); err != nil {
			return err
		}
	}
	return runParallel(bound, numWorkers, c.StepVerifyMem)
}

// ParStepVerifyBytes injects byte run-index backs sequentially, then
// fans StepVerifyBytes out in parallel. Callers must Sort(SortBytes)
// first.
func (c *Context) ParStepVerifyBytes(bound int, numWorkers int) error {
	for cycle := 0; cycle < bound; cycle++ {
		if err := c.InjectVerifyBytesBacks(cycle); err != nil {
			return err
		}
	}
	return runParallel(bound, numWorkers, c.StepVerifyBytes)
}

// DefaultWorkers returns runtime.NumCPU(), the worker count the
// witness generator uses when the caller does not override it.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Sort permutes rows [0, bound) of the data buffer by the given
// domain's key column, breaking ties by original row order (a stable
// sort), so that StepVerifyMem/StepVerifyBytes can assume a monotone
// key. It sorts every data column together so hint columns stay
// aligned with their key.
func (c *Context) Sort(domain SortDomain, bound int) error {
	var keyCol int
	switch domain {
	case SortRAM:
		keyCol = circuit.DataAddr
	case SortBytes:
		keyCol = circuit.DataByte
	default:
		return werr.NewOpError(werr.ErrPreconditionFailure, "Context.Sort", "unknown sort domain")
	}

	rows := make([]int, bound)
	for i := range rows {
		rows[i] = i
	}
	keys := make([]uint32, bound)
	for i := 0; i < bound; i++ {
		v := c.Cols.Data.GetAt(keyCol*c.Steps + i)
		if !v.IsValid() {
			return werr.NewError(werr.ErrSortKeyMalformed, "Context.Sort", i,
				fmt.Sprintf("sort key column %d row %d has not been written", keyCol, i))
		}
		keys[i] = v.Uint32()
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return keys[rows[a]] < keys[rows[b]]
	})

	reordered := make([]field.Fp, bound)
	for col := 0; col < c.Desc.DataSize; col++ {
		base := col * c.Steps
		for dst, src := range rows {
			reordered[dst] = c.Cols.Data.GetAt(base + src)
		}
		for i := 0; i < bound; i++ {
			c.Cols.Data.SetAt(base+i, reordered[i])
		}
	}
	return nil
}

// TestStepExecute runs the back-injection pre-pass over [0, bound) in
// ascending order (materializing every back cell), then StepExec over
// every cycle in ascending order when fwd is true or descending order
// when fwd is false, using the already-injected cells — the oracle
// spec.md's testable property 4 compares across the two orders,
// mirroring witgen.rs's test_step_execute(is_fwd).
func TestStepExecute(c *Context, tr trace.PreflightTrace, bound int, fwd bool) error {
	for cycle := 0; cycle < bound; cycle++ {
		if err := c.InjectExecBacks(cycle); err != nil {
			return err
		}
	}
	if fwd {
		for cycle := 0; cycle < bound; cycle++ {
			if err := c.StepExec(cycle); err != nil {
				return err
			}
		}
		return nil
	}
	for cycle := bound - 1; cycle >= 0; cycle-- {
		if err := c.StepExec(cycle); err != nil {
			return err
		}
	}
	return nil
}
