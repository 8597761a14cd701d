package hal

import (
	"fmt"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// EltwiseAddElem writes out[i] = a[i] + b[i] for every i.
func (c *CPUBackend) EltwiseAddElem(out, a, b buffer.Buf[field.Fp]) {
	n := a.Size()
	if b.Size() != n || out.Size() < n {
		Fail(werr.ErrPreconditionFailure, "EltwiseAddElem",
			fmt.Sprintf("size mismatch: a=%d b=%d out=%d", n, b.Size(), out.Size()))
	}
	for i := 0; i < n; i++ {
		out.SetAt(i, a.GetAt(i).Add(b.GetAt(i)))
	}
}

// EltwiseCopyElem writes out[i] = in[i] for every i.
func (c *CPUBackend) EltwiseCopyElem(out, in buffer.Buf[field.Fp]) {
	n := in.Size()
	if out.Size() < n {
		Fail(werr.ErrPreconditionFailure, "EltwiseCopyElem",
			fmt.Sprintf("output size %d smaller than input size %d", out.Size(), n))
	}
	for i := 0; i < n; i++ {
		out.SetAt(i, in.GetAt(i))
	}
}

// EltwiseSumExtElem sums count groups of inputSize consecutive
// extension elements of in into count elements of out.
func (c *CPUBackend) EltwiseSumExtElem(out buffer.Buf[field.FpExt], in buffer.Buf[field.FpExt], count, inputSize int) {
	if in.Size() < count*inputSize || out.Size() < count {
		Fail(werr.ErrPreconditionFailure, "EltwiseSumExtElem",
			fmt.Sprintf("size mismatch: in=%d (want %d) out=%d (want %d)", in.Size(), count*inputSize, out.Size(), count))
	}
	for g := 0; g < count; g++ {
		acc := field.ExtZero
		base := g * inputSize
		for i := 0; i < inputSize; i++ {
			acc = acc.Add(in.GetAt(base + i))
		}
		out.SetAt(g, acc)
	}
}

// GatherSample walks src with a fixed stride starting at idx, the
// single strided-read access pattern a FRI query uses to pull one
// evaluation point out of an interleaved codeword:
// dst[i] = src[idx + i*stride] for i in [0, size).
func (c *CPUBackend) GatherSample(src buffer.Buf[field.Fp], idx, size, stride int) buffer.Buf[field.Fp] {
	if idx < 0 {
		Fail(werr.ErrPreconditionFailure, "GatherSample", fmt.Sprintf("negative start index %d", idx))
	}
	last := idx
	if size > 0 {
		last = idx + (size-1)*stride
	}
	if size > 0 && (last < 0 || last >= src.Size()) {
		Fail(werr.ErrPreconditionFailure, "GatherSample",
			fmt.Sprintf("index %d out of range [0, %d) for idx=%d size=%d stride=%d", last, src.Size(), idx, size, stride))
	}
	out := buffer.Alloc[field.Fp]("gather-sample", size)
	for i := 0; i < size; i++ {
		out.SetAt(i, src.GetAt(idx+i*stride))
	}
	return out
}

// BatchEvaluateAny evaluates poly[which[i]] (one of count size-element
// base-field columns of coeffs) at xs[i] via Horner's method in the
// extension field, for every i.
func (c *CPUBackend) BatchEvaluateAny(coeffs buffer.Buf[field.Fp], count, size int, which []uint32, xs []field.FpExt) []field.FpExt {
	if len(which) != len(xs) {
		Fail(werr.ErrPreconditionFailure, "BatchEvaluateAny",
			fmt.Sprintf("which has %d entries, xs has %d", len(which), len(xs)))
	}
	out := make([]field.FpExt, len(which))
	for i, w := range which {
		if int(w) >= count {
			Fail(werr.ErrPreconditionFailure, "BatchEvaluateAny",
				fmt.Sprintf("which[%d] = %d exceeds column count %d", i, w, count))
		}
		base := int(w) * size
		acc := field.ExtZero
		for j := size - 1; j >= 0; j-- {
			acc = acc.Mul(xs[i]).Add(field.FromBase(coeffs.GetAt(base + j)))
		}
		out[i] = acc
	}
	return out
}
