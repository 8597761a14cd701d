package hal

import (
	"fmt"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// log2Exact returns log2(n) if n is a power of two, or -1 otherwise.
func log2Exact(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		return -1
	}
	bits := 0
	for n > 1 {
		n >>= 1
		bits++
	}
	return bits
}

// bitReverse returns x with its low width bits reversed.
func bitReverse(x, width int) int {
	r := 0
	for i := 0; i < width; i++ {
		r = (r << 1) | (x & 1)
		x >>= 1
	}
	return r
}

// nttInPlace runs an unpermuted, decreasing-size radix-2
// decimation-in-frequency butterfly network over col (length n, a
// power of two) using root as the primitive n-th root of unity: no
// bit-reversal permutation runs inside the network, so natural-order
// input produces bit-reversed-order output. inverseNTT first permutes
// its bit-reversed input back to natural order and then runs the same
// network with the reciprocal root (plus a final 1/n scale), so
// forward+inverse reconstructs the bit-reversed original — a trailing
// BatchBitReverse is what restores natural order, matching spec.md's
// literal forward/inverse/bit-reverse round-trip scenario.
func nttInPlace(col []field.Fp, root field.Fp) {
	n := len(col)
	for size := n; size >= 2; size >>= 1 {
		half := size / 2
		stepW := root.Pow(uint64(n / size))
		for start := 0; start < n; start += size {
			w := field.One
			for k := 0; k < half; k++ {
				u := col[start+k]
				v := col[start+k+half]
				col[start+k] = u.Add(v)
				col[start+k+half] = u.Sub(v).Mul(w)
				w = w.Mul(stepW)
			}
		}
	}
}

func forwardNTT(op string, col []field.Fp) {
	n := len(col)
	po2 := log2Exact(n)
	if po2 < 0 {
		Fail(werr.ErrPreconditionFailure, op, fmt.Sprintf("NTT size %d is not a power of two", n))
	}
	root, err := field.RootOfUnity(po2)
	if err != nil {
		Fail(werr.ErrBackendFailure, op, err.Error())
	}
	nttInPlace(col, root)
}

func inverseNTT(op string, col []field.Fp) {
	n := len(col)
	po2 := log2Exact(n)
	if po2 < 0 {
		Fail(werr.ErrPreconditionFailure, op, fmt.Sprintf("NTT size %d is not a power of two", n))
	}
	root, err := field.RootOfUnity(po2)
	if err != nil {
		Fail(werr.ErrBackendFailure, op, err.Error())
	}
	rootInv, err := root.Inv()
	if err != nil {
		Fail(werr.ErrBackendFailure, op, err.Error())
	}
	for i := range col {
		if j := bitReverse(i, po2); j > i {
			col[i], col[j] = col[j], col[i]
		}
	}
	nttInPlace(col, rootInv)
	nInv, err := field.FromUint64(uint64(n)).Inv()
	if err != nil {
		Fail(werr.ErrBackendFailure, op, err.Error())
	}
	for i := range col {
		col[i] = col[i].Mul(nInv)
	}
}

// BatchExpandIntoEvaluateNTT expands each of count size-length columns
// of coeffs by zero-padding to expandedSize and running a forward NTT
// over natural-order input, writing the bit-reversed-order evaluations
// into the matching column of out.
func (c *CPUBackend) BatchExpandIntoEvaluateNTT(out, coeffs buffer.Buf[field.Fp], count, size, expandedSize int) {
	if expandedSize < size {
		Fail(werr.ErrPreconditionFailure, "BatchExpandIntoEvaluateNTT",
			fmt.Sprintf("expandedSize %d smaller than size %d", expandedSize, size))
	}
	scratch := make([]field.Fp, expandedSize)
	for col := 0; col < count; col++ {
		for i := range scratch {
			scratch[i] = field.Zero
		}
		base := col * size
		for i := 0; i < size; i++ {
			scratch[i] = coeffs.GetAt(base + i)
		}
		forwardNTT("BatchExpandIntoEvaluateNTT", scratch)
		outBase := col * expandedSize
		for i, v := range scratch {
			out.SetAt(outBase+i, v)
		}
	}
}

// BatchInterpolateNTT runs an inverse NTT in place on each of count
// size-length columns of io: bit-reversed-order evaluations in,
// bit-reversed-order coefficients out (the input is permuted to natural
// order before the unpermuted network runs); a caller that needs
// natural-order coefficients runs BatchBitReverse afterward.
func (c *CPUBackend) BatchInterpolateNTT(io buffer.Buf[field.Fp], count, size int) {
	scratch := make([]field.Fp, size)
	for col := 0; col < count; col++ {
		base := col * size
		for i := range scratch {
			scratch[i] = io.GetAt(base + i)
		}
		inverseNTT("BatchInterpolateNTT", scratch)
		for i, v := range scratch {
			io.SetAt(base+i, v)
		}
	}
}

// BatchBitReverse permutes each of count size-length columns of io
// into bit-reversed order in place.
func (c *CPUBackend) BatchBitReverse(io buffer.Buf[field.Fp], count, size int) {
	width := log2Exact(size)
	if width < 0 {
		Fail(werr.ErrPreconditionFailure, "BatchBitReverse", fmt.Sprintf("bit-reverse size %d is not a power of two", size))
	}
	for col := 0; col < count; col++ {
		base := col * size
		for i := 0; i < size; i++ {
			j := bitReverse(i, width)
			if j > i {
				vi, vj := io.GetAt(base+i), io.GetAt(base+j)
				io.SetAt(base+i, vj)
				io.SetAt(base+j, vi)
			}
		}
	}
}

// ZkShift multiplies column i's j-th coefficient by shift^j in place.
func (c *CPUBackend) ZkShift(io buffer.Buf[field.Fp], count, size int, shift field.Fp) {
	for col := 0; col < count; col++ {
		base := col * size
		power := field.One
		for i := 0; i < size; i++ {
			io.SetAt(base+i, io.GetAt(base+i).Mul(power))
			power = power.Mul(shift)
		}
	}
}

// MixPolyCoeffs scatters count input columns of size size into the
// output buckets combos selects: out[combos[k]*size+i] accumulates
// mixStart*mix^k * polys[k][i] for every k, i. out is zeroed first and
// must hold (max(combos)+1)*size extension elements; combos must have
// length count.
func (c *CPUBackend) MixPolyCoeffs(out buffer.Buf[field.FpExt], polys buffer.Buf[field.Fp], combos []int, count, size int, mixStart, mix field.FpExt) {
	if len(combos) != count {
		Fail(werr.ErrPreconditionFailure, "MixPolyCoeffs",
			fmt.Sprintf("combos length %d does not match count %d", len(combos), count))
	}
	numBuckets := 0
	for _, bucket := range combos {
		if bucket < 0 {
			Fail(werr.ErrPreconditionFailure, "MixPolyCoeffs", fmt.Sprintf("negative combo bucket %d", bucket))
		}
		if bucket+1 > numBuckets {
			numBuckets = bucket + 1
		}
	}
	if out.Size() < numBuckets*size {
		Fail(werr.ErrPreconditionFailure, "MixPolyCoeffs",
			fmt.Sprintf("output buffer size %d smaller than %d buckets of %d", out.Size(), numBuckets, size))
	}
	for i := 0; i < numBuckets*size; i++ {
		out.SetAt(i, field.ExtZero)
	}
	power := mixStart
	for k := 0; k < count; k++ {
		base := combos[k] * size
		for i := 0; i < size; i++ {
			v := polys.GetAt(k*size + i)
			out.SetAt(base+i, out.GetAt(base+i).Add(power.MulBase(v)))
		}
		power = power.Mul(mix)
	}
}

// PrefixProducts replaces io[i] with the running product
// io[0]*...*io[i] in place.
func (c *CPUBackend) PrefixProducts(io buffer.Buf[field.Fp]) {
	n := io.Size()
	if n == 0 {
		return
	}
	acc := io.GetAt(0)
	for i := 1; i < n; i++ {
		acc = acc.Mul(io.GetAt(i))
		io.SetAt(i, acc)
	}
}

// FriFoldFactor is the number of adjacent extension-field evaluations
// FriFold combines into one, matching risc0's FRI_FOLD constant
// (cuda.rs: assert_eq!(input.size(), output.size() * FRI_FOLD)).
const FriFoldFactor = 4

// FriFold folds every FriFoldFactor adjacent extension-field
// evaluations of in into one element of out, via a random linear
// combination with consecutive powers of mix:
// out[i] = sum_j in[i*FriFoldFactor+j] * mix^j.
func (c *CPUBackend) FriFold(out, in buffer.Buf[field.FpExt], mix field.FpExt) {
	n := in.Size()
	if n%FriFoldFactor != 0 {
		Fail(werr.ErrPreconditionFailure, "FriFold", fmt.Sprintf("input size %d is not a multiple of %d", n, FriFoldFactor))
	}
	groups := n / FriFoldFactor
	if out.Size() < groups {
		Fail(werr.ErrPreconditionFailure, "FriFold", fmt.Sprintf("output buffer size %d smaller than %d", out.Size(), groups))
	}
	var powers [FriFoldFactor]field.FpExt
	powers[0] = field.ExtOne
	for j := 1; j < FriFoldFactor; j++ {
		powers[j] = powers[j-1].Mul(mix)
	}
	for i := 0; i < groups; i++ {
		acc := field.ExtZero
		for j := 0; j < FriFoldFactor; j++ {
			acc = acc.Add(in.GetAt(i*FriFoldFactor + j).Mul(powers[j]))
		}
		out.SetAt(i, acc)
	}
}
