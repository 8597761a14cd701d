// Package hal implements the hardware-abstraction layer the outer
// STARK prover drives once witness generation completes: NTT/iNTT,
// element-wise arithmetic, FRI folding, and row/fold hashing, behind a
// Backend interface so a future device-backed implementation can slot
// in without changing call sites. This module ships only CPUBackend.
package hal

import (
	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/wconfig"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// Digest is a fixed-width hash output, sized for the largest suite
// this module supports (SHA-256, 32 bytes); Poseidon/Poseidon2 digests
// are packed into the low bytes of the same width.
type Digest [32]byte

// Fail constructs a *werr.Error of code for op and panics with it.
// spec.md §7 requires HAL operations to fail fast on precondition or
// backend failures rather than return a recoverable error: every
// Backend method calls this instead of returning an error for those
// two codes.
func Fail(code werr.ErrorCode, op, message string) {
	panic(werr.NewOpError(code, op, message))
}

// Backend is the hardware-abstraction surface the witness and
// protocol layers drive without knowing which device executes it.
// Every method panics, via Fail, on precondition or backend failure
// instead of returning an error.
type Backend interface {
	AllocElem(name string, n int) buffer.Buf[field.Fp]
	AllocExtElem(name string, n int) buffer.Buf[field.FpExt]
	AllocDigest(name string, n int) buffer.Buf[Digest]
	AllocU32(name string, n int) buffer.Buf[uint32]

	CopyFromElem(name string, src []field.Fp) buffer.Buf[field.Fp]
	CopyFromExtElem(name string, src []field.FpExt) buffer.Buf[field.FpExt]
	CopyFromDigest(name string, src []Digest) buffer.Buf[Digest]
	CopyFromU32(name string, src []uint32) buffer.Buf[uint32]

	// BatchExpandIntoEvaluateNTT expands count size-sized columns of
	// coeffs into count expandedSize-sized columns of out by zero
	// padding to expandedSize then running a forward NTT on each:
	// natural-order input, bit-reversed-order output.
	BatchExpandIntoEvaluateNTT(out, coeffs buffer.Buf[field.Fp], count, size, expandedSize int)

	// BatchInterpolateNTT runs an inverse NTT in place on count
	// size-sized columns of io: bit-reversed-order input,
	// bit-reversed-order coefficient output (a trailing BatchBitReverse
	// restores natural order).
	BatchInterpolateNTT(io buffer.Buf[field.Fp], count, size int)

	// BatchBitReverse permutes count size-sized columns of io into
	// bit-reversed order in place.
	BatchBitReverse(io buffer.Buf[field.Fp], count, size int)

	// ZkShift multiplies column i's j-th coefficient by shift^j in
	// place, the standard coset shift applied before the zk-masked
	// low-degree extension.
	ZkShift(io buffer.Buf[field.Fp], count, size int, shift field.Fp)

	// MixPolyCoeffs scatters count base-field polynomials of size size
	// into the output buckets combos selects: out[combos[k]*size+i]
	// accumulates mixStart*mix^k * polys[k][i] for every k, i. out must
	// hold (max(combos)+1)*size extension elements.
	MixPolyCoeffs(out buffer.Buf[field.FpExt], polys buffer.Buf[field.Fp], combos []int, count, size int, mixStart, mix field.FpExt)

	EltwiseAddElem(out, a, b buffer.Buf[field.Fp])
	EltwiseCopyElem(out, in buffer.Buf[field.Fp])
	// EltwiseSumExtElem sums count groups of inputSize consecutive
	// extension elements in in into count elements of out.
	EltwiseSumExtElem(out buffer.Buf[field.FpExt], in buffer.Buf[field.FpExt], count, inputSize int)

	// BatchEvaluateAny evaluates poly[which[i]] (a size-element base
	// field column of coeffs, selected out of count such columns) at
	// xs[i], for every i, via Horner's method in the extension field.
	BatchEvaluateAny(coeffs buffer.Buf[field.Fp], count, size int, which []uint32, xs []field.FpExt) []field.FpExt

	// GatherSample walks src with a fixed stride starting at idx:
	// dst[i] = src[idx + i*stride] for i in [0, size).
	GatherSample(src buffer.Buf[field.Fp], idx, size, stride int) buffer.Buf[field.Fp]

	// FriFold folds each of out.Size() groups of FriFoldFactor adjacent
	// extension-field evaluations of in into one element of out via a
	// random linear combination with consecutive powers of mix.
	FriFold(out, in buffer.Buf[field.FpExt], mix field.FpExt)

	// HashRows hashes matrix as a count x size column-major matrix:
	// out[r] = H(matrix[:, r]), the column c of matrix living at
	// matrix[c*size : c*size+size].
	HashRows(out buffer.Buf[Digest], matrix buffer.Buf[field.Fp], count, size int)

	// HashFold hashes adjacent digest pairs of in into half as many
	// digests of out, one Merkle tree level.
	HashFold(out, in buffer.Buf[Digest])

	// PrefixProducts replaces io[i] with the running product
	// io[0]*...*io[i] in place.
	PrefixProducts(io buffer.Buf[field.Fp])

	GetHashSuite() wconfig.HashSuite
	HasUnifiedMemory() bool
}

// CPUBackend is the host-memory implementation of Backend: every
// buffer it allocates is directly addressable by the calling
// goroutine, so View/ViewMut never need a device round trip.
type CPUBackend struct {
	suite wconfig.HashSuite
}

// NewCPUBackend constructs a CPUBackend using suite for HashRows and
// HashFold.
func NewCPUBackend(suite wconfig.HashSuite) *CPUBackend {
	logCPUFeatures()
	return &CPUBackend{suite: suite}
}

func (c *CPUBackend) AllocElem(name string, n int) buffer.Buf[field.Fp] {
	return buffer.Alloc[field.Fp](name, n)
}

func (c *CPUBackend) AllocExtElem(name string, n int) buffer.Buf[field.FpExt] {
	return buffer.Alloc[field.FpExt](name, n)
}

func (c *CPUBackend) AllocDigest(name string, n int) buffer.Buf[Digest] {
	return buffer.Alloc[Digest](name, n)
}

func (c *CPUBackend) AllocU32(name string, n int) buffer.Buf[uint32] {
	return buffer.Alloc[uint32](name, n)
}

func (c *CPUBackend) CopyFromElem(name string, src []field.Fp) buffer.Buf[field.Fp] {
	return buffer.CopyFrom[field.Fp](name, src)
}

func (c *CPUBackend) CopyFromExtElem(name string, src []field.FpExt) buffer.Buf[field.FpExt] {
	return buffer.CopyFrom[field.FpExt](name, src)
}

func (c *CPUBackend) CopyFromDigest(name string, src []Digest) buffer.Buf[Digest] {
	return buffer.CopyFrom[Digest](name, src)
}

func (c *CPUBackend) CopyFromU32(name string, src []uint32) buffer.Buf[uint32] {
	return buffer.CopyFrom[uint32](name, src)
}

func (c *CPUBackend) GetHashSuite() wconfig.HashSuite {
	return c.suite
}

// HasUnifiedMemory is true for the CPU backend: there is no separate
// device address space to read back from.
func (c *CPUBackend) HasUnifiedMemory() bool {
	return true
}
