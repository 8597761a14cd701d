package hal

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/buffer"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/wconfig"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

func (c *CPUBackend) hashElems(elems []field.Fp) Digest {
	switch c.suite {
	case wconfig.HashSHA256:
		buf := make([]byte, 4*len(elems))
		for i, e := range elems {
			binary.LittleEndian.PutUint32(buf[i*4:], e.Uint32())
		}
		sum := sha256.Sum256(buf)
		return Digest(sum)
	case wconfig.HashPoseidon:
		return digestFromElems(newPoseidon().hash(elems))
	case wconfig.HashPoseidon2:
		return digestFromElems(newPoseidon2().hash(elems))
	default:
		Fail(werr.ErrBackendFailure, "hashElems", fmt.Sprintf("unknown hash suite %v", c.suite))
		panic("unreachable")
	}
}

func (c *CPUBackend) hashDigestPair(a, b Digest) Digest {
	switch c.suite {
	case wconfig.HashSHA256:
		var buf [64]byte
		copy(buf[:32], a[:])
		copy(buf[32:], b[:])
		sum := sha256.Sum256(buf[:])
		return Digest(sum)
	default:
		elems := append(digestToElems(a), digestToElems(b)...)
		return c.hashElems(elems)
	}
}

// HashRows hashes matrix as a count x size column-major matrix (column
// c living at matrix[c*size : c*size+size]) into size digests of out:
// out[r] = H(matrix[:, r]), one digest per row read as a strided walk
// across columns rather than a contiguous slice.
func (c *CPUBackend) HashRows(out buffer.Buf[Digest], matrix buffer.Buf[field.Fp], count, size int) {
	if out.Size() < size {
		Fail(werr.ErrPreconditionFailure, "HashRows",
			fmt.Sprintf("output buffer size %d smaller than row count %d", out.Size(), size))
	}
	row := make([]field.Fp, count)
	for r := 0; r < size; r++ {
		for col := 0; col < count; col++ {
			row[col] = matrix.GetAt(col*size + r)
		}
		out.SetAt(r, c.hashElems(row))
	}
}

// HashFold hashes adjacent digest pairs of in into half as many
// digests of out, one level of a Merkle tree.
func (c *CPUBackend) HashFold(out, in buffer.Buf[Digest]) {
	n := in.Size()
	if n%2 != 0 {
		Fail(werr.ErrPreconditionFailure, "HashFold", fmt.Sprintf("input size %d is not even", n))
	}
	half := n / 2
	if out.Size() < half {
		Fail(werr.ErrPreconditionFailure, "HashFold", fmt.Sprintf("output buffer size %d smaller than %d", out.Size(), half))
	}
	for i := 0; i < half; i++ {
		out.SetAt(i, c.hashDigestPair(in.GetAt(2*i), in.GetAt(2*i+1)))
	}
}
