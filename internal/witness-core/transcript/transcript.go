// Package transcript implements the Fiat-Shamir channel the outer
// prover and verifier use to turn interactive challenges into a
// non-interactive transcript, adapted from the teacher's
// internal/vybium-starks-vm/utils/channel.go: sending data updates a
// running hash state, and every challenge draw both derives from and
// advances that state.
package transcript

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
)

// Channel is a Fiat-Shamir transcript over SHA3-256, the hash family
// the teacher's Channel defaults to.
type Channel struct {
	state []byte
	log   []string
}

// New creates an empty channel.
func New() *Channel {
	return &Channel{state: []byte{0}, log: make([]string, 0, 64)}
}

// Send absorbs data into the channel state and records it in the
// transcript log.
func (c *Channel) Send(data []byte) {
	c.log = append(c.log, fmt.Sprintf("send:%s", hex.EncodeToString(data)))
	c.state = hash(append(append([]byte(nil), c.state...), data...))
}

// SendDigest absorbs a Merkle root or other fixed-width commitment.
func (c *Channel) SendDigest(d [32]byte) {
	c.Send(d[:])
}

// ReceiveFp draws a pseudo-random base-field challenge from the
// current state and advances the state, the field-native analogue of
// the teacher's ReceiveRandomBFieldElement.
func (c *Channel) ReceiveFp() field.Fp {
	v := field.FromUint64(beUint64(c.state))
	c.log = append(c.log, fmt.Sprintf("receive:%s", v))
	c.state = hash(c.state)
	return v
}

// ReceiveExt draws four chained Fp challenges and assembles them into
// an extension-field challenge, the granularity FRI's folding
// challenge and DEEP composition coefficients need.
func (c *Channel) ReceiveExt() field.FpExt {
	var coeffs [4]field.Fp
	for i := range coeffs {
		coeffs[i] = c.ReceiveFp()
	}
	return field.NewExt(coeffs[0], coeffs[1], coeffs[2], coeffs[3])
}

// ReceiveIndex draws a pseudo-random index in [0, bound).
func (c *Channel) ReceiveIndex(bound int) int {
	if bound <= 0 {
		return 0
	}
	v := beUint64(c.state)
	c.log = append(c.log, fmt.Sprintf("receiveIndex:%d", v%uint64(bound)))
	c.state = hash(c.state)
	return int(v % uint64(bound))
}

// State returns a copy of the current channel state.
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Log returns a copy of the transcript log, in send/receive order.
func (c *Channel) Log() []string {
	return append([]string(nil), c.log...)
}

func hash(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
