// Package witnesscore is the public entry point for the proving-time
// witness and hardware-abstraction core of a zero-knowledge VM prover.
// It wires together the field, buffer, circuit, loader, machine,
// witness, and HAL packages behind a small surface the outer STARK
// prover consumes, following the re-export style of the teacher's
// proteus.go.
package witnesscore
