package witnesscore

import (
	"github.com/proteus-zkvm/witness-core/internal/witness-core/wconfig"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/werr"
)

// Error is the structured error type every layer of this module
// returns, re-exported so callers never need to import an internal
// package to type-assert or unwrap one.
type Error = werr.Error

// ErrorCode classifies an Error.
type ErrorCode = werr.ErrorCode

// Error codes, re-exported from werr.
const (
	ErrUnknown                  = werr.ErrUnknown
	ErrTraceConstraintViolation = werr.ErrTraceConstraintViolation
	ErrSortKeyMalformed         = werr.ErrSortKeyMalformed
	ErrPreconditionFailure      = werr.ErrPreconditionFailure
	ErrBackendFailure           = werr.ErrBackendFailure
	ErrAllocationFailure        = werr.ErrAllocationFailure
	ErrInvalidConfig            = werr.ErrInvalidConfig
)

// Config is the construction-time configuration for a witness
// generation run.
type Config = wconfig.Config

// HashSuite selects the hash family the HAL uses for row/fold hashing.
type HashSuite = wconfig.HashSuite

// Hash suites, re-exported from wconfig.
const (
	HashSHA256    = wconfig.HashSHA256
	HashPoseidon  = wconfig.HashPoseidon
	HashPoseidon2 = wconfig.HashPoseidon2
)

// Backend selects where HAL operations execute.
type Backend = wconfig.Backend

// Backends, re-exported from wconfig.
const (
	BackendCPU         = wconfig.BackendCPU
	BackendAccelerator = wconfig.BackendAccelerator
)

// DefaultConfig returns a Config suitable for small traces and tests.
func DefaultConfig() *Config {
	return wconfig.DefaultConfig()
}
