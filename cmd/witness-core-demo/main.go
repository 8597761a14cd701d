// Command witness-core-demo drives the full witness-generation and
// HAL pipeline end to end against a toy program read from stdin,
// adapted from the teacher's cmd/vybium-vm-prover stdin/stdout CLI
// shape (bufio.Scanner over JSON lines in, a single JSON result out,
// progress logged to stderr).
package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	witnesscore "github.com/proteus-zkvm/witness-core/pkg/witness-core"

	"github.com/proteus-zkvm/witness-core/internal/witness-core/circuit"
	"github.com/proteus-zkvm/witness-core/internal/witness-core/field"
)

// ProgramInput is the first and only line of stdin: a sequence of
// opcodes to trace, plus optional knobs mirroring the teacher's
// claim/program/non_determinism line protocol, collapsed to what a
// single-table toy descriptor needs.
type ProgramInput struct {
	Opcodes   []uint64 `json:"opcodes"`
	IO        []uint64 `json:"io,omitempty"`
	Po2       int      `json:"po2,omitempty"`
	HashSuite string   `json:"hash_suite,omitempty"`
}

// Result is the single JSON line written to stdout.
type Result struct {
	Steps     int    `json:"steps"`
	LastCycle int    `json:"last_cycle"`
	HashSuite string `json:"hash_suite"`
	Root      string `json:"root"`
}

// programTrace adapts a flat opcode list into a trace.PreflightTrace:
// cycle i's control row is (pc=i, op=opcodes[i]), and its hints reuse
// the opcode as both the RAM value and the byte-lookup operand so a
// single input stream exercises every column of circuit.Default.
// Padding cycles past the last opcode repeat the final cycle's hints,
// as the loader repeats the final control row.
type programTrace struct {
	opcodes []field.Fp
}

func (t programTrace) Len() int { return len(t.opcodes) }

func (t programTrace) CtrlRow(cycle int) []field.Fp {
	return []field.Fp{field.New(uint32(cycle)), t.opcodes[cycle]}
}

func (t programTrace) Hints(cycle int) circuit.Hints {
	if cycle >= len(t.opcodes) {
		cycle = len(t.opcodes) - 1
	}
	op := t.opcodes[cycle]
	return circuit.Hints{
		Addr: field.New(uint32(cycle)),
		Val:  op,
		Byte: field.New(op.Uint32() & 0xff),
	}
}

func main() {
	// HAL operations fail fast by panicking (hal.Fail) rather than
	// returning an error; this recovers at the top level so a
	// precondition or backend failure still prints a descriptive
	// message and exits non-zero instead of dumping a Go stack trace.
	defer func() {
		if r := recover(); r != nil {
			fatal(fmt.Sprintf("%v", r))
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		fatal("failed to read program")
	}
	var input ProgramInput
	if err := json.Unmarshal(scanner.Bytes(), &input); err != nil {
		fatal(fmt.Sprintf("failed to parse program: %v", err))
	}
	if len(input.Opcodes) == 0 {
		fatal("program must have at least one opcode")
	}

	po2 := input.Po2
	if po2 == 0 {
		po2 = smallestPo2Above(len(input.Opcodes))
	}

	suite, err := parseHashSuite(input.HashSuite)
	if err != nil {
		fatal(err.Error())
	}

	tr := programTrace{opcodes: convertOpcodes(input.Opcodes)}

	logStderr(fmt.Sprintf("building descriptor for %d opcodes, po2=%d, suite=%s", len(input.Opcodes), po2, suite))
	desc := witnesscore.DefaultDescriptor(tr)

	cfg := witnesscore.DefaultConfig().WithPo2(po2).WithHashSuite(suite)
	gen, err := witnesscore.NewGenerator(cfg, convertOpcodes(input.IO), desc)
	if err != nil {
		fatal(fmt.Sprintf("failed to create generator: %v", err))
	}

	logStderr("generating witness...")
	lastCycle, err := gen.Execute(tr)
	if err != nil {
		fatal(fmt.Sprintf("witness generation failed: %v", err))
	}
	logStderr(fmt.Sprintf("witness generation completed, last_cycle=%d", lastCycle))

	if err := gen.VerifyStepOracle(tr, lastCycle); err != nil {
		fatal(fmt.Sprintf("step oracle disagreement: %v", err))
	}

	backend, err := witnesscore.NewHALBackend(cfg)
	if err != nil {
		fatal(fmt.Sprintf("failed to create HAL backend: %v", err))
	}

	steps := gen.Steps()
	cols := gen.Cols()

	// cols.Data is column-major (column*steps+cycle), exactly the
	// layout HashRows reads directly: no caller-side transpose needed.
	digests := backend.AllocDigest("rows", steps)
	backend.HashRows(digests, cols.Data, circuit.DataSizeDefault, steps)

	level := digests
	for level.Size() > 1 {
		next := backend.AllocDigest(fmt.Sprintf("level-%d", level.Size()/2), level.Size()/2)
		backend.HashFold(next, level)
		level = next
	}
	root := level.GetAt(0)

	logStderr("proof-of-work surface generated successfully")

	result := Result{
		Steps:     steps,
		LastCycle: lastCycle,
		HashSuite: suite.String(),
		Root:      hex.EncodeToString(root[:]),
	}
	out, err := json.Marshal(result)
	if err != nil {
		fatal(fmt.Sprintf("failed to serialize result: %v", err))
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}

func convertOpcodes(values []uint64) []field.Fp {
	out := make([]field.Fp, len(values))
	for i, v := range values {
		out[i] = field.FromUint64(v)
	}
	return out
}

func smallestPo2Above(n int) int {
	po2 := 1
	for (1 << uint(po2)) <= n {
		po2++
	}
	return po2
}

func parseHashSuite(name string) (witnesscore.HashSuite, error) {
	switch name {
	case "", "poseidon2":
		return witnesscore.HashPoseidon2, nil
	case "poseidon":
		return witnesscore.HashPoseidon, nil
	case "sha256":
		return witnesscore.HashSHA256, nil
	default:
		return 0, fmt.Errorf("unknown hash_suite: %s", name)
	}
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "witness-core-demo:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
