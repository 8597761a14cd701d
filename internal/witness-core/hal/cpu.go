package hal

import (
	"log"
	"sync"

	"golang.org/x/sys/cpu"
)

// logCPUFeaturesOnce reports the vector extensions this host exposes,
// once per process. This is diagnostic only: every CPUBackend method
// runs the same scalar Go regardless of what is logged here, since this
// module ships no SIMD-specialized NTT butterfly. It exists so an
// operator reading the log can tell whether a future accelerated build
// would have had wide-vector support to target on this machine.
var logCPUFeaturesOnce sync.Once

func logCPUFeatures() {
	logCPUFeaturesOnce.Do(func() {
		log.Printf("hal: cpu features: x86.avx2=%v x86.avx512f=%v arm64.asimd=%v",
			cpu.X86.HasAVX2, cpu.X86.HasAVX512F, cpu.ARM64.HasASIMD)
	})
}
