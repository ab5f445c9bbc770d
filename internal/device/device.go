package device

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Info summarizes the hardware the trainer runs on.
type Info struct {
	Brand  string
	Cores  int
	AVX2   bool
	AVX512 bool
}

// Probe inspects the host CPU once at startup.
func Probe() Info {
	return Info{
		Brand:  cpuid.CPU.BrandName,
		Cores:  runtime.NumCPU(),
		AVX2:   cpuid.CPU.Supports(cpuid.AVX2),
		AVX512: cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ),
	}
}

// SIMD names the widest vector extension available.
func (i Info) SIMD() string {
	switch {
	case i.AVX512:
		return "avx512"
	case i.AVX2:
		return "avx2"
	default:
		return "none"
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%d cores, simd %s)", i.Brand, i.Cores, i.SIMD())
}
