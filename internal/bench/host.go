package bench

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// HostInfo identifies the machine a benchmark ran on.
type HostInfo struct {
	Brand    string   // CPU brand string
	Arch     string   // GOARCH
	Cores    int      // Physical cores
	Threads  int      // Logical cores
	Hz       int64    // Detected base frequency, 0 if unknown
	Features []string // Integer SIMD features relevant to int8 dot products
}

var simdFeatures = []cpuid.FeatureID{
	cpuid.SSE2, cpuid.SSSE3, cpuid.SSE4, cpuid.AVX2, cpuid.AVX512BW, cpuid.AVX512VNNI, cpuid.AVXVNNI,
	cpuid.ASIMD, cpuid.ASIMDDP,
}

// DetectHost reads the host CPU description.
func DetectHost() HostInfo {
	info := HostInfo{
		Brand:   cpuid.CPU.BrandName,
		Arch:    runtime.GOARCH,
		Cores:   cpuid.CPU.PhysicalCores,
		Threads: cpuid.CPU.LogicalCores,
		Hz:      cpuid.CPU.Hz,
	}
	if info.Brand == "" {
		info.Brand = "unknown"
	}
	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f) {
			info.Features = append(info.Features, f.String())
		}
	}
	return info
}

// String implements fmt.Stringer.
func (h HostInfo) String() string {
	s := fmt.Sprintf("%s (%s, %d cores/%d threads", h.Brand, h.Arch, h.Cores, h.Threads)
	if h.Hz > 0 {
		s += fmt.Sprintf(", %.2f GHz", float64(h.Hz)/1e9)
	}
	s += ")"
	if len(h.Features) > 0 {
		s += fmt.Sprintf(" %v", h.Features)
	}
	return s
}
