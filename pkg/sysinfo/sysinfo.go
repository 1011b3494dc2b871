package sysinfo

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// Info describes the host a render runs on
type Info struct {
	CPUModel     string
	ClockGHz     float64
	LogicalCores int
	TotalRAMGB   float64
}

// Collect queries CPU and memory information from the operating system
func Collect() (Info, error) {
	cpuInfo, err := cpu.Info()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read CPU info: %w", err)
	}
	if len(cpuInfo) == 0 {
		return Info{}, fmt.Errorf("no CPU information available")
	}

	cores, err := cpu.Counts(true)
	if err != nil || cores <= 0 {
		cores = runtime.NumCPU()
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read memory info: %w", err)
	}

	return Info{
		CPUModel:     cpuInfo[0].ModelName,
		ClockGHz:     cpuInfo[0].Mhz / 1000,
		LogicalCores: cores,
		TotalRAMGB:   float64(memInfo.Total) / (1024 * 1024 * 1024),
	}, nil
}

// String formats the host description for the startup log
func (i Info) String() string {
	model := i.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s @ %.2f GHz, %d logical cores, %.1f GB RAM",
		model, i.ClockGHz, i.LogicalCores, i.TotalRAMGB)
}
