package sysload

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostSource reads the local machine through gopsutil.
// The CPU figure uses the 1-minute load average and RAM uses available memory.
type HostSource struct{}

// CPUCount returns the number of logical cores.
func (HostSource) CPUCount() (int, error) {
	count, err := cpu.Counts(true)
	if err != nil {
		return 0, fmt.Errorf("cpu counts: %w", err)
	}
	return count, nil
}

// LoadAverage returns the 1-minute load average.
func (HostSource) LoadAverage() (float64, error) {
	avg, err := load.Avg()
	if err != nil {
		return 0, fmt.Errorf("load average: %w", err)
	}
	return avg.Load1, nil
}

// Memory returns total and available memory in bytes.
func (HostSource) Memory() (uint64, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Total, vm.Available, nil
}
