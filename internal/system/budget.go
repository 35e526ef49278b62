package system

import (
	"log"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// bytesPerWorker is a rough upper bound on the memory one background frame
// job holds: a decoded 4K RGBA frame plus its scaled copy.
const bytesPerWorker = 64 << 20

// WorkerBudget returns how many background frame jobs (thumbnails, previews)
// may run at once without starving playback: physical cores minus one,
// further capped by available memory, never below one and never above max.
func WorkerBudget(max int) int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	n--

	if vm, err := mem.VirtualMemory(); err == nil {
		byMem := int(vm.Available / bytesPerWorker)
		if byMem < n {
			n = byMem
		}
	} else {
		log.Printf("[!] Could not read memory stats: %v", err)
	}

	if max > 0 && n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}
