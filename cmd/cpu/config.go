package main

// Config is the JSON configuration for the CPU module. TLB and cache
// simulation fields (entry counts, replacement policy) are intentionally
// not carried: this kernel's page table is a flat, linear-scan structure
// with no translation cache to simulate, and LRU/clock replacement and
// multi-level paging optimization are out of scope.
type Config struct {
	IPCPU      string `json:"IP_CPU"`
	PortCPU    int    `json:"PUERTO_CPU"`
	IPKernel   string `json:"IP_KERNEL"`
	PortKernel int    `json:"PUERTO_KERNEL"`
	IPMemory   string `json:"IP_MEMORIA"`
	PortMemory int    `json:"PUERTO_MEMORIA"`
	LogLevel   string `json:"LOG_LEVEL"`
	Name       string `json:"NOMBRE_CPU"`
}
