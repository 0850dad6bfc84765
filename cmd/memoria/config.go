package main

// Config is the JSON configuration for the memoria module, loaded with
// internal/config.Load at startup.
type Config struct {
	IPMemory   string `json:"IP_MEMORIA"`
	PortMemory int    `json:"PUERTO_MEMORIA"`
	IPKernel   string `json:"IP_KERNEL"`
	PortKernel int    `json:"PUERTO_KERNEL"`
	LogLevel   string `json:"LOG_LEVEL"`

	PageSize       int `json:"TAM_PAGINA"`
	TotalFrames    int `json:"CANTIDAD_MARCOS"`
	MaxProcPages   int `json:"MAX_PROC_PAGES"`
	MaxSwapSlots   int `json:"MAX_SWAP_SLOTS"`
	MemoryDelayMs  int `json:"RETARDO_MEMORIA"`
	SwapDelayMs    int `json:"RETARDO_SWAP"`
	SwapDir        string `json:"SWAP_DIR"`
	ScriptsPath    string `json:"SCRIPTS_PATH"`
}

func (c *Config) pageSize() int {
	if c.PageSize <= 0 {
		return 64
	}
	return c.PageSize
}

func (c *Config) maxProcPages() int {
	if c.MaxProcPages <= 0 {
		return 256
	}
	return c.MaxProcPages
}

func (c *Config) maxSwapSlots() int {
	if c.MaxSwapSlots <= 0 {
		return 1024
	}
	return c.MaxSwapSlots
}
