package main

// MemStatPage is one page's entry in a memory-stats snapshot.
type MemStatPage struct {
	VA    int    `json:"va"`
	State string `json:"state"`
	Dirty bool   `json:"dirty"`
	Seq   int64  `json:"seq"`
}

// MemStat is the read-only memory-stats snapshot: counts recomputed from
// the live metadata table (they are not authoritative state on their own),
// plus up to maxPagesInfo page entries.
type MemStat struct {
	PID            int           `json:"pid"`
	NumPagesTotal  int           `json:"num_pages_total"`
	NumResident    int           `json:"num_resident"`
	NumSwapped     int           `json:"num_swapped"`
	NextFifoSeq    int64         `json:"next_fifo_seq"`
	Pages          []MemStatPage `json:"pages"`
}

const maxPagesInfo = 256

// snapshot builds a MemStat from pm. Must be called with pm.mu held.
func snapshot(pm *ProcessMemory) MemStat {
	stat := MemStat{
		PID:           pm.PID,
		NumPagesTotal: (pm.Sz + pm.pageSize - 1) / pm.pageSize,
		NextFifoSeq:   pm.NextFifoSeq,
	}

	for i := range pm.Pages {
		switch pm.Pages[i].State {
		case Resident:
			stat.NumResident++
		case Swapped:
			stat.NumSwapped++
		}
	}

	limit := len(pm.Pages)
	if limit > maxPagesInfo {
		limit = maxPagesInfo
	}
	stat.Pages = make([]MemStatPage, limit)
	for i := 0; i < limit; i++ {
		p := pm.Pages[i]
		stat.Pages[i] = MemStatPage{VA: p.VA, State: p.State.String(), Dirty: p.Dirty, Seq: p.Seq}
	}
	return stat
}
