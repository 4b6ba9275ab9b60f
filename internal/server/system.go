package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/kquant/dashboard/internal/view"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemHandlers reports on the gateway process and its host
type SystemHandlers struct {
	started time.Time
	dataDir string
	log     zerolog.Logger
}

// NewSystemHandlers creates the system status handlers
func NewSystemHandlers(started time.Time, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		started: started,
		dataDir: dataDir,
		log:     log.With().Str("handler", "system").Logger(),
	}
}

// SystemStatus is the /api/system/status payload
type SystemStatus struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	Goroutines     int     `json:"goroutines"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryPercent  float64 `json:"memory_percent"`
	ProcessCPU     float64 `json:"process_cpu_percent"`
	ProcessRSSMB   float64 `json:"process_rss_mb"`
	DataDirFreeMB  float64 `json:"data_dir_free_mb,omitempty"`
	DataDirUsedPct float64 `json:"data_dir_used_percent,omitempty"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := SystemStatus{
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
	}

	// Short sample window keeps the call fast
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		status.CPUPercent = cpuPercent[0]
	}

	if memStat, err := mem.VirtualMemory(); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	} else {
		status.MemoryPercent = memStat.UsedPercent
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err != nil {
		h.log.Warn().Err(err).Msg("Failed to inspect own process")
	} else {
		if pct, err := proc.CPUPercent(); err == nil {
			status.ProcessCPU = pct
		}
		if info, err := proc.MemoryInfo(); err == nil {
			status.ProcessRSSMB = float64(info.RSS) / 1024 / 1024
		}
	}

	if h.dataDir != "" {
		if usage, err := disk.Usage(h.dataDir); err != nil {
			h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to get disk usage")
		} else {
			status.DataDirFreeMB = float64(usage.Free) / 1024 / 1024
			status.DataDirUsedPct = usage.UsedPercent
		}
	}

	view.WriteData(w, http.StatusOK, status, h.log)
}
