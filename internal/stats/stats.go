package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Snapshot is a point-in-time view of the host the bot runs on.
type Snapshot struct {
	DiskTotal   uint64
	DiskUsed    uint64
	DiskFree    uint64
	DiskPercent float64
	CPUPercent  float64
	MemPercent  float64
	MemUsed     uint64
	MemTotal    uint64
	NetSent     uint64
	NetRecv     uint64
	Uptime      time.Duration
}

var startedAt = time.Now()

func Collect(path string) (*Snapshot, error) {
	if strings.TrimSpace(path) == "" {
		path = "/"
	}

	du, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("disk usage: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}

	snap := &Snapshot{
		DiskTotal:   du.Total,
		DiskUsed:    du.Used,
		DiskFree:    du.Free,
		DiskPercent: du.UsedPercent,
		MemPercent:  vm.UsedPercent,
		MemUsed:     vm.Used,
		MemTotal:    vm.Total,
		Uptime:      time.Since(startedAt),
	}

	// A zero interval reuses the numbers since the previous call, which
	// is good enough for a stats command.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if counters, err := net.IOCounters(false); err == nil && len(counters) > 0 {
		snap.NetSent = counters[0].BytesSent
		snap.NetRecv = counters[0].BytesRecv
	}

	return snap, nil
}

func (s *Snapshot) Format() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "🖥 <b>Host</b>\n")
	fmt.Fprintf(b, "⏱ Uptime: %s\n", FormatDuration(s.Uptime))
	fmt.Fprintf(b, "💽 Disk: %s / %s (%.1f%%)\n", HumanBytes(s.DiskUsed), HumanBytes(s.DiskTotal), s.DiskPercent)
	fmt.Fprintf(b, "🧠 RAM: %s / %s (%.1f%%)\n", HumanBytes(s.MemUsed), HumanBytes(s.MemTotal), s.MemPercent)
	fmt.Fprintf(b, "⚡ CPU: %.1f%%\n", s.CPUPercent)
	fmt.Fprintf(b, "📡 Net: ↑%s ↓%s", HumanBytes(s.NetSent), HumanBytes(s.NetRecv))
	return b.String()
}

func HumanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}
