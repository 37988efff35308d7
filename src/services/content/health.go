package content

import (
	"context"

	"github.com/nas-ai/filemanager/src/drivers/storage"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/sirupsen/logrus"
)

const (
	HealthOK        = "ok"
	HealthUnhealthy = "unhealthy"
)

// StorageHealth is the probe result of one registered storage.
type StorageHealth struct {
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	DiskTotal   uint64  `json:"disk_total,omitempty"`
	DiskUsed    uint64  `json:"disk_used,omitempty"`
	DiskFree    uint64  `json:"disk_free,omitempty"`
	UsedPercent float64 `json:"used_percent,omitempty"`
}

// ProbeStorage checks that the storage root is reachable and, for storages
// on a host directory, reports disk usage.
func ProbeStorage(ctx context.Context, name string, fsys storage.Filesystem, logger *logrus.Logger) StorageHealth {
	result := StorageHealth{Name: name, Status: HealthOK}

	if _, err := fsys.Stat(ctx, "/"); err != nil {
		logger.WithError(err).WithField("storage", name).Error("storage health check failed")
		result.Status = HealthUnhealthy
		return result
	}

	if backed, ok := fsys.(storage.DiskBacked); ok && backed.Root() != "" {
		usage, err := disk.UsageWithContext(ctx, backed.Root())
		if err != nil {
			logger.WithError(err).WithField("storage", name).Warn("disk usage unavailable")
			return result
		}
		result.DiskTotal = usage.Total
		result.DiskUsed = usage.Used
		result.DiskFree = usage.Free
		result.UsedPercent = usage.UsedPercent
	}
	return result
}

// Probe checks every registered storage in registration order. healthy is
// false when any of them failed.
func (r *Registry) Probe(ctx context.Context, logger *logrus.Logger) (results []StorageHealth, healthy bool) {
	healthy = true
	results = make([]StorageHealth, 0)
	for _, name := range r.Names() {
		fsys, err := r.Get(name)
		if err != nil {
			continue // removed concurrently
		}
		probe := ProbeStorage(ctx, name, fsys, logger)
		if probe.Status != HealthOK {
			healthy = false
		}
		results = append(results, probe)
	}
	return results, healthy
}
