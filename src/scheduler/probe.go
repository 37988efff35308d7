package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/nas-ai/filemanager/src/services/content"
)

// probeTimeout bounds one probe round over all storages.
const probeTimeout = 10 * time.Second

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// StorageProbe periodically probes every registered storage and publishes
// the result as a 0/1 gauge per storage.
type StorageProbe struct {
	mu       sync.Mutex
	runner   *cron.Cron
	registry *content.Registry
	up       *prometheus.GaugeVec
	logger   *logrus.Logger
}

func NewStorageProbe(registry *content.Registry, up *prometheus.GaugeVec, logger *logrus.Logger) *StorageProbe {
	return &StorageProbe{
		registry: registry,
		up:       up,
		logger:   logger,
	}
}

// Start probes once and then on every tick of schedule. Calling Start again
// replaces the running schedule.
func (p *StorageProbe) Start(schedule string) error {
	schedule = strings.TrimSpace(schedule)
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid storage probe schedule: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.RunOnce(context.Background())

	runner := cron.New(cron.WithParser(cronParser))
	if _, err := runner.AddFunc(schedule, func() { p.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("register storage probe: %w", err)
	}
	runner.Start()
	p.runner = runner

	p.logger.WithField("schedule", schedule).Info("storage probe scheduler started")
	return nil
}

// RunOnce probes all storages and updates the gauge.
func (p *StorageProbe) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	results, healthy := p.registry.Probe(ctx, p.logger)

	// storages removed since the last round must not linger
	p.up.Reset()
	for _, r := range results {
		value := 0.0
		if r.Status == content.HealthOK {
			value = 1
		}
		p.up.WithLabelValues(r.Name).Set(value)
	}

	if !healthy {
		p.logger.WithField("storages", len(results)).Warn("storage probe: degraded")
	}
}

// Stop halts the schedule and waits for a running probe to finish.
func (p *StorageProbe) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *StorageProbe) stopLocked() {
	if p.runner == nil {
		return
	}
	ctx := p.runner.Stop()
	<-ctx.Done()
	p.runner = nil
}
