package export

import (
	"context"
	"fmt"
	"sync"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rileyhilliard/adbdial/internal/config"
	"github.com/rileyhilliard/adbdial/internal/dial"
	"github.com/rileyhilliard/adbdial/internal/errors"
	"github.com/rileyhilliard/adbdial/internal/logger"
)

// Measurement is the InfluxDB measurement each frame is written to.
const Measurement = "adbdial_status"

// InfluxDB writes one point per frame to an InfluxDB 2.x bucket.
type InfluxDB struct {
	cfg config.InfluxDBConfig
	log logger.Logger

	mu     sync.RWMutex
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

// NewInfluxDB creates the sink. Nothing connects until Initialize.
func NewInfluxDB(cfg config.InfluxDBConfig, log logger.Logger) *InfluxDB {
	return &InfluxDB{cfg: cfg, log: log}
}

func (b *InfluxDB) Name() string {
	return "influxdb"
}

// Initialize connects and checks the server reports healthy.
func (b *InfluxDB) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	client := influxdb2.NewClientWithOptions(b.cfg.URL, b.cfg.Token, influxdb2.DefaultOptions())
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Can't reach InfluxDB at %s", b.cfg.URL),
			"Check metrics.influxdb.url and that the server is running")
	}
	if health.Status != "pass" {
		client.Close()
		return errors.New(errors.ErrExport,
			fmt.Sprintf("InfluxDB at %s is unhealthy (%s)", b.cfg.URL, health.Status),
			"Check the InfluxDB server logs")
	}

	b.client = client
	b.writer = client.WriteAPIBlocking(b.cfg.Org, b.cfg.Bucket)

	version := "unknown"
	if health.Version != nil {
		version = *health.Version
	}
	b.log.Info("writing to InfluxDB %s (bucket %s, version %s)", b.cfg.URL, b.cfg.Bucket, version)
	return nil
}

// Write sends f as one point tagged with the target.
func (b *InfluxDB) Write(ctx context.Context, f dial.Frame) error {
	b.mu.RLock()
	writer := b.writer
	b.mu.RUnlock()

	if writer == nil {
		return fmt.Errorf("InfluxDB not initialized")
	}

	point := influxdb2.NewPoint(Measurement,
		map[string]string{"target": f.Target},
		map[string]interface{}{
			"active":         f.Active,
			"spawned":        f.Spawned,
			"attempts":       f.Attempts,
			"total":          f.Total,
			"rate":           f.RatePerSec,
			"latency_ms":     f.AvgLatencyMS,
			"cpu_percent":    f.CPUPercent,
			"mem_percent":    f.MemPercent,
			"sent_kbps":      f.SentKBps,
			"recv_kbps":      f.RecvKBps,
			"throttled":      f.Throttled,
			"remaining_secs": f.Remaining.Seconds(),
		},
		f.At)

	if err := writer.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("failed to write to InfluxDB: %w", err)
	}
	return nil
}

// Close releases the client.
func (b *InfluxDB) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		b.client.Close()
		b.client = nil
		b.writer = nil
	}
	return nil
}

var _ Sink = (*InfluxDB)(nil)
