package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"timesheet-service/internal/metrics"

	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const DefaultInterval = 15 * time.Second

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

type dependency struct {
	name  string
	check CheckFunc
}

// Monitor probes dependencies and publishes the outcome to metrics and,
// when attached, to a gRPC health server.
type Monitor struct {
	deps    []dependency
	metrics *metrics.Metrics
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	status map[string]error
	grpc   *grpchealth.Server
}

func NewMonitor(m *metrics.Metrics, logger *slog.Logger) *Monitor {
	return &Monitor{
		metrics: m,
		logger:  logger,
		timeout: 2 * time.Second,
		status:  make(map[string]error),
	}
}

// Register adds a dependency; call before Start.
func (m *Monitor) Register(name string, check CheckFunc) {
	m.deps = append(m.deps, dependency{name: name, check: check})
}

// Names lists registered dependencies in registration order.
func (m *Monitor) Names() []string {
	names := make([]string, 0, len(m.deps))
	for _, d := range m.deps {
		names = append(names, d.name)
	}
	return names
}

func (m *Monitor) AttachGRPC(server *grpchealth.Server) {
	m.mu.Lock()
	m.grpc = server
	m.mu.Unlock()
}

// CheckAll runs every check once and returns the failures by name.
func (m *Monitor) CheckAll(ctx context.Context) map[string]error {
	failures := make(map[string]error)

	for _, d := range m.deps {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		start := time.Now()
		err := d.check(checkCtx)
		cancel()

		m.metrics.Health.RecordDependencyCheck(ctx, d.name, time.Since(start), err)

		m.mu.Lock()
		prev, seen := m.status[d.name]
		m.status[d.name] = err
		m.mu.Unlock()

		if err != nil {
			failures[d.name] = err
			if !seen || prev == nil {
				m.logger.WarnContext(ctx, "dependency unavailable", "dependency", d.name, "error", err)
			}
		} else if seen && prev != nil {
			m.logger.InfoContext(ctx, "dependency recovered", "dependency", d.name)
		}
	}

	m.updateGRPC(len(failures) == 0)
	return failures
}

func (m *Monitor) updateGRPC(healthy bool) {
	m.mu.RLock()
	server := m.grpc
	m.mu.RUnlock()

	if server == nil {
		return
	}

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if !healthy {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	server.SetServingStatus("", status)
	server.SetServingStatus(ServiceName, status)
}

// Start checks dependencies every interval until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.logger.Info("starting dependency health checks", "interval", interval.String(), "dependencies", m.Names())
	m.CheckAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stopping dependency health checks")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}
