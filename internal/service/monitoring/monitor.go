// internal/service/monitoring/monitor.go

package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/domain/post"
	"socialtrack/internal/observability"
)

// Publisher sends events to the event bus. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// OwnerLister lists the owners the monitor scans
type OwnerLister interface {
	Owners(ctx context.Context) ([]string, error)
}

// WindowLoader builds the post window of an owner
type WindowLoader interface {
	Load(ctx context.Context, ownerID, projectID string) (post.Window, error)
}

// AlertChecker evaluates alerts over a post history
type AlertChecker interface {
	CheckAlerts(posts []post.Post, now time.Time) []analytics.Alert
}

// MonitorConfig contains configuration for the alert monitor
type MonitorConfig struct {
	ScanInterval time.Duration
	EventsTopic  string

	// Clock returns the evaluation time, defaults to time.Now in UTC
	Clock func() time.Time
}

// AlertMonitor implements the analytics.Monitor interface.
// It periodically evaluates every owner's alerts and announces each alert once.
type AlertMonitor struct {
	owners        OwnerLister
	loader        WindowLoader
	checker       AlertChecker
	eventBus      Publisher
	config        MonitorConfig
	logger        *zap.Logger
	alertHandlers []func(ownerID string, alert analytics.Alert) error
	seen          map[string]map[string]struct{}
	mu            sync.RWMutex
	seenLock      sync.Mutex
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

var _ analytics.Monitor = (*AlertMonitor)(nil)

// NewAlertMonitor creates a new alert monitor. eventBus may be nil, in which case
// alerts only reach the registered handlers.
func NewAlertMonitor(
	owners OwnerLister,
	loader WindowLoader,
	checker AlertChecker,
	eventBus Publisher,
	logger *zap.Logger,
	config MonitorConfig,
) *AlertMonitor {
	if config.Clock == nil {
		config.Clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AlertMonitor{
		owners:        owners,
		loader:        loader,
		checker:       checker,
		eventBus:      eventBus,
		config:        config,
		logger:        logger.Named("monitor"),
		alertHandlers: []func(string, analytics.Alert) error{},
		seen:          make(map[string]map[string]struct{}),
	}
}

// Start begins periodic alert scanning
func (m *AlertMonitor) Start(ctx context.Context) error {
	if m.config.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %s", m.config.ScanInterval)
	}

	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return fmt.Errorf("monitor already started")
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.wg.Add(1)
	go m.scanLoop(ctx)

	m.logger.Info("alert monitor started", zap.Duration("interval", m.config.ScanInterval))
	return nil
}

// RegisterAlertHandler registers a callback for newly raised alerts
func (m *AlertMonitor) RegisterAlertHandler(handler func(ownerID string, alert analytics.Alert) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alertHandlers = append(m.alertHandlers, handler)
	return nil
}

func (m *AlertMonitor) scanLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.ScanOnce(ctx); err != nil {
				m.logger.Error("alert scan failed", zap.Error(err))
			}
		}
	}
}

// ScanOnce evaluates the alerts of every owner and announces the ones not seen before.
// It returns the number of alerts raised. Failures for a single owner are logged and skipped.
func (m *AlertMonitor) ScanOnce(ctx context.Context) (int, error) {
	owners, err := m.owners.Owners(ctx)
	if err != nil {
		observability.MonitorScans.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("error listing owners: %w", err)
	}

	now := m.config.Clock()
	raised := 0

	for _, ownerID := range owners {
		if ctx.Err() != nil {
			return raised, ctx.Err()
		}

		w, err := m.loader.Load(ctx, ownerID, "")
		if err != nil {
			m.logger.Warn("error loading window", zap.String("owner_id", ownerID), zap.Error(err))
			continue
		}

		for _, alert := range m.checker.CheckAlerts(w.Posts, now) {
			if !m.markSeen(ownerID, alert) {
				continue
			}
			raised++

			observability.AlertsRaised.WithLabelValues(string(alert.Type), string(alert.Priority)).Inc()

			if err := m.publishAlertEvent(ownerID, alert, now); err != nil {
				m.logger.Error("error publishing alert event",
					zap.String("owner_id", ownerID), zap.String("alert", alert.Key()), zap.Error(err))
			}

			m.callAlertHandlers(ownerID, alert)
		}
	}

	observability.MonitorScans.WithLabelValues("ok").Inc()
	m.logger.Debug("alert scan complete", zap.Int("owners", len(owners)), zap.Int("raised", raised))
	return raised, nil
}

// markSeen records the alert and reports whether it is new for the owner
func (m *AlertMonitor) markSeen(ownerID string, alert analytics.Alert) bool {
	m.seenLock.Lock()
	defer m.seenLock.Unlock()

	keys, ok := m.seen[ownerID]
	if !ok {
		keys = make(map[string]struct{})
		m.seen[ownerID] = keys
	}
	if _, dup := keys[alert.Key()]; dup {
		return false
	}
	keys[alert.Key()] = struct{}{}
	return true
}

// publishAlertEvent publishes an alert raised event
func (m *AlertMonitor) publishAlertEvent(ownerID string, alert analytics.Alert, now time.Time) error {
	if m.eventBus == nil {
		return nil
	}

	data, err := json.Marshal(analytics.AlertEvent{
		ID:       uuid.New().String(),
		OwnerID:  ownerID,
		RaisedAt: now,
		Alert:    alert,
	})
	if err != nil {
		return fmt.Errorf("error marshaling alert event: %w", err)
	}

	return m.eventBus.Publish(analytics.AlertSubject(m.config.EventsTopic, ownerID), data)
}

// callAlertHandlers calls all registered alert handlers
func (m *AlertMonitor) callAlertHandlers(ownerID string, alert analytics.Alert) {
	m.mu.RLock()
	handlers := make([]func(string, analytics.Alert) error, len(m.alertHandlers))
	copy(handlers, m.alertHandlers)
	m.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ownerID, alert); err != nil {
			m.logger.Warn("error in alert handler", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}
}

// Stop gracefully stops the scan loop
func (m *AlertMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	// Wait for the scan loop to finish with a timeout
	c := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(c)
	}()

	select {
	case <-c:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("alert monitor stopped")
	return nil
}
