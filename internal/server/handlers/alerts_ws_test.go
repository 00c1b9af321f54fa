package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialtrack/internal/domain/analytics"
)

type stubSubscriber struct {
	mu       sync.Mutex
	subjects []string
	handler  nats.MsgHandler
	err      error
}

func (s *stubSubscriber) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.subjects = append(s.subjects, subject)
	s.handler = cb
	return &nats.Subscription{}, nil
}

func (s *stubSubscriber) deliver(data []byte) {
	s.mu.Lock()
	cb := s.handler
	s.mu.Unlock()
	cb(&nats.Msg{Data: data})
}

func TestAlertStreamHandler_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		bus      Subscriber
		target   string
		wantCode int
	}{
		{"missing owner", &stubSubscriber{}, "/ws/alerts", http.StatusUnauthorized},
		{"no event bus", nil, "/ws/alerts?owner_id=alice", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AlertStreamHandler(tt.bus, "socialtrack.alerts", zap.NewNop())

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func dialAlerts(t *testing.T, bus Subscriber, query string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(AlertStreamHandler(bus, "socialtrack.alerts", zap.NewNop()))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestAlertStreamHandler_RelaysOwnerAlerts(t *testing.T) {
	bus := &stubSubscriber{}
	conn := dialAlerts(t, bus, "?owner_id=alice")

	var welcome map[string]any
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "welcome", welcome["type"])
	assert.Equal(t, "alice", welcome["owner_id"])

	bus.mu.Lock()
	assert.Equal(t, []string{"socialtrack.alerts.alice.raised"}, bus.subjects)
	bus.mu.Unlock()

	event := analytics.AlertEvent{
		ID:       "evt-1",
		OwnerID:  "alice",
		RaisedAt: time.Date(2026, time.March, 18, 9, 0, 0, 0, time.UTC),
		Alert: analytics.Alert{
			Type:     analytics.AlertFrequency,
			Priority: analytics.PriorityHigh,
			Title:    "No posts this week",
		},
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)
	bus.deliver(data)

	var got analytics.AlertEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, event, got)
}

func TestAlertStreamHandler_SubscribeFailureClosesConnection(t *testing.T) {
	bus := &stubSubscriber{err: errors.New("nats: connection closed")}
	conn := dialAlerts(t, bus, "?owner_id=alice")

	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
