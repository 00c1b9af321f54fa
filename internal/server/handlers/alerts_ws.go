// internal/server/handlers/alerts_ws.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"socialtrack/internal/domain/analytics"
	"socialtrack/internal/observability"
)

// Subscriber subscribes to event bus subjects. *nats.Conn satisfies it.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origins are enforced by the CORS layer in front of the API
		return true
	},
}

// alertClient relays one owner's alert events to a WebSocket connection
type alertClient struct {
	conn         *websocket.Conn
	send         chan []byte
	ownerID      string
	config       WebSocketConfig
	subscription *nats.Subscription
	logger       *zap.Logger
	closeOnce    sync.Once
	done         chan struct{}
}

// AlertStreamHandler streams the alerts raised for the requesting owner.
// Browsers cannot set headers on WebSocket requests, so owner_id is also read from the query.
func AlertStreamHandler(bus Subscriber, eventsTopic string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get(OwnerHeader)
		if owner == "" {
			owner = r.URL.Query().Get("owner_id")
		}
		if owner == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing owner")
			return
		}

		if bus == nil {
			respondWithError(w, http.StatusServiceUnavailable, "Alert stream unavailable")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("failed to upgrade to websocket", zap.Error(err))
			return
		}

		client := &alertClient{
			conn:    conn,
			send:    make(chan []byte, 64),
			ownerID: owner,
			config:  DefaultWebSocketConfig(),
			logger:  logger,
			done:    make(chan struct{}),
		}

		if err := client.subscribe(bus, eventsTopic); err != nil {
			logger.Error("failed to subscribe to alerts", zap.String("owner_id", owner), zap.Error(err))
			client.closeConnection()
			return
		}

		observability.WebSocketConnections.Inc()

		go client.writePump()
		go client.readPump()

		welcome, _ := json.Marshal(map[string]interface{}{
			"type":     "welcome",
			"owner_id": owner,
			"time":     time.Now().UTC(),
		})
		client.enqueue(welcome)

		logger.Info("alert stream opened", zap.String("owner_id", owner))
	}
}

// subscribe relays the owner's alert subject into the send queue
func (c *alertClient) subscribe(bus Subscriber, eventsTopic string) error {
	sub, err := bus.Subscribe(analytics.AlertSubject(eventsTopic, c.ownerID), func(msg *nats.Msg) {
		c.enqueue(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to alerts: %w", err)
	}
	c.subscription = sub
	return nil
}

// enqueue queues a message, dropping it when the client is gone or too slow
func (c *alertClient) enqueue(message []byte) {
	select {
	case <-c.done:
	case c.send <- message:
	default:
		c.logger.Warn("dropping alert for slow client", zap.String("owner_id", c.ownerID))
	}
}

// readPump drains control frames until the peer goes away
func (c *alertClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued alerts to the WebSocket connection
func (c *alertClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes and closes the connection once
func (c *alertClient) closeConnection() {
	c.closeOnce.Do(func() {
		close(c.done)

		if c.subscription != nil {
			if err := c.subscription.Unsubscribe(); err != nil {
				c.logger.Debug("unsubscribe failed", zap.Error(err))
			}
			observability.WebSocketConnections.Dec()
		}

		c.conn.Close()
		c.logger.Info("alert stream closed", zap.String("owner_id", c.ownerID))
	})
}
