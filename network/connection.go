// network/connection.go
package network

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one message on the wire, in either direction: an event name
// plus a JSON payload.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Connection is a per-client addressable endpoint with at-least-once
// delivery while the peer stays connected. The session engine only
// depends on this interface; the websocket details stay here.
type Connection interface {
	Send(event string, data interface{}) error
	ReadEvent() (*Event, error)
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
}

// WSConnection carries events as JSON text frames over a websocket.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
	closed    chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

func (c *WSConnection) Send(event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		return err
	}

	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *WSConnection) ReadEvent() (*Event, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// SetHeartbeat starts pinging the peer every interval and extends the
// read deadline on each pong. A player who sends nothing for a whole
// game round stays connected as long as their client answers pings; the
// deadline only fires when the transport is actually gone.
func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(interval * 2))
	})
	go c.pingLoop(interval)
}

func (c *WSConnection) pingLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case <-ticker.C:
			deadline := time.Now().Add(interval)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
