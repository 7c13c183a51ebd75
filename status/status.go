// Package status broadcasts viewer messages and pose events to websocket clients.
package status

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	INFO = iota
	ERROR
	PROGRESS
	POSE
)

type status struct {
	Message  string
	Time     time.Time
	Type     int
	Progress float32
	Event    interface{} `json:",omitempty"`
}

type client struct {
	send chan []byte
}

type Hub struct {
	broadcast chan *status

	lock        sync.Mutex
	clients     map[*client]bool
	lastMessage []byte
}

func NewHub() *Hub {
	h := &Hub{
		broadcast: make(chan *status, 16),
		clients:   make(map[*client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for s := range h.broadcast {
		data, err := json.Marshal(s)
		if err != nil {
			log.Printf("[status] marshal error: %v", err)
			continue
		}
		h.lock.Lock()
		h.lastMessage = data
		for c := range h.clients {
			select {
			case c.send <- data:
			default:
				// slow client, its pump notices the closed channel
				delete(h.clients, c)
				close(c.send)
			}
		}
		h.lock.Unlock()
	}
}

// Subscribe registers a listener that first receives the last message, if any.
// The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	c := &client{send: make(chan []byte, 32)}

	h.lock.Lock()
	h.clients[c] = true
	if h.lastMessage != nil {
		c.send <- h.lastMessage
	}
	h.lock.Unlock()

	return c.send, func() {
		h.lock.Lock()
		defer h.lock.Unlock()
		if h.clients[c] {
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// ServeClient pumps hub messages into conn until either side fails.
func (h *Hub) ServeClient(conn *websocket.Conn) {
	send, unsubscribe := h.Subscribe()
	go writePump(conn, send, unsubscribe)
	go readPump(conn, unsubscribe)
}

func writePump(conn *websocket.Conn, send <-chan []byte, unsubscribe func()) {
	ticker := time.NewTicker(time.Second * 30)
	defer func() {
		ticker.Stop()
		unsubscribe()
		conn.Close()
	}()
	for {
		select {
		case msg, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[status] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(40 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[status] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump drains control frames so a client close is noticed.
func readPump(conn *websocket.Conn, unsubscribe func()) {
	defer unsubscribe()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Hub) Status(msg string, _type int, progress float32) {
	if math.IsNaN(float64(progress)) || math.IsInf(float64(progress), 0) {
		progress = 0
	}
	h.broadcast <- &status{
		Message:  msg,
		Time:     time.Now(),
		Type:     _type,
		Progress: progress}
}

func (h *Hub) Info(format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), INFO, 0.0)
}

func (h *Hub) Error(format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), ERROR, 0.0)
}

func (h *Hub) Progress(progress float32, format string, a ...interface{}) {
	h.Status(fmt.Sprintf(format, a...), PROGRESS, progress)
}

// Pose broadcasts a pose change event as is.
func (h *Hub) Pose(event interface{}) {
	h.broadcast <- &status{
		Message: "pose",
		Time:    time.Now(),
		Type:    POSE,
		Event:   event,
	}
}

var defaultHub = NewHub()

func Default() *Hub { return defaultHub }
