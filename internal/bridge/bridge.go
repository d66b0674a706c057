// Package bridge runs a local WebSocket feed so the ScheduleHQ dashboard
// (or any local client) can watch CSV sync activity in real time.
package bridge

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// StatusServer broadcasts JSON events to every connected client.
type StatusServer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	srv *http.Server
}

// NewStatusServer creates a server; call Start (or mount it as an
// http.Handler) to serve.
func NewStatusServer() *StatusServer {
	return &StatusServer{
		upgrader: websocket.Upgrader{
			// The dashboard runs on a different origin than this local feed.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Start begins listening on 127.0.0.1:port in a background goroutine.
func (s *StatusServer) Start(port string) {
	s.srv = &http.Server{Addr: "127.0.0.1:" + port, Handler: s}
	go func() {
		log.Printf("[bridge] Status feed listening on ws://%s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[bridge] Server error: %v", err)
		}
	}()
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[bridge] Upgrade error: %v", err)
		return
	}
	log.Printf("[bridge] Client connected (%s)", r.RemoteAddr)

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Hello message so the client knows the feed is live.
	hello, _ := json.Marshal(map[string]string{"type": "connected"})
	conn.WriteMessage(websocket.TextMessage, hello)

	// Read loop: keeps the connection alive and notices the close.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
			log.Println("[bridge] Client disconnected")
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one JSON message to all connected clients. Clients that
// fail the write are dropped.
func (s *StatusServer) Broadcast(v interface{}) {
	msg, err := json.Marshal(v)
	if err != nil {
		log.Printf("[bridge] Marshal error: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// ConnectionCount returns the number of connected clients.
func (s *StatusServer) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stop disconnects all clients and shuts the listener down.
func (s *StatusServer) Stop() {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
	s.mu.Unlock()

	if s.srv != nil {
		s.srv.Close()
	}
}
