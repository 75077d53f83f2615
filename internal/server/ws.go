// Package server provides the HTTP server for the Hasta hand tracking system.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/hasta/internal/capture"
	"github.com/ayusman/hasta/internal/detector"
	"github.com/ayusman/hasta/internal/track"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// trackingMessage is the payload broadcast to WebSocket clients on each frame.
type trackingMessage struct {
	Landmarks []detector.Landmark `json:"landmarks,omitempty"`
	Pointer   *track.Point        `json:"pointer,omitempty"`
	Center    *track.Point        `json:"center,omitempty"`
	Stability int                 `json:"stability"`
	Stable    bool                `json:"stable"`
	Timestamp int64               `json:"timestamp"`
}

// TrackingHandler broadcasts smoothed hand tracking data via WebSocket.
type TrackingHandler struct {
	detector detector.Detector
	camera   capture.Camera
	session  *track.Session
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
}

// NewTrackingHandler creates a new TrackingHandler with the given detector and camera.
func NewTrackingHandler(d detector.Detector, c capture.Camera) *TrackingHandler {
	h := &TrackingHandler{
		detector: d,
		camera:   c,
		session:  track.NewSession(),
		clients:  make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends smoothed tracking data to all connected clients.
func (h *TrackingHandler) broadcast() {
	ticker := time.NewTicker(66 * time.Millisecond) // ~15 FPS
	defer ticker.Stop()

	width, height := h.camera.FrameSize()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		frame, err := h.camera.ReadFrame()
		if err != nil {
			continue
		}

		hands, err := h.detector.Detect(frame)
		frame.Close()
		if err != nil {
			continue
		}

		var landmarks []detector.Landmark
		if len(hands) > 0 {
			landmarks = hands[0].Landmarks
		}

		smoothed := h.session.Observe(landmarks, width, height)

		msg := trackingMessage{
			Landmarks: smoothed,
			Stability: h.session.StabilityScore(),
			Stable:    h.session.Stable(),
			Timestamp: time.Now().UnixMilli(),
		}
		if p, ok := h.session.PointOfInterest(); ok {
			msg.Pointer = &p
		}
		if c, ok := h.session.HandCenter(); ok {
			msg.Center = &c
		}

		data, _ := json.Marshal(msg)

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, data)
		}
		h.mu.RUnlock()
	}
}
