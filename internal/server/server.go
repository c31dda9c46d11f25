// Package server exposes the booth's HTTP API: capture ingestion,
// collage generation, screen registry, thumbnails and the screen
// websocket.
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"photobooth-server/internal/collage"
	"photobooth-server/internal/config"
	"photobooth-server/internal/relay"
	"photobooth-server/internal/session"
	"photobooth-server/internal/storage"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// thumbnailCache stores generated thumbnails
type thumbnailCache struct {
	cache map[string][]byte
	mu    sync.RWMutex
}

// Server wires the booth components behind the HTTP API.
type Server struct {
	cfg      *config.Config
	db       *storage.DB
	store    *storage.FileStore
	resolver *session.Resolver
	comp     *collage.Compositor
	sweeper  *collage.Sweeper
	hub      *relay.Hub
	thumbs   *thumbnailCache
}

func New(cfg *config.Config, db *storage.DB, store *storage.FileStore,
	resolver *session.Resolver, comp *collage.Compositor,
	sweeper *collage.Sweeper, hub *relay.Hub) *Server {
	return &Server{
		cfg:      cfg,
		db:       db,
		store:    store,
		resolver: resolver,
		comp:     comp,
		sweeper:  sweeper,
		hub:      hub,
		thumbs:   &thumbnailCache{cache: make(map[string][]byte)},
	}
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	// Capture ingestion
	mux.HandleFunc("/api/captures", s.handleCreateCapture)

	// Collage generation
	mux.HandleFunc("/api/collages/backfill", s.handleBackfill)
	mux.HandleFunc("/api/collages/", s.handleCollages)

	// Screen registry
	mux.HandleFunc("/api/screens", s.handleScreens)

	// File operations
	mux.HandleFunc("/files/", s.handleFile)
	mux.HandleFunc("/thumbnail/", s.handleThumbnail)
	mux.HandleFunc("/api/sessions/export/", s.handleSessionExport)

	// Live relay
	mux.HandleFunc("/ws", s.handleWebSocket)
}
