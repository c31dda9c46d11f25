package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/chai2010/webp"
	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"photobooth-server/internal/collage"
	"photobooth-server/internal/models"
	"photobooth-server/internal/relay"
)

// maxUploadBytes caps a single capture upload.
const maxUploadBytes = 32 << 20

// handleCreateCapture ingests one photo from a camera device: resolve
// the session for its group, normalize to JPEG, store it, record it,
// and fan out an image.ready event.
func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	groupID := r.FormValue("group_id")
	if groupID == "" {
		http.Error(w, "group_id required", http.StatusBadRequest)
		return
	}
	cameraID := r.FormValue("camera_id")

	file, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		http.Error(w, "Unsupported or corrupt image", http.StatusBadRequest)
		return
	}

	sess := s.resolver.Resolve(groupID, time.Now())
	if err := s.db.SaveSession(sess); err != nil {
		log.Printf("Failed to save session: %v", err)
	}

	// All captures are stored as JPEG regardless of upload format
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		http.Error(w, "Failed to encode image", http.StatusInternalServerError)
		return
	}

	rel := path.Join(sess.FolderName, cameraID, uuid.NewString()+".jpg")
	if _, err := s.store.Write(rel, buf.Bytes()); err != nil {
		log.Printf("Failed to store capture: %v", err)
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	bounds := img.Bounds()
	capture := &models.Capture{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		CameraID:  cameraID,
		Session:   sess.FolderName,
		FilePath:  rel,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		CreatedAt: time.Now(),
	}
	if err := s.db.SaveCapture(capture); err != nil {
		log.Printf("Failed to save capture record: %v", err)
	}

	s.hub.Broadcast <- &relay.Event{
		Type:      relay.EVT_IMAGE_READY,
		GroupID:   groupID,
		Session:   sess.FolderName,
		Path:      rel,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(capture)
}

// handleCollages serves POST (generate) and GET (existence check) for
// /api/collages/<session folder>.
func (s *Server) handleCollages(w http.ResponseWriter, r *http.Request) {
	folder := strings.TrimPrefix(r.URL.Path, "/api/collages/")
	if folder == "" {
		http.Error(w, "session folder required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.composeCollage(w, r, folder)
	case http.MethodGet:
		s.collageExists(w, r, folder)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) composeCollage(w http.ResponseWriter, r *http.Request, folder string) {
	target, err := s.targetResolution(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.comp.Compose(r.Context(), folder, target)
	switch {
	case errors.Is(err, collage.ErrSessionFolderNotFound):
		http.Error(w, "Session folder not found", http.StatusNotFound)
		return
	case errors.Is(err, collage.ErrNoSourceImages):
		http.Error(w, "No source images in session folder", http.StatusUnprocessableEntity)
		return
	case err != nil:
		log.Printf("Compose %s failed: %v", folder, err)
		http.Error(w, "Collage generation failed", http.StatusInternalServerError)
		return
	}

	sessionDir := collage.SessionDir(folder)
	orientations := []models.Orientation{models.Landscape, models.Portrait}
	for i, o := range orientations {
		remoteURL := ""
		if len(result.RemoteURLs) == len(orientations) {
			remoteURL = result.RemoteURLs[i]
		}
		if err := s.db.SaveCollage(sessionDir, o, result.LocalPaths[i], remoteURL); err != nil {
			log.Printf("Failed to save collage record: %v", err)
		}
	}

	s.hub.Broadcast <- &relay.Event{
		Type:      relay.EVT_COLLAGE_READY,
		Session:   sessionDir,
		Path:      sessionDir,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *Server) collageExists(w http.ResponseWriter, r *http.Request, folder string) {
	o := models.Orientation(r.URL.Query().Get("orientation"))

	exists := false
	switch {
	case o.Valid():
		exists = s.comp.ExistsArtifact(folder, o)
	default:
		exists = s.comp.ExistsArtifact(folder, models.Landscape) &&
			s.comp.ExistsArtifact(folder, models.Portrait)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"exists": exists})
}

// targetResolution reads an explicit canvas size from the request:
// either width+height query params or a registered screen's ID.
func (s *Server) targetResolution(r *http.Request) (*models.Resolution, error) {
	if screenID := r.URL.Query().Get("screen_id"); screenID != "" {
		screen, err := s.db.GetScreen(screenID)
		if err != nil {
			return nil, fmt.Errorf("unknown screen %q", screenID)
		}
		return &models.Resolution{Width: screen.Width, Height: screen.Height}, nil
	}

	ws, hs := r.URL.Query().Get("width"), r.URL.Query().Get("height")
	if ws == "" && hs == "" {
		return nil, nil
	}
	width, err := strconv.Atoi(ws)
	if err != nil {
		return nil, fmt.Errorf("invalid width %q", ws)
	}
	height, err := strconv.Atoi(hs)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q", hs)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resolution must be positive")
	}
	return &models.Resolution{Width: width, Height: height}, nil
}

// handleBackfill kicks off a discovery sweep in the background.
// Errors surface only in logs; the sweep has no caller to report to.
// The sweep outlives the request, so it must not run under the request
// context, which net/http cancels as soon as the 202 goes out.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	go s.sweeper.Run(context.Background())
	w.WriteHeader(http.StatusAccepted)
}

// handleScreens registers a display screen (POST) or lists them (GET).
func (s *Server) handleScreens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name   string `json:"name"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Width <= 0 || req.Height <= 0 {
			http.Error(w, "width and height required", http.StatusBadRequest)
			return
		}

		screen := &models.Screen{
			ID:        uuid.NewString(),
			Name:      req.Name,
			Width:     req.Width,
			Height:    req.Height,
			CreatedAt: time.Now(),
		}
		if err := s.db.SaveScreen(screen); err != nil {
			log.Printf("Failed to save screen: %v", err)
			http.Error(w, "Failed to register screen", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(screen)

	case http.MethodGet:
		screens, err := s.db.GetAllScreens()
		if err != nil {
			http.Error(w, "Failed to list screens", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(screens)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFile serves a stored file (captures and collages) to screens.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/files/")
	abs, err := s.store.Abs(rel)
	if err != nil {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}
	http.ServeFile(w, r, abs)
}

// handleThumbnail serves a cached 300px thumbnail of a stored image.
func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/thumbnail/")
	abs, err := s.store.Abs(rel)
	if err != nil {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	// Check cache first
	s.thumbs.mu.RLock()
	if cached, ok := s.thumbs.cache[rel]; ok {
		s.thumbs.mu.RUnlock()
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(cached)
		return
	}
	s.thumbs.mu.RUnlock()

	file, err := os.Open(abs)
	if err != nil {
		http.Error(w, "Failed to open image", http.StatusNotFound)
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "Failed to decode image", http.StatusInternalServerError)
		return
	}

	thumbnail := resize.Thumbnail(300, 300, img, resize.Lanczos3)

	writer := &bytes.Buffer{}
	jpeg.Encode(writer, thumbnail, &jpeg.Options{Quality: 85})
	buf := writer.Bytes()

	s.thumbs.mu.Lock()
	s.thumbs.cache[rel] = buf
	s.thumbs.mu.Unlock()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(buf)
}

// handleSessionExport streams a session folder as a ZIP archive.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request) {
	folder := strings.TrimPrefix(r.URL.Path, "/api/sessions/export/")
	sessionDir := collage.SessionDir(folder)
	if sessionDir == "" || !s.store.IsDir(sessionDir) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	absDir, err := s.store.Abs(sessionDir)
	if err != nil {
		http.Error(w, "Invalid session path", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.zip"`, sessionDir))

	zw := zip.NewWriter(w)
	defer zw.Close()

	filepath.Walk(absDir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(absDir, p)
		if err != nil {
			return nil
		}
		f, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Printf("Export: skipping %s: %v", rel, err)
			return nil
		}
		_, err = f.Write(data)
		return err
	})
}

// handleWebSocket upgrades a screen connection and registers it with
// the relay hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	screenID := r.URL.Query().Get("screen_id")
	if screenID == "" {
		http.Error(w, "screen_id required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &relay.Client{
		Hub:      s.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		ScreenID: screenID,
	}
	s.hub.Register <- client

	s.hub.Broadcast <- &relay.Event{
		Type:      relay.EVT_SCREEN_JOINED,
		ScreenID:  screenID,
		Timestamp: time.Now(),
	}

	go client.WritePump()
	go client.ReadPump()
}
