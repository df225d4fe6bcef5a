// Package api implements the read-only HTTP/JSON view onto the live
// canvas/feature/channel model: four GET routes, CORS enabled, snapshot
// semantics per request. Grounded on the teacher's
// corsMiddleware/writeJSON/handler shape (main.go, handlers.go) and on
// original_source/webserver.cpp for the exact route matching, status
// codes and error bodies.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/davepl/NDSCPP/internal/canvas"
	"github.com/davepl/NDSCPP/internal/channel"
	"github.com/davepl/NDSCPP/internal/controller"
)

// Server serves the read-only API over a snapshot of the live model
// taken fresh on every request.
type Server struct {
	Canvases   func() []*canvas.Canvas
	Controller *controller.Controller
}

// NewServer returns a Server backed by canvases (a getter, so the
// caller's canvas list may grow after startup) and ctrl.
func NewServer(canvases func() []*canvas.Canvas, ctrl *controller.Controller) *Server {
	return &Server{Canvases: canvases, Controller: ctrl}
}

// Handler builds the mux for all four routes, wrapped in CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/canvases", s.handleCanvasesCollection)
	mux.HandleFunc("/api/canvases/", s.handleCanvasByID)
	mux.HandleFunc("/api/sockets", s.handleSocketsCollection)
	mux.HandleFunc("/api/sockets/", s.handleSocketByID)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("api: error encoding JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// CanvasView is the JSON shape of one canvas, matching
// original_source/serialization.h's to_json(ICanvas) field set.
type CanvasView struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	FPS      float64       `json:"fps"`
	Features []FeatureView `json:"features"`
}

// FeatureView is the JSON shape of one feature, matching
// original_source/serialization.h's to_json(ILEDFeature) field set.
type FeatureView struct {
	HostName          string  `json:"hostName"`
	Port              int     `json:"port"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	OffsetX           int     `json:"offsetX"`
	OffsetY           int     `json:"offsetY"`
	Channel           int     `json:"channel"`
	Reversed          bool    `json:"reversed"`
	RedGreenSwap      bool    `json:"redGreenSwap"`
	ClientBufferCount uint    `json:"clientBufferCount"`
	TimeOffset        float64 `json:"timeOffset"`
}

func canvasView(id int, c *canvas.Canvas) CanvasView {
	features := make([]FeatureView, 0, len(c.Features()))
	for _, f := range c.Features() {
		features = append(features, FeatureView{
			HostName:          f.HostName,
			Port:              f.Port,
			Width:             f.Width,
			Height:            f.Height,
			OffsetX:           f.OffsetX,
			OffsetY:           f.OffsetY,
			Channel:           f.ChannelNumber,
			Reversed:          f.Reversed,
			RedGreenSwap:      f.RedGreenSwap,
			ClientBufferCount: f.ClientBufferCount,
			TimeOffset:        f.TimeOffset,
		})
	}
	return CanvasView{
		ID:       id,
		Name:     c.Name,
		Width:    c.Surface().Width(),
		Height:   c.Surface().Height(),
		FPS:      c.Effects.GetFPS(),
		Features: features,
	}
}

func (s *Server) handleCanvasesCollection(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/canvases" {
		writeError(w, http.StatusBadRequest, "Invalid API request")
		return
	}
	canvases := s.Canvases()
	views := make([]CanvasView, 0, len(canvases))
	for i, c := range canvases {
		views = append(views, canvasView(i, c))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCanvasByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/canvases/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid API request")
		return
	}

	canvases := s.Canvases()
	if id < 0 || id >= len(canvases) {
		writeError(w, http.StatusNotFound, "Canvas not found")
		return
	}
	writeJSON(w, http.StatusOK, canvasView(id, canvases[id]))
}

// SocketView is the JSON shape of one channel-as-seen-through-a-feature,
// carrying the featureId + canvasId original_source notes a socket's
// serializer cannot supply on its own (a socket belongs to whichever
// feature(s) reference it, not the other way around).
type SocketView struct {
	channelStats
	FeatureID string `json:"featureId"`
	CanvasID  string `json:"canvasId"`
}

// channelStats mirrors internal/channel.Stats' fields, including the last
// ingested telemetry report when one has been received; declared locally
// so this package's JSON shape doesn't depend on channel's struct tags
// changing out from under it.
type channelStats struct {
	ID             string  `json:"id"`
	HostName       string  `json:"hostName"`
	FriendlyName   string  `json:"friendlyName"`
	Port           int     `json:"port"`
	IsConnected    bool    `json:"isConnected"`
	ReconnectCount uint64  `json:"reconnectCount"`
	QueueDepth     int     `json:"queueDepth"`
	QueueMaxSize   int     `json:"queueMaxSize"`
	BytesPerSecond float64 `json:"bytesPerSecond"`
	State          string  `json:"state"`

	LastClientResponse *channel.ResponseStats `json:"lastClientResponse,omitempty"`
}

func (s *Server) socketViews() []SocketView {
	var views []SocketView
	for _, c := range s.Canvases() {
		for _, f := range c.Features() {
			ch, err := s.Controller.FindChannelByHost(f.HostName)
			if err != nil {
				continue
			}
			snap := ch.Snapshot()
			stats := channelStats{
				ID:             snap.ID,
				HostName:       snap.HostName,
				FriendlyName:   snap.FriendlyName,
				Port:           snap.Port,
				IsConnected:    snap.IsConnected,
				ReconnectCount: snap.ReconnectCount,
				QueueDepth:     snap.QueueDepth,
				QueueMaxSize:   snap.QueueMaxSize,
				BytesPerSecond: snap.BytesPerSecond,
				State:          snap.State,
			}
			if snap.HasResponse {
				resp := snap.LastResponse
				stats.LastClientResponse = &resp
			}
			views = append(views, SocketView{
				channelStats: stats,
				FeatureID:    f.ID.String(),
				CanvasID:     c.ID.String(),
			})
		}
	}
	return views
}

func (s *Server) handleSocketsCollection(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/sockets" {
		writeError(w, http.StatusBadRequest, "Invalid API request")
		return
	}
	writeJSON(w, http.StatusOK, s.socketViews())
}

func (s *Server) handleSocketByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/sockets/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid API request")
		return
	}

	views := s.socketViews()
	if id < 0 || id >= len(views) {
		writeError(w, http.StatusNotFound, "Socket not found")
		return
	}
	writeJSON(w, http.StatusOK, views[id])
}
