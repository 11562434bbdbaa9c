package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-map-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/store"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var mapPage = template.Must(template.ParseFS(templateFS, "templates/map.html.tmpl"))

// MarkerSource provides the markers served to the map.
type MarkerSource interface {
	Query(bound *orb.Bound) []domain.RenderableMarker
	Snapshot() (store.Snapshot, bool)
}

// PageConfig is handed to the map page script as JSON.
type PageConfig struct {
	Title       string               `json:"title"`
	Center      [2]float64           `json:"center"` // lat, lon
	Zoom        float64              `json:"zoom"`
	Tiles       mapbox.TileLayer     `json:"tiles"`
	OverlayName string               `json:"overlayName"`
	MarkersURL  string               `json:"markersUrl"`
	Legend      []domain.LegendEntry `json:"legend"`
}

// DefaultPageConfig centers the map on the contiguous United States.
func DefaultPageConfig(tiles mapbox.TileLayer) PageConfig {
	return PageConfig{
		Title:       "Earthquakes",
		Center:      [2]float64{37.09, -95.71},
		Zoom:        4.4,
		Tiles:       tiles,
		OverlayName: "Earthquakes",
		MarkersURL:  "markers.geojson",
		Legend:      domain.Legend(),
	}
}

// Server exposes the map page, marker data, and health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	markers    MarkerSource
	page       PageConfig
	logger     *slog.Logger
}

// NewServer creates an HTTP server with map and operational routes.
func NewServer(addr string, markers MarkerSource, ready sharedobs.ReadinessChecker, page PageConfig, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		markers: markers,
		page:    page,
		logger:  logger,
	}

	mux.HandleFunc("GET /{$}", s.handleMap)
	mux.HandleFunc("GET /markers.geojson", s.handleMarkers)
	mux.HandleFunc("GET /legend", s.handleLegend)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := mapPage.Execute(w, s.page); err != nil {
		s.logger.Error("render map page", "error", err)
	}
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	var bound *orb.Bound
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		b, err := parseBBox(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		bound = &b
	}

	snap, ok := s.markers.Snapshot()
	if !ok {
		w.Header().Set("Retry-After", "5")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "earthquake feed not loaded yet"})
		return
	}
	w.Header().Set("Last-Modified", snap.FetchedAt.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(MarkerCollection(s.markers.Query(bound))) //nolint:errcheck // client went away
}

func (s *Server) handleLegend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.page.Legend)
}

// MarkerCollection renders markers as a GeoJSON FeatureCollection whose
// properties carry everything the map needs to draw a circle and popup.
func MarkerCollection(markers []domain.RenderableMarker) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(markers))
	for _, m := range markers {
		f := geojson.NewFeature(m.Point)
		if m.FeatureID != "" {
			f.ID = m.FeatureID
		}
		f.Properties["sourceIndex"] = m.SourceIndex
		f.Properties["mag"] = m.Magnitude
		f.Properties["color"] = m.Style.Color
		f.Properties["radius"] = m.Style.Radius
		f.Properties["fillOpacity"] = m.Style.FillOpacity
		f.Properties["place"] = m.Place
		f.Properties["date"] = m.Date
		f.Properties["popup"] = m.Popup
		fc.Append(f)
	}
	return fc
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.New("bbox must be minLon,minLat,maxLon,maxLat")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox value %q: %w", p, err)
		}
		if math.IsNaN(f) {
			return orb.Bound{}, fmt.Errorf("bbox value %q is not a number", p)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, errors.New("bbox min must not exceed max")
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
