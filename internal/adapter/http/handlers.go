package http

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/checklist"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/dashboard"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/history"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/reports"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
	"github.com/go-chi/chi/v5"
)

// Download names.
const (
	checklistFilename = "emergency-checklist.txt"
	historyFilename   = "resqwatch-history.json"
)

// --- metrics ---

type metricsResponse struct {
	Readings []domain.MetricReading `json:"readings"`
	Risk     domain.RiskAssessment  `json:"risk"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, metricsResponse{
		Readings: s.shell.Simulator.Snapshot(),
		Risk:     s.shell.Simulator.Risk(),
	})
}

// --- reports ---

func (s *Server) handleListReports(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.ReportViews())
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var sub reports.Submission
	if err := decodeJSON(w, r, &sub); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.shell.SubmitReport(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, ok := s.shell.Reports.Upvote(id)
	if !ok {
		s.writeError(w, r, fmt.Errorf("report %q: %w", id, domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// --- checklist ---

type checklistResponse struct {
	Checklists map[domain.Phase][]domain.ChecklistItem `json:"checklists"`
	Stats      map[domain.Phase]domain.CompletionStats `json:"stats"`
}

func (s *Server) handleChecklist(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, checklistResponse{
		Checklists: s.shell.Checklist.All(),
		Stats:      s.shell.Checklist.Stats(),
	})
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	phase := domain.Phase(chi.URLParam(r, "phase"))
	item, err := s.shell.Checklist.Toggle(phase, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, _ := s.shell.Checklist.Items(phase)
	writeJSON(w, http.StatusOK, struct {
		Item  domain.ChecklistItem   `json:"item"`
		Stats domain.CompletionStats `json:"stats"`
	}{item, checklist.ComputeStats(items)})
}

func (s *Server) handleChecklistExport(w http.ResponseWriter, _ *http.Request) {
	writeAttachment(w, "text/plain; charset=utf-8", checklistFilename, []byte(s.shell.Checklist.Export()))
}

func (s *Server) handleAdvisory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Checklist.Advisory())
}

// --- history ---

type historyView struct {
	domain.HistoryItem
	TimeAgo string `json:"timeAgo"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	typ := domain.HistoryType(r.URL.Query().Get("type"))
	if typ == "" {
		typ = domain.HistoryAll
	}
	if typ != domain.HistoryAll && !typ.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: unknown history type %q", domain.ErrValidation, typ))
		return
	}

	now := s.shell.Clock.Now()
	items := s.shell.History.Filter(typ, r.URL.Query().Get("q"))
	out := make([]historyView, len(items))
	for i, item := range items {
		out[i] = historyView{HistoryItem: item, TimeAgo: history.FormatTimeAgo(now, item.Timestamp)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.shell.History.Delete(id) {
		s.writeError(w, r, fmt.Errorf("history item %q: %w", id, domain.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"cleared": s.shell.History.Clear()})
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.shell.History.Export()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "application/json", historyFilename, data)
}

// --- safety ---

func (s *Server) handleSafety(w http.ResponseWriter, r *http.Request) {
	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		if err := s.shell.SortDirectory(safety.Criterion(sortBy)); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.shell.SafetyView())
}

func (s *Server) handleDirections(w http.ResponseWriter, r *http.Request) {
	u, err := s.shell.Directions(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	res, err := s.shell.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- map ---

func (s *Server) handleLayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.Map.Layers())
}

func (s *Server) handleToggleLayer(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	visible, err := s.shell.Map.ToggleLayer(name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layer": name, "visible": visible})
}

type zonesResponse struct {
	Zones []mapview.Zone `json:"zones"`
	// AtUser lists the visible zones containing the user's fix.
	AtUser []string `json:"atUser"`
}

func (s *Server) handleZones(w http.ResponseWriter, _ *http.Request) {
	resp := zonesResponse{Zones: s.shell.Map.Zones(), AtUser: []string{}}
	if loc := s.shell.UserLocation(); loc != nil {
		for _, z := range s.shell.Map.ZonesAt(*loc) {
			resp.AtUser = append(resp.AtUser, z.Name)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMapStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.shell.MapStatus())
}

func (s *Server) handleSDKStatus(w http.ResponseWriter, r *http.Request) {
	var st mapview.SDKStatus
	if err := decodeJSON(w, r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !st.State.Valid() {
		s.writeError(w, r, fmt.Errorf("%w: unknown sdk state %q", domain.ErrValidation, st.State))
		return
	}
	s.shell.Map.ReportSDKStatus(st)
	w.WriteHeader(http.StatusNoContent)
}

// --- location feed ---

type locationResponse struct {
	Location *domain.Coordinates `json:"location"`
	Error    string              `json:"error,omitempty"`
	Prompt   string              `json:"prompt,omitempty"`
}

func (s *Server) handleLocation(w http.ResponseWriter, _ *http.Request) {
	resp := locationResponse{
		Location: s.shell.UserLocation(),
		Error:    s.shell.Map.LocationError(),
	}
	if resp.Location == nil {
		resp.Prompt = dashboard.GPSUnavailable
	}
	writeJSON(w, http.StatusOK, resp)
}

// fixRequest is one navigator.geolocation result. Timestamp is epoch
// milliseconds as reported by the browser; zero means now.
type fixRequest struct {
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  float64  `json:"accuracy"`
	Timestamp int64    `json:"timestamp"`
}

func (f fixRequest) validate() error {
	switch {
	case f.Lat == nil || f.Lng == nil:
		return fmt.Errorf("%w: lat and lng are required", domain.ErrValidation)
	case math.IsNaN(*f.Lat) || *f.Lat < -90 || *f.Lat > 90:
		return fmt.Errorf("%w: lat out of range", domain.ErrValidation)
	case math.IsNaN(*f.Lng) || *f.Lng < -180 || *f.Lng > 180:
		return fmt.Errorf("%w: lng out of range", domain.ErrValidation)
	case f.Accuracy < 0:
		return fmt.Errorf("%w: accuracy must not be negative", domain.ErrValidation)
	}
	return nil
}

func (s *Server) handlePushLocation(w http.ResponseWriter, r *http.Request) {
	var req fixRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	pos := mapview.Position{
		Coords:   domain.Coordinates{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy: req.Accuracy,
	}
	if req.Timestamp > 0 {
		pos.Timestamp = time.UnixMilli(req.Timestamp)
	}
	s.geo.Push(pos)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handlePushLocationError(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	code, err := mapview.ParseErrorCode(req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.geo.PushError(code)
	w.WriteHeader(http.StatusAccepted)
}

// --- panel ---

type panelResponse struct {
	Kind  dashboard.PanelKind `json:"kind"`
	Title string              `json:"title"`
	Data  dashboard.Panel     `json:"data"`
}

func (s *Server) writePanel(w http.ResponseWriter) {
	p := s.shell.ActivePanel()
	writeJSON(w, http.StatusOK, panelResponse{Kind: p.Kind(), Title: p.Kind().Title(), Data: p})
}

func (s *Server) handlePanel(w http.ResponseWriter, _ *http.Request) {
	s.writePanel(w)
}

func (s *Server) handleSelectPanel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Panel string `json:"panel"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := dashboard.ParsePanelKind(req.Panel)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.shell.Select(kind); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writePanel(w)
}

// --- settings ---

func (s *Server) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	key, ok := s.shell.Settings.APIKey()
	if !ok {
		s.writeError(w, r, fmt.Errorf("api key: %w", domain.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"apiKey": key})
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.shell.Settings.SetAPIKey(req.APIKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := s.shell.Settings.ClearAPIKey(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
