// Package dashboard composes the dashboard stores behind one shell. The
// shell owns the user's location and the active side panel, and records
// user actions in the history log.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/checklist"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/history"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/reports"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/settings"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/simulator"
	"github.com/jonboulle/clockwork"
)

// GPSUnavailable is shown in place of coordinates when no fix is known.
const GPSUnavailable = "GPS unavailable. Enable location to see your position and get directions."

// geocodeTimeout bounds a place lookup made on behalf of a user action.
const geocodeTimeout = 5 * time.Second

// ReadinessChecker reports whether a component is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Deps are the components the shell composes. Geocoder is optional.
type Deps struct {
	Simulator *simulator.Simulator
	Reports   *reports.Store
	Checklist *checklist.Store
	History   *history.Log
	Directory *safety.Directory
	Map       *mapview.Adapter
	Settings  *settings.Store
	Geocoder  domain.Geocoder
	Clock     clockwork.Clock

	// Readiness lists extra checks, such as the activity publisher.
	Readiness []ReadinessChecker
}

// Shell is the dashboard root.
type Shell struct {
	Deps
	logger  *slog.Logger
	metrics *observability.Metrics

	mu           sync.RWMutex
	userLocation *domain.Coordinates
	placeName    string
	active       PanelKind
}

// New creates a shell showing the reports panel and subscribes it to the
// map adapter's location updates.
func New(d Deps, logger *slog.Logger, metrics *observability.Metrics) *Shell {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	s := &Shell{
		Deps:    d,
		logger:  logger,
		metrics: metrics,
		active:  PanelReports,
	}
	d.Map.OnLocationUpdate(s.onLocation)
	return s
}

// UserLocation returns the last fix, or nil when GPS is unavailable.
func (s *Shell) UserLocation() *domain.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userLocation == nil {
		return nil
	}
	loc := *s.userLocation
	return &loc
}

// onLocation is the map adapter callback. The first fix is recorded in
// history; later fixes only move the marker. A moved fix drops the cached
// place name.
func (s *Shell) onLocation(c domain.Coordinates) {
	s.mu.Lock()
	first := s.userLocation == nil
	if first || *s.userLocation != c {
		s.placeName = ""
	}
	s.userLocation = &c
	s.mu.Unlock()

	if !first {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), geocodeTimeout)
	defer cancel()
	name := s.resolvePlace(ctx, c)

	zones := s.Map.ZonesAt(c)
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.Name
	}
	s.record(domain.HistoryLocation, "Current location acquired",
		&domain.NamedLocation{Lat: c.Lat, Lng: c.Lng, Name: name},
		map[string]any{"riskZones": names},
	)
}

// resolvePlace names c through the geocoder, falling back to formatted
// coordinates. The name is cached for the current fix.
func (s *Shell) resolvePlace(ctx context.Context, c domain.Coordinates) string {
	s.mu.RLock()
	cached := s.placeName
	same := s.userLocation != nil && *s.userLocation == c
	s.mu.RUnlock()
	if same && cached != "" {
		return cached
	}

	name := coordinateLabel(c)
	if s.Geocoder != nil {
		res, err := s.Geocoder.ReverseGeocode(ctx, c.Lat, c.Lng)
		switch {
		case err != nil:
			s.logger.Warn("reverse geocode failed", "error", err, "lat", c.Lat, "lng", c.Lng)
		case res.PlaceName != "":
			name = res.PlaceName
		}
	}

	s.mu.Lock()
	if s.userLocation != nil && *s.userLocation == c {
		s.placeName = name
	}
	s.mu.Unlock()
	return name
}

// Select switches the active panel. Opening the awareness panel is recorded
// as a checklist view.
func (s *Shell) Select(kind PanelKind) error {
	if _, err := ParsePanelKind(string(kind)); err != nil {
		return err
	}
	s.mu.Lock()
	s.active = kind
	s.mu.Unlock()

	s.metrics.PanelSelections.WithLabelValues(string(kind)).Inc()
	if kind == PanelAwareness {
		s.record(domain.HistoryView, "Emergency checklist viewed", nil,
			map[string]any{"completionRate": s.completionRate()})
	}
	return nil
}

// Active returns the selected panel kind.
func (s *Shell) Active() PanelKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ActivePanel renders the selected panel.
func (s *Shell) ActivePanel() Panel {
	switch s.Active() {
	case PanelSafety:
		return &SafetyPanel{SafetyView: s.SafetyView()}
	case PanelAwareness:
		return &AwarenessPanel{
			Readings:   s.Simulator.Snapshot(),
			Risk:       s.Simulator.Risk(),
			Advisory:   s.Checklist.Advisory(),
			Checklists: s.Checklist.All(),
			Stats:      s.Checklist.Stats(),
		}
	default:
		return &ReportsPanel{Reports: s.ReportViews()}
	}
}

// ReportViews lists reports with their age relative to now.
func (s *Shell) ReportViews() []ReportView {
	now := s.Clock.Now()
	list := s.Reports.List()
	out := make([]ReportView, len(list))
	for i, r := range list {
		out[i] = ReportView{Report: r, TimeAgo: reports.TimeAgo(now, r.Timestamp)}
	}
	return out
}

// SubmitReport stores a report and records it in history. A blank location
// is filled from the user's fix when one is known.
func (s *Shell) SubmitReport(ctx context.Context, sub reports.Submission) (domain.Report, error) {
	loc := s.UserLocation()
	if strings.TrimSpace(sub.Location) == "" && loc != nil {
		sub.Location = s.resolvePlace(ctx, *loc)
	}

	r, err := s.Reports.Submit(sub)
	if err != nil {
		return domain.Report{}, err
	}

	var named *domain.NamedLocation
	if loc != nil {
		named = &domain.NamedLocation{Lat: loc.Lat, Lng: loc.Lng, Name: r.Location}
	}
	s.record(domain.HistoryReport, r.Title+" report submitted", named,
		map[string]any{"severity": string(r.Severity), "upvotes": r.Upvotes})
	return r, nil
}

// SortDirectory reorders the safety directory and records the search.
func (s *Shell) SortDirectory(c safety.Criterion) error {
	if err := s.Directory.Sort(c); err != nil {
		return err
	}
	loc := s.UserLocation()
	var named *domain.NamedLocation
	if loc != nil {
		name := s.cachedPlace()
		if name == "" {
			name = coordinateLabel(*loc)
		}
		named = &domain.NamedLocation{Lat: loc.Lat, Lng: loc.Lng, Name: name}
	}
	s.record(domain.HistorySearch, "Safety locations sorted by "+string(c), named,
		map[string]any{"results": len(s.Directory.List()), "sortBy": string(c)})
	return nil
}

// SafetyView is the directory as seen from the user's position.
type SafetyView struct {
	SortBy       safety.Criterion      `json:"sortBy"`
	Locations    []domain.SafeLocation `json:"locations"`
	UserLocation *domain.Coordinates   `json:"userLocation,omitempty"`
	Prompt       string                `json:"prompt,omitempty"`
}

// SafetyView returns the directory plus either the user's coordinates or
// the GPS-unavailable prompt.
func (s *Shell) SafetyView() SafetyView {
	v := SafetyView{
		SortBy:       s.Directory.Criterion(),
		Locations:    s.Directory.List(),
		UserLocation: s.UserLocation(),
	}
	if v.UserLocation == nil {
		v.Prompt = GPSUnavailable
	}
	return v
}

// Directions returns a route URL from the user's fix to the location id.
func (s *Shell) Directions(id string) (string, error) {
	loc, err := s.Directory.Get(id)
	if err != nil {
		return "", err
	}
	return safety.DirectionsURL(s.UserLocation(), loc)
}

// SearchResult is the outcome of a place search.
type SearchResult struct {
	Query    string                `json:"query"`
	Found    bool                  `json:"found"`
	Location *domain.NamedLocation `json:"location,omitempty"`
	Zones    []string              `json:"riskZones,omitempty"`
}

// ErrEmptySearch is returned for a blank search query.
var ErrEmptySearch = fmt.Errorf("%w: please enter a search term", domain.ErrValidation)

// Search resolves query to a place and records it. Without a geocoder the
// search is recorded with no result.
func (s *Shell) Search(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrEmptySearch
	}
	res := SearchResult{Query: query}

	if s.Geocoder != nil {
		g, err := s.Geocoder.ForwardGeocode(ctx, query)
		if err != nil {
			return SearchResult{}, fmt.Errorf("search %q: %w", query, err)
		}
		if g.FormattedAddress != "" || g.Lat != 0 || g.Lon != 0 {
			res.Found = true
			res.Location = &domain.NamedLocation{Lat: g.Lat, Lng: g.Lon, Name: g.PlaceName}
			for _, z := range s.Map.ZonesAt(domain.Coordinates{Lat: g.Lat, Lng: g.Lon}) {
				res.Zones = append(res.Zones, z.Name)
			}
		}
	}

	results := 0
	if res.Found {
		results = 1
	}
	s.record(domain.HistorySearch, query, res.Location, map[string]any{"results": results})
	return res, nil
}

// MapStatus is the map panel's state.
type MapStatus struct {
	Provider      mapview.Provider    `json:"provider"`
	SDK           mapview.SDKStatus   `json:"sdk"`
	NeedsAPIKey   bool                `json:"needsApiKey"`
	LocationError string              `json:"locationError,omitempty"`
	UserLocation  *domain.Coordinates `json:"userLocation,omitempty"`
	Layers        map[string]bool     `json:"layers"`
}

// MapStatus reports the map panel state. The Google provider needs an API
// key before the SDK can load.
func (s *Shell) MapStatus() MapStatus {
	st := MapStatus{
		Provider:      s.Map.Provider(),
		SDK:           s.Map.SDKStatus(),
		LocationError: s.Map.LocationError(),
		UserLocation:  s.UserLocation(),
		Layers:        s.Map.Layers(),
	}
	if st.Provider == mapview.ProviderGoogle {
		_, ok := s.Settings.APIKey()
		st.NeedsAPIKey = !ok
	}
	return st
}

// CheckReadiness is ready once the simulator is ticking and every extra
// check passes.
func (s *Shell) CheckReadiness(ctx context.Context) error {
	errs := []error{s.Simulator.CheckReadiness(ctx)}
	for _, c := range s.Readiness {
		errs = append(errs, c.CheckReadiness(ctx))
	}
	return errors.Join(errs...)
}

func coordinateLabel(c domain.Coordinates) string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lng)
}

func (s *Shell) cachedPlace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.placeName
}

// completionRate is the overall checklist completion across all phases.
func (s *Shell) completionRate() int {
	all := s.Checklist.All()
	var items []domain.ChecklistItem
	for _, phase := range domain.Phases {
		items = append(items, all[phase]...)
	}
	return checklist.ComputeStats(items).Percentage
}

func (s *Shell) record(typ domain.HistoryType, query string, loc *domain.NamedLocation, metadata map[string]any) {
	if _, err := s.History.Record(typ, query, loc, metadata); err != nil {
		s.logger.Error("record history failed", "error", err, "type", typ)
	}
}
