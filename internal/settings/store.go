// Package settings persists the few user preferences the dashboard keeps
// between runs, such as the Google Maps API key, in a small YAML file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/goccy/go-yaml"
)

// KeyGoogleMapsAPIKey is the fixed key the API key is stored under.
const KeyGoogleMapsAPIKey = "google-maps-api-key"

// ErrEmptyAPIKey is returned when saving a blank API key.
var ErrEmptyAPIKey = fmt.Errorf("%w: Please enter a valid Google Maps API key.", domain.ErrValidation)

// Store is a file-backed key/value store. Every change is written through.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
}

// Open reads the settings file at path. A missing file yields an empty store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger, values: map[string]string{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	return s, nil
}

// APIKey returns the saved Google Maps API key.
func (s *Store) APIKey() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.values[KeyGoogleMapsAPIKey]
	return key, ok
}

// SetAPIKey saves key after trimming surrounding whitespace.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyAPIKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[KeyGoogleMapsAPIKey]
	s.values[KeyGoogleMapsAPIKey] = key
	if err := s.saveLocked(); err != nil {
		if had {
			s.values[KeyGoogleMapsAPIKey] = prev
		} else {
			delete(s.values, KeyGoogleMapsAPIKey)
		}
		return err
	}
	s.logger.Info("map api key saved")
	return nil
}

// ClearAPIKey removes the saved key. Clearing an absent key is a no-op.
func (s *Store) ClearAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[KeyGoogleMapsAPIKey]
	if !had {
		return nil
	}
	delete(s.values, KeyGoogleMapsAPIKey)
	if err := s.saveLocked(); err != nil {
		s.values[KeyGoogleMapsAPIKey] = prev
		return err
	}
	s.logger.Info("map api key cleared")
	return nil
}

// saveLocked writes to a temporary file and renames it over the target.
func (s *Store) saveLocked() error {
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
