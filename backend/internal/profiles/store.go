// Package profiles loads the character catalogue that discussions draw participants from.
package profiles

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"moviesalon/backend/internal/state"
	apperrors "moviesalon/backend/pkg/errors"
	"moviesalon/backend/pkg/logger"
)

// Store is a read-only name → profile catalogue, safe for concurrent use
type Store struct {
	profiles map[string]state.Profile
	logger   *zap.Logger
}

// NewStore wraps an in-memory catalogue
func NewStore(profiles map[string]state.Profile) *Store {
	copied := make(map[string]state.Profile, len(profiles))
	for name, p := range profiles {
		copied[name] = p
	}
	return &Store{profiles: copied, logger: logger.Get()}
}

// Load reads a JSON or YAML catalogue file. JSON is accepted because it is valid YAML.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalogue document
func Parse(data []byte) (*Store, error) {
	var profiles map[string]state.Profile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profiles document is empty")
	}
	return NewStore(profiles), nil
}

// Select resolves names in order. Unknown names get the empty profile and are returned as unresolved.
func (s *Store) Select(names []string) (map[string]state.Profile, []string) {
	selected := make(map[string]state.Profile, len(names))
	var unresolved []string
	for _, name := range names {
		p, ok := s.profiles[name]
		if !ok {
			s.logger.Warn("Participant has no profile, using empty profile",
				zap.Error(apperrors.NewProfileUnresolved(name)),
			)
			unresolved = append(unresolved, name)
		}
		selected[name] = p
	}
	return selected, unresolved
}

// Get returns a single profile
func (s *Store) Get(name string) (state.Profile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

// Names lists the catalogue in sorted order
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for name := range s.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the catalogue size
func (s *Store) Len() int {
	return len(s.profiles)
}
