// Package store persists saved scenarios in a single YAML document.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/nisa-forecast/internal/forecast"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for ids that are not in the store.
var ErrNotFound = errors.New("scenario not found")

// CopySuffix is appended to the name of a duplicated scenario.
const CopySuffix = " (copy)"

// Record is a saved scenario and the time it was last written.
type Record struct {
	Scenario  forecast.Scenario `json:"scenario" yaml:"scenario"`
	UpdatedAt time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

type document struct {
	Scenarios []Record `yaml:"scenarios"`
}

// Store is a file-backed scenario store. A missing file reads as empty.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu sync.RWMutex
}

// New returns a store backed by the file at path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger, now: time.Now}
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// List returns every record, most recently updated first.
func (s *Store) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	records := doc.Scenarios
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})
	return records, nil
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return Record{}, err
	}
	i := doc.index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc.Scenarios[i], nil
}

// SaveNew stores scenario under a fresh id, ignoring any id it carries.
func (s *Store) SaveNew(scenario forecast.Scenario) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Record{}, err
	}

	scenario.ID = uuid.NewString()
	record := Record{Scenario: scenario, UpdatedAt: s.now().UTC()}
	doc.Scenarios = append(doc.Scenarios, record)

	if err := s.save(doc); err != nil {
		return Record{}, err
	}
	s.logger.Debug("saved new scenario",
		zap.String("op", "store.SaveNew"),
		zap.String("id", scenario.ID),
		zap.String("name", scenario.Name),
	)
	return record, nil
}

// Overwrite replaces the record with the given id. The id is kept.
func (s *Store) Overwrite(id string, scenario forecast.Scenario) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Record{}, err
	}
	i := doc.index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	scenario.ID = id
	doc.Scenarios[i] = Record{Scenario: scenario, UpdatedAt: s.now().UTC()}

	if err := s.save(doc); err != nil {
		return Record{}, err
	}
	s.logger.Debug("overwrote scenario",
		zap.String("op", "store.Overwrite"),
		zap.String("id", id),
	)
	return doc.Scenarios[i], nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	i := doc.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc.Scenarios = append(doc.Scenarios[:i], doc.Scenarios[i+1:]...)

	if err := s.save(doc); err != nil {
		return err
	}
	s.logger.Debug("deleted scenario",
		zap.String("op", "store.Delete"),
		zap.String("id", id),
	)
	return nil
}

// Duplicate stores a copy of the record with the given id under a new id
// and a suffixed name.
func (s *Store) Duplicate(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return Record{}, err
	}
	i := doc.index(id)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	scenario := doc.Scenarios[i].Scenario
	scenario.ID = uuid.NewString()
	scenario.Name += CopySuffix
	scenario.Blocks = append(scenario.Blocks[:0:0], scenario.Blocks...)
	scenario.RatesPercent = append(scenario.RatesPercent[:0:0], scenario.RatesPercent...)

	record := Record{Scenario: scenario, UpdatedAt: s.now().UTC()}
	doc.Scenarios = append(doc.Scenarios, record)

	if err := s.save(doc); err != nil {
		return Record{}, err
	}
	s.logger.Debug("duplicated scenario",
		zap.String("op", "store.Duplicate"),
		zap.String("source", id),
		zap.String("id", scenario.ID),
	)
	return record, nil
}

func (d document) index(id string) int {
	for i, record := range d.Scenarios {
		if record.Scenario.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) load() (document, error) {
	var doc document
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse store %s: %w", s.path, err)
	}
	return doc, nil
}

// save replaces the store file atomically.
func (s *Store) save(doc document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".scenarios-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary store file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store %s: %w", s.path, err)
	}
	return nil
}
