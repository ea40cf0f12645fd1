package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"weather-bot/models"
)

// ErrInvalidUnits is returned by Set for anything other than C or F
var ErrInvalidUnits = errors.New("units must be C or F")

// Store maps a user to the unit system they picked.
// Get returns models.DefaultUnits for users who never chose.
type Store interface {
	Get(ctx context.Context, userID int64) (models.Units, error)
	Set(ctx context.Context, userID int64, units models.Units) error
}

// MemoryStore keeps preferences for the lifetime of the process
type MemoryStore struct {
	units map[int64]models.Units
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		units: make(map[int64]models.Units),
	}
}

// Get returns the user's units, defaulting to Celsius
func (s *MemoryStore) Get(_ context.Context, userID int64) (models.Units, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if u, ok := s.units[userID]; ok {
		return u, nil
	}
	return models.DefaultUnits, nil
}

// Set overwrites the user's units unconditionally
func (s *MemoryStore) Set(_ context.Context, userID int64, units models.Units) error {
	if !units.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidUnits, units)
	}

	s.mutex.Lock()
	s.units[userID] = units
	s.mutex.Unlock()
	return nil
}

// Len returns how many users have an explicit preference
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.units)
}

var _ Store = (*MemoryStore)(nil)
