package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"timetablegen/internal/catalog"
	"timetablegen/internal/model"
)

// Record is one persisted schedule: the payload it was generated from, the
// solve result and bookkeeping metadata.
type Record struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	CreatedAt time.Time            `json:"created_at"`
	Payload   catalog.Payload      `json:"payload"`
	Result    model.ScheduleResult `json:"result"`
}

// Store keeps schedules in memory, keyed by opaque uuid ids. It is safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
}

func New() *Store {
	return &Store{records: make(map[string]Record)}
}

func (s *Store) Save(name string, payload catalog.Payload, result model.ScheduleResult) Record {
	record := Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
		Result:    result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	return record
}

func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	return record, ok
}

// List returns the most recent records first, up to limit.
func (s *Store) List(limit int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}

	records := make([]Record, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, s.records[s.order[i]])
	}
	return records
}
