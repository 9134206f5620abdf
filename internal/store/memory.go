package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory. It backs tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	order   []uuid.UUID
	shares  map[uuid.UUID]map[string]struct{}
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]Record),
		shares:  make(map[uuid.UUID]map[string]struct{}),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if _, exists := s.records[rec.ID]; exists || s.taken(rec.OwnerID, rec.InvoiceID, rec.ID) {
		return ErrDuplicate
	}

	now := s.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	s.records[rec.ID] = *rec
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if s.taken(current.OwnerID, rec.InvoiceID, rec.ID) {
		return ErrDuplicate
	}

	current.InvoiceID = rec.InvoiceID
	current.XML = rec.XML
	current.Valid = rec.Valid
	current.UpdatedAt = s.now()
	s.records[rec.ID] = current
	*rec = current
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	delete(s.shares, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(rec Record) bool { return rec.OwnerID == ownerID }), nil
}

func (s *MemoryStore) ListSharedWith(_ context.Context, userID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(rec Record) bool {
		_, ok := s.shares[rec.ID][userID]
		return ok
	}), nil
}

func (s *MemoryStore) Share(_ context.Context, id uuid.UUID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	if s.shares[id] == nil {
		s.shares[id] = make(map[string]struct{})
	}
	s.shares[id][userID] = struct{}{}
	return nil
}

func (s *MemoryStore) IsSharedWith(_ context.Context, id uuid.UUID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.shares[id][userID]
	return ok, nil
}

// taken reports whether another record of owner already uses invoiceID. Callers hold mu.
func (s *MemoryStore) taken(owner, invoiceID string, except uuid.UUID) bool {
	for id, rec := range s.records {
		if id != except && rec.OwnerID == owner && rec.InvoiceID == invoiceID {
			return true
		}
	}
	return false
}

func (s *MemoryStore) collect(keep func(Record) bool) []Record {
	out := []Record{}
	for _, id := range s.order {
		if rec := s.records[id]; keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}
