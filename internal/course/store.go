package course

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StoredCourse is a raw authoring document as held by the persistence
// layer. The document keeps its loose wire shape; normalization and
// validation happen when the pipeline runs, never on write.
type StoredCourse struct {
	ID        string
	Document  map[string]any
	UpdatedAt time.Time
}

// Store persists raw course documents. The pipeline itself never writes
// back; stores exist so the service layer can fetch a snapshot to export.
type Store interface {
	SaveCourse(ctx context.Context, id string, doc map[string]any) error
	GetCourse(ctx context.Context, id string) (*StoredCourse, error)
	ListCourseIDs(ctx context.Context) ([]string, error)
	DeleteCourse(ctx context.Context, id string) error
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	courses map[string]*StoredCourse
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory course store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		courses: make(map[string]*StoredCourse),
	}
}

func (s *MemoryStore) SaveCourse(_ context.Context, id string, doc map[string]any) error {
	if id == "" {
		return fmt.Errorf("course id is required")
	}

	copied, _ := copyValue(doc).(map[string]any)
	if copied == nil {
		copied = map[string]any{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses[id] = &StoredCourse{
		ID:        id,
		Document:  copied,
		UpdatedAt: time.Now(),
	}
	return nil
}

func (s *MemoryStore) GetCourse(_ context.Context, id string) (*StoredCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.courses[id]
	if !ok {
		return nil, fmt.Errorf("course not found: %s", id)
	}
	return &StoredCourse{
		ID:        stored.ID,
		Document:  copyValue(stored.Document).(map[string]any),
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

func (s *MemoryStore) ListCourseIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.courses))
	for id := range s.courses {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) DeleteCourse(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return fmt.Errorf("course not found: %s", id)
	}
	delete(s.courses, id)
	return nil
}
