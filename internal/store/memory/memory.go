package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]store.ResearchRecord
}

func New() *MemoryStore {
	return &MemoryStore{
		records: map[string]store.ResearchRecord{},
	}
}

func (m *MemoryStore) SaveRecord(ctx context.Context, record store.ResearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(record.CreatedAt) == "" {
		record.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	record.Answers = store.CloneAnswers(record.Answers)
	m.records[record.ID] = record
	return nil
}

func (m *MemoryStore) GetRecord(ctx context.Context, recordID string) (*store.ResearchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[recordID]
	if !ok {
		return nil, nil
	}
	cloned := record
	cloned.Answers = store.CloneAnswers(record.Answers)
	return &cloned, nil
}

// ListRecords returns newest first. A limit of zero or less returns all.
func (m *MemoryStore) ListRecords(ctx context.Context, limit int) ([]store.ResearchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := make([]store.ResearchRecord, 0, len(m.records))
	for _, record := range m.records {
		cloned := record
		cloned.Answers = store.CloneAnswers(record.Answers)
		results = append(results, cloned)
	}
	sort.Slice(results, func(i, j int) bool {
		left, right := parseTime(results[i].CreatedAt), parseTime(results[j].CreatedAt)
		if left.Equal(right) {
			return results[i].ID < results[j].ID
		}
		return left.After(right)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MemoryStore) DeleteRecord(ctx context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, recordID)
	return nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
