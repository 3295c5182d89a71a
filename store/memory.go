package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskboard/model"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// TimestampLayout is the record timestamp format, millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type memoryRecord struct {
	databaseID string
	edited     time.Time
	record     model.Record
}

// MemoryStore keeps records in process memory. It backs local development
// (STORE_BACKEND=memory) and tests, and counts calls per operation.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	calls   map[string]int
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*memoryRecord),
		calls:   make(map[string]int),
		now:     time.Now,
	}
}

// SetClock replaces the time source used for last_edited_time.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Seed inserts records as-is. Records without properties act as
// reference-only results.
func (m *MemoryStore) Seed(databaseID string, records ...model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		edited, _ := time.Parse(time.RFC3339, r.LastEditedTime)
		m.records[r.ID] = &memoryRecord{databaseID: databaseID, edited: edited, record: r}
	}
}

// Calls returns how many times op ("query", "retrieve", "create", "update") ran.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TotalCalls returns the number of store calls of any kind.
func (m *MemoryStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *MemoryStore) Query(ctx context.Context, databaseID string, sorts []model.Sort) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["query"]++
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []*memoryRecord
	for _, r := range m.records {
		if r.databaseID == databaseID {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].record.ID < matched[j].record.ID
	})
	for k := len(sorts) - 1; k >= 0; k-- {
		if sorts[k].Timestamp != model.TimestampLastEdited {
			continue
		}
		desc := sorts[k].Direction == model.SortDescending
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return matched[i].edited.After(matched[j].edited)
			}
			return matched[i].edited.Before(matched[j].edited)
		})
	}

	out := make([]model.Record, 0, len(matched))
	for _, r := range matched {
		record, err := snapshot(r.record)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (m *MemoryStore) Retrieve(ctx context.Context, id string) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["retrieve"]++
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	r, ok := m.records[id]
	if !ok {
		return model.Record{}, model.ErrRecordNotFound
	}
	return snapshot(r.record)
}

func (m *MemoryStore) Create(ctx context.Context, databaseID string, properties model.Properties) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["create"]++
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	edited := m.now().UTC()
	record := model.Record{
		Object:         "page",
		ID:             uuid.New().String(),
		LastEditedTime: edited.Format(TimestampLayout),
	}.ApplyPatch(properties)
	record, err := snapshot(record)
	if err != nil {
		return model.Record{}, err
	}
	m.records[record.ID] = &memoryRecord{databaseID: databaseID, edited: edited, record: record}
	return snapshot(record)
}

func (m *MemoryStore) Update(ctx context.Context, id string, properties model.Properties) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["update"]++
	if err := ctx.Err(); err != nil {
		return model.Record{}, err
	}

	r, ok := m.records[id]
	if !ok {
		return model.Record{}, model.ErrRecordNotFound
	}
	patched, err := snapshot(r.record.ApplyPatch(properties))
	if err != nil {
		return model.Record{}, err
	}
	r.edited = m.now().UTC()
	r.record = patched
	r.record.LastEditedTime = r.edited.Format(TimestampLayout)
	return snapshot(r.record)
}

// Schema describes the properties the memory store writes.
func (m *MemoryStore) Schema(ctx context.Context, databaseID string) (map[string]string, error) {
	return map[string]string{
		model.TitleProperty:  model.TitlePropertyType,
		model.StatusProperty: model.StatusPropertyType,
	}, nil
}

// snapshot returns r with a property bag that shares no memory with the
// original, the way a record read back from a remote store would.
func snapshot(r model.Record) (model.Record, error) {
	if r.Properties == nil {
		return r, nil
	}
	data, err := json.Marshal(r.Properties)
	if err != nil {
		return model.Record{}, fmt.Errorf("failed to copy record %s: %w", r.ID, err)
	}
	var props model.Properties
	if err := json.Unmarshal(data, &props); err != nil {
		return model.Record{}, fmt.Errorf("failed to copy record %s: %w", r.ID, err)
	}
	r.Properties = props
	return r, nil
}
