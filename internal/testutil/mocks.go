package testutil

import (
	"context"
	"sync"
	"time"

	"infcheck/internal/models"
	"infcheck/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Levels returns the recorded levels in order.
func (m *MockLogger) Levels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Logs))
	for _, e := range m.Logs {
		out = append(out, e.Level)
	}
	return out
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) SetWithTTL(key string, value []byte, _ time.Duration) {
	m.Set(key, value)
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockStore implements sheet.Store backed by an in-memory grid. Errors can
// be injected per method; a ReadErrs queue lets a read fail N times before
// succeeding.
type MockStore struct {
	mu        sync.Mutex
	Grid      [][]string
	ReadErrs  []error
	ClearErr  error
	WriteErr  error
	AppendErr error

	ReadCalls   int
	ClearCalls  int
	WriteCalls  [][][]string
	AppendCalls [][][]string
}

func (m *MockStore) GetAllRows(_ context.Context) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	if len(m.ReadErrs) > 0 {
		err := m.ReadErrs[0]
		m.ReadErrs = m.ReadErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([][]string, len(m.Grid))
	for i, row := range m.Grid {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

func (m *MockStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.Grid = nil
	return nil
}

func (m *MockStore) WriteRows(_ context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteCalls = append(m.WriteCalls, rows)
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Grid = append(m.Grid, rows...)
	return nil
}

func (m *MockStore) AppendRows(_ context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = append(m.AppendCalls, rows)
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Grid = append(m.Grid, rows...)
	return nil
}

// MockRosterService implements services.RosterServiceInterface with fixed data.
type MockRosterService struct {
	mu          sync.Mutex
	Roster      []models.InfluencerRecord
	Metrics     []models.HistoricalMetric
	Schema      models.RosterSchema
	FP          string
	LoadErr     error
	FPErr       error
	Invalidated int
}

func (m *MockRosterService) Load(_ context.Context) ([]models.InfluencerRecord, []models.HistoricalMetric, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, nil, m.LoadErr
	}
	return m.Roster, m.Metrics, nil
}

func (m *MockRosterService) LoadRoster(_ context.Context) ([]models.InfluencerRecord, models.RosterSchema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, models.RosterSchema{}, m.LoadErr
	}
	return m.Roster, m.Schema, nil
}

func (m *MockRosterService) Fingerprint(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FPErr != nil {
		return "", m.FPErr
	}
	return m.FP, nil
}

func (m *MockRosterService) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated++
}

// SetRemote swaps the backing roster and fingerprint, simulating a foreign
// edit of the remote sheet.
func (m *MockRosterService) SetRemote(roster []models.InfluencerRecord, fp string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Roster = roster
	m.FP = fp
}
