package sheet

import (
	"infcheck/internal/providers"
	"infcheck/internal/structures"
	"os"
	"sync"
)

// Workbook hands out worksheet stores by name, one shared instance per
// worksheet so file-level locking works across consumers.
type Workbook struct {
	mu     sync.Mutex
	dir    string
	policy providers.RetryPolicy
	open   map[string]Store
}

func NewWorkbook(conf *structures.Config, policy providers.RetryPolicy, logger providers.Logger) (*Workbook, error) {
	if err := os.MkdirAll(conf.Sheet.Dir, 0755); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "Workbook directory: %s", conf.Sheet.Dir)
	return &Workbook{
		dir:    conf.Sheet.Dir,
		policy: policy,
		open:   make(map[string]Store),
	}, nil
}

// Worksheet returns the named worksheet with retrying reads.
func (wb *Workbook) Worksheet(name string) Store {
	wb.mu.Lock()
	defer wb.mu.Unlock()
	if s, ok := wb.open[name]; ok {
		return s
	}
	s := NewRetryStore(NewCSVStore(wb.dir, name), wb.policy)
	wb.open[name] = s
	return s
}
