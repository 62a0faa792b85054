package models

import (
	"strings"
	"sync"

	"go.uber.org/atomic"
)

// WorkingRow is one editable roster row. Origin is a synthetic row identifier
// assigned at load and never reused, so edits address rows regardless of how
// a view sorts or filters them.
type WorkingRow struct {
	Origin      int    `json:"origin"`
	ID          string `json:"id"`
	Credibility bool   `json:"credibility"`
	Comment     string `json:"comment"`
}

// WorkingSnapshot is the persisted form of a working copy.
type WorkingSnapshot struct {
	Headers     []string     `json:"headers"`
	Rows        []WorkingRow `json:"rows"`
	NextOrigin  int          `json:"next_origin"`
	Version     int64        `json:"version"`
	Fingerprint string       `json:"fingerprint"`
}

// WorkingCopy is the locally edited projection of the roster. The version
// counter moves forward on every accepted mutation and on every reload, and
// is used by clients to key editable state. Thread-safe.
type WorkingCopy struct {
	mu          sync.Mutex
	headers     []string
	rows        []WorkingRow
	nextOrigin  int
	fingerprint string
	version     atomic.Int64
}

// NewWorkingCopy clones the roster into editable rows. The schema's header
// names are kept so a later push writes the store's own column names back.
func NewWorkingCopy(records []InfluencerRecord, schema RosterSchema, fingerprint string) *WorkingCopy {
	w := &WorkingCopy{}
	w.reset(records, schema, fingerprint)
	return w
}

func (w *WorkingCopy) reset(records []InfluencerRecord, schema RosterSchema, fingerprint string) {
	idHeader, commHeader, credHeader := "ID", "Comment", "Credibility"
	if schema.IDHeader != "" {
		idHeader = schema.IDHeader
	}
	if schema.CommHeader != "" {
		commHeader = schema.CommHeader
	}
	if schema.CredHeader != "" {
		credHeader = schema.CredHeader
	}
	w.headers = []string{idHeader, commHeader, credHeader}
	w.rows = make([]WorkingRow, 0, len(records))
	for i, rec := range records {
		w.rows = append(w.rows, WorkingRow{
			Origin:      i,
			ID:          rec.ID,
			Credibility: rec.Approved(),
			Comment:     rec.Comment,
		})
	}
	w.nextOrigin = len(records)
	w.fingerprint = fingerprint
}

// Reload replaces the rows with a fresh roster clone and bumps the version.
// Unsynced local edits are discarded.
func (w *WorkingCopy) Reload(records []InfluencerRecord, schema RosterSchema, fingerprint string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset(records, schema, fingerprint)
	w.version.Inc()
}

func (w *WorkingCopy) Version() int64 {
	return w.version.Load()
}

func (w *WorkingCopy) Fingerprint() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fingerprint
}

func (w *WorkingCopy) SetFingerprint(fingerprint string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fingerprint = fingerprint
}

func (w *WorkingCopy) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.rows)
}

// Rows returns a copy of the current rows in storage order.
func (w *WorkingCopy) Rows() []WorkingRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WorkingRow, len(w.rows))
	copy(out, w.rows)
	return out
}

// Filter returns rows matching the optional credibility flag and comment.
func (w *WorkingCopy) Filter(credibility *bool, comment string) []WorkingRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]WorkingRow, 0, len(w.rows))
	for _, row := range w.rows {
		if credibility != nil && row.Credibility != *credibility {
			continue
		}
		if comment != "" && row.Comment != comment {
			continue
		}
		out = append(out, row)
	}
	return out
}

// ApplyEdit updates the row addressed by origin. Returns false without a
// version bump when the row does not exist or the proposed values match the
// stored ones, so replaying the same edit is a no-op.
func (w *WorkingCopy) ApplyEdit(origin int, credibility bool, comment string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.rows {
		if w.rows[i].Origin != origin {
			continue
		}
		if w.rows[i].Credibility == credibility && w.rows[i].Comment == comment {
			return false
		}
		w.rows[i].Credibility = credibility
		w.rows[i].Comment = comment
		w.version.Inc()
		return true
	}
	return false
}

// AddOrUpdate updates the row holding identity in place, or prepends a new
// row when no match exists. Both paths bump the version. Returns true when a
// new row was added.
func (w *WorkingCopy) AddOrUpdate(identity string, credibility bool, comment string) bool {
	id := NormalizeIdentity(identity)
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.rows {
		if w.rows[i].ID == id {
			w.rows[i].Credibility = credibility
			w.rows[i].Comment = comment
			w.version.Inc()
			return false
		}
	}
	row := WorkingRow{Origin: w.nextOrigin, ID: id, Credibility: credibility, Comment: comment}
	w.nextOrigin++
	w.rows = append([]WorkingRow{row}, w.rows...)
	w.version.Inc()
	return true
}

// Grid serializes the copy into the store's tabular form: header row first,
// credibility as the literal strings the store uses.
func (w *WorkingCopy) Grid() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	grid := make([][]string, 0, len(w.rows)+1)
	headers := make([]string, len(w.headers))
	copy(headers, w.headers)
	grid = append(grid, headers)
	for _, row := range w.rows {
		grid = append(grid, []string{row.ID, row.Comment, credibilityCell(row.Credibility)})
	}
	return grid
}

func credibilityCell(approved bool) string {
	if approved {
		return "True"
	}
	return "False"
}

// Comments returns the distinct non-empty comments, for view filters.
func (w *WorkingCopy) Comments() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]struct{}, len(w.rows))
	out := make([]string, 0, len(w.rows))
	for _, row := range w.rows {
		c := strings.TrimSpace(row.Comment)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (w *WorkingCopy) Snapshot() *WorkingSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows := make([]WorkingRow, len(w.rows))
	copy(rows, w.rows)
	headers := make([]string, len(w.headers))
	copy(headers, w.headers)
	return &WorkingSnapshot{
		Headers:     headers,
		Rows:        rows,
		NextOrigin:  w.nextOrigin,
		Version:     w.version.Load(),
		Fingerprint: w.fingerprint,
	}
}

// RestoreWorkingCopy rebuilds a working copy from a persisted snapshot.
func RestoreWorkingCopy(s *WorkingSnapshot) *WorkingCopy {
	w := &WorkingCopy{
		headers:     s.Headers,
		rows:        s.Rows,
		nextOrigin:  s.NextOrigin,
		fingerprint: s.Fingerprint,
	}
	if len(w.headers) == 0 {
		w.headers = []string{"ID", "Comment", "Credibility"}
	}
	w.version.Store(s.Version)
	return w
}
