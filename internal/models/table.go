package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoIdentityColumn = errors.New("no usable identity column")

// Table wraps a raw header+rows grid from the remote store or an upload.
// Headers are de-duplicated once at construction so downstream lookups never
// collide on repeated column names.
type Table struct {
	Headers []string
	Rows    [][]string
}

func NewTable(grid [][]string) Table {
	if len(grid) == 0 {
		return Table{}
	}
	return Table{
		Headers: MakeUniqueHeaders(grid[0]),
		Rows:    grid[1:],
	}
}

// MakeUniqueHeaders suffixes repeated header names with their occurrence count.
func MakeUniqueHeaders(headers []string) []string {
	seen := make(map[string]int, len(headers))
	result := make([]string, 0, len(headers))
	for _, h := range headers {
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			result = append(result, fmt.Sprintf("%s_%d", h, n+1))
		} else {
			seen[h] = 0
			result = append(result, h)
		}
	}
	return result
}

// ColumnIndex returns the first header containing substr.
func (t Table) ColumnIndex(substr string) (int, bool) {
	for i, h := range t.Headers {
		if strings.Contains(h, substr) {
			return i, true
		}
	}
	return -1, false
}

// Cell is a bounds-safe accessor; anything outside the grid reads as "".
func (t Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// RosterSchema maps the roster's logical columns to grid positions. Resolved
// once at load time; -1 marks an optional column that is absent and reads as
// its documented default.
type RosterSchema struct {
	ID          int
	Credibility int
	Comment     int
	IDHeader    string
	CredHeader  string
	CommHeader  string
}

// ResolveRosterSchema locates the ID / Credibility / Comment columns by
// substring match. The identity column falls back to column zero; a grid with
// no columns at all is a data-shape failure.
func ResolveRosterSchema(t Table) (RosterSchema, error) {
	if len(t.Headers) == 0 {
		return RosterSchema{}, ErrNoIdentityColumn
	}
	s := RosterSchema{ID: 0, Credibility: -1, Comment: -1}
	if idx, ok := t.ColumnIndex("ID"); ok {
		s.ID = idx
	}
	if idx, ok := t.ColumnIndex("Credibility"); ok {
		s.Credibility = idx
	}
	if idx, ok := t.ColumnIndex("Comment"); ok {
		s.Comment = idx
	}
	s.IDHeader = t.Headers[s.ID]
	s.CredHeader = "Credibility"
	if s.Credibility >= 0 {
		s.CredHeader = t.Headers[s.Credibility]
	}
	s.CommHeader = "Comment"
	if s.Comment >= 0 {
		s.CommHeader = t.Headers[s.Comment]
	}
	return s, nil
}

// RosterFromGrid builds the typed roster from a raw grid, populating required
// columns with their defaults: missing comment reads "", missing credibility
// reads "false". Credibility cells are lowercased and trimmed.
func RosterFromGrid(grid [][]string) ([]InfluencerRecord, RosterSchema, error) {
	t := NewTable(grid)
	schema, err := ResolveRosterSchema(t)
	if err != nil {
		return nil, RosterSchema{}, err
	}

	records := make([]InfluencerRecord, 0, len(t.Rows))
	for i := range t.Rows {
		cred := "false"
		if schema.Credibility >= 0 {
			cred = strings.ToLower(strings.TrimSpace(t.Cell(i, schema.Credibility)))
		}
		comment := ""
		if schema.Comment >= 0 {
			comment = t.Cell(i, schema.Comment)
		}
		records = append(records, InfluencerRecord{
			ID:          NormalizeIdentity(t.Cell(i, schema.ID)),
			Credibility: cred,
			Comment:     comment,
		})
	}
	return records, schema, nil
}

// MetricsFromGrid builds the historical metrics table from the master sheet
// grid. Absent columns read as "" so consumers never branch on column
// presence.
func MetricsFromGrid(grid [][]string) []HistoricalMetric {
	t := NewTable(grid)
	if len(t.Headers) == 0 {
		return nil
	}

	col := func(substr string) int {
		idx, ok := t.ColumnIndex(substr)
		if !ok {
			return -1
		}
		return idx
	}

	idIdx := col("ID")
	if idIdx < 0 {
		idIdx = 0
	}
	dateIdx := col("Publication date")
	priceIdx := col("Post Price")
	followerIdx := col("Follower")
	viewIdx := col("Avg View")
	cpvIdx := col("CPV")
	categoryIdx := col("Category")

	metrics := make([]HistoricalMetric, 0, len(t.Rows))
	for i := range t.Rows {
		metrics = append(metrics, HistoricalMetric{
			ID:              NormalizeIdentity(t.Cell(i, idIdx)),
			PublicationDate: t.Cell(i, dateIdx),
			PostPrice:       t.Cell(i, priceIdx),
			Follower:        t.Cell(i, followerIdx),
			AvgView:         t.Cell(i, viewIdx),
			CPV:             t.Cell(i, cpvIdx),
			Category:        t.Cell(i, categoryIdx),
		})
	}
	return metrics
}
