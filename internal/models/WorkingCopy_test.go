package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() []InfluencerRecord {
	return []InfluencerRecord{
		{ID: "alice", Credibility: "true", Comment: "solid"},
		{ID: "bob", Credibility: "false", Comment: "spam"},
		{ID: "carol", Credibility: "true", Comment: ""},
	}
}

func testSchema() RosterSchema {
	return RosterSchema{ID: 0, Comment: 1, Credibility: 2, IDHeader: "ID", CommHeader: "Comment", CredHeader: "Credibility"}
}

func TestWorkingCopy_CloneAssignsOrigins(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")
	rows := wc.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, 0, rows[0].Origin)
	assert.Equal(t, 1, rows[1].Origin)
	assert.Equal(t, 2, rows[2].Origin)
	assert.True(t, rows[0].Credibility)
	assert.False(t, rows[1].Credibility)
	assert.Equal(t, int64(0), wc.Version())
	assert.Equal(t, "fp1", wc.Fingerprint())
}

func TestWorkingCopy_ApplyEditBumpsVersion(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	changed := wc.ApplyEdit(1, true, "redeemed")
	assert.True(t, changed)
	assert.Equal(t, int64(1), wc.Version())

	rows := wc.Rows()
	assert.True(t, rows[1].Credibility)
	assert.Equal(t, "redeemed", rows[1].Comment)
}

func TestWorkingCopy_ApplyEditNoopKeepsVersion(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	changed := wc.ApplyEdit(0, true, "solid")
	assert.False(t, changed)
	assert.Equal(t, int64(0), wc.Version())
}

func TestWorkingCopy_ApplyEditReplayIsNoop(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	assert.True(t, wc.ApplyEdit(1, true, "redeemed"))
	assert.False(t, wc.ApplyEdit(1, true, "redeemed"))
	assert.Equal(t, int64(1), wc.Version())
}

func TestWorkingCopy_ApplyEditUnknownOrigin(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")
	assert.False(t, wc.ApplyEdit(99, true, "x"))
	assert.Equal(t, int64(0), wc.Version())
}

func TestWorkingCopy_AddPrependsNewRow(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	added := wc.AddOrUpdate("@dave", true, "new find")
	assert.True(t, added)
	assert.Equal(t, int64(1), wc.Version())

	rows := wc.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "dave", rows[0].ID)
	assert.Equal(t, 3, rows[0].Origin)
}

func TestWorkingCopy_AddExistingUpdatesInPlace(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	added := wc.AddOrUpdate("@bob", true, "second chance")
	assert.False(t, added)
	assert.Equal(t, int64(1), wc.Version())

	rows := wc.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "bob", rows[1].ID)
	assert.True(t, rows[1].Credibility)
	assert.Equal(t, "second chance", rows[1].Comment)
}

func TestWorkingCopy_GridColumnOrderAndBooleans(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")
	grid := wc.Grid()
	require.Len(t, grid, 4)
	assert.Equal(t, []string{"ID", "Comment", "Credibility"}, grid[0])
	assert.Equal(t, []string{"alice", "solid", "True"}, grid[1])
	assert.Equal(t, []string{"bob", "spam", "False"}, grid[2])
}

func TestWorkingCopy_GridKeepsStoreHeaders(t *testing.T) {
	schema := testSchema()
	schema.IDHeader = "Influencer ID"
	schema.CommHeader = "Final Comment"
	wc := NewWorkingCopy(testRoster(), schema, "fp1")
	assert.Equal(t, []string{"Influencer ID", "Final Comment", "Credibility"}, wc.Grid()[0])
}

func TestWorkingCopy_FilterByCredibilityAndComment(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")

	yes := true
	rows := wc.Filter(&yes, "")
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].ID)
	assert.Equal(t, "carol", rows[1].ID)

	rows = wc.Filter(nil, "spam")
	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0].ID)

	no := false
	rows = wc.Filter(&no, "solid")
	assert.Empty(t, rows)
}

func TestWorkingCopy_CommentsDistinctNonEmpty(t *testing.T) {
	roster := append(testRoster(), InfluencerRecord{ID: "dave", Credibility: "true", Comment: "solid"})
	wc := NewWorkingCopy(roster, testSchema(), "fp1")
	assert.Equal(t, []string{"solid", "spam"}, wc.Comments())
}

func TestWorkingCopy_ReloadDiscardsEdits(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")
	wc.ApplyEdit(0, false, "changed my mind")

	wc.Reload(testRoster(), testSchema(), "fp2")
	rows := wc.Rows()
	assert.True(t, rows[0].Credibility)
	assert.Equal(t, "solid", rows[0].Comment)
	assert.Equal(t, int64(2), wc.Version())
	assert.Equal(t, "fp2", wc.Fingerprint())
}

func TestWorkingCopy_SnapshotRestoreRoundtrip(t *testing.T) {
	wc := NewWorkingCopy(testRoster(), testSchema(), "fp1")
	wc.AddOrUpdate("dave", true, "new")

	snap := wc.Snapshot()
	restored := RestoreWorkingCopy(snap)

	assert.Equal(t, wc.Rows(), restored.Rows())
	assert.Equal(t, wc.Version(), restored.Version())
	assert.Equal(t, wc.Fingerprint(), restored.Fingerprint())
	assert.Equal(t, wc.Grid(), restored.Grid())

	// Origins keep advancing from where the snapshot left off.
	restored.AddOrUpdate("erin", false, "")
	assert.Equal(t, 4, restored.Rows()[0].Origin)
}

func TestRestoreWorkingCopy_EmptyHeadersGetDefaults(t *testing.T) {
	restored := RestoreWorkingCopy(&WorkingSnapshot{Rows: []WorkingRow{{Origin: 0, ID: "alice"}}, NextOrigin: 1})
	assert.Equal(t, []string{"ID", "Comment", "Credibility"}, restored.Grid()[0])
}
