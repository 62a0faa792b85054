package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/services"
	"infcheck/internal/structures"
)

// --- local mocks (scoped to controller tests) ---

type mockLogger struct{}

func (m *mockLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (m *mockLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (m *mockLogger) Close()                                                  {}

type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache                     { return &mockCache{data: make(map[string][]byte)} }
func (m *mockCache) Get(key string) ([]byte, bool) { v, ok := m.data[key]; return v, ok }
func (m *mockCache) Set(key string, value []byte)  { m.data[key] = value }
func (m *mockCache) SetWithTTL(key string, value []byte, _ time.Duration) {
	m.data[key] = value
}
func (m *mockCache) Del(key string) { delete(m.data, key) }

type mockUploads struct {
	session    *services.UploadSession
	reused     bool
	processErr error
	lookupErr  error
}

func (m *mockUploads) Process(_ context.Context, _ string, _ []byte) (*services.UploadSession, bool, error) {
	if m.processErr != nil {
		return nil, false, m.processErr
	}
	return m.session, m.reused, nil
}

func (m *mockUploads) Partitions(_ context.Context, hash string) (*services.UploadSession, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	if m.session == nil || m.session.Hash != hash {
		return nil, services.ErrSessionNotFound
	}
	return m.session, nil
}

func (m *mockUploads) SessionCount() int {
	if m.session == nil {
		return 0
	}
	return 1
}

type mockWorking struct {
	wc  *models.WorkingCopy
	err error
}

func (m *mockWorking) Current(_ context.Context) (*models.WorkingCopy, error) {
	return m.wc, m.err
}

func (m *mockWorking) ApplyEdit(_ context.Context, origin int, credibility bool, comment string) (bool, int64, error) {
	if m.err != nil {
		return false, 0, m.err
	}
	changed := m.wc.ApplyEdit(origin, credibility, comment)
	return changed, m.wc.Version(), nil
}

func (m *mockWorking) AddOrUpdate(_ context.Context, identity string, credibility bool, comment string) (bool, int64, error) {
	if m.err != nil {
		return false, 0, m.err
	}
	added := m.wc.AddOrUpdate(identity, credibility, comment)
	return added, m.wc.Version(), nil
}

func (m *mockWorking) CheckRemote(_ context.Context) (bool, error) { return false, nil }
func (m *mockWorking) Rebase(_ string)                             {}
func (m *mockWorking) MarkStale()                                  {}
func (m *mockWorking) Version() int64 {
	if m.wc == nil {
		return 0
	}
	return m.wc.Version()
}
func (m *mockWorking) Snapshot() *models.WorkingSnapshot {
	if m.wc == nil {
		return nil
	}
	return m.wc.Snapshot()
}
func (m *mockWorking) Restore(_ *models.WorkingSnapshot) {}

type mockSync struct {
	pushErr    error
	pushCalls  int
	added      int
	approveErr error
}

func (m *mockSync) Push(_ context.Context) error {
	m.pushCalls++
	return m.pushErr
}

func (m *mockSync) ApproveUnknowns(_ context.Context, _ string, _ []services.ApprovalPick) (int, error) {
	if m.approveErr != nil {
		return 0, m.approveErr
	}
	return m.added, nil
}

type mockExport struct {
	data []byte
	err  error
}

func (m *mockExport) Workbook(_ *services.UploadSession, _ []string) ([]byte, error) {
	return m.data, m.err
}

type mockRoster struct {
	metrics []models.HistoricalMetric
	loadErr error
}

func (m *mockRoster) Load(_ context.Context) ([]models.InfluencerRecord, []models.HistoricalMetric, error) {
	return nil, m.metrics, m.loadErr
}
func (m *mockRoster) LoadRoster(_ context.Context) ([]models.InfluencerRecord, models.RosterSchema, error) {
	return nil, models.RosterSchema{}, m.loadErr
}
func (m *mockRoster) Fingerprint(_ context.Context) (string, error) { return "fp1", nil }
func (m *mockRoster) Invalidate()                                   {}

// --- helpers ---

type controllerFixture struct {
	uploads *mockUploads
	working *mockWorking
	sync    *mockSync
	export  *mockExport
	roster  *mockRoster
	cache   *mockCache
	ac      *ApiController
}

func newFixture() *controllerFixture {
	schema := models.RosterSchema{IDHeader: "ID", CommHeader: "Comment", CredHeader: "Credibility"}
	wc := models.NewWorkingCopy([]models.InfluencerRecord{
		{ID: "alice", Credibility: "true", Comment: "solid"},
		{ID: "bob", Credibility: "false", Comment: "spam"},
	}, schema, "fp1")

	f := &controllerFixture{
		uploads: &mockUploads{},
		working: &mockWorking{wc: wc},
		sync:    &mockSync{},
		export:  &mockExport{data: []byte("xlsx-bytes")},
		roster:  &mockRoster{},
		cache:   newMockCache(),
	}
	conf := &structures.Config{}
	conf.Upload.MaxFileSize = 1 << 20
	f.ac = NewApiController(conf, &mockLogger{}, f.cache, f.uploads, f.working, f.sync, f.export, f.roster)
	return f
}

func testSession() *services.UploadSession {
	return &services.UploadSession{
		Hash:     "abc123",
		RosterFP: "fp1",
		Result: services.ReconcileResult{
			Pending:  []models.PendingRow{{Candidate: models.UploadedCandidate{ID: "alice"}, Select: true}},
			Rejected: []models.RejectedRow{{ID: "bob"}},
			Unknown:  []models.UnknownRow{{ID: "carol"}},
		},
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// --- Upload tests ---

func TestUpload_ValidFile(t *testing.T) {
	f := newFixture()
	f.uploads.session = testSession()

	body, contentType := multipartBody(t, "file", "batch.csv", "ID\nalice\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	f.ac.Upload(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "abc123", resp["hash"])
	assert.Equal(t, float64(1), resp["pending"])
	assert.Equal(t, float64(1), resp["rejected"])
	assert.Equal(t, float64(1), resp["unknown"])
}

func TestUpload_MissingFileField(t *testing.T) {
	f := newFixture()

	body, contentType := multipartBody(t, "wrong", "batch.csv", "ID\nalice\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	f.ac.Upload(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpload_NoIdentityColumn(t *testing.T) {
	f := newFixture()
	f.uploads.processErr = models.ErrNoIdentityColumn

	body, contentType := multipartBody(t, "file", "batch.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	f.ac.Upload(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- Session tests ---

func TestGetSession_ReturnsPartitions(t *testing.T) {
	f := newFixture()
	f.uploads.session = testSession()

	req := httptest.NewRequest(http.MethodGet, "/session?h=abc123", nil)
	rr := httptest.NewRecorder()
	f.ac.GetSession(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp services.ReconcileResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Pending, 1)
	assert.Len(t, resp.Unknown, 1)
}

func TestGetSession_MissingHash(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.GetSession(rr, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.GetSession(rr, httptest.NewRequest(http.MethodGet, "/session?h=unknown", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetSession_SecondCallFromCache(t *testing.T) {
	f := newFixture()
	f.uploads.session = testSession()

	req := httptest.NewRequest(http.MethodGet, "/session?h=abc123", nil)
	f.ac.GetSession(httptest.NewRecorder(), req)
	require.NotEmpty(t, f.cache.data)

	rr := httptest.NewRecorder()
	f.ac.GetSession(rr, httptest.NewRequest(http.MethodGet, "/session?h=abc123", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

// --- Approval tests ---

func TestApproveSession_Valid(t *testing.T) {
	f := newFixture()
	f.sync.added = 2

	payload := `{"hash":"abc123","picks":[{"id":"carol","status":"Approved","comment":"vetted"}]}`
	req := httptest.NewRequest(http.MethodPost, "/session/approve", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	f.ac.ApproveSession(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp["added"])
}

func TestApproveSession_InvalidJSON(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.ApproveSession(rr, httptest.NewRequest(http.MethodPost, "/session/approve", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApproveSession_UnknownSession(t *testing.T) {
	f := newFixture()
	f.sync.approveErr = services.ErrSessionNotFound

	payload := `{"hash":"gone","picks":[]}`
	rr := httptest.NewRecorder()
	f.ac.ApproveSession(rr, httptest.NewRequest(http.MethodPost, "/session/approve", strings.NewReader(payload)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- Export tests ---

func TestExport_ReturnsWorkbook(t *testing.T) {
	f := newFixture()
	f.uploads.session = testSession()

	req := httptest.NewRequest(http.MethodGet, "/export?h=abc123&id=alice", nil)
	rr := httptest.NewRecorder()
	f.ac.Export(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "xlsx-bytes", rr.Body.String())
}

func TestExport_RenderFailure(t *testing.T) {
	f := newFixture()
	f.uploads.session = testSession()
	f.export.err = errors.New("render broken")

	rr := httptest.NewRecorder()
	f.ac.Export(rr, httptest.NewRequest(http.MethodGet, "/export?h=abc123", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- Roster tests ---

func TestGetRoster_AllRows(t *testing.T) {
	f := newFixture()

	rr := httptest.NewRecorder()
	f.ac.GetRoster(rr, httptest.NewRequest(http.MethodGet, "/roster", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Version  int64               `json:"version"`
		Rows     []models.WorkingRow `json:"rows"`
		Comments []string            `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Rows, 2)
	assert.ElementsMatch(t, []string{"solid", "spam"}, resp.Comments)
}

func TestGetRoster_CredibilityFilter(t *testing.T) {
	f := newFixture()

	rr := httptest.NewRecorder()
	f.ac.GetRoster(rr, httptest.NewRequest(http.MethodGet, "/roster?cred=true", nil))

	var resp struct {
		Rows []models.WorkingRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "alice", resp.Rows[0].ID)
}

func TestGetRoster_InvalidCredibility(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.GetRoster(rr, httptest.NewRequest(http.MethodGet, "/roster?cred=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRoster_CacheKeyedByVersion(t *testing.T) {
	f := newFixture()

	f.ac.GetRoster(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/roster", nil))
	require.Len(t, f.cache.data, 1)

	// An edit moves the version, so the next read computes a fresh entry.
	f.working.wc.ApplyEdit(0, false, "changed")
	f.ac.GetRoster(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/roster", nil))
	assert.Len(t, f.cache.data, 2)
}

func TestEditRoster_Valid(t *testing.T) {
	f := newFixture()

	payload := `{"origin":1,"credibility":true,"comment":"redeemed"}`
	rr := httptest.NewRecorder()
	f.ac.EditRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/edit", strings.NewReader(payload)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["changed"])
	assert.Equal(t, float64(1), resp["version"])
}

func TestEditRoster_MissingOrigin(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.EditRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/edit", strings.NewReader(`{"credibility":true}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEditRoster_ZeroOriginAccepted(t *testing.T) {
	f := newFixture()

	payload := `{"origin":0,"credibility":false,"comment":"flip"}`
	rr := httptest.NewRecorder()
	f.ac.EditRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/edit", strings.NewReader(payload)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAddRoster_Valid(t *testing.T) {
	f := newFixture()

	payload := `{"id":"@carol","credibility":true,"comment":"new find"}`
	rr := httptest.NewRecorder()
	f.ac.AddRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/add", strings.NewReader(payload)))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["added"])
}

func TestAddRoster_BlankIdentity(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.AddRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/add", strings.NewReader(`{"id":"  @ ","credibility":true}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- Sync tests ---

func TestSyncRoster_Success(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.SyncRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/sync", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.sync.pushCalls)
}

func TestSyncRoster_PushFailure(t *testing.T) {
	f := newFixture()
	f.sync.pushErr = errors.New("remote state unknown")

	rr := httptest.NewRecorder()
	f.ac.SyncRoster(rr, httptest.NewRequest(http.MethodPost, "/roster/sync", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

// --- History tests ---

func TestHistory_FilteredAndSorted(t *testing.T) {
	f := newFixture()
	f.roster.metrics = []models.HistoricalMetric{
		{ID: "alice", PublicationDate: "2024-03-01"},
		{ID: "bob", PublicationDate: "2024-01-01"},
		{ID: "alice", PublicationDate: "2024-01-15"},
	}

	rr := httptest.NewRecorder()
	f.ac.History(rr, httptest.NewRequest(http.MethodGet, "/history?id=@alice", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []models.HistoricalMetric
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "2024-01-15", resp[0].PublicationDate)
	assert.Equal(t, "2024-03-01", resp[1].PublicationDate)
}

func TestHistory_MissingID(t *testing.T) {
	f := newFixture()
	rr := httptest.NewRecorder()
	f.ac.History(rr, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistory_LoadFailure(t *testing.T) {
	f := newFixture()
	f.roster.loadErr = errors.New("store offline")

	rr := httptest.NewRecorder()
	f.ac.History(rr, httptest.NewRequest(http.MethodGet, "/history?id=alice", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
