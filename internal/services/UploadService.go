package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/structures"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

var ErrSessionNotFound = errors.New("upload session not found")

// UploadSession is one processed upload, keyed by the content hash of its raw
// bytes. RosterFP records which roster state the partitions were computed
// against, so they can be recomputed after the roster changes. A published
// session is never mutated; recomputation swaps in a replacement, so callers
// can read a returned session without holding any lock.
type UploadSession struct {
	Hash       string                     `json:"hash"`
	Name       string                     `json:"name"`
	Candidates []models.UploadedCandidate `json:"candidates"`
	Result     ReconcileResult            `json:"result"`
	RosterFP   string                     `json:"roster_fp"`
	CreatedAt  time.Time                  `json:"created_at"`
}

type UploadServiceInterface interface {
	// Process parses and reconciles an uploaded file. Re-uploading the same
	// bytes returns the existing session without re-parsing.
	Process(ctx context.Context, name string, data []byte) (*UploadSession, bool, error)
	// Partitions returns a session's buckets, recomputed first if the roster
	// changed since they were derived.
	Partitions(ctx context.Context, hash string) (*UploadSession, error)
	SessionCount() int
}

type UploadService struct {
	mu         sync.Mutex
	sessions   map[string]*UploadSession
	conf       *structures.Config
	logger     providers.Logger
	roster     RosterServiceInterface
	reconciler ReconcileServiceInterface
}

func NewUploadService(conf *structures.Config, logger providers.Logger, roster RosterServiceInterface, reconciler ReconcileServiceInterface) UploadServiceInterface {
	return &UploadService{
		sessions:   make(map[string]*UploadSession),
		conf:       conf,
		logger:     logger,
		roster:     roster,
		reconciler: reconciler,
	}
}

func (us *UploadService) Process(ctx context.Context, name string, data []byte) (*UploadSession, bool, error) {
	hash := models.ContentHash(data)

	us.mu.Lock()
	sess, reused := us.sessions[hash]
	us.mu.Unlock()
	if reused {
		fresh, err := us.refresh(ctx, sess)
		if err != nil {
			return nil, false, err
		}
		return fresh, true, nil
	}

	grid, err := parseUploadGrid(name, data)
	if err != nil {
		return nil, false, err
	}
	candidates, err := candidatesFromGrid(grid)
	if err != nil {
		return nil, false, err
	}

	sess = &UploadSession{
		Hash:       hash,
		Name:       name,
		Candidates: candidates,
		CreatedAt:  time.Now(),
	}
	sess, err = us.refresh(ctx, sess)
	if err != nil {
		return nil, false, err
	}

	us.mu.Lock()
	us.evictLocked()
	us.sessions[hash] = sess
	us.mu.Unlock()

	us.logger.Infof(providers.TypeApp, "Processed upload %s (%s): %d candidates", name, hash[:8], len(candidates))
	return sess, false, nil
}

func (us *UploadService) Partitions(ctx context.Context, hash string) (*UploadSession, error) {
	us.mu.Lock()
	sess, ok := us.sessions[hash]
	us.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return us.refresh(ctx, sess)
}

func (us *UploadService) SessionCount() int {
	us.mu.Lock()
	defer us.mu.Unlock()
	return len(us.sessions)
}

// refresh recomputes the partitions when the roster fingerprint moved since
// the last reconciliation. The passed session stays untouched; a recomputed
// replacement is built and swapped into the registry under the lock, so a
// concurrent reader either sees the old consistent session or the new one,
// never a mix.
func (us *UploadService) refresh(ctx context.Context, sess *UploadSession) (*UploadSession, error) {
	fp, err := us.roster.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}
	if sess.RosterFP == fp {
		return sess, nil
	}
	roster, _, err := us.roster.Load(ctx)
	if err != nil {
		return nil, err
	}

	fresh := *sess
	fresh.Result = us.reconciler.Reconcile(fresh.Candidates, roster)
	fresh.RosterFP = fp

	us.mu.Lock()
	if _, ok := us.sessions[fresh.Hash]; ok {
		us.sessions[fresh.Hash] = &fresh
	}
	us.mu.Unlock()
	return &fresh, nil
}

// evictLocked drops the oldest session once the registry is full.
func (us *UploadService) evictLocked() {
	if len(us.sessions) < us.conf.Upload.MaxSessions {
		return
	}
	oldestHash := ""
	var oldest time.Time
	for h, s := range us.sessions {
		if oldestHash == "" || s.CreatedAt.Before(oldest) {
			oldestHash = h
			oldest = s.CreatedAt
		}
	}
	if oldestHash != "" {
		delete(us.sessions, oldestHash)
	}
}

func parseUploadGrid(name string, data []byte) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		grid, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parsing CSV upload: %w", err)
		}
		return grid, nil
	}

	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing Excel upload: %w", err)
	}
	defer file.Close()

	grid, err := file.GetRows(file.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("reading Excel sheet: %w", err)
	}
	return grid, nil
}

// candidatesFromGrid maps the raw upload into typed candidates. When no
// column is named exactly "ID", the first column takes that role. Known
// metric columns are coerced to numbers; unparseable cells stay raw-only.
func candidatesFromGrid(grid [][]string) ([]models.UploadedCandidate, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, models.ErrNoIdentityColumn
	}

	headers := models.MakeUniqueHeaders(grid[0])
	idIdx := -1
	for i, h := range headers {
		if h == "ID" {
			idIdx = i
			break
		}
	}
	if idIdx < 0 {
		idIdx = 0
		headers[0] = "ID"
	}

	table := models.Table{Headers: headers, Rows: grid[1:]}
	candidates := make([]models.UploadedCandidate, 0, len(table.Rows))
	for i := range table.Rows {
		fields := make(map[string]string, len(headers))
		for col, h := range headers {
			fields[h] = table.Cell(i, col)
		}
		metrics := make(map[string]float64)
		for _, col := range models.NumericColumns {
			raw, ok := fields[col]
			if !ok {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				metrics[col] = v
			}
		}
		candidates = append(candidates, models.UploadedCandidate{
			Origin:  i,
			ID:      models.NormalizeIdentity(table.Cell(i, idIdx)),
			Fields:  fields,
			Metrics: metrics,
		})
	}
	return candidates, nil
}
