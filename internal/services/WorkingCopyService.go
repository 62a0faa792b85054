package services

import (
	"context"
	"infcheck/internal/models"
	"infcheck/internal/providers"
	"sync"
)

type WorkingCopyServiceInterface interface {
	// Current returns the live working copy, loading it on first access and
	// discarding it for a fresh clone when the remote roster changed.
	Current(ctx context.Context) (*models.WorkingCopy, error)
	ApplyEdit(ctx context.Context, origin int, credibility bool, comment string) (bool, int64, error)
	AddOrUpdate(ctx context.Context, identity string, credibility bool, comment string) (bool, int64, error)
	// CheckRemote compares the remote fingerprint against the live copy and
	// reloads on mismatch. Returns whether a reload happened.
	CheckRemote(ctx context.Context) (bool, error)
	// Rebase records a new fingerprint baseline after our own push, so the
	// push does not read back as a foreign change.
	Rebase(fingerprint string)
	// MarkStale forces a reload on the next access.
	MarkStale()
	Version() int64
	Snapshot() *models.WorkingSnapshot
	Restore(snapshot *models.WorkingSnapshot)
}

type WorkingCopyService struct {
	mu      sync.Mutex
	wc      *models.WorkingCopy
	stale   bool
	roster  RosterServiceInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewWorkingCopyService(roster RosterServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) WorkingCopyServiceInterface {
	return &WorkingCopyService{
		roster:  roster,
		logger:  logger,
		metrics: metrics,
	}
}

func (ws *WorkingCopyService) Current(ctx context.Context) (*models.WorkingCopy, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.currentLocked(ctx)
}

func (ws *WorkingCopyService) currentLocked(ctx context.Context) (*models.WorkingCopy, error) {
	if ws.wc == nil {
		records, schema, err := ws.roster.LoadRoster(ctx)
		if err != nil {
			return nil, err
		}
		fp, err := ws.roster.Fingerprint(ctx)
		if err != nil {
			return nil, err
		}
		ws.wc = models.NewWorkingCopy(records, schema, fp)
		ws.stale = false
		return ws.wc, nil
	}

	if _, err := ws.reloadIfChangedLocked(ctx); err != nil {
		// The copy we hold is still coherent; serve it and let the next
		// access retry the remote check.
		ws.logger.Warnf(providers.TypeApp, "Remote fingerprint check failed: %s", err)
	}
	return ws.wc, nil
}

// reloadIfChangedLocked discards the working copy and clones the roster again
// when the remote content no longer matches the copy's fingerprint. Local
// unsynced edits are lost on that path; the conflict is resolved in favor of
// the remote store.
func (ws *WorkingCopyService) reloadIfChangedLocked(ctx context.Context) (bool, error) {
	fp, err := ws.roster.Fingerprint(ctx)
	if err != nil {
		return false, err
	}
	if !ws.stale && fp == ws.wc.Fingerprint() {
		return false, nil
	}

	ws.roster.Invalidate()
	records, schema, err := ws.roster.LoadRoster(ctx)
	if err != nil {
		return false, err
	}
	fp, err = ws.roster.Fingerprint(ctx)
	if err != nil {
		return false, err
	}
	ws.wc.Reload(records, schema, fp)
	ws.stale = false
	ws.metrics.IncRosterReloads()
	ws.logger.Infof(providers.TypeApp, "Remote roster changed, working copy reloaded (version %d)", ws.wc.Version())
	return true, nil
}

func (ws *WorkingCopyService) ApplyEdit(ctx context.Context, origin int, credibility bool, comment string) (bool, int64, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	wc, err := ws.currentLocked(ctx)
	if err != nil {
		return false, 0, err
	}
	changed := wc.ApplyEdit(origin, credibility, comment)
	return changed, wc.Version(), nil
}

func (ws *WorkingCopyService) AddOrUpdate(ctx context.Context, identity string, credibility bool, comment string) (bool, int64, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	wc, err := ws.currentLocked(ctx)
	if err != nil {
		return false, 0, err
	}
	added := wc.AddOrUpdate(identity, credibility, comment)
	return added, wc.Version(), nil
}

func (ws *WorkingCopyService) CheckRemote(ctx context.Context) (bool, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.wc == nil {
		return false, nil
	}
	return ws.reloadIfChangedLocked(ctx)
}

func (ws *WorkingCopyService) Rebase(fingerprint string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.wc != nil {
		ws.wc.SetFingerprint(fingerprint)
	}
	ws.stale = false
}

func (ws *WorkingCopyService) MarkStale() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.stale = true
}

func (ws *WorkingCopyService) Version() int64 {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.wc == nil {
		return 0
	}
	return ws.wc.Version()
}

func (ws *WorkingCopyService) Snapshot() *models.WorkingSnapshot {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.wc == nil {
		return nil
	}
	return ws.wc.Snapshot()
}

func (ws *WorkingCopyService) Restore(snapshot *models.WorkingSnapshot) {
	if snapshot == nil {
		return
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.wc = models.RestoreWorkingCopy(snapshot)
}
