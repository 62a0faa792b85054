package services

import (
	"context"
	"fmt"
	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/sheet"
	"infcheck/internal/structures"
)

// ApprovalPick is one operator decision on an unknown candidate.
type ApprovalPick struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

type SyncServiceInterface interface {
	// Push overwrites the remote roster with the working copy: clear, then
	// write. Not retried; a failure leaves the remote state unknown and the
	// caller must reload before trusting it again.
	Push(ctx context.Context) error
	// ApproveUnknowns appends decided unknown candidates from an upload
	// session to the remote roster. Returns the number of appended rows.
	ApproveUnknowns(ctx context.Context, hash string, picks []ApprovalPick) (int, error)
}

type SyncService struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	store   sheet.Store
	roster  RosterServiceInterface
	working WorkingCopyServiceInterface
	uploads UploadServiceInterface
}

func NewSyncService(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, workbook *sheet.Workbook, roster RosterServiceInterface, working WorkingCopyServiceInterface, uploads UploadServiceInterface) SyncServiceInterface {
	return &SyncService{
		logger:  logger,
		metrics: metrics,
		store:   workbook.Worksheet(conf.Sheet.InfluencersSheet),
		roster:  roster,
		working: working,
		uploads: uploads,
	}
}

func (ss *SyncService) Push(ctx context.Context) error {
	wc, err := ss.working.Current(ctx)
	if err != nil {
		return err
	}
	grid := wc.Grid()

	if err := ss.store.Clear(ctx); err != nil {
		return ss.failPush(err)
	}
	if err := ss.store.WriteRows(ctx, grid); err != nil {
		return ss.failPush(err)
	}

	ss.roster.Invalidate()
	ss.working.Rebase(models.RosterFingerprint(grid))
	ss.metrics.IncSyncPushes("ok")
	ss.logger.Infof(providers.TypeApp, "Pushed %d roster rows to the store", len(grid)-1)
	return nil
}

// failPush invalidates the cache so the next read refetches and
// refingerprints whatever partial state the failed write left behind.
func (ss *SyncService) failPush(err error) error {
	ss.roster.Invalidate()
	ss.metrics.IncSyncPushes("error")
	ss.logger.Errorf(providers.TypeApp, "Push failed, remote state unknown: %s", err)
	return fmt.Errorf("push failed, remote state unknown: %w", err)
}

func (ss *SyncService) ApproveUnknowns(ctx context.Context, hash string, picks []ApprovalPick) (int, error) {
	sess, err := ss.uploads.Partitions(ctx, hash)
	if err != nil {
		return 0, err
	}

	unknown := make(map[string]struct{}, len(sess.Result.Unknown))
	for _, row := range sess.Result.Unknown {
		unknown[row.ID] = struct{}{}
	}

	rows := make([][]string, 0, len(picks))
	for _, pick := range picks {
		id := models.NormalizeIdentity(pick.ID)
		if _, ok := unknown[id]; !ok {
			continue
		}
		cred := "False"
		if pick.Status == models.StatusApproved {
			cred = "True"
		}
		comment := pick.Comment
		if comment == "" {
			comment = models.DefaultComment
		}
		rows = append(rows, []string{id, comment, cred})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := ss.store.AppendRows(ctx, rows); err != nil {
		ss.roster.Invalidate()
		return 0, fmt.Errorf("appending approved influencers: %w", err)
	}

	ss.roster.Invalidate()
	ss.working.MarkStale()
	ss.logger.Infof(providers.TypeApp, "Appended %d influencer(s) from session %s", len(rows), hash[:8])
	return len(rows), nil
}
