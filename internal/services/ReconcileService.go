package services

import (
	"infcheck/internal/models"
	"infcheck/internal/providers"
	"time"
)

// ReconcileResult partitions an upload's candidates against the roster.
// The three buckets are disjoint and together cover every candidate row.
type ReconcileResult struct {
	Pending  []models.PendingRow  `json:"pending"`
	Rejected []models.RejectedRow `json:"rejected"`
	Unknown  []models.UnknownRow  `json:"unknown"`
}

func (r ReconcileResult) Counts() (pending, rejected, unknown int) {
	return len(r.Pending), len(r.Rejected), len(r.Unknown)
}

type ReconcileServiceInterface interface {
	Reconcile(candidates []models.UploadedCandidate, roster []models.InfluencerRecord) ReconcileResult
}

type ReconcileService struct {
	metrics providers.MetricsProviderInterface
}

func NewReconcileService(metrics providers.MetricsProviderInterface) ReconcileServiceInterface {
	return &ReconcileService{metrics: metrics}
}

// Reconcile left-joins candidates to the roster on identity. A candidate
// whose roster credibility equals "false" (any case) is Rejected; one with no
// roster match is Unknown; everything else is Pending. Duplicate identities
// inside the upload stay separate rows and land in the same bucket.
func (rs *ReconcileService) Reconcile(candidates []models.UploadedCandidate, roster []models.InfluencerRecord) ReconcileResult {
	start := time.Now()

	index := make(map[string]models.InfluencerRecord, len(roster))
	for _, rec := range roster {
		if _, ok := index[rec.ID]; !ok {
			index[rec.ID] = rec
		}
	}

	result := ReconcileResult{
		Pending:  []models.PendingRow{},
		Rejected: []models.RejectedRow{},
		Unknown:  []models.UnknownRow{},
	}
	for _, cand := range candidates {
		link := models.ProfileURL(cand.ID)
		rec, matched := index[cand.ID]
		switch {
		case !matched:
			result.Unknown = append(result.Unknown, models.UnknownRow{
				ID:      cand.ID,
				Link:    link,
				Comment: models.DefaultComment,
				Status:  models.StatusRejected,
			})
		case rec.Rejected():
			result.Rejected = append(result.Rejected, models.RejectedRow{
				ID:      cand.ID,
				Comment: rec.Comment,
				Link:    link,
			})
		default:
			result.Pending = append(result.Pending, models.PendingRow{
				Candidate: cand,
				Link:      link,
				Select:    true,
				Compare:   false,
			})
		}
	}

	rs.metrics.ObserveReconcileDuration(time.Since(start))
	return result
}
