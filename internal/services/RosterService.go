package services

import (
	"context"
	"fmt"
	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/sheet"
	"infcheck/internal/structures"

	json "github.com/goccy/go-json"
)

const (
	cacheKeyMerge       = "roster:merge"
	cacheKeyCredibility = "roster:cred"
	cacheKeyFingerprint = "roster:fp"
)

type RosterServiceInterface interface {
	// Load returns the roster and the historical metrics table (merge view).
	Load(ctx context.Context) ([]models.InfluencerRecord, []models.HistoricalMetric, error)
	// LoadRoster returns the roster and its resolved schema (credibility view).
	LoadRoster(ctx context.Context) ([]models.InfluencerRecord, models.RosterSchema, error)
	// Fingerprint digests the current remote roster content.
	Fingerprint(ctx context.Context) (string, error)
	// Invalidate drops all cached entries; the next load refetches.
	Invalidate()
}

type mergePayload struct {
	Influencers []models.InfluencerRecord `json:"influencers"`
	Metrics     []models.HistoricalMetric `json:"metrics"`
}

type credibilityPayload struct {
	Influencers []models.InfluencerRecord `json:"influencers"`
	Schema      models.RosterSchema       `json:"schema"`
}

type RosterService struct {
	conf        *structures.Config
	logger      providers.Logger
	cache       providers.CacheProviderInterface
	metrics     providers.MetricsProviderInterface
	influencers sheet.Store
	master      sheet.Store
}

func NewRosterService(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, workbook *sheet.Workbook) RosterServiceInterface {
	return &RosterService{
		conf:        conf,
		logger:      logger,
		cache:       cache,
		metrics:     metrics,
		influencers: workbook.Worksheet(conf.Sheet.InfluencersSheet),
		master:      workbook.Worksheet(conf.Sheet.MasterSheet),
	}
}

func (rs *RosterService) Load(ctx context.Context) ([]models.InfluencerRecord, []models.HistoricalMetric, error) {
	if data, ok := rs.cache.Get(cacheKeyMerge); ok {
		var payload mergePayload
		if err := json.Unmarshal(data, &payload); err == nil {
			return payload.Influencers, payload.Metrics, nil
		}
	}

	records, rawRows, err := rs.fetchRoster(ctx)
	if err != nil {
		return nil, nil, err
	}
	masterRows, err := rs.master.GetAllRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading master sheet: %w", err)
	}
	metrics := models.MetricsFromGrid(masterRows)

	rs.commitFingerprint(rawRows)
	if data, err := json.Marshal(mergePayload{Influencers: records, Metrics: metrics}); err == nil {
		rs.cache.SetWithTTL(cacheKeyMerge, data, rs.conf.Roster.MergeTTL)
	}
	return records, metrics, nil
}

func (rs *RosterService) LoadRoster(ctx context.Context) ([]models.InfluencerRecord, models.RosterSchema, error) {
	if data, ok := rs.cache.Get(cacheKeyCredibility); ok {
		var payload credibilityPayload
		if err := json.Unmarshal(data, &payload); err == nil {
			return payload.Influencers, payload.Schema, nil
		}
	}

	rows, err := rs.influencers.GetAllRows(ctx)
	if err != nil {
		return nil, models.RosterSchema{}, fmt.Errorf("loading influencers sheet: %w", err)
	}
	records, schema, err := models.RosterFromGrid(rows)
	if err != nil {
		return nil, models.RosterSchema{}, err
	}

	rs.metrics.SetRosterSize(len(records))
	rs.commitFingerprint(rows)
	if data, err := json.Marshal(credibilityPayload{Influencers: records, Schema: schema}); err == nil {
		rs.cache.SetWithTTL(cacheKeyCredibility, data, rs.conf.Roster.CredibilityTTL)
	}
	return records, schema, nil
}

func (rs *RosterService) Fingerprint(ctx context.Context) (string, error) {
	if data, ok := rs.cache.Get(cacheKeyFingerprint); ok {
		return string(data), nil
	}
	rows, err := rs.influencers.GetAllRows(ctx)
	if err != nil {
		return "", fmt.Errorf("fingerprinting influencers sheet: %w", err)
	}
	fp := models.RosterFingerprint(rows)
	rs.cache.SetWithTTL(cacheKeyFingerprint, []byte(fp), rs.conf.Roster.FingerprintTTL)
	return fp, nil
}

func (rs *RosterService) Invalidate() {
	rs.cache.Del(cacheKeyMerge)
	rs.cache.Del(cacheKeyCredibility)
	rs.cache.Del(cacheKeyFingerprint)
	rs.logger.Debugf(providers.TypeApp, "Roster cache invalidated")
}

func (rs *RosterService) fetchRoster(ctx context.Context) ([]models.InfluencerRecord, [][]string, error) {
	rows, err := rs.influencers.GetAllRows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading influencers sheet: %w", err)
	}
	records, _, err := models.RosterFromGrid(rows)
	if err != nil {
		return nil, nil, err
	}
	rs.metrics.SetRosterSize(len(records))
	return records, rows, nil
}

func (rs *RosterService) commitFingerprint(rows [][]string) {
	fp := models.RosterFingerprint(rows)
	rs.cache.SetWithTTL(cacheKeyFingerprint, []byte(fp), rs.conf.Roster.FingerprintTTL)
}
