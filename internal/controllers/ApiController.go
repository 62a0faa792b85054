package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"infcheck/internal/models"
	"infcheck/internal/providers"
	"infcheck/internal/services"
	"infcheck/internal/structures"
)

const maxRequestBodySize = 1 << 20 // 1 MB, JSON bodies only

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApiController struct {
	logger        providers.Logger
	cache         providers.CacheProviderInterface
	uploads       services.UploadServiceInterface
	working       services.WorkingCopyServiceInterface
	sync          services.SyncServiceInterface
	export        services.ExportServiceInterface
	roster        services.RosterServiceInterface
	maxUploadSize int64
}

func NewApiController(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface, uploads services.UploadServiceInterface, working services.WorkingCopyServiceInterface, sync services.SyncServiceInterface, export services.ExportServiceInterface, roster services.RosterServiceInterface) *ApiController {
	return &ApiController{
		logger:        logger,
		cache:         cache,
		uploads:       uploads,
		working:       working,
		sync:          sync,
		export:        export,
		roster:        roster,
		maxUploadSize: conf.Upload.MaxFileSize,
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

type uploadResponse struct {
	Hash     string `json:"hash"`
	Reused   bool   `json:"reused"`
	Pending  int    `json:"pending"`
	Rejected int    `json:"rejected"`
	Unknown  int    `json:"unknown"`
}

func (ac *ApiController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, ac.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess, reused, err := ac.uploads.Process(r.Context(), header.Filename, data)
	if err != nil {
		if errors.Is(err, models.ErrNoIdentityColumn) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Upload processing failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	pending, rejected, unknown := sess.Result.Counts()
	writeJSON(w, http.StatusCreated, uploadResponse{
		Hash:     sess.Hash,
		Reused:   reused,
		Pending:  pending,
		Rejected: rejected,
		Unknown:  unknown,
	})
}

func (ac *ApiController) GetSession(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("h")
	if hash == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess, err := ac.uploads.Partitions(r.Context(), hash)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Session lookup failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Partitions are keyed by the roster state they were derived from, so a
	// cached response can never shadow a fresher reconciliation.
	ac.serveFromCacheOrCompute(w, "session:"+hash+":"+sess.RosterFP, func() (any, error) {
		return sess.Result, nil
	})
}

type approveRequest struct {
	Hash  string                 `json:"hash"`
	Picks []services.ApprovalPick `json:"picks"`
}

func (ac *ApiController) ApproveSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload approveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Hash == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	added, err := ac.sync.ApproveUnknowns(r.Context(), payload.Hash, payload.Picks)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Approval failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

func (ac *ApiController) Export(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("h")
	if hash == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess, err := ac.uploads.Partitions(r.Context(), hash)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		ac.logger.Errorf(providers.TypeApp, "Export lookup failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := ac.export.Workbook(sess, r.URL.Query()["id"])
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Export rendering failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="selected_influencers.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type rosterResponse struct {
	Version  int64               `json:"version"`
	Rows     []models.WorkingRow `json:"rows"`
	Comments []string            `json:"comments"`
}

func (ac *ApiController) GetRoster(w http.ResponseWriter, r *http.Request) {
	credParam := strings.ToLower(r.URL.Query().Get("cred"))
	commentParam := r.URL.Query().Get("comment")

	var credFilter *bool
	switch credParam {
	case "":
	case "true", "false":
		v := credParam == "true"
		credFilter = &v
	default:
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	wc, err := ac.working.Current(r.Context())
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Roster load failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	key := fmt.Sprintf("roster:v%d:%s:%s", wc.Version(), credParam, commentParam)
	ac.serveFromCacheOrCompute(w, key, func() (any, error) {
		return rosterResponse{
			Version:  wc.Version(),
			Rows:     wc.Filter(credFilter, commentParam),
			Comments: wc.Comments(),
		}, nil
	})
}

type editRequest struct {
	Origin      *int   `json:"origin"`
	Credibility bool   `json:"credibility"`
	Comment     string `json:"comment"`
}

type editResponse struct {
	Changed bool  `json:"changed"`
	Version int64 `json:"version"`
}

func (ac *ApiController) EditRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload editRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Origin == nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	changed, version, err := ac.working.ApplyEdit(r.Context(), *payload.Origin, payload.Credibility, payload.Comment)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Edit failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, editResponse{Changed: changed, Version: version})
}

type addRequest struct {
	ID          string `json:"id"`
	Credibility bool   `json:"credibility"`
	Comment     string `json:"comment"`
}

type addResponse struct {
	Added   bool  `json:"added"`
	Version int64 `json:"version"`
}

func (ac *ApiController) AddRoster(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload addRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if models.NormalizeIdentity(payload.ID) == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	added, version, err := ac.working.AddOrUpdate(r.Context(), payload.ID, payload.Credibility, payload.Comment)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Add failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, addResponse{Added: added, Version: version})
}

func (ac *ApiController) SyncRoster(w http.ResponseWriter, r *http.Request) {
	if err := ac.sync.Push(r.Context()); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": ac.working.Version()})
}

func (ac *ApiController) History(w http.ResponseWriter, r *http.Request) {
	id := models.NormalizeIdentity(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	ac.serveFromCacheOrCompute(w, "history:"+id, func() (any, error) {
		_, metrics, err := ac.roster.Load(r.Context())
		if err != nil {
			ac.logger.Errorf(providers.TypeApp, "History load failed: %s", err)
			return nil, err
		}
		rows := make([]models.HistoricalMetric, 0)
		for _, m := range metrics {
			if m.ID == id {
				rows = append(rows, m)
			}
		}
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].PublicationDate < rows[j].PublicationDate
		})
		return rows, nil
	})
}
