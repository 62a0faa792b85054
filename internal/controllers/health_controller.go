package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"time"

	"infcheck/internal/services"
)

type HealthController struct {
	working   services.WorkingCopyServiceInterface
	uploads   services.UploadServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	RosterVersion int64   `json:"roster_version"`
	Sessions      int     `json:"sessions"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		RosterVersion: hc.working.Version(),
		Sessions:      hc.uploads.SessionCount(),
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(working services.WorkingCopyServiceInterface, uploads services.UploadServiceInterface) *HealthController {
	return &HealthController{
		working:   working,
		uploads:   uploads,
		startTime: time.Now(),
	}
}
