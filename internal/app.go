package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infcheck/internal/controllers"
	"infcheck/internal/providers"
	"infcheck/internal/roster/interfaces"
	"infcheck/internal/services"
	"infcheck/internal/structures"
)

const startupWarmupTimeout = 30 * time.Second

type App struct {
	WebServer *http.Server
}

// buildHandler assembles the HTTP surface. API routes sit behind the metrics
// middleware; /health and /metrics are mounted outside of it so probe traffic
// stays out of the request metrics.
func buildHandler(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, router providers.RouterProviderInterface, healthController *controllers.HealthController) http.Handler {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", providers.MetricsMiddleware(metrics, logger, apiMux))
	return mux
}

func NewApp(apiController *controllers.ApiController, healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, working services.WorkingCopyServiceInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) (*App, error) {
	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)

	if err := scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Snapshot restore failed, starting from remote roster: %s", err)
	}

	// Warm the working copy before accepting traffic so the first request
	// does not pay for the remote fetch. A failure here is not fatal, the
	// roster loads lazily on first access instead.
	warmupCtx, cancelWarmup := context.WithTimeout(context.Background(), startupWarmupTimeout)
	if wc, err := working.Current(warmupCtx); err != nil {
		logger.Warnf(providers.TypeApp, "Roster warmup failed: %s", err)
	} else {
		logger.Infof(providers.TypeApp, "Roster ready: %d influencers, version %d", wc.Len(), wc.Version())
	}
	cancelWarmup()

	app := &App{
		WebServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", conf.WebServer.Host, conf.WebServer.Port),
			Handler:      buildHandler(conf, logger, metrics, router, healthController),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		return nil, fmt.Errorf("server error: %w", err)
	}

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.WebServer.Shutdown(ctx); err != nil {
		return nil, err
	}

	// Final snapshot so pending edits survive the restart.
	if err := scheduler.Persist(); err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "gracefully stopped")
	return app, nil
}
