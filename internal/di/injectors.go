//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"infcheck/internal"
	"infcheck/internal/controllers"
	"infcheck/internal/providers"
	"infcheck/internal/roster"
	"infcheck/internal/services"
	"infcheck/internal/sheet"
	"infcheck/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewRetryPolicy,

		sheet.NewWorkbook,
		services.NewRosterService,
		services.NewReconcileService,
		services.NewUploadService,
		services.NewWorkingCopyService,
		services.NewSyncService,
		services.NewExportService,

		roster.NewZstdCompressor,
		roster.NewFileManager,
		roster.NewScheduler,

		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
