//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"heatmapd/internal"
	"heatmapd/internal/cache"
	"heatmapd/internal/controllers"
	"heatmapd/internal/jobs"
	"heatmapd/internal/providers"
	"heatmapd/internal/services"
	"heatmapd/internal/strava"
	"heatmapd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		cache.NewZstdCompressor,
		cache.NewDiskCache,
		strava.NewClient,
		strava.NewRepository,
		strava.NewStreamPipeline,
		services.NewHeatmapService,
		jobs.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
