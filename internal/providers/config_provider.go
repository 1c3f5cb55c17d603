package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"heatmapd/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("strava.accessToken", "HEATMAPD_STRAVA_ACCESS_TOKEN")
	viper.BindEnv("strava.baseUrl", "HEATMAPD_STRAVA_BASE_URL")
	viper.BindEnv("logger.level", "HEATMAPD_LOG_LEVEL")
	viper.BindEnv("diskCache.dir", "HEATMAPD_CACHE_DIR")
	viper.BindEnv("diskCache.ttl", "HEATMAPD_CACHE_TTL")
	viper.BindEnv("fetch.minRequestInterval", "HEATMAPD_MIN_REQUEST_INTERVAL")
	viper.BindEnv("cache.enabled", "HEATMAPD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "HEATMAPD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "StravaHeatmapDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

// applyDefaults fills the knobs the yaml file may omit. Values mirror the
// Strava API limits (200 per page, 600 req / 15 min) and the map defaults.
func applyDefaults(conf *structures.Config) {
	if conf.Strava.BaseURL == "" {
		conf.Strava.BaseURL = "https://www.strava.com/api/v3"
	}
	if conf.Strava.PerPage <= 0 || conf.Strava.PerPage > 200 {
		conf.Strava.PerPage = 200
	}
	if conf.Strava.DaysBack <= 0 {
		conf.Strava.DaysBack = 365
	}
	if conf.Strava.StreamLimit <= 0 {
		conf.Strava.StreamLimit = 50
	}
	if conf.Fetch.MinRequestInterval <= 0 {
		conf.Fetch.MinRequestInterval = 600 * time.Millisecond
	}
	if conf.Fetch.RequestTimeout <= 0 {
		conf.Fetch.RequestTimeout = 30 * time.Second
	}
	if conf.Fetch.MaxAttempts <= 0 {
		conf.Fetch.MaxAttempts = 3
	}
	if conf.Fetch.BackoffBase <= 0 {
		conf.Fetch.BackoffBase = time.Second
	}
	if conf.Fetch.RateLimitCooldown <= 0 {
		conf.Fetch.RateLimitCooldown = 15 * time.Minute
	}
	if conf.Fetch.Concurrency <= 0 {
		conf.Fetch.Concurrency = 4
	}
	if conf.DiskCache.TTL <= 0 {
		conf.DiskCache.TTL = 24 * time.Hour
	}
	if conf.DiskCache.SweepInterval <= 0 {
		conf.DiskCache.SweepInterval = time.Hour
	}
	if conf.Map.DefaultCenterLat == 0 && conf.Map.DefaultCenterLon == 0 {
		conf.Map.DefaultCenterLat = 40.7128
		conf.Map.DefaultCenterLon = -74.0060
	}
	if conf.Map.DefaultZoom <= 0 {
		conf.Map.DefaultZoom = 12
	}
	if conf.Map.GridSize <= 0 {
		conf.Map.GridSize = 50
	}
	if conf.Map.MaxRoutes <= 0 {
		conf.Map.MaxRoutes = 20
	}
	if conf.Map.MaxHeatPoints <= 0 {
		conf.Map.MaxHeatPoints = 20000
	}
}
