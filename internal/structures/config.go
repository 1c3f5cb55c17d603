package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type StravaConfig struct {
	BaseURL     string `yaml:"baseUrl" validate:"required|fullUrl"`
	AccessToken string `yaml:"accessToken"`
	PerPage     int    `yaml:"perPage"`
	DaysBack    int    `yaml:"daysBack"`
	StreamLimit int    `yaml:"streamLimit"`
}

type FetchConfig struct {
	MinRequestInterval time.Duration `yaml:"minRequestInterval" validate:"required|min:1"`
	RequestTimeout     time.Duration `yaml:"requestTimeout" validate:"required|min:1"`
	MaxAttempts        int           `yaml:"maxAttempts" validate:"required|uint|min:1"`
	BackoffBase        time.Duration `yaml:"backoffBase"`
	RateLimitCooldown  time.Duration `yaml:"rateLimitCooldown"`
	Concurrency        int           `yaml:"concurrency"`
}

type DiskCacheConfig struct {
	Dir           string        `yaml:"dir" validate:"required|unixPath"`
	TTL           time.Duration `yaml:"ttl" validate:"required|min:1"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type MapConfig struct {
	DefaultCenterLat float64 `yaml:"defaultCenterLat"`
	DefaultCenterLon float64 `yaml:"defaultCenterLon"`
	DefaultZoom      int     `yaml:"defaultZoom"`
	GridSize         int     `yaml:"gridSize"`
	MaxRoutes        int     `yaml:"maxRoutes"`
	MaxHeatPoints    int     `yaml:"maxHeatPoints"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Strava    StravaConfig    `yaml:"strava"`
	Fetch     FetchConfig     `yaml:"fetch"`
	DiskCache DiskCacheConfig `yaml:"diskCache"`
	Map       MapConfig       `yaml:"map"`
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
