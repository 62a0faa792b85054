package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath     string        `yaml:"filePath" validate:"required|unixPath"`
	SaveInterval time.Duration `yaml:"saveInterval" validate:"required|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SheetConfig struct {
	Dir              string `yaml:"dir" validate:"required|unixPath"`
	InfluencersSheet string `yaml:"influencersSheet" validate:"required"`
	MasterSheet      string `yaml:"masterSheet" validate:"required"`
}

type RosterConfig struct {
	MergeTTL       time.Duration `yaml:"mergeTTL" validate:"required|min:1"`
	CredibilityTTL time.Duration `yaml:"credibilityTTL" validate:"required|min:1"`
	FingerprintTTL time.Duration `yaml:"fingerprintTTL"`
	PollInterval   time.Duration `yaml:"pollInterval"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	Backoff     time.Duration `yaml:"backoff"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"maxFileSize"`
	MaxSessions int   `yaml:"maxSessions"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	Sheet       SheetConfig   `yaml:"sheet"`
	Roster      RosterConfig  `yaml:"roster"`
	Retry       RetryConfig   `yaml:"retry"`
	Upload      UploadConfig  `yaml:"upload"`
	WebServer   Server        `yaml:"webServer"`
	Persistence Persistence   `yaml:"persistence"`
	Logger      LoggerConfig  `yaml:"logger"`
	Cache       CacheConfig   `yaml:"cache"`
	Metrics     MetricsConfig `yaml:"metrics"`
}
