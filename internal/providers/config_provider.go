package providers

import (
	"fmt"
	"infcheck/internal/structures"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "INFCHECK_LOG_LEVEL")
	viper.BindEnv("sheet.dir", "INFCHECK_SHEET_DIR")
	viper.BindEnv("roster.mergeTTL", "INFCHECK_MERGE_TTL")
	viper.BindEnv("roster.credibilityTTL", "INFCHECK_CREDIBILITY_TTL")
	viper.BindEnv("roster.pollInterval", "INFCHECK_POLL_INTERVAL")
	viper.BindEnv("cache.enabled", "INFCHECK_CACHE_ENABLED")
	viper.BindEnv("cache.size", "INFCHECK_CACHE_SIZE")
	viper.BindEnv("persistence.saveInterval", "INFCHECK_SAVE_INTERVAL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	applyConfigDefaults(&conf)

	conf.AppName = "InfluencerCheckerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyConfigDefaults(conf *structures.Config) {
	if conf.Roster.FingerprintTTL <= 0 {
		conf.Roster.FingerprintTTL = conf.Roster.MergeTTL
	}
	if conf.Retry.MaxAttempts <= 0 {
		conf.Retry.MaxAttempts = 3
	}
	if conf.Retry.Backoff <= 0 {
		conf.Retry.Backoff = time.Second
	}
	if conf.Upload.MaxFileSize <= 0 {
		conf.Upload.MaxFileSize = 10 << 20
	}
	if conf.Upload.MaxSessions <= 0 {
		conf.Upload.MaxSessions = 64
	}
}
