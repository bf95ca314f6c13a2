package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/clientkit/data"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestContextHelpersAndKeyString() {
	ctx := context.Background()
	cfg := ConfigurationDefault{LocaleDefaultValue: "fr"}

	s.Equal("clientkit/config/configurationKey", ctxKeyConfiguration.String())

	ctx = ToContext(ctx, cfg)
	fromCtx := FromContext[ConfigurationDefault](ctx)
	s.Equal("fr", fromCtx.LocaleDefaultValue)

	missing := FromContext[*ConfigurationDefault](context.Background())
	s.Nil(missing)
}

func (s *ConfigSuite) TestFromEnvDefaults() {
	cfg, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)

	s.Equal("info", cfg.LoggingLevel())
	s.Equal("de", cfg.LocaleDefault())
	s.True(cfg.LocalePersistenceEnabled())
	s.Equal("locale-store", cfg.LocaleStoreName())
	s.Equal([]string{"de", "en"}, cfg.LocaleLanguages())
	s.Equal(data.DSN("file://./.clientkit"), cfg.PersistenceDSN())
	s.Equal(time.Duration(0), cfg.PersistenceMaxAgeDuration())
	s.Empty(cfg.TrackerHostURL())
	s.Zero(cfg.TrackerEventRate())
	s.Equal(10, cfg.TrackerEventBurstSize())
	s.Equal(16, cfg.GetCapacity())
	s.Equal(time.Second, cfg.GetExpiryDuration())
}

func (s *ConfigSuite) TestFromEnvAndFillEnv() {
	s.T().Setenv("LOCALE_DEFAULT", "en")
	s.T().Setenv("LOCALE_PERSIST", "false")
	s.T().Setenv("LOCALE_LANGUAGES", "en,fr,sw")
	s.T().Setenv("TRACKER_HOST_URL", "https://stats.example.com/")

	fromEnv, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)
	s.Equal("en", fromEnv.LocaleDefault())
	s.False(fromEnv.LocalePersistenceEnabled())
	s.Equal([]string{"en", "fr", "sw"}, fromEnv.LocaleLanguages())
	s.Equal("https://stats.example.com", fromEnv.TrackerHostURL())

	var target ConfigurationDefault
	s.Require().NoError(FillEnv(&target))
	s.Equal("en", target.LocaleDefaultValue)
}

func (s *ConfigSuite) TestFromFile() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "clientkit.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
log_level: DEBUG
locale_default: sw
persistence_uri: redis://localhost:6379/2
persistence_max_age: 24h
worker_pool_expiry_duration: bogus
`), 0o600))

	cfg, err := FromFile[ConfigurationDefault](path)
	s.Require().NoError(err)
	s.Equal("debug", cfg.LoggingLevel())
	s.True(cfg.LoggingLevelIsDebug())
	s.Equal("sw", cfg.LocaleDefault())
	s.Equal("locale-store", cfg.LocaleStoreName())
	s.True(cfg.PersistenceDSN().IsRedis())
	s.Equal(24*time.Hour, cfg.PersistenceMaxAgeDuration())
	s.Equal(time.Second, cfg.GetExpiryDuration())

	_, err = FromFile[ConfigurationDefault](filepath.Join(dir, "missing.yaml"))
	s.Require().ErrorIs(err, ErrConfigFileNotFound)

	broken := filepath.Join(dir, "broken.yaml")
	s.Require().NoError(os.WriteFile(broken, []byte("log_level: [unterminated"), 0o600))
	_, err = FromFile[ConfigurationDefault](broken)
	s.Require().Error(err)
}

func (s *ConfigSuite) TestGetters() {
	cfg := &ConfigurationDefault{
		LogLevel:              "Warn",
		LogTimeFormat:         time.RFC3339,
		LogColored:            false,
		LogShowStackTrace:     true,
		PersistenceMaxAge:     "-5m",
		TrackerWebsiteIDValue: "site",
		TrackerHostnameValue:  "app.example.com",
		TrackerTraceRequests:  true,
		TrackerEventsPerSec:   -1,
		LocaleTranslationsDir: "i18n",
	}

	s.Equal("warn", cfg.LoggingLevel())
	s.False(cfg.LoggingLevelIsDebug())
	s.Equal(time.RFC3339, cfg.LoggingTimeFormat())
	s.False(cfg.LoggingColored())
	s.True(cfg.LoggingShowStackTrace())
	s.Equal(time.Duration(0), cfg.PersistenceMaxAgeDuration())
	s.Equal("site", cfg.TrackerWebsiteID())
	s.Equal("app.example.com", cfg.TrackerHostname())
	s.True(cfg.TrackerTraceReq())
	s.Zero(cfg.TrackerEventRate())
	s.Equal(1, cfg.TrackerEventBurstSize())
	s.Equal("i18n", cfg.LocaleTranslations())
}
