package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pitabwire/clientkit/data"
)

type contextKey string

func (c contextKey) String() string {
	return "clientkit/config/" + string(c)
}

const ctxKeyConfiguration = contextKey("configurationKey")

// ErrConfigFileNotFound is returned by FromFile when the path does not exist.
var ErrConfigFileNotFound = errors.New("config file not found")

// ToContext adds configuration to the current supplied context.
func ToContext(ctx context.Context, config any) context.Context {
	return context.WithValue(ctx, ctxKeyConfiguration, config)
}

// FromContext extracts configuration from the supplied context if any exist.
func FromContext[T any](ctx context.Context) T {
	if cfg, ok := ctx.Value(ctxKeyConfiguration).(T); ok {
		return cfg
	}
	var zero T
	return zero
}

// FromEnv convenience method to process configs.
func FromEnv[T any]() (T, error) {
	return env.ParseAs[T]()
}

// FillEnv convenience method to fill a config object with environment data.
func FillEnv(v any) error {
	return env.Parse(v)
}

// FromFile reads a YAML file over the environment defaults, so values missing
// from the file keep their envDefault.
func FromFile[T any](path string) (T, error) {
	cfg, err := FromEnv[T]()
	if err != nil {
		return cfg, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err = yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

type ConfigurationDefault struct {
	LogLevel          string `envDefault:"info"                      env:"LOG_LEVEL"            yaml:"log_level"`
	LogTimeFormat     string `envDefault:"2006-01-02T15:04:05Z07:00" env:"LOG_TIME_FORMAT"      yaml:"log_time_format"`
	LogColored        bool   `envDefault:"true"                      env:"LOG_COLORED"          yaml:"log_colored"`
	LogShowStackTrace bool   `envDefault:"false"                     env:"LOG_SHOW_STACK_TRACE" yaml:"log_show_stack_trace"`

	LocaleDefaultValue    string   `envDefault:"de"           env:"LOCALE_DEFAULT"          yaml:"locale_default"`
	LocalePersist         bool     `envDefault:"true"         env:"LOCALE_PERSIST"          yaml:"locale_persist"`
	LocaleStoreNameValue  string   `envDefault:"locale-store" env:"LOCALE_STORE_NAME"       yaml:"locale_store_name"`
	LocaleTranslationsDir string   `envDefault:""             env:"LOCALE_TRANSLATIONS_DIR" yaml:"locale_translations_dir"`
	LocaleLanguagesValue  []string `envDefault:"de,en"        env:"LOCALE_LANGUAGES"        yaml:"locale_languages"        envSeparator:","`

	PersistenceURI    string `envDefault:"file://./.clientkit" env:"PERSISTENCE_URI"     yaml:"persistence_uri"`
	PersistenceMaxAge string `envDefault:"0s"                  env:"PERSISTENCE_MAX_AGE" yaml:"persistence_max_age"`

	TrackerHostURLValue   string  `envDefault:"" env:"TRACKER_HOST_URL"   yaml:"tracker_host_url"`
	TrackerWebsiteIDValue string  `envDefault:"" env:"TRACKER_WEBSITE_ID" yaml:"tracker_website_id"`
	TrackerHostnameValue  string  `envDefault:"" env:"TRACKER_HOSTNAME"   yaml:"tracker_hostname"`
	TrackerTraceRequests  bool    `envDefault:"false" env:"TRACKER_TRACE_REQUESTS" yaml:"tracker_trace_requests"`
	TrackerEventsPerSec   float64 `envDefault:"0"  env:"TRACKER_EVENTS_PER_SECOND" yaml:"tracker_events_per_second"`
	TrackerEventBurst     int     `envDefault:"10" env:"TRACKER_EVENT_BURST"       yaml:"tracker_event_burst"`

	WorkerPoolCapacity       int    `envDefault:"16" env:"WORKER_POOL_CAPACITY"        yaml:"worker_pool_capacity"`
	WorkerPoolExpiryDuration string `envDefault:"1s" env:"WORKER_POOL_EXPIRY_DURATION" yaml:"worker_pool_expiry_duration"`
}

// ConfigurationLogLevel is what the logger needs.
type ConfigurationLogLevel interface {
	LoggingLevel() string
	LoggingTimeFormat() string
	LoggingColored() bool
	LoggingShowStackTrace() bool
	LoggingLevelIsDebug() bool
}

var _ ConfigurationLogLevel = new(ConfigurationDefault)

func (c *ConfigurationDefault) LoggingLevel() string {
	return strings.ToLower(c.LogLevel)
}

func (c *ConfigurationDefault) LoggingTimeFormat() string {
	return c.LogTimeFormat
}

func (c *ConfigurationDefault) LoggingColored() bool {
	return c.LogColored
}

func (c *ConfigurationDefault) LoggingShowStackTrace() bool {
	return c.LogShowStackTrace
}

func (c *ConfigurationDefault) LoggingLevelIsDebug() bool {
	level := c.LoggingLevel()
	return level == "debug" || level == "trace"
}

// ConfigurationLocale configures the locale preference store.
type ConfigurationLocale interface {
	LocaleDefault() string
	LocalePersistenceEnabled() bool
	LocaleStoreName() string
	LocaleTranslations() string
	LocaleLanguages() []string
}

var _ ConfigurationLocale = new(ConfigurationDefault)

func (c *ConfigurationDefault) LocaleDefault() string {
	return c.LocaleDefaultValue
}

func (c *ConfigurationDefault) LocalePersistenceEnabled() bool {
	return c.LocalePersist
}

func (c *ConfigurationDefault) LocaleStoreName() string {
	return c.LocaleStoreNameValue
}

func (c *ConfigurationDefault) LocaleTranslations() string {
	return c.LocaleTranslationsDir
}

func (c *ConfigurationDefault) LocaleLanguages() []string {
	return c.LocaleLanguagesValue
}

// ConfigurationPersistence names the key-value backend behind persisted state.
type ConfigurationPersistence interface {
	PersistenceDSN() data.DSN
	PersistenceMaxAgeDuration() time.Duration
}

var _ ConfigurationPersistence = new(ConfigurationDefault)

func (c *ConfigurationDefault) PersistenceDSN() data.DSN {
	return data.DSN(c.PersistenceURI)
}

// PersistenceMaxAgeDuration returns zero, meaning no expiry, for empty or invalid values.
func (c *ConfigurationDefault) PersistenceMaxAgeDuration() time.Duration {
	if c.PersistenceMaxAge == "" {
		return 0
	}
	d, err := time.ParseDuration(c.PersistenceMaxAge)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ConfigurationTracker configures the analytics tracker. An empty host disables tracking.
type ConfigurationTracker interface {
	TrackerHostURL() string
	TrackerWebsiteID() string
	TrackerHostname() string
	TrackerTraceReq() bool
	TrackerEventRate() float64
	TrackerEventBurstSize() int
}

var _ ConfigurationTracker = new(ConfigurationDefault)

func (c *ConfigurationDefault) TrackerHostURL() string {
	return strings.TrimSuffix(c.TrackerHostURLValue, "/")
}

func (c *ConfigurationDefault) TrackerWebsiteID() string {
	return c.TrackerWebsiteIDValue
}

func (c *ConfigurationDefault) TrackerHostname() string {
	return c.TrackerHostnameValue
}

func (c *ConfigurationDefault) TrackerTraceReq() bool {
	return c.TrackerTraceRequests
}

// TrackerEventRate is the per event name limit in events per second; 0 means unlimited.
func (c *ConfigurationDefault) TrackerEventRate() float64 {
	if c.TrackerEventsPerSec < 0 {
		return 0
	}
	return c.TrackerEventsPerSec
}

func (c *ConfigurationDefault) TrackerEventBurstSize() int {
	if c.TrackerEventBurst < 1 {
		return 1
	}
	return c.TrackerEventBurst
}

type ConfigurationWorkerPool interface {
	GetCapacity() int
	GetExpiryDuration() time.Duration
}

var _ ConfigurationWorkerPool = new(ConfigurationDefault)

func (c *ConfigurationDefault) GetCapacity() int {
	return c.WorkerPoolCapacity
}

func (c *ConfigurationDefault) GetExpiryDuration() time.Duration {
	if c.WorkerPoolExpiryDuration != "" {
		duration, err := time.ParseDuration(c.WorkerPoolExpiryDuration)
		if err == nil {
			return duration
		}
	}
	return time.Second
}
