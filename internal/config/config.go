// Package config loads tilebar settings from config.yaml, TILEBAR_*
// environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alexisbeaulieu97/tilebar/internal/options"
	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. TILEBAR_NOTION_TOKEN.
const EnvPrefix = "TILEBAR"

// Config is the validated settings tree.
type Config struct {
	WM      string        `mapstructure:"wm" validate:"oneof=glazewm komorebi i3 sway"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Storage StorageConfig `mapstructure:"storage"`
	Host    HostConfig    `mapstructure:"host"`
	RSS     RSSConfig     `mapstructure:"rss"`
	Notion  NotionConfig  `mapstructure:"notion"`
	Seen    SeenConfig    `mapstructure:"seen"`
	Log     LogConfig     `mapstructure:"log"`
}

type ThemeConfig struct {
	Flavor string `mapstructure:"flavor" validate:"theme_flavor"`
}

type StorageConfig struct {
	Backend string        `mapstructure:"backend" validate:"oneof=file sqlite"`
	Dir     string        `mapstructure:"dir" validate:"required"`
	Poll    time.Duration `mapstructure:"poll" validate:"gte=100ms"`
}

// HostConfig selects where metrics and controls come from.
type HostConfig struct {
	Sample      time.Duration `mapstructure:"sample" validate:"gte=250ms"`
	ProcMount   string        `mapstructure:"proc"`
	SysMount    string        `mapstructure:"sys"`
	MediaPlayer string        `mapstructure:"media_player"`
	// WMQuery and WMToggle override the built-in window manager commands.
	WMQuery  []string `mapstructure:"wm_query"`
	WMToggle []string `mapstructure:"wm_toggle"`
}

type RSSConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=1s"`
	Sources  []RSSSource   `mapstructure:"sources" validate:"dive"`
}

type RSSSource struct {
	Name     string        `mapstructure:"name" validate:"max=64"`
	URL      string        `mapstructure:"url" validate:"required,url"`
	MaxAge   time.Duration `mapstructure:"max_age" validate:"gte=0"`
	MaxItems int           `mapstructure:"max_items" validate:"gte=0"`
}

type NotionConfig struct {
	Token         string           `mapstructure:"token"`
	DatabaseID    string           `mapstructure:"database_id" validate:"required_with=Token"`
	Relay         string           `mapstructure:"relay" validate:"omitempty,url"`
	Interval      time.Duration    `mapstructure:"interval"`
	Timeout       time.Duration    `mapstructure:"timeout" validate:"gte=1s"`
	ShowCompleted bool             `mapstructure:"show_completed"`
	Properties    NotionProperties `mapstructure:"properties"`
}

// NotionProperties maps task fields to database property names. An empty
// Title uses the database's first title property.
type NotionProperties struct {
	Title  string `mapstructure:"title"`
	Done   string `mapstructure:"done"`
	Status string `mapstructure:"status"`
	Due    string `mapstructure:"due"`
}

type SeenConfig struct {
	Retention time.Duration `mapstructure:"retention" validate:"gte=1h"`
	Cleanup   time.Duration `mapstructure:"cleanup" validate:"gte=1m"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

// Enabled reports whether Notion credentials are configured.
func (n NotionConfig) Enabled() bool {
	return n.Token != "" && n.DatabaseID != ""
}

// Load reads settings. An empty path looks for config.yaml in ConfigDir;
// a missing file there is not an error, but an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
		if dir, err := ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, tberrors.NewParseError(v.ConfigFileUsed(), nil, fmt.Errorf("reading config: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tberrors.NewParseError(v.ConfigFileUsed(), nil, err)
	}
	cfg.Storage.Dir = expandPath(cfg.Storage.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) error {
	dataDir, err := DataDir()
	if err != nil {
		return fmt.Errorf("resolving data directory: %w", err)
	}

	v.SetDefault("wm", "glazewm")
	v.SetDefault("theme.flavor", "mocha")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", dataDir)
	v.SetDefault("storage.poll", "1s")
	v.SetDefault("host.sample", "2s")
	v.SetDefault("host.proc", "")
	v.SetDefault("host.sys", "")
	v.SetDefault("host.media_player", "")
	v.SetDefault("host.wm_query", []string{})
	v.SetDefault("host.wm_toggle", []string{})
	v.SetDefault("rss.interval", "5m")
	v.SetDefault("rss.timeout", "15s")
	v.SetDefault("rss.sources", []map[string]any{})
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("notion.relay", "")
	v.SetDefault("notion.interval", "1m")
	v.SetDefault("notion.timeout", "15s")
	v.SetDefault("notion.show_completed", false)
	v.SetDefault("notion.properties.title", "")
	v.SetDefault("notion.properties.done", "Done")
	v.SetDefault("notion.properties.status", "Status")
	v.SetDefault("notion.properties.due", "Due")
	v.SetDefault("seen.retention", "720h")
	v.SetDefault("seen.cleanup", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if cfg == nil {
		return tberrors.NewValidationError("config", "configuration is nil", nil)
	}
	return convertValidationError(options.Validator().Struct(cfg))
}
