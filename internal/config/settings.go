package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/social-capital/internal/common"
	"github.com/spf13/viper"
)

// Config keys shared by flags, environment variables, and config.yaml.
const (
	KeyDatabasePath    = "database.path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeyTheme           = "tui.theme"
	KeyAutoCheckpoints = "checkpoints.keep_auto"
)

// Settings is the resolved, validated configuration for one invocation.
type Settings struct {
	DatabasePath    string
	LogFormat       string
	Theme           string
	LogLevel        slog.Level
	AutoCheckpoints int
}

// SetDefaults registers the fallback value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyTheme, "default")
	v.SetDefault(KeyAutoCheckpoints, 5)
}

// Load reads Settings from v. Unknown log levels or formats and a
// non-positive checkpoint retention are rejected with common.ErrInvalidConfig.
func Load(v *viper.Viper) (*Settings, error) {
	level, err := common.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat)))
	switch format {
	case "", "console":
		format = "console"
	case "json":
	default:
		return nil, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, format)
	}

	keep := v.GetInt(KeyAutoCheckpoints)
	if keep < 1 {
		return nil, fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyAutoCheckpoints, keep)
	}

	return &Settings{
		DatabasePath:    DatabasePath(v.GetString(KeyDatabasePath)),
		LogLevel:        level,
		LogFormat:       format,
		Theme:           v.GetString(KeyTheme),
		AutoCheckpoints: keep,
	}, nil
}
