package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Florex0Real/linux-system-manager/internal/errors"
)

const (
	// EnvPrefix prefixes every environment override, e.g. LSM_REFRESH_INTERVAL.
	EnvPrefix = "LSM"
	// ConfigDirName is the directory under the user config dir.
	ConfigDirName = "lsm"
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Config holds every tunable of the collector and its front ends.
type Config struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	CPUWindow       time.Duration `mapstructure:"cpu_window" yaml:"cpu_window"`
	DiskPath        string        `mapstructure:"disk_path" yaml:"disk_path"`
	StartDir        string        `mapstructure:"start_dir" yaml:"start_dir"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string        `mapstructure:"log_file" yaml:"log_file"`
	Command         CommandConfig `mapstructure:"command" yaml:"command"`
	Web             WebConfig     `mapstructure:"web" yaml:"web"`
	TUI             TUIConfig     `mapstructure:"tui" yaml:"tui"`
}

type CommandConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Shell   string        `mapstructure:"shell" yaml:"shell"`
}

type WebConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	ProcessLimit int    `mapstructure:"process_limit" yaml:"process_limit"`
}

type TUIConfig struct {
	ProcessLimit int `mapstructure:"process_limit" yaml:"process_limit"`
	FileLimit    int `mapstructure:"file_limit" yaml:"file_limit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RefreshInterval: 2 * time.Second,
		CPUWindow:       time.Second,
		DiskPath:        "/",
		LogLevel:        "info",
		Command: CommandConfig{
			Timeout: 10 * time.Second,
			Shell:   "/bin/sh",
		},
		Web: WebConfig{
			Addr:         "127.0.0.1:8080",
			ProcessLimit: 50,
		},
		TUI: TUIConfig{
			ProcessLimit: 20,
			FileLimit:    20,
		},
	}
}

// SetDefaults registers every key with viper so env overrides and Unmarshal
// see the full key set even when no file is present.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("refresh_interval", d.RefreshInterval)
	v.SetDefault("cpu_window", d.CPUWindow)
	v.SetDefault("disk_path", d.DiskPath)
	v.SetDefault("start_dir", d.StartDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("command.timeout", d.Command.Timeout)
	v.SetDefault("command.shell", d.Command.Shell)
	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("web.process_limit", d.Web.ProcessLimit)
	v.SetDefault("tui.process_limit", d.TUI.ProcessLimit)
	v.SetDefault("tui.file_limit", d.TUI.FileLimit)
}

// Path returns $XDG_CONFIG_HOME/lsm/config.yaml, or ~/.config/lsm/config.yaml.
// Returns empty string if neither can be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, ConfigDirName, ConfigFileName)
}

// Load reads configuration into v and decodes it. An explicit path must
// exist; the default path is optional.
func Load(v *viper.Viper, explicit string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := explicit
	if path == "" {
		if p := Path(); p != "" {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithSuggestion(err, errors.ErrCodeConfig,
					"Config file not found: "+path,
					"check the --config path")
			}
			return nil, errors.WrapWithSuggestion(err, errors.ErrCodeConfig,
				"Failed to read config file "+path,
				"check the file is valid YAML")
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithSuggestion(err, errors.ErrCodeConfig,
			"Invalid config format",
			"durations look like 2s or 500ms")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the collector cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.RefreshInterval <= 0:
		return errors.New(errors.ErrCodeConfig, "refresh_interval must be positive", "e.g. refresh_interval: 2s")
	case c.CPUWindow <= 0:
		return errors.New(errors.ErrCodeConfig, "cpu_window must be positive", "e.g. cpu_window: 1s")
	case c.Command.Timeout <= 0:
		return errors.New(errors.ErrCodeConfig, "command.timeout must be positive", "e.g. command.timeout: 10s")
	case c.Command.Shell == "":
		return errors.New(errors.ErrCodeConfig, "command.shell must not be empty", "e.g. command.shell: /bin/sh")
	case c.DiskPath == "":
		return errors.New(errors.ErrCodeConfig, "disk_path must not be empty", "e.g. disk_path: /")
	case c.Web.ProcessLimit < 0 || c.TUI.ProcessLimit < 0 || c.TUI.FileLimit < 0:
		return errors.New(errors.ErrCodeConfig, "limits must not be negative", "use 0 for no limit")
	}
	return nil
}
