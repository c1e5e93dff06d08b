package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mrusme/taskflow/validation"
	"gopkg.in/yaml.v3"
)

// CalDAV holds the server the calendar is published to. Publishing is off
// while Endpoint is empty.
type CalDAV struct {
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`
	Username string `yaml:"username" validate:"required_with=Endpoint"`
	Password string `yaml:"password"`
	Calendar string `yaml:"calendar"`
}

// Config holds application configuration
type Config struct {
	Database         string        `yaml:"database" validate:"required"`
	StorageURL       string        `yaml:"storage_url" validate:"omitempty,url"`
	Namespace        string        `yaml:"namespace" validate:"required"`
	Template         string        `yaml:"template"`
	Debug            bool          `yaml:"debug"`
	LogFormat        string        `yaml:"log_format" validate:"oneof=json console"`
	ReminderInterval time.Duration `yaml:"reminder_interval" validate:"min=1s"`
	CalDAV           CalDAV        `yaml:"caldav"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database:         "taskflow.db",
		Namespace:        "taskflow",
		LogFormat:        "console",
		ReminderInterval: time.Minute,
	}
}

// Load reads the optional YAML file named by TASKFLOW_CONFIG, then applies
// environment variables on top and validates the result.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path := getenv("TASKFLOW_CONFIG"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	env := envReader(getenv)
	cfg.Database = env.get("TASKFLOW_DB", cfg.Database)
	cfg.StorageURL = env.get("TASKFLOW_STORAGE_URL", cfg.StorageURL)
	cfg.Namespace = env.get("TASKFLOW_NAMESPACE", cfg.Namespace)
	cfg.Template = env.get("TASKFLOW_TEMPLATE", cfg.Template)
	cfg.Debug = env.getBool("TASKFLOW_DEBUG", cfg.Debug)
	cfg.LogFormat = env.get("TASKFLOW_LOG_FORMAT", cfg.LogFormat)
	cfg.ReminderInterval = env.getDuration("TASKFLOW_REMINDER_INTERVAL", cfg.ReminderInterval)
	cfg.CalDAV.Endpoint = env.get("CALDAV_ENDPOINT", cfg.CalDAV.Endpoint)
	cfg.CalDAV.Username = env.get("CALDAV_USERNAME", cfg.CalDAV.Username)
	cfg.CalDAV.Password = env.get("CALDAV_PASSWORD", cfg.CalDAV.Password)
	cfg.CalDAV.Calendar = env.get("CALDAV_CALENDAR", cfg.CalDAV.Calendar)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a YAML file over cfg. Keys missing from the file keep
// their current values.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validation.Validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

type envReader func(string) string

func (e envReader) get(key, defaultValue string) string {
	if value := e(key); value != "" {
		return value
	}
	return defaultValue
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	if value := e(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e envReader) getDuration(key string, defaultValue time.Duration) time.Duration {
	value := e(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain numbers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
