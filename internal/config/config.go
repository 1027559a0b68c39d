package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultLogLevel = "info"
)

type APIConfig struct {
	URL      string        `yaml:"url" validate:"required,url"`
	Timeout  time.Duration `yaml:"timeout" validate:"gt=0"`
	Location string        `yaml:"location"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file" validate:"required"`
}

type UIConfig struct {
	AltScreen bool `yaml:"alt_screen"`
}

type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type Config struct {
	API APIConfig `yaml:"api"`
	Log LogConfig `yaml:"log"`
	UI  UIConfig  `yaml:"ui"`
	DB  DBConfig  `yaml:"db"`
}

// Dir returns ~/.punch, where config, database and logs live by default
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".punch"), nil
}

// Default returns the built-in configuration rooted at dir
func Default(dir string) Config {
	return Config{
		API: APIConfig{Timeout: DefaultTimeout},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  filepath.Join(dir, "punch.log"),
		},
		UI: UIConfig{AltScreen: true},
		DB: DBConfig{Path: filepath.Join(dir, "punch.db")},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// present), then .env and PUNCH_* environment variables.
func Load(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadLocal is Load for commands that never reach the API; only the log
// and database sections are validated
func LoadLocal(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return Config{}, err
	}
	if err := validate.StructPartial(cfg, "Log.Level", "Log.File", "DB.Path"); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func read(path string) (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, fmt.Errorf("failed to resolve home directory: %w", err)
	}
	cfg := Default(dir)

	if path == "" {
		path = filepath.Join(dir, "config.yaml")
	}
	if err := loadFile(path, &cfg); err != nil {
		return Config{}, err
	}

	// .env is optional
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("PUNCH_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("PUNCH_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PUNCH_API_TIMEOUT %q: %w", v, err)
		}
		cfg.API.Timeout = d
	}
	if v := os.Getenv("PUNCH_LOCATION"); v != "" {
		cfg.API.Location = v
	}
	if v := os.Getenv("PUNCH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PUNCH_DB_PATH"); v != "" {
		cfg.DB.Path = v
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and reports the first offending field
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Namespace() == "Config.API.URL" && fe.Tag() == "required" {
			return fmt.Errorf("api url is not set: add api.url to config.yaml or set PUNCH_API_URL")
		}
		return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
	}
	return err
}
