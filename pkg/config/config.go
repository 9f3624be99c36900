package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when CONFIG_FILE is not set.
const DefaultFile = "statrater.yaml"

const devJWTSecret = "dev-insecure-secret-change"

// Config holds the settings shared by the API server and the batch tools.
type Config struct {
	// Network
	ListenAddr string `yaml:"listen_addr"`

	// Database
	DSN         string `yaml:"db_dsn"`
	AutoMigrate bool   `yaml:"db_auto_migrate"`

	// Auth
	JWTSecret string `yaml:"jwt_secret"`

	// Storage
	UploadBase string `yaml:"upload_base"`
	MaxUpload  int64  `yaml:"max_upload_bytes"`

	// Rating
	DefaultLocale  string `yaml:"default_locale"`
	LocaleDir      string `yaml:"locale_dir"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// Default returns Config with development defaults.
func Default() Config {
	return Config{
		ListenAddr:    ":8081",
		AutoMigrate:   true,
		JWTSecret:     devJWTSecret,
		UploadBase:    "uploads",
		MaxUpload:     10 * 1024 * 1024,
		DefaultLocale: "ja",
	}
}

// Load returns defaults overlaid by the YAML file at path (missing file is
// fine) and then by environment variables. An empty path means CONFIG_FILE
// or DefaultFile.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	applyEnv(&cfg)
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("DB_DSN", &cfg.DSN)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("UPLOAD_BASE", &cfg.UploadBase)
	str("DEFAULT_LOCALE", &cfg.DefaultLocale)
	str("LOCALE_DIR", &cfg.LocaleDir)
	str("TESSDATA_PREFIX", &cfg.TessdataPrefix)

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		cfg.AutoMigrate = !(lv == "false" || lv == "0" || lv == "no")
	}
}

// LoadDotEnv loads key=value pairs from path (".env" when empty) into the
// environment without overwriting variables that are already set. Lines
// starting with # are ignored.
func LoadDotEnv(path string) {
	if path == "" {
		path = ".env"
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.Trim(strings.TrimSpace(line[eq+1:]), `"`)
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
