package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 8000
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBName     = "hirehub"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisPort  = 6379
	defaultPageSize   = 24
	defaultPageParam  = "page-size"
	defaultMaxPage    = 100
	defaultMediaDir   = "media"
	defaultMediaURL   = "/media/"
	defaultUploadMB   = 10
	defaultTokenHours = 24 * 7
)

var defaultImageFormats = []string{"jpg", "jpeg", "png", "gif", "webp"}

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string // "development" | "production"
	LogLevel       string
	DSN            string
	Database       DatabaseConfig
	Redis          RedisConfig
	AllowedOrigins []string
	JWTSecret      string
	TokenTTLHours  int
	Timezone       string
	Pagination     PaginationConfig
	Storage        StorageConfig
	Uploads        UploadConfig
}

func (c *AppConfig) IsDev() bool { return c.Env != "production" }

// Load reads path (DefaultConfigPath when empty) strictly: unknown keys fail.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content over the defaults and validates the result.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}
	applyRawAppConfig(&cfg, raw)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis:         RedisConfig{Port: defaultRedisPort},
		TokenTTLHours: defaultTokenHours,
		Pagination: PaginationConfig{
			PageSize:           defaultPageSize,
			PageSizeQueryParam: defaultPageParam,
			MaxPageSize:        defaultMaxPage,
		},
		Storage: StorageConfig{
			Driver: StorageLocal,
			Local:  LocalStorageConfig{Dir: defaultMediaDir, BaseURL: defaultMediaURL},
		},
		Uploads: UploadConfig{MaxSizeMB: defaultUploadMB, ImageFormats: defaultImageFormats},
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.DSN == "" && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Enabled() && (c.Redis.Port < 1 || c.Redis.Port > 65535) {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Pagination.PageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return fmt.Errorf("invalid pagination: page_size %d, max_page_size %d", c.Pagination.PageSize, c.Pagination.MaxPageSize)
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q, expected local or s3", c.Storage.Driver)
	}
	if c.Uploads.MaxSizeMB < 1 {
		return fmt.Errorf("invalid uploads.max_size_mb %d", c.Uploads.MaxSizeMB)
	}
	return nil
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if raw.TokenTTLHours > 0 {
		cfg.TokenTTLHours = raw.TokenTTLHours
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}

	p := raw.Pagination
	if p.PageSize != 0 {
		cfg.Pagination.PageSize = p.PageSize
	}
	if v := strings.TrimSpace(p.PageSizeQueryParam); v != "" {
		cfg.Pagination.PageSizeQueryParam = v
	}
	if p.MaxPageSize != 0 {
		cfg.Pagination.MaxPageSize = p.MaxPageSize
	}

	cfg.Storage = applyRawStorageConfig(cfg.Storage, raw.Storage)

	if raw.Uploads.MaxSizeMB != 0 {
		cfg.Uploads.MaxSizeMB = raw.Uploads.MaxSizeMB
	}
	if len(raw.Uploads.ImageFormats) > 0 {
		formats := make([]string, 0, len(raw.Uploads.ImageFormats))
		for _, f := range raw.Uploads.ImageFormats {
			if f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), ".")); f != "" {
				formats = append(formats, f)
			}
		}
		cfg.Uploads.ImageFormats = formats
	}
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}
