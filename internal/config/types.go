package config

import "strings"

// Storage drivers.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type DatabaseConfig struct {
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Params    map[string]string
}

// RedisConfig is optional; with neither URL nor Host set redis is disabled.
type RedisConfig struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

func (c RedisConfig) Enabled() bool { return c.URL != "" || c.Host != "" }

type PaginationConfig struct {
	PageSize           int
	PageSizeQueryParam string
	MaxPageSize        int
}

type StorageConfig struct {
	Driver string
	Local  LocalStorageConfig
	S3     S3StorageConfig
}

type LocalStorageConfig struct {
	Dir     string
	BaseURL string
}

type S3StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	CustomDomain    string
	PathStyle       bool
	Prefix          string
}

type UploadConfig struct {
	MaxSizeMB    int
	ImageFormats []string
}

type rawAppConfig struct {
	Port           int                 `yaml:"port"`
	Env            string              `yaml:"env"`
	LogLevel       string              `yaml:"log_level"`
	Database       rawDatabaseConfig   `yaml:"database"`
	Redis          rawRedisConfig      `yaml:"redis"`
	AllowedOrigins []string            `yaml:"allowed_origins"`
	JWTSecret      string              `yaml:"jwt_secret"`
	TokenTTLHours  int                 `yaml:"token_ttl_hours"`
	Timezone       string              `yaml:"timezone"`
	Pagination     rawPaginationConfig `yaml:"pagination"`
	Storage        rawStorageConfig    `yaml:"storage"`
	Uploads        rawUploadConfig     `yaml:"uploads"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawPaginationConfig struct {
	PageSize           int    `yaml:"page_size"`
	PageSizeQueryParam string `yaml:"page_size_query_param"`
	MaxPageSize        int    `yaml:"max_page_size"`
}

type rawStorageConfig struct {
	Driver string `yaml:"driver"`
	Local  struct {
		Dir     string `yaml:"dir"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"local"`
	S3 struct {
		Bucket          string `yaml:"bucket"`
		Region          string `yaml:"region"`
		Endpoint        string `yaml:"endpoint"`
		AccessKeyID     string `yaml:"access_key_id"`
		SecretAccessKey string `yaml:"secret_access_key"`
		CustomDomain    string `yaml:"custom_domain"`
		PathStyle       *bool  `yaml:"path_style"`
		Prefix          string `yaml:"prefix"`
	} `yaml:"s3"`
}

type rawUploadConfig struct {
	MaxSizeMB    int      `yaml:"max_size_mb"`
	ImageFormats []string `yaml:"image_formats"`
}

func applyRawDatabaseConfig(cfg DatabaseConfig, raw rawDatabaseConfig) DatabaseConfig {
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		cfg.User = v
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.ParseTime != nil {
		cfg.ParseTime = *raw.ParseTime
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		cfg.Loc = v
	}
	if len(raw.Params) > 0 {
		cfg.Params = copyStringMap(raw.Params)
	}
	return cfg
}

func applyRawRedisConfig(cfg RedisConfig, raw rawRedisConfig) RedisConfig {
	if v := strings.TrimSpace(raw.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Username); v != "" {
		cfg.Username = v
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if raw.DB != nil {
		cfg.DB = *raw.DB
	}
	if raw.TLS != nil {
		cfg.TLS = *raw.TLS
	}
	return cfg
}

func applyRawStorageConfig(cfg StorageConfig, raw rawStorageConfig) StorageConfig {
	if v := strings.ToLower(strings.TrimSpace(raw.Driver)); v != "" {
		cfg.Driver = v
	}
	if v := strings.TrimSpace(raw.Local.Dir); v != "" {
		cfg.Local.Dir = v
	}
	if v := strings.TrimSpace(raw.Local.BaseURL); v != "" {
		cfg.Local.BaseURL = v
	}
	s3 := raw.S3
	cfg.S3.Bucket = strings.TrimSpace(s3.Bucket)
	cfg.S3.Region = strings.TrimSpace(s3.Region)
	cfg.S3.Endpoint = strings.TrimRight(strings.TrimSpace(s3.Endpoint), "/")
	cfg.S3.AccessKeyID = strings.TrimSpace(s3.AccessKeyID)
	cfg.S3.SecretAccessKey = strings.TrimSpace(s3.SecretAccessKey)
	cfg.S3.CustomDomain = strings.TrimRight(strings.TrimSpace(s3.CustomDomain), "/")
	cfg.S3.Prefix = strings.Trim(strings.TrimSpace(s3.Prefix), "/")
	if s3.PathStyle != nil {
		cfg.S3.PathStyle = *s3.PathStyle
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	return cfg
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
