package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	apperrors "sparkload/pkg/errors"
	"sparkload/pkg/models"
)

const (
	// FileName is the config file name without extension
	FileName = "sparkload"
	// EnvPrefix prefixes environment overrides, e.g. SPARKLOAD_CLUSTER_DB_PASSWORD
	EnvPrefix = "SPARKLOAD"

	DialectRedshift  = "redshift"
	DialectSnowflake = "snowflake"

	defaultConnectTimeout = 30 * time.Second

	filePermissionSecure = 0600
	dirPermissionSecure  = 0700
)

// GetConfigPath returns the per-user config directory
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sparkload")
}

// NewViper builds the viper instance the commands read from. An explicit
// configFile wins over the search path; a missing file is not an error
// because every key can also come from the environment.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		cleaned, err := cleanPath(configFile)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Invalid config file path").
				WithContext("path", configFile)
		}
		v.SetConfigFile(cleaned)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(GetConfigPath())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigNotFound, "Failed to read config file").
				WithContext("path", configFile)
		}
	}

	return v, nil
}

// SetDefaults registers default values. Every key is registered so that
// AutomaticEnv can populate keys absent from the file during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cluster.dialect", DialectRedshift)
	v.SetDefault("cluster.host", "")
	v.SetDefault("cluster.db_name", "")
	v.SetDefault("cluster.db_user", "")
	v.SetDefault("cluster.db_password", "")
	v.SetDefault("cluster.db_port", 5439)
	v.SetDefault("cluster.sslmode", "require")
	v.SetDefault("cluster.connect_timeout", defaultConnectTimeout.String())
	v.SetDefault("cluster.account", "")
	v.SetDefault("cluster.warehouse", "")
	v.SetDefault("cluster.role", "")
	v.SetDefault("cluster.schema", "")
	v.SetDefault("iam_role.arn", "")
	v.SetDefault("s3.region", "us-west-2")
	v.SetDefault("s3.log_data", "")
	v.SetDefault("s3.log_jsonpath", "")
	v.SetDefault("s3.song_data", "")
	v.SetDefault("s3.anonymous", false)
}

// Decode decodes the configuration without consulting the keyring. It
// serves commands that never connect.
func Decode(v *viper.Viper) (*models.Config, error) {
	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigInvalid, "Failed to decode configuration")
	}

	cfg.Cluster.Dialect = strings.ToLower(strings.TrimSpace(cfg.Cluster.Dialect))
	return &cfg, nil
}

// Load decodes the configuration and resolves the password from the OS
// keyring when it is not set in the file or environment.
func Load(v *viper.Viper) (*models.Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}

	if cfg.Cluster.DBPassword == "" && cfg.Cluster.DBUser != "" {
		password, err := LookupPassword(cfg)
		if err != nil {
			return nil, err
		}
		cfg.Cluster.DBPassword = password
	}

	return cfg, nil
}

// ValidateCluster checks the keys needed to open a warehouse connection
func ValidateCluster(cfg *models.Config) error {
	c := cfg.Cluster

	switch c.Dialect {
	case DialectRedshift:
		if c.Host == "" {
			return apperrors.ConfigError("cluster host is required", "cluster.host")
		}
		if c.DBPort <= 0 || c.DBPort > 65535 {
			return apperrors.ConfigError(fmt.Sprintf("cluster port %d is out of range", c.DBPort), "cluster.db_port")
		}
	case DialectSnowflake:
		if c.Account == "" {
			return apperrors.ConfigError("account is required", "cluster.account")
		}
		if c.Warehouse == "" {
			return apperrors.ConfigError("warehouse is required", "cluster.warehouse")
		}
	default:
		return apperrors.ConfigError(fmt.Sprintf("unknown dialect %q", c.Dialect), "cluster.dialect")
	}

	if c.DBName == "" {
		return apperrors.ConfigError("database name is required", "cluster.db_name")
	}
	if c.DBUser == "" {
		return apperrors.ConfigError("database user is required", "cluster.db_user")
	}
	if c.DBPassword == "" {
		return apperrors.ConfigError("database password is required", "cluster.db_password")
	}
	if _, err := ConnectTimeout(cfg); err != nil {
		return err
	}
	return nil
}

// ValidateSources checks the keys needed by the bulk-copy directives
func ValidateSources(cfg *models.Config) error {
	if cfg.IAMRole.ARN == "" {
		return apperrors.ConfigError("IAM role ARN is required for bulk copy", "iam_role.arn")
	}
	if cfg.S3.Region == "" {
		return apperrors.ConfigError("source region is required", "s3.region")
	}
	if cfg.S3.LogData == "" {
		return apperrors.ConfigError("event log location is required", "s3.log_data")
	}
	if cfg.S3.LogJSONPath == "" {
		return apperrors.ConfigError("event jsonpaths manifest is required", "s3.log_jsonpath")
	}
	if cfg.S3.SongData == "" {
		return apperrors.ConfigError("song data location is required", "s3.song_data")
	}
	return nil
}

// ConnectTimeout parses cluster.connect_timeout
func ConnectTimeout(cfg *models.Config) (time.Duration, error) {
	raw := strings.TrimSpace(cfg.Cluster.ConnectTimeout)
	if raw == "" {
		return defaultConnectTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, apperrors.ConfigError(fmt.Sprintf("invalid connect timeout %q", raw), "cluster.connect_timeout")
	}
	return d, nil
}

// Save writes the configuration as YAML with owner-only permissions
func Save(path string, cfg *models.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, filePermissionSecure); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// cleanPath resolves a config path to an absolute path, rejecting traversal
func cleanPath(path string) (string, error) {
	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid path: contains directory traversal")
	}
	if !filepath.IsAbs(cleaned) {
		abs, err := filepath.Abs(cleaned)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path: %w", err)
		}
		cleaned = abs
	}
	return cleaned, nil
}
