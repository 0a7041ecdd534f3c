package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	apperrors "sparkload/pkg/errors"
	"sparkload/pkg/models"
)

const sampleConfig = `
cluster:
  host: dwh.abc123.us-west-2.redshift.amazonaws.com
  db_name: dev
  db_user: awsuser
  db_password: Passw0rd
  db_port: 5439
iam_role:
  arn: arn:aws:iam::123456789012:role/dwhRole
s3:
  log_data: s3://udacity-dend/log_data
  log_jsonpath: s3://udacity-dend/log_json_path.json
  song_data: s3://udacity-dend/song_data/A/A/
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sparkload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func validConfig() *models.Config {
	return &models.Config{
		Cluster: models.Cluster{
			Dialect:    DialectRedshift,
			Host:       "dwh.example.com",
			DBName:     "dev",
			DBUser:     "awsuser",
			DBPassword: "secret",
			DBPort:     5439,
		},
		IAMRole: models.IAMRole{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
		S3: models.S3{
			Region:      "us-west-2",
			LogData:     "s3://bucket/log_data",
			LogJSONPath: "s3://bucket/log_json_path.json",
			SongData:    "s3://bucket/song_data",
		},
	}
}

func TestLoadFromFile(t *testing.T) {
	v, err := NewViper(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, DialectRedshift, cfg.Cluster.Dialect)
	assert.Equal(t, "dev", cfg.Cluster.DBName)
	assert.Equal(t, 5439, cfg.Cluster.DBPort)
	assert.Equal(t, "require", cfg.Cluster.SSLMode)
	assert.Equal(t, "us-west-2", cfg.S3.Region)
	assert.Equal(t, "s3://udacity-dend/log_json_path.json", cfg.S3.LogJSONPath)

	require.NoError(t, ValidateCluster(cfg))
	require.NoError(t, ValidateSources(cfg))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("SPARKLOAD_CLUSTER_DB_PASSWORD", "from-env")
	t.Setenv("SPARKLOAD_S3_REGION", "eu-west-1")

	v, err := NewViper(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Cluster.DBPassword)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigNotFound, apperrors.GetErrorCode(err))
}

func TestPasswordFromKeyring(t *testing.T) {
	keyring.MockInit()

	withoutPassword := `
cluster:
  host: dwh.example.com
  db_name: dev
  db_user: awsuser
`
	v, err := NewViper(writeConfig(t, withoutPassword))
	require.NoError(t, err)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Empty(t, cfg.Cluster.DBPassword)

	require.NoError(t, StorePassword(cfg, "kept-in-keyring"))

	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "kept-in-keyring", cfg.Cluster.DBPassword)
}

func TestDecodeSkipsKeyring(t *testing.T) {
	keyring.MockInitWithError(errors.New("secret service unavailable"))
	t.Cleanup(keyring.MockInit)

	v, err := NewViper(writeConfig(t, "cluster:\n  dialect: Snowflake\n  db_user: loader\n"))
	require.NoError(t, err)

	cfg, err := Decode(v)
	require.NoError(t, err)
	assert.Equal(t, DialectSnowflake, cfg.Cluster.Dialect)
	assert.Empty(t, cfg.Cluster.DBPassword)

	_, err = Load(v)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSecretsStore, apperrors.GetErrorCode(err))
}

func TestValidateCluster(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Config)
		field  string
	}{
		{"valid", func(*models.Config) {}, ""},
		{"missing host", func(c *models.Config) { c.Cluster.Host = "" }, "cluster.host"},
		{"bad port", func(c *models.Config) { c.Cluster.DBPort = 70000 }, "cluster.db_port"},
		{"missing database", func(c *models.Config) { c.Cluster.DBName = "" }, "cluster.db_name"},
		{"missing user", func(c *models.Config) { c.Cluster.DBUser = "" }, "cluster.db_user"},
		{"missing password", func(c *models.Config) { c.Cluster.DBPassword = "" }, "cluster.db_password"},
		{"unknown dialect", func(c *models.Config) { c.Cluster.Dialect = "bigquery" }, "cluster.dialect"},
		{"bad timeout", func(c *models.Config) { c.Cluster.ConnectTimeout = "soon" }, "cluster.connect_timeout"},
		{"snowflake without account", func(c *models.Config) {
			c.Cluster.Dialect = DialectSnowflake
			c.Cluster.Warehouse = "COMPUTE_WH"
		}, "cluster.account"},
		{"snowflake without warehouse", func(c *models.Config) {
			c.Cluster.Dialect = DialectSnowflake
			c.Cluster.Account = "xy12345.us-east-1"
		}, "cluster.warehouse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := ValidateCluster(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Context["field"])
		})
	}
}

func TestValidateSources(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, ValidateSources(cfg))

	cfg.IAMRole.ARN = ""
	err := ValidateSources(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IAM role ARN is required")
}

func TestConnectTimeout(t *testing.T) {
	cfg := validConfig()

	d, err := ConnectTimeout(cfg)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	cfg.Cluster.ConnectTimeout = "2m"
	d, err = ConnectTimeout(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sparkload.yaml")
	cfg := validConfig()
	cfg.Cluster.DBPassword = ""

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	keyring.MockInit()
	v, err := NewViper(path)
	require.NoError(t, err)
	loaded, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cluster.Host, loaded.Cluster.Host)
	assert.Equal(t, cfg.S3.SongData, loaded.S3.SongData)
}
