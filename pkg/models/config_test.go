package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigYAMLKeys(t *testing.T) {
	config := Config{
		Cluster: Cluster{
			Dialect: "redshift",
			Host:    "dwh.abc123.us-west-2.redshift.amazonaws.com",
			DBName:  "dev",
			DBUser:  "awsuser",
			DBPort:  5439,
		},
		IAMRole: IAMRole{ARN: "arn:aws:iam::123456789012:role/dwhRole"},
		S3: S3{
			Region:      "us-west-2",
			LogData:     "s3://udacity-dend/log_data",
			LogJSONPath: "s3://udacity-dend/log_json_path.json",
			SongData:    "s3://udacity-dend/song_data",
		},
	}

	data, err := yaml.Marshal(&config)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "db_name: dev")
	assert.Contains(t, text, "log_jsonpath: s3://udacity-dend/log_json_path.json")
	assert.NotContains(t, text, "db_password", "empty password should not be written")
	assert.NotContains(t, text, "account", "snowflake keys should be omitted when unset")
}
