package models

// Config is the operator-supplied configuration for both jobs. Section and
// key names follow the cluster config file the jobs were first run with.
type Config struct {
	Cluster Cluster `yaml:"cluster" mapstructure:"cluster"`
	IAMRole IAMRole `yaml:"iam_role" mapstructure:"iam_role"`
	S3      S3      `yaml:"s3" mapstructure:"s3"`
}

// Cluster describes how to reach the warehouse
type Cluster struct {
	Dialect        string `yaml:"dialect" mapstructure:"dialect"` // "redshift" or "snowflake"
	Host           string `yaml:"host" mapstructure:"host"`
	DBName         string `yaml:"db_name" mapstructure:"db_name"`
	DBUser         string `yaml:"db_user" mapstructure:"db_user"`
	DBPassword     string `yaml:"db_password,omitempty" mapstructure:"db_password"`
	DBPort         int    `yaml:"db_port" mapstructure:"db_port"`
	SSLMode        string `yaml:"sslmode,omitempty" mapstructure:"sslmode"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty" mapstructure:"connect_timeout"` // e.g. "30s"

	// Snowflake only
	Account   string `yaml:"account,omitempty" mapstructure:"account"`
	Warehouse string `yaml:"warehouse,omitempty" mapstructure:"warehouse"`
	Role      string `yaml:"role,omitempty" mapstructure:"role"`
	Schema    string `yaml:"schema,omitempty" mapstructure:"schema"`
}

// IAMRole holds the credential that authorizes bulk copy from object storage
type IAMRole struct {
	ARN string `yaml:"arn" mapstructure:"arn"`
}

// S3 locates the source files for the staging tables
type S3 struct {
	Region      string `yaml:"region" mapstructure:"region"`
	LogData     string `yaml:"log_data" mapstructure:"log_data"`
	LogJSONPath string `yaml:"log_jsonpath" mapstructure:"log_jsonpath"`
	SongData    string `yaml:"song_data" mapstructure:"song_data"`
	Anonymous   bool   `yaml:"anonymous,omitempty" mapstructure:"anonymous"` // unsigned reads for public buckets
}
