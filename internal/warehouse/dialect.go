package warehouse

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"

	"sparkload/pkg/errors"
	"sparkload/pkg/models"
)

// CopySpec is a bulk-copy directive: load every object under Source into Table
type CopySpec struct {
	Table      string
	Source     string // object storage URI prefix
	Credential string // IAM role ARN
	Region     string
	JSONPaths  string // manifest URI; empty means the fields are matched by name
}

// Dialect renders the parts of the pipeline that differ between warehouses
type Dialect interface {
	Name() string
	DriverName() string
	DSN(cluster models.Cluster, connectTimeout time.Duration) (string, error)

	// Copy renders the native bulk-copy statement
	Copy(spec CopySpec) string

	// Rewrite replaces the contents of table with the rows of query
	Rewrite(table string, columns []string, query string) []string

	// EpochMillis converts a millisecond epoch column to a timestamp,
	// truncating to whole seconds
	EpochMillis(column string) string
	ISOWeek(ts string) string
	IsWeekday(ts string) string
}

// DialectFor returns the dialect registered under name
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "redshift":
		return Redshift{}, nil
	case "snowflake":
		return Snowflake{}, nil
	default:
		return nil, errors.ConfigError(fmt.Sprintf("unknown dialect %q", name), "cluster.dialect")
	}
}

// quote renders a string literal
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Redshift speaks the PostgreSQL wire protocol through lib/pq
type Redshift struct{}

func (Redshift) Name() string       { return "redshift" }
func (Redshift) DriverName() string { return "postgres" }

func (Redshift) DSN(c models.Cluster, connectTimeout time.Duration) (string, error) {
	if c.Host == "" {
		return "", errors.ConfigError("cluster host is required", "cluster.host")
	}

	query := url.Values{}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	query.Set("sslmode", sslmode)
	if connectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(int(connectTimeout.Round(time.Second)/time.Second)))
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

func (Redshift) Copy(spec CopySpec) string {
	format := "JSON 'auto'"
	if spec.JSONPaths != "" {
		format = "JSON " + quote(spec.JSONPaths)
	}
	return fmt.Sprintf("COPY %s FROM %s\nCREDENTIALS %s\nREGION %s\n%s",
		spec.Table, quote(spec.Source), quote("aws_iam_role="+spec.Credential), quote(spec.Region), format)
}

// Rewrite stages the survivors in a temp table before replacing the target.
// The caller runs the steps in one transaction; DELETE is used because
// TRUNCATE commits implicitly on Redshift.
func (Redshift) Rewrite(table string, columns []string, query string) []string {
	temp := table + "_merge"
	cols := strings.Join(columns, ", ")
	return []string{
		fmt.Sprintf("CREATE TEMP TABLE %s AS\n%s", temp, query),
		fmt.Sprintf("DELETE FROM %s", table),
		fmt.Sprintf("INSERT INTO %s (%s)\nSELECT %s FROM %s", table, cols, cols, temp),
		fmt.Sprintf("DROP TABLE %s", temp),
	}
}

// EpochMillis floors the division so timestamps before 1970 round the
// same way as on Snowflake. Integer division would truncate toward zero.
func (Redshift) EpochMillis(column string) string {
	return fmt.Sprintf("(TIMESTAMP 'epoch' + FLOOR(%s / 1000.0) * INTERVAL '1 second')", column)
}

func (Redshift) ISOWeek(ts string) string {
	return fmt.Sprintf("EXTRACT(week FROM %s)", ts)
}

// IsWeekday treats Sunday (0) and Saturday (6) as the weekend
func (Redshift) IsWeekday(ts string) string {
	return fmt.Sprintf("CASE WHEN EXTRACT(dow FROM %s) IN (0, 6) THEN FALSE ELSE TRUE END", ts)
}

// Snowflake uses gosnowflake
type Snowflake struct{}

func (Snowflake) Name() string       { return "snowflake" }
func (Snowflake) DriverName() string { return "snowflake" }

func (Snowflake) DSN(c models.Cluster, connectTimeout time.Duration) (string, error) {
	if c.Account == "" {
		return "", errors.ConfigError("account is required", "cluster.account")
	}
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:      c.Account,
		User:         c.DBUser,
		Password:     c.DBPassword,
		Database:     c.DBName,
		Schema:       c.Schema,
		Warehouse:    c.Warehouse,
		Role:         c.Role,
		LoginTimeout: connectTimeout,
	})
}

// Copy matches JSON keys to columns by name. A jsonpaths manifest has no
// Snowflake equivalent; the staging column names equal the source keys.
func (Snowflake) Copy(spec CopySpec) string {
	return fmt.Sprintf("COPY INTO %s FROM %s\nCREDENTIALS = (AWS_ROLE = %s)\nFILE_FORMAT = (TYPE = JSON)\nMATCH_BY_COLUMN_NAME = CASE_INSENSITIVE",
		spec.Table, quote(spec.Source), quote(spec.Credential))
}

// Rewrite uses INSERT OVERWRITE, which truncates and inserts atomically.
// DDL would commit an open transaction on Snowflake, so no temp table.
func (Snowflake) Rewrite(table string, columns []string, query string) []string {
	return []string{
		fmt.Sprintf("INSERT OVERWRITE INTO %s (%s)\n%s", table, strings.Join(columns, ", "), query),
	}
}

func (Snowflake) EpochMillis(column string) string {
	return fmt.Sprintf("TO_TIMESTAMP_NTZ(FLOOR(%s / 1000))", column)
}

func (Snowflake) ISOWeek(ts string) string {
	return fmt.Sprintf("WEEKISO(%s)", ts)
}

// IsWeekday treats ISO days 6 and 7 (Saturday, Sunday) as the weekend
func (Snowflake) IsWeekday(ts string) string {
	return fmt.Sprintf("CASE WHEN DAYOFWEEKISO(%s) IN (6, 7) THEN FALSE ELSE TRUE END", ts)
}
