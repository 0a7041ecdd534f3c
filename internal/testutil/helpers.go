// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t *testing.T
}

// NewTestHelper creates a new test helper
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// WriteFile writes content below dir, creating parent directories
func (h *TestHelper) WriteFile(dir, filename, content string) string {
	h.t.Helper()
	path := filepath.Join(dir, filename)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.t.Fatalf("Failed to create directories: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		h.t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

// LogJSONPath is the jsonpaths file published with the event logs, in the
// layout Redshift COPY reads
const LogJSONPath = `{
    "jsonpaths": [
        "$['artist']",
        "$['auth']",
        "$['firstName']",
        "$['gender']",
        "$['itemInSession']",
        "$['lastName']",
        "$['length']",
        "$['level']",
        "$['location']",
        "$['method']",
        "$['page']",
        "$['registration']",
        "$['sessionId']",
        "$['song']",
        "$['status']",
        "$['ts']",
        "$['userAgent']",
        "$['userId']"
    ]
}
`

// Sources is a local copy of the bucket layout the load job reads
type Sources struct {
	Dir      string
	LogData  string
	Manifest string
	SongData string
}

// WriteSources lays out event and song files under a temp dir. Each event
// file is written under log_data, each song record under song_data.
func (h *TestHelper) WriteSources(events map[string]string, songs map[string]string) Sources {
	h.t.Helper()
	dir := h.t.TempDir()

	s := Sources{
		Dir:      dir,
		LogData:  filepath.Join(dir, "log_data"),
		SongData: filepath.Join(dir, "song_data"),
	}
	if err := os.MkdirAll(s.LogData, 0o755); err != nil {
		h.t.Fatalf("Failed to create log_data: %v", err)
	}
	if err := os.MkdirAll(s.SongData, 0o755); err != nil {
		h.t.Fatalf("Failed to create song_data: %v", err)
	}

	for name, content := range events {
		h.WriteFile(s.LogData, name, content)
	}
	for name, content := range songs {
		h.WriteFile(s.SongData, name, content)
	}
	s.Manifest = h.WriteFile(dir, "log_json_path.json", LogJSONPath)
	return s
}

// WriteConfig writes a Redshift config file reading from s
func (h *TestHelper) WriteConfig(s Sources) string {
	h.t.Helper()
	return h.WriteFile(s.Dir, "sparkload.yaml", fmt.Sprintf(`cluster:
  host: dwh.example.com
  db_name: dev
  db_user: awsuser
  db_password: secret
  db_port: 5439
iam_role:
  arn: arn:aws:iam::123456789012:role/dwhRole
s3:
  region: us-west-2
  log_data: %s
  log_jsonpath: %s
  song_data: %s
`, s.LogData, s.Manifest, s.SongData))
}
