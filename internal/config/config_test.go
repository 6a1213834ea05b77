// ABOUTME: Tests for runlog configuration management.
// ABOUTME: Covers defaults, YAML and env layering, validation, and path expansion.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/runlog/internal/derive"
	"github.com/harperreed/runlog/internal/match"
)

// isolate points config lookups at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv(PathEnvVar, "")
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestGetDataDirDefault(t *testing.T) {
	dir := isolate(t)

	cfg := &Config{}
	want := filepath.Join(dir, "data", "runlog")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/runlog-data"}
	want := filepath.Join(home, "runlog-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetDBPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "under data dir", cfg: Config{DataDir: "/tmp/rl"}, want: "/tmp/rl/runlog.db"},
		{name: "explicit path wins", cfg: Config{DataDir: "/tmp/rl", DBPath: "/srv/x.db"}, want: "/srv/x.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.GetDBPath(); got != tt.want {
				t.Errorf("GetDBPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/runlog", filepath.Join(home, "data/runlog")},
		{"data/runlog", "data/runlog"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	dir := isolate(t)

	want := filepath.Join(dir, "runlog", "config.yaml")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}

	t.Setenv(PathEnvVar, "/etc/runlog.yaml")
	if got := GetConfigPath(); got != "/etc/runlog.yaml" {
		t.Errorf("GetConfigPath() with override = %q", got)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}

	if cfg.Ingest.MatchToleranceKm != match.DefaultToleranceKm {
		t.Errorf("MatchToleranceKm = %v, want %v", cfg.Ingest.MatchToleranceKm, match.DefaultToleranceKm)
	}
	if cfg.Ingest.LongRunThresholdKm != derive.DefaultLongRunThresholdKm {
		t.Errorf("LongRunThresholdKm = %v", cfg.Ingest.LongRunThresholdKm)
	}
	if !reflect.DeepEqual(cfg.Ingest.ActivityTypes, []string{"Run"}) {
		t.Errorf("ActivityTypes = %v, want [Run]", cfg.Ingest.ActivityTypes)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Sink.HTTP.Timeout != 30*time.Second {
		t.Errorf("HTTP timeout = %v, want 30s", cfg.Sink.HTTP.Timeout)
	}
}

func TestLoadFileYAML(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
data_dir: /tmp/runlog-yaml
ingest:
  match_tolerance_km: 0.5
  activity_types: [Run, Trail Run]
log:
  level: debug
sink:
  http:
    url: http://collector.local/ingest
    timeout: 5s
  kafka:
    brokers: [localhost:9092]
    topic: runs
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.DataDir != "/tmp/runlog-yaml" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Ingest.MatchToleranceKm != 0.5 {
		t.Errorf("MatchToleranceKm = %v, want 0.5", cfg.Ingest.MatchToleranceKm)
	}
	// Unset keys keep their defaults.
	if cfg.Ingest.LongRunThresholdKm != derive.DefaultLongRunThresholdKm {
		t.Errorf("LongRunThresholdKm = %v", cfg.Ingest.LongRunThresholdKm)
	}
	if !reflect.DeepEqual(cfg.Ingest.ActivityTypes, []string{"Run", "Trail Run"}) {
		t.Errorf("ActivityTypes = %v", cfg.Ingest.ActivityTypes)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Sink.HTTP.Timeout != 5*time.Second {
		t.Errorf("HTTP timeout = %v, want 5s", cfg.Sink.HTTP.Timeout)
	}
	if !reflect.DeepEqual(cfg.Sink.Kafka.Brokers, []string{"localhost:9092"}) || cfg.Sink.Kafka.Topic != "runs" {
		t.Errorf("Kafka = %+v", cfg.Sink.Kafka)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "ingest:\n  match_tolerance_km: 0.5\nlog:\n  format: json\n")

	t.Setenv("RUNLOG_INGEST_MATCH_TOLERANCE_KM", "1.5")
	t.Setenv("RUNLOG_INGEST_ACTIVITY_TYPES", "Run, Virtual Run")
	t.Setenv("RUNLOG_SINK_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("RUNLOG_SINK_HTTP_TIMEOUT", "2m")
	t.Setenv("RUNLOG_UNKNOWN_KEY", "ignored")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Ingest.MatchToleranceKm != 1.5 {
		t.Errorf("MatchToleranceKm = %v, want 1.5", cfg.Ingest.MatchToleranceKm)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Format = %q, want json from file", cfg.Log.Format)
	}
	if !reflect.DeepEqual(cfg.Ingest.ActivityTypes, []string{"Run", "Virtual Run"}) {
		t.Errorf("ActivityTypes = %v", cfg.Ingest.ActivityTypes)
	}
	if !reflect.DeepEqual(cfg.Sink.Kafka.Brokers, []string{"a:9092", "b:9092"}) {
		t.Errorf("Brokers = %v", cfg.Sink.Kafka.Brokers)
	}
	if cfg.Sink.HTTP.Timeout != 2*time.Minute {
		t.Errorf("HTTP timeout = %v, want 2m", cfg.Sink.HTTP.Timeout)
	}
}

func TestLoadUsesConfigEnvVar(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "db_path: /tmp/elsewhere.db\n")
	t.Setenv(PathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GetDBPath() != "/tmp/elsewhere.db" {
		t.Errorf("GetDBPath() = %q", cfg.GetDBPath())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "zero tolerance", body: "ingest:\n  match_tolerance_km: 0\n", wantErr: "match_tolerance_km"},
		{name: "negative threshold", body: "ingest:\n  long_run_threshold_km: -1\n", wantErr: "long_run_threshold_km"},
		{name: "bad level", body: "log:\n  level: loud\n", wantErr: "level"},
		{name: "bad format", body: "log:\n  format: xml\n", wantErr: "format"},
		{name: "bad broker", body: "sink:\n  kafka:\n    brokers: [nope]\n", wantErr: "brokers"},
		{name: "bad yaml", body: "ingest: [unclosed\n", wantErr: "config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := LoadFile(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.DataDir = "/tmp/runlog-saved"
	cfg.Ingest.MatchToleranceKm = 0.75
	cfg.Sink.Kafka.Topic = "fitness"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.DataDir != cfg.DataDir || loaded.Ingest.MatchToleranceKm != 0.75 || loaded.Sink.Kafka.Topic != "fitness" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
	if loaded.Sink.HTTP.Timeout != cfg.Sink.HTTP.Timeout {
		t.Errorf("timeout = %v, want %v", loaded.Sink.HTTP.Timeout, cfg.Sink.HTTP.Timeout)
	}
}

func TestIngestOptions(t *testing.T) {
	cfg := Default()
	cfg.Ingest.MatchToleranceKm = 0.4
	cfg.Ingest.LongRunThresholdKm = 20

	opts := cfg.IngestOptions()
	if opts.MatchToleranceKm != 0.4 {
		t.Errorf("MatchToleranceKm = %v", opts.MatchToleranceKm)
	}
	if opts.Derive.LongRunThresholdKm != 20 {
		t.Errorf("LongRunThresholdKm = %v", opts.Derive.LongRunThresholdKm)
	}
	if !reflect.DeepEqual(opts.ActivityTypes, []string{"Run"}) {
		t.Errorf("ActivityTypes = %v", opts.ActivityTypes)
	}
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DataDir: dir}

	repo, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() failed: %v", err)
	}
	defer repo.Close()

	if _, err := os.Stat(filepath.Join(dir, "runlog.db")); os.IsNotExist(err) {
		t.Error("Expected runlog.db to be created")
	}
}
