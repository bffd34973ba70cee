package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/notegest/internal/chunker"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notegest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if cfg.Automation.Timeout != want.Automation.Timeout {
		t.Errorf("timeout = %s, want %s", cfg.Automation.Timeout, want.Automation.Timeout)
	}
	if cfg.Chunking.MaxChunkChars != 1000 || cfg.Chunking.MinChunkChars != 30 {
		t.Errorf("chunking = %+v", cfg.Chunking)
	}
	if cfg.Chunking.SplitMode != string(chunker.SplitRepeat) {
		t.Errorf("split mode = %q", cfg.Chunking.SplitMode)
	}
	if !cfg.Validation.AcceptUnderwritten {
		t.Error("expected underwritten to be accepted by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
automation:
  timeout: 45s
chunking:
  max_chunk_chars: 800
  split_mode: every
export:
  output_dir: /tmp/out
server:
  worker_count: 6
`)
	t.Setenv("NOTEGEST_CHUNKING_MAX_CHUNK_CHARS", "1200")
	t.Setenv("NOTEGEST_VALIDATION_ACCEPT_UNDERWRITTEN", "false")
	t.Setenv("NOTEGEST_WATCH_DEBOUNCE", "500ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Automation.Timeout != 45*time.Second {
		t.Errorf("timeout = %s, want 45s", cfg.Automation.Timeout)
	}
	if cfg.Chunking.MaxChunkChars != 1200 {
		t.Errorf("env should win over file: max = %d", cfg.Chunking.MaxChunkChars)
	}
	if cfg.Chunking.MinChunkChars != 30 {
		t.Errorf("unset keys keep defaults: min = %d", cfg.Chunking.MinChunkChars)
	}
	if cfg.Chunking.SplitMode != "every" {
		t.Errorf("split mode = %q", cfg.Chunking.SplitMode)
	}
	if cfg.Validation.AcceptUnderwritten {
		t.Error("expected env to disable underwritten")
	}
	if cfg.Export.OutputDir != "/tmp/out" {
		t.Errorf("output dir = %q", cfg.Export.OutputDir)
	}
	if cfg.Server.WorkerCount != 6 {
		t.Errorf("worker count = %d", cfg.Server.WorkerCount)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %s", cfg.Watch.Debounce)
	}
}

func TestLoadTimeoutZeroDisables(t *testing.T) {
	t.Setenv("NOTEGEST_AUTOMATION_TIMEOUT", "0s")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Automation.Timeout != 0 {
		t.Errorf("timeout = %s, want 0", cfg.Automation.Timeout)
	}
}

func TestLoadNormalizesOutOfRange(t *testing.T) {
	path := writeFile(t, `
chunking:
  max_chunk_chars: -5
  min_chunk_chars: -1
server:
  worker_count: 0
  job_ttl: -1s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Chunking.MaxChunkChars != 1000 || cfg.Chunking.MinChunkChars != 30 {
		t.Errorf("chunking not normalized: %+v", cfg.Chunking)
	}
	if cfg.Server.WorkerCount != 2 {
		t.Errorf("worker count = %d", cfg.Server.WorkerCount)
	}
	if cfg.Server.JobTTL != time.Hour {
		t.Errorf("job ttl = %s", cfg.Server.JobTTL)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeFile(t, "chunking: [unterminated")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Chunking.SplitMode = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Error("expected bad split mode to fail")
	}

	cfg = Defaults()
	cfg.Chunking.MinChunkChars = 1000
	if err := cfg.Validate(); err == nil {
		t.Error("expected min >= max to fail")
	}

	cfg = Defaults()
	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("expected bad log format to fail")
	}

	cfg = Defaults()
	cfg.Automation.MaxRetries = 64
	if err := cfg.Validate(); err == nil {
		t.Error("expected huge max_retries to fail")
	}

	cfg = Defaults()
	cfg.Automation.MaxRetries = MaxRetriesLimit
	if err := cfg.Validate(); err != nil {
		t.Errorf("max_retries at the limit: %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	cases := map[string]string{
		"NOTEGEST_CHUNKING_MAX_CHUNK_CHARS": "chunking.max_chunk_chars",
		"NOTEGEST_LOG_LEVEL":                "log.level",
		"NOTEGEST_STRAY":                    "stray",
	}
	for in, want := range cases {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChunkerConfig(t *testing.T) {
	cfg := Defaults()
	cc := cfg.ChunkerConfig()
	if cc != chunker.DefaultConfig() {
		t.Errorf("ChunkerConfig() = %+v, want %+v", cc, chunker.DefaultConfig())
	}
}
