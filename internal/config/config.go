// Package config loads notegest settings from defaults, an optional YAML
// file and NOTEGEST_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/dgallion1/notegest/internal/chunker"
)

// EnvPrefix marks the environment variables read by Load.
//
//	NOTEGEST_CHUNKING_MAX_CHUNK_CHARS -> chunking.max_chunk_chars
const EnvPrefix = "NOTEGEST_"

const maxConfigFileSize = 1 << 20

type Config struct {
	Log        LogConfig        `koanf:"log"`
	Automation AutomationConfig `koanf:"automation"`
	Chunking   ChunkingConfig   `koanf:"chunking"`
	Validation ValidationConfig `koanf:"validation"`
	Export     ExportConfig     `koanf:"export"`
	Server     ServerConfig     `koanf:"server"`
	Watch      WatchConfig      `koanf:"watch"`
	Parser     ParserConfig     `koanf:"parser"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type AutomationConfig struct {
	// Timeout bounds a whole notebook extraction. Zero disables it.
	Timeout    time.Duration `koanf:"timeout"`
	PowerShell string        `koanf:"powershell"`
	MaxRetries int           `koanf:"max_retries"`
}

type ChunkingConfig struct {
	MaxChunkChars int    `koanf:"max_chunk_chars"`
	MinChunkChars int    `koanf:"min_chunk_chars"`
	SplitMode     string `koanf:"split_mode"`
}

type ValidationConfig struct {
	AcceptUnderwritten bool `koanf:"accept_underwritten"`
}

type ExportConfig struct {
	OutputDir   string `koanf:"output_dir"`
	FailOnEmpty bool   `koanf:"fail_on_empty"`

	// Optional sinks; each is off while its key is empty.
	S3Bucket      string `koanf:"s3_bucket"`
	S3Prefix      string `koanf:"s3_prefix"`
	S3Region      string `koanf:"s3_region"`
	PostgresDSN   string `koanf:"postgres_dsn"`
	PostgresTable string `koanf:"postgres_table"`
}

type ServerConfig struct {
	Port           string        `koanf:"port"`
	APIKey         string        `koanf:"api_key"`
	WorkerCount    int           `koanf:"worker_count"`
	MaxQueueSize   int           `koanf:"max_queue_size"`
	MaxUploadBytes int64         `koanf:"max_upload_bytes"`
	JobTTL         time.Duration `koanf:"job_ttl"`
}

type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

type ParserConfig struct {
	PDFFallbackPdftotext bool `koanf:"pdf_fallback_pdftotext"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Automation: AutomationConfig{
			Timeout:    120 * time.Second,
			PowerShell: "powershell",
			MaxRetries: 3,
		},
		Chunking: ChunkingConfig{
			MaxChunkChars: 1000,
			MinChunkChars: 30,
			SplitMode:     string(chunker.SplitRepeat),
		},
		Validation: ValidationConfig{AcceptUnderwritten: true},
		Export: ExportConfig{
			OutputDir:     ".",
			PostgresTable: "business_entries",
		},
		Server: ServerConfig{
			Port:           "8090",
			WorkerCount:    2,
			MaxQueueSize:   100,
			MaxUploadBytes: 52428800, // 50MB
			JobTTL:         time.Hour,
		},
		Watch:  WatchConfig{Debounce: 2 * time.Second},
		Parser: ParserConfig{PDFFallbackPdftotext: true},
	}
}

// Load reads the YAML file at path (skipped when empty) and the
// environment on top of Defaults.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// envKey maps NOTEGEST_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config file %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// normalize resets out-of-range values to their defaults.
func (c *Config) normalize() {
	d := Defaults()

	if c.Automation.Timeout < 0 {
		c.Automation.Timeout = d.Automation.Timeout
	}
	if c.Automation.PowerShell == "" {
		c.Automation.PowerShell = d.Automation.PowerShell
	}
	if c.Automation.MaxRetries < 0 {
		c.Automation.MaxRetries = d.Automation.MaxRetries
	}
	if c.Chunking.MaxChunkChars <= 0 {
		c.Chunking.MaxChunkChars = d.Chunking.MaxChunkChars
	}
	if c.Chunking.MinChunkChars < 0 {
		c.Chunking.MinChunkChars = d.Chunking.MinChunkChars
	}
	if c.Chunking.SplitMode == "" {
		c.Chunking.SplitMode = d.Chunking.SplitMode
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = d.Export.OutputDir
	}
	if c.Export.PostgresTable == "" {
		c.Export.PostgresTable = d.Export.PostgresTable
	}
	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if c.Server.WorkerCount <= 0 {
		c.Server.WorkerCount = d.Server.WorkerCount
	}
	if c.Server.MaxQueueSize <= 0 {
		c.Server.MaxQueueSize = d.Server.MaxQueueSize
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = d.Server.MaxUploadBytes
	}
	if c.Server.JobTTL <= 0 {
		c.Server.JobTTL = d.Server.JobTTL
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = d.Watch.Debounce
	}
}

// MaxRetriesLimit bounds automation.max_retries. Each retry past the fifth
// waits the full backoff cap, so a larger value only stalls a failing export.
const MaxRetriesLimit = 10

// Validate reports settings that cannot be repaired by normalization.
func (c Config) Validate() error {
	switch chunker.SplitMode(c.Chunking.SplitMode) {
	case chunker.SplitEvery, chunker.SplitRepeat:
	default:
		return fmt.Errorf("chunking.split_mode %q: want %q or %q", c.Chunking.SplitMode, chunker.SplitEvery, chunker.SplitRepeat)
	}
	if c.Chunking.MinChunkChars >= c.Chunking.MaxChunkChars {
		return fmt.Errorf("chunking.min_chunk_chars (%d) must be below max_chunk_chars (%d)", c.Chunking.MinChunkChars, c.Chunking.MaxChunkChars)
	}
	if c.Automation.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("automation.max_retries %d: at most %d", c.Automation.MaxRetries, MaxRetriesLimit)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format %q: want json or console", c.Log.Format)
	}
	return nil
}

// ChunkerConfig converts the chunking section.
func (c Config) ChunkerConfig() chunker.Config {
	return chunker.Config{
		MaxChunkChars: c.Chunking.MaxChunkChars,
		MinChunkChars: c.Chunking.MinChunkChars,
		Mode:          chunker.SplitMode(c.Chunking.SplitMode),
	}
}
