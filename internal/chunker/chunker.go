package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// SplitMode selects when a trigger line starts a new chunk.
type SplitMode string

const (
	// SplitEvery closes the open chunk on every trigger line after the first.
	SplitEvery SplitMode = "every"
	// SplitRepeat closes the open chunk only when the trigger's kind was
	// already seen in it, so the field lines of one record stay together.
	SplitRepeat SplitMode = "repeat"
)

// Config controls chunking behavior.
type Config struct {
	MaxChunkChars int       // Force-close an open chunk past this size while no trigger has fired.
	MinChunkChars int       // Chunks with this many characters or fewer are dropped.
	Mode          SplitMode // Trigger handling.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars: 1000,
		MinChunkChars: 30,
		Mode:          SplitRepeat,
	}
}

// trigger is an entity marker. The first capture group names its kind
// when present; otherwise the trigger's own kind is used.
type trigger struct {
	kind string
	re   *regexp.Regexp
}

// Triggers are tried in order; the first match wins.
var triggers = []trigger{
	{re: regexp.MustCompile(`(?i)(underwriter|broker|agent):\s*[A-Za-z\s&,.'\-]`)},
	{re: regexp.MustCompile(`(?i)(company|business|client|account):\s*[A-Za-z\s&,.'\-]`)},
	{kind: "entity", re: regexp.MustCompile(`(?i)^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s*(?:LLC|INC|CORP|COMPANY|GROUP)`)},
}

// TriggerKind reports which entity marker a line matches, or "" if none.
func TriggerKind(line string) string {
	for _, t := range triggers {
		m := t.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if t.kind != "" {
			return t.kind
		}
		return strings.ToLower(m[1])
	}
	return ""
}

// Split breaks page text into candidate entry chunks.
func Split(text string, cfg Config) []string {
	def := DefaultConfig()
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = def.MaxChunkChars
	}
	if cfg.MinChunkChars < 0 {
		cfg.MinChunkChars = def.MinChunkChars
	}
	if cfg.Mode != SplitEvery && cfg.Mode != SplitRepeat {
		cfg.Mode = def.Mode
	}

	var chunks []string
	var current strings.Builder
	seen := map[string]bool{}
	foundEntity := false

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			chunks = append(chunks, t)
		}
		current.Reset()
		clear(seen)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if kind := TriggerKind(line); kind != "" {
			if foundEntity && current.Len() > 0 && (cfg.Mode == SplitEvery || seen[kind]) {
				flush()
			}
			foundEntity = true
			seen[kind] = true
		}

		current.WriteString(line)
		current.WriteByte('\n')

		if !foundEntity && utf8.RuneCountInString(current.String()) > cfg.MaxChunkChars {
			flush()
		}
	}
	flush()

	kept := chunks[:0]
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > cfg.MinChunkChars {
			kept = append(kept, c)
		}
	}
	return kept
}
