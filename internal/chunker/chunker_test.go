package chunker

import (
	"strings"
	"testing"
)

func TestTriggerKind(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"Underwriter: Acme Corp", "underwriter"},
		{"BROKER: Smith Agency", "broker"},
		{"Agent: R. Jones", "agent"},
		{"Client: Jones Bakery", "client"},
		{"Account: Northwind", "account"},
		{"Company: Jones LLC", "company"},
		{"Acme Holdings LLC", "entity"},
		{"acme holdings llc", "entity"},
		{"the company", "entity"},
		{"Date: 01/02/2023", ""},
		{"Amount due: $1,200.00", ""},
		{"Underwriter:", ""},
	}
	for _, c := range cases {
		if got := TriggerKind(c.line); got != c.want {
			t.Errorf("TriggerKind(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestSplit_RepeatedTriggerStartsNewChunk(t *testing.T) {
	text := "Underwriter: Alpha Insurance\nPolicy 01/02/2023 premium $500\nUnderwriter: Beta Mutual\nPolicy 03/04/2023 premium $700"

	for _, mode := range []SplitMode{SplitEvery, SplitRepeat} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		chunks := Split(text, cfg)
		if len(chunks) != 2 {
			t.Fatalf("mode %s: expected 2 chunks, got %d: %q", mode, len(chunks), chunks)
		}
		if chunks[0] != "Underwriter: Alpha Insurance\nPolicy 01/02/2023 premium $500" {
			t.Errorf("mode %s: unexpected first chunk %q", mode, chunks[0])
		}
		if !strings.HasPrefix(chunks[1], "Underwriter: Beta Mutual") {
			t.Errorf("mode %s: unexpected second chunk %q", mode, chunks[1])
		}
	}
}

func TestSplit_RecordFieldsStayTogetherInRepeatMode(t *testing.T) {
	text := "Broker: Smith Agency\nCompany: Jones LLC\nDate: 03/04/2022\nAmount due: $1,200.00"

	chunks := Split(text, DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != text {
		t.Errorf("expected whole record, got %q", chunks[0])
	}
}

func TestSplit_EveryModeSplitsOnEachTrigger(t *testing.T) {
	text := "Broker: Smith Agency\nCompany: Jones LLC\nDate: 03/04/2022\nAmount due: $1,200.00"

	cfg := DefaultConfig()
	cfg.Mode = SplitEvery
	chunks := Split(text, cfg)

	// The broker line alone is below the minimum length and is dropped.
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "Company: Jones LLC\nDate: 03/04/2022\nAmount due: $1,200.00" {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}

func TestSplit_PreambleJoinsFirstEntity(t *testing.T) {
	text := "Meeting notes for the week\n\n  Underwriter: Acme Corp  \nBound 01/02/2023"
	chunks := Split(text, DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "Meeting notes for the week\nUnderwriter: Acme Corp\nBound 01/02/2023"
	if chunks[0] != want {
		t.Errorf("expected %q, got %q", want, chunks[0])
	}
}

func TestSplit_ForceClosesLongChunksWithoutEntity(t *testing.T) {
	line := strings.Repeat("a", 99)
	var lines []string
	for range 25 {
		lines = append(lines, line)
	}
	chunks := Split(strings.Join(lines, "\n"), DefaultConfig())

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if n := strings.Count(chunks[0], "\n") + 1; n != 11 {
		t.Errorf("expected 11 lines in first chunk, got %d", n)
	}
}

func TestSplit_NoForceCloseAfterTrigger(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Underwriter: Acme Corp\n")
	for range 25 {
		sb.WriteString(strings.Repeat("b", 99))
		sb.WriteString("\n")
	}
	chunks := Split(sb.String(), DefaultConfig())
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk once an entity was found, got %d", len(chunks))
	}
}

func TestSplit_MinChunkFiltering(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkChars = 5

	if chunks := Split("abcde", cfg); len(chunks) != 0 {
		t.Errorf("expected chunk of exactly MinChunkChars to be dropped, got %q", chunks)
	}
	if chunks := Split("abcdef", cfg); len(chunks) != 1 {
		t.Errorf("expected chunk above MinChunkChars to be kept, got %q", chunks)
	}
	if chunks := Split("Underwriter: X", DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected short chunk to be dropped with defaults, got %q", chunks)
	}
}

func TestSplit_IdempotentOnSingleEntityChunk(t *testing.T) {
	text := "Underwriter: Alpha Insurance\nPolicy 01/02/2023 premium $500\nUnderwriter: Beta Mutual\nPolicy 03/04/2023 premium $700"
	for _, chunk := range Split(text, DefaultConfig()) {
		again := Split(chunk, DefaultConfig())
		if len(again) != 1 || again[0] != chunk {
			t.Errorf("re-chunking %q produced %q", chunk, again)
		}
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split("", DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
	if chunks := Split("\n\n   \n", DefaultConfig()); len(chunks) != 0 {
		t.Errorf("expected 0 chunks for blank input, got %d", len(chunks))
	}
}

func TestSplit_DefaultConfigFallback(t *testing.T) {
	// Zero-value config keeps MinChunkChars at 0 but restores the cap and mode.
	text := "Underwriter: Alpha\nx\nUnderwriter: Beta\ny"
	chunks := Split(text, Config{})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks with zero config, got %d: %q", len(chunks), chunks)
	}
}
