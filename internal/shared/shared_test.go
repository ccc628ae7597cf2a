package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateFilename(t *testing.T) {
	tc := []struct {
		name     string
		original string
		wantExt  string
	}{
		{name: "lowercases extension", original: "Cover.PNG", wantExt: ".png"},
		{name: "keeps last extension", original: "song.final.mp3", wantExt: ".mp3"},
		{name: "no extension", original: "README", wantExt: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateFilename(tt.original)
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Errorf("GenerateFilename(%q) = %q, want suffix %q", tt.original, got, tt.wantExt)
			}
			if len(got) != 36+len(tt.wantExt) {
				t.Errorf("GenerateFilename(%q) = %q, want uuid-sized base", tt.original, got)
			}
		})
	}

	t.Run("unique", func(t *testing.T) {
		if GenerateFilename("a.png") == GenerateFilename("a.png") {
			t.Error("expected two generated names to differ")
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	tc := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{" WARN ", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"nonsense", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLogLevel(tt.in); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "component", "test")
	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
		t.Errorf("unexpected log output: %q", out)
	}
}
