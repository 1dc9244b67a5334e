package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithOptionsLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "debug", level: "debug", want: zerolog.DebugLevel},
		{name: "warn", level: "warn", want: zerolog.WarnLevel},
		{name: "error", level: "error", want: zerolog.ErrorLevel},
		{name: "default is info", level: "", want: zerolog.InfoLevel},
		{name: "unknown falls back to info", level: "verbose", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewWithOptions(tt.level, "json")
			if got := log.GetLevel(); got != tt.want {
				t.Errorf("NewWithOptions(%q) level = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewWithOptionsFormat(t *testing.T) {
	// Both formats must produce a usable logger at the requested level.
	for _, format := range []string{"json", "pretty"} {
		log := NewWithOptions("debug", format)
		if log.GetLevel() != zerolog.DebugLevel {
			t.Errorf("Format %q: expected debug level, got %v", format, log.GetLevel())
		}
	}
}
