package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testOutput struct {
	level, output, file string
}

func (o testOutput) GetLevel() string  { return o.level }
func (o testOutput) GetOutput() string { return o.output }
func (o testOutput) GetFile() string   { return o.file }

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"warning": WARN,
		"error":   ERROR,
		"fatal":   FATAL,
		"bogus":   INFO,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %d; want %d", in, got, want)
		}
	}
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := Init(testOutput{level: "info", output: "file", file: path}); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer Init(testOutput{level: "info", output: "stdout"})

	Info("minted %d records", 3)
	Debug("hidden")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), "minted 3 records") {
		t.Errorf("log file = %q; want info message", string(data))
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug message written at info level")
	}
}

func TestInit_FileOutputRequiresPath(t *testing.T) {
	if err := Init(testOutput{level: "info", output: "file"}); err == nil {
		t.Error("Init() with empty file = nil; want error")
	}
}
