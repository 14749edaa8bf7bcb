package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritikZ18/screen-recoder-da/internal/analytics"
	"github.com/ritikZ18/screen-recoder-da/internal/types"
)

func TestSourceFromFlags(t *testing.T) {
	tests := []struct {
		name    string
		monitor int64
		window  string
		want    string
		wantErr bool
	}{
		{"default", -1, "", "monitor:0", false},
		{"monitor", 2, "", "monitor:2", false},
		{"hex window", -1, "0x3a00007", "window:0x3a00007", false},
		{"decimal window", -1, "42", "window:0x2a", false},
		{"bad window", -1, "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := sourceFromFlags(tt.monitor, tt.window)
			if (err != nil) != tt.wantErr {
				t.Fatalf("sourceFromFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && src.String() != tt.want {
				t.Errorf("sourceFromFlags() = %s, want %s", src, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[float64]string{
		0:      "00:00:00",
		12.4:   "00:00:12",
		61:     "00:01:01",
		3725.6: "01:02:06",
	}
	for in, want := range tests {
		if got := formatDuration(in); got != want {
			t.Errorf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestInspectCmd(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "recording_20240101_120000.mp4")

	engine := analytics.NewEngine(time.Now())
	for i := 0; i < 3; i++ {
		data := bytes.Repeat([]byte{byte(i * 120)}, 4*4*types.BytesPerPixel)
		engine.Process(&types.Frame{Width: 4, Height: 4, Data: data, Timestamp: time.Now()})
	}
	if _, err := engine.SaveMetadata(video); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newInspectCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{video})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out.String(), "recording_20240101_120000.mp4") {
		t.Errorf("output missing video name:\n%s", out.String())
	}
}

func TestRecordCmd_SyntheticRaw(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "screenrec.yaml")
	cfgBody := "instance_id: test\n" +
		"output_dir: " + filepath.Join(dir, "out") + "\n" +
		"capture: {backend: synthetic, width: 64, height: 48, fps: 20}\n" +
		"encoder: {backend: raw}\n" +
		"catalog: {path: " + filepath.Join(dir, "catalog.db") + "}\n" +
		"log: {level: error}\n"
	if err := os.WriteFile(cfgPath, []byte(cfgBody), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "record", "--duration", "600ms"})
	if err := root.Execute(); err != nil {
		t.Fatalf("record: %v\n%s", err, out.String())
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "out", "recording_*.rgb"))
	if len(matches) != 1 {
		t.Fatalf("raw outputs = %v, want one", matches)
	}
	if _, err := os.Stat(analytics.SidecarPath(matches[0])); err != nil {
		t.Errorf("sidecar missing: %v", err)
	}

	out.Reset()
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "recordings"})
	if err := root.Execute(); err != nil {
		t.Fatalf("recordings: %v", err)
	}
	if !strings.Contains(out.String(), matches[0]) {
		t.Errorf("recordings output missing %s:\n%s", matches[0], out.String())
	}
}
