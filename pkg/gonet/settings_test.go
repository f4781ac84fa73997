package gonet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestDefaultSensorGeometry(t *testing.T) {
	g := DefaultSensorGeometry()
	if err := g.Validate(); err != nil {
		t.Fatalf("default geometry does not validate: %v", err)
	}
	if got := g.RawDataOffset(); got != 18678272 {
		t.Errorf("RawDataOffset = %d, want 18678272", got)
	}
	if got := g.UsedLineBytes(); got != 6084 {
		t.Errorf("UsedLineBytes = %d, want 6084", got)
	}
}

func TestSensorGeometryValidate(t *testing.T) {
	base := tinyGeometry()
	if err := base.Validate(); err != nil {
		t.Fatalf("tiny geometry does not validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*SensorGeometry)
	}{
		{"zero line", func(g *SensorGeometry) { g.PixelsPerLine = 0 }},
		{"negative column", func(g *SensorGeometry) { g.PixelsPerColumn = -4 }},
		{"odd line", func(g *SensorGeometry) { g.PixelsPerLine = 5 }},
		{"odd column", func(g *SensorGeometry) { g.PixelsPerColumn = 3 }},
		{"padding too small", func(g *SensorGeometry) { g.PaddedLineBytes = 8 }},
		{"offset too small", func(g *SensorGeometry) { g.RawFileOffset = 40 }},
	}
	for _, tc := range cases {
		g := base
		tc.mutate(&g)
		if err := g.Validate(); !errors.Is(err, ErrFormat) {
			t.Errorf("%s: got %v, want ErrFormat", tc.name, err)
		}
	}
}

func TestSensorGeometryYAMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geometry.yaml")
	want := tinyGeometry()
	if err := SaveSensorGeometry(want, path); err != nil {
		t.Fatalf("SaveSensorGeometry failed: %v", err)
	}
	got, err := LoadSensorGeometry(path)
	if err != nil {
		t.Fatalf("LoadSensorGeometry failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip: got %+v, want %+v", got, want)
	}
}

func TestLoadSensorGeometryMissingFile(t *testing.T) {
	g, err := LoadSensorGeometry(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got %v", err)
	}
	if g != DefaultSensorGeometry() {
		t.Errorf("got %+v, want the defaults", g)
	}
}

func TestLoadSensorGeometryPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	writeTestFile(t, path, "paddedLineBytes: 7000\n")
	g, err := LoadSensorGeometry(path)
	if err != nil {
		t.Fatalf("LoadSensorGeometry failed: %v", err)
	}
	if g.PaddedLineBytes != 7000 {
		t.Errorf("PaddedLineBytes = %d, want 7000", g.PaddedLineBytes)
	}
	if g.PixelsPerLine != DefaultSensorGeometry().PixelsPerLine {
		t.Errorf("unset fields should keep their defaults, got %d", g.PixelsPerLine)
	}
}

func TestLoadSensorGeometryRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	writeTestFile(t, path, "pixelsPerLine: 5\n")
	if _, err := LoadSensorGeometry(path); !errors.Is(err, ErrFormat) {
		t.Errorf("got %v, want ErrFormat", err)
	}
}
