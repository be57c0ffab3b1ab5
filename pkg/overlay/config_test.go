package overlay

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Palette.Image.A != 255 {
		t.Errorf("image outlines should be opaque, alpha %d", cfg.Palette.Image.A)
	}
	for name, c := range map[string]color.NRGBA{
		"math": cfg.Palette.Math, "char_text": cfg.Palette.CharText,
		"line": cfg.Palette.Line, "text": cfg.Palette.Text,
	} {
		if c.A == 0 || c.A == 255 {
			t.Errorf("%s should be translucent, alpha %d", name, c.A)
		}
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
stroke_width: 3
dpi: 300
origin_x: 12.5
jpeg_quality: 75
palette:
  math: {color: "#ffcc00", alpha: 0.5}
  image: {color: "00ff00"}
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if cfg.StrokeWidth != 3 || cfg.DPI != 300 || cfg.OriginX != 12.5 || cfg.OriginY != 0 || cfg.JPEGQuality != 75 {
		t.Errorf("numeric options: got %+v", cfg)
	}
	if want := (color.NRGBA{R: 255, G: 204, B: 0, A: 128}); cfg.Palette.Math != want {
		t.Errorf("math: got %v, want %v", cfg.Palette.Math, want)
	}
	if want := (color.NRGBA{R: 0, G: 255, B: 0, A: 255}); cfg.Palette.Image != want {
		t.Errorf("image keeps default alpha: got %v, want %v", cfg.Palette.Image, want)
	}
	if cfg.Palette.Line != DefaultPalette.Line {
		t.Errorf("line changed: got %v", cfg.Palette.Line)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "stroke_width: [1"},
		{"zero stroke", "stroke_width: 0"},
		{"negative dpi", "dpi: -72"},
		{"quality range", "jpeg_quality: 101"},
		{"unknown palette entry", "palette:\n  border: {color: \"#000000\"}"},
		{"bad color", "palette:\n  math: {color: \"#zzzzzz\"}"},
		{"alpha range", "palette:\n  math: {color: \"#000000\", alpha: 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tt.data)); err == nil {
				t.Errorf("expected error for %q", tt.data)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	if err := os.WriteFile(path, []byte("stroke_width: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.StrokeWidth != 4 || cfg.DPI != 72 {
		t.Errorf("got %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
