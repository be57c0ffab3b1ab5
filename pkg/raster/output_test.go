package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/gardar/gtoverlay/pkg/overlay"
)

func TestPDFOutput(t *testing.T) {
	cfg := overlay.DefaultConfig()
	cfg.DPI = 144

	var buf bytes.Buffer
	out := NewPDFOutput(&buf, cfg, "sample")
	if err := out.AddPage(0, NewBlankCanvas(200, 100)); err != nil {
		t.Fatalf("AddPage 0 failed: %v", err)
	}
	if err := out.AddPage(1, NewBlankCanvas(144, 288)); err != nil {
		t.Fatalf("AddPage 1 failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Error("PDF written before Close")
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if out.PageCount() != 2 {
		t.Errorf("page count: got %d", out.PageCount())
	}

	info, err := ReadPDFInfo(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadPDFInfo failed: %v", err)
	}
	want := [][2]float64{{100, 50}, {72, 144}}
	for i, w := range want {
		b, ok := info.PageBox(i)
		if !ok || math.Abs(b.Width()-w[0]) > 0.01 || math.Abs(b.Height()-w[1]) > 0.01 {
			t.Errorf("page %d: got %+v, want %gx%g pt", i, b, w[0], w[1])
		}
	}
}

func TestPDFOutput_EmptyRaster(t *testing.T) {
	out := NewPDFOutput(&bytes.Buffer{}, overlay.DefaultConfig(), "")
	if err := out.AddPage(0, NewBlankCanvas(0, 0)); err == nil {
		t.Error("expected error for empty raster")
	}
}

func TestImageDirOutput(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"png", "png"},
		{"JPEG", "jpg"},
		{".jpg", "jpg"},
		{"webp", "webp"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "pages")
			out, err := NewImageDirOutput(dir, tt.format, 90)
			if err != nil {
				t.Fatalf("NewImageDirOutput failed: %v", err)
			}

			c := NewBlankCanvas(16, 8)
			c.Fill(overlay.Rect{Width: 8, Height: 8}, color.NRGBA{R: 255, A: 255})
			if err := out.AddPage(4, c); err != nil {
				t.Fatalf("AddPage failed: %v", err)
			}
			if err := out.Close(); err != nil {
				t.Fatal(err)
			}

			path := filepath.Join(dir, "page_005."+tt.ext)
			if out.PagePath(4) != path {
				t.Errorf("path: got %s, want %s", out.PagePath(4), path)
			}
			img, err := imaging.Open(path)
			if err != nil {
				t.Fatalf("failed to read back %s: %v", path, err)
			}
			if img.Bounds() != image.Rect(0, 0, 16, 8) {
				t.Errorf("bounds: got %v", img.Bounds())
			}
		})
	}
}

func TestImageDirOutput_UnsupportedFormat(t *testing.T) {
	if _, err := NewImageDirOutput(t.TempDir(), "gif", 90); err == nil {
		t.Error("expected error for gif")
	}
}

type countingOutput struct {
	pages  int
	closed bool
	err    error
}

func (o *countingOutput) AddPage(int, overlay.Surface) error {
	o.pages++
	return o.err
}

func (o *countingOutput) Close() error {
	o.closed = true
	return o.err
}

func TestMultiOutput(t *testing.T) {
	a, b := &countingOutput{}, &countingOutput{}
	m := MultiOutput{a, b}

	for i := 0; i < 3; i++ {
		if err := m.AddPage(i, NewBlankCanvas(1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if a.pages != 3 || b.pages != 3 || !a.closed || !b.closed {
		t.Errorf("got %+v %+v", a, b)
	}

	failing := &countingOutput{err: errors.New("full")}
	last := &countingOutput{}
	m = MultiOutput{failing, last}
	if err := m.AddPage(0, NewBlankCanvas(1, 1)); err == nil {
		t.Error("expected error")
	}
	if last.pages != 0 {
		t.Error("outputs after a failure should not receive the page")
	}
	if err := m.Close(); err == nil || !last.closed {
		t.Errorf("Close should close every output and report the failure, got %v", err)
	}
}

func TestPDFOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	out := NewPDFOutput(f, overlay.DefaultConfig(), "")
	if err := out.AddPage(0, NewBlankCanvas(10, 10)); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenPDFInfo(path); err != nil {
		t.Errorf("written file unreadable: %v", err)
	}
}
