package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/gardar/gtoverlay/pkg/overlay"
)

const runGroundTruth = `<html><head><title>sample</title></head><body>
<div class="ocr_page" id="page_1" title="bbox 0 0 100 100; ppageno 1">
  <div class="ocr_carea" id="t1" title="bbox 5 5 95 40">
    <span class="ocr_line" id="l1" title="bbox 5 15 95 35">
      <span class="ocrx_cinfo" id="c1" title="bbox 10.7 20.2 18.9 30.9; x_mode MATH_SYMBOL; x_link 0; x_parent t1; x_code 0x3b1">&#945;</span>
    </span>
  </div>
</div>
<div class="ocr_page" id="page_2" title="bbox 0 0 100 100; ppageno 2">
  <div class="ocr_math" id="m1" title="bbox 10 20 40 30"></div>
</div>
</body></html>`

// writeFixture lays out a ground truth file, a calibration file and one
// page image per size in dir.
func writeFixture(t *testing.T, dir, gt, calibration string, sizes ...int) runOptions {
	t.Helper()

	gtPath := filepath.Join(dir, "sample.hocr")
	if err := os.WriteFile(gtPath, []byte(gt), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sample.md"), []byte(calibration), 0644); err != nil {
		t.Fatal(err)
	}

	imageDir := filepath.Join(dir, "pages")
	if err := os.MkdirAll(imageDir, 0755); err != nil {
		t.Fatal(err)
	}
	for i, size := range sizes {
		img := imaging.New(size, size, color.White)
		path := filepath.Join(imageDir, "page_"+string(rune('a'+i))+".png")
		if err := imaging.Save(img, path); err != nil {
			t.Fatal(err)
		}
	}

	return runOptions{
		gtPath:          gtPath,
		imageDir:        imageDir,
		calibrationPath: filepath.Join(dir, "sample.md"),
		outputPath:      filepath.Join(dir, "out.pdf"),
		mathPath:        filepath.Join(dir, "sample.math"),
		charPath:        filepath.Join(dir, "sample.char"),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRun_WritesOutputsAndRecords(t *testing.T) {
	dir := t.TempDir()
	opts := writeFixture(t, dir, runGroundTruth, "-\n10,10,210,210\n", 100, 220)
	opts.pngDir = filepath.Join(dir, "annotated")
	opts.pngFormat = "png"

	summary, err := run(t.Context(), overlay.DefaultConfig(), opts)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Pages != 2 || summary.Annotated != 2 || summary.Calibrated != 1 {
		t.Errorf("summary: got %+v", summary)
	}

	if got, want := readFile(t, opts.mathPath), "1,30,50,90,70\n"; got != want {
		t.Errorf("math records: got %q, want %q", got, want)
	}
	if got, want := readFile(t, opts.charPath), "0,c1,10,20,18,30,MATH_SYMBOL,0,t1,0x3b1\n"; got != want {
		t.Errorf("char records: got %q, want %q", got, want)
	}

	pdf := readFile(t, opts.outputPath)
	if !strings.HasPrefix(pdf, "%PDF") {
		t.Error("output is not a PDF")
	}

	for _, name := range []string{"page_001.png", "page_002.png"} {
		img, err := imaging.Open(filepath.Join(opts.pngDir, name))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if name == "page_002.png" && img.Bounds() != image.Rect(0, 0, 220, 220) {
			t.Errorf("%s bounds: got %v", name, img.Bounds())
		}
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, ".gtoverlay-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestRun_SharedRecordFile(t *testing.T) {
	dir := t.TempDir()
	opts := writeFixture(t, dir, runGroundTruth, "", 100, 100)
	opts.charPath = opts.mathPath

	if _, err := run(t.Context(), overlay.DefaultConfig(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := readFile(t, opts.mathPath)
	for _, want := range []string{"0,c1,10,20,18,30,MATH_SYMBOL,0,t1,0x3b1\n", "1,10,20,40,30\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("shared records missing %q, got %q", want, got)
		}
	}
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name        string
		calibration string
		pages       []int
		wantCode    overlay.ErrorCode
	}{
		{name: "more sheets than pages", calibration: "", pages: []int{100}, wantCode: overlay.CodePageCountMismatch},
		{name: "malformed calibration", calibration: "1,2,3\n", pages: []int{100, 100}, wantCode: overlay.CodeMalformedCalibration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := writeFixture(t, dir, runGroundTruth, tt.calibration, tt.pages...)

			_, err := run(t.Context(), overlay.DefaultConfig(), opts)
			var oerr *overlay.Error
			if !errors.As(err, &oerr) || oerr.Code != tt.wantCode {
				t.Fatalf("error: got %v, want code %s", err, tt.wantCode)
			}
			if _, err := os.Stat(opts.outputPath); !os.IsNotExist(err) {
				t.Errorf("output should not exist after a failed run: %v", err)
			}
			leftovers, _ := filepath.Glob(filepath.Join(dir, ".gtoverlay-*"))
			if len(leftovers) != 0 {
				t.Errorf("temporary files left behind: %v", leftovers)
			}
		})
	}
}

func TestVerifyRecords(t *testing.T) {
	dir := t.TempDir()
	mathPath := filepath.Join(dir, "doc.math")
	charPath := filepath.Join(dir, "doc.char")
	os.WriteFile(mathPath, []byte("2,1,1,5,5\n"), 0644)
	os.WriteFile(charPath, []byte("0,c1,1,1,2,2,MATH_SYMBOL,0,l1,x03B1\n0,c2,3,1,4,2,ORDINARY_TEXT,0,l1,x0061\n"), 0644)

	var buf bytes.Buffer
	if err := verifyRecords(&buf, mathPath, charPath); err != nil {
		t.Fatalf("verifyRecords failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1 math records and 2 character records (1 math symbols)") {
		t.Errorf("report: got %q", out)
	}
	if !strings.Contains(out, "[0 2]") {
		t.Errorf("pages: got %q", out)
	}

	if err := verifyRecords(&buf, mathPath, mathPath); err == nil {
		t.Error("expected an error for a shared record file")
	}

	os.WriteFile(charPath, []byte("garbage\n"), 0644)
	if err := verifyRecords(&buf, mathPath, charPath); err == nil {
		t.Error("expected an error for a malformed record")
	}
}
