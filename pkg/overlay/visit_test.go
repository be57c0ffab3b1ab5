package overlay

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

func sampleSheet() groundtruth.Sheet {
	return groundtruth.Sheet{
		ID:     "page_1",
		Number: 1,
		BBox:   box(0, 0, 100, 100),
		Regions: []groundtruth.Region{
			{
				ID:   "block_1",
				Kind: groundtruth.KindText,
				BBox: box(10, 10, 90, 30),
				Lines: []groundtruth.Line{
					{
						ID:   "line_1",
						BBox: box(10, 10, 90, 20),
						Chars: []groundtruth.Char{
							{ID: "c1", BBox: box(10, 10, 15, 20), Mode: groundtruth.ModeOrdinary, ParentID: "line_1", Code: "x0041"},
							{ID: "c2", BBox: box(15, 10, 20, 20), Mode: groundtruth.ModeMathSymbol, LinkLabel: "L1", ParentID: "line_1", Code: "x03B1"},
						},
					},
				},
			},
			{ID: "math_1", Kind: groundtruth.KindMath, BBox: box(10, 40, 90, 60)},
		},
		Images: []groundtruth.Image{
			{ID: "img_1", BBox: box(10, 70, 90, 95)},
		},
	}
}

func TestVisitSheet_Order(t *testing.T) {
	var math, chars bytes.Buffer
	v := NewVisitor(DefaultConfig(), NewRecordEmitter(&math, &chars))
	s := newRecordingSurface(100, 100)

	stats, err := v.VisitSheet(0, sampleSheet(), Identity(), s)
	if err != nil {
		t.Fatalf("VisitSheet failed: %v", err)
	}

	p := DefaultPalette
	want := []drawCall{
		{op: "outline", rect: Rect{10, 10, 80, 20}, color: p.Text, width: 2},
		{op: "outline", rect: Rect{10, 10, 80, 10}, color: p.Line, width: 2},
		{op: "fill", rect: Rect{10, 10, 5, 10}, color: p.CharText},
		{op: "outline", rect: Rect{10, 10, 5, 10}, color: p.CharText, width: 2},
		{op: "fill", rect: Rect{15, 10, 5, 10}, color: p.CharMath},
		{op: "outline", rect: Rect{15, 10, 5, 10}, color: p.CharMath, width: 2},
		{op: "fill", rect: Rect{10, 40, 80, 20}, color: p.Math},
		{op: "outline", rect: Rect{10, 40, 80, 20}, color: p.Math, width: 2},
		{op: "outline", rect: Rect{10, 70, 80, 25}, color: p.Image, width: 2},
	}
	if len(s.calls) != len(want) {
		t.Fatalf("expected %d draw calls, got %d: %+v", len(want), len(s.calls), s.calls)
	}
	for i, w := range want {
		if s.calls[i] != w {
			t.Errorf("call %d: got %+v, want %+v", i, s.calls[i], w)
		}
	}

	wantStats := Stats{
		TextRegions: 1, MathRegions: 1, Lines: 1, Chars: 2, Images: 1,
		Fills: 3, Outlines: 6, MathRecords: 1, CharRecords: 2,
	}
	if stats != wantStats {
		t.Errorf("stats: got %+v, want %+v", stats, wantStats)
	}

	if err := v.records.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := math.String(), "0,10,40,90,60\n"; got != want {
		t.Errorf("math records: got %q, want %q", got, want)
	}
	wantChars := "0,c1,10,10,15,20,ORDINARY_TEXT,,line_1,x0041\n" +
		"0,c2,15,10,20,20,MATH_SYMBOL,L1,line_1,x03B1\n"
	if got := chars.String(); got != wantChars {
		t.Errorf("char records: got %q, want %q", got, wantChars)
	}
}

func TestVisitSheet_AbsentChildren(t *testing.T) {
	tests := []struct {
		name  string
		sheet groundtruth.Sheet
		calls int
		stats Stats
	}{
		{
			name:  "empty sheet",
			sheet: groundtruth.Sheet{},
			calls: 0,
			stats: Stats{},
		},
		{
			name: "region without lines",
			sheet: groundtruth.Sheet{Regions: []groundtruth.Region{
				{Kind: groundtruth.KindText, BBox: box(0, 0, 10, 10)},
			}},
			calls: 1,
			stats: Stats{TextRegions: 1, Outlines: 1},
		},
		{
			name: "line without chars",
			sheet: groundtruth.Sheet{Regions: []groundtruth.Region{
				{Kind: groundtruth.KindText, BBox: box(0, 0, 10, 10), Lines: []groundtruth.Line{{BBox: box(0, 0, 10, 5)}}},
			}},
			calls: 2,
			stats: Stats{TextRegions: 1, Lines: 1, Outlines: 2},
		},
		{
			name: "math region lines are not visited",
			sheet: groundtruth.Sheet{Regions: []groundtruth.Region{
				{Kind: groundtruth.KindMath, BBox: box(0, 0, 10, 10), Lines: []groundtruth.Line{{BBox: box(0, 0, 10, 5)}}},
			}},
			calls: 2,
			stats: Stats{MathRegions: 1, Fills: 1, Outlines: 1, MathRecords: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRecordingSurface(10, 10)
			stats, err := NewVisitor(DefaultConfig(), nil).VisitSheet(0, tt.sheet, Identity(), s)
			if err != nil {
				t.Fatalf("VisitSheet failed: %v", err)
			}
			if len(s.calls) != tt.calls {
				t.Errorf("calls: got %d, want %d", len(s.calls), tt.calls)
			}
			if stats != tt.stats {
				t.Errorf("stats: got %+v, want %+v", stats, tt.stats)
			}
		})
	}
}

func TestVisitSheet_CalibratedRecords(t *testing.T) {
	tr, err := Calibrate(box(0, 0, 150, 75), Diagonal{X1: 0, Y1: 0, X2: 300, Y2: 150})
	if err != nil {
		t.Fatal(err)
	}
	var math bytes.Buffer
	v := NewVisitor(DefaultConfig(), NewRecordEmitter(&math, nil))
	sheet := groundtruth.Sheet{Regions: []groundtruth.Region{
		{Kind: groundtruth.KindMath, BBox: box(10, 10, 20, 20)},
	}}

	if _, err := v.VisitSheet(1, sheet, tr, newRecordingSurface(300, 150)); err != nil {
		t.Fatal(err)
	}
	if err := v.records.Flush(); err != nil {
		t.Fatal(err)
	}
	if got, want := math.String(), "1,20,20,40,40\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestVisitSheet_CustomPalette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette.Image = color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	cfg.StrokeWidth = 5

	s := newRecordingSurface(10, 10)
	sheet := groundtruth.Sheet{Images: []groundtruth.Image{{BBox: box(1, 1, 2, 2)}}}
	if _, err := NewVisitor(cfg, nil).VisitSheet(0, sheet, Identity(), s); err != nil {
		t.Fatal(err)
	}
	if len(s.calls) != 1 || s.calls[0].color != cfg.Palette.Image || s.calls[0].width != 5 {
		t.Errorf("got %+v", s.calls)
	}
}

func TestVisitSheet_RecordWriteFailure(t *testing.T) {
	// a record larger than the buffer reaches the writer at emission time
	v := NewVisitor(DefaultConfig(), NewRecordEmitter(nil, failingWriter{}))
	code := string(bytes.Repeat([]byte("x"), 8192))
	sheet := groundtruth.Sheet{Regions: []groundtruth.Region{{
		Kind: groundtruth.KindText,
		Lines: []groundtruth.Line{{Chars: []groundtruth.Char{
			{ID: "c1", Code: code},
		}}},
	}}}

	_, err := v.VisitSheet(4, sheet, Identity(), newRecordingSurface(10, 10))
	if !errors.Is(err, ErrRecordWriteFailed) {
		t.Fatalf("got %v, want record write failure", err)
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Page != 4 {
		t.Errorf("page: got %d, want 4", coded.Page)
	}
}
