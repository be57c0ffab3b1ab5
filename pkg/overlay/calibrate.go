package overlay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gardar/gtoverlay/internal/logging"
	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// Diagonal holds two raster points matching the top-left and bottom-right
// corners of a page's declared box.
type Diagonal struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Calibrate derives the page transform from the page box and a diagonal:
//
//	sx = (x2 - x1) / (right - left)    offsetX = x1 - left
//	sy = (y2 - y1) / (bottom - top)    offsetY = y1 - top
func Calibrate(pageBox groundtruth.BoundingBox, d Diagonal) (Transform, error) {
	return calibratePage(-1, pageBox, d)
}

func calibratePage(page int, pageBox groundtruth.BoundingBox, d Diagonal) (Transform, error) {
	if pageBox.IsDegenerate() {
		return Transform{}, newDegeneratePageBoxError(page, pageBox.Left, pageBox.Top, pageBox.Right, pageBox.Bottom)
	}

	sx := (d.X2 - d.X1) / pageBox.Width()
	sy := (d.Y2 - d.Y1) / pageBox.Height()
	if !validScale(sx) || !validScale(sy) {
		return Transform{}, newInvalidCalibrationError(page, sx, sy)
	}

	return Transform{
		SX:         sx,
		SY:         sy,
		OffsetX:    d.X1 - pageBox.Left,
		OffsetY:    d.Y1 - pageBox.Top,
		OriginX:    pageBox.Left,
		OriginY:    pageBox.Top,
		Calibrated: true,
	}, nil
}

func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0)
}

// Calibration holds the per-page diagonals of one run. Pages without an
// entry map with Identity; the zero value has no entries at all.
type Calibration struct {
	diagonals map[int]Diagonal
}

// NewCalibration builds a calibration from diagonals for pages 0, 1, 2...
func NewCalibration(diagonals ...Diagonal) Calibration {
	c := Calibration{diagonals: make(map[int]Diagonal, len(diagonals))}
	for i, d := range diagonals {
		c.diagonals[i] = d
	}
	return c
}

// With returns a copy of c with the diagonal of page set.
func (c Calibration) With(page int, d Diagonal) Calibration {
	out := Calibration{diagonals: make(map[int]Diagonal, len(c.diagonals)+1)}
	for k, v := range c.diagonals {
		out.diagonals[k] = v
	}
	out.diagonals[page] = d
	return out
}

// Len returns the number of pages that carry a diagonal.
func (c Calibration) Len() int { return len(c.diagonals) }

// Diagonal returns the diagonal of a 0-based page index.
func (c Calibration) Diagonal(page int) (Diagonal, bool) {
	d, ok := c.diagonals[page]
	return d, ok
}

// TransformFor returns the transform of a page: Identity when no diagonal
// exists for it, the calibrated transform otherwise.
func (c Calibration) TransformFor(page int, pageBox groundtruth.BoundingBox) (Transform, error) {
	d, ok := c.Diagonal(page)
	if !ok {
		return Identity(), nil
	}
	return calibratePage(page, pageBox, d)
}

// LoadCalibration reads one line per page, in page order. A line holds
// "x1,y1,x2,y2"; an empty line or a single "-" leaves that page without
// calibration. Any malformed line fails the whole calibration.
func LoadCalibration(r io.Reader) (Calibration, error) {
	cal := Calibration{diagonals: make(map[int]Diagonal)}

	scanner := bufio.NewScanner(r)
	page := -1
	for scanner.Scan() {
		page++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "-" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			return Calibration{}, newMalformedCalibrationError(page+1,
				fmt.Sprintf("expected 4 comma separated values, got %d", len(fields)), nil)
		}

		var v [4]float64
		for i, field := range fields {
			f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Calibration{}, newMalformedCalibrationError(page+1,
					fmt.Sprintf("field %d is not a number", i+1), err)
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return Calibration{}, newMalformedCalibrationError(page+1,
					fmt.Sprintf("field %d is not finite", i+1), nil)
			}
			v[i] = f
		}
		cal.diagonals[page] = Diagonal{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}
	}
	if err := scanner.Err(); err != nil {
		return Calibration{}, err
	}

	return cal, nil
}

// OpenCalibration loads calibration from a file. A missing or unreadable file
// is not fatal: it is logged and every page falls back to Identity. A
// malformed file is fatal.
func OpenCalibration(path string, log *logging.Logger) (Calibration, error) {
	if log == nil {
		log = logging.Discard()
	}
	if path == "" {
		log.Warn("no calibration file given, using identity transform for every page")
		return Calibration{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		log.Warn("calibration unavailable, using identity transform for every page", "path", path, "error", err)
		return Calibration{}, nil
	}
	defer f.Close()

	cal, err := LoadCalibration(f)
	if err != nil {
		if errors.Is(err, ErrMalformedCalibration) {
			return Calibration{}, err
		}
		log.Warn("calibration unreadable, using identity transform for every page", "path", path, "error", err)
		return Calibration{}, nil
	}

	log.Info("loaded calibration", "path", path, "pages", cal.Len())
	return cal, nil
}
