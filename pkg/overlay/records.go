package overlay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

// MathRecord is one line of the math record stream:
// page,left,top,right,bottom
type MathRecord struct {
	Page int
	Rect Rect
}

// CharRecord is one line of the character record stream:
// page,charId,left,top,right,bottom,mode,linkLabel,parentId,code
type CharRecord struct {
	Page      int
	CharID    string
	Rect      Rect
	Mode      groundtruth.TextMode
	LinkLabel string
	ParentID  string
	Code      string
}

// FormatMathRecord renders a math record without the trailing newline.
func FormatMathRecord(page int, r Rect) string {
	return fmt.Sprintf("%d,%d,%d,%d,%d", page, r.Left, r.Top, r.Right(), r.Bottom())
}

// FormatCharRecord renders a character record without the trailing newline.
// Field values are written as-is; they must not contain commas.
func FormatCharRecord(page int, c groundtruth.Char, r Rect) string {
	return fmt.Sprintf("%d,%s,%d,%d,%d,%d,%s,%s,%s,%s",
		page, c.ID, r.Left, r.Top, r.Right(), r.Bottom(),
		c.Mode, c.LinkLabel, c.ParentID, c.Code)
}

// ParseMathRecord parses one math record line.
func ParseMathRecord(line string) (MathRecord, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 5 {
		return MathRecord{}, fmt.Errorf("math record: expected 5 fields, got %d", len(fields))
	}
	v, err := atoiAll(fields)
	if err != nil {
		return MathRecord{}, fmt.Errorf("math record: %w", err)
	}
	return MathRecord{
		Page: v[0],
		Rect: Rect{Left: v[1], Top: v[2], Width: v[3] - v[1], Height: v[4] - v[2]},
	}, nil
}

// ParseCharRecord parses one character record line.
func ParseCharRecord(line string) (CharRecord, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 10 {
		return CharRecord{}, fmt.Errorf("char record: expected 10 fields, got %d", len(fields))
	}
	v, err := atoiAll([]string{fields[0], fields[2], fields[3], fields[4], fields[5]})
	if err != nil {
		return CharRecord{}, fmt.Errorf("char record: %w", err)
	}
	return CharRecord{
		Page:      v[0],
		CharID:    fields[1],
		Rect:      Rect{Left: v[1], Top: v[2], Width: v[3] - v[1], Height: v[4] - v[2]},
		Mode:      groundtruth.TextMode(fields[6]),
		LinkLabel: fields[7],
		ParentID:  fields[8],
		Code:      fields[9],
	}, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %q is not an integer", f)
		}
		out[i] = n
	}
	return out, nil
}

// RecordEmitter appends records to the math and character streams in the
// order they are emitted. Streams are buffered; call Flush after each page.
// A nil stream discards its records.
type RecordEmitter struct {
	math *bufio.Writer
	char *bufio.Writer
}

// NewRecordEmitter wraps the two record streams.
func NewRecordEmitter(math, char io.Writer) *RecordEmitter {
	if math == nil {
		math = io.Discard
	}
	if char == nil {
		char = io.Discard
	}
	return &RecordEmitter{
		math: bufio.NewWriter(math),
		char: bufio.NewWriter(char),
	}
}

// EmitMath appends one math record.
func (e *RecordEmitter) EmitMath(page int, r Rect) error {
	_, err := e.math.WriteString(FormatMathRecord(page, r) + "\n")
	return err
}

// EmitChar appends one character record.
func (e *RecordEmitter) EmitChar(page int, c groundtruth.Char, r Rect) error {
	_, err := e.char.WriteString(FormatCharRecord(page, c, r) + "\n")
	return err
}

// Flush writes buffered records of both streams.
func (e *RecordEmitter) Flush() error {
	if err := e.math.Flush(); err != nil {
		return err
	}
	return e.char.Flush()
}

// ReadMathRecords parses a whole math record stream. Blank lines are
// skipped; the first invalid line fails with its line number.
func ReadMathRecords(r io.Reader) ([]MathRecord, error) {
	var out []MathRecord
	err := scanRecords(r, func(line string) error {
		rec, err := ParseMathRecord(line)
		if err == nil {
			out = append(out, rec)
		}
		return err
	})
	return out, err
}

// ReadCharRecords parses a whole character record stream.
func ReadCharRecords(r io.Reader) ([]CharRecord, error) {
	var out []CharRecord
	err := scanRecords(r, func(line string) error {
		rec, err := ParseCharRecord(line)
		if err == nil {
			out = append(out, rec)
		}
		return err
	})
	return out, err
}

func scanRecords(r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return scanner.Err()
}
