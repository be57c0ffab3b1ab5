package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/gardar/gtoverlay/internal/logging"
	"github.com/gardar/gtoverlay/pkg/groundtruth"
	"github.com/gardar/gtoverlay/pkg/overlay"
	"github.com/gardar/gtoverlay/pkg/raster"
)

type runOptions struct {
	gtPath          string
	imageDir        string
	pdfPath         string
	calibrationPath string
	outputPath      string
	mathPath        string
	charPath        string
	pngDir          string
	pngFormat       string
}

// run annotates every page of the image directory and writes the outputs and
// record files. The output PDF is written to a temporary file next to the
// final path and only renamed into place once the run succeeded.
func run(ctx context.Context, cfg overlay.Config, opts runOptions) (overlay.Summary, error) {
	var summary overlay.Summary
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
		cfg.Logger = log
	}

	gtData, err := os.ReadFile(opts.gtPath)
	if err != nil {
		return summary, fmt.Errorf("failed to read ground truth: %w", err)
	}
	ann, err := groundtruth.Parse(gtData)
	if err != nil {
		return summary, fmt.Errorf("failed to parse ground truth: %w", err)
	}
	counts := groundtruth.Count(&ann)
	log.Info("loaded ground truth", "path", opts.gtPath, "sheets", counts.Sheets, "chars", counts.Chars)

	cal, err := overlay.OpenCalibration(opts.calibrationPath, log)
	if err != nil {
		return summary, err
	}

	images, err := raster.OpenImageDir(opts.imageDir)
	if err != nil {
		return summary, err
	}
	var doc overlay.Document = images

	if opts.pdfPath != "" {
		info, err := raster.OpenPDFInfo(opts.pdfPath)
		if err != nil {
			return summary, err
		}
		if info.PageCount() != images.PageCount() {
			log.Warn("source PDF and image directory differ in page count",
				"pdf_pages", info.PageCount(), "images", images.PageCount())
		}
		doc = raster.WithPageBoxes(images, info.Boxes)
	}

	var outputs raster.MultiOutput
	var tmp *os.File
	if opts.outputPath != "" {
		tmp, err = os.CreateTemp(filepath.Dir(opts.outputPath), ".gtoverlay-*.pdf")
		if err != nil {
			return summary, fmt.Errorf("failed to create temporary output: %w", err)
		}
		defer func() {
			// No-op after a successful rename
			tmp.Close()
			os.Remove(tmp.Name())
		}()
		title := ann.Title
		if title == "" {
			title = filepath.Base(opts.gtPath)
		}
		outputs = append(outputs, raster.NewPDFOutput(tmp, cfg, title))
	}
	if opts.pngDir != "" {
		imgOut, err := raster.NewImageDirOutput(opts.pngDir, opts.pngFormat, cfg.JPEGQuality)
		if err != nil {
			return summary, err
		}
		outputs = append(outputs, imgOut)
	}

	mathFile, charFile, err := createRecordFiles(opts.mathPath, opts.charPath)
	if err != nil {
		return summary, err
	}
	defer mathFile.Close()
	if charFile != mathFile {
		defer charFile.Close()
	}

	records := overlay.NewRecordEmitter(mathFile, charFile)
	summary, err = overlay.NewAssembler(cfg, doc, outputs, records).Run(ctx, &ann, cal)
	if err != nil {
		return summary, err
	}

	if err := outputs.Close(); err != nil {
		return summary, err
	}
	if tmp != nil {
		if err := tmp.Close(); err != nil {
			return summary, fmt.Errorf("failed to write output: %w", err)
		}
		if err := os.Rename(tmp.Name(), opts.outputPath); err != nil {
			return summary, fmt.Errorf("failed to move output into place: %w", err)
		}
	}

	return summary, nil
}

// createRecordFiles truncates both record files. When both paths name the
// same file it is opened once and shared.
func createRecordFiles(mathPath, charPath string) (mathFile, charFile *os.File, err error) {
	mathFile, err = os.Create(mathPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create math records: %w", err)
	}
	if filepath.Clean(charPath) == filepath.Clean(mathPath) {
		return mathFile, mathFile, nil
	}
	charFile, err = os.Create(charPath)
	if err != nil {
		mathFile.Close()
		return nil, nil, fmt.Errorf("failed to create character records: %w", err)
	}
	return mathFile, charFile, nil
}

// verifyRecords reads both record files back and prints a short report.
func verifyRecords(w io.Writer, mathPath, charPath string) error {
	if filepath.Clean(charPath) == filepath.Clean(mathPath) {
		return errors.New("math and character records share one file and cannot be verified separately")
	}

	mathFile, err := os.Open(mathPath)
	if err != nil {
		return err
	}
	defer mathFile.Close()
	mathRecords, err := overlay.ReadMathRecords(mathFile)
	if err != nil {
		return fmt.Errorf("%s: %w", mathPath, err)
	}

	charFile, err := os.Open(charPath)
	if err != nil {
		return err
	}
	defer charFile.Close()
	charRecords, err := overlay.ReadCharRecords(charFile)
	if err != nil {
		return fmt.Errorf("%s: %w", charPath, err)
	}

	pages := make(map[int]bool)
	for _, r := range mathRecords {
		pages[r.Page] = true
	}
	mathChars := 0
	for _, r := range charRecords {
		pages[r.Page] = true
		if r.Mode.IsMath() {
			mathChars++
		}
	}
	pageList := make([]int, 0, len(pages))
	for p := range pages {
		pageList = append(pageList, p)
	}
	sort.Ints(pageList)

	fmt.Fprintf(w, "Verified %d math records and %d character records (%d math symbols)\n",
		len(mathRecords), len(charRecords), mathChars)
	fmt.Fprintf(w, "Pages with records: %v\n", pageList)
	return nil
}
