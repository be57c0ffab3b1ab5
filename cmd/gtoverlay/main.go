// gtoverlay is a command-line tool for drawing ground truth annotations onto
// rendered page images and writing their coordinates in raster pixels.
//
// Every text region, math region, line, character and image of the ground
// truth is drawn as a colored box on its page. Math regions and characters
// are also written as flat records, one per line, to two record files.
// Pages listed in the calibration file are mapped with the affine transform
// given by their calibration diagonal; all other pages use the identity.
//
// Usage:
//
//	gtoverlay -gt document.hocr -images ./pages -output document_annotated.pdf [options]
//
// Required flags:
//
//	-gt string          Path to the ground truth file
//	-images string      Directory containing the rendered page images
//	-output string      Output PDF path (or -png-dir)
//
// Input options:
//
//	-pdf string          Source PDF, used for page boxes when the ground truth has none
//	-calibration string  Calibration file, one "x1,y1,x2,y2" line per page (default <gt>.md)
//	-config string       YAML file overriding palette, stroke width, DPI and origin
//
// Output options:
//
//	-math string        Math region records (default <gt>.math)
//	-char string        Character records (default <gt>.char)
//	-png-dir string     Directory to also write every annotated page as an image
//	-png-format string  Image format for -png-dir: png, jpg or webp (default png)
//	-overwrite          Overwrite the output PDF if it already exists
//	-verify             Read the record files back and report their contents
//	-debug              Enable debug logging
//
// Every flag can also be set with a GTOVERLAY_<NAME> environment variable
// (for example GTOVERLAY_CONFIG), read from the environment or from a .env
// file in the working directory.
//
// Examples:
//
//	gtoverlay -gt paper.hocr -images ./paper_pages -output paper_gt.pdf
//	gtoverlay -gt paper.hocr -images ./paper_pages -pdf paper.pdf -calibration paper.md -output paper_gt.pdf -png-dir ./annotated
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gardar/gtoverlay/internal/logging"
	"github.com/gardar/gtoverlay/pkg/overlay"
)

// envOr returns the GTOVERLAY_ environment value for a flag, or def.
func envOr(name, def string) string {
	key := "GTOVERLAY_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(envOr(name, "false"))
	return err == nil && v
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	gtPath := flag.String("gt", envOr("gt", ""), "Path to the ground truth file (required)")
	imageDirPath := flag.String("images", envOr("images", ""), "Directory containing the rendered page images (required)")
	pdfPath := flag.String("pdf", envOr("pdf", ""), "Source PDF, used for page boxes when the ground truth has none")
	calibrationPath := flag.String("calibration", envOr("calibration", ""), "Calibration file (default <gt>.md)")
	configPath := flag.String("config", envOr("config", ""), "YAML file overriding palette, stroke width, DPI and origin")
	outputPath := flag.String("output", envOr("output", ""), "Output PDF path")
	mathPath := flag.String("math", envOr("math", ""), "Math region records (default <gt>.math)")
	charPath := flag.String("char", envOr("char", ""), "Character records (default <gt>.char)")
	pngDir := flag.String("png-dir", envOr("png-dir", ""), "Directory to also write every annotated page as an image")
	pngFormat := flag.String("png-format", envOr("png-format", "png"), "Image format for -png-dir: png, jpg or webp")
	overwriteOutput := flag.Bool("overwrite", envBool("overwrite"), "Overwrite the output PDF if it already exists")
	verify := flag.Bool("verify", envBool("verify"), "Read the record files back and report their contents")
	debug := flag.Bool("debug", envBool("debug"), "Enable debug logging")
	flag.Parse()

	if *gtPath == "" || *imageDirPath == "" {
		fmt.Fprintln(os.Stderr, "Error: Must provide -gt and -images")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *outputPath == "" && *pngDir == "" {
		fmt.Fprintln(os.Stderr, "Error: Must provide -output or -png-dir")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *outputPath != "" {
		if _, err := os.Stat(*outputPath); err == nil && !*overwriteOutput {
			fmt.Fprintf(os.Stderr, "Output file %s already exists. Use -overwrite to overwrite.\n", *outputPath)
			os.Exit(1)
		}
	}

	// Defaults next to the ground truth file
	base := strings.TrimSuffix(*gtPath, filepath.Ext(*gtPath))
	if *calibrationPath == "" {
		*calibrationPath = base + ".md"
	}
	if *mathPath == "" {
		*mathPath = base + ".math"
	}
	if *charPath == "" {
		*charPath = base + ".char"
	}

	log := logging.New(os.Stderr, "gtoverlay", *debug)

	cfg := overlay.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = overlay.LoadConfig(*configPath)
		if err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	cfg.Logger = log

	opts := runOptions{
		gtPath:          *gtPath,
		imageDir:        *imageDirPath,
		pdfPath:         *pdfPath,
		calibrationPath: *calibrationPath,
		outputPath:      *outputPath,
		mathPath:        *mathPath,
		charPath:        *charPath,
		pngDir:          *pngDir,
		pngFormat:       *pngFormat,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, err := run(ctx, cfg, opts)
	if err != nil {
		log.Error("annotation failed", "error", err)
		stop()
		os.Exit(1)
	}

	fmt.Printf("Annotated %d pages (%d with ground truth, %d calibrated): %d math regions, %d characters\n",
		summary.Pages, summary.Annotated, summary.Calibrated, summary.Stats.MathRecords, summary.Stats.CharRecords)
	if *outputPath != "" {
		fmt.Println("Annotated PDF saved to:", *outputPath)
	}
	if *pngDir != "" {
		fmt.Println("Annotated page images saved to:", *pngDir)
	}
	fmt.Println("Math records saved to:", *mathPath)
	fmt.Println("Character records saved to:", *charPath)

	if *verify {
		if err := verifyRecords(os.Stdout, *mathPath, *charPath); err != nil {
			log.Error("record verification failed", "error", err)
			stop()
			os.Exit(1)
		}
	}
}
