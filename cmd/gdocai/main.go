// gdocai is a command-line tool for bootstrapping overlay ground truth with Google Document AI.
//
// This tool sends PDFs to a Document AI OCR processor, or reads a saved Document AI JSON response,
// and converts the layout into a ground truth file that gtoverlay can draw: blocks become text regions,
// symbols become characters, and formula and picture visual elements become math and image regions.
// The page images returned by Document AI can be saved and used directly as the rasters of an overlay run.
//
// Configuration:
//
// The tool requires a YAML configuration file with Google Document AI settings when processing PDFs:
//
//	project_id: "your-gcp-project-id"
//	location: "us"
//	processor_id: "your-processor-id"
//
// Usage:
//
//	gdocai -config config.yml -pdf input.pdf -gt output.hocr [options]
//	gdocai -json response.json -gt output.hocr [options]
//
// Input flags (exactly one required):
//
//	-pdf string     Path to the input PDF file
//	-pdfs string    Comma separated list of input PDF files to process as a single document
//	-json string    Saved Document AI response to convert without calling the API
//
// Output options (at least one required):
//
//	-gt string          Path to save the ground truth file
//	-text string        Path to save the OCR text
//	-images string      Directory to save page images
//	-debug-api string   Path to save the raw API response as JSON
//
// Conversion options:
//
//	-title string       Title written to the ground truth
//	-math-types string  Comma separated visual element types treated as math regions (default math_formula)
//	-debug              Enable debug logging
//
// Authentication:
//
// The tool uses the GOOGLE_APPLICATION_CREDENTIALS environment variable
// for authentication with Google Cloud. It may also be set in a .env file.
//
// Example:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/credentials.json
//	gdocai -config config.yml -pdf paper.pdf -gt paper.hocr -images ./paper_pages
//	gtoverlay -gt paper.hocr -images ./paper_pages -output paper_gt.pdf
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
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gardar/gtoverlay/internal/logging"
	"github.com/gardar/gtoverlay/pkg/gdocai"
	"github.com/gardar/gtoverlay/pkg/groundtruth"
)

type yamlConfig struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// loadConfig reads a YAML file and converts it to our Google Document AI config
func loadConfig(path string) (*gdocai.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, err
	}
	return &gdocai.Config{
		ProjectID:   yc.ProjectID,
		Location:    yc.Location,
		ProcessorID: yc.ProcessorID,
	}, nil
}

// splitList splits a comma separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// imageExtension picks a file extension for a page image MIME type.
func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return "jpg"
	case "image/tiff":
		return "tif"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	// Input flags
	configPath := flag.String("config", "", "Path to the config YAML file (required with -pdf or -pdfs)")
	pdfPath := flag.String("pdf", "", "Path to the input PDF file")
	pdfPaths := flag.String("pdfs", "", "Comma-separated list of PDF files to process as individual pages")
	jsonPath := flag.String("json", "", "Saved Document AI response to convert without calling the API")

	// Output flags
	gtPath := flag.String("gt", "", "Path to save the ground truth file")
	textPath := flag.String("text", "", "Path to save OCR text output")
	imagesDir := flag.String("images", "", "Directory to save images returned by Document AI API for each processed page")
	debugAPIPath := flag.String("debug-api", "", "Path to save API response as JSON for debugging purposes")

	// Conversion flags
	title := flag.String("title", "", "Title written to the ground truth")
	mathTypes := flag.String("math-types", "", "Comma-separated visual element types treated as math regions")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	inputs := 0
	for _, v := range []string{*pdfPath, *pdfPaths, *jsonPath} {
		if v != "" {
			inputs++
		}
	}
	if inputs != 1 {
		fmt.Fprintln(os.Stderr, "Error: Exactly one of -pdf, -pdfs or -json must be provided")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *jsonPath == "" && *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config flag is required when processing PDFs")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *gtPath == "" && *textPath == "" && *imagesDir == "" && *debugAPIPath == "" {
		fmt.Fprintln(os.Stderr, "Error: At least one output flag must be provided (-gt, -text, -images or -debug-api)")
		fmt.Fprintln(os.Stderr, "Usage:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logging.New(os.Stderr, "gdocai", *debug)

	opts := gdocai.DefaultConvertOptions()
	if *title != "" {
		opts.Title = *title
	}
	if types := splitList(*mathTypes); len(types) > 0 {
		opts.MathTypes = types
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var doc *gdocai.Document
	switch {
	case *jsonPath != "":
		fmt.Println("Converting saved Document AI response:", *jsonPath)
		data, err := os.ReadFile(*jsonPath)
		if err != nil {
			log.Error("failed to read response", "path", *jsonPath, "error", err)
			os.Exit(1)
		}
		raw, err := gdocai.LoadDocumentJSON(data)
		if err != nil {
			log.Error("failed to load response", "path", *jsonPath, "error", err)
			os.Exit(1)
		}
		doc, err = gdocai.DocumentFromProto(raw, opts)
		if err != nil {
			log.Error("failed to convert response", "error", err)
			os.Exit(1)
		}

	case *pdfPath != "":
		cfg, err := loadConfig(*configPath)
		if err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		fmt.Println("Processing single PDF file:", *pdfPath)
		pdfBytes, err := os.ReadFile(*pdfPath)
		if err != nil {
			log.Error("failed to read PDF file", "path", *pdfPath, "error", err)
			os.Exit(1)
		}
		doc, err = gdocai.Annotate(ctx, pdfBytes, cfg, opts)
		if err != nil {
			log.Error("error processing document", "error", err)
			os.Exit(1)
		}

	default:
		cfg, err := loadConfig(*configPath)
		if err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		pathsList := splitList(*pdfPaths)
		if len(pathsList) == 0 {
			log.Error("no PDF files specified with -pdfs")
			os.Exit(1)
		}
		fmt.Printf("Processing %d PDF files as separate pages\n", len(pathsList))

		var pdfPageBytes [][]byte
		for i, path := range pathsList {
			fmt.Printf("Reading page %d: %s\n", i+1, path)
			pageBytes, err := os.ReadFile(path)
			if err != nil {
				log.Error("failed to read PDF file", "path", path, "error", err)
				os.Exit(1)
			}
			pdfPageBytes = append(pdfPageBytes, pageBytes)
		}
		doc, err = gdocai.AnnotatePages(ctx, pdfPageBytes, cfg, opts)
		if err != nil {
			log.Error("error processing documents", "error", err)
			os.Exit(1)
		}
	}

	counts := groundtruth.Count(doc.Annotations)
	log.Info("converted document", "pages", counts.Sheets, "chars", counts.Chars, "math_chars", counts.MathChars)

	// Write ground truth if flag is provided.
	if *gtPath != "" {
		gt, err := groundtruth.Generate(doc.Annotations)
		if err != nil {
			log.Error("failed to generate ground truth", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*gtPath, []byte(gt), 0644); err != nil {
			log.Error("failed to write ground truth", "path", *gtPath, "error", err)
			os.Exit(1)
		}
		fmt.Println("Ground truth saved to:", *gtPath)
	}

	// Write OCR text output if flag is provided.
	if *textPath != "" {
		if err := os.WriteFile(*textPath, []byte(doc.Text), 0644); err != nil {
			log.Error("failed to write text output", "path", *textPath, "error", err)
			os.Exit(1)
		}
		fmt.Println("Document text saved to:", *textPath)
	}

	// Write API response JSON if flag is provided.
	if *debugAPIPath != "" {
		if doc.Raw != nil {
			apiJSON, err := gdocai.ToJSON(doc.Raw)
			if err != nil {
				log.Error("failed to convert API response to JSON", "error", err)
				os.Exit(1)
			}
			if err := os.WriteFile(*debugAPIPath, []byte(apiJSON), 0644); err != nil {
				log.Error("failed to write API response JSON", "path", *debugAPIPath, "error", err)
				os.Exit(1)
			}
			fmt.Println("API response JSON saved to:", *debugAPIPath)
		} else {
			log.Warn("raw API response not available when processing multiple PDF files")
		}
	}

	// Extract and write out images for each page if flag is provided.
	if *imagesDir != "" {
		if err := os.MkdirAll(*imagesDir, 0755); err != nil {
			log.Error("failed to create images directory", "path", *imagesDir, "error", err)
			os.Exit(1)
		}
		if len(doc.Pages) == 0 {
			log.Warn("no page images available to extract")
		}
		for i, page := range doc.Pages {
			imgBytes, err := gdocai.ExtractImageFromPage(page)
			if err != nil {
				log.Warn("skipping page image", "page", i+1, "error", err)
				continue
			}
			name := fmt.Sprintf("page_%03d.%s", i+1, imageExtension(page.GetImage().GetMimeType()))
			imagePath := filepath.Join(*imagesDir, name)
			if err := os.WriteFile(imagePath, imgBytes, 0644); err != nil {
				log.Warn("failed to write page image", "page", i+1, "error", err)
				continue
			}
			fmt.Printf("Saved image for page %d to %s\n", i+1, imagePath)
		}
	}
}
