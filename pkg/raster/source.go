package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/gardar/gtoverlay/pkg/groundtruth"
	"github.com/gardar/gtoverlay/pkg/overlay"
)

// imageExtensions lists the page image formats an ImageDir picks up.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// ImageDir is a document whose pages are the image files of a directory,
// in lexical file name order.
type ImageDir struct {
	Dir   string
	Paths []string
}

// OpenImageDir lists the page images of dir. Files with other extensions
// are ignored.
func OpenImageDir(dir string) (*ImageDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing image directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no page images found in %s", dir)
	}
	return &ImageDir{Dir: dir, Paths: paths}, nil
}

func (d *ImageDir) PageCount() int { return len(d.Paths) }

// RenderPage decodes the page image into a fresh canvas.
func (d *ImageDir) RenderPage(index int) (overlay.Surface, error) {
	if index < 0 || index >= len(d.Paths) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index, len(d.Paths))
	}
	img, err := imaging.Open(d.Paths[index])
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.Paths[index], err)
	}
	return NewCanvas(img), nil
}

// Images is a document backed by page images held in memory. Every render
// returns a fresh copy, so the originals are never drawn on.
type Images []image.Image

func (im Images) PageCount() int { return len(im) }

func (im Images) RenderPage(index int) (overlay.Surface, error) {
	if index < 0 || index >= len(im) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", index, len(im))
	}
	if im[index] == nil {
		return nil, fmt.Errorf("page %d has no image", index)
	}
	return NewCanvas(im[index]), nil
}

// boxedDocument attaches declared page boxes to a document.
type boxedDocument struct {
	overlay.Document
	boxes PageBoxes
}

// PageBoxes lists declared page boxes by 0-based page index.
type PageBoxes []groundtruth.BoundingBox

// PageBox returns the box of a page, if known.
func (p PageBoxes) PageBox(index int) (groundtruth.BoundingBox, bool) {
	if index < 0 || index >= len(p) {
		return groundtruth.BoundingBox{}, false
	}
	return p[index], !p[index].IsZero()
}

func (d boxedDocument) PageBox(index int) (groundtruth.BoundingBox, bool) {
	return d.boxes.PageBox(index)
}

// WithPageBoxes returns doc extended with overlay.PageBoxer, so sheets
// without their own bbox calibrate against boxes.
func WithPageBoxes(doc overlay.Document, boxes PageBoxes) overlay.Document {
	return boxedDocument{Document: doc, boxes: boxes}
}
