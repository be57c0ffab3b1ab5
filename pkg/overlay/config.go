package overlay

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/gardar/gtoverlay/internal/logging"
)

// Palette holds the display color of every annotation category
type Palette struct {
	Math     color.NRGBA // Math regions (fill and outline)
	CharMath color.NRGBA // Characters in math mode (fill and outline)
	CharText color.NRGBA // Other characters (fill and outline)
	Line     color.NRGBA // Line outlines
	Text     color.NRGBA // Text region outlines
	Image    color.NRGBA // Image region outlines
}

// DefaultPalette uses translucent yellow for math, green for text
// characters, blue for lines, red for text regions and opaque magenta for
// images.
var DefaultPalette = Palette{
	Math:     color.NRGBA{R: 255, G: 255, B: 0, A: 77},
	CharMath: color.NRGBA{R: 255, G: 255, B: 0, A: 77},
	CharText: color.NRGBA{R: 0, G: 255, B: 0, A: 77},
	Line:     color.NRGBA{R: 0, G: 0, B: 255, A: 77},
	Text:     color.NRGBA{R: 255, G: 0, B: 0, A: 77},
	Image:    color.NRGBA{R: 255, G: 0, B: 255, A: 255},
}

// Config holds the rendering options of an annotation run. It is passed by
// value and never modified once built.
type Config struct {
	Palette     Palette
	StrokeWidth float64         // Outline width in raster pixels
	DPI         float64         // Raster resolution, used to size output pages (72 = 1 px per pt)
	OriginX     float64         // Where the raster is placed on the output page
	OriginY     float64         //
	JPEGQuality int             // Quality of rasters embedded in the output document
	Logger      *logging.Logger // nil = discard
}

// DefaultConfig returns a config with the stock palette and stroke
func DefaultConfig() Config {
	return Config{
		Palette:     DefaultPalette,
		StrokeWidth: 2,
		DPI:         72,
		OriginX:     0,
		OriginY:     0,
		JPEGQuality: 90,
	}
}

// logger returns the configured logger or a discarding one.
func (c Config) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// Validate checks that numeric options are usable.
func (c Config) Validate() error {
	if !(c.StrokeWidth > 0) {
		return fmt.Errorf("stroke width must be positive, got %g", c.StrokeWidth)
	}
	if !(c.DPI > 0) {
		return fmt.Errorf("dpi must be positive, got %g", c.DPI)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be within 1..100, got %d", c.JPEGQuality)
	}
	return nil
}

type yamlColor struct {
	Color string   `yaml:"color"`
	Alpha *float64 `yaml:"alpha"`
}

type yamlConfig struct {
	StrokeWidth *float64             `yaml:"stroke_width"`
	DPI         *float64             `yaml:"dpi"`
	OriginX     *float64             `yaml:"origin_x"`
	OriginY     *float64             `yaml:"origin_y"`
	JPEGQuality *int                 `yaml:"jpeg_quality"`
	Palette     map[string]yamlColor `yaml:"palette"`
}

// LoadConfig reads a YAML file and applies it on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig applies YAML data on top of DefaultConfig. Example:
//
//	stroke_width: 3
//	dpi: 300
//	palette:
//	  math: {color: "#ffcc00", alpha: 0.4}
//	  image: {color: "#ff00ff"}
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	if yc.StrokeWidth != nil {
		cfg.StrokeWidth = *yc.StrokeWidth
	}
	if yc.DPI != nil {
		cfg.DPI = *yc.DPI
	}
	if yc.OriginX != nil {
		cfg.OriginX = *yc.OriginX
	}
	if yc.OriginY != nil {
		cfg.OriginY = *yc.OriginY
	}
	if yc.JPEGQuality != nil {
		cfg.JPEGQuality = *yc.JPEGQuality
	}

	for name, entry := range yc.Palette {
		slot, err := paletteSlot(&cfg.Palette, name)
		if err != nil {
			return cfg, err
		}
		c, err := parseColor(entry, slot.A)
		if err != nil {
			return cfg, fmt.Errorf("palette %s: %w", name, err)
		}
		*slot = c
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// paletteSlot maps a YAML palette key to the field it configures.
func paletteSlot(p *Palette, name string) (*color.NRGBA, error) {
	switch name {
	case "math":
		return &p.Math, nil
	case "char_math":
		return &p.CharMath, nil
	case "char_text":
		return &p.CharText, nil
	case "line":
		return &p.Line, nil
	case "text":
		return &p.Text, nil
	case "image":
		return &p.Image, nil
	default:
		return nil, fmt.Errorf("unknown palette entry %q", name)
	}
}

// parseColor converts a hex color with optional alpha (0..1). The default
// alpha is kept when none is given.
func parseColor(yc yamlColor, defaultAlpha uint8) (color.NRGBA, error) {
	hex := strings.TrimSpace(yc.Color)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", yc.Color, err)
	}
	r, g, b := c.RGB255()

	a := defaultAlpha
	if yc.Alpha != nil {
		if *yc.Alpha < 0 || *yc.Alpha > 1 {
			return color.NRGBA{}, fmt.Errorf("alpha must be within 0..1, got %g", *yc.Alpha)
		}
		a = uint8(math.Round(*yc.Alpha * 255))
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}
