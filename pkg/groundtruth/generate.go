package groundtruth

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/groundtruth.tmpl
var templateFS embed.FS

// Generate creates a ground truth HTML document from the Annotations struct
// using the embedded template. The result can be read back with Parse.
// Character properties written into the title attribute (mode, link label,
// parent id and code) must not contain whitespace or ';'.
func Generate(doc *Annotations) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("annotations are nil")
	}
	if err := checkTitleProps(doc); err != nil {
		return "", err
	}

	tmpl, err := template.New("groundtruth.tmpl").Funcs(template.FuncMap{
		"bbox":   formatBBox,
		"esc":    html.EscapeString,
		"trim":   strings.TrimSpace,
		"isMath": func(k RegionKind) bool { return k == KindMath },
	}).ParseFS(templateFS, "templates/groundtruth.tmpl")
	if err != nil {
		return "", fmt.Errorf("error parsing ground truth template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("error rendering ground truth template: %w", err)
	}

	return buf.String(), nil
}

// formatBBox renders a box as a title property with the shortest exact
// representation of each coordinate.
func formatBBox(b BoundingBox) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return fmt.Sprintf("bbox %s %s %s %s", f(b.Left), f(b.Top), f(b.Right), f(b.Bottom))
}

// checkTitleProps rejects character properties that ParseTitle would split.
func checkTitleProps(doc *Annotations) error {
	for _, sheet := range doc.Sheets {
		for _, region := range sheet.Regions {
			for _, line := range region.Lines {
				for _, char := range line.Chars {
					props := []struct{ name, value string }{
						{"x_mode", string(char.Mode)},
						{"x_link", char.LinkLabel},
						{"x_parent", char.ParentID},
						{"x_code", char.Code},
					}
					for _, p := range props {
						if strings.ContainsAny(p.value, "; \t\r\n") {
							return fmt.Errorf("character %s: %s %q contains whitespace or ';'", char.ID, p.name, p.value)
						}
					}
				}
			}
		}
	}
	return nil
}
