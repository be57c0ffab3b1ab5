package groundtruth

import (
	"strings"
)

// Counts holds the number of annotated nodes per kind.
type Counts struct {
	Sheets      int
	TextRegions int
	MathRegions int
	Lines       int
	Chars       int
	MathChars   int
	Images      int
}

// Count tallies the nodes of every kind in the document.
func Count(doc *Annotations) Counts {
	var c Counts
	if doc == nil {
		return c
	}
	for _, sheet := range doc.Sheets {
		c.Sheets++
		c.Images += len(sheet.Images)
		for _, region := range sheet.Regions {
			if region.Kind == KindMath {
				c.MathRegions++
				continue
			}
			c.TextRegions++
			for _, line := range region.Lines {
				c.Lines++
				for _, char := range line.Chars {
					c.Chars++
					if char.Mode.IsMath() {
						c.MathChars++
					}
				}
			}
		}
	}
	return c
}

// ExtractText concatenates the character text of every line.
// Lines are separated by newlines and sheets by double newlines.
func ExtractText(doc *Annotations) string {
	var builder strings.Builder
	if doc == nil {
		return ""
	}

	for _, sheet := range doc.Sheets {
		for _, region := range sheet.Regions {
			if region.Kind != KindText {
				continue
			}
			for _, line := range region.Lines {
				for _, char := range line.Chars {
					builder.WriteString(char.Text)
				}
				builder.WriteString("\n")
			}
		}
		builder.WriteString("\n\n")
	}

	return builder.String()
}
