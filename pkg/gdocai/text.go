package gdocai

import (
	"fmt"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

// textFromLayout extracts text from a layout's text anchor segments
func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}

// charCode renders the code points of s as x-prefixed hex, joined by '+'.
// The result never contains a comma, so it is safe inside a record.
func charCode(s string) string {
	var parts []string
	for _, r := range s {
		parts = append(parts, fmt.Sprintf("x%04X", r))
	}
	return strings.Join(parts, "+")
}
