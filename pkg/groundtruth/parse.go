package groundtruth

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
)

// Parse converts raw ground truth HTML into a structured Annotations object.
func Parse(data []byte) (Annotations, error) {
	var result Annotations
	result.Metadata = make(map[string]string)

	decoded, err := decodeInput(data)
	if err != nil {
		return result, err
	}

	doc, err := html.Parse(strings.NewReader(string(decoded)))
	if err != nil {
		return result, err
	}

	extractDocumentMeta(&result, doc)

	// Find and process all ocr_page elements
	var findSheets func(*html.Node)
	findSheets = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			result.Sheets = append(result.Sheets, processSheet(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findSheets(c)
		}
	}
	findSheets(doc)

	if len(result.Sheets) == 0 {
		return result, fmt.Errorf("no ocr_page elements found in ground truth data")
	}
	return result, nil
}

// decodeInput converts ISO-8859-1 declared input to UTF-8.
func decodeInput(data []byte) ([]byte, error) {
	encoding := declaredCharset(string(data))
	if encoding == "" || encoding == "utf-8" || encoding == "utf8" {
		return data, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", encoding, err)
	}
	return decoded, nil
}

// declaredCharset returns the lower-cased charset from a meta tag, if any.
func declaredCharset(content string) string {
	idx := strings.Index(content, "charset=")
	if idx < 0 {
		return ""
	}
	snippet := content[idx+len("charset="):]
	if len(snippet) > 20 {
		snippet = snippet[:20]
	}
	fields := strings.FieldsFunc(snippet, func(r rune) bool {
		return r == '"' || r == ';' || r == '\'' || r == '>' || r == ' ' || r == '/'
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// ParseTitle breaks down a title attribute into its components
// Example input: "bbox 100 200 300 400; x_mode MATH_SYMBOL"
func ParseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(part)
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// ParseBoundingBoxFromTitle extracts a bounding box from a title string.
// Returns nil when no complete, finite bbox is present. Reversed edges are
// swapped so that Left <= Right and Top <= Bottom.
func ParseBoundingBoxFromTitle(title string) *BoundingBox {
	props := ParseTitle(title)
	bbox, ok := props["bbox"]
	if !ok || len(bbox) < 4 {
		return nil
	}
	var v [4]float64
	for i := 0; i < 4; i++ {
		f, err := strconv.ParseFloat(bbox[i], 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		v[i] = f
	}
	if v[0] > v[2] {
		v[0], v[2] = v[2], v[0]
	}
	if v[1] > v[3] {
		v[1], v[3] = v[3], v[1]
	}
	result := NewBoundingBox(v[0], v[1], v[2], v[3])
	return &result
}

// extractDocumentMeta extracts document-level metadata from the head section
func extractDocumentMeta(result *Annotations, doc *html.Node) {
	var findHead func(*html.Node) *html.Node
	findHead = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "head" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := findHead(c); found != nil {
				return found
			}
		}
		return nil
	}

	head := findHead(doc)
	if head == nil {
		return
	}

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "title":
			if c.FirstChild != nil {
				result.Title = strings.TrimSpace(c.FirstChild.Data)
			}
		case "meta":
			name := getAttrVal(c, "name")
			content := getAttrVal(c, "content")
			if name != "" && content != "" {
				result.Metadata[name] = content
			}
		}
	}
}

// processSheet extracts a page and its regions and images
func processSheet(n *html.Node) Sheet {
	sheet := Sheet{
		ID:       getAttrVal(n, "id"),
		Metadata: make(map[string]string),
	}

	if title := getAttrVal(n, "title"); title != "" {
		if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
			sheet.BBox = *bbox
		}
		props := ParseTitle(title)
		if ppageno, ok := props["ppageno"]; ok && len(ppageno) > 0 {
			sheet.Number, _ = strconv.Atoi(ppageno[0])
		}
		for k, v := range props {
			if k != "bbox" && k != "ppageno" {
				sheet.Metadata[k] = strings.Join(v, " ")
			}
		}
	}

	var collectNodes func(*html.Node)
	collectNodes = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch {
			case hasClass(node, "ocr_carea"):
				sheet.Regions = append(sheet.Regions, processRegion(node, KindText))
				return
			case hasClass(node, "ocr_math"):
				sheet.Regions = append(sheet.Regions, processRegion(node, KindMath))
				return
			case hasClass(node, "ocr_image"), hasClass(node, "ocr_photo"), hasClass(node, "ocr_linedrawing"):
				sheet.Images = append(sheet.Images, processImage(node))
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collectNodes(c)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodes(c)
	}

	return sheet
}

// processRegion extracts a text or math region. Lines are only collected for
// text regions.
func processRegion(n *html.Node, kind RegionKind) Region {
	region := Region{
		ID:       getAttrVal(n, "id"),
		Kind:     kind,
		Metadata: make(map[string]string),
	}

	if title := getAttrVal(n, "title"); title != "" {
		if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
			region.BBox = *bbox
		}
		for k, v := range ParseTitle(title) {
			if k != "bbox" {
				region.Metadata[k] = strings.Join(v, " ")
			}
		}
	}

	if kind == KindMath {
		return region
	}

	var collectNodes func(*html.Node)
	collectNodes = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocr_line") {
			region.Lines = append(region.Lines, processLine(node))
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collectNodes(c)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectNodes(c)
	}

	return region
}

// processLine extracts line information and its characters
func processLine(n *html.Node) Line {
	line := Line{ID: getAttrVal(n, "id")}

	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		line.BBox = *bbox
	}

	var extractChars func(*html.Node)
	extractChars = func(node *html.Node) {
		if node.Type == html.ElementNode && hasClass(node, "ocrx_cinfo") {
			line.Chars = append(line.Chars, processChar(node, line.ID))
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			extractChars(c)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractChars(c)
	}

	return line
}

// processChar extracts a character and its metadata. The enclosing line's id
// is used as parent when no x_parent property is present.
func processChar(n *html.Node, lineID string) Char {
	char := Char{
		ID:       getAttrVal(n, "id"),
		Mode:     ModeOrdinary,
		ParentID: lineID,
	}

	title := getAttrVal(n, "title")
	if bbox := ParseBoundingBoxFromTitle(title); bbox != nil {
		char.BBox = *bbox
	}

	props := ParseTitle(title)
	if mode, ok := props["x_mode"]; ok && len(mode) > 0 {
		char.Mode = TextMode(mode[0])
	}
	if link, ok := props["x_link"]; ok && len(link) > 0 {
		char.LinkLabel = link[0]
	}
	if parent, ok := props["x_parent"]; ok && len(parent) > 0 {
		char.ParentID = parent[0]
	}
	if code, ok := props["x_code"]; ok && len(code) > 0 {
		char.Code = code[0]
	}

	if n.FirstChild != nil {
		char.Text = extractTextContent(n)
	}

	return char
}

// processImage extracts an image area
func processImage(n *html.Node) Image {
	img := Image{ID: getAttrVal(n, "id")}
	if bbox := ParseBoundingBoxFromTitle(getAttrVal(n, "title")); bbox != nil {
		img.BBox = *bbox
	}
	return img
}

// extractTextContent gets all text from a node and its children
func extractTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}

	var text string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text += extractTextContent(c)
	}
	return strings.TrimSpace(text)
}

// hasClass reports whether the node's class attribute lists the given class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttrVal(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// Get the value of a specific attribute from a node
func getAttrVal(n *html.Node, attrName string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}
	return ""
}
