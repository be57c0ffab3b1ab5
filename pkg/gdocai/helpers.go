package gdocai

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ToJSON converts various types to a JSON string
// It handles both protocol buffer messages and regular Go structs
func ToJSON(data interface{}) (string, error) {
	switch v := data.(type) {
	case proto.Message:
		// For protocol buffer messages, use protojson
		jsonData, err := protojson.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(jsonData), nil

	default:
		// For regular Go structs, use standard json package
		jsonData, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(jsonData), nil
	}
}

// LoadDocumentJSON reads a Document AI response saved as JSON, for example
// with -debug-api or from a batch processing export.
func LoadDocumentJSON(data []byte) (*documentaipb.Document, error) {
	doc := &documentaipb.Document{}
	opts := protojson.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse Document AI JSON: %w", err)
	}
	return doc, nil
}

// ExtractImageFromPage pulls out the image data from a Document AI page
func ExtractImageFromPage(page *documentaipb.Document_Page) ([]byte, error) {
	if page == nil {
		return nil, fmt.Errorf("no documentai page provided")
	}

	image := page.GetImage()
	if image == nil {
		return nil, fmt.Errorf("no image found in documentai page")
	}

	content := image.GetContent()
	if len(content) == 0 {
		return nil, fmt.Errorf("image content is empty")
	}

	return content, nil
}
