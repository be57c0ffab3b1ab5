package gdocai

import (
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

func TestJSONRoundTrip(t *testing.T) {
	data, err := ToJSON(sampleDocument())
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	doc, err := LoadDocumentJSON([]byte(data))
	if err != nil {
		t.Fatalf("LoadDocumentJSON failed: %v", err)
	}
	if doc.Text != "ab\nxy\n" || len(doc.Pages) != 1 || len(doc.Pages[0].Symbols) != 5 {
		t.Errorf("round trip lost data: %q, %d pages", doc.Text, len(doc.Pages))
	}

	ann, err := AnnotationsFromProto(doc, DefaultConvertOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(ann.Sheets[0].Regions) != 3 {
		t.Errorf("expected 3 regions after reload, got %d", len(ann.Sheets[0].Regions))
	}
}

func TestLoadDocumentJSON_Invalid(t *testing.T) {
	if _, err := LoadDocumentJSON([]byte("{not json")); err == nil {
		t.Error("expected error")
	}
	doc, err := LoadDocumentJSON([]byte(`{"text": "x", "someFutureField": 1}`))
	if err != nil || doc.Text != "x" {
		t.Errorf("unknown fields should be ignored, got %v", err)
	}
}

func TestToJSON_Struct(t *testing.T) {
	out, err := ToJSON(map[string]int{"pages": 2})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"pages": 2`) {
		t.Errorf("got %s", out)
	}
}

func TestExtractImageFromPage(t *testing.T) {
	tests := []struct {
		name    string
		page    *documentaipb.Document_Page
		wantErr bool
	}{
		{"image", sampleDocument().Pages[0], false},
		{"nil page", nil, true},
		{"no image", &documentaipb.Document_Page{}, true},
		{"empty image", &documentaipb.Document_Page{Image: &documentaipb.Document_Page_Image{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExtractImageFromPage(tt.page)
			if (err != nil) != tt.wantErr {
				t.Fatalf("got err %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && string(data) != "png bytes" {
				t.Errorf("got %q", data)
			}
		})
	}
}

func TestProcessDocument_RequiresConfig(t *testing.T) {
	if _, err := ProcessDocument(t.Context(), []byte("%PDF"), &Config{Location: "us"}); err == nil {
		t.Error("expected error for incomplete config")
	}
}
