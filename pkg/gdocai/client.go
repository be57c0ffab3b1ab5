package gdocai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// ProcessDocument sends PDF bytes to Google Document AI for processing
// and returns the raw Document proto response
func ProcessDocument(ctx context.Context, pdfBytes []byte, cfg *Config) (*documentaipb.Document, error) {
	if cfg == nil || cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("project_id, location and processor_id are required")
	}
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	// Instantiate Document AI client using credentials from environment variable
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	// Build the resource name of the processor
	name := fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		cfg.ProjectID, cfg.Location, cfg.ProcessorID,
	)

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return resp.Document, nil
}
