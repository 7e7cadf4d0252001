package ocr

import "github.com/JaimeStill/scribe/pkg/openapi"

func nullableString(description string) *openapi.Schema {
	return &openapi.Schema{Type: "string", Description: description + " (null when absent)"}
}

// Schemas returns the component schemas of the OCR responses.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ImageResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":    {Type: "boolean"},
				"result":     nullableString("Recognized text"),
				"error":      nullableString("Failure message"),
				"page_count": {Type: "integer", Description: "1 on success, 0 on failure"},
				"html":       {Type: "string", Description: "Rendered HTML when format=html"},
			},
			Required: []string{"success", "result", "error", "page_count"},
		},
		"PageResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":     {Type: "boolean"},
				"result":      nullableString("Recognized text"),
				"error":       nullableString("Failure message"),
				"page_number": {Type: "integer", Description: "1-based page number"},
				"html":        {Type: "string", Description: "Rendered HTML when format=html"},
			},
			Required: []string{"success", "result", "error", "page_number"},
		},
		"BatchResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"success":     {Type: "boolean"},
				"results":     {Type: "array", Items: openapi.SchemaRef("PageResponse")},
				"total_pages": {Type: "integer"},
				"filename":    {Type: "string"},
				"error":       nullableString("Failure message"),
			},
			Required: []string{"success", "results", "total_pages", "filename", "error"},
		},
	}
}

func uploadBody(description string) *openapi.RequestBody {
	return openapi.RequestBodyMultipart(
		map[string]*openapi.Schema{
			"file":   openapi.BinaryField(description),
			"prompt": {Type: "string", Description: "Prompt override; blank uses the default"},
			"mode": {
				Type:        "string",
				Description: "Preset prompt used when no prompt is given",
				Enum:        []any{"markdown", "free", "figure", "describe"},
			},
			"format": {
				Type:        "string",
				Description: "Set to html to include rendered HTML",
				Enum:        []any{"html"},
			},
		},
		"file",
	)
}

var imageOp = &openapi.Operation{
	Summary:     "OCR a single image",
	Description: "Recognition failures are reported in the body with status 200.",
	RequestBody: uploadBody("Image file (PNG, JPEG, GIF, WebP, BMP or TIFF)"),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("OCR outcome", "ImageResponse"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}

var pdfOp = &openapi.Operation{
	Summary:     "OCR every page of a PDF",
	Description: "Pages are processed concurrently and returned in page order. Page failures are isolated.",
	RequestBody: uploadBody("PDF document"),
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Per-page OCR outcomes", "BatchResponse"),
		400: openapi.ResponseRef("BadRequest"),
		413: openapi.ResponseRef("PayloadTooLarge"),
		500: openapi.ResponseJSON("Document could not be decomposed", "BatchResponse"),
		503: openapi.ResponseRef("ServiceUnavailable"),
	},
}
