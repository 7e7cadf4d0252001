package ocr

import "github.com/JaimeStill/scribe/internal/workflow"

// ImageResponse is the body of an image OCR request. Result and Error are
// always present and null when absent.
type ImageResponse struct {
	Success   bool    `json:"success"`
	Result    *string `json:"result"`
	Error     *string `json:"error"`
	PageCount int     `json:"page_count"`
	HTML      *string `json:"html,omitempty"`
}

// PageResponse is the outcome of one page of a paged document.
type PageResponse struct {
	Success    bool    `json:"success"`
	Result     *string `json:"result"`
	Error      *string `json:"error"`
	PageNumber int     `json:"page_number"`
	HTML       *string `json:"html,omitempty"`
}

// BatchResponse is the body of a paged document OCR request.
type BatchResponse struct {
	Success    bool           `json:"success"`
	Results    []PageResponse `json:"results"`
	TotalPages int            `json:"total_pages"`
	Filename   string         `json:"filename"`
	Error      *string        `json:"error"`
}

func optional(s string) *string {
	return &s
}

func imageResponse(r *workflow.ImageResult, html *string) ImageResponse {
	if !r.Success {
		return ImageResponse{
			Success:   false,
			Error:     optional(r.Err.Error()),
			PageCount: r.PageCount,
		}
	}
	return ImageResponse{
		Success:   true,
		Result:    optional(r.Text),
		PageCount: r.PageCount,
		HTML:      html,
	}
}

func pageResponse(o workflow.Outcome, html *string) PageResponse {
	if !o.OK() {
		return PageResponse{
			Success:    false,
			Error:      optional(o.Message()),
			PageNumber: o.PageNumber,
		}
	}
	return PageResponse{
		Success:    true,
		Result:     optional(o.Text),
		PageNumber: o.PageNumber,
		HTML:       html,
	}
}

func failedBatch(filename string, err error) BatchResponse {
	return BatchResponse{
		Success:    false,
		Results:    []PageResponse{},
		TotalPages: 0,
		Filename:   filename,
		Error:      optional(err.Error()),
	}
}
