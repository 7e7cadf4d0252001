package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/scribe/pkg/openapi"
	"github.com/JaimeStill/scribe/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func groups() []routes.Group {
	return []routes.Group{
		{
			Prefix: "",
			Tags:   []string{"OCR"},
			Routes: []routes.Route{
				{Method: "POST", Pattern: "/image", Handler: ok, OpenAPI: &openapi.Operation{Summary: "image"}},
				{Method: "POST", Pattern: "/pdf", Handler: ok},
			},
		},
		{
			Prefix: "/prompts",
			Tags:   []string{"Prompts"},
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: ok, OpenAPI: &openapi.Operation{Summary: "list"}},
			},
			Children: []routes.Group{
				{
					Prefix: "/presets",
					Routes: []routes.Route{
						{
							Method:  "GET",
							Pattern: "/{mode}",
							Handler: ok,
							OpenAPI: &openapi.Operation{Summary: "find", Tags: []string{"Presets"}},
						},
					},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, groups()...)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"POST", "/image", http.StatusOK},
		{"POST", "/pdf", http.StatusOK},
		{"GET", "/prompts", http.StatusOK},
		{"GET", "/prompts/presets/free", http.StatusOK},
		{"GET", "/image", http.StatusMethodNotAllowed},
		{"GET", "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	routes.Describe(spec, "/ocr", groups()...)

	image := spec.Paths["/ocr/image"]
	if image == nil || image.Post == nil || image.Post.Summary != "image" {
		t.Fatalf("/ocr/image not documented: %+v", image)
	}
	if len(image.Post.Tags) != 1 || image.Post.Tags[0] != "OCR" {
		t.Errorf("group tags not applied: %v", image.Post.Tags)
	}

	if _, ok := spec.Paths["/ocr/pdf"]; ok {
		t.Error("undocumented route should be skipped")
	}

	find := spec.Paths["/ocr/prompts/presets/{mode}"]
	if find == nil || find.Get == nil {
		t.Fatal("nested route not documented")
	}
	if find.Get.Tags[0] != "Presets" {
		t.Errorf("explicit tags overridden: %v", find.Get.Tags)
	}

	if spec.Paths["/ocr/prompts"] == nil {
		t.Error("group root route not documented")
	}
}
