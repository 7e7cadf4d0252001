package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/scribe/internal/api"
	"github.com/JaimeStill/scribe/internal/config"
	"github.com/JaimeStill/scribe/internal/infrastructure"
	"github.com/JaimeStill/scribe/internal/ocr"
	"github.com/JaimeStill/scribe/pkg/middleware"
	"github.com/JaimeStill/scribe/pkg/module"
)

const testModel = "deepseek-ai/DeepSeek-OCR"

func vllm(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": testModel, "object": "model", "created": 0, "owned_by": "vllm"}},
		})
	})

	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   testModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "# Invoice\n\nTotal: 42<｜end▁of▁sentence｜>",
				},
			}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{BasePath: "/ocr", MaxUploadSize: 1 << 20},
		Engine: config.EngineConfig{
			BaseURL:        baseURL,
			Model:          testModel,
			MaxConcurrency: 2,
			ProbeInterval:  "10ms",
		},
		Document: config.DocumentConfig{DPI: 144},
		Version:  "0.1.0",
	}
}

func newModule(t *testing.T, start bool) *module.Module {
	t.Helper()
	cfg := testConfig(vllm(t).URL + "/v1")
	cfg.OpenAPI.Finalize(nil)

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("infrastructure: %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })

	if start {
		if err := infra.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}
		done := make(chan struct{})
		go func() {
			infra.Lifecycle.WaitForStartup()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("engine never became ready")
		}
	}

	m, err := api.NewModule(context.Background(), cfg, infra)
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	return m
}

func imageUpload(t *testing.T) *http.Request {
	t.Helper()
	var img bytes.Buffer
	png.Encode(&img, image.NewGray(image.Rect(0, 0, 16, 16)))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "scan.png")
	part.Write(img.Bytes())
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/ocr/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestImageEndToEnd(t *testing.T) {
	m := newModule(t, true)

	rec := httptest.NewRecorder()
	m.Serve(rec, imageUpload(t))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ocr.ImageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.PageCount != 1 {
		t.Fatalf("response: %+v", resp)
	}
	if *resp.Result != "# Invoice\n\nTotal: 42" {
		t.Errorf("result not sanitized: %q", *resp.Result)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
}

func TestNotReadyRejects(t *testing.T) {
	m := newModule(t, false)

	rec := httptest.NewRecorder()
	m.Serve(rec, imageUpload(t))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
}

func TestOpenAPISpec(t *testing.T) {
	m := newModule(t, false)

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/ocr"+api.SpecPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var spec struct {
		Info  struct{ Title, Version string }
		Paths map[string]map[string]any
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatal(err)
	}

	if spec.Info.Title != "Scribe API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info: %+v", spec.Info)
	}
	for _, path := range []string{"/ocr/image", "/ocr/pdf", "/ocr/prompts", "/ocr/prompts/{mode}"} {
		if _, ok := spec.Paths[path]; !ok {
			t.Errorf("path %s not documented", path)
		}
	}
}

func TestPromptsRoute(t *testing.T) {
	m := newModule(t, false)

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest(http.MethodGet, "/ocr/prompts/default", nil))

	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	if rec.Code != http.StatusOK || body["prompt"] == "" {
		t.Errorf("default prompt: %d %v", rec.Code, body)
	}
}
