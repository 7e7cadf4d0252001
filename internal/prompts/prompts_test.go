package prompts_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/scribe/internal/prompts"
	"github.com/JaimeStill/scribe/pkg/routes"
)

func TestResolve(t *testing.T) {
	r := prompts.NewResolver("configured default")

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"empty uses default", "", "configured default"},
		{"whitespace uses default", "  \n\t", "configured default"},
		{"override wins", "Free OCR.", "Free OCR."},
		{"override verbatim", "  keep spacing ", "  keep spacing "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.override); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewResolverBlankDefault(t *testing.T) {
	r := prompts.NewResolver("   ")
	if r.Default() != prompts.DefaultPrompt {
		t.Errorf("default: got %q, want %q", r.Default(), prompts.DefaultPrompt)
	}
}

func TestSelect(t *testing.T) {
	r := prompts.NewResolver("")
	free, _ := prompts.Preset(prompts.ModeFree)

	tests := []struct {
		name     string
		override string
		mode     string
		want     string
		wantErr  error
	}{
		{name: "nothing", want: prompts.DefaultPrompt},
		{name: "mode preset", mode: "free", want: free},
		{name: "override beats mode", override: "custom", mode: "free", want: "custom"},
		{name: "unknown mode", mode: "poetry", wantErr: prompts.ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Select(tt.override, tt.mode)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModeUnmarshalJSON(t *testing.T) {
	var m prompts.Mode
	if err := json.Unmarshal([]byte(`"figure"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m != prompts.ModeFigure {
		t.Errorf("got %q, want figure", m)
	}

	if err := json.Unmarshal([]byte(`"nope"`), &m); !errors.Is(err, prompts.ErrInvalidMode) {
		t.Errorf("got %v, want ErrInvalidMode", err)
	}
}

func TestPresetsCoverModes(t *testing.T) {
	for _, m := range prompts.Modes() {
		text, err := prompts.Preset(m)
		if err != nil {
			t.Errorf("preset %s: %v", m, err)
		}
		if text == "" {
			t.Errorf("preset %s is empty", m)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	if got := prompts.MapHTTPStatus(prompts.ErrInvalidMode); got != http.StatusBadRequest {
		t.Errorf("invalid mode: got %d, want 400", got)
	}
	if got := prompts.MapHTTPStatus(errors.New("other")); got != http.StatusInternalServerError {
		t.Errorf("other: got %d, want 500", got)
	}
}

func TestHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := prompts.NewHandler(prompts.NewResolver(""), logger)

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/prompts", http.StatusOK},
		{"/prompts/default", http.StatusOK},
		{"/prompts/markdown", http.StatusOK},
		{"/prompts/unknown", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/prompts", nil))

	var list []prompts.ModeContent
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != len(prompts.Modes()) {
		t.Errorf("modes listed: got %d, want %d", len(list), len(prompts.Modes()))
	}
}
