package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
)

type stubConfig struct {
	config.Config
	baseURL string
}

func (s *stubConfig) GetString(key string) string {
	if key == "modules.studio.provider_base_url" {
		return s.baseURL
	}
	return ""
}

func (s *stubConfig) GetSecond(string) time.Duration { return 5 * time.Second }
func (s *stubConfig) GetInt(string) int              { return 2 }

func newTestClient(baseURL string) *Client {
	return NewClient(&stubConfig{baseURL: baseURL}, instrument.NewNoop())
}

func TestGenerateImageRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	img, err := c.GenerateImage(context.Background(), entity.ImageSpec{
		Prompt: "a fox in the snow",
		Model:  "flux",
		Width:  512,
		Height: 512,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if calls != 2 {
		t.Fatalf("upstream called %d times, want 2", calls)
	}
	if string(img.Data) != "png-bytes" || img.ContentType != "image/png" {
		t.Fatalf("image = %+v", img)
	}
}

func TestGenerateImageFailsFastOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.GenerateImage(context.Background(), entity.ImageSpec{Prompt: "a fox", Model: "flux", Width: 512, Height: 512, Seed: 1})
	if err == nil {
		t.Fatal("expected an error for a 4xx response")
	}
	if calls != 1 {
		t.Fatalf("upstream called %d times, want no retries on 4xx", calls)
	}
}

func TestImageURLCarriesSpec(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	_, err := c.GenerateImage(context.Background(), entity.ImageSpec{
		Prompt: "a fox in the snow",
		Model:  "flux",
		Width:  1024,
		Height: 768,
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if !strings.HasPrefix(gotPath, "/image/") {
		t.Fatalf("path = %q, want /image/ prefix", gotPath)
	}
	if !strings.Contains(gotPath, "fox") {
		t.Fatalf("path = %q, want prompt embedded", gotPath)
	}
	for _, part := range []string{"model=flux", "width=1024", "height=768", "seed=42", "nologo=true"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("query = %q, missing %q", gotQuery, part)
		}
	}
}
