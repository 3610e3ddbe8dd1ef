package certificate

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shihabhq/democracy-server/internal/pngmeta"
)

type staticSource struct {
	data []byte
	err  error
}

func (s *staticSource) Fetch(ctx context.Context) ([]byte, error) {
	return s.data, s.err
}

func templatePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 240, G: 236, B: 220, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding template png: %v", err)
	}
	return buf.Bytes()
}

func testData() Data {
	return Data{Name: "Asha Rahman", Score: 17, Percentage: 85, Date: time.Now()}
}

func TestPageSize(t *testing.T) {
	w, h := PageSize(1200, 800)
	if w != 900 || h != 600 {
		t.Fatalf("PageSize(1200, 800) = (%v, %v), want (900, 600)", w, h)
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(&staticSource{data: templatePNG(t, 120, 80)})

	pdf, err := r.Render(context.Background(), testData())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF: %q", pdf[:min(8, len(pdf))])
	}
}

func TestRenderToFile(t *testing.T) {
	r := NewRenderer(&staticSource{data: templatePNG(t, 120, 80)})
	path := filepath.Join(t.TempDir(), "cert.pdf")

	if err := r.RenderToFile(context.Background(), testData(), path); err != nil {
		t.Fatalf("RenderToFile returned error: %v", err)
	}
	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatal("file does not look like a PDF")
	}
}

func TestRenderTemplateUnavailable(t *testing.T) {
	r := NewRenderer(&staticSource{err: errors.New("connection refused")})

	_, err := r.Render(context.Background(), testData())
	if !errors.Is(err, ErrTemplateUnavailable) {
		t.Fatalf("got %v, want ErrTemplateUnavailable", err)
	}
}

func TestRenderInvalidTemplate(t *testing.T) {
	r := NewRenderer(&staticSource{data: []byte("not a png")})

	_, err := r.Render(context.Background(), testData())
	if !errors.Is(err, pngmeta.ErrInvalidImage) {
		t.Fatalf("got %v, want ErrInvalidImage", err)
	}
}

func TestHTTPTemplateSource(t *testing.T) {
	want := templatePNG(t, 60, 40)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	src := &HTTPTemplateSource{URL: srv.URL, Client: srv.Client()}
	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("fetched bytes differ from served template")
	}
}

func TestHTTPTemplateSourceBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	src := &HTTPTemplateSource{URL: srv.URL, Client: srv.Client()}
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
