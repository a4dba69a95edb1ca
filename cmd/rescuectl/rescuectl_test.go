package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CDN_DOMAIN", "images.rescuedogs.me")
	t.Setenv("SITE_URL", "https://www.rescuedogs.me")
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestURL(t *testing.T) {
	out, err := execute(t, "url", "https://images.rescuedogs.me/rex.jpg", "--preset", "thumbnail", "--slow")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	want := "https://images.rescuedogs.me/cdn-cgi/image/w=60,h=60,fit=cover,quality=60/rex.jpg\ttransformed\n"
	if out != want {
		t.Fatalf("out=%q want %q", out, want)
	}

	if _, err := execute(t, "url", "https://images.rescuedogs.me/rex.jpg", "--preset", "poster"); err == nil {
		t.Fatal("expected unknown preset error")
	}
}

func TestResponsive(t *testing.T) {
	out, err := execute(t, "responsive", "https://images.rescuedogs.me/rex.jpg")
	if err != nil {
		t.Fatalf("responsive: %v", err)
	}
	if !strings.Contains(out, `"srcset"`) || !strings.Contains(out, "800w") {
		t.Fatalf("out=%s", out)
	}
}

func TestShare_RoundTrip(t *testing.T) {
	out, err := execute(t, "share", "encode", "99", "7,12")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "AQcFVw" {
		t.Fatalf("encode out=%q", out)
	}
	if lines[1] != "https://www.rescuedogs.me/favorites?shared=AQcFVw" {
		t.Fatalf("share url=%q", lines[1])
	}

	out, err = execute(t, "share", "decode", lines[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.TrimSpace(out) != "7,12,99" {
		t.Fatalf("decode out=%q", out)
	}

	if _, err := execute(t, "share", "decode", "%%%"); err == nil {
		t.Fatal("expected error for malformed code")
	}
}

func TestSitemap_WritesFiles(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/animals":
			_, _ = io.WriteString(w, `[{"id":1,"slug":"rex","status":"available"}]`)
		case "/api/organizations":
			_, _ = io.WriteString(w, `[{"id":2,"slug":"happy-paws"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	dir := t.TempDir()
	out, err := execute(t, "sitemap", "--api", api.URL, "--out", dir)
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	if !strings.Contains(out, "in 1 sitemap(s)") {
		t.Fatalf("out=%q", out)
	}

	idx, err := os.ReadFile(filepath.Join(dir, "sitemap.xml"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(idx), "https://www.rescuedogs.me/sitemaps/1.xml") {
		t.Fatalf("index=%s", idx)
	}
	part, err := os.ReadFile(filepath.Join(dir, "sitemaps", "1.xml"))
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	for _, s := range []string{"/dogs/rex</loc>", "/organizations/happy-paws</loc>"} {
		if !strings.Contains(string(part), s) {
			t.Fatalf("part missing %s", s)
		}
	}
}
