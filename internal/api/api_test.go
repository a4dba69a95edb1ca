package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuedogs/rescue-edge/internal/dogs"
	"github.com/rescuedogs/rescue-edge/internal/favorites"
	"github.com/rescuedogs/rescue-edge/internal/imagecache"
	"github.com/rescuedogs/rescue-edge/internal/imageurl"
	"github.com/rescuedogs/rescue-edge/internal/placeholder"
	"github.com/rescuedogs/rescue-edge/internal/resolver"
	"github.com/rescuedogs/rescue-edge/internal/seo"
	"github.com/rescuedogs/rescue-edge/internal/telemetry"
)

const site = "https://www.rescuedogs.me"

type fakeCatalog struct {
	dogs  []dogs.Dog
	orgs  []dogs.Org
	calls atomic.Int32

	mu   sync.Mutex
	fail error
}

func (f *fakeCatalog) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeCatalog) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeCatalog) AllDogs(context.Context) ([]dogs.Dog, error) {
	f.calls.Add(1)
	if err := f.failure(); err != nil {
		return nil, err
	}
	return f.dogs, nil
}

func (f *fakeCatalog) ListOrganizations(context.Context) ([]dogs.Org, error) {
	return f.orgs, f.failure()
}

func (f *fakeCatalog) GetDog(_ context.Context, slug string) (dogs.Dog, error) {
	for _, d := range f.dogs {
		if d.Slug == slug {
			return d, nil
		}
	}
	return dogs.Dog{}, &dogs.APIError{Message: "Dog not found", Status: http.StatusNotFound}
}

func (f *fakeCatalog) GetOrganization(_ context.Context, slug string) (dogs.Org, error) {
	for _, o := range f.orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	if err := f.failure(); err != nil {
		return dogs.Org{}, err
	}
	return dogs.Org{}, &dogs.APIError{Message: "Organization not found", Status: http.StatusNotFound}
}

type recordingReporter struct {
	mu      sync.Mutex
	batches []telemetry.Batch
}

func (r *recordingReporter) Report(b telemetry.Batch) {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
}

func (r *recordingReporter) snapshot() []telemetry.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]telemetry.Batch(nil), r.batches...)
}

func catalogFixture() *fakeCatalog {
	org := dogs.Org{Slug: "happy-paws", Name: "Happy Paws", City: "Berlin", Country: "DE", TotalDogs: 2}
	return &fakeCatalog{
		dogs: []dogs.Dog{
			{ID: 1, Slug: "rex", Name: "Rex", Breed: "Boxer", Size: dogs.SizeLarge, Sex: dogs.SexMale, Available: true,
				ImageURL: "https://images.rescuedogs.me/rex.jpg", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Org: org},
			{ID: 2, Slug: "bella", Name: "Bella", Breed: "Beagle", Size: dogs.SizeSmall, Sex: dogs.SexFemale, Available: true,
				CreatedAt: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), Org: org},
		},
		orgs: []dogs.Org{org},
	}
}

type harness struct {
	srv      *httptest.Server
	catalog  *fakeCatalog
	reporter *recordingReporter
	api      *API
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := imageurl.NewBuilder("images.rescuedogs.me", 60)
	rep := &recordingReporter{}
	cat := catalogFixture()
	a := New(Deps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Resolver:    resolver.New(b, imagecache.New(32), resolver.Options{}),
		Telemetry:   telemetry.New(telemetry.WithReporter(rep), telemetry.WithReportEvery(2)),
		Catalog:     cat,
		SEO:         seo.New(site, b),
		Placeholder: placeholder.New(placeholder.DefaultColor),
		SiteURL:     site,
	})
	r := chi.NewRouter()
	a.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{srv: srv, catalog: cat, reporter: rep, api: a}
}

func (h *harness) do(t *testing.T, method, path, body string, hdr ...string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(t, err)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestImageURL_MissThenHit(t *testing.T) {
	h := newHarness(t)
	path := "/v1/images/url?src=https://images.rescuedogs.me/rex.jpg&preset=thumbnail"

	resp, body := h.do(t, http.MethodGet, path, "", "ECT", "4g")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, body)
	assert.Equal(t, "https://images.rescuedogs.me/cdn-cgi/image/w=60,h=60,fit=cover,quality=auto/rex.jpg", got["url"])
	assert.Equal(t, "miss", got["cache"])
	assert.Equal(t, "fast", got["connection"])
	assert.Equal(t, false, got["fallback"])

	_, body = h.do(t, http.MethodGet, path, "", "ECT", "4g")
	assert.Equal(t, "hit", decode[map[string]any](t, body)["cache"])
}

func TestImageURL_SlowAndOverrides(t *testing.T) {
	h := newHarness(t)
	_, body := h.do(t, http.MethodGet, "/v1/images/url?src=https://images.rescuedogs.me/rex.jpg&w=100&fit=contain&format=webp&slow=1", "")
	got := decode[map[string]any](t, body)
	assert.Equal(t, "https://images.rescuedogs.me/cdn-cgi/image/w=100,h=300,fit=contain,quality=60,format=webp/rex.jpg", got["url"])
	assert.Equal(t, "slow", got["connection"])
}

func TestImageURL_InvalidFallsBackToPlaceholder(t *testing.T) {
	h := newHarness(t)
	_, body := h.do(t, http.MethodGet, "/v1/images/url?src=https://images.rescuedogs.me/../etc/passwd", "")
	got := decode[map[string]any](t, body)
	assert.Equal(t, imageurl.Placeholder, got["url"])
	assert.Equal(t, true, got["fallback"])
}

func TestResponsive(t *testing.T) {
	h := newHarness(t)
	_, body := h.do(t, http.MethodGet, "/v1/images/responsive?src=https://images.rescuedogs.me/rex.jpg", "")
	got := decode[imageurl.ResponsiveSet](t, body)
	assert.Contains(t, got.SrcSet, " 320w")
	assert.Contains(t, got.SrcSet, " 800w")
	assert.NotEmpty(t, got.Sizes)
}

func TestCacheStatsAndPurge(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodGet, "/v1/images/url?src=https://images.rescuedogs.me/rex.jpg", "")
	h.do(t, http.MethodGet, "/v1/images/url?src=https://images.rescuedogs.me/luna.jpg", "")

	_, body := h.do(t, http.MethodGet, "/v1/images/cache", "")
	assert.EqualValues(t, 2, decode[map[string]any](t, body)["size"])

	resp, body := h.do(t, http.MethodDelete, "/v1/images/cache?src=https://images.rescuedogs.me/rex.jpg", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, body)["purged"])

	resp, _ = h.do(t, http.MethodDelete, "/v1/images/cache", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, h.api.resolver.Cache().Len())
}

func TestTelemetry_RecordAndSnapshot(t *testing.T) {
	h := newHarness(t)
	for range 2 {
		resp, _ := h.do(t, http.MethodPost, "/v1/telemetry/errors", `{"url":"https://images.rescuedogs.me/x.jpg","preset":"hero","message":"404"}`)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
	resp, _ := h.do(t, http.MethodPost, "/v1/telemetry/loads", `{"url":"u","preset":"hero","duration_ms":3500}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/v1/telemetry/network", `{"effective_type":"3g","downlink_mbps":0.7}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	batches := h.reporter.snapshot()
	require.Len(t, batches, 1)
	assert.EqualValues(t, 2, batches[0].TotalErrors)

	_, body := h.do(t, http.MethodGet, "/v1/telemetry", "")
	snap := decode[telemetry.Snapshot](t, body)
	assert.EqualValues(t, 2, snap.TotalErrors)
	assert.EqualValues(t, 1, snap.TotalLoads)
	assert.InDelta(t, 3500, snap.AvgLoadMs, 0.001)
	assert.InDelta(t, 1.0, snap.SlowShare, 0.001)
	assert.Len(t, snap.Network, 1)
}

func TestTelemetry_RejectsBadBodies(t *testing.T) {
	h := newHarness(t)
	for _, tc := range []struct{ path, body string }{
		{"/v1/telemetry/errors", `{"url":""}`},
		{"/v1/telemetry/errors", `not json`},
		{"/v1/telemetry/loads", `{"duration_ms":-1}`},
		{"/v1/telemetry/network", `{"unknown_field":1}`},
	} {
		resp, body := h.do(t, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.body)
		assert.Equal(t, dogs.DefaultErrorMessage, decode[dogs.APIError](t, body).Message)
	}
}

func TestFavorites_ShareAndRead(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/v1/favorites/share?ids=9,3,3,27", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	share := decode[map[string]string](t, body)
	assert.Equal(t, site+"/favorites?shared="+share["code"], share["url"])

	resp, body = h.do(t, http.MethodGet, "/v1/favorites/"+share["code"], "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []int{3, 9, 27}, decode[map[string][]int](t, body)["ids"])
}

func TestFavorites_Malformed(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/v1/favorites/!!!", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dogs.APIError](t, body)
	assert.Equal(t, dogs.DefaultErrorMessage, e.Message)
	assert.Equal(t, http.StatusBadRequest, e.Status)

	resp, _ = h.do(t, http.MethodGet, "/v1/favorites/share?ids=1,x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/v1/favorites/share?ids=-4", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_, err := favorites.Decompress("!!!")
	assert.ErrorIs(t, err, favorites.ErrInvalidCode)
}

func TestSEO_Dog(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/v1/seo/dogs/rex", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dogJSONLDResponse](t, body)
	assert.Equal(t, "Rex - Boxer", got.Product.Name)
	assert.Len(t, got.Breadcrumbs.Items, 3)
	assert.Equal(t, 2, strings.Count(got.Script, `<script type="application/ld+json">`))

	resp, body = h.do(t, http.MethodGet, "/v1/seo/dogs/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Dog not found", decode[dogs.APIError](t, body).Message)
}

func TestSEO_Organization(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/v1/seo/organizations/happy-paws", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[orgJSONLDResponse](t, body)
	assert.Equal(t, "AnimalShelter", got.Shelter.Type)
	assert.Equal(t, 2, got.Shelter.Items)

	h.catalog.setFail(errors.New("connection refused"))
	resp, _ = h.do(t, http.MethodGet, "/v1/seo/organizations/other", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestSitemaps(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/sitemap.xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.Contains(t, string(body), "<loc>"+site+"/sitemaps/1.xml</loc>")

	resp, body = h.do(t, http.MethodGet, "/sitemaps/1.xml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "<loc>"+site+"/dogs/rex</loc>")
	assert.Contains(t, string(body), "<loc>"+site+"/organizations/happy-paws</loc>")

	resp, _ = h.do(t, http.MethodGet, "/sitemaps/2.xml", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// both requests above were served from one catalog fetch
	assert.EqualValues(t, 1, h.catalog.calls.Load())
}

func TestSitemaps_UpstreamDown(t *testing.T) {
	h := newHarness(t)
	h.catalog.setFail(errors.New("connection refused"))
	resp, _ := h.do(t, http.MethodGet, "/sitemap.xml", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestListDogs(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/v1/dogs?sort=name-asc", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[map[string]any](t, body)
	assert.EqualValues(t, 2, got["total"])
	list := got["dogs"].([]any)
	first := list[0].(map[string]any)
	assert.Equal(t, "Bella", first["name"])
	assert.Equal(t, imageurl.Placeholder, first["image"])
	second := list[1].(map[string]any)
	assert.Contains(t, second["image"], "w=400,h=300")

	_, body = h.do(t, http.MethodGet, "/v1/dogs?size=small&limit=1", "")
	assert.EqualValues(t, 1, decode[map[string]any](t, body)["total"])

	_, body = h.do(t, http.MethodGet, "/v1/dogs?slow=true", "")
	list = decode[map[string]any](t, body)["dogs"].([]any)
	assert.Contains(t, list[1].(map[string]any)["image"], "w=320,h=240")
}

func TestPlaceholderPNG(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodGet, "/images/dog-placeholder.png?preset=hero", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG", string(body[:4]))
}
