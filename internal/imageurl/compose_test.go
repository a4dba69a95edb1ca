package imageurl

import (
	"strings"
	"testing"
)

const cdn = "images.rescuedogs.me"

func TestCompose_SplicesSegment(t *testing.T) {
	b := NewBuilder(cdn, 60)
	got := b.Compose("https://images.rescuedogs.me/dogs/rex.jpg?v=2", "w=400,h=300,fit=cover,quality=auto")
	want := "https://images.rescuedogs.me/cdn-cgi/image/w=400,h=300,fit=cover,quality=auto/dogs/rex.jpg?v=2"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	b := NewBuilder(cdn, 60)
	src := "https://images.rescuedogs.me/dogs/rex.jpg"
	params := BuildParams(Hero, Options{}, false, 60)
	once := b.Compose(src, params)
	twice := b.Compose(once, params)
	if once != twice {
		t.Fatalf("compose not idempotent:\n once=%s\ntwice=%s", once, twice)
	}
	if strings.Count(twice, Segment) != 1 {
		t.Fatalf("segment applied more than once: %s", twice)
	}

	t1, _ := b.Transform(src, Catalog, Options{}, false)
	t2, out := b.Transform(t1, Catalog, Options{}, false)
	if t1 != t2 || out != OutcomeUnchanged {
		t.Fatalf("transform not idempotent: %s -> %s (%s)", t1, t2, out)
	}
}

func TestCompose_InvalidReturnsOriginal(t *testing.T) {
	b := NewBuilder(cdn, 60)
	for _, in := range []string{
		"https://other.org/rex.jpg",
		"https://images.rescuedogs.me/../rex.jpg",
		"not a url",
	} {
		if got := b.Compose(in, "w=1"); got != in {
			t.Errorf("Compose(%q)=%q want original", in, got)
		}
	}
}

func TestTransform_Fallbacks(t *testing.T) {
	b := NewBuilder(cdn, 60)
	cases := []struct {
		in      string
		want    string
		outcome Outcome
	}{
		{"", Placeholder, OutcomePlaceholder},
		{"   ", Placeholder, OutcomePlaceholder},
		{"javascript:alert(1)", Placeholder, OutcomePlaceholder},
		{"https://images.rescuedogs.me/%2e%2e/x.jpg", Placeholder, OutcomePlaceholder},
		{"https://shelter.example.org/rex.jpg", "https://shelter.example.org/rex.jpg", OutcomePassthrough},
		{"/images/local.png", "/images/local.png", OutcomePassthrough},
		{"//evil.example.com/x.png", Placeholder, OutcomePlaceholder},
		{"javascript:alert(1)//cdn-cgi/image/x", Placeholder, OutcomePlaceholder},
		{"data:text/html,<b>/cdn-cgi/image/</b>", Placeholder, OutcomePlaceholder},
		{"ftp://evil.example/cdn-cgi/image/w=1/a.jpg", Placeholder, OutcomePlaceholder},
		{"not a url /cdn-cgi/image/ at all", Placeholder, OutcomePlaceholder},
		{"https://images.rescuedogs.me/cdn-cgi/image/w=1/../x.jpg", Placeholder, OutcomePlaceholder},
		{"/cdn-cgi/image/w=60/dogs/rex.jpg", "/cdn-cgi/image/w=60/dogs/rex.jpg", OutcomeUnchanged},
	}
	for _, tc := range cases {
		got, out := b.Transform(tc.in, Catalog, Options{}, false)
		if got != tc.want || out != tc.outcome {
			t.Errorf("Transform(%q)=(%q,%s) want (%q,%s)", tc.in, got, out, tc.want, tc.outcome)
		}
	}
}

func TestTransform_SlowConnection(t *testing.T) {
	b := NewBuilder(cdn, 45)
	got, out := b.Transform("https://images.rescuedogs.me/rex.jpg", Thumbnail, Options{}, true)
	if out != OutcomeTransformed {
		t.Fatalf("outcome=%s", out)
	}
	if !strings.Contains(got, "quality=45") {
		t.Fatalf("slow quality not applied: %s", got)
	}
}

func TestNewBuilder_ClampsSlowQuality(t *testing.T) {
	b := NewBuilder(cdn, 0)
	got, _ := b.Transform("https://images.rescuedogs.me/rex.jpg", Hero, Options{}, true)
	if !strings.Contains(got, "quality=60") {
		t.Fatalf("default slow quality not used: %s", got)
	}
}
