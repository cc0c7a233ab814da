package imageref

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestParseKinds(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"https://example.com/cat.png", KindURL},
		{"http://example.com/cat.png", KindURL},
		{"data:image/png;base64,AAAA", KindDataURI},
		{"/home/user/photo.jpg", KindPath},
		{"file:///C:/photos/photo.jpg", KindPath},
		{"", KindInvalid},
	}
	for _, c := range cases {
		if got := Parse(c.in).Kind(); got != c.want {
			t.Errorf("Parse(%q).Kind() = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLocalPathStripsFileURI(t *testing.T) {
	r := Parse("file:///tmp/some%20photo.png")
	if got := r.LocalPath(); got != "/tmp/some photo.png" {
		t.Fatalf("LocalPath() = %q", got)
	}
	// plain paths pass through untouched
	if got := Parse("/tmp/a.png").LocalPath(); got != "/tmp/a.png" {
		t.Fatalf("plain LocalPath() = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	if got := Parse("/photos/vacation.jpeg").DisplayName(); got != "vacation" {
		t.Errorf("path DisplayName = %q", got)
	}
	if got := Parse("https://example.com/img/cat.png").DisplayName(); got != "cat" {
		t.Errorf("url DisplayName = %q", got)
	}
	if got := Parse("data:image/png;base64,AAAA").DisplayName(); got != "Image" {
		t.Errorf("data DisplayName = %q", got)
	}
}

func TestResolveDataURI(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
	got, err := Parse(uri).Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Resolve returned %v, want %v", got, payload)
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "img.bin")
	if err := os.WriteFile(p, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FromPath(p).Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Resolve returned %q", got)
	}
}

func TestBufferRoundTrip(t *testing.T) {
	r := FromBytes([]byte{1, 2, 3}, "gif")
	b, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) {
		t.Fatalf("buffer bytes changed: %v", b)
	}
	// the string form is a data uri that resolves back to the same bytes
	back, err := Parse(r.String()).Resolve(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, []byte{1, 2, 3}) {
		t.Fatalf("data uri round trip returned %v", back)
	}
}
