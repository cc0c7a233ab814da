package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/session"
)

func testServer(t *testing.T) (*Server, *session.EditSession) {
	t.Helper()
	sess := session.New(zerolog.Nop())
	return New(sess, zerolog.Nop(), nil), sess
}

func loadPNG(t *testing.T, sess *session.EditSession, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{120, 120, 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	sess.Load(imageref.FromBytes(buf.Bytes(), "png"))
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("{}")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	parsed := map[string]json.RawMessage{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w, parsed
}

func images(t *testing.T, parsed map[string]json.RawMessage) []string {
	t.Helper()
	raw, ok := parsed["images"]
	if !ok {
		t.Fatalf("response has no images field: %v", parsed)
	}
	if string(raw) == "null" {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("images field: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)
	w, _ := doJSON(t, srv.Handler(), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestCommitOperationRoundTrip(t *testing.T) {
	srv, sess := testServer(t)
	loadPNG(t, sess, 10, 10)
	h := srv.Handler()

	w, parsed := doJSON(t, h, http.MethodPost, "/ops/v1/invert", "")
	if w.Code != http.StatusOK {
		t.Fatalf("invert status = %d, body %s", w.Code, w.Body.String())
	}
	imgs := images(t, parsed)
	if len(imgs) != 1 || !strings.HasPrefix(imgs[0], "data:image/") {
		t.Fatalf("images = %v", imgs)
	}
	if sess.HistoryLen() != 2 {
		t.Fatalf("history len = %d, want 2", sess.HistoryLen())
	}
}

func TestPreviewDoesNotCommit(t *testing.T) {
	srv, sess := testServer(t)
	loadPNG(t, sess, 10, 10)
	h := srv.Handler()

	w, parsed := doJSON(t, h, http.MethodPost, "/ops/v1/brightness",
		`{"brightness":1.4,"contrast":1,"realTime":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(images(t, parsed)) != 1 {
		t.Fatal("preview should return the produced state")
	}
	if sess.HistoryLen() != 1 {
		t.Fatalf("preview committed, history len = %d", sess.HistoryLen())
	}
}

func TestValidationIs400(t *testing.T) {
	srv, sess := testServer(t)
	loadPNG(t, sess, 10, 10)
	h := srv.Handler()

	w, _ := doJSON(t, h, http.MethodPost, "/ops/v1/resize",
		`{"width":0,"height":100}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	w, _ = doJSON(t, h, http.MethodPost, "/ops/v1/crop",
		`{"x":0,"y":0,"width":0,"height":50}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("crop status = %d, want 400", w.Code)
	}
}

func TestUndoRedoRoutes(t *testing.T) {
	srv, sess := testServer(t)
	loadPNG(t, sess, 10, 10)
	h := srv.Handler()

	doJSON(t, h, http.MethodPost, "/ops/v1/flipX", "")

	_, parsed := doJSON(t, h, http.MethodPost, "/ops/v1/undo", "")
	if len(images(t, parsed)) != 1 {
		t.Fatal("undo should return the prior state")
	}
	_, parsed = doJSON(t, h, http.MethodPost, "/ops/v1/undo", "")
	if images(t, parsed) != nil {
		t.Fatal("undo at the start should return null")
	}
	_, parsed = doJSON(t, h, http.MethodPost, "/ops/v1/redo", "")
	if len(images(t, parsed)) != 1 {
		t.Fatal("redo should return the later state")
	}
}

func TestEmptySessionReturnsNull(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.Handler()

	w, parsed := doJSON(t, h, http.MethodPost, "/ops/v1/invert", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if images(t, parsed) != nil {
		t.Fatal("empty session should answer null images")
	}
}

func TestUpdateOriginalImagesRoute(t *testing.T) {
	srv, sess := testServer(t)
	h := srv.Handler()

	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	uri := imageref.DataURI(buf.Bytes(), "png")

	body, err := json.Marshal(map[string][]string{"refs": {uri}})
	if err != nil {
		t.Fatal(err)
	}
	w, parsed := doJSON(t, h, http.MethodPost, "/ops/v1/images", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(images(t, parsed)) != 1 {
		t.Fatal("load should echo the seeded state")
	}
	if sess.HistoryLen() != 1 {
		t.Fatalf("history len = %d, want 1", sess.HistoryLen())
	}

	w, _ = doJSON(t, h, http.MethodPost, "/ops/v1/images", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing refs status = %d, want 400", w.Code)
	}
}

func TestMetadataRoute(t *testing.T) {
	srv, sess := testServer(t)
	loadPNG(t, sess, 6, 3)
	h := srv.Handler()

	w, parsed := doJSON(t, h, http.MethodGet, "/ops/v1/metadata", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var metas []struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	if err := json.Unmarshal(parsed["metadata"], &metas); err != nil {
		t.Fatalf("metadata field: %v", err)
	}
	if len(metas) != 1 || metas[0].Width != 6 || metas[0].Height != 3 || metas[0].Format != "png" {
		t.Fatalf("metadata = %+v", metas)
	}
}
