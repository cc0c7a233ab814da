package cli

import (
	"path/filepath"
	"testing"

	"github.com/Fepozopo/pixelview/pkg/session"
)

func TestBuildRequest(t *testing.T) {
	req, err := BuildRequest("crop", map[string]string{
		"x": "10", "y": "20", "width": "50", "height": "40",
	})
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	crop, ok := req.(session.CropRequest)
	if !ok {
		t.Fatalf("crop built %T", req)
	}
	if crop.X != 10 || crop.Y != 20 || crop.Width != 50 || crop.Height != 40 {
		t.Fatalf("crop = %+v", crop)
	}

	req, err = BuildRequest("resize", map[string]string{
		"width": "200", "height": "100", "percent": "true",
	})
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	resize := req.(session.ResizeRequest)
	if resize.Width != 200 || resize.Height != 100 || !resize.Percent {
		t.Fatalf("resize = %+v", resize)
	}

	if _, err := BuildRequest("rotate", map[string]string{"degrees": "ninety"}); err == nil {
		t.Fatal("non-numeric degrees should be rejected")
	}
	if _, err := BuildRequest("nosuch", nil); err == nil {
		t.Fatal("unknown command should be rejected")
	}

	req, err = BuildRequest("flipX", nil)
	if err != nil {
		t.Fatalf("flipX: %v", err)
	}
	if _, ok := req.(session.FlipXRequest); !ok {
		t.Fatalf("flipX built %T", req)
	}
}

func TestBuildGIFEffects(t *testing.T) {
	req, err := BuildGIFEffects(map[string]string{
		"speed": "2", "reverse": "true", "transparency": "true", "transparentColor": "#00ff00",
	})
	if err != nil {
		t.Fatalf("gifEffects: %v", err)
	}
	if req.Speed != 2 || !req.Reverse || !req.Transparency || req.TransparentColor != "#00ff00" {
		t.Fatalf("gifEffects = %+v", req)
	}

	if _, err := BuildGIFEffects(map[string]string{"speed": "fast"}); err == nil {
		t.Fatal("non-numeric speed should be rejected")
	}
}

func TestCommandsHaveBuilders(t *testing.T) {
	args := map[string]string{
		"x": "0", "y": "0", "width": "50", "height": "50",
		"degrees": "90", "brightness": "1", "contrast": "1",
		"hue": "0", "saturation": "1", "lightness": "0",
		"color": "#ffffff", "blur": "1", "sharpen": "0",
		"threshold": "128", "factor": "4", "speed": "1",
	}
	for _, c := range Commands {
		if c.Name == "gifEffects" {
			if _, err := BuildGIFEffects(args); err != nil {
				t.Errorf("gifEffects: %v", err)
			}
			continue
		}
		if _, err := BuildRequest(c.Name, args); err != nil {
			t.Errorf("%s: %v", c.Name, err)
		}
	}
}

func TestScratchRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scratch.env")

	s := OpenScratch(path)
	s.RememberArgs("crop", map[string]string{"width": "50", "height": "40"})
	s.SetGIFSettings(session.GIFSettings{Transparency: true, TransparentColor: "#102030"})
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := OpenScratch(path)
	if got := reloaded.Get("crop.width"); got != "50" {
		t.Errorf("crop.width = %q, want 50", got)
	}
	spec := ArgSpec{Name: "height", Default: "100"}
	if got := reloaded.ArgDefault("crop", spec); got != "40" {
		t.Errorf("stored default = %q, want 40", got)
	}
	if got := reloaded.ArgDefault("resize", spec); got != "100" {
		t.Errorf("spec default = %q, want 100", got)
	}
	gif := reloaded.GIFSettings()
	if !gif.Transparency || gif.TransparentColor != "#102030" {
		t.Errorf("gif settings = %+v", gif)
	}
}

func TestScratchMissingFile(t *testing.T) {
	s := OpenScratch(filepath.Join(t.TempDir(), "absent.env"))
	if v := s.Get("anything"); v != "" {
		t.Errorf("missing file should read empty, got %q", v)
	}
}
