package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fepozopo/pixelview/pkg/codec"
	"github.com/Fepozopo/pixelview/pkg/history"
	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/pverr"
)

// Save writes the image at index i of the current state to path. When the
// target extension names a different format the image is transcoded;
// otherwise the edited bytes are written as-is.
func (s *EditSession) Save(ctx context.Context, i int, path string) error {
	s.mu.Lock()
	cur, ok := s.hist.Current()
	s.mu.Unlock()
	if !ok || i < 0 || i >= len(cur) {
		return pverr.Validation("no image at that index")
	}

	buf, err := cur[i].Resolve(ctx, s.fetcher)
	if err != nil {
		return err
	}
	out, err := s.transcodeFor(path, buf)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.log.Info().Str("path", path).Msg("image saved")
	return nil
}

// SaveAll writes every image of the current state into dir, keeping each
// original file name. Per-image failures are collected and reported
// together.
func (s *EditSession) SaveAll(ctx context.Context, dir string) error {
	s.mu.Lock()
	cur, ok := s.hist.Current()
	orig := s.original.Clone()
	s.mu.Unlock()
	if !ok {
		return pverr.Validation("nothing to save")
	}

	fails := map[int]error{}
	for i, ref := range cur {
		name := saveName(ctx, s, ref, orig, i)
		if err := s.Save(ctx, i, filepath.Join(dir, name)); err != nil {
			fails[i] = err
		}
	}
	if len(fails) > 0 {
		return &pverr.BulkError{Items: fails}
	}
	return nil
}

// Overwrite writes every file-backed image of the current state back to the
// path it was loaded from.
func (s *EditSession) Overwrite(ctx context.Context) error {
	s.mu.Lock()
	cur, ok := s.hist.Current()
	orig := s.original.Clone()
	s.mu.Unlock()
	if !ok {
		return pverr.Validation("nothing to save")
	}

	fails := map[int]error{}
	for i := range cur {
		if i >= len(orig) {
			break
		}
		path := orig[i].LocalPath()
		if path == "" {
			continue
		}
		if err := s.Save(ctx, i, path); err != nil {
			fails[i] = err
		}
	}
	if len(fails) > 0 {
		return &pverr.BulkError{Items: fails}
	}
	return nil
}

// saveName picks a target file name for a bulk save: the original file name
// when one exists, otherwise a synthetic name with the edited format's
// extension.
func saveName(ctx context.Context, s *EditSession, ref imageref.Ref, orig history.State, i int) string {
	if i < len(orig) {
		if p := orig[i].LocalPath(); p != "" {
			return filepath.Base(p)
		}
	}
	ext := ".png"
	if buf, err := ref.Resolve(ctx, s.fetcher); err == nil {
		if f := codec.DetectFormat(buf); f != "" {
			ext = "." + string(f)
		}
	}
	return fmt.Sprintf("image-%d%s", i+1, ext)
}

func (s *EditSession) transcodeFor(path string, buf []byte) ([]byte, error) {
	target := formatForExt(filepath.Ext(path))
	have := codec.DetectFormat(buf)
	if target == "" || target == have {
		return buf, nil
	}
	dec, err := codec.Decode(buf)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	out, _, err := s.encodeLocked(dec.Frames, target)
	s.mu.Unlock()
	return out, err
}

func formatForExt(ext string) codec.Format {
	switch strings.ToLower(ext) {
	case ".png":
		return codec.FormatPNG
	case ".jpg", ".jpeg":
		return codec.FormatJPEG
	case ".gif":
		return codec.FormatGIF
	case ".bmp":
		return codec.FormatBMP
	case ".webp":
		return codec.FormatWEBP
	default:
		return ""
	}
}
