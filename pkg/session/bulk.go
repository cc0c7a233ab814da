package session

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/pverr"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
}

// IsImagePath reports whether the path carries a loadable image extension.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImages returns references for every image file directly inside dir,
// newest first. This is the bulk-load entry point.
func ListImages(dir string) ([]imageref.Ref, error) {
	paths, err := listImagePaths(dir)
	if err != nil {
		return nil, err
	}
	refs := make([]imageref.Ref, 0, len(paths))
	for _, p := range paths {
		refs = append(refs, imageref.FromPath(p))
	}
	return refs, nil
}

// Next replaces the session contents with the image that follows the current
// one in its directory, newest first. It reports false in bulk mode, when
// the current image is not file-backed, or when already at the end.
func (s *EditSession) Next() (imageref.Ref, bool) {
	return s.step(1)
}

// Previous is Next in the other direction.
func (s *EditSession) Previous() (imageref.Ref, bool) {
	return s.step(-1)
}

func (s *EditSession) step(delta int) (imageref.Ref, bool) {
	s.mu.Lock()
	if len(s.original) != 1 {
		s.mu.Unlock()
		return imageref.Ref{}, false
	}
	cur := s.original[0].LocalPath()
	s.mu.Unlock()
	if cur == "" {
		return imageref.Ref{}, false
	}

	paths, err := listImagePaths(filepath.Dir(cur))
	if err != nil {
		s.log.Warn().Err(err).Msg("directory listing failed")
		return imageref.Ref{}, false
	}
	idx := -1
	for i, p := range paths {
		if p == cur {
			idx = i
			break
		}
	}
	if idx < 0 || idx+delta < 0 || idx+delta >= len(paths) {
		return imageref.Ref{}, false
	}

	ref := imageref.FromPath(paths[idx+delta])
	s.Load(ref)
	return ref, true
}

// listImagePaths lists image files in dir sorted by modification time,
// newest first, to match the order a viewer shows a folder in.
func listImagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pverr.Validation("cannot read directory " + dir)
	}
	type fileAt struct {
		path string
		mod  int64
	}
	files := make([]fileAt, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsImagePath(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileAt{
			path: filepath.Join(dir, e.Name()),
			mod:  info.ModTime().UnixNano(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod > files[j].mod
		}
		return files[i].path < files[j].path
	})
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
