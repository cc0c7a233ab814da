// Package imageref models opaque references to image bytes. A reference is
// one of: a local file path (optionally with a file:/// prefix), a remote
// http(s) URL, an embedded data URI, or an in-memory buffer. References are
// never mutated; operators always produce new ones.
package imageref

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Kind discriminates the reference forms.
type Kind int

const (
	KindInvalid Kind = iota
	KindPath
	KindURL
	KindDataURI
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindURL:
		return "url"
	case KindDataURI:
		return "data-uri"
	case KindBuffer:
		return "buffer"
	}
	return "invalid"
}

// Ref is an immutable reference to image bytes.
type Ref struct {
	kind   Kind
	val    string // path, url, or full data uri
	buf    []byte // only for KindBuffer
	format string // media subtype hint for buffers (e.g. "png", "gif")
}

// Parse classifies a string reference. Strings starting with http:// or
// https:// are URLs, data: prefixes are data URIs, everything else is
// treated as a local path (a leading file:/// prefix is preserved and only
// stripped on resolution, mirroring how callers pass drag-and-drop URIs).
func Parse(s string) Ref {
	switch {
	case s == "":
		return Ref{}
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return Ref{kind: KindURL, val: s}
	case strings.HasPrefix(s, "data:"):
		return Ref{kind: KindDataURI, val: s}
	default:
		return Ref{kind: KindPath, val: s}
	}
}

// FromPath builds a path reference.
func FromPath(p string) Ref {
	return Ref{kind: KindPath, val: p}
}

// FromBytes builds an in-memory buffer reference. format is the encoded
// format of the bytes ("png", "jpeg", "gif", ...).
func FromBytes(b []byte, format string) Ref {
	return Ref{kind: KindBuffer, buf: b, format: format}
}

// Kind reports the reference form.
func (r Ref) Kind() Kind { return r.kind }

// IsZero reports whether r refers to nothing.
func (r Ref) IsZero() bool { return r.kind == KindInvalid }

// Format returns the encoded-format hint for buffer references, "" otherwise.
func (r Ref) Format() string { return r.format }

// String returns the textual form of the reference. Buffer references render
// as a data URI so they survive a round trip through string transport.
func (r Ref) String() string {
	if r.kind == KindBuffer {
		return DataURI(r.buf, r.format)
	}
	return r.val
}

// LocalPath returns the filesystem path for path references with any
// file:/// prefix stripped and URI escapes decoded, or "" for other kinds.
func (r Ref) LocalPath() string {
	if r.kind != KindPath {
		return ""
	}
	p := strings.TrimPrefix(r.val, "file:///")
	if dec, err := url.PathUnescape(p); err == nil {
		p = dec
	}
	return p
}

// DisplayName returns a human name for the reference: the base filename
// without extension for paths and URLs, "Image" for embedded data.
func (r Ref) DisplayName() string {
	switch r.kind {
	case KindPath:
		base := filepath.Base(r.LocalPath())
		return strings.TrimSuffix(base, filepath.Ext(base))
	case KindURL:
		u, err := url.Parse(r.val)
		if err != nil {
			return "Image"
		}
		base := filepath.Base(u.Path)
		if base == "." || base == "/" {
			return "Image"
		}
		return strings.TrimSuffix(base, filepath.Ext(base))
	default:
		return "Image"
	}
}

// Resolve normalizes the reference to raw bytes. Paths are read from disk,
// URLs are fetched (f must be non-nil for URL refs), data URIs are decoded in
// place, and buffers are returned as-is.
func (r Ref) Resolve(ctx context.Context, f *Fetcher) ([]byte, error) {
	switch r.kind {
	case KindPath:
		b, err := os.ReadFile(r.LocalPath())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", r.LocalPath(), err)
		}
		return b, nil
	case KindURL:
		if f == nil {
			return nil, fmt.Errorf("no fetcher configured for remote reference %s", r.val)
		}
		return f.Fetch(ctx, r.val)
	case KindDataURI:
		return decodeDataURI(r.val)
	case KindBuffer:
		return r.buf, nil
	}
	return nil, fmt.Errorf("cannot resolve empty image reference")
}

// DataURI encodes raw bytes as a base64 data URI with the given format
// subtype.
func DataURI(b []byte, format string) string {
	if format == "" {
		format = "png"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(b)
}

func decodeDataURI(s string) ([]byte, error) {
	idx := strings.Index(s, "base64,")
	if idx < 0 {
		return nil, fmt.Errorf("data uri is not base64 encoded")
	}
	b, err := base64.StdEncoding.DecodeString(s[idx+len("base64,"):])
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return b, nil
}
