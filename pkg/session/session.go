package session

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Fepozopo/pixelview/pkg/codec"
	"github.com/Fepozopo/pixelview/pkg/history"
	"github.com/Fepozopo/pixelview/pkg/imageref"
	"github.com/Fepozopo/pixelview/pkg/pverr"
	"github.com/Fepozopo/pixelview/pkg/raster"
)

// Observer receives preview broadcasts. Sequence numbers are monotonically
// increasing per session so a slow observer can drop stale frames.
type Observer interface {
	UpdateImages(seq uint64, state history.State)
}

// GIFSettings carries the transparency options last chosen for GIF encodes.
// They stick for the rest of the session once a gif-effects pass sets them.
type GIFSettings struct {
	Transparency     bool
	TransparentColor string
}

// EditSession owns one open document set: the pristine originals, the
// undo/redo history, and the observers watching previews. All methods are
// safe for concurrent use.
type EditSession struct {
	mu        sync.Mutex
	log       zerolog.Logger
	fetcher   *imageref.Fetcher
	hist      *history.History
	original  history.State
	observers []Observer
	gifOpts   GIFSettings
	seq       atomic.Uint64
}

// New returns an empty session. Load or UpdateOriginalImages seeds it.
func New(log zerolog.Logger) *EditSession {
	return NewWithFetcher(log, imageref.NewFetcher(30*time.Second))
}

// NewWithFetcher is New with a caller-tuned remote fetcher.
func NewWithFetcher(log zerolog.Logger, f *imageref.Fetcher) *EditSession {
	return &EditSession{
		log:     log.With().Str("component", "session").Logger(),
		fetcher: f,
		hist:    history.New(),
	}
}

// Subscribe registers an observer for preview broadcasts.
func (s *EditSession) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Load replaces the session contents with the given references. The history
// is cleared and reseeded, so prior edits become unreachable.
func (s *EditSession) Load(refs ...imageref.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := history.State(refs)
	s.original = state.Clone()
	s.hist.Seed(state)
	s.log.Debug().Int("count", len(refs)).Msg("session loaded")
}

// UpdateOriginalImages is Load by another name, kept for callers that
// replace the originals mid-session (save-as, navigation).
func (s *EditSession) UpdateOriginalImages(refs []imageref.Ref) {
	s.Load(refs...)
}

// IsBulk reports whether more than one image is open.
func (s *EditSession) IsBulk() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.hist.Current()
	return ok && len(st) > 1
}

// Current returns the state under the history cursor, or nil when nothing is
// loaded.
func (s *EditSession) Current() history.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.hist.Current()
	if !ok {
		return nil
	}
	return st
}

// Apply runs one operator over every open image. In Preview mode the result
// is broadcast to observers and returned without touching history; in Commit
// mode it is appended as a new history state, truncating any redo tail.
//
// Per-image failures skip that image (its input reference stays in place)
// and are reported together in a *pverr.BulkError; the state is still
// produced and, in Commit mode, still committed when at least one image
// succeeded.
func (s *EditSession) Apply(ctx context.Context, req Request, mode Mode) (history.State, error) {
	if err := req.validate(); err != nil {
		s.log.Debug().Str("op", req.Name()).Err(err).Msg("request rejected")
		return nil, err
	}
	if mode == Preview && !req.previewable() {
		return nil, pverr.Unsupported(req.Name() + " does not support preview")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.hist.Current()
	if !ok {
		return nil, nil
	}

	out := make(history.State, len(cur))
	copy(out, cur)
	fails := map[int]error{}
	succeeded := 0

	for i, ref := range cur {
		res, err := s.applyOne(ctx, req, mode, ref)
		if err != nil {
			if pverr.IsKind(err, pverr.KindUnsupported) {
				// An animated source that cannot take this preview
				// aborts the whole pass; the caller sees null.
				s.log.Debug().Str("op", req.Name()).Int("index", i).
					Msg("animated preview unsupported")
				return nil, err
			}
			s.log.Warn().Str("op", req.Name()).Int("index", i).Err(err).
				Msg("image skipped")
			fails[i] = err
			continue
		}
		out[i] = res
		succeeded++
	}

	var bulkErr error
	if len(fails) > 0 {
		bulkErr = &pverr.BulkError{Items: fails}
	}
	if succeeded == 0 {
		return nil, bulkErr
	}

	switch mode {
	case Commit:
		s.hist.Commit(out)
		s.log.Debug().Str("op", req.Name()).Int("index", s.hist.Index()).
			Msg("state committed")
	case Preview:
		s.broadcastLocked(out)
	}
	return out, bulkErr
}

func (s *EditSession) applyOne(ctx context.Context, req Request, mode Mode, ref imageref.Ref) (imageref.Ref, error) {
	buf, err := ref.Resolve(ctx, s.fetcher)
	if err != nil {
		return imageref.Ref{}, err
	}
	dec, err := codec.Decode(buf)
	if err != nil {
		return imageref.Ref{}, err
	}
	if dec.Animated && mode == Preview &&
		!codec.SupportsAnimatedFilter(req.Name()) && !req.animatedPreviewable() {
		return imageref.Ref{}, pverr.Unsupported("animated preview for " + req.Name())
	}

	frames := req.transform(dec.Frames)
	enc, outFormat, err := s.encodeLocked(frames, dec.Format)
	if err != nil {
		return imageref.Ref{}, err
	}
	return imageref.FromBytes(enc, string(outFormat)), nil
}

func (s *EditSession) encodeLocked(frames []raster.Frame, format codec.Format) ([]byte, codec.Format, error) {
	opts := codec.DefaultGIFOptions()
	if s.gifOpts.Transparency {
		if c, err := raster.ParseHexColor(s.gifOpts.TransparentColor); err == nil {
			opts.TransparentColor = &c
		}
	}
	return codec.Encode(frames, format, opts)
}

// ApplyGIFEffects re-times every animated GIF in the open set and commits
// the result. Non-GIF entries keep their position unchanged so bulk index
// alignment survives. The result is also broadcast so previews refresh.
func (s *EditSession) ApplyGIFEffects(ctx context.Context, req GIFEffectsRequest) (history.State, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.hist.Current()
	if !ok {
		return nil, nil
	}

	s.gifOpts = GIFSettings{
		Transparency:     req.Transparency,
		TransparentColor: req.TransparentColor,
	}

	out := make(history.State, len(cur))
	copy(out, cur)
	fails := map[int]error{}
	touched := 0

	for i, ref := range cur {
		buf, err := ref.Resolve(ctx, s.fetcher)
		if err != nil {
			fails[i] = err
			continue
		}
		if codec.DetectFormat(buf) != codec.FormatGIF {
			continue
		}
		dec, err := codec.Decode(buf)
		if err != nil {
			fails[i] = err
			continue
		}
		frames := raster.ResampleFrames(dec.Frames, req.Speed, req.Reverse)
		enc, outFormat, err := s.encodeLocked(frames, codec.FormatGIF)
		if err != nil {
			fails[i] = err
			continue
		}
		out[i] = imageref.FromBytes(enc, string(outFormat))
		touched++
	}

	var bulkErr error
	if len(fails) > 0 {
		bulkErr = &pverr.BulkError{Items: fails}
	}
	if touched == 0 && len(fails) > 0 {
		return nil, bulkErr
	}

	s.hist.Commit(out)
	s.broadcastLocked(out)
	s.log.Debug().Float64("speed", req.Speed).Bool("reverse", req.Reverse).
		Int("gifs", touched).Msg("gif effects committed")
	return out, bulkErr
}

// AppendHistoryState commits a state produced outside the session, such as
// a client-rendered pixelate raster.
func (s *EditSession) AppendHistoryState(refs []imageref.Ref) history.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := history.State(refs).Clone()
	s.hist.Commit(state)
	return state
}

// Undo steps the cursor back one state. It reports false at the oldest
// state, leaving the cursor in place.
func (s *EditSession) Undo() (history.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Undo()
}

// Redo steps the cursor forward one state. It reports false at the newest.
func (s *EditSession) Redo() (history.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Redo()
}

// Reset discards all edits and reseeds history with the original images.
// Undone and redone states alike become unrecoverable.
func (s *EditSession) Reset() (history.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.original == nil {
		return nil, false
	}
	s.hist.Seed(s.original.Clone())
	st, _ := s.hist.Current()
	s.log.Debug().Msg("session reset to originals")
	return st, true
}

// RevertToLastState rebroadcasts the state under the cursor, undoing any
// preview the observers may still be showing.
func (s *EditSession) RevertToLastState() history.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.hist.Current()
	if !ok {
		return nil
	}
	s.broadcastLocked(st)
	return st
}

// HistoryLen and HistoryIndex expose the cursor for UIs that gray out
// undo/redo affordances.
func (s *EditSession) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Len()
}

func (s *EditSession) HistoryIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Index()
}

// GIFOptions returns the sticky GIF encode settings.
func (s *EditSession) GIFOptions() GIFSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gifOpts
}

// SetGIFOptions primes the sticky GIF encode settings, typically from a
// persisted scratch file at startup.
func (s *EditSession) SetGIFOptions(opts GIFSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifOpts = opts
}

// Metadata extracts display metadata for every image under the cursor.
// Buffer-backed references report the display name of the corresponding
// original, since edit buffers have no name of their own.
func (s *EditSession) Metadata(ctx context.Context) ([]codec.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.hist.Current()
	if !ok {
		return nil, nil
	}

	metas := make([]codec.Metadata, 0, len(cur))
	fails := map[int]error{}
	for i, ref := range cur {
		buf, err := ref.Resolve(ctx, s.fetcher)
		if err != nil {
			fails[i] = err
			continue
		}
		name := ref.DisplayName()
		if name == "Image" && i < len(s.original) {
			name = s.original[i].DisplayName()
		}
		m, err := codec.ExtractMetadata(name, buf)
		if err != nil {
			fails[i] = err
			continue
		}
		if p := ref.LocalPath(); p != "" {
			if fi, statErr := os.Stat(p); statErr == nil {
				m.Size = fi.Size()
			}
		}
		metas = append(metas, *m)
	}
	if len(fails) > 0 {
		return metas, &pverr.BulkError{Items: fails}
	}
	return metas, nil
}

// OriginalMetadata is Metadata over the pristine originals instead of the
// cursor state.
func (s *EditSession) OriginalMetadata(ctx context.Context) ([]codec.Metadata, error) {
	s.mu.Lock()
	orig := s.original.Clone()
	s.mu.Unlock()
	if orig == nil {
		return nil, nil
	}

	metas := make([]codec.Metadata, 0, len(orig))
	fails := map[int]error{}
	for i, ref := range orig {
		buf, err := ref.Resolve(ctx, s.fetcher)
		if err != nil {
			fails[i] = err
			continue
		}
		m, err := codec.ExtractMetadata(ref.DisplayName(), buf)
		if err != nil {
			fails[i] = err
			continue
		}
		if p := ref.LocalPath(); p != "" {
			if fi, statErr := os.Stat(p); statErr == nil {
				m.Size = fi.Size()
			}
		}
		metas = append(metas, *m)
	}
	if len(fails) > 0 {
		return metas, &pverr.BulkError{Items: fails}
	}
	return metas, nil
}

func (s *EditSession) broadcastLocked(state history.State) {
	seq := s.seq.Add(1)
	for _, o := range s.observers {
		o.UpdateImages(seq, state)
	}
}
