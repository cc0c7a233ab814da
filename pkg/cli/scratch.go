package cli

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/Fepozopo/pixelview/pkg/session"
)

// Scratch persists last-used command arguments and GIF encode options as a
// flat key/value file, keyed "<command>.<arg>". Losing the file only loses
// prompt defaults, so every accessor degrades silently.
type Scratch struct {
	path   string
	values map[string]string
}

// OpenScratch loads the scratch file at path, tolerating a missing file.
func OpenScratch(path string) *Scratch {
	values, err := godotenv.Read(path)
	if err != nil {
		values = map[string]string{}
	}
	return &Scratch{path: path, values: values}
}

// Get returns the stored value for key, or "" when unset.
func (s *Scratch) Get(key string) string {
	return s.values[key]
}

// Set stores a value for key in memory; Save writes it out.
func (s *Scratch) Set(key, value string) {
	s.values[key] = value
}

// ArgDefault resolves the prompt default for a command argument: the
// last-used value if one is stored, the spec default otherwise.
func (s *Scratch) ArgDefault(command string, arg ArgSpec) string {
	if v := s.Get(command + "." + arg.Name); v != "" {
		return v
	}
	return arg.Default
}

// RememberArgs stores the arguments of a successfully applied command.
func (s *Scratch) RememberArgs(command string, args map[string]string) {
	for name, value := range args {
		if value != "" {
			s.Set(command+"."+name, value)
		}
	}
}

// GIFSettings returns the persisted GIF encode options.
func (s *Scratch) GIFSettings() session.GIFSettings {
	return session.GIFSettings{
		Transparency:     s.Get("gif.transparency") == "true",
		TransparentColor: s.Get("gif.transparentColor"),
	}
}

// SetGIFSettings stores GIF encode options for the next run.
func (s *Scratch) SetGIFSettings(opts session.GIFSettings) {
	if opts.Transparency {
		s.Set("gif.transparency", "true")
	} else {
		s.Set("gif.transparency", "false")
	}
	s.Set("gif.transparentColor", opts.TransparentColor)
}

// Save writes the scratch values back to disk, creating parent directories
// as needed.
func (s *Scratch) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return godotenv.Write(s.values, s.path)
}
