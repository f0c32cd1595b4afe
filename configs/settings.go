package configs

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/logs"
	"github.com/Urethramancer/asm14/output"
	"github.com/Urethramancer/asm14/source"
)

//go:embed schema.cue
var schema string

// Filenames are searched for in every search directory.
var Filenames = []string{
	"asm14.cue",
	".asm14.cue",
}

// ConfigPath is a file given on the command line. It is loaded before
// any file found by search.
type ConfigPath string

func (Module) ConfigPath() ConfigPath {
	return ""
}

// SearchDirs are the directories searched for Filenames, in order.
type SearchDirs []string

// SearchDirs are the working directory, then the user config directory.
func (Module) SearchDirs() SearchDirs {
	var dirs SearchDirs
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	return dirs
}

func (Module) Loader(
	explicit ConfigPath,
	dirs SearchDirs,
	logger logs.Logger,
) Loader {

	var paths []string
	if explicit != "" {
		paths = append(paths, string(explicit))
	}
	for _, dir := range dirs {
		for _, filename := range Filenames {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				paths = append(paths, path)
			}
		}
	}
	if len(paths) > 0 {
		logger.Info("config file",
			"paths", paths,
		)
	}

	return NewLoader(paths, schema)
}

// Settings are the assembler settings after config files are applied.
type Settings struct {
	CodeStart int
	SourceExt string
	Glyphs    output.Glyphs
	// OutputDir is empty to write outputs next to their source.
	OutputDir string
}

// DefaultSettings apply where no config file sets a value.
var DefaultSettings = Settings{
	CodeStart: assembler.DefaultCodeStart,
	SourceExt: source.Extension,
	Glyphs:    output.DefaultGlyphs,
}

// Load reads Settings from loader over DefaultSettings.
func Load(loader Loader) (Settings, error) {
	if err := loader.Err(); err != nil {
		return Settings{}, fmt.Errorf("load config: %w", err)
	}

	s := DefaultSettings
	if v, ok := lookup[int](loader, "code_start"); ok {
		s.CodeStart = v
	}
	if v, ok := lookup[string](loader, "source_ext"); ok {
		s.SourceExt = v
	}
	if v, ok := lookup[string](loader, "glyph_one"); ok {
		s.Glyphs.One = v[0]
	}
	if v, ok := lookup[string](loader, "glyph_zero"); ok {
		s.Glyphs.Zero = v[0]
	}
	s.OutputDir = First[string](loader, "output_dir")

	if err := s.Glyphs.Validate(); err != nil {
		return Settings{}, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}

// lookup is First with a flag telling whether the path was set, so a zero
// code_start is kept.
func lookup[T any](loader Loader, path string) (T, bool) {
	for value, err := range loader.IterCueValues(path) {
		if err != nil {
			panic(err)
		}
		var v T
		if err := value.Decode(&v); err != nil {
			panic(err)
		}
		return v, true
	}
	var zero T
	return zero, false
}

// Settings panics on an invalid config. Callers wanting an error call Load.
func (Module) Settings(
	loader Loader,
) Settings {
	s, err := Load(loader)
	if err != nil {
		panic(err)
	}
	return s
}
