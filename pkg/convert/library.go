package convert

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/symbol"
)

// ErrExists is returned when an artifact is already in the library and
// overwriting is off
var ErrExists = errors.New("convert: already in library")

// Library is an on-disk KiCad library: Root/Name.kicad_sym for symbols,
// Root/Name.pretty for footprints and Root/Name.3dshapes for models.
type Library struct {
	Root      string
	Name      string
	Overwrite bool

	writer *symbol.Writer
	logger *slog.Logger
}

// NewLibrary describes the library called name under root. w renders the
// header of a new symbol library.
func NewLibrary(root, name string, w *symbol.Writer, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Library{Root: root, Name: name, writer: w, logger: logger}
}

// SymbolPath returns the symbol library file
func (l *Library) SymbolPath() string {
	return filepath.Join(l.Root, l.Name+".kicad_sym")
}

// FootprintDir returns the footprint library directory
func (l *Library) FootprintDir() string {
	return filepath.Join(l.Root, l.Name+".pretty")
}

// ModelDir returns the 3D model directory
func (l *Library) ModelDir() string {
	return filepath.Join(l.Root, l.Name+".3dshapes")
}

// FootprintPath returns the file a footprint called name is written to
func (l *Library) FootprintPath(name string) string {
	return filepath.Join(l.FootprintDir(), name+".kicad_mod")
}

// Ensure creates the library directories and an empty symbol library
func (l *Library) Ensure() error {
	for _, dir := range []string{l.Root, l.FootprintDir(), l.ModelDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("convert: create %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(l.SymbolPath()); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(l.SymbolPath(), []byte(l.writer.EmptyLibrary()), 0o644); err != nil {
			return fmt.Errorf("convert: create symbol library: %w", err)
		}
		l.logger.Info("created symbol library", "path", l.SymbolPath())
	}
	return nil
}

// Install writes the converted artifacts of res. The two artifacts are
// installed independently; the returned errors are per artifact and nil
// for an artifact that was not converted.
func (l *Library) Install(res *Result) (symErr, fpErr error) {
	if err := l.Ensure(); err != nil {
		return err, err
	}
	if res.Symbol.OK() {
		symErr = l.InstallSymbol(res.Symbol.Name, res.Symbol.Text)
	}
	if res.Footprint.OK() {
		fpErr = l.InstallFootprint(res.Footprint.Name, res.Footprint.Text)
	}
	return symErr, fpErr
}

// InstallSymbol splices block into the symbol library
func (l *Library) InstallSymbol(name, block string) error {
	data, err := os.ReadFile(l.SymbolPath())
	if err != nil {
		return fmt.Errorf("convert: read symbol library: %w", err)
	}
	lib := string(data)
	if symbol.Contains(lib, name) {
		if !l.Overwrite {
			return fmt.Errorf("%w: symbol %s", ErrExists, name)
		}
		l.logger.Info("replacing symbol", "name", name)
	}
	lib, err = symbol.Replace(lib, name, block)
	if err != nil {
		return fmt.Errorf("convert: %s: %w", l.SymbolPath(), err)
	}
	if err := os.WriteFile(l.SymbolPath(), []byte(lib), 0o644); err != nil {
		return fmt.Errorf("convert: write symbol library: %w", err)
	}
	l.logger.Info("symbol added", "name", name, "library", l.SymbolPath())
	return nil
}

// InstallFootprint writes text as the footprint file for name
func (l *Library) InstallFootprint(name, text string) error {
	path := l.FootprintPath(name)
	if _, err := os.Stat(path); err == nil && !l.Overwrite {
		return fmt.Errorf("%w: footprint %s", ErrExists, name)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("convert: write footprint: %w", err)
	}
	l.logger.Info("footprint added", "name", name, "path", path)
	return nil
}

// RemoveSymbol deletes a symbol from the library. It reports whether the
// symbol was present.
func (l *Library) RemoveSymbol(name string) (bool, error) {
	data, err := os.ReadFile(l.SymbolPath())
	if err != nil {
		return false, fmt.Errorf("convert: read symbol library: %w", err)
	}
	lib := string(data)
	if !symbol.Contains(lib, name) {
		return false, nil
	}
	if err := os.WriteFile(l.SymbolPath(), []byte(symbol.Remove(lib, name)), 0o644); err != nil {
		return false, fmt.Errorf("convert: write symbol library: %w", err)
	}
	return true, nil
}
