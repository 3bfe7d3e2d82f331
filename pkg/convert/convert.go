// Package convert runs the EasyEDA to KiCad pipeline for one component:
// payload decoding, shape parsing, 3D placement and serialization.
package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/OpenTraceLab/eda2kicad/pkg/easyeda"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/footprint"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/format"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/symbol"
	"github.com/OpenTraceLab/eda2kicad/pkg/model"
	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

var (
	// ErrNoGeometry means the payload decoded but produced nothing drawable.
	ErrNoGeometry = errors.New("convert: no geometry")
	// ErrNoPayload means the component carries no payload for an artifact.
	ErrNoPayload = errors.New("convert: no payload")
	// ErrPayload is returned for payloads that are not structured records.
	ErrPayload = easyeda.ErrPayload
)

// ModelExtension is appended to the component id to name its 3D model
const ModelExtension = ".step"

// Component is one part to convert. Symbol and Footprint hold the raw
// EasyEDA records; either may be empty.
type Component struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"` // symbol Value
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Datasheet   string          `json:"datasheet,omitempty"`
	MPN         string          `json:"mpn,omitempty"`
	ModelPath   string          `json:"model_path,omitempty"`
	Symbol      json.RawMessage `json:"symbol,omitempty"`
	Footprint   json.RawMessage `json:"footprint,omitempty"`
}

var (
	nonNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\-.]`)
	underscores  = regexp.MustCompile(`_+`)
)

// ComponentName is the name symbol and footprint are stored under: the
// MPN, or the id when there is none, with unsafe characters replaced.
func ComponentName(c Component) string {
	name := c.MPN
	if name == "" {
		name = c.ID
	}
	name = nonNameChars.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return c.ID
	}
	return name
}

// SanitizeName makes name safe as a symbol or footprint identifier
func SanitizeName(name string) string {
	return format.SanitizeName(name, format.FallbackSymbolName)
}

// SymbolResult is the outcome of converting the symbol payload
type SymbolResult struct {
	Name   string
	Symbol *model.Symbol
	// Text is the symbol block, indented for a library body.
	Text string
	Err  error
}

// OK reports whether the symbol converted
func (r *SymbolResult) OK() bool { return r.Err == nil && r.Text != "" }

// FootprintResult is the outcome of converting the footprint payload
type FootprintResult struct {
	Name      string
	Footprint *model.Footprint
	// Text is a complete .kicad_mod file.
	Text      string
	Placement placement.Placement
	Transform placement.Transform
	Err       error
}

// OK reports whether the footprint converted
func (r *FootprintResult) OK() bool { return r.Err == nil && r.Text != "" }

// Result holds independent symbol and footprint outcomes
type Result struct {
	Name      string
	Symbol    SymbolResult
	Footprint FootprintResult
}

// Err returns nil when at least one artifact converted, and both errors
// otherwise.
func (r *Result) Err() error {
	if r.Symbol.OK() || r.Footprint.OK() {
		return nil
	}
	return errors.Join(r.Symbol.Err, r.Footprint.Err)
}

// Converter holds the parsers, writers and placement calculator used for
// every conversion.
type Converter struct {
	// FootprintLibrary is the library nickname used in symbol Footprint
	// properties.
	FootprintLibrary string
	// ModelDir is where 3D models live. When set, footprints whose payload
	// references a 3D package get ModelDir/<ID>.step as model path.
	ModelDir string

	Symbols    *easyeda.SymbolParser
	Footprints *easyeda.FootprintParser
	SymbolOut  *symbol.Writer
	FootOut    *footprint.Writer
	Placement  *placement.Calculator

	logger *slog.Logger
}

// New creates a converter for profile. A nil store disables overrides and
// a nil logger discards.
func New(profile format.Profile, store placement.Store, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{
		Symbols:    easyeda.NewSymbolParser(logger),
		Footprints: easyeda.NewFootprintParser(logger),
		SymbolOut:  symbol.NewWriter(profile),
		FootOut:    footprint.NewWriter(profile),
		Placement:  placement.NewCalculator(store, logger),
		logger:     logger,
	}
}

// Convert converts both artifacts of c. A failure of one never prevents
// the other.
func (cv *Converter) Convert(c Component) *Result {
	name := ComponentName(c)
	res := &Result{Name: name}
	res.Symbol = cv.convertSymbol(c, name)
	res.Footprint = cv.convertFootprint(c, name)

	log := cv.logger.With("id", c.ID, "name", name)
	if res.Symbol.Err != nil {
		log.Error("symbol conversion failed", "err", res.Symbol.Err)
	}
	if res.Footprint.Err != nil {
		log.Error("footprint conversion failed", "err", res.Footprint.Err)
	}
	return res
}

// ConvertSymbol converts only the symbol of c
func (cv *Converter) ConvertSymbol(c Component) SymbolResult {
	return cv.convertSymbol(c, ComponentName(c))
}

// ConvertFootprint converts only the footprint of c
func (cv *Converter) ConvertFootprint(c Component) FootprintResult {
	return cv.convertFootprint(c, ComponentName(c))
}

func (cv *Converter) convertSymbol(c Component, name string) SymbolResult {
	res := SymbolResult{Name: name}
	sym, err := cv.parseSymbol(c, name)
	if err != nil {
		res.Err = fmt.Errorf("convert: symbol %s: %w", name, err)
		return res
	}
	res.Symbol = sym
	res.Name = symbol.Name(sym, c.ID)
	res.Text = cv.SymbolOut.WriteSymbol(cv.entry(c, sym, name))
	return res
}

func (cv *Converter) parseSymbol(c Component, name string) (*model.Symbol, error) {
	if len(c.Symbol) == 0 {
		return nil, ErrNoPayload
	}
	payload, err := easyeda.DecodePayload(c.Symbol)
	if err != nil {
		return nil, err
	}
	sym := cv.Symbols.Parse(name, payload.Shapes)
	if !sym.HasGeometry() {
		return nil, ErrNoGeometry
	}
	sym.ReferencePrefix = model.GuessReferencePrefix(c.Description, c.Category)
	if c.Description != "" {
		sym.Properties["description"] = c.Description
	}
	return sym, nil
}

// entry describes sym for the symbol writer; the footprint property
// points at the footprint written under the same name.
func (cv *Converter) entry(c Component, sym *model.Symbol, name string) symbol.Entry {
	return symbol.Entry{
		Symbol:           sym,
		VendorID:         c.ID,
		FootprintLibrary: cv.FootprintLibrary,
		FootprintName:    format.SanitizeName(name, format.FallbackFootprintName),
		Datasheet:        c.Datasheet,
		MPN:              c.MPN,
		Value:            c.Name,
	}
}

func (cv *Converter) convertFootprint(c Component, name string) FootprintResult {
	res := FootprintResult{Name: name}
	fp, payload, err := cv.parseFootprint(c, name)
	if err != nil {
		res.Err = fmt.Errorf("convert: footprint %s: %w", name, err)
		return res
	}
	res.Footprint = fp
	res.Name = footprint.Name(fp)

	fp.Model3DPath = cv.modelPath(c, payload)
	if fp.Model3DPath != "" {
		p, err := cv.Placement.Placement(c.ID, fp)
		if err != nil {
			res.Err = fmt.Errorf("convert: footprint %s: %w", name, err)
			return res
		}
		res.Placement = p
		res.Transform = placement.Resolve(p)
		res.Transform.Apply(fp)
	}

	res.Text = cv.FootOut.WriteFootprint(fp)
	return res
}

func (cv *Converter) parseFootprint(c Component, name string) (*model.Footprint, *easyeda.Payload, error) {
	if len(c.Footprint) == 0 {
		return nil, nil, ErrNoPayload
	}
	payload, err := easyeda.DecodePayload(c.Footprint)
	if err != nil {
		return nil, nil, err
	}
	fp := cv.Footprints.Parse(name, payload.Shapes)
	if !fp.HasGeometry() {
		return nil, nil, ErrNoGeometry
	}
	return fp, payload, nil
}

func (cv *Converter) modelPath(c Component, payload *easyeda.Payload) string {
	if c.ModelPath != "" {
		return c.ModelPath
	}
	if cv.ModelDir == "" || payload == nil || payload.Model == nil || c.ID == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Join(cv.ModelDir, placement.Key(c.ID)+ModelExtension))
}

// Transform resolves the 3D placement for the footprint of c without
// writing anything.
func (cv *Converter) Transform(c Component) (placement.Placement, placement.Transform, error) {
	fp, _, err := cv.parseFootprint(c, ComponentName(c))
	if err != nil {
		return nil, placement.Identity(), fmt.Errorf("convert: footprint: %w", err)
	}
	p, err := cv.Placement.Placement(c.ID, fp)
	if err != nil {
		return nil, placement.Identity(), err
	}
	return p, placement.Resolve(p), nil
}
