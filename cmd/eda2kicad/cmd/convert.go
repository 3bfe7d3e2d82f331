package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/eda2kicad/pkg/convert"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/symbol"
	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

var (
	compID          string
	compName        string
	compDescription string
	compCategory    string
	compDatasheet   string
	compMPN         string
	compModel       string
	payloadKind     string
	symbolOut       string
	footprintOut    string
	toStdout        bool
	overwrite       bool
	useElectrical   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <payload.json>",
	Short: "Convert an EasyEDA component to a KiCad symbol and footprint",
	Long: `Convert the symbol and footprint of an EasyEDA component record.

The input is either a component record with "symbol" and "footprint"
payloads (plus optional id, mpn, description ... fields) or a bare symbol or
footprint payload selected with --kind.

By default both artifacts are added to the configured library: the symbol is
spliced into <library>/<name>.kicad_sym and the footprint written to
<library>/<name>.pretty. Use --symbol-out/--footprint-out to write elsewhere
or --stdout to print them. Symbol and footprint are converted independently;
the command fails only when neither converts.

Examples:
  eda2kicad convert C2040.json --id C2040
  eda2kicad convert fp.json --kind footprint --id C2040 --stdout
  eda2kicad convert C2040.json --id C2040 --symbol-out my.kicad_sym --footprint-out my.kicad_mod`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.StringVar(&compID, "id", "", "component id, e.g. C2040 (vendor property and override key)")
	f.StringVar(&compName, "name", "", "component value shown on the symbol (defaults to the symbol name)")
	f.StringVar(&compDescription, "description", "", "free text description (used to guess the reference prefix)")
	f.StringVar(&compCategory, "category", "", "component category (used to guess the reference prefix)")
	f.StringVar(&compDatasheet, "datasheet", "", "datasheet URL")
	f.StringVar(&compMPN, "mpn", "", "manufacturer part number (names the symbol and footprint)")
	f.StringVar(&compModel, "model", "", "3D model path written into the footprint")
	f.StringVar(&payloadKind, "kind", "", "kind of a bare payload: symbol or footprint")
	f.StringVar(&symbolOut, "symbol-out", "", "symbol library file to add the symbol to")
	f.StringVar(&footprintOut, "footprint-out", "", "file to write the footprint to")
	f.BoolVar(&toStdout, "stdout", false, "print the generated text instead of writing files")
	f.BoolVar(&overwrite, "overwrite", false, "replace existing symbols and footprints")
	f.BoolVar(&useElectrical, "pin-types", false, "read pin electrical types from the payload")
}

func runConvert(cmd *cobra.Command, args []string) error {
	comp, err := loadComponent(args[0], payloadKind)
	if err != nil {
		return err
	}
	applyComponentFlags(&comp)
	if comp.ID == "" {
		return fmt.Errorf("component id missing: pass --id or an \"id\" field")
	}

	cv, store, err := newConverter()
	if err != nil {
		return err
	}
	defer store.Close()

	lib := convert.NewLibrary(cfg.LibraryRoot, cfg.FootprintLibrary, cv.SymbolOut, logger)
	lib.Overwrite = overwrite
	install := !toStdout && symbolOut == "" && footprintOut == ""
	if install && comp.ModelPath == "" {
		cv.ModelDir = lib.ModelDir()
	}

	res := cv.Convert(comp)
	out := cmd.OutOrStdout()

	switch {
	case toStdout:
		if res.Symbol.OK() {
			fmt.Fprintln(out, res.Symbol.Text)
		}
		if res.Footprint.OK() {
			fmt.Fprint(out, res.Footprint.Text)
		}
	case install:
		symErr, fpErr := lib.Install(res)
		res.Symbol.Err = errors.Join(res.Symbol.Err, symErr)
		res.Footprint.Err = errors.Join(res.Footprint.Err, fpErr)
	default:
		if symbolOut != "" && res.Symbol.OK() {
			res.Symbol.Err = writeSymbolFile(symbolOut, res.Symbol, cv.SymbolOut)
		}
		if footprintOut != "" && res.Footprint.OK() {
			res.Footprint.Err = os.WriteFile(footprintOut, []byte(res.Footprint.Text), 0o644)
		}
	}

	if !toStdout {
		report(out, res)
	}
	if res.Symbol.Err != nil && res.Footprint.Err != nil {
		return fmt.Errorf("conversion of %s failed", comp.ID)
	}
	return nil
}

func newConverter() (*convert.Converter, placement.Store, error) {
	p, err := profile()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	cv := convert.New(p, store, logger)
	cv.FootprintLibrary = cfg.FootprintLibrary
	cv.SymbolOut.VendorProperty = cfg.VendorProperty
	cv.SymbolOut.Generator = cfg.Generator
	cv.FootOut.Generator = cfg.Generator
	cv.Symbols.UseElectricalCodes = useElectrical
	return cv, store, nil
}

// loadComponent reads a component record, or a bare payload of the given
// kind
func loadComponent(path, kind string) (convert.Component, error) {
	var comp convert.Component
	data, err := os.ReadFile(path)
	if err != nil {
		return comp, err
	}

	var rec map[string]json.RawMessage
	if json.Unmarshal(data, &rec) == nil {
		_, hasSym := rec["symbol"]
		_, hasFp := rec["footprint"]
		if hasSym || hasFp {
			if err := json.Unmarshal(data, &comp); err != nil {
				return comp, fmt.Errorf("%s: %w", path, err)
			}
			return comp, nil
		}
	}

	switch kind {
	case "symbol":
		comp.Symbol = data
	case "footprint":
		comp.Footprint = data
	case "":
		return comp, fmt.Errorf("%s has no symbol or footprint field; pass --kind for a bare payload", path)
	default:
		return comp, fmt.Errorf("unknown --kind %q (want symbol or footprint)", kind)
	}
	return comp, nil
}

func applyComponentFlags(c *convert.Component) {
	for _, f := range []struct {
		dst *string
		val string
	}{
		{&c.ID, compID},
		{&c.Name, compName},
		{&c.Description, compDescription},
		{&c.Category, compCategory},
		{&c.Datasheet, compDatasheet},
		{&c.MPN, compMPN},
		{&c.ModelPath, compModel},
	} {
		if f.val != "" {
			*f.dst = f.val
		}
	}
}

// writeSymbolFile adds the symbol to the library at path, creating it when
// it does not exist
func writeSymbolFile(path string, res convert.SymbolResult, w *symbol.Writer) error {
	lib := w.EmptyLibrary()
	if data, err := os.ReadFile(path); err == nil {
		lib = string(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if symbol.Contains(lib, res.Name) && !overwrite {
		return fmt.Errorf("%w: symbol %s", convert.ErrExists, res.Name)
	}
	lib, err := symbol.Replace(lib, res.Name, res.Text)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, []byte(lib), 0o644)
}

func report(out io.Writer, res *convert.Result) {
	fmt.Fprintf(out, "Component: %s\n", res.Name)
	if res.Symbol.Err != nil {
		fmt.Fprintf(out, "  Symbol:    FAILED %v\n", res.Symbol.Err)
	} else {
		fmt.Fprintf(out, "  Symbol:    ✓ %s (%d pins)\n", res.Symbol.Name, len(res.Symbol.Symbol.Pins))
	}
	if res.Footprint.Err != nil {
		fmt.Fprintf(out, "  Footprint: FAILED %v\n", res.Footprint.Err)
		return
	}
	fp := res.Footprint.Footprint
	fmt.Fprintf(out, "  Footprint: ✓ %s (%d pads)\n", res.Footprint.Name, len(fp.Pads))
	if fp.Model3DPath != "" {
		fmt.Fprintf(out, "  3D model:  %s %s\n", fp.Model3DPath, res.Footprint.Transform)
	}
}
