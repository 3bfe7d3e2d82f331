package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/footprint"
	"github.com/OpenTraceLab/eda2kicad/pkg/kicad/symbol"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.kicad_mod|file.kicad_sym>",
	Short: "Summarise a KiCad footprint or symbol library",
	Long: `Read a footprint file or symbol library and print what it contains.

Examples:
  eda2kicad inspect parts.pretty/LM358.kicad_mod
  eda2kicad inspect parts.kicad_sym`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".kicad_mod":
		return inspectFootprint(out, f)
	case ".kicad_sym":
		return inspectSymbols(out, f)
	}
	return fmt.Errorf("%s: unknown file type (want .kicad_mod or .kicad_sym)", args[0])
}

func inspectFootprint(out io.Writer, r io.Reader) error {
	fp, hdr, err := footprint.Read(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Footprint: %s\n", fp.Name)
	fmt.Fprintf(out, "  Version:   %s\n", hdr.Version)
	fmt.Fprintf(out, "  Generator: %s\n", hdr.Generator)
	fmt.Fprintf(out, "  Attr:      %s\n", hdr.Attr)
	fmt.Fprintf(out, "  Pads:      %d\n", len(fp.Pads))
	fmt.Fprintf(out, "  Holes:     %d\n", len(fp.Holes))
	fmt.Fprintf(out, "  Graphics:  %d lines, %d circles, %d arcs, %d polygons\n",
		len(fp.Lines), len(fp.Circles), len(fp.Arcs), len(fp.Polygons))
	if fp.Bounds != nil {
		fmt.Fprintf(out, "  Size:      %.2f x %.2f mm\n", fp.Bounds.Width(), fp.Bounds.Height())
	}
	for _, p := range fp.Pads {
		fmt.Fprintf(out, "  Pad %-4s: %s %s %.2f×%.2f mm at (%.2f, %.2f)\n",
			p.Number, p.Type, p.Shape, p.Width, p.Height, p.Position.X, p.Position.Y)
	}
	if fp.Model3DPath != "" {
		fmt.Fprintf(out, "  Model:     %s\n", fp.Model3DPath)
		fmt.Fprintf(out, "    offset %g, %g, %g  rotate %g, %g, %g  scale %g, %g, %g\n",
			fp.Model3DOffset.X, fp.Model3DOffset.Y, fp.Model3DOffset.Z,
			fp.Model3DRotation.X, fp.Model3DRotation.Y, fp.Model3DRotation.Z,
			fp.Model3DScale.X, fp.Model3DScale.Y, fp.Model3DScale.Z)
	}
	return nil
}

func inspectSymbols(out io.Writer, r io.Reader) error {
	lib, err := symbol.ReadLibrary(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Symbol library: %d symbol(s)\n", len(lib.Symbols))
	fmt.Fprintf(out, "  Version:   %s\n", lib.Version)
	fmt.Fprintf(out, "  Generator: %s\n", lib.Generator)
	for _, s := range lib.Symbols {
		ref, _ := s.Property("Reference")
		fp, _ := s.Property("Footprint")
		fmt.Fprintf(out, "  %-24s %-4s %3d pins  %s\n", s.Name, ref, len(s.Symbol.Pins), fp)
	}
	return nil
}
