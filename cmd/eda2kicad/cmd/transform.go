package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

var transformCmd = &cobra.Command{
	Use:   "transform <payload.json>",
	Short: "Show the 3D model placement of a component",
	Long: `Parse the footprint of a component and print the 3D model transform that
convert would write: the stored override when there is one, otherwise the
placement guessed from the pad layout.

Examples:
  eda2kicad transform C2040.json --id C2040
  eda2kicad transform fp.json --kind footprint --id C2040`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringVar(&compID, "id", "", "component id used as the override key")
	transformCmd.Flags().StringVar(&payloadKind, "kind", "", "kind of a bare payload: symbol or footprint")
}

func runTransform(cmd *cobra.Command, args []string) error {
	comp, err := loadComponent(args[0], payloadKind)
	if err != nil {
		return err
	}
	if compID != "" {
		comp.ID = compID
	}

	cv, store, err := newConverter()
	if err != nil {
		return err
	}
	defer store.Close()

	p, t, err := cv.Transform(comp)
	if err != nil {
		return err
	}

	source := "heuristic"
	if _, ok := p.(placement.Override); ok {
		source = "override"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Component: %s\n", placement.Key(comp.ID))
	fmt.Fprintf(out, "  Source:   %s\n", source)
	fmt.Fprintf(out, "  Offset:   %g, %g, %g\n", t.Offset.X, t.Offset.Y, t.Offset.Z)
	fmt.Fprintf(out, "  Rotation: %g, %g, %g\n", t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
	fmt.Fprintf(out, "  Scale:    %g, %g, %g\n", t.Scale.X, t.Scale.Y, t.Scale.Z)
	return nil
}
