package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/eda2kicad/pkg/placement"
)

var (
	ovOffset   string
	ovRotation string
	ovScale    string
)

var overrideCmd = &cobra.Command{
	Use:   "override",
	Short: "Manage 3D model placement overrides",
	Long: `Overrides replace the computed 3D model placement of a component. They are
stored with the library and survive re-conversion.`,
}

var overrideSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Set or update an override",
	Long: `Set the offset, rotation or scale of a component's 3D model. Only the
given fields change; the others keep their stored value.

Examples:
  eda2kicad override set C2040 --rotation 0,0,90
  eda2kicad override set C2040 --offset 0,0.5,0 --scale 1,1,1`,
	Args: cobra.ExactArgs(1),
	RunE: runOverrideSet,
}

var overrideRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an override",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideRemove,
}

var overrideShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the override of a component",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideShow,
}

var overrideListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all overrides",
	Args:  cobra.NoArgs,
	RunE:  runOverrideList,
}

var overrideExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export all overrides to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverrideExport,
}

var overrideImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Merge overrides from a spreadsheet",
	Long: `Merge overrides from the first sheet of a spreadsheet laid out like the
export: id, offset_x..z, rotation_x..z, scale_x..z. A field is applied only
when all three of its cells are filled.`,
	Args: cobra.ExactArgs(1),
	RunE: runOverrideImport,
}

func init() {
	rootCmd.AddCommand(overrideCmd)
	overrideCmd.AddCommand(overrideSetCmd, overrideRemoveCmd, overrideShowCmd,
		overrideListCmd, overrideExportCmd, overrideImportCmd)

	overrideSetCmd.Flags().StringVar(&ovOffset, "offset", "", "model offset x,y,z in mm")
	overrideSetCmd.Flags().StringVar(&ovRotation, "rotation", "", "model rotation x,y,z in degrees")
	overrideSetCmd.Flags().StringVar(&ovScale, "scale", "", "model scale x,y,z")
}

// triple parses an "x,y,z" flag value; empty means not given
func triple(name, value string) (*placement.Triple, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("--%s needs three values x,y,z, got %q", name, value)
	}
	var t placement.Triple
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		t[i] = v
	}
	return &t, nil
}

func runOverrideSet(cmd *cobra.Command, args []string) error {
	var o placement.Override
	var err error
	if o.Offset, err = triple("offset", ovOffset); err != nil {
		return err
	}
	if o.Rotation, err = triple("rotation", ovRotation); err != nil {
		return err
	}
	if o.Scale, err = triple("scale", ovScale); err != nil {
		return err
	}
	if o.Empty() {
		return fmt.Errorf("nothing to set: pass --offset, --rotation or --scale")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Set(args[0], o); err != nil {
		return err
	}
	merged, err := store.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", placement.Key(args[0]), merged)
	return nil
}

func runOverrideRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.Get(args[0]); errors.Is(err, placement.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: no override\n", placement.Key(args[0]))
		return nil
	}
	if err := store.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: override removed\n", placement.Key(args[0]))
	return nil
}

func runOverrideShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	o, err := store.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Override: %s\n", placement.Key(args[0]))
	for _, f := range []struct {
		name string
		v    *placement.Triple
	}{{"Offset", o.Offset}, {"Rotation", o.Rotation}, {"Scale", o.Scale}} {
		if f.v == nil {
			fmt.Fprintf(out, "  %-9s (default)\n", f.name+":")
			continue
		}
		fmt.Fprintf(out, "  %-9s %g, %g, %g\n", f.name+":", f.v[0], f.v[1], f.v[2])
	}
	return nil
}

func runOverrideList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d override(s)\n", len(entries))
	for _, id := range placement.SortedKeys(entries) {
		fmt.Fprintf(out, "%-12s %s\n", id, entries[id])
	}
	return nil
}

func runOverrideExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := placement.Export(store, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d override(s) to %s\n", n, args[0])
	return nil
}

func runOverrideImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := placement.Import(store, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d override(s) from %s\n", n, args[0])
	return nil
}
