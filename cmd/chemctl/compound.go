package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tntchem/devhub/client"
	"github.com/tntchem/devhub/store"
)

func newListCmd() *cobra.Command {
	var (
		search string
		minPKa string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List compounds, with optional name and minimum-pKa filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cache := openCache()
			if cache != nil {
				defer cache.Close()
			}

			vm := client.NewViewModel(newClient(), cache, 0, nil)
			defer vm.Stop()
			vm.SetFilters(search, minPKa)

			if err := vm.Load(cmd.Context()); err != nil {
				// Fall back to the cached list when the server is unreachable.
				if rerr := vm.Restore(cmd.Context()); rerr != nil || len(vm.State().Compounds) == 0 {
					return err
				}
				fmt.Fprintln(os.Stderr, client.LoadFailedAlert+"; showing cached results")
			}

			state := vm.State()
			printCompounds(cmd, state.Compounds)
			if !state.SeedPresent {
				fmt.Fprintf(os.Stderr, "Note: %s is not in the displayed list; run 'chemctl seed' to insert it.\n", store.SeedCompoundName)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name substring")
	cmd.Flags().StringVar(&minPKa, "min-pka", "", "Keep compounds with pKa at least this value")
	return cmd
}

func newSaveCmd() *cobra.Command {
	var form store.CompoundForm
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update a compound by name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			compound, err := newClient().SaveCompound(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", compound.Name, compound.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "Compound name (required)")
	cmd.Flags().StringVar(&form.Formula, "formula", "", "Molecular formula")
	cmd.Flags().StringVar(&form.PKa, "pka", "", "pKa value")
	cmd.Flags().StringVar(&form.Energy, "energy", "", "Energy in eV")
	cmd.Flags().StringVar(&form.Geometry, "geometry", "", "Geometry description")
	cmd.Flags().StringVar(&form.Notes, "notes", "", "Synthesis notes")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the well-known " + store.SeedCompoundName + " record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			compound, err := newClient().InsertSeed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s (%s)\n", compound.Name, compound.ID)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the compound list to CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			compounds, err := newClient().ListCompounds(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.ExportCSV(out, compounds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d compounds to %s\n", len(compounds), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", client.CSVFileName, "Output file path")
	return cmd
}

func newChartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chart",
		Short: "Print the pKa/energy scatter points",
		RunE: func(cmd *cobra.Command, _ []string) error {
			compounds, err := newClient().ListCompounds(cmd.Context())
			if err != nil {
				return err
			}
			points := client.ChartPoints(compounds)
			if len(points) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No compounds have both pKa and energy values.")
				return nil
			}
			for _, p := range points {
				fmt.Fprintln(cmd.OutOrStdout(), p.TooltipLabel())
			}
			return nil
		},
	}
}

func printCompounds(cmd *cobra.Command, compounds []*store.Compound) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFORMULA\tPKA\tENERGY_EV\tSUPERBASE\tGEOMETRY")
	for _, c := range compounds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.Name,
			deref(c.Formula),
			floatStr(c.Properties.PKa),
			floatStr(c.Properties.EnergyEV),
			boolStr(c.Properties.IsSuperbase),
			deref(c.Properties.Geometry),
		)
	}
	w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func floatStr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func boolStr(b *bool) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%t", *b)
}
