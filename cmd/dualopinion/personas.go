package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/dualopinion/internal/app"
)

func newPersonasCommand(c *cli) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "personas",
		Short: "List the configured personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := app.Build(cmd.Context(), c.cfg, app.Options{Logger: c.logger})
			if err != nil {
				return err
			}
			defer e.Close()

			personas := e.Registry.All()
			if activeOnly {
				personas = e.Registry.Active()
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTYLE\tACTIVE")
			for _, p := range personas {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", p.ID, p.DisplayName(), p.ReasoningStyle, p.Active)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only list active personas")
	return cmd
}
