package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func routesCmd(flags *globalFlags) *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !flat {
				fmt.Fprint(out, a.Table.String())
				return nil
			}
			for pattern, n := range a.Table.All() {
				line := fmt.Sprintf("%-8s %s", n.Kind(), pattern)
				if ref, ok := n.View(); ok {
					line += "  " + ref.ID
				}
				if target, ok := n.RedirectTo(); ok {
					line += "  -> " + target
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flat, "flat", false, "print one line per route with full patterns")

	return cmd
}
