package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(flags *globalFlags) *cobra.Command {
	var (
		strict  bool
		preload bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the route configuration",
		Long: `Build the route table and report every configuration error.

Unreachable routes (shadowed by an earlier sibling) are reported as
warnings; --strict turns them into a failure. --preload also loads every
view once, which checks that the view source can serve them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, w := range a.Warnings {
				warn(out, "%s", w)
			}
			if strict && len(a.Warnings) > 0 {
				return fmt.Errorf("%d unreachable route(s)", len(a.Warnings))
			}

			views := a.Table.Views()
			if preload {
				if err := a.Cache.Preload(context.Background(), views...); err != nil {
					return err
				}
				info(out, "loaded %d views", a.Cache.Len())
			}

			source := "built-in routes"
			if p := a.Config.Path(); p != "" {
				source = p
			}
			n := 0
			for range a.Table.All() {
				n++
			}
			success(out, "%s: %d routes, %d views", source, n, len(views))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unreachable routes")
	cmd.Flags().BoolVar(&preload, "preload", false, "load every view")

	return cmd
}
