package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
	"github.com/vango-dev/vroute/pkg/router"
	"github.com/vango-dev/vroute/pkg/view"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var (
		load     bool
		noFollow bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route table",
		Long: `Resolve a path and print the matched layout and view chain.

Redirects are followed unless --no-follow is set. With --load the path is
navigated: every view of the chain is loaded and the loaded layers are
printed, as a renderer would receive them.`,
		Example: `  vroute resolve /
  vroute resolve /unknown/deeply/nested --load
  vroute resolve / --no-follow`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, flags)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := args[0]

			if load {
				nav := a.NewNavigator(&printRenderer{w: out})
				_, err := nav.Navigate(cmd.Context(), path)
				return err
			}

			if noFollow {
				printResult(out, a.Resolver.Resolve(path))
				return nil
			}
			res, err := a.Resolver.Follow(path)
			if err != nil {
				return err
			}
			printResult(out, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&load, "load", false, "load the matched views")
	cmd.Flags().BoolVar(&noFollow, "no-follow", false, "stop at the first redirect")

	return cmd
}

func printResult(w io.Writer, res router.Result) {
	switch res := res.(type) {
	case *router.Match:
		fmt.Fprintf(w, "match %s\n", location(res.Path, res.Query, res.Fragment))
		if res.PathErr != nil {
			warn(w, "%v", res.PathErr)
		}
		printRedirects(w, res.Redirects)
		for i, step := range res.Chain {
			line := step.Node.Pattern()
			if ref, ok := step.Node.View(); ok {
				line = ref.ID + "  (" + line + ")"
			}
			if step.Captured {
				line += fmt.Sprintf("  %s=%q", step.Node.Name(), step.Remainder)
			}
			fmt.Fprintf(w, "  %s%s\n", strings.Repeat("  ", i), line)
		}
	case *router.Redirect:
		fmt.Fprintf(w, "redirect %s -> %s\n", res.From, res.To)
	case *router.NotFound:
		fmt.Fprintf(w, "not found %s\n", res.Path)
		if res.Err != nil {
			info(w, "%v", res.Err)
		}
	}
}

func printRedirects(w io.Writer, redirects []string) {
	if len(redirects) > 0 {
		info(w, "via %s", strings.Join(redirects, " -> "))
	}
}

func location(path, query, fragment string) string {
	if query != "" {
		path += "?" + query
	}
	if fragment != "" {
		path += "#" + fragment
	}
	return path
}

// printRenderer prints mounted navigations.
type printRenderer struct {
	w io.Writer
}

func (p *printRenderer) Mount(ctx context.Context, v *router.View) error {
	if v.NotFound {
		fmt.Fprintf(p.w, "not found %s\n", v.Path)
		return nil
	}
	fmt.Fprintf(p.w, "mount %s\n", location(v.Path, v.Query, v.Fragment))
	printRedirects(p.w, v.Redirects)
	for i, l := range v.Layers {
		line := l.ID
		if m, ok := l.Unit.(*view.Module); ok {
			line += fmt.Sprintf("  %s, %d bytes", m.ContentType, len(m.Body))
		}
		fmt.Fprintf(p.w, "  %s%s\n", strings.Repeat("  ", i), line)
	}
	if len(v.Params) > 0 {
		keys := make([]string, 0, len(v.Params))
		for k := range v.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			info(p.w, "%s=%q", k, v.Params[k])
		}
	}
	return nil
}

func (p *printRenderer) MountError(ctx context.Context, path string, err error) error {
	fmt.Fprintln(p.w, errors.FromError(err, "R040").FormatCompact())
	return nil
}
