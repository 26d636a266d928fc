// Command vroute inspects, resolves and serves vroute route tables.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┬─┐┌─┐┬ ┬┌┬┐┌─┐
  ╚╗╔╝├┬┘│ ││ │ │ ├┤
   ╚╝ ┴└─└─┘└─┘ ┴ └─┘
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "vroute",
		Short: "Hierarchical route resolution and view loading",
		Long: `vroute resolves navigation paths against a nested route table.

It applies redirects, picks the layout and view chain for a path,
captures catch-all remainders and loads views on demand:

  • validate a route configuration
  • print the route tree
  • resolve a path, optionally loading its views
  • serve resolution and navigation over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				errors.SetColor(false)
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "",
		"path to vroute.toml, vroute.json or a directory holding one (default: search upward, else built-in routes)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		validateCmd(&flags),
		routesCmd(&flags),
		resolveCmd(&flags),
		serveCmd(&flags),
		versionCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Report(os.Stderr, err, "R080")
		os.Exit(1)
	}
}

// printBanner prints the vroute ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errors.FormatSuccess(fmt.Sprintf(format, args...)))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, errors.FormatWarning(fmt.Sprintf(format, args...)))
}
