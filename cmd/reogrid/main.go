// Package main provides the CLI entry point for reogrid-go.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	pretty  bool
	verbose bool
	culture string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "reogrid",
		Short: "Recalculate spreadsheet formulas and inspect formula references",
		Long: `reogrid-go recalculates the formulas of xlsx workbooks in dependency
order and exposes the formula lexer used to find cell references.`,
		SilenceUsage: true,
	}

	g.register(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newRecalcCmd(g),
		newRefsCmd(g),
		newClassifyCmd(g),
	)
	return rootCmd
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&g.pretty, "pretty", false, "Pretty-print JSON output")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log diagnostics to stderr")
	fs.StringVar(&g.culture, "culture", "en", "Locale tag selecting the decimal separator of formula numbers")
}

// logger returns a text logger on w, at debug level when verbose is set.
func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (g *globalFlags) language() (language.Tag, error) {
	tag, err := language.Parse(g.culture)
	if err != nil {
		return language.Und, fmt.Errorf("invalid culture %q: %w", g.culture, err)
	}
	return tag, nil
}
