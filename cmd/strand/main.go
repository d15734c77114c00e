package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌┬┐┬─┐┌─┐┌┐┌┌┬┐
  ╚═╗ │ ├┬┘├─┤│││ ││
  ╚═╝ ┴ ┴└─┴ ┴┘└┘─┴┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "strand",
		Short: "Fine-grained reactive state and incremental tree reconciliation",
		Long: `Strand is a reactive state engine for Go.

Observed objects and lists track reads per property, watchers re-run
when exactly the state they read changes, and a batched scheduler
coalesces a burst of writes into one incremental tree patch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		benchCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Print(banner)
}

func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
