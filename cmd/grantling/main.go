// Command grantling renders Django-style templates from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "grantling",
		Short: "Grantling - a Django-compatible template engine",
		Long: `Grantling renders Django-style templates: text files with
{{ variable }} expansions, {% tag %} control constructs and {# comment #}
blocks, evaluated against a YAML context.`,
		Version: version,
	}

	rootCmd.AddCommand(newRenderCommand())
	rootCmd.AddCommand(newCheckCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
