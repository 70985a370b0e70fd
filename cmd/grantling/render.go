package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	grantling "github.com/grantling/grantling"
	"github.com/grantling/grantling/value"
)

func newRenderCommand() *cobra.Command {
	var templateDir string
	var contextFile string
	var outFile string
	var outDir string
	var escape string

	cmd := &cobra.Command{
		Use:   "render TEMPLATE",
		Short: "Render a template against a YAML context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(args[0], templateDir, contextFile, outFile, outDir, escape)
		},
	}

	cmd.Flags().StringVarP(&templateDir, "templates", "t", ".", "Directory templates are loaded from")
	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML file with context variables")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory {% create %} writes files under")
	cmd.Flags().StringVar(&escape, "escape", "none", "Escaping applied to variable output: html or none")

	return cmd
}

func runRender(name, templateDir, contextFile, outFile, outDir, escape string) error {
	eng := grantling.New()
	eng.SetTemplateDir(templateDir)

	tmpl, err := eng.LoadByName(name)
	if err != nil {
		return err
	}

	ctx := eng.CreateContext()
	ctx.Push()
	ctx.SetOutputDirectory(outDir)

	switch escape {
	case "html":
		ctx.SetEscaper(grantling.HTMLEscaper{})
	case "none":
	default:
		return fmt.Errorf("unknown escape mode %q", escape)
	}

	if contextFile != "" {
		if err := loadContext(ctx, contextFile); err != nil {
			return err
		}
	}

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return tmpl.Render(out, ctx)
}

// loadContext decodes a YAML mapping and sets each top-level key as a
// context variable.
func loadContext(ctx *grantling.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	vars := make(map[string]any)
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for name, v := range vars {
		ctx.Set(name, value.FromAny(v))
	}
	return nil
}
