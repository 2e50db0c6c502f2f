package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"er_diagram/internal/compiler"
	"er_diagram/internal/models"
	"er_diagram/internal/repositories"
	"er_diagram/internal/services"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [diagram.json|-]",
		Short: "Compile a diagram into SQL",
		Long: "Compile a diagram JSON file into a SQL script. With no argument the latest\n" +
			"diagram saved in --dir is used; - reads the diagram from stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().String("dir", "diagrams", "directory of the file diagram store")
	cmd.Flags().String("variant", "export", "script variant: save or export")
	cmd.Flags().String("database", compiler.DefaultDatabase, "database name used in the script")
	cmd.Flags().Bool("no-sample-data", false, "omit sample INSERT statements from the export variant")
	cmd.Flags().String("format", "sql", "output format: sql or mermaid")
	cmd.Flags().StringP("output", "o", "", "write the script to a file instead of stdout")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	variantFlag, _ := cmd.Flags().GetString("variant")
	variant, err := compiler.ParseVariant(variantFlag)
	if err != nil {
		return err
	}
	database, _ := cmd.Flags().GetString("database")
	noSample, _ := cmd.Flags().GetBool("no-sample-data")
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if format != "sql" && format != "mermaid" {
		return fmt.Errorf("unknown format %q: must be 'sql' or 'mermaid'", format)
	}

	d, source, err := loadDiagram(cmd, args)
	if err != nil {
		return err
	}

	script, err := compiler.Compile(d, variant,
		compiler.WithDatabase(database),
		compiler.WithSampleData(!noSample),
	)
	if err != nil {
		return err
	}

	text := script.String()
	if format == "mermaid" {
		text = services.RenderMermaid(script.Schema)
	}

	if output == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), text)
		return err
	}
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s -> %s (%s, %d tables, %d statements)\n",
		green("compiled"), cyan(source), cyan(output), variant, len(script.Tables), len(script.Executable()))
	return nil
}

func loadDiagram(cmd *cobra.Command, args []string) (*models.Diagram, string, error) {
	if len(args) == 0 {
		dir, _ := cmd.Flags().GetString("dir")
		repo := repositories.NewFileDiagramRepository(dir)
		d, err := repo.LoadLatest(context.Background())
		if err != nil {
			return nil, "", err
		}
		return d, dir, nil
	}

	source := args[0]
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		source = "stdin"
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read diagram: %w", err)
	}
	d, err := models.DecodeDiagram(data)
	if err != nil {
		return nil, "", err
	}
	return d, source, nil
}
