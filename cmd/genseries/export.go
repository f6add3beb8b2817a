package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/ocean-series-service/internal/dashboard"
	"github.com/couchcryptid/ocean-series-service/internal/export"
	"github.com/couchcryptid/ocean-series-service/internal/render"
	"github.com/spf13/cobra"
)

var outPath string

var csvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write series as long-format CSV (year,label,unit,value)",
	Args:  cobra.NoArgs,
	RunE: runExport(func(w io.Writer, v dashboard.View) error {
		return export.WriteCSV(w, v.Series)
	}),
}

var xlsxCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Write series as an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: runExport(func(w io.Writer, v dashboard.View) error {
		return export.WriteXLSX(w, v.Series, v.Trends)
	}),
}

var pngCmd = &cobra.Command{
	Use:   "png",
	Short: "Plot series as a PNG line chart",
	Args:  cobra.NoArgs,
	RunE: runExport(func(w io.Writer, v dashboard.View) error {
		return render.WritePNG(w, title(v), v.Series, v.Trends)
	}),
}

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Render an interactive HTML dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, v, err := buildView(cmd)
		if err != nil {
			return err
		}
		return writeOutput(cmd, v, func(w io.Writer) error {
			return render.WriteHTML(w, render.Dashboard{
				Title:       "Ocean impact dashboard",
				Subtitle:    title(v),
				Series:      v.Series,
				Trends:      v.Trends,
				Regions:     e.svc.Regions(),
				Derivations: e.svc.Derivations(),
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{csvCmd, xlsxCmd, pngCmd, htmlCmd} {
		c.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	}
}

func runExport(write func(io.Writer, dashboard.View) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		_, v, err := buildView(cmd)
		if err != nil {
			return err
		}
		return writeOutput(cmd, v, func(w io.Writer) error { return write(w, v) })
	}
}

// writeOutput renders into memory first so a failed render never leaves a
// truncated file behind.
func writeOutput(cmd *cobra.Command, v dashboard.View, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if outPath == "" || outPath == "-" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes, generation range %s)\n", outPath, buf.Len(), v.GenerationRange)
	return nil
}

func title(v dashboard.View) string {
	return fmt.Sprintf("%s scenario, %s, seed %d", v.Query.Scenario, v.Query.Range, v.Query.Seed)
}
