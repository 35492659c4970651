package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gobox/pkg/analysis"
	"github.com/philipparndt/gobox/pkg/step"
	"github.com/philipparndt/gobox/pkg/stl"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about an exported STL or STEP file",
	Long:  "Show dimensions, bounding box and topology of a model written by gobox or any other tool.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	out := cmd.OutOrStdout()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".step", ".stp":
		return stepInfo(out, filename)
	default:
		return stlInfo(out, filename)
	}
}

func stlInfo(out io.Writer, filename string) error {
	model, err := stl.Parse(filename)
	if err != nil {
		return fmt.Errorf("error parsing STL file: %w", err)
	}

	result := analysis.AnalyzeModel(model)

	fmt.Fprintln(out, "STL File Information")
	fmt.Fprintln(out, "====================")
	if model.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", model.Name)
	}
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(out, "  Edges: %d\n", result.EdgeCount)
	fmt.Fprintf(out, "  Surface Area: %.6f square units\n\n", result.SurfaceArea)

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	printDimensions(out, result.Dimensions.X, result.Dimensions.Y, result.Dimensions.Z, result.BoundingBox.Diagonal())
	fmt.Fprintf(out, "  Volume: %.6f cubic units\n\n", result.Volume)

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n", result.AvgEdgeLength)
	return nil
}

func stepInfo(out io.Writer, filename string) error {
	model, err := step.Parse(filename)
	if err != nil {
		return fmt.Errorf("error parsing STEP file: %w", err)
	}

	summary, err := analysis.AnalyzeStep(model)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "STEP File Information")
	fmt.Fprintln(out, "=====================")
	if model.Name != "" {
		fmt.Fprintf(out, "Name: %s\n", model.Name)
	}
	fmt.Fprintf(out, "File: %s\n", filename)
	fmt.Fprintf(out, "Schema: %s\n\n", strings.Join(model.Schemas, ", "))

	fmt.Fprintln(out, "Topology:")
	fmt.Fprintf(out, "  Faces: %d\n", summary.Faces)
	fmt.Fprintf(out, "  Edges: %d\n", summary.Edges)
	fmt.Fprintf(out, "  Vertices: %d\n\n", summary.Vertices)

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(summary.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(summary.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(summary.BoundingBox.Center()))

	printDimensions(out, summary.Dimensions.X, summary.Dimensions.Y, summary.Dimensions.Z, summary.BoundingBox.Diagonal())
	return nil
}

func printDimensions(out io.Writer, x, y, z, diagonal float64) {
	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Length (X): %.6f units\n", x)
	fmt.Fprintf(out, "  Width (Y): %.6f units\n", y)
	fmt.Fprintf(out, "  Height (Z): %.6f units\n", z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n", diagonal)
}
