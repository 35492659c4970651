package cmd

import (
	"fmt"
	"os"

	"github.com/philipparndt/gobox/internal/config"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/export"
	"github.com/philipparndt/gobox/version"
	"github.com/spf13/cobra"
)

var (
	settings = config.Load()

	engineName string
	workDir    string
	asciiSTL   bool
)

var rootCmd = &cobra.Command{
	Use:   "gobox",
	Short: "Parametric box generator with STL/STEP export and SVG preview",
	Long: `gobox builds a box from length, width and height, exports it as STL or
STEP and draws an SVG preview. It runs as a web form (serve), a desktop
window (gui) or headless (generate, watch).`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", settings.Engine, "geometry engine (builtin or openscad)")
	rootCmd.PersistentFlags().StringVar(&workDir, "workdir", settings.WorkDir, "base directory for per-run workspaces")
	rootCmd.PersistentFlags().BoolVar(&asciiSTL, "ascii", settings.ASCIISTL, "write ASCII instead of binary STL")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newPipeline() (*pipeline.Pipeline, error) {
	engine, err := export.NewEngine(engineName, asciiSTL)
	if err != nil {
		return nil, err
	}
	return pipeline.New(engine, workDir, pipeline.WithCanvas(settings.PreviewWidth, settings.PreviewHeight)), nil
}
