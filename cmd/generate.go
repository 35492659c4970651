package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	paramsFile  string
	outDir      string
	genFlags    = controls.Defaults()
	genFormat   string
	genNoRender bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a box model and preview into a directory",
	Long: `Run one generation pass without a user interface. Parameters come from
flags, or from a YAML file given with --config; flags that are set
explicitly override the file. The mesh is written as <name>.<format>
and the preview as preview.svg.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	f := generateCmd.Flags()
	f.StringVarP(&paramsFile, "config", "c", "", "YAML parameter file")
	f.StringVarP(&outDir, "out", "o", ".", "output directory")
	addParameterFlags(f)
}

func addParameterFlags(f *pflag.FlagSet) {
	f.Float64Var(&genFlags.Box.Length, controls.FieldLength, controls.DefaultLength, "box length (X)")
	f.Float64Var(&genFlags.Box.Width, controls.FieldWidth, controls.DefaultWidth, "box width (Y)")
	f.Float64Var(&genFlags.Box.Height, controls.FieldHeight, controls.DefaultHeight, "box height (Z)")
	f.Float64Var(&genFlags.Camera.Axis1, controls.FieldAxis1, controls.DefaultAxis1, "projection direction X")
	f.Float64Var(&genFlags.Camera.Axis2, controls.FieldAxis2, controls.DefaultAxis2, "projection direction Y")
	f.Float64Var(&genFlags.Camera.Axis3, controls.FieldAxis3, controls.DefaultAxis3, "projection direction Z")
	f.Float64Var(&genFlags.Camera.Focus, controls.FieldFocus, controls.DefaultFocus, "perspective focus, 0 for orthographic")
	f.StringVar(&genFlags.File.Name, controls.FieldName, controls.DefaultName, "download file name without extension")
	f.StringVar(&genFormat, controls.FieldFormat, string(controls.Defaults().File.Format), "mesh format (stl or step)")
	f.StringVar(&genFlags.PrimaryColor, "primary-color", controls.DefaultPrimaryColor, "visible edge color")
	f.StringVar(&genFlags.SecondaryColor, "secondary-color", controls.DefaultSecondaryColor, "hidden edge color")
	f.BoolVar(&genNoRender, "no-render", false, "skip generation")
}

// generateConfig merges the parameter file with explicitly set flags
func generateConfig(flags *pflag.FlagSet) (controls.Config, error) {
	cfg := controls.Defaults()
	if paramsFile != "" {
		loaded, err := controls.LoadFile(paramsFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	format, err := controls.ParseFormat(genFormat)
	if err != nil {
		return cfg, err
	}

	overrides := map[string]func(){
		controls.FieldLength: func() { cfg.Box.Length = genFlags.Box.Length },
		controls.FieldWidth:  func() { cfg.Box.Width = genFlags.Box.Width },
		controls.FieldHeight: func() { cfg.Box.Height = genFlags.Box.Height },
		controls.FieldAxis1:  func() { cfg.Camera.Axis1 = genFlags.Camera.Axis1 },
		controls.FieldAxis2:  func() { cfg.Camera.Axis2 = genFlags.Camera.Axis2 },
		controls.FieldAxis3:  func() { cfg.Camera.Axis3 = genFlags.Camera.Axis3 },
		controls.FieldFocus:  func() { cfg.Camera.Focus = genFlags.Camera.Focus },
		controls.FieldName:   func() { cfg.File.Name = genFlags.File.Name },
		controls.FieldFormat: func() { cfg.File.Format = format },
		"primary-color":      func() { cfg.PrimaryColor = genFlags.PrimaryColor },
		"secondary-color":    func() { cfg.SecondaryColor = genFlags.SecondaryColor },
		"no-render":          func() { cfg.Render = !genNoRender },
	}
	for name, apply := range overrides {
		if paramsFile == "" || flags.Changed(name) {
			apply()
		}
	}

	return cfg, cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := generateConfig(cmd.Flags())
	if err != nil {
		return err
	}

	p, err := newPipeline()
	if err != nil {
		return err
	}
	return generateOnce(cmd.Context(), cmd.OutOrStdout(), p, cfg, outDir)
}

// generateOnce runs the pipeline and copies the results into dir
func generateOnce(ctx context.Context, out io.Writer, p *pipeline.Pipeline, cfg controls.Config, dir string) error {
	result, err := p.Run(ctx, cfg)
	if err != nil {
		return err
	}
	defer result.Release()

	if result.Idle {
		fmt.Fprintln(out, "Render disabled, nothing generated")
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	previewPath := filepath.Join(dir, pipeline.PreviewName)
	if err := copyFile(result.PreviewPath, previewPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "Preview: %s\n", previewPath)

	for _, n := range result.Notices() {
		fmt.Fprintf(out, "%s %s\n", n.Icon, n.Message)
	}

	download, ok := result.Download()
	if !ok {
		return fmt.Errorf("%s: %w", pipeline.MeshErrorMessage, result.MeshErr)
	}

	meshPath := filepath.Join(dir, download.FileName)
	if err := copyFile(download.Path, meshPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", download.Label, meshPath)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return out.Close()
}
