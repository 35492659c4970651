package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipparndt/gobox/internal/controls"
	"github.com/philipparndt/gobox/internal/pipeline"
	"github.com/philipparndt/gobox/pkg/watcher"
	"github.com/spf13/cobra"
)

var watchOutDir string

var watchCmd = &cobra.Command{
	Use:   "watch <params.yaml>",
	Short: "Regenerate whenever a parameter file changes",
	Long: `Generate once from a YAML parameter file, then again every time the
file is saved. Results are written like the generate command does.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", ".", "output directory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	p, err := newPipeline()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func() {
		if err := regenerateFrom(ctx, cmd, p, file); err != nil {
			log.Printf("[watch] %v", err)
		}
	}
	regenerate()

	fw, err := watcher.NewFileWatcher(200 * time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch([]string{file}, func(string) { regenerate() }); err != nil {
		return err
	}
	fw.Start(ctx)

	log.Printf("[watch] watching %s", file)
	<-ctx.Done()
	return nil
}

func regenerateFrom(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, file string) error {
	cfg, err := controls.LoadFile(file)
	if err != nil {
		return err
	}
	return generateOnce(ctx, cmd.OutOrStdout(), p, cfg, watchOutDir)
}
