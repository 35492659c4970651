package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/gobox/internal/web"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the box generator form over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", settings.Addr, "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := newPipeline()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := *settings
	cfg.Addr = serveAddr
	cfg.WorkDir = workDir
	return web.NewServer(&cfg, p).Run(ctx)
}
