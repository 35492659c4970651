package cmd

import (
	"github.com/philipparndt/gobox/internal/gui"
	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the box generator in a desktop window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}
		return gui.Run(p)
	},
}

func init() {
	rootCmd.AddCommand(guiCmd)
}
