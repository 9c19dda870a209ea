// Command tryon runs a single hairstyle try-on from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hairfluencer/internal/infra"
)

var (
	version = "0.1.0"
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tryon",
		Short: "Preview a hairstyle on your own photo",
		Long: `tryon sends a photo and a hairstyle template to the image edit endpoint
and saves the edited photo.

Examples:
  tryon styles
  tryon --style 3 --photo ./me.jpg
  tryon --style 3 --photo https://example.com/me.jpg --out pixie.jpg --comparison`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			infra.LoadDotEnv()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline events to stderr")

	run := runCmd()
	rootCmd.Flags().AddFlagSet(run.Flags())
	rootCmd.RunE = run.RunE

	rootCmd.AddCommand(run, stylesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func loadConfig() (*infra.Config, infra.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, infra.Logger{}, err
	}
	return cfg, infra.NewCLILogger(cfg.AppEnv, verbose), nil
}
