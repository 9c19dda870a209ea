package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hairfluencer/internal/bootstrap"
)

func stylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "styles",
		Aliases: []string{"ls"},
		Short:   "List the hairstyle templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			cat, closeCatalog, err := bootstrap.Catalog(cmd.Context(), cfg, &logger)
			if err != nil {
				return err
			}
			defer closeCatalog()

			items, err := cat.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatStyles(items))
			return nil
		},
	}
}
