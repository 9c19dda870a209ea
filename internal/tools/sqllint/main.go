// Command sqllint checks that every SQL literal starts with a named
// "--sql <name>" marker, the form infra.SQLRunner logs and requires.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:          "sqllint [path...]",
		Short:        "Check SQL literals for audit markers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			violations, err := lintPaths(args)
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				return nil
			}
			out := cmd.ErrOrStderr()
			fmt.Fprintln(out, color.RedString("sqllint: missing SQL audit markers"))
			for _, v := range violations {
				fmt.Fprintf(out, "  %s:%d %s (%s)\n", v.file, v.line, v.message, v.name)
			}
			return fmt.Errorf("%d violation(s)", len(violations))
		},
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
		os.Exit(1)
	}
}
