package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/checklist/internal/ui"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file|-]",
		Short: "Write saved progress to a file (default: stdout)",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return a.session.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create: %w", err)
			}
			if err := a.session.Export(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close: %w", err)
			}
			ui.OK(cmd.ErrOrStderr(), "exported to "+args[0])
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Load saved progress from a file produced by export",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open: %w", err)
				}
				defer f.Close()
				r = f
			}
			res, err := a.session.Import(r)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("imported %d keys", len(res.Imported))
			if len(res.Skipped) > 0 {
				msg += fmt.Sprintf(", skipped %d", len(res.Skipped))
			}
			ui.OK(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
