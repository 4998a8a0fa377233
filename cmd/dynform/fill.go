package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/app"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
)

func newFillCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.Build(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.Orchestrator.Renderer("tui")
			if err != nil {
				return err
			}
			term, ok := r.(*tui.Renderer)
			if !ok {
				return fmt.Errorf("renderer %q does not support interactive input", r.Name())
			}

			a.Orchestrator.Mount(ctx)
			receipt, err := term.Fill(ctx, a.Orchestrator.Composer())
			switch {
			case errors.Is(err, tui.ErrDiscarded), errors.Is(err, tui.ErrAborted):
				fmt.Fprintln(cmd.OutOrStdout(), "Form discarded.")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Receipt: %s\n", receipt.ID)
			return nil
		},
	}
}
