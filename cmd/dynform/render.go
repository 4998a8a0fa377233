package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/app"
	"github.com/goliatone/go-dynform/pkg/orchestrator"
	"github.com/goliatone/go-dynform/pkg/render"
	"github.com/goliatone/go-dynform/pkg/renderers/tui"
)

func newRenderCommand(flags *globalFlags) *cobra.Command {
	var (
		renderer string
		format   string
		output   string
		partial  bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the empty form once and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.Build(ctx, cfg, logger, tui.WithOutputFormat(tui.OutputFormat(format)))
			if err != nil {
				return err
			}
			defer a.Close()

			a.Orchestrator.Mount(ctx)
			out, err := a.Orchestrator.Render(ctx, orchestrator.Request{
				Renderer: renderer,
				RenderOptions: render.RenderOptions{
					Title:    cfg.Title,
					BasePath: cfg.BasePath,
					Partial:  partial,
				},
			})
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&renderer, "renderer", "r", "vanilla", "renderer to use (vanilla or tui)")
	cmd.Flags().StringVar(&format, "format", string(tui.OutputFormatPrettyText), "tui output format (pretty or json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&partial, "partial", false, "render only the field list")
	return cmd
}
