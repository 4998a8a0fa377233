package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dynform/internal/config"
	"github.com/goliatone/go-dynform/pkg/jsonschema"
	"github.com/goliatone/go-dynform/pkg/openapi"
	"github.com/goliatone/go-dynform/pkg/schema"
)

func newCheckCommand(flags *globalFlags) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Validate schema documents without starting a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				fields, err := checkFile(cmd.Context(), path, kind, flags.operation)
				if err != nil {
					failed++
					for _, msg := range violations(err) {
						fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, msg)
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d fields)\n", path, len(fields))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", config.SchemaKindDocument, "document kind (document, openapi or jsonschema)")
	return cmd
}

func checkFile(ctx context.Context, path, kind, operation string) ([]schema.Field, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	switch kind {
	case config.SchemaKindOpenAPI:
		return openapi.NewParser(openapi.ParserOptions{OperationID: operation, Validate: true}).Fields(ctx, raw)
	case config.SchemaKindJSONSchema:
		return jsonschema.Parse(raw)
	case config.SchemaKindDocument:
		return schema.Decode(raw, schema.FormatFromPath(path))
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

// violations flattens joined errors into one message each.
func violations(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, inner := range joined.Unwrap() {
			out = append(out, violations(inner)...)
		}
		return out
	}
	return []string{err.Error()}
}
