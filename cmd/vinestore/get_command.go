package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vinestore/internal/store"
)

func newGetCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "get <object-id>",
		Short: "Resolve an object handle and print its bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := store.ParseObjectID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd.Context(), func(client *store.Client) error {
				view, err := client.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if outputPath != "" {
					if err := os.WriteFile(outputPath, view.Content, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", outputPath, err)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(view.Content), outputPath)
					return nil
				}
				_, err = cmd.OutOrStdout().Write(view.Content)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write object bytes to a file instead of stdout")
	return cmd
}
