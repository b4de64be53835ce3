package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"vinestore/internal/store"
)

func newPutCommand(ctx *commandContext) *cobra.Command {
	var typename string

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a file as a new object and print its handle",
		Long:  "Store a file as a new object and print its handle. Pass - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			return ctx.withClient(cmd.Context(), func(client *store.Client) error {
				id, err := client.Put(cmd.Context(), typename, content)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), map[string]string{"id": id.String()})
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&typename, "typename", "t", "vineyard::Blob", "Typename recorded with the object")
	return cmd
}
