package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vinestore/internal/store"
)

type listedObject struct {
	ID       string `json:"id"`
	Typename string `json:"typename"`
	Size     uint64 `json:"size"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var pattern string
	var limit int

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List stored objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(client *store.Client) error {
				views, err := client.List(cmd.Context(), pattern, limit)
				if err != nil {
					return err
				}

				if ctx.jsonOutput() {
					listed := make([]listedObject, 0, len(views))
					for _, view := range views {
						listed = append(listed, listedObject{ID: view.ID.String(), Typename: view.Typename, Size: view.Size})
					}
					return printJSON(cmd.OutOrStdout(), listed)
				}

				printer := message.NewPrinter(language.English)
				rows := make([][]string, 0, len(views))
				for _, view := range views {
					rows = append(rows, []string{
						view.ID.String(),
						view.Typename,
						printer.Sprintf("%d", view.Size),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Typename", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				fmt.Fprintln(cmd.OutOrStdout(), printer.Sprintf("%d objects", len(views)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "Glob pattern matched against typenames")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum objects to list (0 = all)")
	return cmd
}
