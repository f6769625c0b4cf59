package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/siherrmann/mailrag/core/report"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := c.open(cmd, false)
			if err != nil {
				return err
			}

			emails, err := rag.ListAll(commandContext(cmd))
			if err != nil {
				return err
			}

			if len(emails) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No emails stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tRECEIVER\tCHUNKS\tDATE")
			for _, email := range emails {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", email.ID, email.Receiver, len(email.Chunks), email.CreatedAt.UTC().Format(report.DateLayout))
			}
			return w.Flush()
		},
	}
}
