package main

import (
	"fmt"

	"github.com/siherrmann/mailrag"
	"github.com/spf13/cobra"
)

func newDemoCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Query the sample emails in a temporary in-memory store",
		Long: "Store the built-in sample emails in a temporary in-memory store and print " +
			"the report of every sample receiver. Nothing is written to the configured store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := c.newMailRAG(storeMemory, c.embedderEnabled(cmd))
			if err != nil {
				return err
			}
			defer rag.Close()

			ctx := commandContext(cmd)
			results, err := rag.SeedSampleEmails(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stored %d sample emails\n\n", len(results))

			seen := map[string]bool{}
			for _, email := range mailrag.SampleEmails() {
				if seen[email.Receiver] {
					continue
				}
				seen[email.Receiver] = true

				output, err := rag.Query(ctx, email.Receiver)
				if err != nil {
					return err
				}
				printReport(out, output)
			}
			return nil
		},
	}
}
