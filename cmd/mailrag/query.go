package main

import (
	"fmt"

	"github.com/siherrmann/mailrag/model"
	"github.com/spf13/cobra"
)

func newQueryCmd(c *cli) *cobra.Command {
	var mode string
	var topK int

	cmd := &cobra.Command{
		Use:   "query <receiver>",
		Short: "Print the emails of a receiver",
		Long: "Print the emails of a receiver as a plain text report.\n\n" +
			"Exact mode lists every stored email of the receiver. Vector mode searches the " +
			"top-k chunks nearest to the receiver name, keeps those stored for exactly that " +
			"receiver and prints them per receiver with a confidence score. Without --mode " +
			"vector mode is used when an embedder is configured.",
		Example: `  # Query with the configured mode
  mailrag query Yaalini

  # Exact lookup without embeddings
  mailrag query Rajesh --mode exact

  # Vector search over the 20 nearest chunks
  mailrag query Yaalini --mode vector --top-k 20`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rag, err := c.open(cmd, mode != string(model.QueryModeExact))
			if err != nil {
				return err
			}

			if mode != "" {
				rag.QueryConfig.Mode, err = model.ParseQueryMode(mode)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("top-k") {
				if topK <= 0 {
					return fmt.Errorf("--top-k must be positive")
				}
				rag.QueryConfig.TopK = topK
			}

			output, err := rag.Query(commandContext(cmd), args[0])
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Query mode: exact or vector")
	cmd.Flags().IntVarP(&topK, "top-k", "k", model.DefaultQueryConfig().TopK, "Number of nearest chunks searched in vector mode")

	return cmd
}
