package main

import (
	"fmt"

	"github.com/siherrmann/mailrag/database"
	"github.com/spf13/cobra"
)

func newIndexCmd(c *cli) *cobra.Command {
	var m, efConstruction, lists int

	cmd := &cobra.Command{
		Use:   "index <hnsw|ivfflat>",
		Short: "Rebuild the vector index of the chunks table",
		Long: "Rebuild the vector index of the chunks table with HNSW or IVFFlat.\n\n" +
			"Only available with the postgres store.",
		Example: `  # HNSW with more connections per layer
  mailrag index hnsw --m 32

  # IVFFlat with 200 lists
  mailrag index ivfflat --lists 200`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{database.IndexTypeHNSW, database.IndexTypeIVFFlat},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if args[0] != database.IndexTypeHNSW && args[0] != database.IndexTypeIVFFlat {
				return fmt.Errorf("unsupported index type: %s (use '%s' or '%s')", args[0], database.IndexTypeHNSW, database.IndexTypeIVFFlat)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			switch args[0] {
			case database.IndexTypeHNSW:
				params["m"] = m
				params["ef_construction"] = efConstruction
			case database.IndexTypeIVFFlat:
				params["lists"] = lists
			}

			rag, err := c.open(cmd, false)
			if err != nil {
				return err
			}

			err = rag.ChangeIndexType(commandContext(cmd), args[0], params)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Vector index changed to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().IntVar(&m, "m", 16, "HNSW connections per layer")
	cmd.Flags().IntVar(&efConstruction, "ef-construction", 64, "HNSW candidate list size while building")
	cmd.Flags().IntVar(&lists, "lists", 100, "IVFFlat number of lists")

	return cmd
}
