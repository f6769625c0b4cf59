package main

import (
	"fmt"

	"github.com/siherrmann/mailrag/model"
	"github.com/spf13/cobra"
)

func newIngestCmd(c *cli) *cobra.Command {
	var receiver, text, file string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Store an email for a receiver",
		Long: "Store an email for a receiver.\n\n" +
			"The text is split into sentence chunks of at most chunker.max_chunk_chars " +
			"characters. With an embedder every chunk is embedded before anything is stored.",
		Example: `  # Store an email given inline
  mailrag ingest --receiver Yaalini --text "The budget was approved. Please send the report."

  # Store an email read from a file
  mailrag ingest --receiver Rajesh --file ./mail.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email := &model.Email{Receiver: receiver, Content: text}
			if file != "" {
				var err error
				email, err = model.NewEmailFromFile(file, receiver)
				if err != nil {
					return fmt.Errorf("failed to read email; %w", err)
				}
			}

			rag, err := c.open(cmd, true)
			if err != nil {
				return err
			}

			result, err := rag.IngestEmail(commandContext(cmd), email)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored email %d for %s (%d chunks, %d emails total)\n",
				result.EmailID, receiver, result.ChunkCount, result.TotalEmails)
			return nil
		},
	}

	cmd.Flags().StringVarP(&receiver, "receiver", "r", "", "Receiver name")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Email text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the email text from a file")
	_ = cmd.MarkFlagRequired("receiver")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
	cmd.MarkFlagsOneRequired("text", "file")

	return cmd
}
