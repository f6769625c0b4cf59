package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/siherrmann/mailrag"
	"github.com/siherrmann/mailrag/core/pipeline"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli holds the state shared by all commands of one invocation.
type cli struct {
	v      *viper.Viper
	config *Config
	rag    *mailrag.MailRAG
	logOut io.Writer
}

func newCLI() *cli {
	return &cli{
		v:      newViper(),
		logOut: os.Stderr,
	}
}

// Execute runs the root command.
func Execute() error {
	c := newCLI()
	defer c.close()

	root := newRootCmd(c)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newRootCmd(c *cli) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "mailrag",
		Short: "Store emails as embedded chunks and report them per receiver",
		Long: "mailrag splits emails into sentence chunks, embeds them and stores them in " +
			"PostgreSQL with pgvector or in memory.\n\n" +
			"Queries look up a receiver by name, either exactly or through vector " +
			"similarity followed by an exact receiver filter, and print a plain text report.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				c.v.SetConfigFile(configFile)
			}
			return c.loadConfig()
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default searches config.yaml)")
	root.PersistentFlags().String("store", "", "Storage backend: postgres or memory")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().Bool("no-embedder", false, "Store chunks without embeddings and query exactly")
	_ = c.v.BindPFlag("store", root.PersistentFlags().Lookup("store"))
	_ = c.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newIngestCmd(c),
		newQueryCmd(c),
		newListCmd(c),
		newClearCmd(c),
		newIndexCmd(c),
		newDemoCmd(c),
	)
	return root
}

func (c *cli) loadConfig() error {
	if c.config != nil {
		return nil
	}
	config, err := loadConfig(c.v)
	if err != nil {
		return err
	}
	c.config = config
	return nil
}

func (c *cli) logger() *slog.Logger {
	level, _ := parseLevel(c.config.LogLevel)
	return helper.NewLogger(c.logOut, level)
}

// pipeline builds the chunking and embedding pipeline from the config.
// With embed false chunks are stored without vectors.
func (c *cli) pipeline(embed bool) (*pipeline.Pipeline, error) {
	chunker := pipeline.SentenceChunker(c.config.Chunker.MaxChunkChars)
	if !embed {
		return pipeline.NewPipeline(chunker, nil), nil
	}
	if c.config.Embedder.Dimension != pipeline.DefaultEmbeddingDim {
		return nil, fmt.Errorf("embedder.dimension must be %d for %s", pipeline.DefaultEmbeddingDim, pipeline.DefaultModelName)
	}

	helper.ModelDir = c.config.Embedder.ModelDir
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedder; %w", err)
	}
	p := pipeline.NewPipeline(chunker, pipeline.TimeoutEmbedder(embedder, c.config.Embedder.Timeout))
	p.Concurrency = c.config.Embedder.Concurrency
	return p, nil
}

// newMailRAG creates a MailRAG for the configured store.
func (c *cli) newMailRAG(store string, embed bool) (*mailrag.MailRAG, error) {
	var rag *mailrag.MailRAG
	switch store {
	case storeMemory:
		rag = mailrag.NewInMemoryMailRAG(c.config.Embedder.Dimension)
	case storePostgres:
		dbConfig, err := c.config.DatabaseConfiguration()
		if err != nil {
			return nil, err
		}
		rag, err = mailrag.NewMailRAGWithLogger(dbConfig, c.config.Embedder.Dimension, c.logger())
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid store %q", store)
	}
	rag.SetLogger(c.logger())

	p, err := c.pipeline(embed)
	if err != nil {
		_ = rag.Close()
		return nil, err
	}
	rag.SetPipeline(p)

	rag.QueryConfig = model.QueryConfig{TopK: c.config.Query.TopK}
	if c.config.Query.Mode != "" {
		rag.QueryConfig.Mode, _ = model.ParseQueryMode(c.config.Query.Mode)
	}
	return rag, nil
}

// open returns the MailRAG of this invocation, creating it on first use.
// Commands that never embed pass embed false to skip loading the model.
func (c *cli) open(cmd *cobra.Command, embed bool) (*mailrag.MailRAG, error) {
	if c.rag != nil {
		return c.rag, nil
	}
	rag, err := c.newMailRAG(c.config.Store, embed && c.embedderEnabled(cmd))
	if err != nil {
		return nil, err
	}
	c.rag = rag
	return rag, nil
}

func (c *cli) embedderEnabled(cmd *cobra.Command) bool {
	noEmbedder, _ := cmd.Flags().GetBool("no-embedder")
	return c.config.Embedder.Enabled && !noEmbedder
}

func (c *cli) close() {
	if c.rag != nil {
		_ = c.rag.Close()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// printReport writes a report and ends it with a newline.
func printReport(w io.Writer, report string) {
	fmt.Fprint(w, report)
	if !strings.HasSuffix(report, "\n") {
		fmt.Fprintln(w)
	}
}
