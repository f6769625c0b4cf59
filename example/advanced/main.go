package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/mailrag"
	"github.com/siherrmann/mailrag/core/pipeline"
	"github.com/siherrmann/mailrag/model"
)

const projectUpdate = `Hi Yaalini, the migration finished on Monday. All services were moved to the new cluster!
Did the monitoring alerts reach you? Please confirm the dashboards look right. Thanks for the quick review.`

const invoiceReminder = `Dear Yaalini Raman, invoice 4471 is still open. Payment was due last week.
Please let us know if anything is missing.`

func main() {
	ctx := context.Background()

	// In-memory store, nothing survives the process
	m := mailrag.NewInMemoryMailRAG(pipeline.DefaultEmbeddingDim)
	defer m.Close()

	// Custom pipeline with smaller chunks and a shorter embedding timeout
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}
	m.SetPipeline(pipeline.NewPipeline(
		pipeline.SentenceChunker(120),
		pipeline.TimeoutEmbedder(embedder, 10*time.Second),
	))

	if _, err := m.SeedSampleEmails(ctx); err != nil {
		log.Fatalf("Failed to ingest sample emails: %v", err)
	}

	// Similar names are stored as different receivers
	emails := []struct{ receiver, content string }{
		{"Yaalini", projectUpdate},
		{"Yaalini Raman", invoiceReminder},
	}
	for _, email := range emails {
		result, err := m.Ingest(ctx, email.receiver, email.content)
		if err != nil {
			log.Fatalf("Failed to ingest email: %v", err)
		}
		fmt.Printf("Stored email %d for %s with %d chunks\n", result.EmailID, email.receiver, result.ChunkCount)
	}

	// Raw similarity hits are not filtered by receiver
	fmt.Println("\nRaw search for 'Yaalini':")
	hits, err := m.Search(ctx, "Yaalini", 5)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	for i, hit := range hits {
		fmt.Printf("%d. [%.4f] %s (email %d, chunk %d/%d)\n", i+1, hit.Score, hit.Chunk.Receiver, hit.Chunk.EmailID, hit.Chunk.ChunkIndex+1, hit.Chunk.TotalChunks)
	}

	// Reconciled vector query keeps only chunks stored for exactly 'Yaalini'
	fmt.Println("\nVector query:")
	report, err := m.QueryVector(ctx, "Yaalini", 20)
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}
	fmt.Println(report)

	// Exact lookup lists whole emails
	fmt.Println("\nExact query:")
	report, err = m.QueryWithConfig(ctx, "yaalini raman", &model.QueryConfig{Mode: model.QueryModeExact})
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}
	fmt.Println(report)

	// Clearing restarts the ids
	if err := m.ClearAll(ctx); err != nil {
		log.Fatalf("Failed to clear: %v", err)
	}
	stored, err := m.ListAll(ctx)
	if err != nil {
		log.Fatalf("Failed to list emails: %v", err)
	}
	fmt.Printf("\n%d emails left after clearing\n", len(stored))

	fmt.Println("\nAdvanced example completed successfully!")
}
