package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/mailrag"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	m, err := mailrag.NewMailRAG(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create mailrag: %v", err)
	}
	defer m.Close()

	// Set up the default pipeline (sentence chunking + embeddings)
	if err := m.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	ctx := context.Background()

	fmt.Println("Ingesting sample emails...")
	results, err := m.SeedSampleEmails(ctx)
	if err != nil {
		log.Fatalf("Failed to ingest sample emails: %v", err)
	}
	for _, result := range results {
		fmt.Printf("Email %d stored with %d chunks\n", result.EmailID, result.ChunkCount)
	}

	// Ingest one more email with metadata
	email := &model.Email{
		Receiver: "Rajesh",
		Content:  "Hi Rajesh, the deployment is scheduled for Friday. Please review the rollback plan before then.",
		Metadata: model.Metadata{
			model.MetadataSubject: "Deployment",
		},
	}
	result, err := m.IngestEmail(ctx, email)
	if err != nil {
		log.Fatalf("Failed to ingest email: %v", err)
	}
	fmt.Printf("Email %d stored, %d emails in total\n", result.EmailID, result.TotalEmails)

	// Vector search, filtered to the exact receiver
	for _, receiver := range []string{"Yaalini", "Rajesh", "Priya"} {
		fmt.Printf("\nQuerying: %s\n\n", receiver)

		report, err := m.Query(ctx, receiver)
		if err != nil {
			log.Fatalf("Failed to query: %v", err)
		}
		fmt.Println(report)
	}

	fmt.Println("\nBasic example completed successfully!")
}
