package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"vidtube/internal/repository"
	"vidtube/pkg/database"
)

const usage = "Usage: go run ./cmd/indexes [up|drop|list]"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		log.Fatal("MONGO_URI environment variable is not set")
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "vidtube"
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongo, err := database.NewMongoDB(ctx, uri, dbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer mongo.Close(context.Background())

	switch command {
	case "up":
		if err := repository.EnsureIndexes(ctx, mongo.DB); err != nil {
			log.Fatalf("Failed to create indexes: %v", err)
		}
		fmt.Println("✅ Indexes created successfully")

	case "drop":
		if err := repository.DropIndexes(ctx, mongo.DB); err != nil {
			log.Fatalf("Failed to drop indexes: %v", err)
		}
		fmt.Println("✅ Indexes dropped successfully")

	case "list":
		indexes, err := repository.ListIndexes(ctx, mongo.DB)
		if err != nil {
			log.Fatalf("Failed to list indexes: %v", err)
		}
		printIndexes(indexes)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func printIndexes(indexes map[string][]string) {
	collections := make([]string, 0, len(indexes))
	for name := range indexes {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	for _, coll := range collections {
		fmt.Printf("%s:\n", coll)
		for _, name := range indexes[coll] {
			fmt.Printf("  - %s\n", name)
		}
	}
}
