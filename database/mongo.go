package database

import (
	"context"
	"log"
	"time"

	"courseapi/config"
	"courseapi/store"
)

// Mongo is the global document store instance
var Mongo *store.Store

// ConnectMongo opens the document store holding courses, modules, topics,
// contents, and enrollments.
func ConnectMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.Connect(ctx, config.AppConfig.MongoURI, config.AppConfig.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	Mongo = s
}
