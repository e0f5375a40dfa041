// config/db.go
package config

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes connection to MongoDB
func ConnectDB() *mongo.Client {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = os.Getenv("MONGODB_URI")
	}

	// Only use the Docker service name as fallback in development
	if mongoURI == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			mongoURI = "mongodb://mongodb:27017"
		} else {
			log.Fatal("MONGO_URI or MONGODB_URI environment variable is required for production")
		}
	}

	log.Printf("Connecting to MongoDB at: %s", maskMongoURI(mongoURI))

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("MongoDB connection error:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("MongoDB ping error:", err)
	}

	log.Println("Connected to MongoDB")

	setupCollections(client)

	return client
}

// GetCollection returns MongoDB collection
func GetCollection(client *mongo.Client, collectionName string) *mongo.Collection {
	return client.Database(DatabaseName()).Collection(collectionName)
}

// DatabaseName returns the configured database name
func DatabaseName() string {
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "goyoulink"
	}
	return dbName
}

// setupCollections ensures all necessary collections and indexes exist.
// The unique index on shopifyOrderId is load-bearing: the ledger relies on it
// for webhook idempotency, not just lookup speed.
func setupCollections(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(DatabaseName())

	collections := []string{"affiliates", "clicks", "referralOrders", "payouts"}
	for _, collName := range collections {
		db.CreateCollection(ctx, collName)
	}

	affiliateColl := db.Collection("affiliates")
	for _, key := range []string{"refCode", "shortCode"} {
		indexModel := mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
		if _, err := affiliateColl.Indexes().CreateOne(ctx, indexModel); err != nil {
			log.Printf("Error creating %s index: %v", key, err)
		}
	}

	orderColl := db.Collection("referralOrders")
	orderIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shopifyOrderId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := orderColl.Indexes().CreateOne(ctx, orderIndexModel); err != nil {
		log.Printf("Error creating shopifyOrderId index: %v", err)
	}

	clickColl := db.Collection("clicks")
	clickIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "affiliateId", Value: 1}, {Key: "createdAt", Value: -1}},
	}
	if _, err := clickColl.Indexes().CreateOne(ctx, clickIndexModel); err != nil {
		log.Printf("Error creating click index: %v", err)
	}

	log.Println("Database collections and indexes setup complete")
}

// maskMongoURI masks the password in MongoDB URI for logging
func maskMongoURI(uri string) string {
	if idx := strings.Index(uri, "@"); idx > 0 {
		if colonIdx := strings.LastIndex(uri[:idx], ":"); colonIdx > 0 {
			return uri[:colonIdx+1] + "***" + uri[idx:]
		}
	}
	return uri
}
