package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sari-store/sari-backend/models"
	ddbpkg "github.com/sari-store/sari-backend/pkg/dynamodb"
	"github.com/sari-store/sari-backend/repository"
)

// One-off importer: copies the legacy store ledger (MongoDB) into the
// Sari-inventory DynamoDB table. Run once per environment before cutover.

type legacyInventory struct {
	ProductID string `bson:"product_id"`
	Stock     int    `bson:"stock"`
}

func main() {
	var mongoURI, dbName, collName, table string
	flag.StringVar(&mongoURI, "mongo", os.Getenv("MONGO_DB_URL"), "MongoDB URI")
	flag.StringVar(&dbName, "db", os.Getenv("MONGO_DB_NAME"), "MongoDB database name")
	flag.StringVar(&collName, "collection", "inventory", "MongoDB collection name")
	flag.StringVar(&table, "table", os.Getenv("DDB_TABLE_INVENTORY"), "DynamoDB table name")
	flag.Parse()

	if mongoURI == "" || dbName == "" {
		log.Fatal("MONGO_DB_URL and MONGO_DB_NAME must be set or provided via flags")
	}
	if table == "" {
		table = "Sari-inventory"
	}

	ctx := context.Background()

	clientOpts := options.Client().ApplyURI(mongoURI)
	mclient, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mclient.Disconnect(ctx)

	coll := mclient.Database(dbName).Collection(collName)

	ddbClient, err := ddbpkg.NewClient(ctx)
	if err != nil {
		log.Fatalf("dynamodb client: %v", err)
	}
	repo := repository.NewDynamoInventoryRepository(ddbClient, table)

	batchSize := int32(500)
	cur, err := coll.Find(ctx, bson.M{}, &options.FindOptions{BatchSize: &batchSize})
	if err != nil {
		log.Fatalf("mongo find: %v", err)
	}
	defer cur.Close(ctx)

	var count, skipped int
	for cur.Next(ctx) {
		var doc legacyInventory
		if err := cur.Decode(&doc); err != nil {
			log.Printf("decode error: %v", err)
			continue
		}
		if doc.ProductID == "" {
			skipped++
			continue
		}
		if doc.Stock < 0 {
			log.Printf("negative stock for product %s, clamping to 0", doc.ProductID)
			doc.Stock = 0
		}
		inv := &models.Inventory{
			ProductID: doc.ProductID,
			Stock:     doc.Stock,
			UpdatedAt: time.Now().UTC(),
		}
		if err := repo.Put(ctx, inv); err != nil {
			log.Printf("failed to write inventory %s to ddb: %v", doc.ProductID, err)
			continue
		}
		count++
		if count%100 == 0 {
			log.Printf("migrated %d inventory records", count)
		}
	}
	if err := cur.Err(); err != nil {
		log.Fatalf("cursor error: %v", err)
	}
	fmt.Printf("Migration complete. migrated=%d skipped=%d\n", count, skipped)
}
