package db

import (
	"context"
	"fmt"
	"log"
	"sync"

	"aquiguaira/globals"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CompaniesCollection  = "empresas"
	PostsCollection      = "posts"
	CommentsCollection   = "comentarios"
	JobsCollection       = "vagas"
	FavoritesCollection  = "favoritos"
	HistoryCollection    = "historico"
	FilesCollection      = "arquivos"
	AdminLogsCollection  = "admin_logs"
	UserCollection       = "usuarios"
	PlacesCollection     = "locais_turisticos"
	CategoriesCollection = "categorias"
)

var (
	mu       sync.Mutex
	client   *mongo.Client
	database *mongo.Database
)

// Database returns the process-wide handle, creating the client on first use.
// Concurrent first callers wait on the same connect; a failed connect is not
// remembered so the next call tries again.
func Database(ctx context.Context) (*mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if database != nil {
		return database, nil
	}

	log.Println("🔄 Creating MongoDB client...")
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(globals.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	client = c
	database = c.Database(globals.MongoDatabase)
	log.Printf("✅ MongoDB client ready (db=%s)", globals.MongoDatabase)
	return database, nil
}

// Collection resolves a named collection on the shared database.
func Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	d, err := Database(ctx)
	if err != nil {
		return nil, err
	}
	return d.Collection(name), nil
}

// Use swaps the shared database handle. Tests point it at a mock deployment;
// passing nil forces the next call to reconnect.
func Use(d *mongo.Database) {
	mu.Lock()
	defer mu.Unlock()
	database = d
	client = nil
}

func Ping(ctx context.Context) error {
	d, err := Database(ctx)
	if err != nil {
		return err
	}
	return d.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Disconnect closes the client created by Database, if any.
func Disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	database = nil
	return err
}
