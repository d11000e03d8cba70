package database

import (
	"context"
	"fmt"
	"time"

	"clinicbook/config"
	"clinicbook/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// PostgresPool is set when the Postgres ledger backend is selected.
var PostgresPool *pgxpool.Pool

// InitDB initializes the MongoDB connection.
func InitDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(config.AppConfig.DatabaseURL).
		SetTimeout(config.AppConfig.StorageTimeout)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	MongoClient = client
	utils.GetLogger().Info("Connected to MongoDB successfully")
	return nil
}

// MongoDatabase returns the configured application database.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// InitPostgres opens the pgx pool used by the Postgres ledger.
func InitPostgres(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(config.AppConfig.PostgresURL)
	if err != nil {
		return fmt.Errorf("invalid POSTGRES_URL: %w", err)
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(cctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := pool.Ping(cctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping Postgres: %w", err)
	}
	PostgresPool = pool
	utils.GetLogger().Info("Connected to Postgres successfully")
	return nil
}

// Close releases every open connection.
func Close(ctx context.Context) {
	if MongoClient != nil {
		_ = MongoClient.Disconnect(ctx)
	}
	if PostgresPool != nil {
		PostgresPool.Close()
	}
}
