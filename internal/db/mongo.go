package db

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonathanaloya/cineflix/internal/config"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

func InitMongo(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("[mongo] connect failed")
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal().Err(err).Msg("[mongo] ping failed")
	}

	mongoClient = client
	mongoDB = client.Database(cfg.MongoDB)
	log.Info().Str("db", cfg.MongoDB).Msg("[mongo] connected")
}

func DB() *mongo.Database {
	return mongoDB
}

// Ping reports whether the Mongo connection is alive. Used by the
// health endpoint.
func Ping(ctx context.Context) error {
	if mongoClient == nil {
		return mongo.ErrClientDisconnected
	}
	return mongoClient.Ping(ctx, nil)
}
