package main

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/multierr"

	"github.com/yourusername/carstore-api/internal/config"
	"github.com/yourusername/carstore-api/internal/users"
)

// dataStores は起動時に作成し、終了時にまとめて閉じる接続群です。
type dataStores struct {
	mongo *mongo.Client
	redis *redis.Client
	db    *mongo.Database
	users users.Store
}

func openStores(ctx context.Context, cfg *config.Config) (*dataStores, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	stores := &dataStores{
		mongo: client,
		db:    client.Database(cfg.MongoDatabase),
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping mongo: %w", err), stores.Close(ctx))
	}

	switch cfg.UserStore {
	case config.UserStoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("parse redis url: %w", err), stores.Close(ctx))
		}
		stores.redis = redis.NewClient(opt)
		if err := stores.redis.Ping(ctx).Err(); err != nil {
			return nil, multierr.Append(fmt.Errorf("ping redis: %w", err), stores.Close(ctx))
		}
		stores.users = users.NewRedisStore(stores.redis)
	default:
		mongoUsers := users.NewMongoStore(stores.db)
		if err := mongoUsers.EnsureIndexes(ctx); err != nil {
			return nil, multierr.Append(err, stores.Close(ctx))
		}
		stores.users = mongoUsers
	}

	return stores, nil
}

// Close はすべての接続を閉じ、発生したエラーをまとめて返します。
func (s *dataStores) Close(ctx context.Context) error {
	var err error
	if s.redis != nil {
		err = multierr.Append(err, s.redis.Close())
	}
	if s.mongo != nil {
		err = multierr.Append(err, s.mongo.Disconnect(ctx))
	}
	return err
}
