package mongo

import (
	"context"
	"fmt"
	"time"

	"clipstream/internal/config"
	"clipstream/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	client *mongo.Client
	db     *mongo.Database
)

// Init 初始化 MongoDB 连接，带重试
func Init(cfg *config.MongoConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.URI)

	var err error
	for i := 0; i <= cfg.RetryCount; i++ {
		client, err = mongo.Connect(ctx, clientOpts)
		if err == nil {
			if pingErr := client.Ping(ctx, readpref.Primary()); pingErr == nil {
				db = client.Database(cfg.Database)
				logger.Info("MongoDB connected",
					zap.String("database", cfg.Database),
				)
				return nil
			} else {
				err = pingErr
			}
		}
		if i < cfg.RetryCount {
			time.Sleep(cfg.RetryIntervalDuration())
		}
	}

	return fmt.Errorf("failed to connect to mongodb after %d retries: %w", cfg.RetryCount, err)
}

// Get 获取数据库实例
func Get() *mongo.Database {
	return db
}

// Close 关闭 MongoDB 连接
func Close() error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("MongoDB connection closed")
	return client.Disconnect(ctx)
}
